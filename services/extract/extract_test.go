package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServiceAliases(t *testing.T) {
	id, name, ok := Service("quero agendar um corte masculino")
	assert.True(t, ok)
	assert.Equal(t, "corte-masculino", id)
	assert.Equal(t, "Corte Masculino", name)

	_, name, ok = Service("um corte homem bem rápido")
	assert.True(t, ok)
	assert.Equal(t, "Corte Masculino", name)

	// Compound alias wins over its parts.
	id, _, ok = Service("corte e barba por favor")
	assert.True(t, ok)
	assert.Equal(t, "corte-e-barba", id)

	_, _, ok = Service("lavar o carro")
	assert.False(t, ok)
}

func TestName(t *testing.T) {
	name, ok := Name("joão silva")
	assert.True(t, ok)
	assert.Equal(t, "João Silva", name)

	name, ok = Name("MARIA DE LOURDES")
	assert.True(t, ok)
	assert.Equal(t, "Maria De Lourdes", name)

	_, ok = Name("x")
	assert.False(t, ok)

	_, ok = Name("joao123")
	assert.False(t, ok)
}

func TestPhone(t *testing.T) {
	phone, ok := Phone("11999999999")
	assert.True(t, ok)
	assert.Equal(t, "(11) 99999-9999", phone)

	phone, ok = Phone("meu número é (11) 3333-4444")
	assert.True(t, ok)
	assert.Equal(t, "(11) 3333-4444", phone)

	_, ok = Phone("999")
	assert.False(t, ok)
}

func TestEmail(t *testing.T) {
	email, ok := Email("é JOAO@Email.com pode ser?")
	assert.True(t, ok)
	assert.Equal(t, "joao@email.com", email)

	_, ok = Email("sem email aqui")
	assert.False(t, ok)
}

func TestConfirm(t *testing.T) {
	assert.Equal(t, ConfirmYes, Confirm("sim"))
	assert.Equal(t, ConfirmYes, Confirm("Pode confirmar!"))
	assert.Equal(t, ConfirmYes, Confirm("s"))
	assert.Equal(t, ConfirmYes, Confirm(ButtonConfirmID))
	assert.Equal(t, ConfirmNo, Confirm("não"))
	assert.Equal(t, ConfirmNo, Confirm("nao quero"))
	assert.Equal(t, ConfirmNo, Confirm("n"))
	assert.Equal(t, ConfirmNo, Confirm(ButtonCancelID))
	assert.Equal(t, ConfirmUnknown, Confirm("talvez"))
	assert.Equal(t, ConfirmUnknown, Confirm(""))
}
