package booking

import (
	"fmt"
	"strings"
	"time"

	"agendai/models"
	"agendai/services/extract"
)

// User-facing copy for every step of the flow. Kept together so the tone
// stays consistent and the handlers read as pure state transitions.

func promptService() string {
	return "Qual serviço você gostaria de agendar? Temos: " + strings.Join(extract.KnownServices(), ", ") + "."
}

func retryService() string {
	return "Desculpe, não reconheci esse serviço. 🙁 Temos: " + strings.Join(extract.KnownServices(), ", ") + ". Qual deles você quer?"
}

func promptDate(serviceName string) string {
	return fmt.Sprintf("Ótimo, %s! 📅 Para qual dia? Pode dizer \"hoje\", \"amanhã\", um dia da semana ou uma data como 15/08.", serviceName)
}

func retryDate() string {
	return "Não entendi a data. 📅 Tente algo como \"amanhã\", \"sexta\" ou \"15/08\" (datas passadas não valem!)."
}

func promptTime() string {
	return "E qual horário? ⏰ Pode dizer \"às 14h\", \"14:30\" ou \"9 da manhã\"."
}

func retryTime() string {
	return "Não consegui entender o horário. ⏰ Tente \"às 14h\", \"14:30\" ou \"9 da noite\"."
}

func promptName() string {
	return "Perfeito! Agora preciso de alguns dados. Qual é o seu nome completo?"
}

func retryName() string {
	return "Hmm, não parece um nome válido. Pode me dizer seu nome completo?"
}

func promptPhone(name string) string {
	return fmt.Sprintf("Obrigado, %s! 📱 Qual é o seu telefone com DDD?", firstName(name))
}

func retryPhone() string {
	return "Esse telefone não parece válido. 📱 Preciso do número com DDD, ex: 11999999999."
}

func promptEmail() string {
	return "Quase lá! ✉️ Qual é o seu e-mail?"
}

func retryEmail() string {
	return "Esse e-mail não parece válido. ✉️ Pode conferir e enviar de novo?"
}

func promptConfirm(sess *models.BookingSession) *models.BookingReply {
	date, _ := time.Parse("2006-01-02", sess.Date)
	return &models.BookingReply{
		Text: fmt.Sprintf(
			"Confira os dados do seu agendamento:\n\n"+
				"💈 Serviço: %s\n📅 Data: %s\n⏰ Horário: %s\n"+
				"👤 Nome: %s\n📱 Telefone: %s\n✉️ E-mail: %s\n\n"+
				"Posso confirmar?",
			sess.ServiceName, date.Format("02/01/2006"), sess.Time,
			sess.CustomerName, sess.CustomerPhone, sess.CustomerEmail,
		),
		Buttons: confirmButtons(),
	}
}

func confirmButtons() []models.QuickReply {
	return []models.QuickReply{
		{ID: extract.ButtonConfirmID, Title: "✅ Confirmar"},
		{ID: extract.ButtonCancelID, Title: "❌ Cancelar"},
	}
}

func msgConfirmed(appt *models.Appointment) string {
	return fmt.Sprintf(
		"Agendamento confirmado! 🎉\n\nSeu protocolo é %s. Até lá!",
		appt.Protocol,
	)
}

func msgCancelled() string {
	return "Tudo bem, agendamento cancelado. Se mudar de ideia é só me chamar! 👋"
}

func msgCommitFailed() string {
	return "Ops, tive um problema ao salvar seu agendamento. 😥 Pode tentar confirmar de novo?"
}

func msgRestart() string {
	return "Tivemos muitas tentativas sem sucesso, então recomecei do zero. Me diga de novo o que você quer agendar. 🙂"
}

func firstName(full string) string {
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}
