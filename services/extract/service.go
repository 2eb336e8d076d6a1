// Package extract holds the pure text extractors used by the booking
// workflow: service names, dates, times, contact fields and yes/no
// confirmations, all over pt-BR free-form input. Nothing here does I/O.
package extract

import "strings"

// serviceAlias maps spoken variants to a canonical catalog entry.
// Order matters: the first alias found in the input wins, so compound
// entries come before their parts ("corte e barba" before "barba").
type serviceAlias struct {
	ID      string
	Name    string
	Aliases []string
}

var serviceTable = []serviceAlias{
	{ID: "corte-e-barba", Name: "Corte e Barba", Aliases: []string{"corte e barba", "combo"}},
	{ID: "corte-masculino", Name: "Corte Masculino", Aliases: []string{"corte masculino", "corte homem", "corte de homem", "corte simples"}},
	{ID: "corte-feminino", Name: "Corte Feminino", Aliases: []string{"corte feminino", "corte mulher", "corte de mulher"}},
	{ID: "barba", Name: "Barba", Aliases: []string{"barba", "aparar a barba"}},
	{ID: "sobrancelha", Name: "Sobrancelha", Aliases: []string{"sobrancelha", "design de sobrancelha"}},
	{ID: "pintura", Name: "Pintura", Aliases: []string{"pintura", "tingir", "coloracao", "coloração"}},
}

// Service matches the input against the alias table. The first alias
// contained in the text wins; no match reports failure.
func Service(text string) (id string, name string, ok bool) {
	normalized := strings.ToLower(text)
	for _, entry := range serviceTable {
		for _, alias := range entry.Aliases {
			if strings.Contains(normalized, alias) {
				return entry.ID, entry.Name, true
			}
		}
	}
	return "", "", false
}

// KnownServices returns the canonical names, for listing back to the user.
func KnownServices() []string {
	names := make([]string, 0, len(serviceTable))
	for _, entry := range serviceTable {
		names = append(names, entry.Name)
	}
	return names
}
