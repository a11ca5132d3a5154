package persona

import (
	"fmt"
	"strings"
)

// Persona selects the prompt template used for a review.
type Persona string

const (
	Newcomer    Persona = "newcomer"
	Novice      Persona = "novice"
	Connoisseur Persona = "connoisseur"
)

// ordered as they appear in error messages
var all = []Persona{Newcomer, Novice, Connoisseur}

var templates = map[Persona]string{
	Newcomer:    "Generate a wine review for someone who has never had %s from %s.",
	Novice:      "Generate a wine review for someone who is new to %s from %s.",
	Connoisseur: "Generate a wine review for someone who is familiar with %s from %s.",
}

// InvalidPersonaError is returned for labels outside the supported set.
type InvalidPersonaError struct {
	Value string
}

func (e *InvalidPersonaError) Error() string {
	labels := make([]string, 0, len(all))
	for _, p := range all {
		labels = append(labels, string(p))
	}
	return fmt.Sprintf("Invalid persona '%s'. Expected one of: %s", e.Value, strings.Join(labels, ", "))
}

// All returns the supported personas.
func All() []Persona {
	out := make([]Persona, len(all))
	copy(out, all)
	return out
}

// Parse validates a raw label. Matching is exact and case-sensitive.
func Parse(label string) (Persona, error) {
	p := Persona(label)
	if _, ok := templates[p]; !ok {
		return "", &InvalidPersonaError{Value: label}
	}
	return p, nil
}

// prompt renders the template for p. varietal and region are inserted as-is.
func (p Persona) prompt(varietal, region string) string {
	return fmt.Sprintf(templates[p], varietal, region)
}

// BuildPrompt validates label and renders its prompt.
func BuildPrompt(label, varietal, region string) (string, error) {
	p, err := Parse(label)
	if err != nil {
		return "", err
	}
	return p.prompt(varietal, region), nil
}
