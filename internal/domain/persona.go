package domain

import "strings"

// Persona is the user-role lens that selects which default chart set is
// generated.
type Persona string

const (
	PersonaResearcher  Persona = "researcher"
	PersonaFisherman   Persona = "fisherman"
	PersonaPolicymaker Persona = "policymaker"
	PersonaStudent     Persona = "student"
)

// ParsePersona normalizes a persona string, case-insensitively.
// Unrecognized values fall back to researcher rather than erroring; the
// upstream UI treats the persona as a hint, not a contract.
func ParsePersona(s string) Persona {
	switch Persona(strings.ToLower(strings.TrimSpace(s))) {
	case PersonaFisherman:
		return PersonaFisherman
	case PersonaPolicymaker:
		return PersonaPolicymaker
	case PersonaStudent:
		return PersonaStudent
	default:
		return PersonaResearcher
	}
}
