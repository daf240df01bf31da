package identifier

import (
	"fmt"
	"strings"
)

// Policy controla cuándo se genera el identificador.
type Policy string

const (
	PolicyNever  Policy = "never"  // nunca renderiza
	PolicyNew    Policy = "new"    // solo si la parte no tiene identificador
	PolicyAlways Policy = "always" // renderiza y sobrescribe
)

// ParsePolicy interpreta el valor de configuración; vacío equivale a "new".
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyNew:
		return PolicyNew, nil
	case PolicyNever:
		return PolicyNever, nil
	case PolicyAlways:
		return PolicyAlways, nil
	}
	return "", fmt.Errorf("identifier policy %q: expected never, new or always", s)
}

// ShouldRender decide si se renderiza dado el identificador actual de la parte.
func (p Policy) ShouldRender(current string) bool {
	switch p {
	case PolicyNever:
		return false
	case PolicyAlways:
		return true
	default:
		return current == ""
	}
}
