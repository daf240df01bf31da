package resolver

import (
	"fmt"
	"strings"
)

// ResolutionError detalle de una resolución fallida; Unwrap devuelve el error de dominio.
type ResolutionError struct {
	Text string // texto de proveedor que no se pudo resolver
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Text)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

func pathString(path []string) string {
	return strings.Join(path, " / ")
}
