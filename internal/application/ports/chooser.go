package ports

import "context"

// Chooser colaborador interactivo: presenta opciones y devuelve la elegida.
// ok=false significa "ninguna" (saltar). En modo no interactivo debe responder
// de inmediato sin bloquear.
type Chooser interface {
	Choose(ctx context.Context, title string, options []string, maxShown int) (index int, ok bool, err error)
}

// NoChooser implementación no interactiva: nunca elige.
type NoChooser struct{}

// Choose devuelve siempre "ninguna".
func (NoChooser) Choose(context.Context, string, []string, int) (int, bool, error) {
	return -1, false, nil
}

// ManualEntry colaborador interactivo que además acepta texto libre. Si el Chooser
// lo implementa, la selección de categoría ofrece "Enter manually ..." como última opción.
type ManualEntry interface {
	EnterText(ctx context.Context, label string) (text string, ok bool, err error)
}
