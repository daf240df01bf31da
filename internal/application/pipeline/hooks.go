package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/partimport/internal/domain"
	"github.com/jhoicas/partimport/internal/domain/entity"
)

// Hook mutación de usuario sobre la parte resuelta, antes de persistir.
type Hook func(part *entity.ResolvedPart)

// NamedHook hook con su nombre de registro (para logs).
type NamedHook struct {
	Name string
	Fn   Hook
}

// HookRegistry registro explícito de hooks; la configuración los referencia por nombre.
type HookRegistry struct {
	hooks map[string]Hook
}

// NewHookRegistry crea el registro con los hooks incorporados.
func NewHookRegistry() *HookRegistry {
	r := &HookRegistry{hooks: make(map[string]Hook)}
	_ = r.Register("uppercase-identifier", UppercaseIdentifier)
	_ = r.Register("drop-empty-parameters", DropEmptyParameters)
	return r
}

// Register añade un hook. Un nombre repetido es un error.
func (r *HookRegistry) Register(name string, fn Hook) error {
	if name == "" || fn == nil {
		return domain.ErrInvalidInput
	}
	if _, ok := r.hooks[name]; ok {
		return fmt.Errorf("hook %q: %w", name, domain.ErrDuplicate)
	}
	r.hooks[name] = fn
	return nil
}

// Resolve devuelve los hooks pedidos en el mismo orden.
func (r *HookRegistry) Resolve(names []string) ([]NamedHook, error) {
	out := make([]NamedHook, 0, len(names))
	for _, name := range names {
		fn, ok := r.hooks[name]
		if !ok {
			return nil, fmt.Errorf("hook %q (disponibles: %s): %w", name, strings.Join(r.Names(), ", "), domain.ErrNotFound)
		}
		out = append(out, NamedHook{Name: name, Fn: fn})
	}
	return out, nil
}

// Names nombres registrados, ordenados.
func (r *HookRegistry) Names() []string {
	names := make([]string, 0, len(r.hooks))
	for name := range r.hooks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UppercaseIdentifier pasa el identificador a mayúsculas.
func UppercaseIdentifier(part *entity.ResolvedPart) {
	part.Identifier = strings.ToUpper(part.Identifier)
}

// DropEmptyParameters elimina los parámetros esperados que quedaron sin valor.
func DropEmptyParameters(part *entity.ResolvedPart) {
	for name, value := range part.Parameters {
		if value == "" {
			delete(part.Parameters, name)
		}
	}
}
