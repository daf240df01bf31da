package ports

import (
	"context"

	"github.com/jhoicas/partimport/internal/domain/entity"
)

// PartWriter colaborador de persistencia. Decide por sí mismo crear o actualizar.
type PartWriter interface {
	// Prepare completa ID e identificador de una parte ya guardada con el mismo MPN.
	// No tiene efectos persistentes.
	Prepare(ctx context.Context, part *entity.ResolvedPart) error
	// ReserveID asigna un ID nuevo antes de renderizar. Solo se llama cuando la
	// plantilla usa {{pk}}; el valor consumido no se devuelve si la parte falla después.
	ReserveID(ctx context.Context, part *entity.ResolvedPart) error
	// Save persiste la parte final junto con sus registros de proveedor.
	Save(ctx context.Context, part *entity.ResolvedPart) error
}
