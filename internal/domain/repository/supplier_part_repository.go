package repository

import (
	"context"

	"github.com/jhoicas/partimport/internal/domain/entity"
)

// SupplierPartRepository define el puerto de persistencia para SupplierPart (DIP).
type SupplierPartRepository interface {
	// Upsert crea o actualiza por (supplier, sku); reemplaza los tramos de precio.
	Upsert(ctx context.Context, sp *entity.SupplierPart) error
	ListByPart(ctx context.Context, partID int64) ([]*entity.SupplierPart, error)
}
