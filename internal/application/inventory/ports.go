package inventory

import (
	"context"

	"github.com/jhoicas/partimport/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a ella.
// Garantiza que una parte y sus ofertas de proveedor se guardan juntas o no se guardan.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		partRepo repository.PartRepository,
		supplierRepo repository.SupplierPartRepository,
	) error) error
}
