package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/partimport/internal/application/ports"
	"github.com/jhoicas/partimport/internal/domain/entity"
	"github.com/jhoicas/partimport/internal/domain/repository"
	"github.com/jhoicas/partimport/pkg/logger"
)

var _ ports.PartWriter = (*Writer)(nil)

// Writer colaborador de persistencia del pipeline: crea o actualiza la parte por MPN
// y hace upsert de una oferta por cada registro de proveedor.
type Writer struct {
	txRunner TxRunner
	partRepo repository.PartRepository
	log      *logger.Logger
	now      func() time.Time
}

// NewWriter construye el colaborador.
func NewWriter(txRunner TxRunner, partRepo repository.PartRepository, log *logger.Logger) *Writer {
	return &Writer{txRunner: txRunner, partRepo: partRepo, log: log, now: time.Now}
}

// Prepare carga el id e identificador de una parte existente (mismo MPN). Solo lee.
func (w *Writer) Prepare(ctx context.Context, part *entity.ResolvedPart) error {
	if part.ID != 0 || part.Source.MPN == "" {
		return nil
	}
	existing, err := w.partRepo.GetByMPN(ctx, part.Source.MPN)
	if err != nil {
		return err
	}
	if existing != nil {
		part.ID = existing.ID
		part.Identifier = existing.Identifier
	}
	return nil
}

// ReserveID reserva un id nuevo para que la plantilla pueda usar {{pk}}.
func (w *Writer) ReserveID(ctx context.Context, part *entity.ResolvedPart) error {
	if part.ID != 0 {
		return nil
	}
	id, err := w.partRepo.NextID(ctx)
	if err != nil {
		return fmt.Errorf("reserve part id: %w", err)
	}
	part.ID = id
	return nil
}

// Save persiste la parte y sus ofertas en una sola transacción. Sin id previo,
// la parte existente se busca por MPN o se reserva un id nuevo dentro de la transacción.
func (w *Writer) Save(ctx context.Context, part *entity.ResolvedPart) error {
	now := w.now().UTC()
	var savedID int64

	err := w.txRunner.Run(ctx, func(partRepo repository.PartRepository, supplierRepo repository.SupplierPartRepository) error {
		id := part.ID
		if id == 0 && part.Source.MPN != "" {
			existing, err := partRepo.GetByMPN(ctx, part.Source.MPN)
			if err != nil {
				return err
			}
			if existing != nil {
				id = existing.ID
			}
		}
		if id == 0 {
			next, err := partRepo.NextID(ctx)
			if err != nil {
				return fmt.Errorf("reserve part id: %w", err)
			}
			id = next
		}
		record := entity.NewPart(part, now)
		record.ID = id

		existing, err := partRepo.GetByID(ctx, record.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			if err := partRepo.Create(ctx, record); err != nil {
				return err
			}
			w.log.Debug().Int64("part_id", record.ID).Str("mpn", record.MPN).Msg("parte creada")
		} else {
			record.CreatedAt = existing.CreatedAt
			if err := partRepo.Update(ctx, record); err != nil {
				return err
			}
			w.log.Debug().Int64("part_id", record.ID).Str("mpn", record.MPN).Msg("parte actualizada")
		}
		for _, raw := range part.Matches {
			if raw.Supplier == "" || raw.SKU == "" {
				continue
			}
			if err := supplierRepo.Upsert(ctx, entity.NewSupplierPart(record.ID, raw, now)); err != nil {
				return err
			}
		}
		savedID = record.ID
		return nil
	})
	if err != nil {
		return err
	}
	part.ID = savedID
	return nil
}
