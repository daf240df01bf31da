package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/partimport/internal/domain"
	"github.com/jhoicas/partimport/internal/domain/entity"
	"github.com/jhoicas/partimport/internal/domain/repository"
)

var _ repository.SupplierPartRepository = (*SupplierPartRepo)(nil)

// SupplierPartRepo ofertas de proveedor y sus tramos de precio.
type SupplierPartRepo struct {
	q Querier
}

// NewSupplierPartRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierPartRepository(q Querier) *SupplierPartRepo {
	return &SupplierPartRepo{q: q}
}

// Upsert crea o actualiza la oferta por (supplier, sku) y reemplaza sus tramos de precio.
// Conviene llamarlo dentro de una transacción (TxRunner).
func (r *SupplierPartRepo) Upsert(ctx context.Context, sp *entity.SupplierPart) error {
	if sp.Supplier == "" || sp.SKU == "" {
		return domain.ErrInvalidInput
	}
	query := `
		INSERT INTO supplier_parts (part_id, supplier, sku, link, currency, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (supplier, sku) DO UPDATE
			SET part_id = EXCLUDED.part_id, link = EXCLUDED.link,
				currency = EXCLUDED.currency, updated_at = EXCLUDED.updated_at
		RETURNING id`
	var id int64
	err := r.q.QueryRow(ctx, query, sp.PartID, sp.Supplier, sp.SKU, sp.Link, sp.Currency, sp.UpdatedAt).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("upsert supplier part: %w", err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM supplier_price_breaks WHERE supplier_part_id = $1`, id)
	for qty, price := range sp.PriceBreaks {
		batch.Queue(`INSERT INTO supplier_price_breaks (supplier_part_id, quantity, price) VALUES ($1, $2, $3)`,
			id, qty, price)
	}
	br := r.q.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("price breaks: %w", err)
		}
	}
	return br.Close()
}

// ListByPart lista las ofertas de una parte con sus tramos de precio.
func (r *SupplierPartRepo) ListByPart(ctx context.Context, partID int64) ([]*entity.SupplierPart, error) {
	query := `
		SELECT sp.id, sp.part_id, sp.supplier, sp.sku, sp.link, sp.currency, sp.updated_at, pb.quantity, pb.price
		FROM supplier_parts sp
		LEFT JOIN supplier_price_breaks pb ON pb.supplier_part_id = sp.id
		WHERE sp.part_id = $1
		ORDER BY sp.supplier, sp.sku, pb.quantity`
	rows, err := r.q.Query(ctx, query, partID)
	if err != nil {
		return nil, fmt.Errorf("list supplier parts: %w", err)
	}
	defer rows.Close()

	var list []*entity.SupplierPart
	byID := make(map[int64]*entity.SupplierPart)
	for rows.Next() {
		var (
			id    int64
			sp    entity.SupplierPart
			qty   *int
			price decimal.NullDecimal
		)
		if err := rows.Scan(&id, &sp.PartID, &sp.Supplier, &sp.SKU, &sp.Link, &sp.Currency, &sp.UpdatedAt, &qty, &price); err != nil {
			return nil, fmt.Errorf("scan supplier part: %w", err)
		}
		cur, ok := byID[id]
		if !ok {
			sp.PriceBreaks = make(map[int]decimal.Decimal)
			cur = &sp
			byID[id] = cur
			list = append(list, cur)
		}
		if qty != nil && price.Valid {
			cur.PriceBreaks[*qty] = price.Decimal
		}
	}
	return list, rows.Err()
}
