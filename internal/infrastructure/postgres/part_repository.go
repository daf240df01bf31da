package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/partimport/internal/domain"
	"github.com/jhoicas/partimport/internal/domain/entity"
	"github.com/jhoicas/partimport/internal/domain/repository"
)

var _ repository.PartRepository = (*PartRepo)(nil)

const partColumns = `id, mpn, manufacturer, identifier, category_path, description, parameters, created_at, updated_at`

// PartRepo implementación del puerto PartRepository sobre PostgreSQL (usable con pool o tx).
type PartRepo struct {
	q Querier
}

// NewPartRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartRepository(q Querier) *PartRepo {
	return &PartRepo{q: q}
}

// NextID reserva un id de la secuencia de partes.
func (r *PartRepo) NextID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('parts_id_seq')`).Scan(&id); err != nil {
		return 0, fmt.Errorf("next part id: %w", err)
	}
	return id, nil
}

// Create persiste una parte con el id ya reservado.
func (r *PartRepo) Create(ctx context.Context, p *entity.Part) error {
	query := `INSERT INTO parts (` + partColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.MPN, p.Manufacturer, p.Identifier, p.CategoryPath, p.Description,
		p.Parameters, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert part: %w", err)
	}
	return nil
}

// GetByID obtiene una parte por id.
func (r *PartRepo) GetByID(ctx context.Context, id int64) (*entity.Part, error) {
	row := r.q.QueryRow(ctx, `SELECT `+partColumns+` FROM parts WHERE id = $1`, id)
	p, err := scanPart(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part: %w", err)
	}
	return p, nil
}

// GetByMPN obtiene una parte por MPN sin distinguir mayúsculas.
func (r *PartRepo) GetByMPN(ctx context.Context, mpn string) (*entity.Part, error) {
	row := r.q.QueryRow(ctx, `SELECT `+partColumns+` FROM parts WHERE lower(mpn) = lower(trim($1))`, mpn)
	p, err := scanPart(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get part by mpn: %w", err)
	}
	return p, nil
}

// Update actualiza los datos de una parte existente; created_at no cambia.
func (r *PartRepo) Update(ctx context.Context, p *entity.Part) error {
	query := `
		UPDATE parts SET mpn = $2, manufacturer = $3, identifier = $4, category_path = $5,
			description = $6, parameters = $7, updated_at = $8
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, p.MPN, p.Manufacturer, p.Identifier, p.CategoryPath, p.Description, p.Parameters, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update part: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista partes por id con paginación. limit <= 0 no limita.
func (r *PartRepo) List(ctx context.Context, limit, offset int) ([]*entity.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts ORDER BY id OFFSET $1`
	args := []any{offset}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}
	defer rows.Close()
	var list []*entity.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("scan part: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPart(row pgx.Row) (*entity.Part, error) {
	var p entity.Part
	err := row.Scan(&p.ID, &p.MPN, &p.Manufacturer, &p.Identifier, &p.CategoryPath, &p.Description,
		&p.Parameters, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Parameters == nil {
		p.Parameters = map[string]string{}
	}
	return &p, nil
}
