package repository

import (
	"context"

	"github.com/jhoicas/partimport/internal/domain/entity"
)

// PartRepository define el puerto de persistencia para Part (DIP).
// Get* devuelven (nil, nil) cuando no existe.
type PartRepository interface {
	NextID(ctx context.Context) (int64, error)
	Create(ctx context.Context, part *entity.Part) error
	GetByID(ctx context.Context, id int64) (*entity.Part, error)
	GetByMPN(ctx context.Context, mpn string) (*entity.Part, error)
	Update(ctx context.Context, part *entity.Part) error
	List(ctx context.Context, limit, offset int) ([]*entity.Part, error)
}
