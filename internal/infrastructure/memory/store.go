// Package memory persistencia en memoria para importaciones en seco y tests.
package memory

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/partimport/internal/application/inventory"
	"github.com/jhoicas/partimport/internal/domain"
	"github.com/jhoicas/partimport/internal/domain/entity"
	"github.com/jhoicas/partimport/internal/domain/repository"
)

var (
	_ repository.PartRepository         = (*Store)(nil)
	_ repository.SupplierPartRepository = (*Store)(nil)
	_ inventory.TxRunner                = (*Store)(nil)
)

type offerKey struct{ supplier, sku string }

type state struct {
	parts  map[int64]*entity.Part
	byMPN  map[string]int64
	offers map[offerKey]*entity.SupplierPart
}

func (s *state) clone() *state {
	cp := &state{
		parts:  make(map[int64]*entity.Part, len(s.parts)),
		byMPN:  maps.Clone(s.byMPN),
		offers: make(map[offerKey]*entity.SupplierPart, len(s.offers)),
	}
	for id, p := range s.parts {
		cp.parts[id] = copyPart(p)
	}
	for k, o := range s.offers {
		cp.offers[k] = copyOffer(o)
	}
	return cp
}

// Store guarda partes y ofertas en mapas protegidos por un mutex.
// Run aplica la función sobre una copia y la publica solo si no hay error.
type Store struct {
	mu  sync.Mutex
	seq int64
	st  *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{st: &state{
		parts:  make(map[int64]*entity.Part),
		byMPN:  make(map[string]int64),
		offers: make(map[offerKey]*entity.SupplierPart),
	}}
}

// Run ejecuta fn de forma atómica.
func (s *Store) Run(ctx context.Context, fn func(repository.PartRepository, repository.SupplierPartRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &txRepos{st: s.st.clone(), seq: &s.seq}
	if err := fn(tx, tx); err != nil {
		return err
	}
	s.st = tx.st
	return nil
}

func (s *Store) view() *txRepos {
	return &txRepos{st: s.st, seq: &s.seq}
}

func (s *Store) NextID(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().NextID(ctx)
}

func (s *Store) Create(ctx context.Context, part *entity.Part) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().Create(ctx, part)
}

func (s *Store) GetByID(ctx context.Context, id int64) (*entity.Part, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().GetByID(ctx, id)
}

func (s *Store) GetByMPN(ctx context.Context, mpn string) (*entity.Part, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().GetByMPN(ctx, mpn)
}

func (s *Store) Update(ctx context.Context, part *entity.Part) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().Update(ctx, part)
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]*entity.Part, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().List(ctx, limit, offset)
}

func (s *Store) Upsert(ctx context.Context, sp *entity.SupplierPart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().Upsert(ctx, sp)
}

func (s *Store) ListByPart(ctx context.Context, partID int64) ([]*entity.SupplierPart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view().ListByPart(ctx, partID)
}

// txRepos implementa ambos repositorios sobre un estado sin bloqueo propio.
type txRepos struct {
	st  *state
	seq *int64
}

func (r *txRepos) NextID(context.Context) (int64, error) {
	*r.seq++
	return *r.seq, nil
}

func (r *txRepos) Create(_ context.Context, part *entity.Part) error {
	if part == nil || part.ID == 0 {
		return domain.ErrInvalidInput
	}
	if _, ok := r.st.parts[part.ID]; ok {
		return domain.ErrDuplicate
	}
	key := mpnKey(part.MPN)
	if key != "" {
		if _, ok := r.st.byMPN[key]; ok {
			return domain.ErrDuplicate
		}
		r.st.byMPN[key] = part.ID
	}
	r.st.parts[part.ID] = copyPart(part)
	return nil
}

func (r *txRepos) GetByID(_ context.Context, id int64) (*entity.Part, error) {
	p, ok := r.st.parts[id]
	if !ok {
		return nil, nil
	}
	return copyPart(p), nil
}

func (r *txRepos) GetByMPN(ctx context.Context, mpn string) (*entity.Part, error) {
	id, ok := r.st.byMPN[mpnKey(mpn)]
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

func (r *txRepos) Update(_ context.Context, part *entity.Part) error {
	old, ok := r.st.parts[part.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if oldKey, newKey := mpnKey(old.MPN), mpnKey(part.MPN); oldKey != newKey {
		if newKey != "" {
			if other, taken := r.st.byMPN[newKey]; taken && other != part.ID {
				return domain.ErrDuplicate
			}
			r.st.byMPN[newKey] = part.ID
		}
		delete(r.st.byMPN, oldKey)
	}
	r.st.parts[part.ID] = copyPart(part)
	return nil
}

func (r *txRepos) List(_ context.Context, limit, offset int) ([]*entity.Part, error) {
	ids := make([]int64, 0, len(r.st.parts))
	for id := range r.st.parts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if offset > len(ids) {
		offset = len(ids)
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	list := make([]*entity.Part, 0, len(ids))
	for _, id := range ids {
		list = append(list, copyPart(r.st.parts[id]))
	}
	return list, nil
}

func (r *txRepos) Upsert(_ context.Context, sp *entity.SupplierPart) error {
	if sp == nil || sp.Supplier == "" || sp.SKU == "" {
		return domain.ErrInvalidInput
	}
	if _, ok := r.st.parts[sp.PartID]; !ok {
		return domain.ErrNotFound
	}
	r.st.offers[offerKey{sp.Supplier, sp.SKU}] = copyOffer(sp)
	return nil
}

func (r *txRepos) ListByPart(_ context.Context, partID int64) ([]*entity.SupplierPart, error) {
	var list []*entity.SupplierPart
	for _, o := range r.st.offers {
		if o.PartID == partID {
			list = append(list, copyOffer(o))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Supplier != list[j].Supplier {
			return list[i].Supplier < list[j].Supplier
		}
		return list[i].SKU < list[j].SKU
	})
	return list, nil
}

func mpnKey(mpn string) string {
	return strings.ToLower(strings.TrimSpace(mpn))
}

func copyPart(p *entity.Part) *entity.Part {
	cp := *p
	cp.Parameters = maps.Clone(p.Parameters)
	return &cp
}

func copyOffer(o *entity.SupplierPart) *entity.SupplierPart {
	cp := *o
	cp.PriceBreaks = maps.Clone(o.PriceBreaks)
	return &cp
}
