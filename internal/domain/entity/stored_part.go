package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Part parte tal como queda en el inventario destino.
type Part struct {
	ID           int64
	MPN          string
	Manufacturer string
	Identifier   string
	CategoryPath string // path completo unido con "/"
	Description  string
	Parameters   map[string]string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SupplierPart oferta de un proveedor para una parte. Única por (Supplier, SKU).
type SupplierPart struct {
	PartID      int64
	Supplier    string
	SKU         string
	Link        string
	Currency    string
	PriceBreaks map[int]decimal.Decimal // cantidad mínima -> precio unitario
	UpdatedAt   time.Time
}

// NewPart construye la parte persistible desde el registro de trabajo.
func NewPart(rp *ResolvedPart, now time.Time) *Part {
	params := make(map[string]string, len(rp.Parameters))
	for k, v := range rp.Parameters {
		if v != "" {
			params[k] = v
		}
	}
	p := &Part{
		ID:           rp.ID,
		MPN:          rp.Source.MPN,
		Manufacturer: rp.Source.Manufacturer,
		Identifier:   rp.Identifier,
		Description:  rp.Source.Description,
		Parameters:   params,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if rp.Category != nil {
		p.CategoryPath = rp.Category.PathString()
	}
	return p
}

// NewSupplierPart construye la oferta de proveedor de un registro crudo.
func NewSupplierPart(partID int64, raw RawPartRecord, now time.Time) *SupplierPart {
	breaks := make(map[int]decimal.Decimal, len(raw.PriceBreaks))
	for qty, price := range raw.PriceBreaks {
		breaks[qty] = price
	}
	return &SupplierPart{
		PartID:      partID,
		Supplier:    raw.Supplier,
		SKU:         raw.SKU,
		Link:        raw.SupplierLink,
		Currency:    raw.Currency,
		PriceBreaks: breaks,
		UpdatedAt:   now,
	}
}
