package entity

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RawPartRecord registro normalizado entregado por un proveedor. El motor nunca lo modifica.
type RawPartRecord struct {
	Manufacturer string                  `json:"manufacturer" yaml:"manufacturer"`
	MPN          string                  `json:"mpn" yaml:"mpn"`
	Supplier     string                  `json:"supplier" yaml:"supplier"`
	SKU          string                  `json:"sku" yaml:"sku"`
	CategoryPath []string                `json:"category_path" yaml:"category_path"`
	Parameters   map[string]string       `json:"parameters" yaml:"parameters"`
	SupplierLink string                  `json:"supplier_link" yaml:"supplier_link"`
	Description  string                  `json:"description,omitempty" yaml:"description,omitempty"`
	PriceBreaks  map[int]decimal.Decimal `json:"price_breaks,omitempty" yaml:"price_breaks,omitempty"`
	Currency     string                  `json:"currency,omitempty" yaml:"currency,omitempty"`
}

// ResolvedPart registro de trabajo de una importación: categoría elegida,
// parámetros canónicos fusionados e identificador calculado.
type ResolvedPart struct {
	ID         int64 // identificador numérico estable (0 hasta que se reserva)
	Category   *CategoryNode
	Parameters map[string]string // nombre canónico -> valor
	Identifier string

	Source   RawPartRecord   // registro primario usado para el contexto
	Matches  []RawPartRecord // todos los registros de proveedor de la misma parte
	Warnings []string

	// LearnedAlias texto de proveedor que el usuario asoció a Category en modo interactivo.
	LearnedAlias string
}

// Warn añade una advertencia al registro.
func (p *ResolvedPart) Warn(msg string) {
	p.Warnings = append(p.Warnings, msg)
}

// MissingParameters nombres esperados por la categoría que quedaron sin valor, en orden alfabético.
func (p *ResolvedPart) MissingParameters() []string {
	var missing []string
	for name, value := range p.Parameters {
		if value == "" {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
