package dto

import (
	"github.com/jhoicas/partimport/internal/application/pipeline"
	"github.com/jhoicas/partimport/internal/domain/entity"
)

// ImportRequest lote de registros de proveedor. Suppliers ordena la preferencia
// del registro primario cuando varios proveedores reportan el mismo MPN.
type ImportRequest struct {
	Records   []entity.RawPartRecord `json:"records"`
	Suppliers []string               `json:"suppliers,omitempty"`
}

// ImportResponse resultado del lote.
type ImportResponse struct {
	BatchID string           `json:"batch_id"`
	Status  string           `json:"status"`
	Parts   []PartOutcomeDTO `json:"parts"`
}

// PartOutcomeDTO resultado de una parte lógica.
type PartOutcomeDTO struct {
	Index      int               `json:"index"`
	MPN        string            `json:"mpn"`
	Suppliers  []string          `json:"suppliers"`
	Status     string            `json:"status"`
	ID         int64             `json:"id,omitempty"`
	Category   string            `json:"category,omitempty"`
	Identifier string            `json:"identifier,omitempty"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Missing    []string          `json:"missing,omitempty"`
	Warnings   []string          `json:"warnings,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// ResolveRequest un registro a resolver sin persistir.
type ResolveRequest struct {
	entity.RawPartRecord
	Suppliers []string `json:"suppliers,omitempty"`
}

// ResolveResponse parte resuelta.
type ResolveResponse struct {
	Category     string            `json:"category"`
	Identifier   string            `json:"identifier"`
	Parameters   map[string]string `json:"parameters"`
	Missing      []string          `json:"missing,omitempty"`
	Warnings     []string          `json:"warnings,omitempty"`
	LearnedAlias string            `json:"learned_alias,omitempty"`
}

// NewImportResponse construye la respuesta desde el reporte del lote.
func NewImportResponse(r pipeline.Report) ImportResponse {
	out := ImportResponse{BatchID: r.BatchID, Status: r.Status.String(), Parts: make([]PartOutcomeDTO, 0, len(r.Outcomes))}
	for _, o := range r.Outcomes {
		out.Parts = append(out.Parts, NewPartOutcome(o))
	}
	return out
}

// NewPartOutcome convierte un Outcome.
func NewPartOutcome(o pipeline.Outcome) PartOutcomeDTO {
	d := PartOutcomeDTO{Index: o.Index, MPN: o.Label(), Status: o.Status.String()}
	for _, r := range o.Records {
		d.Suppliers = append(d.Suppliers, r.Supplier)
	}
	if o.Err != nil {
		d.Error = o.Err.Error()
	}
	if p := o.Part; p != nil {
		d.ID = p.ID
		d.Identifier = p.Identifier
		d.Parameters = p.Parameters
		d.Missing = p.MissingParameters()
		d.Warnings = p.Warnings
		if p.Category != nil {
			d.Category = p.Category.PathString()
		}
	}
	return d
}

// NewResolveResponse convierte una parte resuelta.
func NewResolveResponse(p *entity.ResolvedPart) ResolveResponse {
	return ResolveResponse{
		Category:     p.Category.PathString(),
		Identifier:   p.Identifier,
		Parameters:   p.Parameters,
		Missing:      p.MissingParameters(),
		Warnings:     p.Warnings,
		LearnedAlias: p.LearnedAlias,
	}
}
