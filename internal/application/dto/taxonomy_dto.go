package dto

import "github.com/jhoicas/partimport/internal/domain/taxonomy"

// CategoryDTO categoría con sus parámetros efectivos (heredados incluidos).
type CategoryDTO struct {
	Path        string   `json:"path"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Aliases     []string `json:"aliases,omitempty"`
	Structural  bool     `json:"structural,omitempty"`
	Ignored     bool     `json:"ignored,omitempty"`
	Identifier  string   `json:"identifier,omitempty"`
	Parameters  []string `json:"parameters"`
}

// CategoryListResponse listado de categorías en preorden.
type CategoryListResponse struct {
	Items []CategoryDTO `json:"items"`
	Total int           `json:"total"`
}

// NewCategoryList construye el listado completo de la taxonomía.
func NewCategoryList(t *taxonomy.Taxonomy) CategoryListResponse {
	nodes := t.Categories()
	out := CategoryListResponse{Items: make([]CategoryDTO, 0, len(nodes)), Total: len(nodes)}
	for _, n := range nodes {
		item := CategoryDTO{
			Path:        n.PathString(),
			Name:        n.Name,
			Description: n.Description,
			Aliases:     n.Aliases,
			Structural:  n.Structural,
			Ignored:     n.IsIgnored(),
			Identifier:  n.Identifier,
			Parameters:  []string{},
		}
		for _, def := range t.EffectiveParameters(n) {
			item.Parameters = append(item.Parameters, def.Name)
		}
		out.Items = append(out.Items, item)
	}
	return out
}
