package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/partimport/internal/application/dto"
	"github.com/jhoicas/partimport/internal/domain/taxonomy"
)

// TaxonomyHandler consulta de la taxonomía cargada.
type TaxonomyHandler struct {
	tax *taxonomy.Taxonomy
}

// NewTaxonomyHandler construye el handler.
func NewTaxonomyHandler(tax *taxonomy.Taxonomy) *TaxonomyHandler {
	return &TaxonomyHandler{tax: tax}
}

// Categories lista todas las categorías en preorden con sus parámetros efectivos.
// @Summary      Listar categorías
// @Tags         taxonomy
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.CategoryListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/taxonomy/categories [get]
func (h *TaxonomyHandler) Categories(c *fiber.Ctx) error {
	return c.JSON(dto.NewCategoryList(h.tax))
}

// Health estado del servicio.
// @Summary      Estado del servicio
// @Tags         health
// @Produce      json
// @Success      200  {object}  dto.HealthResponse
// @Router       /health [get]
func (h *TaxonomyHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Status:     "ok",
		Categories: len(h.tax.Categories()),
		Parameters: len(h.tax.Parameters()),
	})
}
