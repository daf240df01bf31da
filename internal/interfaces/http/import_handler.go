package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/partimport/internal/application/dto"
	"github.com/jhoicas/partimport/internal/application/pipeline"
	"github.com/jhoicas/partimport/internal/domain"
	"github.com/jhoicas/partimport/pkg/logger"
)

// maxImportRecords tope de registros por petición.
const maxImportRecords = 1000

// ImportHandler importación por lotes, siempre no interactiva.
type ImportHandler struct {
	importer *pipeline.Orchestrator
	resolver *pipeline.Orchestrator
	log      *logger.Logger
}

// NewImportHandler construye el handler. resolver no debe tener colaborador de persistencia.
func NewImportHandler(importer, resolver *pipeline.Orchestrator, log *logger.Logger) *ImportHandler {
	return &ImportHandler{importer: importer, resolver: resolver, log: log}
}

// Import procesa y persiste un lote. Responde 200 aunque haya partes fallidas:
// el estado de cada parte va en el cuerpo.
// @Summary      Importar lote de registros de proveedor
// @Tags         import
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ImportRequest  true  "Registros y preferencia de proveedores"
// @Success      200   {object}  dto.ImportResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      413   {object}  dto.ErrorResponse
// @Router       /api/import [post]
func (h *ImportHandler) Import(c *fiber.Ctx) error {
	var in dto.ImportRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Records) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "records es requerido"})
	}
	if len(in.Records) > maxImportRecords {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "TOO_MANY_RECORDS", Message: "máximo 1000 registros por lote"})
	}
	report := h.importer.ImportBatch(c.UserContext(), in.Records, in.Suppliers)
	h.log.Info().
		Str("batch_id", report.BatchID).
		Str("subject", GetSubject(c)).
		Int("parts", len(report.Outcomes)).
		Str("status", report.Status.String()).
		Msg("lote importado")
	return c.JSON(dto.NewImportResponse(report))
}

// Resolve resuelve un registro sin persistir.
// @Summary      Resolver categoría, parámetros e identificador
// @Tags         import
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ResolveRequest  true  "Registro de proveedor"
// @Success      200   {object}  dto.ResolveResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/resolve [post]
func (h *ImportHandler) Resolve(c *fiber.Ctx) error {
	var in dto.ResolveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.CategoryPath) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "category_path es requerido"})
	}
	part, err := h.resolver.Process(c.UserContext(), in.RawPartRecord)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStructuralCategory):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "STRUCTURAL_CATEGORY", Message: err.Error()})
		case errors.Is(err, domain.ErrUnresolvedCategory):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "UNRESOLVED_CATEGORY", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.JSON(dto.NewResolveResponse(part))
}
