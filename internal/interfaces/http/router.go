package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/partimport/internal/application/pipeline"
	"github.com/jhoicas/partimport/internal/domain/taxonomy"
	"github.com/jhoicas/partimport/pkg/jwt"
	"github.com/jhoicas/partimport/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Importer  *pipeline.Orchestrator // con colaborador de persistencia
	Resolver  *pipeline.Orchestrator // sin persistencia
	Taxonomy  *taxonomy.Taxonomy
	JWTSecret string
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	taxonomyHandler := NewTaxonomyHandler(deps.Taxonomy)
	importHandler := NewImportHandler(deps.Importer, deps.Resolver, deps.Log)

	// Público
	app.Get("/health", taxonomyHandler.Health)

	// Rutas protegidas (requieren Bearer Token)
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(jwt.RoleAdmin, jwt.RoleImporter, jwt.RoleViewer)

	api.Get("/taxonomy/categories", anyRole, taxonomyHandler.Categories)
	api.Post("/resolve", anyRole, importHandler.Resolve)
	api.Post("/import", RequireRole(jwt.RoleAdmin, jwt.RoleImporter), importHandler.Import)
}
