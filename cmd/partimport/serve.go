package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/urfave/cli/v3"

	"github.com/jhoicas/partimport/internal/application/ports"
	httpRouter "github.com/jhoicas/partimport/internal/interfaces/http"
	"github.com/jhoicas/partimport/pkg/logger"
)

// @title                       partimport API
// @version                     1.0
// @description                 Importación de partes de proveedores contra la taxonomía de inventario.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API (non-interactive imports)",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry", Usage: "keep results in memory instead of PostgreSQL"},
			&cli.StringFlag{Name: "swagger", Value: "./docs/swagger.json", Usage: "OpenAPI document served at /docs"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			env, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			if env.cfg.JWT.Secret == "" {
				return errors.New("JWT_SECRET es requerido para el servidor HTTP")
			}
			log := env.log

			writer, closeFn, err := newWriter(ctx, env, cmd.Bool("dry"))
			if err != nil {
				return err
			}
			defer closeFn()

			app := fiber.New(fiber.Config{
				AppName:      env.cfg.App.Name,
				ReadTimeout:  time.Second * 10,
				WriteTimeout: time.Minute,
				IdleTimeout:  time.Second * 60,
				BodyLimit:    16 * 1024 * 1024,
			})
			app.Use(recover.New())

			// Swagger UI en local: http://localhost:<port>/docs
			mountDocs(app, cmd.String("swagger"), log)

			httpRouter.Router(app, httpRouter.RouterDeps{
				Importer:  env.orchestrator(writer, ports.NoChooser{}, env.cfg.Engine.Workers),
				Resolver:  env.orchestrator(nil, ports.NoChooser{}, 1),
				Taxonomy:  env.tax,
				JWTSecret: env.cfg.JWT.Secret,
				Log:       log,
			})

			go func() {
				if err := app.Listen(env.cfg.HTTP.Addr()); err != nil {
					log.Error().Err(err).Msg("servidor HTTP finalizado")
				}
			}()
			log.Info().Str("addr", env.cfg.HTTP.Addr()).Str("env", env.cfg.App.Env).Msg("servidor HTTP iniciado")

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case <-ctx.Done():
			}
			log.Info().Msg("señal de apagado recibida, cerrando servidor...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("apagado del servidor")
			}
			log.Info().Msg("servidor detenido")
			return nil
		},
	}
}

// mountDocs sirve Swagger UI en /docs. Sin documento generado se omite.
func mountDocs(app *fiber.App, file string, log *logger.Logger) bool {
	if _, err := os.Stat(file); err != nil {
		log.Warn().Str("file", file).Msg("documento swagger no encontrado, /docs deshabilitado")
		return false
	}
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: file,
		Path:     "docs",
		Title:    "partimport API",
	}))
	return true
}
