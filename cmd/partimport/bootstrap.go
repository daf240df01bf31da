package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/jhoicas/partimport/internal/application/pipeline"
	"github.com/jhoicas/partimport/internal/application/ports"
	"github.com/jhoicas/partimport/internal/application/resolver"
	"github.com/jhoicas/partimport/internal/domain/identifier"
	"github.com/jhoicas/partimport/internal/domain/taxonomy"
	"github.com/jhoicas/partimport/internal/infrastructure/taxonomyfile"
	"github.com/jhoicas/partimport/pkg/config"
	"github.com/jhoicas/partimport/pkg/logger"
)

// Modos de ENGINE_INTERACTIVE.
const (
	interactiveOff   = "false"
	interactiveOn    = "true"
	interactiveTwice = "twice"
)

// engineEnv dependencias compartidas por los comandos, construidas desde la configuración.
type engineEnv struct {
	cfg      *config.Config
	log      *logger.Logger
	tax      *taxonomy.Taxonomy
	resolver *resolver.Resolver
	engine   *identifier.Engine
	policy   identifier.Policy
	hooks    []pipeline.NamedHook
	out      io.Writer
}

// loadConfig lee la configuración y crea el logger (a stderr: stdout es para resultados).
func loadConfig(cmd *cli.Command) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(cmd.String("config-dir"))
	if err != nil {
		return nil, nil, err
	}
	if lvl := cmd.String("log-level"); lvl != "" {
		cfg.App.LogLevel = lvl
	}
	var errOut io.Writer = os.Stderr
	if w := cmd.Root().ErrWriter; w != nil {
		errOut = w
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Out: errOut})
	return cfg, log, nil
}

// bootstrap carga configuración y taxonomía y arma el resolvedor y el motor de identificadores.
// Un error de taxonomía es fatal para cualquier comando.
func bootstrap(cmd *cli.Command) (*engineEnv, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	tax, err := taxonomyfile.NewLoader(log).LoadFiles(cfg.CategoriesPath(), cfg.ParametersPath())
	if err != nil {
		return nil, err
	}
	index, err := taxonomy.NewIndex(tax, cfg.Engine.FuzzyCacheSize)
	if err != nil {
		return nil, err
	}
	policy, err := identifier.ParsePolicy(cfg.Engine.IdentifierPolicy)
	if err != nil {
		return nil, err
	}
	hooks, err := pipeline.NewHookRegistry().Resolve(cfg.Engine.Hooks)
	if err != nil {
		return nil, err
	}
	opts := resolver.Options{
		Threshold:           cfg.Engine.FuzzyThreshold,
		MaxCategoryChoices:  cfg.Engine.MaxCategoryChoices,
		MaxParameterChoices: cfg.Engine.MaxParameterChoices,
	}

	out := cmd.Root().Writer
	if out == nil {
		out = os.Stdout
	}
	return &engineEnv{
		cfg:      cfg,
		log:      log,
		tax:      tax,
		resolver: resolver.New(index, opts, nil, log),
		engine:   identifier.NewEngine([]rune(cfg.Engine.Separators)),
		policy:   policy,
		hooks:    hooks,
		out:      out,
	}, nil
}

// orchestrator arma el pipeline con el colaborador de persistencia y el selector dados.
func (e *engineEnv) orchestrator(writer ports.PartWriter, chooser ports.Chooser, workers int) *pipeline.Orchestrator {
	o := pipeline.NewOrchestrator(e.resolver, e.engine, writer, pipeline.Options{
		Policy:  e.policy,
		Hooks:   e.hooks,
		Workers: workers,
	}, e.log)
	return o.WithChooser(chooser)
}

func parseInteractive(s string) (string, error) {
	switch s {
	case "", interactiveOff:
		return interactiveOff, nil
	case interactiveOn, interactiveTwice:
		return s, nil
	}
	return "", fmt.Errorf("interactive mode %q: expected false, true or twice", s)
}
