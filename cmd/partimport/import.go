package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/jhoicas/partimport/internal/application/inventory"
	"github.com/jhoicas/partimport/internal/application/pipeline"
	"github.com/jhoicas/partimport/internal/application/ports"
	"github.com/jhoicas/partimport/internal/domain"
	"github.com/jhoicas/partimport/internal/domain/entity"
	"github.com/jhoicas/partimport/internal/infrastructure/memory"
	"github.com/jhoicas/partimport/internal/infrastructure/postgres"
	"github.com/jhoicas/partimport/internal/infrastructure/prompt"
	"github.com/jhoicas/partimport/internal/infrastructure/records"
	"github.com/jhoicas/partimport/internal/infrastructure/taxonomyfile"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Resolve and store supplier part records from JSON/YAML files",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry", Usage: "keep results in memory instead of PostgreSQL"},
			&cli.StringFlag{Name: "interactive", Usage: "false | true | twice (default ENGINE_INTERACTIVE)"},
			&cli.StringSliceFlag{Name: "supplier", Usage: "preferred supplier order for the primary record (repeatable)"},
			&cli.BoolFlag{Name: "save-aliases", Usage: "write categories chosen interactively back as aliases"},
			&cli.IntFlag{Name: "workers", Usage: "override ENGINE_WORKERS"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				return cli.Exit("import: at least one record file is required", 2)
			}
			env, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			mode := env.cfg.Engine.Interactive
			if cmd.IsSet("interactive") {
				mode = cmd.String("interactive")
			}
			if mode, err = parseInteractive(mode); err != nil {
				return err
			}
			workers := env.cfg.Engine.Workers
			if cmd.Int("workers") > 0 {
				workers = int(cmd.Int("workers"))
			}

			recs, err := records.LoadFiles(files...)
			if err != nil {
				return err
			}

			writer, closeFn, err := newWriter(ctx, env, cmd.Bool("dry"))
			if err != nil {
				return err
			}
			defer closeFn()

			hint := cmd.StringSlice("supplier")
			chooser := prompt.New(os.Stdin, env.out)
			var report pipeline.Report
			switch mode {
			case interactiveOn:
				report = env.orchestrator(writer, chooser, 1).ImportBatch(ctx, recs, hint)
			case interactiveTwice:
				report = env.orchestrator(writer, ports.NoChooser{}, workers).ImportTwice(ctx, recs, hint, chooser)
			default:
				report = env.orchestrator(writer, ports.NoChooser{}, workers).ImportBatch(ctx, recs, hint)
			}

			printReport(env.out, report)
			if cmd.Bool("save-aliases") {
				saveAliases(env, report)
			}
			if report.Status <= entity.ImportFailure {
				return cli.Exit(fmt.Sprintf("import finished with status %s", report.Status), 1)
			}
			return nil
		},
	}
}

// newWriter colaborador de persistencia: memoria en --dry, PostgreSQL en otro caso.
func newWriter(ctx context.Context, env *engineEnv, dry bool) (ports.PartWriter, func(), error) {
	if dry {
		store := memory.NewStore()
		return inventory.NewWriter(store, store, env.log), func() {}, nil
	}
	pool, err := postgres.NewPool(ctx, env.cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}
	writer := inventory.NewWriter(postgres.NewTxRunner(pool), postgres.NewPartRepository(pool), env.log)
	return writer, pool.Close, nil
}

func printReport(out io.Writer, report pipeline.Report) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tMPN\tSUPPLIERS\tCATEGORY\tIDENTIFIER\tDETAIL")
	for _, o := range report.Outcomes {
		suppliers := make([]string, 0, len(o.Records))
		for _, r := range o.Records {
			suppliers = append(suppliers, r.Supplier)
		}
		var category, ident, detail string
		if o.Part != nil {
			if o.Part.Category != nil {
				category = o.Part.Category.PathString()
			}
			ident = o.Part.Identifier
			if missing := o.Part.MissingParameters(); len(missing) > 0 {
				detail = "missing: " + strings.Join(missing, ", ")
			}
			if len(o.Part.Warnings) > 0 {
				detail = strings.TrimPrefix(detail+"; "+strings.Join(o.Part.Warnings, "; "), "; ")
			}
		}
		if o.Err != nil {
			detail = o.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			o.Status, o.Label(), strings.Join(suppliers, ","), category, ident, detail)
	}
	_ = tw.Flush()
	fmt.Fprintf(out, "batch %s: %d parts, status %s\n", report.BatchID, len(report.Outcomes), report.Status)
}

func saveAliases(env *engineEnv, report pipeline.Report) {
	learned, conflicts := report.LearnedAliases()
	for _, alias := range conflicts {
		env.log.Warn().Str("alias", alias).Msg("alias elegido para varias categorías en el lote, no se guarda")
	}
	for _, la := range learned {
		added, err := taxonomyfile.AddCategoryAlias(env.cfg.CategoriesPath(), la.Category.Path(), la.Alias)
		if errors.Is(err, domain.ErrDuplicate) {
			env.log.Warn().Err(err).Str("category", la.Category.PathString()).Msg("alias ya declarado por otra categoría, no se guarda")
			continue
		}
		if err != nil {
			env.log.Error().Err(err).Str("category", la.Category.PathString()).Msg("no se pudo guardar el alias")
			continue
		}
		if added {
			env.log.Info().
				Str("category", la.Category.PathString()).
				Str("alias", la.Alias).
				Msg("alias guardado")
		}
	}
}
