package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/jhoicas/partimport/internal/application/ports"
	"github.com/jhoicas/partimport/internal/domain/entity"
	"github.com/jhoicas/partimport/internal/infrastructure/prompt"
)

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve one supplier category path and parameters without storing anything",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Required: true, Usage: "supplier category path, elements separated by /"},
			&cli.StringSliceFlag{Name: "param", Usage: "supplier parameter as name=value (repeatable)"},
			&cli.StringFlag{Name: "mpn"},
			&cli.StringFlag{Name: "manufacturer"},
			&cli.StringFlag{Name: "supplier"},
			&cli.StringFlag{Name: "sku"},
			&cli.BoolFlag{Name: "interactive", Usage: "ask when the category or a parameter is ambiguous"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			env, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			raw := entity.RawPartRecord{
				MPN:          cmd.String("mpn"),
				Manufacturer: cmd.String("manufacturer"),
				Supplier:     cmd.String("supplier"),
				SKU:          cmd.String("sku"),
				CategoryPath: splitPath(cmd.String("path")),
				Parameters:   map[string]string{},
			}
			for _, kv := range cmd.StringSlice("param") {
				name, value, ok := strings.Cut(kv, "=")
				if !ok {
					return cli.Exit(fmt.Sprintf("--param %q: expected name=value", kv), 2)
				}
				raw.Parameters[strings.TrimSpace(name)] = value
			}

			var chooser ports.Chooser = ports.NoChooser{}
			if cmd.Bool("interactive") {
				chooser = prompt.New(os.Stdin, env.out)
			}
			part, err := env.orchestrator(nil, chooser, 1).Process(ctx, raw)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			fmt.Fprintf(env.out, "category:   %s\n", part.Category.PathString())
			fmt.Fprintf(env.out, "identifier: %s\n", part.Identifier)
			names := make([]string, 0, len(part.Parameters))
			for name := range part.Parameters {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintf(env.out, "  %s = %s\n", name, part.Parameters[name])
			}
			for _, w := range part.Warnings {
				fmt.Fprintf(env.out, "warning: %s\n", w)
			}
			return nil
		},
	}
}

func splitPath(s string) []string {
	var out []string
	for _, p := range strings.Split(s, "/") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
