package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/jhoicas/partimport/internal/domain/entity"
	"github.com/jhoicas/partimport/internal/domain/taxonomy"
)

func taxonomyCommand() *cli.Command {
	return &cli.Command{
		Name:  "taxonomy",
		Usage: "Inspect the category and parameter configuration",
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Validate categories.yaml and parameters.yaml",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					env, err := bootstrap(cmd)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					fmt.Fprintf(env.out, "ok: %d categories, %d parameters\n", len(env.tax.Categories()), len(env.tax.Parameters()))
					for _, name := range env.tax.UnusedParameters() {
						fmt.Fprintf(env.out, "unused parameter: %s\n", name)
					}
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "Print the category tree with aliases and effective parameters",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					env, err := bootstrap(cmd)
					if err != nil {
						return err
					}
					printTree(env.out, env.tax)
					return nil
				},
			},
		},
	}
}

func printTree(out io.Writer, tax *taxonomy.Taxonomy) {
	for _, node := range tax.Categories() {
		var flags []string
		if node.Structural {
			flags = append(flags, "structural")
		}
		if node.Ignore {
			flags = append(flags, "ignored")
		}
		line := strings.Repeat("  ", node.Depth()) + node.Name
		if len(flags) > 0 {
			line += " [" + strings.Join(flags, ", ") + "]"
		}
		if len(node.Aliases) > 0 {
			line += " aka " + strings.Join(node.Aliases, ", ")
		}
		fmt.Fprintln(out, line)
		if params := effectiveNames(tax, node); len(params) > 0 {
			fmt.Fprintf(out, "%s  parameters: %s\n", strings.Repeat("  ", node.Depth()), strings.Join(params, ", "))
		}
	}
}

func effectiveNames(tax *taxonomy.Taxonomy, node *entity.CategoryNode) []string {
	defs := tax.EffectiveParameters(node)
	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
	}
	return names
}
