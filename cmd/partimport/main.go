package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}
	if err := newApp().Run(context.Background(), args); err != nil {
		log.Fatal().Err(err).Msg("partimport")
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "partimport",
		Usage: "Import supplier part records into a user-defined category and parameter taxonomy",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config-dir", Usage: "directory holding config.yaml, categories.yaml and parameters.yaml (default $CONFIG_DIR or .)"},
			&cli.StringFlag{Name: "log-level", Usage: "override LOG_LEVEL"},
		},
		Commands: []*cli.Command{
			importCommand(),
			resolveCommand(),
			taxonomyCommand(),
			serveCommand(),
			tokenCommand(),
		},
	}
}
