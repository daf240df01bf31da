package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/jhoicas/partimport/pkg/jwt"
)

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue a bearer token for the HTTP API signed with JWT_SECRET",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "subject", Required: true, Usage: "operator name or e-mail"},
			&cli.StringFlag{Name: "role", Value: jwt.RoleImporter, Usage: "admin | importer | viewer"},
			&cli.IntFlag{Name: "minutes", Usage: "validity, default JWT_EXPIRATION_MINUTES"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			switch role := cmd.String("role"); role {
			case jwt.RoleAdmin, jwt.RoleImporter, jwt.RoleViewer:
			default:
				return cli.Exit(fmt.Sprintf("role %q: expected admin, importer or viewer", role), 2)
			}
			minutes := cfg.JWT.Expiration
			if cmd.Int("minutes") > 0 {
				minutes = int(cmd.Int("minutes"))
			}
			tok, err := jwt.Generate(cfg.JWT.Secret, cmd.String("subject"), cmd.String("role"), cfg.JWT.Issuer, minutes)
			if err != nil {
				return err
			}
			out := cmd.Root().Writer
			if out == nil {
				out = os.Stdout
			}
			fmt.Fprintln(out, tok)
			return nil
		},
	}
}
