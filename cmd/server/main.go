package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/backoffice/internal/buildinfo"
	"github.com/dmitrijs2005/backoffice/internal/logging"
	"github.com/dmitrijs2005/backoffice/internal/server"
	"github.com/dmitrijs2005/backoffice/internal/server/config"
)

func main() {
	root := &cobra.Command{
		Use:           "backoffice-server",
		Short:         "In-memory admin API for local development",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			buildinfo.PrintBuildData(cmd.ErrOrStderr())
			logger, flush := logging.New(logging.Options{Level: cfg.LogLevel})
			defer flush()

			app, err := server.NewApp(cfg, logger)
			if err != nil {
				return err
			}
			return app.Run(cmd.Context())
		},
	}
	config.BindFlags(root.Flags())

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
