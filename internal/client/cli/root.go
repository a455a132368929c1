package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/backoffice/internal/buildinfo"
	"github.com/dmitrijs2005/backoffice/internal/client/config"
	"github.com/dmitrijs2005/backoffice/internal/logging"
)

// newApp is a test seam for building the App behind every command.
var newApp = NewApp

// NewRootCommand builds the backoffice command tree. in and out are the
// terminal the shell and the prompts use.
func NewRootCommand(in io.Reader, out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "backoffice",
		Short:         "Back office for the service-lifecycle-management platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.BindFlags(root.PersistentFlags())

	shell := &cobra.Command{
		Use:   "shell",
		Short: "Interactive back office",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, in, out, func(ctx context.Context, a *App) error {
				return a.Shell(ctx)
			})
		},
	}

	var email string
	login := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, in, out, func(ctx context.Context, a *App) error {
				if email == "" {
					return a.Login(ctx)
				}
				pw, err := getPassword(a.reader, a.out)
				if err != nil {
					return err
				}
				defer wipe(pw)
				return a.LoginWith(ctx, email, string(pw))
			})
		},
	}
	login.Flags().StringVarP(&email, "email", "e", "", "account email (prompted when empty)")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, in, out, func(ctx context.Context, a *App) error {
				return a.Logout(ctx)
			})
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the saved session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, in, out, func(ctx context.Context, a *App) error {
				return a.Whoami(ctx)
			})
		},
	}

	importCmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Import spare parts from a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, in, out, func(ctx context.Context, a *App) error {
				if !a.isLoggedIn() {
					return ErrNotLoggedIn
				}
				return a.Import(ctx, args[0])
			})
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}

	root.AddCommand(shell, login, logout, whoami, importCmd, version)
	return root
}

// withApp loads the configuration, builds the App and closes it after fn.
func withApp(cmd *cobra.Command, in io.Reader, out io.Writer, fn func(context.Context, *App) error) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	logger, flush := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer flush()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx, cfg, logger, in, out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			logger.Warn(ctx, "close failed", "error", cerr)
		}
	}()
	return fn(ctx, a)
}
