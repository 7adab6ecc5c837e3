/*
Package main is the entry point for the Twoogle message board.

Without a subcommand it runs the interactive console on stdin/stdout. The serve
subcommand runs the HTTP front end and the live feed until SIGINT or SIGTERM.
Both load configuration, initialize the global logger, open the configured store
and create the guest account before doing anything else.
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"twoogle/internal/app/board"
	"twoogle/internal/app/db"
	"twoogle/internal/configs"
	"twoogle/internal/console"
	"twoogle/internal/pkg/logx"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "twoogle",
		Short:         "Twoogle - a small messaging board",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runConsole,
	}

	configs.BindFlags(rootCmd.PersistentFlags())
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and the logger. Quiet runs log to cfg.LogFile when
// toFile is set, so console output stays readable. The returned closer releases the log file.
func setup(cmd *cobra.Command, toFile bool) (*configs.AppConfig, io.Closer, error) {
	cfg, err := configs.LoadConfig(cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	var out io.Writer
	var closer io.Closer = nopCloser{}
	if toFile && !cfg.Verbose {
		f, err := logx.OpenLogFile(cfg.LogFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	logx.InitGlobalLogger(cfg.Verbose, out)
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Str("storage_driver", cfg.StorageDriver).
		Bool("avatars_enabled", cfg.AvatarsEnabled()).
		Msg("Configuration loaded successfully")

	return cfg, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openService opens the store and makes sure the guest account exists.
func openService(ctx context.Context, cfg *configs.AppConfig, opts board.Options) *board.Service {
	store, err := db.Open(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open the message store", "driver", cfg.StorageDriver)
	}

	opts.FeedLimit = cfg.FeedLimit
	svc := board.New(store, opts)

	if err := svc.EnsureGuest(ctx); err != nil {
		svc.Close()
		logx.Fatal(err, "Failed to create the guest account")
	}
	return svc
}

func runConsole(cmd *cobra.Command, _ []string) error {
	cfg, logCloser, err := setup(cmd, true)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx := context.Background()

	svc := openService(ctx, cfg, board.Options{})
	defer svc.Close()

	c := console.New(svc, os.Stdin, os.Stdout)
	c.HidePasswords(int(os.Stdin.Fd()))

	return c.Run(ctx)
}
