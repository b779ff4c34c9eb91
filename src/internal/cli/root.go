package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/api-sage/bank-ledger/src/internal/app"
	"github.com/api-sage/bank-ledger/src/internal/config"
	"github.com/api-sage/bank-ledger/src/internal/logger"
	"github.com/spf13/cobra"
)

// Loader builds the container a command runs against.
type Loader func(ctx context.Context) (*app.Container, error)

// DefaultLoader loads configuration from the environment and initialises logging.
func DefaultLoader(ctx context.Context) (*app.Container, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		Output:     cfg.LogOutput,
		FilePath:   cfg.LogFile,
		MaxSizeMB:  50,
		MaxBackups: 7,
		MaxAgeDays: 30,
		Compress:   true,
	}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return app.Build(ctx, cfg)
}

func NewRootCommand(load Loader) *cobra.Command {
	root := &cobra.Command{
		Use:           "backoffice",
		Short:         "Back-office operations for the bank ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(load),
		newMigrateCommand(),
		newSweepCommand(load),
		newInterestCommand(load),
	)

	return root
}

func withContainer(load Loader, run func(cmd *cobra.Command, c *app.Container, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		container, err := load(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if err := container.Close(); err != nil {
				logger.Error("backoffice close container failed", err, nil)
			}
		}()
		return run(cmd, container, args)
	}
}

func newServeCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: withContainer(load, func(cmd *cobra.Command, c *app.Container, _ []string) error {
			return Serve(cmd.Context(), c)
		}),
	}
}

func newMigrateCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending PostgreSQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if strings.TrimSpace(dir) != "" {
				cfg.MigrationsDir = dir
			}
			if err := Migrate(cmd.Context(), cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations completed successfully")
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (defaults to MIGRATIONS_DIR)")
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute(ctx context.Context) {
	if err := NewRootCommand(DefaultLoader).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
