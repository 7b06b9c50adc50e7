package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/estofaria/os-api/internal/config"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Migration error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var migrationsDir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the OS API database schema",
		Long: `Apply and inspect goose migrations against the configured database.

Examples:
  migrate up                         # Apply all pending migrations
  migrate down                       # Roll back the latest migration
  migrate status                     # List applied and pending migrations
  migrate create add_garantia sql    # New SQL migration file
  migrate seed seeds/default.yaml --company <uuid>
`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&migrationsDir, "dir", "./migrations", "Migrations directory")

	cmd.AddCommand(
		gooseCmd("up", "Apply all pending migrations", cobra.NoArgs, &migrationsDir,
			func(ctx context.Context, db *sql.DB, dir string, _ []string) error {
				return goose.UpContext(ctx, db, dir)
			}),
		gooseCmd("down", "Roll back the latest migration", cobra.NoArgs, &migrationsDir,
			func(ctx context.Context, db *sql.DB, dir string, _ []string) error {
				return goose.DownContext(ctx, db, dir)
			}),
		gooseCmd("status", "Show migration status", cobra.NoArgs, &migrationsDir,
			func(ctx context.Context, db *sql.DB, dir string, _ []string) error {
				return goose.StatusContext(ctx, db, dir)
			}),
		gooseCmd("version", "Print the current schema version", cobra.NoArgs, &migrationsDir,
			func(ctx context.Context, db *sql.DB, dir string, _ []string) error {
				return goose.VersionContext(ctx, db, dir)
			}),
		createCmd(&migrationsDir),
		seedCmd(),
	)

	return cmd
}

type gooseFunc func(ctx context.Context, db *sql.DB, dir string, args []string) error

func gooseCmd(use, short string, args cobra.PositionalArgs, dir *string, fn gooseFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, a []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			return fn(ctx, db, *dir, a)
		},
	}
}

// createCmd only writes a file, so it does not need a database connection
func createCmd(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME [sql|go]",
		Short: "Create a new migration file",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			migrationType := "sql"
			if len(args) == 2 {
				migrationType = args[1]
			}
			return goose.Create(nil, *dir, args[0], migrationType)
		},
	}
}

func openDB(ctx context.Context) (*sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
