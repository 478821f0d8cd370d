package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Simplici0/shopcost/internal/config"
	"github.com/Simplici0/shopcost/internal/db"
	"github.com/Simplici0/shopcost/internal/library"
	"github.com/Simplici0/shopcost/internal/migrations"
	"github.com/Simplici0/shopcost/internal/pricing"
	"github.com/Simplici0/shopcost/internal/project"
	"github.com/Simplici0/shopcost/internal/seed"
)

type app struct {
	v   *viper.Viper
	cfg config.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:           "shopcost",
		Short:         "Cost estimator for small fabrication projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.cfg = config.Load(a.v)
		},
	}

	flags := root.PersistentFlags()
	flags.String("db", "", "path to the SQLite database (env SHOPCOST_DB_PATH)")
	flags.String("env", "", "runtime environment: dev or prod (env SHOPCOST_ENV)")
	flags.String("currency", "", "currency symbol used in reports (env SHOPCOST_CURRENCY_SYMBOL)")
	flags.String("library", "", "JSON file with row presets (env SHOPCOST_LIBRARY_FILE)")
	_ = a.v.BindPFlag(config.KeyDBPath, flags.Lookup("db"))
	_ = a.v.BindPFlag(config.KeyEnv, flags.Lookup("env"))
	_ = a.v.BindPFlag(config.KeyCurrencySymbol, flags.Lookup("currency"))
	_ = a.v.BindPFlag(config.KeyLibraryFile, flags.Lookup("library"))

	root.AddCommand(a.serveCmd())
	root.AddCommand(a.migrateCmd())
	root.AddCommand(a.seedCmd())
	root.AddCommand(a.quoteCmd())
	root.AddCommand(a.exportCmd())

	return root
}

// openDB opens the configured database, applying pending migrations when
// migrate is set. Outside dev, schema changes go through the migrate command.
func (a *app) openDB(ctx context.Context, migrate bool) (*sql.DB, error) {
	database, err := db.Open(ctx, a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if !migrate {
		return database, nil
	}
	if err := migrations.Up(ctx, database); err != nil {
		database.Close()
		return nil, fmt.Errorf("run database migrations: %w", err)
	}
	return database, nil
}

func (a *app) runSeed(ctx context.Context, database *sql.DB) (seed.Stats, error) {
	presets, err := library.LoadFile(a.cfg.LibraryFile)
	if err != nil {
		return seed.Stats{}, err
	}
	return seed.Run(ctx, database, seed.Config{
		Presets:    presets,
		NewProject: func() pricing.Project { return project.New(project.NewID) },
	})
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			database, err := a.openDB(ctx, true)
			if err != nil {
				return err
			}
			defer database.Close()

			version, err := migrations.Version(ctx, database)
			if err != nil {
				return err
			}
			log.Printf("database %s at schema version %d", a.cfg.DBPath, version)
			return nil
		},
	}
}

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the preset library and create a first project if none exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			database, err := a.openDB(ctx, true)
			if err != nil {
				return err
			}
			defer database.Close()

			stats, err := a.runSeed(ctx, database)
			if err != nil {
				return err
			}
			log.Printf("seed complete: %d inserts, %d updates", stats.Inserts, stats.Updates)
			return nil
		},
	}
}
