package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/database/seeders"
	"github.com/shashiranjanraj/shopfront/pkg/database"
	"github.com/shashiranjanraj/shopfront/pkg/migration"
)

// withDB loads config, connects and hands the database to fn.
func withDB(fn func(ctx context.Context, db *database.DB) error) error {
	if err := config.Load(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, config.MongoURI(), config.MongoDatabase())
	if err != nil {
		return err
	}
	defer db.Close(context.Background())

	return fn(ctx, db)
}

func runner(ctx context.Context, db *database.DB) (*migration.Runner, error) {
	return migration.New(ctx, db.Database)
}

// shopfront migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *database.DB) error {
			r, err := runner(ctx, db)
			if err != nil {
				return err
			}
			ran, err := r.Run(ctx)
			for _, name := range ran {
				fmt.Fprintf(cmd.OutOrStdout(), "  Migrated: %s\n", name)
			}
			if err == nil && len(ran) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to migrate.")
			}
			return err
		})
	},
}

// shopfront migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *database.DB) error {
			r, err := runner(ctx, db)
			if err != nil {
				return err
			}
			rolled, err := r.Rollback(ctx)
			for _, name := range rolled {
				fmt.Fprintf(cmd.OutOrStdout(), "  Rolled back: %s\n", name)
			}
			if err == nil && len(rolled) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to rollback.")
			}
			return err
		})
	},
}

// shopfront migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *database.DB) error {
			r, err := runner(ctx, db)
			if err != nil {
				return err
			}
			statuses, err := r.Status(ctx)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "RAN\tBATCH\tMIGRATION")
			for _, s := range statuses {
				ran, batch := "No", "-"
				if s.Ran {
					ran, batch = "Yes", fmt.Sprint(s.Batch)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", ran, batch, s.Name)
			}
			return w.Flush()
		})
	},
}

// shopfront seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(ctx context.Context, db *database.DB) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Running seeders…")
			return seeders.RunAll(ctx, db.Database, cmd.OutOrStdout())
		})
	},
}
