package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/tradebooks/tradebooks_backend/internal/repositories/database/pgsql"
	"github.com/tradebooks/tradebooks_backend/pkg/config"
	"github.com/tradebooks/tradebooks_backend/pkg/database"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "tradebooksctl",
		Short:         "Operational tooling for the TradeBooks backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newMigrateCmd(), newRecalculateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newMigrateCmd() *cobra.Command {
	var migrationsPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			db, err := sql.Open("pgx", cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Ping(); err != nil {
				return err
			}

			driver, err := postgres.WithInstance(db, &postgres.Config{})
			if err != nil {
				return err
			}
			m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
			if err != nil {
				return err
			}

			upErr := m.Up()
			if upErr != nil && upErr != migrate.ErrNoChange {
				return upErr
			}
			if sourceErr, dbErr := m.Close(); sourceErr != nil {
				return sourceErr
			} else if dbErr != nil {
				return dbErr
			}

			if upErr == migrate.ErrNoChange {
				cmd.Println("No new migrations to apply.")
			} else {
				cmd.Println("Migrations applied.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&migrationsPath, "migrations", "migrations", "path to the migrations directory")
	return cmd
}

func newRecalculateCmd() *cobra.Command {
	var companyID string

	cmd := &cobra.Command{
		Use:   "recalculate",
		Short: "Rebuild every cached account balance of a company from its transaction history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer database.ClosePgxPool(pool)

			repos := pgsql.NewRepositoryProvider(pool)
			updated, err := repos.LedgerRepo.RecalculateBalances(ctx, companyID)
			if err != nil {
				return err
			}

			cmd.Printf("Recalculated balances for %d accounts.\n", updated)
			return nil
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "company ID whose balances to rebuild")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}
