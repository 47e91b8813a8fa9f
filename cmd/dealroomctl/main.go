package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dangerclosesec/dealroom/internal/config"
	"github.com/dangerclosesec/dealroom/internal/migration"
	"github.com/dangerclosesec/dealroom/internal/policy"
	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.buildVersion=..."
var buildVersion = "dev"

var (
	dbConnString string
	verbose      bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&dbConnString, "db", "d", "", "Database connection string (defaults to the DB_* environment)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(policiesCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "dealroomctl",
	Short: "dealroomctl manages the dealroom database",
	Long:  `dealroomctl initializes, migrates and inspects the dealroom database schema and row policies.`,
}

func openDB() *sql.DB {
	dsn := dbConnString
	if dsn == "" {
		dsn = config.Load().DSN()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return db
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the migration bookkeeping tables",
	Run: func(cmd *cobra.Command, args []string) {
		db := openDB()
		defer db.Close()

		migrator := migration.NewMigrator(db)
		if err := migrator.InitializeSchema(cmd.Context()); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}

		fmt.Println("Schema initialized successfully")
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations and row policies",
	Long:  `Apply every pending embedded migration in order, then recreate the row-level security policies.`,
	Run: func(cmd *cobra.Command, args []string) {
		db := openDB()
		defer db.Close()

		ctx := cmd.Context()
		migrator := migration.NewMigrator(db)

		if err := migrator.InitializeSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}

		applied, err := migrator.Migrate(ctx)
		for _, mig := range applied {
			fmt.Printf("Applied %04d_%s\n", mig.Version, mig.Name)
		}
		if err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}

		if len(applied) == 0 {
			fmt.Println("No pending migrations")
		}

		if err := migrator.ApplyRowPolicies(ctx); err != nil {
			log.Fatalf("Failed to apply row policies: %v", err)
		}
		fmt.Println("Row policies applied")

		version, err := migrator.GetCurrentVersion(ctx)
		if err != nil {
			log.Fatalf("Failed to get current version: %v", err)
		}

		fmt.Printf("Current version: %d\n", version)
	},
}

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "Print the generated row policy SQL",
	Run: func(cmd *cobra.Command, args []string) {
		for _, stmt := range policy.RowPolicies() {
			fmt.Println(stmt + ";")
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current schema version",
	Run: func(cmd *cobra.Command, args []string) {
		db := openDB()
		defer db.Close()

		ctx := cmd.Context()
		migrator := migration.NewMigrator(db)

		version, err := migrator.GetCurrentVersion(ctx)
		if err != nil {
			log.Fatalf("Failed to get current version: %v", err)
		}
		fmt.Printf("Current schema version: %d\n", version)

		pending, err := migrator.Pending(ctx)
		if err != nil {
			log.Fatalf("Failed to list pending migrations: %v", err)
		}
		fmt.Printf("Pending migrations: %d\n", len(pending))

		if verbose {
			for _, mig := range pending {
				fmt.Printf("  - %04d_%s\n", mig.Version, mig.Name)
			}

			rows, err := db.QueryContext(ctx, `
				SELECT version, name, applied_at
				FROM schema_migrations
				ORDER BY version DESC
			`)
			if err != nil {
				log.Fatalf("Failed to get version history: %v", err)
			}
			defer rows.Close()

			fmt.Println("\nVersion history:")
			fmt.Println("----------------")

			for rows.Next() {
				var v int
				var name string
				var appliedAt time.Time
				if err := rows.Scan(&v, &name, &appliedAt); err != nil {
					log.Fatalf("Failed to scan version: %v", err)
				}

				fmt.Printf("Version %d %s (applied %s)\n", v, name, appliedAt.Format(time.RFC3339))
			}
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the dealroomctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dealroomctl %s\n", buildVersion)
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
