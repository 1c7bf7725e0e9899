package cmd

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"jewelstock.GO/config"
)

var (
	migrateDir  string
	migrateDown bool
)

var migrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Apply versioned schema migrations",
	Run: func(cmd *cobra.Command, args []string) {
		db, err := config.NewDB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}
		sqlDB, err := db.DB()
		if err != nil {
			fmt.Printf("Database connection failed: %v\n", err)
			return
		}

		driver, err := migratemysql.WithInstance(sqlDB, &migratemysql.Config{})
		if err != nil {
			fmt.Printf("Migration driver failed: %v\n", err)
			return
		}
		m, err := migrate.NewWithDatabaseInstance("file://"+migrateDir, "mysql", driver)
		if err != nil {
			fmt.Printf("Migration setup failed: %v\n", err)
			return
		}

		if migrateDown {
			err = m.Steps(-1)
		} else {
			err = m.Up()
		}
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("Schema already up to date.")
			return
		}
		if err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			return
		}

		version, dirty, _ := m.Version()
		fmt.Printf("Migrated to version %d (dirty=%t)\n", version, dirty)
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateDir, "dir", "migrations", "Directory with migration files")
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back one migration instead of applying")
	rootCmd.AddCommand(migrateCmd)
}
