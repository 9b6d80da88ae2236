package cmd

import (
	"context"
	"fmt"
	"time"

	"ConcertHub/db"
	"ConcertHub/logger"
	"ConcertHub/repository"

	"github.com/spf13/cobra"
)

var purgeExpired bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the MySQL metadata cache table",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := setup()
		defer logger.Sync()

		if err := db.ConnectGormDB(cfg); err != nil {
			return err
		}
		defer db.CloseGormDB()

		if err := db.AutoMigrate(db.GormDB); err != nil {
			return err
		}
		fmt.Println("cache_entries table is up to date.")

		if !purgeExpired {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := repository.NewCacheEntryRepository(db.GormDB, nil).PurgeExpired(ctx)
		if err != nil {
			return fmt.Errorf("purge expired entries: %w", err)
		}
		fmt.Printf("Purged %d expired cache entries.\n", n)
		return nil
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&purgeExpired, "purge-expired", false, "also delete expired cache entries")
	rootCmd.AddCommand(migrateCmd)
}
