package cli

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/mlthieu/linkstats/cmd"
	"github.com/mlthieu/linkstats/internal/config"
	"github.com/mlthieu/linkstats/internal/models"
)

// MigrateCmd represents the 'migrate' command: it creates or updates the
// 'users', 'links' and 'clicks' tables from the Go models.
var MigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Executes database migrations to create or update tables.",
	Run: func(cobraCmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load configuration")
		}

		db, err := gorm.Open(sqlite.Open(cfg.Database.Name), &gorm.Config{
			TranslateError: true,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}

		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to get underlying SQL database")
		}
		defer sqlDB.Close()

		if err := db.AutoMigrate(&models.User{}, &models.Link{}, &models.Click{}); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}

		fmt.Println("Database migrations executed successfully.")
	},
}

func init() {
	cmd.RootCmd.AddCommand(MigrateCmd)
}
