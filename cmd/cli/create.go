package cli

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/mlthieu/linkstats/cmd"
	"github.com/mlthieu/linkstats/internal/config"
	"github.com/mlthieu/linkstats/internal/geoip"
	"github.com/mlthieu/linkstats/internal/repository"
	"github.com/mlthieu/linkstats/internal/services"
)

var (
	longURLFlag string
	aliasFlag   string
	expiresFlag string
	userFlag    string
)

// CreateCmd represents the 'create' command.
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Creates a short URL from a long URL.",
	Long: `Shortens the provided long URL on behalf of a registered user and
prints the generated short code.

Example:
  linkstats create --url="https://www.google.com/search?q=go" --user=jane@example.com`,
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

		userRepo := repository.NewUserRepository(db)
		user, err := userRepo.GetUserByEmail(userFlag)
		if err != nil {
			log.Fatal().Str("email", userFlag).Msg("no account with that email")
		}

		var expiration *time.Time
		if expiresFlag != "" {
			t, err := time.Parse(time.RFC3339, expiresFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("invalid --expires value, expected RFC3339")
			}
			expiration = &t
		}

		linkRepo := repository.NewLinkRepository(db)
		clickService := services.NewClickService(repository.NewClickRepository(db), geoip.NewResolver())
		linkService := services.NewLinkService(linkRepo, clickService)

		link, err := linkService.CreateLink(user.ID, services.CreateLinkInput{
			LongURL:        longURLFlag,
			Alias:          aliasFlag,
			ExpirationDate: expiration,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create short link")
		}

		fmt.Printf("Short URL created:\n")
		fmt.Printf("Code: %s\n", link.ShortURL)
		fmt.Printf("Full URL: %s/%s\n", cfg.Server.BaseURL, link.ShortURL)
	},
}

func init() {
	CreateCmd.Flags().StringVar(&longURLFlag, "url", "", "The long URL to shorten")
	CreateCmd.Flags().StringVar(&aliasFlag, "alias", "", "Optional custom alias")
	CreateCmd.Flags().StringVar(&expiresFlag, "expires", "", "Optional expiration date (RFC3339)")
	CreateCmd.Flags().StringVar(&userFlag, "user", "", "Email of the owning user")

	CreateCmd.MarkFlagRequired("url")
	CreateCmd.MarkFlagRequired("user")

	cmd.RootCmd.AddCommand(CreateCmd)
}
