package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/mlthieu/linkstats/cmd"
	"github.com/mlthieu/linkstats/internal/config"
	apperrors "github.com/mlthieu/linkstats/internal/errors"
	"github.com/mlthieu/linkstats/internal/geoip"
	"github.com/mlthieu/linkstats/internal/repository"
	"github.com/mlthieu/linkstats/internal/services"
)

// StatsCmd represents the 'stats' command.
var StatsCmd = &cobra.Command{
	Use:   "stats [short-code]",
	Short: "Print click analytics for a short URL",
	Long:  `Prints the total click count and the date, device, browser and country breakdowns for the provided short code.`,
	Args:  cobra.ExactArgs(1),
	Run:   runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

func runStats(cobraCmd *cobra.Command, args []string) {
	shortURL := args[0]

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

	linkRepo := repository.NewLinkRepository(db)
	clickRepo := repository.NewClickRepository(db)
	analyticsService := services.NewAnalyticsService(linkRepo)
	clickService := services.NewClickService(clickRepo, geoip.NewResolver())

	link, err := linkRepo.GetLinkByShortURL(shortURL)
	if err != nil {
		if errors.Is(err, apperrors.ErrLinkNotFound) {
			fmt.Printf("Error: short code '%s' not found\n", shortURL)
		} else {
			fmt.Printf("Error retrieving link: %v\n", err)
		}
		os.Exit(1)
	}

	// The total comes from a count query so it prints fast even for links
	// with long click histories; the breakdowns still need the full scan.
	total, err := clickService.Count(link.ID)
	if err != nil {
		fmt.Printf("Error counting clicks: %v\n", err)
		os.Exit(1)
	}

	// The CLI runs as the operator, so read the analytics as the owner.
	_, analytics, err := analyticsService.LinkAnalytics(link.ID, link.UserID)
	if err != nil {
		fmt.Printf("Error retrieving analytics: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Statistics for short code: %s\n", link.ShortURL)
	fmt.Printf("Long URL: %s\n", link.LongURL)
	fmt.Printf("Created: %s\n", link.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Total clicks: %d\n", total)

	printBreakdown("By date", analytics.ClicksByDate)
	printBreakdown("By device", analytics.ClicksByDevice)
	printBreakdown("By browser", analytics.ClicksByBrowser)
	printBreakdown("By country", analytics.ClicksByCountry)
}

// printBreakdown prints one aggregation mapping with stable key ordering.
func printBreakdown(title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("%s:\n", title)
	for _, k := range keys {
		fmt.Printf("  %-12s %d\n", k, counts[k])
	}
}
