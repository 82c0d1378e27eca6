package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/mlthieu/linkstats/cmd"
	"github.com/mlthieu/linkstats/internal/api"
	"github.com/mlthieu/linkstats/internal/config"
	"github.com/mlthieu/linkstats/internal/geoip"
	"github.com/mlthieu/linkstats/internal/models"
	"github.com/mlthieu/linkstats/internal/monitor"
	"github.com/mlthieu/linkstats/internal/repository"
	"github.com/mlthieu/linkstats/internal/services"
)

// RunServerCmd represents the 'run-server' command: it initializes the
// database, wires repositories and services, starts the expiry monitor and
// launches the HTTP server with graceful shutdown.
var RunServerCmd = &cobra.Command{
	Use:   "run-server",
	Short: "Starts the URL shortener API server and background processes.",
	Long: `This command initializes the database, configures the API routes,
starts the background expiry monitor and launches the HTTP server.`,
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

		if err := db.AutoMigrate(&models.User{}, &models.Link{}, &models.Click{}); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}

		linkRepo := repository.NewLinkRepository(db)
		clickRepo := repository.NewClickRepository(db)
		userRepo := repository.NewUserRepository(db)
		log.Info().Msg("repositories initialized")

		clickService := services.NewClickService(clickRepo, geoip.NewResolver())
		linkService := services.NewLinkService(linkRepo, clickService)
		analyticsService := services.NewAnalyticsService(linkRepo)
		authService := services.NewAuthService(
			userRepo,
			cfg.Auth.JWTSecret,
			time.Duration(cfg.Auth.TokenTTLHours)*time.Hour,
		)
		log.Info().Msg("services initialized")

		expiryMonitor := monitor.NewExpiryMonitor(
			linkRepo,
			time.Duration(cfg.Monitor.IntervalMinutes)*time.Minute,
		)
		go expiryMonitor.Start()

		router := gin.Default()
		api.SetupRoutes(router, api.Handlers{
			Links:     linkService,
			Analytics: analyticsService,
			Auth:      authService,
		})

		serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
		srv := &http.Server{
			Addr:    serverAddr,
			Handler: router,
		}

		go func() {
			log.Info().Str("addr", serverAddr).Msg("starting server")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("failed to start server")
			}
		}()

		// Block until an interrupt or termination signal arrives, then shut
		// down cleanly so in-flight click writes finish.
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutdown signal received, stopping server")

		expiryMonitor.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}

		log.Info().Msg("server stopped cleanly")
	},
}

func init() {
	cmd.RootCmd.AddCommand(RunServerCmd)
}
