package main

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"balance-funnel/pkg/api"
	"balance-funnel/pkg/clients/crm"
	"balance-funnel/pkg/clients/relay"
	"balance-funnel/pkg/config"
	"balance-funnel/pkg/middleware"
	"balance-funnel/pkg/services"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn().Msg("No .env file loaded")
	}

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Error loading configuration")
	}
	if missing := cfg.Missing(); len(missing) > 0 {
		// Keep serving so callers get an actionable 500 instead of a dead endpoint
		logger.Warn().Strs("missing", missing).Msg("Relay starting without required configuration")
	}

	// Initialize API clients
	crmClient := crm.NewClient(cfg.CRMBaseURL, cfg.CRMAPIKey, logger)

	// Initialize services
	relayService := services.NewLeadRelayService(crmClient, cfg, logger)

	gin.SetMode(gin.ReleaseMode)

	// Create a new Gin router with default middleware
	router := gin.Default()
	router.HandleMethodNotAllowed = true

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Initialize handlers
	handlers := api.NewHandlers(relayService, cfg, crmClient.ApplicationsURL(), logger)

	// Register routes
	router.POST(relay.SubmissionPath, handlers.HandleLeadSubmission)
	router.OPTIONS(relay.SubmissionPath, func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	router.NoMethod(handlers.MethodNotAllowed)
	router.GET("/health", handlers.HealthCheck)

	// Start the server
	logger.Info().Str("port", cfg.Port).Msg("Server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("Error starting server")
	}
}
