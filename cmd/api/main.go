package main

import (
	"os"

	"github.com/studyhub-il/studyhub/internal/pkg/logger"
	"github.com/studyhub-il/studyhub/internal/server"
)

// @title StudyHub API
// @version 1.0
// @description REST API for the StudyHub academic community: course summaries, forum, tools and messaging

// @contact.name StudyHub Support
// @contact.email support@studyhub.local

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token, as "Bearer <token>"

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// Setup failures are already logged in detail by bootstrap
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Blocks until a shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
