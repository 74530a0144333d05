package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"

	"learnset/internal/database"
	"learnset/internal/identity"
	"learnset/internal/middlewares"
	"learnset/internal/repositories"
	"learnset/internal/services"
)

const secretSweepInterval = 10 * time.Minute

type Server struct {
	port         int
	httpServer   *http.Server
	db           database.Service
	secretRepo   repositories.SecretRepository
	authService  services.AuthService
	oauthService services.OAuthService
	noteService  services.NoteService
	chatService  services.ChatService
}

func NewServer() *Server {
	portStr := os.Getenv("PORT")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Warn().Str("port", portStr).Msg("Invalid PORT environment variable. Using default 8080.")
		port = 8080
	}

	db := database.New()

	secretRepo := repositories.NewSecretRepository(db)
	noteRepo := repositories.NewNoteRepository(db)
	provider := identity.NewProvider(db)

	secretSvc := services.NewSecretService(secretRepo)
	mailer := services.NewEmailService()

	s := &Server{
		port:         port,
		db:           db,
		secretRepo:   secretRepo,
		authService:  services.NewAuthService(secretSvc, provider, mailer),
		oauthService: services.NewOAuthService(provider),
		noteService:  services.NewNoteService(noteRepo),
		chatService:  services.NewChatService(),
	}

	services.InitializeGoth()

	go s.sweepExpiredSecrets()
	go middlewares.CleanupVisitors()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	log.Info().Int("port", s.port).Msg("Starting server")
	return s.httpServer.ListenAndServe()
}

// sweepExpiredSecrets reclaims entries that were never consumed or retried.
// Expiry is re-checked at verification time, so the sweep only frees space.
func (s *Server) sweepExpiredSecrets() {
	ticker := time.NewTicker(secretSweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := s.secretRepo.DeleteExpired(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to sweep expired secrets")
		}
		cancel()
	}
}

func (s *Server) GracefulShutdown(done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}

	if err := s.db.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to close database connection")
	}

	log.Info().Msg("Server exiting")
	done <- true
}
