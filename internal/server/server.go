// FilePath: internal/server/server.go
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldworks/meterhub/api"
	"github.com/fieldworks/meterhub/internal/auth"
	"github.com/fieldworks/meterhub/internal/config"
	"github.com/fieldworks/meterhub/internal/database"
	"github.com/fieldworks/meterhub/internal/gateway"
	"github.com/fieldworks/meterhub/internal/hubservice"
	"github.com/fieldworks/meterhub/internal/pipeline"
	"github.com/fieldworks/meterhub/internal/repository/blobs"
	"github.com/fieldworks/meterhub/internal/repository/postgres"
	"github.com/fieldworks/meterhub/internal/session"
	"github.com/gorilla/handlers"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

// Server represents our HTTP server
type Server struct {
	config     *config.Config
	srv        *http.Server
	hubservice *hubservice.HubService
}

// New creates a new server instance
func New(cfg *config.Config) *Server {
	return &Server{
		config: cfg,
	}
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Initialize services
	s.hubservice = initializeHubService(s.config)
	if err := s.hubservice.Validate(); err != nil {
		return fmt.Errorf("service wiring incomplete: %w", err)
	}

	router := api.NewRouter(s.hubservice)
	handler := handlers.RecoveryHandler()(
		handlers.CombinedLoggingHandler(os.Stdout,
			handlers.CORS(
				handlers.AllowedOrigins([]string{"*"}),
				handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
				handlers.AllowedHeaders([]string{"Authorization", "Content-Type"}),
			)(router),
		),
	)

	s.srv = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      handler,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	// Start server
	go func() {
		nuts.L.Infof("[Server] Starting server on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			nuts.L.Errorf("[Server] Error starting server: %v", err)
			os.Exit(1)
		}
	}()

	return s.waitForShutdown()
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (s *Server) waitForShutdown() error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	nuts.L.Infof("[Server] Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}

	nuts.L.Infof("[Server] Server shut down successfully")
	return nil
}

// initializeHubService builds every collaborator once and wires the
// gateway, pipeline and service around them.
func initializeHubService(cfg *config.Config) *hubservice.HubService {
	appDB := initAppDB(cfg.Database.AppDB)

	readings := postgres.NewReadingRepository(appDB)
	meters := postgres.NewMeterRepository(appDB)
	profiles := postgres.NewProfileRepository(appDB)

	store, err := blobs.NewStore(blobs.Config{
		BasePath:    cfg.BlobStore.BasePath,
		BaseURL:     cfg.Server.PublicBaseURL,
		MaxFileSize: cfg.BlobStore.MaxFileSize,
		AllowedMime: cfg.BlobStore.AllowedMimeTypes,
	})
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to initialize blob store: %v", err)
	}

	cache := initRedis(cfg.Redis)
	sessions := session.NewStore()
	sessions.Subscribe("server_log", func(id *session.Identity) {
		if id == nil {
			nuts.L.Infof("[Server] Session cleared")
			return
		}
		nuts.L.Infof("[Server] Session changed: %s (%s)", id.Email, id.Role)
	})

	authSvc := auth.New(cfg.Keycloak, profiles, cache, cfg.Redis.ProfileTTL, sessions)
	gw := gateway.New(authSvc, readings, meters, profiles, store, sessions)

	submission := pipeline.New(readings, store, pipeline.Options{
		CleanupOrphans: cfg.Pipeline.CleanupOrphans,
	})

	return hubservice.New(gw, submission, cfg.Capture)
}

func initAppDB(cfg config.PostgresConfig) database.DB {
	wrappedDB, err := database.NewPostgresDB(cfg)
	if err != nil {
		nuts.L.Fatalf("[Server] Failed to connect to AppDB: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wrappedDB.Ping(ctx); err != nil {
		nuts.L.Fatalf("[Server] Failed to ping database: %v", err)
	}
	return wrappedDB
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		nuts.L.Warnf("[Server] Redis unavailable, profile cache disabled: %v", err)
		return nil
	}

	nuts.L.Infof("[Server] Connected to Redis at %s:%d", cfg.Host, cfg.Port)
	return client
}
