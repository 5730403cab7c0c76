package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/campusfind/apiserver/config"
	"github.com/campusfind/apiserver/internal/db"
	"github.com/campusfind/apiserver/internal/events"
	"github.com/campusfind/apiserver/internal/handlers"
	"github.com/campusfind/apiserver/internal/services"
	"github.com/campusfind/apiserver/internal/storage"
	"github.com/campusfind/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server wraps the HTTP server, router, and shared resources.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	publisher  *events.Publisher
	logger     *zap.Logger
}

// New constructs a Server with its full dependency graph: database, photo
// storage backend, event broker, services, and routes.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if strings.TrimSpace(cfg.Auth.TokenSecret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	photos, err := newPhotoStorage(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if photos != nil {
		if err := photos.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, fmt.Errorf("ensure photo bucket: %w", err)
		}
	}

	publisher, err := newEventPublisher(ctx, cfg.Broker)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	userRepo := store.NewUserRepository(dbConn)
	itemRepo := store.NewItemRepository(dbConn)

	userService := services.NewUserService(userRepo)
	itemService := services.NewItemService(itemRepo, photos, publisher, logger)

	authMiddleware := handlers.RequireAuth(cfg.Auth)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		RequestLogger(logger),
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, cfg.Auth)
	})
	router.Route("/items", func(r chi.Router) {
		handlers.ItemRouter(r, itemService, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		publisher:  publisher,
		logger:     logger,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown closes shared resources and stops the HTTP server.
func (s *Server) Shutdown() error {
	if s.publisher != nil {
		_ = s.publisher.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}

func newPhotoStorage(ctx context.Context, cfg config.StorageConfig) (storage.ObjectStorage, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "":
		return nil, nil
	case "minio":
		return storage.NewMinioBackend(cfg.Minio)
	case "gcs":
		return storage.NewGCSBackend(ctx, cfg.GCS)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func newEventPublisher(ctx context.Context, cfg config.BrokerConfig) (*events.Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "":
		return nil, nil
	case "rabbitmq":
		backend, err := events.NewRabbitMQBackend(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return events.NewPublisher(backend), nil
	case "pubsub":
		backend, err := events.NewPubSubBackend(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return events.NewPublisher(backend), nil
	default:
		return nil, fmt.Errorf("unknown broker backend %q", cfg.Backend)
	}
}
