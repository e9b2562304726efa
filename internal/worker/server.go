package worker

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ybyllc/transcoder-cluster/internal/ffmpeg"
	wmiddleware "github.com/ybyllc/transcoder-cluster/internal/http/middleware"
)

// ServerConfig holds the Worker HTTP server's listen and timeout settings.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DefaultServerConfig returns sensible defaults; WriteTimeout is left at
// zero since a /task request may legitimately run for the length of a
// transcode (bounded instead by the scheduler's client-side timeout).
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:            "0.0.0.0",
		Port:            9000,
		ReadTimeout:     30 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Server is the Worker's HTTP task-protocol listener.
type Server struct {
	config     ServerConfig
	router     *chi.Mux
	httpServer *http.Server
	handlers   *Handlers
	logger     *slog.Logger
}

// NewServer wires the Chi router, Huma API, and raw task/download routes.
func NewServer(config ServerConfig, slot *Slot, detector *ffmpeg.Detector, workDir string, discoveryPort int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RealIP)
	router.Use(wmiddleware.RequestID)
	router.Use(wmiddleware.Logging(logger))
	router.Use(wmiddleware.Recovery(logger))

	humaConfig := huma.DefaultConfig("transcoder-worker API", "dev")
	humaConfig.Info.Description = "Single-node ffmpeg execution endpoint for the transcoder cluster"
	humaConfig.DocsPath = ""
	api := humachi.New(router, humaConfig)

	handlers := NewHandlers(slot, detector, workDir, discoveryPort, logger)

	huma.Register(api, huma.Operation{
		OperationID: "ping",
		Method:      http.MethodGet,
		Path:        "/ping",
		Summary:     "Liveness probe",
	}, handlers.Ping)

	huma.Register(api, huma.Operation{
		OperationID: "status",
		Method:      http.MethodGet,
		Path:        "/status",
		Summary:     "Current execution-slot snapshot",
	}, handlers.Status)

	huma.Register(api, huma.Operation{
		OperationID: "capabilities",
		Method:      http.MethodGet,
		Path:        "/capabilities",
		Summary:     "FFmpeg capability descriptor",
	}, handlers.Capabilities)

	// /task and /download are registered as raw Chi routes rather than
	// through huma.Register: both bodies are large, one-shot binary
	// payloads, and Huma's response envelope is built for typed JSON, not
	// streamed octet writes.
	handlers.RegisterChiRoutes(router)
	router.Handle("/metrics", promhttp.Handler())

	return &Server{config: config, router: router, handlers: handlers, logger: logger}
}

// Router exposes the underlying Chi router for tests.
func (s *Server) Router() *chi.Mux { return s.router }

// Start begins serving and blocks until Shutdown or a fatal listen error.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	s.logger.Info("starting worker HTTP server", slog.String("address", addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("starting worker server: %w", err)
	}
	return nil
}

// Shutdown refuses new tasks, cuts short any in-flight ffmpeg process
// (signal then kill after a short grace period), and drains the listener
// within the configured grace period (spec §4.2 shutdown sequencing).
func (s *Server) Shutdown(ctx context.Context) error {
	s.handlers.RejectNewTasks()
	s.handlers.CancelInFlight()
	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("shutting down worker HTTP server", slog.Duration("timeout", s.config.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down worker server: %w", err)
	}
	return nil
}
