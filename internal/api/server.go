// Package api provides the Juniper Journal REST API server: Scripture
// reference tools, the journal, the Bible reading log and backups.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/JuniperJournal/internal/cache"
	"github.com/FocuswithJustin/JuniperJournal/internal/journal"
	"github.com/FocuswithJustin/JuniperJournal/internal/logging"
	"github.com/FocuswithJustin/JuniperJournal/internal/reading"
	"github.com/FocuswithJustin/JuniperJournal/internal/server"
	"github.com/FocuswithJustin/JuniperJournal/internal/store"
)

// Repository is the persistence the API needs. *store.Store implements it.
type Repository interface {
	Ping(ctx context.Context) error

	ListEntries(ctx context.Context, userID string) ([]journal.Entry, error)
	GetEntry(ctx context.Context, userID, id string) (journal.Entry, error)
	CreateEntry(ctx context.Context, userID string, d journal.Draft) (journal.Entry, error)
	UpdateEntry(ctx context.Context, userID, id string, d journal.Draft) (journal.Entry, error)
	DeleteEntry(ctx context.Context, userID, id string) error
	ImportEntries(ctx context.Context, userID string, entries []journal.Entry) (store.ImportResult, error)

	ListReadings(ctx context.Context, userID string) ([]reading.Reading, error)
	ListReadingsBetween(ctx context.Context, userID, from, to string) ([]reading.Reading, error)
	GetReading(ctx context.Context, userID, id string) (reading.Reading, error)
	CreateReading(ctx context.Context, userID string, d reading.Draft) (reading.Reading, error)
	UpdateReading(ctx context.Context, userID, id string, d reading.Draft) (reading.Reading, error)
	DeleteReading(ctx context.Context, userID, id string) error
	ImportReadings(ctx context.Context, userID string, readings []reading.Reading) (store.ImportResult, error)
}

// Server serves the journal API over a Repository.
type Server struct {
	cfg      Config
	repo     Repository
	hub      *Hub
	upgrader *websocket.Upgrader
	limiter  *RateLimiter
	readings *cache.TTLCache[string, []reading.Reading]
	now      func() time.Time
	started  time.Time

	// readingGen counts reading mutations per user. A list read from the
	// store is only cached if no mutation happened while it was loaded.
	genMu      sync.Mutex
	readingGen map[string]uint64

	stop     chan struct{}
	stopOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides the server's notion of "now" (dashboard, heatmap,
// export timestamps).
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer validates cfg and builds a server. Call Close when done.
func NewServer(cfg Config, repo Repository, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ttl := cfg.HeatmapTTL
	if ttl <= 0 {
		ttl = time.Minute
	}
	s := &Server{
		cfg:      cfg,
		repo:     repo,
		hub:      NewHub(),
		upgrader: newUpgrader(cfg.AllowedOrigins),
		readings: cache.New[string, []reading.Reading](ttl),
		now:      time.Now,
		started:  time.Now(),

		readingGen: make(map[string]uint64),
		stop:       make(chan struct{}),
	}
	if cfg.RateLimitRequests > 0 {
		s.limiter = NewRateLimiter(RateLimiterConfig{
			RequestsPerMinute: cfg.RateLimitRequests,
			BurstSize:         cfg.RateLimitBurst,
			TrustProxy:        cfg.TrustProxy,
		})
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.purgeLoop(max(ttl, time.Second))
	return s, nil
}

// Hub returns the change-event hub. It must be running (see Run or Start)
// before websocket clients connect.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// purgeLoop drops expired cached reading lists every interval.
func (s *Server) purgeLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := s.readings.Purge(); n > 0 {
				logging.Debug("reading cache purged", "entries", n)
			}
		case <-s.stop:
			return
		}
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /scripture/parse", s.handleParse)
	mux.HandleFunc("POST /scripture/parse-list", s.handleParseList)
	mux.HandleFunc("POST /scripture/format", s.handleFormat)
	mux.HandleFunc("GET /scripture/books", s.handleBooks)
	mux.HandleFunc("GET /scripture/resolve", s.handleResolve)

	mux.HandleFunc("GET /journal", s.handleListEntries)
	mux.HandleFunc("POST /journal", s.handleCreateEntry)
	mux.HandleFunc("GET /journal/prompt", s.handlePrompt)
	mux.HandleFunc("GET /journal/{id}", s.handleGetEntry)
	mux.HandleFunc("PUT /journal/{id}", s.handleUpdateEntry)
	mux.HandleFunc("DELETE /journal/{id}", s.handleDeleteEntry)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)

	mux.HandleFunc("GET /readings", s.handleListReadings)
	mux.HandleFunc("POST /readings", s.handleCreateReading)
	mux.HandleFunc("GET /readings/heatmap", s.handleHeatmap)
	mux.HandleFunc("GET /readings/coverage", s.handleCoverage)
	mux.HandleFunc("GET /readings/summary", s.handleReadingSummary)
	mux.HandleFunc("GET /readings/{id}", s.handleGetReading)
	mux.HandleFunc("PUT /readings/{id}", s.handleUpdateReading)
	mux.HandleFunc("DELETE /readings/{id}", s.handleDeleteReading)

	mux.HandleFunc("GET /export", s.handleExport)
	mux.HandleFunc("POST /import", s.handleImport)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return mux
}

// Handler returns the routes wrapped in the middleware chain, outermost
// first: request logging, CORS, rate limiting, authentication, security
// headers.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = server.SecurityHeaders(server.APICSPConfig(), s.routes())
	handler = AuthMiddleware(s.cfg.Auth, handler)
	if s.limiter != nil {
		handler = s.limiter.Middleware(handler)
	}
	handler = server.CORS(server.CORSConfig{AllowedOrigins: s.cfg.AllowedOrigins}, handler)
	return logging.CombinedMiddleware(handler)
}

// Start runs the hub and serves HTTP (or HTTPS) until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.hub.Run(ctx)
	defer s.Close()

	s.logStartup()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if s.cfg.TLS.Enabled() {
			errCh <- srv.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) logStartup() {
	protocol, wsProtocol := "http", "ws"
	if s.cfg.TLS.Enabled() {
		protocol, wsProtocol = "https", "wss"
		logging.Info("TLS enabled", "cert_file", s.cfg.TLS.CertFile)
	} else {
		logging.Warn("TLS disabled - using plain HTTP",
			"recommendation", "terminate TLS at a reverse proxy for production")
	}
	logging.ServerStartup("rest_api", protocol, s.cfg.Port,
		"websocket_protocol", wsProtocol,
		"db_path", s.cfg.DBPath)

	if s.cfg.Auth.Disabled {
		logging.SecurityEvent("authentication_configured", "api",
			"enabled", false,
			"dev_user", s.cfg.Auth.DevUser)
	} else {
		logging.SecurityEvent("authentication_configured", "api",
			"enabled", true,
			"issuer", s.cfg.Auth.Issuer)
	}
	if len(s.cfg.AllowedOrigins) > 0 {
		logging.SecurityEvent("cors_configured", "api",
			"mode", "restricted",
			"allowed_origins_count", len(s.cfg.AllowedOrigins))
	} else {
		logging.SecurityEvent("cors_configured", "api",
			"mode", "permissive",
			"note", "allowing all origins (*) - consider restricting for production")
	}
	if s.limiter != nil {
		logging.Info("rate limiting enabled",
			"requests_per_minute", s.cfg.RateLimitRequests,
			"burst_size", s.limiter.config.BurstSize)
	}
}
