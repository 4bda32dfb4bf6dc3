package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gridworks-mx/insumo-console/services/api/config"
	"github.com/gridworks-mx/insumo-console/services/api/db"
	"github.com/gridworks-mx/insumo-console/services/api/events"
	"github.com/gridworks-mx/insumo-console/services/api/export"
	"github.com/gridworks-mx/insumo-console/services/api/insumo"
	"github.com/gridworks-mx/insumo-console/services/api/observability"
	"github.com/gridworks-mx/insumo-console/services/api/session"
)

// Store is the persistence surface the handlers depend on, implemented by
// *db.Store and by fakes in tests.
type Store interface {
	ListUnits(ctx context.Context) ([]db.Unit, error)
	GetUnit(ctx context.Context, unitID string) (*db.Unit, error)
	FetchAvailabilities(ctx context.Context, q db.LookupQuery) ([]db.Availability, error)
	FetchInsumos(ctx context.Context, q db.LookupQuery) ([]db.Insumo, error)
	UpsertInsumos(ctx context.Context, unitID, market string, day time.Time, rows []insumo.Row) (insumo.UpsertResult, error)
	LoadSession(ctx context.Context, token uuid.UUID) (session.State, bool, error)
	SaveSession(ctx context.Context, token uuid.UUID, state session.State) error
}

// Server bundles router and dependencies for the REST API.
type Server struct {
	cfg       config.Config
	store     Store
	metrics   *observability.Metrics
	publisher *events.Publisher
	exportTpl export.Template
	logger    *slog.Logger
	engine    *gin.Engine

	flashMu sync.Mutex
	flashes map[uuid.UUID]*insumo.FlashState

	inflightMu sync.Mutex
	inflight   map[string]struct{}
}

// New constructs a server with routes and middleware.
func New(cfg config.Config, store Store, metrics *observability.Metrics, publisher *events.Publisher, tpl export.Template) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(gin.Logger())
	engine.Use(corsMiddleware())

	if cfg.BearerToken != "" {
		engine.Use(bearerAuthMiddleware(cfg.BearerToken))
	}

	server := &Server{
		cfg:       cfg,
		store:     store,
		metrics:   metrics,
		publisher: publisher,
		exportTpl: tpl,
		logger:    slog.Default(),
		engine:    engine,
		flashes:   make(map[uuid.UUID]*insumo.FlashState),
		inflight:  make(map[string]struct{}),
	}
	server.registerRoutes()
	return server
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.registerV1Routes()
}

// flashFor returns the flash state for a session token, creating it on
// first use. The nil token shares one anonymous state.
func (s *Server) flashFor(token uuid.UUID) *insumo.FlashState {
	s.flashMu.Lock()
	defer s.flashMu.Unlock()
	f, ok := s.flashes[token]
	if !ok {
		f = insumo.NewFlashState()
		s.flashes[token] = f
	}
	return f
}

// tryAcquire marks a unit/date/market tuple as having a submission in
// flight. Returns false when one is already running, closing the
// double-submit gap server-side.
func (s *Server) tryAcquire(key string) bool {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	if _, busy := s.inflight[key]; busy {
		return false
	}
	s.inflight[key] = struct{}{}
	return true
}

func (s *Server) release(key string) {
	s.inflightMu.Lock()
	defer s.inflightMu.Unlock()
	delete(s.inflight, key)
}

// sessionToken parses the X-Session-Token header, returning uuid.Nil when
// absent or malformed.
func sessionToken(c *gin.Context) uuid.UUID {
	raw := c.GetHeader("X-Session-Token")
	if raw == "" {
		return uuid.Nil
	}
	token, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return token
}

func apiVersionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-API-Version", "v1")
		c.Next()
	}
}

func bearerAuthMiddleware(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if token != expected {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Session-Token")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
