package webserver

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"truthtracker/internal/ports"
	"truthtracker/internal/usecase"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	PromiseSync  *usecase.PromiseSync
	IncidentSync *usecase.IncidentSync
	Incidents    ports.IncidentRepository
	Logs         ports.SyncLogRepository
	Policy       ports.AuthorizationPolicy
	AllowedHosts []string
	RelayPath    string
	Logger       *slog.Logger
}

// Server exposes the relay, incident, and sync endpoints over gin.
type Server struct {
	engine       *gin.Engine
	http         *http.Server
	promiseSync  *usecase.PromiseSync
	incidentSync *usecase.IncidentSync
	incidents    ports.IncidentRepository
	logs         ports.SyncLogRepository
	policy       ports.AuthorizationPolicy
	allowedHosts []string
	relayClient  *http.Client
	logger       *slog.Logger

	// syncMu serializes runs: one logical run at a time.
	syncMu sync.Mutex
}

// New builds the server and registers all routes.
func New(deps Deps) *Server {
	s := &Server{
		promiseSync:  deps.PromiseSync,
		incidentSync: deps.IncidentSync,
		incidents:    deps.Incidents,
		logs:         deps.Logs,
		policy:       deps.Policy,
		allowedHosts: deps.AllowedHosts,
		relayClient:  &http.Client{Timeout: 30 * time.Second},
		logger:       deps.Logger,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	engine.Use(cors.New(corsConfig))

	relayPath := deps.RelayPath
	if relayPath == "" {
		relayPath = "/api/fetch-relay"
	}

	engine.GET(relayPath, s.handleRelay)
	engine.POST("/api/incidents", s.handleIncidentBatch)
	engine.GET("/api/incidents", s.handleListVerified)

	admin := engine.Group("/api", AuthMiddleware(s.policy))
	admin.GET("/incidents/pending", s.handleListPending)
	admin.POST("/incidents/:id/approve", s.handleApprove)
	admin.DELETE("/incidents/:id", s.handleReject)
	admin.POST("/sync/promises", s.handlePromiseSync)
	admin.POST("/sync/incidents", s.handleIncidentSync)
	admin.GET("/sync/history", s.handleSyncHistory)

	s.engine = engine
	return s
}

// Handler exposes the underlying handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until the listener fails or Shutdown is called.
func (s *Server) Run(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.engine}
	if s.logger != nil {
		s.logger.Info("http server listening", "addr", addr)
	}
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
