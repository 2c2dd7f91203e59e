package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/birmarket/supportd/internal/errors"
	"github.com/birmarket/supportd/internal/supportd/cache"
	"github.com/birmarket/supportd/internal/supportd/handoff"
	"github.com/birmarket/supportd/internal/supportd/history"
	"github.com/birmarket/supportd/internal/supportd/stats"
)

type Config interface {
	GetDashboardAddr() string
}

// Service is the operator dashboard: queue, presence, session control,
// the closed-session archive and the MCP tool surface.
type Service struct {
	conf    Config
	rdb     *redis.Client
	handoff *handoff.Handoff
	stats   *stats.CostStats
	cache   *cache.Cache
	history *history.Store

	mcpServer           *server.MCPServer
	mcpSSEServer        *server.SSEServer
	mcpStreamableServer *server.StreamableHTTPServer

	router *gin.Engine
	server *http.Server
}

func NewService(conf Config, rdb *redis.Client, h *handoff.Handoff, st *stats.CostStats, c *cache.Cache, hist *history.Store) *Service {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if err := router.SetTrustedProxies(nil); err != nil {
		log.Err(err).Msg("Failed to set trusted proxies")
	}

	router.Use(
		errors.RecoveryMiddleware(),
		errors.ErrorHandlerMiddleware(),
		gin.LoggerWithWriter(log.Logger, "/health"),
		corsMiddleware(),
	)

	s := &Service{
		conf:    conf,
		rdb:     rdb,
		handoff: h,
		stats:   st,
		cache:   c,
		history: hist,
		router:  router,
	}

	s.initMCPServer()
	s.initRouter()
	return s
}

func (s *Service) Start() error {
	s.server = &http.Server{
		Addr:    s.conf.GetDashboardAddr(),
		Handler: s.router,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Err(err).Msg("Failed to start dashboard server")
		}
	}()

	log.Info().Msg("Starting dashboard server on " + s.conf.GetDashboardAddr())
	return nil
}

func (s *Service) ListenAndServe() error {
	s.server = &http.Server{
		Addr:    s.conf.GetDashboardAddr(),
		Handler: s.router,
	}

	log.Info().Msg("Starting dashboard server on " + s.conf.GetDashboardAddr())
	return s.server.ListenAndServe()
}

func (s *Service) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Debug().Err(err).Msg("Failed to shutdown dashboard server")
		return nil
	}

	log.Info().Msg("Dashboard server stopped")
	return nil
}

func (s *Service) GetRouter() *gin.Engine {
	return s.router
}
