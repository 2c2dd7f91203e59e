package chat

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/birmarket/supportd/internal/errors"
	"github.com/birmarket/supportd/internal/supportd/cache"
	"github.com/birmarket/supportd/internal/supportd/handoff"
	"github.com/birmarket/supportd/internal/supportd/oms"
	"github.com/birmarket/supportd/internal/supportd/stats"
)

type Config interface {
	GetChatAddr() string
}

// Service is the customer-facing messaging endpoint.
type Service struct {
	conf    Config
	rdb     *redis.Client
	handoff *handoff.Handoff

	responder *Responder

	router *gin.Engine
	server *http.Server
}

func NewService(conf Config, rdb *redis.Client, h *handoff.Handoff, c *cache.Cache, st *stats.CostStats, orders oms.Client) *Service {
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
		conf:      conf,
		rdb:       rdb,
		handoff:   h,
		responder: NewResponder(orders, c, h, st),
		router:    router,
	}

	s.initRouter()
	return s
}

func (s *Service) Start() error {
	s.server = &http.Server{
		Addr:    s.conf.GetChatAddr(),
		Handler: s.router,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Err(err).Msg("Failed to start chat server")
		}
	}()

	log.Info().Msg("Starting chat server on " + s.conf.GetChatAddr())
	return nil
}

func (s *Service) ListenAndServe() error {
	s.server = &http.Server{
		Addr:    s.conf.GetChatAddr(),
		Handler: s.router,
	}

	log.Info().Msg("Starting chat server on " + s.conf.GetChatAddr())
	return s.server.ListenAndServe()
}

func (s *Service) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Debug().Err(err).Msg("Failed to shutdown chat server")
		return nil
	}

	log.Info().Msg("Chat server stopped")
	return nil
}

func (s *Service) GetRouter() *gin.Engine {
	return s.router
}
