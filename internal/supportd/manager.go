// Package supportd wires the configuration, redis and the services into
// the three run modes of the binary: launcher, chat and dashboard.
package supportd

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/birmarket/supportd/internal/supportd/cache"
	"github.com/birmarket/supportd/internal/supportd/chat"
	"github.com/birmarket/supportd/internal/supportd/conf"
	"github.com/birmarket/supportd/internal/supportd/dashboard"
	"github.com/birmarket/supportd/internal/supportd/handoff"
	"github.com/birmarket/supportd/internal/supportd/history"
	"github.com/birmarket/supportd/internal/supportd/launcher"
	"github.com/birmarket/supportd/internal/supportd/oms"
	"github.com/birmarket/supportd/internal/supportd/redisdb"
	"github.com/birmarket/supportd/internal/supportd/stats"
	"github.com/birmarket/supportd/pkg/config"
)

type Manager struct {
	conf *conf.Config
	scm  *config.Manager

	rdb *redis.Client
}

func New() *Manager {
	return &Manager{}
}

func (m *Manager) load(configPath string, cmdConf map[string]any) error {
	c, scm, err := conf.Load(configPath, cmdConf)
	if err != nil {
		return err
	}
	m.conf = c
	m.scm = scm

	m.rdb = redisdb.New(redisdb.Options{
		Addr:     c.GetRedisAddr(),
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	})
	return nil
}

func (m *Manager) close() {
	if m.rdb != nil {
		if err := m.rdb.Close(); err != nil {
			log.Debug().Err(err).Msg("redis close failed")
		}
	}
}

// RunLauncher boots redis if needed and supervises the two services until
// interrupt.
func (m *Manager) RunLauncher(ctx context.Context, configPath string, cmdConf map[string]any) error {
	if err := m.load(configPath, cmdConf); err != nil {
		return err
	}
	defer m.close()

	return launcher.New(m.conf, m.rdb).Run(ctx)
}

// RunChat serves the customer messaging endpoint until the context ends.
func (m *Manager) RunChat(ctx context.Context, configPath string, cmdConf map[string]any) error {
	if err := m.load(configPath, cmdConf); err != nil {
		return err
	}
	defer m.close()

	if err := redisdb.Ping(ctx, m.rdb); err != nil {
		return err
	}

	st := stats.New()
	h := handoff.New(m.rdb, m.conf.GetSessionTTL(), m.conf.GetAgentTTL())
	c := cache.New(m.rdb, m.conf.GetCacheThreshold(), m.conf.GetSessionTTL())

	svc := chat.NewService(m.conf, m.rdb, h, c, st, oms.NewMock())
	if err := svc.Start(); err != nil {
		return err
	}

	<-ctx.Done()

	err := svc.Stop()
	st.LogReport()
	return err
}

// RunDashboard serves the operator dashboard until the context ends.
func (m *Manager) RunDashboard(ctx context.Context, configPath string, cmdConf map[string]any) error {
	if err := m.load(configPath, cmdConf); err != nil {
		return err
	}
	defer m.close()

	if err := redisdb.Ping(ctx, m.rdb); err != nil {
		return err
	}

	hist, err := history.Open(m.conf.GetHistoryPath())
	if err != nil {
		return err
	}
	defer hist.Close()

	st := stats.New()
	h := handoff.New(m.rdb, m.conf.GetSessionTTL(), m.conf.GetAgentTTL())
	c := cache.New(m.rdb, m.conf.GetCacheThreshold(), m.conf.GetSessionTTL())

	svc := dashboard.NewService(m.conf, m.rdb, h, st, c, hist)
	if err := svc.Start(); err != nil {
		return err
	}

	<-ctx.Done()
	return svc.Stop()
}
