// Package launcher boots the whole support stack: it makes sure a redis
// server is answering, then runs the chat and dashboard services as child
// processes and reaps them on interrupt.
package launcher

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/birmarket/supportd/internal/supportd/process"
	"github.com/birmarket/supportd/internal/supportd/redisdb"
)

// Services the launcher runs, in start order.
var services = []string{"chat", "dashboard"}

const redisStartTimeout = 10 * time.Second

type Config interface {
	GetRedisProcess() string
	GetStopTimeout() time.Duration
	GetChatAddr() string
	GetDashboardAddr() string
}

// CommandFactory builds the command for one service. Replaced in tests.
type CommandFactory func(service string) *exec.Cmd

type Launcher struct {
	conf    Config
	rdb     *redis.Client
	command CommandFactory
	banner  io.Writer
}

func New(conf Config, rdb *redis.Client) *Launcher {
	return &Launcher{
		conf:    conf,
		rdb:     rdb,
		command: selfCommand,
		banner:  os.Stdout,
	}
}

// selfCommand re-executes the current binary with the service subcommand,
// so both services inherit the launcher's environment and config.
func selfCommand(service string) *exec.Cmd {
	exe, err := os.Executable()
	if err != nil {
		exe = os.Args[0]
	}
	cmd := exec.Command(exe, service)
	cmd.Env = os.Environ()
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}

type child struct {
	service string
	cmd     *exec.Cmd
	exited  chan struct{}
}

// EnsureRedis checks for a live redis server and daemonizes one when none
// is found. An already-running server is never started a second time.
func (l *Launcher) EnsureRedis(ctx context.Context) error {
	name := l.conf.GetRedisProcess()

	if process.IsRunning(name) {
		if err := redisdb.Ping(ctx, l.rdb); err != nil {
			return err
		}
		log.Info().Str("process", name).Msg("redis already running")
		return nil
	}

	log.Info().Str("process", name).Msg("starting redis")
	if err := process.StartDaemon(name, "--daemonize", "yes"); err != nil {
		return err
	}
	return redisdb.Wait(ctx, l.rdb, redisStartTimeout)
}

// Run starts both services and blocks until they exit or the context is
// cancelled. On cancellation each child gets one SIGTERM, then SIGKILL
// after the stop timeout. A crashed child is not restarted.
func (l *Launcher) Run(ctx context.Context) error {
	// The services degrade gracefully without redis, so a failed preflight
	// must not stop them from being launched.
	if err := l.EnsureRedis(ctx); err != nil {
		log.Err(err).Msg("redis preflight failed, starting services anyway")
	}

	var children []*child
	for _, service := range services {
		c := &child{
			service: service,
			cmd:     l.command(service),
			exited:  make(chan struct{}),
		}
		if err := c.cmd.Start(); err != nil {
			l.terminate(children)
			return err
		}
		children = append(children, c)

		go func(c *child) {
			if err := c.cmd.Wait(); err != nil {
				log.Warn().Err(err).Str("service", c.service).Msg("service exited")
			} else {
				log.Info().Str("service", c.service).Msg("service exited")
			}
			close(c.exited)
		}(c)

		log.Info().Str("service", c.service).Int("pid", c.cmd.Process.Pid).Msg("service started")
	}

	l.printBanner()

	allDone := make(chan struct{})
	go func() {
		for _, c := range children {
			<-c.exited
		}
		close(allDone)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down services")
		l.terminate(children)
		<-allDone
		return nil
	case <-allDone:
		return nil
	}
}

// terminate sends SIGTERM once per child, waits out the stop timeout and
// kills whatever is still alive.
func (l *Launcher) terminate(children []*child) {
	for _, c := range children {
		if c.cmd.Process == nil {
			continue
		}
		if err := c.cmd.Process.Signal(syscall.SIGTERM); err != nil {
			log.Debug().Err(err).Str("service", c.service).Msg("signal failed")
		}
	}

	deadline := time.Now().Add(l.conf.GetStopTimeout())
	for _, c := range children {
		select {
		case <-c.exited:
		case <-time.After(time.Until(deadline)):
			if !process.Alive(c.cmd.Process.Pid) {
				continue
			}
			log.Warn().Str("service", c.service).Msg("service did not stop in time, killing")
			if err := c.cmd.Process.Kill(); err != nil {
				log.Debug().Err(err).Str("service", c.service).Msg("kill failed")
			}
		}
	}
}

func (l *Launcher) printBanner() {
	fmt.Fprintln(l.banner, "Birmarket support system is running")
	fmt.Fprintf(l.banner, "  chat:      http://%s\n", l.conf.GetChatAddr())
	fmt.Fprintf(l.banner, "  dashboard: http://%s\n", l.conf.GetDashboardAddr())
	fmt.Fprintln(l.banner, "Press Ctrl+C to stop")
}
