package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/uapibot/uapibot/internal/api"
	"github.com/uapibot/uapibot/internal/lookup"
	"github.com/uapibot/uapibot/internal/natsserver"
	"github.com/uapibot/uapibot/internal/slack"
	"github.com/uapibot/uapibot/internal/stats"
	"github.com/uapibot/uapibot/internal/uapi"
)

// Daemon is the uapibotd process: embedded NATS, the Slack gateway, the
// lookup agent, and the control API.
type Daemon struct {
	cfg         Config
	logger      zerolog.Logger
	nats        *natsserver.Server
	tracker     *stats.Tracker
	gateway     *slack.Gateway
	lookupAgent *lookup.Agent
	apiServer   *api.Server
	startedAt   time.Time
	slackUp     atomic.Bool
	stopCh      chan struct{}
}

// NewDaemon creates a Daemon from config.
func NewDaemon(cfg Config, logger zerolog.Logger) *Daemon {
	return &Daemon{
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// Run starts all subsystems and blocks until a signal is received or Stop is called.
func (d *Daemon) Run() error {
	d.startedAt = time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Start embedded NATS.
	ns, err := natsserver.New(natsserver.Config{
		Host:  d.cfg.NATS.Host,
		Port:  d.cfg.NATS.Port,
		Token: d.cfg.NATS.Token,
	}, d.logger)
	if err != nil {
		return fmt.Errorf("start nats: %w", err)
	}
	d.nats = ns

	// 2. Start the lookup stats tracker.
	tracker, err := stats.New(ns.Conn(), d.logger)
	if err != nil {
		ns.Shutdown()
		return fmt.Errorf("start stats tracker: %w", err)
	}
	d.tracker = tracker

	// 3. Start the lookup agent with its Uapi client and bus messenger.
	client := uapi.NewClient(d.cfg.Uapi.BaseURL, d.cfg.Uapi.Timeout)
	messenger := lookup.NewBusMessenger(ns.Conn(), d.cfg.Security.CommandSecret)
	handler := lookup.NewHandler(client, messenger, d.logger)

	d.lookupAgent = lookup.NewAgent(ns.Conn(), handler, d.logger)
	if err := d.lookupAgent.Start(); err != nil {
		d.shutdown()
		return fmt.Errorf("start lookup agent: %w", err)
	}

	// 4. Start the Slack gateway when a bot token is configured.
	smErrCh := make(chan error, 1)
	if d.cfg.Slack.BotToken != "" {
		d.gateway = slack.NewGateway(d.cfg.Slack, ns.Conn(), d.cfg.Security.CommandSecret, d.logger)
		if err := d.gateway.Start(); err != nil {
			d.shutdown()
			return fmt.Errorf("start slack gateway: %w", err)
		}
		if d.gateway.HasListener() {
			go func() {
				d.slackUp.Store(true)
				defer d.slackUp.Store(false)
				smErrCh <- d.gateway.RunListener(ctx)
			}()
		}
	} else {
		d.logger.Warn().Msg("no slack bot token configured, chat surface disabled")
	}

	// 5. Start the control API server.
	d.apiServer = api.New(d.cfg.Server.Socket, tracker, d.slackUp.Load, d.startedAt, d.logger)
	apiErrCh := make(chan error, 1)
	go func() {
		apiErrCh <- d.apiServer.Start()
	}()

	// 6. Watch the config file for log-level changes.
	if d.cfg.ConfigFileUsed != "" {
		if err := d.watchConfig(ctx, d.cfg.ConfigFileUsed); err != nil {
			d.logger.Warn().Err(err).Msg("config watch unavailable")
		}
	}

	d.logger.Info().
		Str("socket", d.cfg.Server.Socket).
		Msg("uapibotd started")

	// 7. Wait for signal, stop call, or subsystem error.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		d.logger.Info().Str("signal", sig.String()).Msg("shutting down")
	case <-d.stopCh:
		d.logger.Info().Msg("stop requested, shutting down")
	case err := <-smErrCh:
		d.logger.Error().Err(err).Msg("socket mode error")
		cancel()
		d.shutdown()
		return err
	case err := <-apiErrCh:
		if err != nil {
			d.logger.Error().Err(err).Msg("API server error")
		}
	}

	cancel()
	return d.shutdown()
}

// Stop signals the daemon to shut down. Safe to call from another goroutine.
func (d *Daemon) Stop() {
	close(d.stopCh)
}

// NATSClientURL returns the embedded NATS server's client URL.
func (d *Daemon) NATSClientURL() string {
	if d.nats == nil {
		return ""
	}
	return d.nats.ClientURL()
}

// NATSConnectOpts returns NATS connection options for in-process connections.
func (d *Daemon) NATSConnectOpts() []nats.Option {
	if d.nats == nil {
		return nil
	}
	return []nats.Option{nats.InProcessServer(d.nats.NATSServer())}
}

func (d *Daemon) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if d.apiServer != nil {
		d.apiServer.Shutdown(ctx)
	}
	if d.gateway != nil {
		d.gateway.Close()
	}
	if d.lookupAgent != nil {
		d.lookupAgent.Close()
	}
	if d.tracker != nil {
		d.tracker.Close()
	}
	if d.nats != nil {
		d.nats.Shutdown()
	}
	return nil
}
