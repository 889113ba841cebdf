package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	slackapi "github.com/slack-go/slack"

	"github.com/uapibot/uapibot/pkg/protocol"
)

// Config holds Slack API credentials.
type Config struct {
	BotToken string `mapstructure:"bot_token"`
	AppToken string `mapstructure:"app_token"`
}

// Gateway is the chat side of the bot: it publishes chat.command events
// from Socket Mode onto the bus and executes send_message / send_forward
// commands against the Slack API.
type Gateway struct {
	cfg    Config
	cc     ChatClient
	nc     *nats.Conn
	secret string
	logger zerolog.Logger
	sub    *nats.Subscription
}

// NewGateway creates a Gateway backed by the real Slack API.
func NewGateway(cfg Config, nc *nats.Conn, commandSecret string, logger zerolog.Logger) *Gateway {
	api := slackapi.New(cfg.BotToken)
	return &Gateway{
		cfg:    cfg,
		cc:     &realChatClient{client: api},
		nc:     nc,
		secret: commandSecret,
		logger: logger.With().Str("component", "slack-gateway").Logger(),
	}
}

// NewTestGateway creates a Gateway with an injected ChatClient and no
// Socket Mode credentials. Intended for tests.
func NewTestGateway(nc *nats.Conn, commandSecret string, cc ChatClient, logger zerolog.Logger) *Gateway {
	return &Gateway{
		cc:     cc,
		nc:     nc,
		secret: commandSecret,
		logger: logger.With().Str("component", "slack-gateway").Logger(),
	}
}

// Start subscribes to chat commands on the bus.
func (g *Gateway) Start() error {
	sub, err := g.nc.Subscribe(protocol.SubjectCommands("chat"), g.handleCommand)
	if err != nil {
		return fmt.Errorf("subscribe chat commands: %w", err)
	}
	g.sub = sub
	return nil
}

// RunListener runs the Socket Mode listener until ctx is cancelled.
// Callers should skip this when no app token is configured.
func (g *Gateway) RunListener(ctx context.Context) error {
	listener := NewSocketModeListener(g.cfg.BotToken, g.cfg.AppToken, g.publishEvent, g.logger)
	return listener.Run(ctx)
}

// HasListener reports whether Socket Mode credentials are configured.
func (g *Gateway) HasListener() bool {
	return g.cfg.AppToken != ""
}

// Close unsubscribes from the bus.
func (g *Gateway) Close() {
	if g.sub != nil {
		g.sub.Unsubscribe()
	}
}

func (g *Gateway) publishEvent(ev protocol.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		g.logger.Error().Err(err).Msg("marshal chat event")
		return
	}
	if err := g.nc.Publish(protocol.SubjectEvents("chat"), data); err != nil {
		g.logger.Error().Err(err).Msg("publish chat event")
	}
}

func (g *Gateway) handleCommand(msg *nats.Msg) {
	var cmd protocol.Command
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		g.logger.Error().Err(err).Msg("unmarshal chat command")
		return
	}

	if !protocol.VerifyCommand(&cmd, g.secret) {
		g.logger.Warn().
			Str("command", cmd.Command).
			Str("source", cmd.Source).
			Msg("rejecting chat command with bad signature")
		return
	}

	g.logger.Info().
		Str("command", cmd.Command).
		Str("source", cmd.Source).
		Msg("received chat command")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	switch cmd.Command {
	case "send_message":
		err = cmdSendMessage(ctx, g.cc, cmd.Payload)
	case "send_forward":
		err = cmdSendForward(ctx, g.cc, cmd.Payload)
	default:
		err = fmt.Errorf("unknown command: %s", cmd.Command)
	}

	if err != nil {
		g.logger.Error().Err(err).Str("command", cmd.Command).Msg("chat command failed")
	}
}
