package lookup

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/uapibot/uapibot/pkg/protocol"
)

// handleTimeout bounds one command invocation end to end.
const handleTimeout = 30 * time.Second

// Agent subscribes to chat command events on the bus and dispatches them
// to the Handler. After each invocation it publishes a telemetry event
// consumed by the stats tracker.
type Agent struct {
	handler *Handler
	nc      *nats.Conn
	logger  zerolog.Logger
	sub     *nats.Subscription
}

// NewAgent creates an Agent. Call Start to begin processing.
func NewAgent(nc *nats.Conn, handler *Handler, logger zerolog.Logger) *Agent {
	return &Agent{
		handler: handler,
		nc:      nc,
		logger:  logger.With().Str("component", "lookup-agent").Logger(),
	}
}

// Start subscribes to chat events.
func (a *Agent) Start() error {
	sub, err := a.nc.Subscribe(protocol.SubjectEvents("chat"), a.handleEvent)
	if err != nil {
		return err
	}
	a.sub = sub
	a.logger.Info().Msg("lookup agent started")
	return nil
}

// Close unsubscribes from the bus.
func (a *Agent) Close() {
	if a.sub != nil {
		a.sub.Unsubscribe()
	}
}

func (a *Agent) handleEvent(msg *nats.Msg) {
	var ev protocol.Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		a.logger.Error().Err(err).Msg("unmarshal chat event")
		return
	}
	if ev.Type != "chat.command" {
		return
	}

	command, _ := ev.Payload["command"].(string)
	args, _ := ev.Payload["args"].(string)
	channel, _ := ev.Payload["channel"].(string)

	// Other plugins may share the bus; only claim our own commands.
	if !KnownCommand(command) {
		return
	}

	a.logger.Info().
		Str("command", command).
		Str("channel", channel).
		Msg("dispatching lookup command")

	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	req := Request{
		Command: strings.ToLower(command),
		Args:    args,
		Channel: channel,
	}
	err := a.handler.Handle(ctx, req)
	if err != nil {
		a.logger.Error().Err(err).Str("command", req.Command).Msg("lookup command failed")
	}
	a.publishTelemetry(req, err)
}

func (a *Agent) publishTelemetry(req Request, handleErr error) {
	evType := "lookup.completed"
	payload := map[string]any{
		"command": req.Command,
		"target":  strings.TrimSpace(req.Args),
	}
	if handleErr != nil {
		evType = "lookup.failed"
		payload["error"] = handleErr.Error()
	}

	ev := protocol.NewEvent(evType, "lookup", payload)
	data, err := json.Marshal(ev)
	if err != nil {
		a.logger.Error().Err(err).Msg("marshal telemetry event")
		return
	}
	if err := a.nc.Publish(protocol.SubjectEvents("lookup"), data); err != nil {
		a.logger.Error().Err(err).Msg("publish telemetry event")
	}
}
