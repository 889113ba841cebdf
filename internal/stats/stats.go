// Package stats tracks per-command lookup counters for the control API.
// It observes telemetry events on the bus rather than sharing state with
// the handlers, so command invocations stay independent.
package stats

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/uapibot/uapibot/pkg/protocol"
)

// commandState holds counters for one lookup command.
type commandState struct {
	handled    int64
	errors     int64
	lastTarget string
	lastAt     time.Time
}

// Tracker accumulates lookup telemetry.
type Tracker struct {
	mu       sync.RWMutex
	commands map[string]*commandState
	nc       *nats.Conn
	logger   zerolog.Logger
	sub      *nats.Subscription
}

// New creates a Tracker and subscribes to lookup telemetry events.
func New(nc *nats.Conn, logger zerolog.Logger) (*Tracker, error) {
	t := &Tracker{
		commands: make(map[string]*commandState),
		nc:       nc,
		logger:   logger.With().Str("component", "stats").Logger(),
	}

	sub, err := nc.Subscribe(protocol.SubjectEvents("lookup"), t.handleEvent)
	if err != nil {
		return nil, err
	}
	t.sub = sub

	t.logger.Info().Msg("lookup stats tracker started")
	return t, nil
}

func (t *Tracker) handleEvent(msg *nats.Msg) {
	var ev protocol.Event
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		t.logger.Error().Err(err).Msg("bad telemetry event")
		return
	}

	failed := false
	switch ev.Type {
	case "lookup.completed":
	case "lookup.failed":
		failed = true
	default:
		return
	}

	command, _ := ev.Payload["command"].(string)
	if command == "" {
		return
	}
	target, _ := ev.Payload["target"].(string)

	t.mu.Lock()
	state, ok := t.commands[command]
	if !ok {
		state = &commandState{}
		t.commands[command] = state
	}
	state.handled++
	if failed {
		state.errors++
	}
	state.lastTarget = target
	state.lastAt = time.Now()
	t.mu.Unlock()
}

// Totals returns the overall handled and error counts.
func (t *Tracker) Totals() (handled, errors int64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, s := range t.commands {
		handled += s.handled
		errors += s.errors
	}
	return handled, errors
}

// Counters returns a per-command snapshot, sorted by command name.
func (t *Tracker) Counters() []protocol.LookupCounter {
	t.mu.RLock()
	defer t.mu.RUnlock()
	result := make([]protocol.LookupCounter, 0, len(t.commands))
	for name, s := range t.commands {
		result = append(result, protocol.LookupCounter{
			Command:    name,
			Handled:    s.handled,
			Errors:     s.errors,
			LastTarget: s.lastTarget,
			LastAt:     s.lastAt,
		})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Command < result[j].Command })
	return result
}

// Close unsubscribes from NATS.
func (t *Tracker) Close() {
	if t.sub != nil {
		t.sub.Unsubscribe()
	}
}
