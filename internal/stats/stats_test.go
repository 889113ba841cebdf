package stats_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/uapibot/uapibot/internal/natsserver"
	"github.com/uapibot/uapibot/internal/stats"
	"github.com/uapibot/uapibot/pkg/protocol"
)

func publishTelemetry(t *testing.T, srv *natsserver.Server, evType, command, target string) {
	t.Helper()
	ev := protocol.NewEvent(evType, "lookup", map[string]any{
		"command": command,
		"target":  target,
	})
	data, _ := json.Marshal(ev)
	if err := srv.Conn().Publish(protocol.SubjectEvents("lookup"), data); err != nil {
		t.Fatalf("publish: %v", err)
	}
	srv.Conn().Flush()
}

func TestTrackerCounts(t *testing.T) {
	srv, err := natsserver.New(natsserver.Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("start embedded nats: %v", err)
	}
	defer srv.Shutdown()

	tracker, err := stats.New(srv.Conn(), zerolog.Nop())
	if err != nil {
		t.Fatalf("start tracker: %v", err)
	}
	defer tracker.Close()

	publishTelemetry(t, srv, "lookup.completed", "whois", "example.com")
	publishTelemetry(t, srv, "lookup.completed", "ping", "8.8.8.8")
	publishTelemetry(t, srv, "lookup.failed", "ping", "10.0.0.1")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if handled, _ := tracker.Totals(); handled == 3 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	handled, errors := tracker.Totals()
	if handled != 3 {
		t.Fatalf("handled = %d, want 3", handled)
	}
	if errors != 1 {
		t.Fatalf("errors = %d, want 1", errors)
	}

	counters := tracker.Counters()
	if len(counters) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(counters))
	}
	// Sorted by name: ping before whois.
	if counters[0].Command != "ping" || counters[0].Handled != 2 || counters[0].Errors != 1 {
		t.Errorf("ping counter wrong: %+v", counters[0])
	}
	if counters[0].LastTarget != "10.0.0.1" {
		t.Errorf("ping last target = %q, want 10.0.0.1", counters[0].LastTarget)
	}
	if counters[1].Command != "whois" || counters[1].Handled != 1 || counters[1].Errors != 0 {
		t.Errorf("whois counter wrong: %+v", counters[1])
	}
}

func TestTrackerIgnoresOtherEvents(t *testing.T) {
	srv, err := natsserver.New(natsserver.Config{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("start embedded nats: %v", err)
	}
	defer srv.Shutdown()

	tracker, err := stats.New(srv.Conn(), zerolog.Nop())
	if err != nil {
		t.Fatalf("start tracker: %v", err)
	}
	defer tracker.Close()

	publishTelemetry(t, srv, "lookup.started", "whois", "example.com")
	time.Sleep(300 * time.Millisecond)

	if handled, _ := tracker.Totals(); handled != 0 {
		t.Fatalf("handled = %d, want 0", handled)
	}
}
