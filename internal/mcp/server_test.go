package mcp

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/uapibot/uapibot/internal/natsserver"
	"github.com/uapibot/uapibot/pkg/protocol"
)

// mockAPI implements DaemonAPI for unit tests.
type mockAPI struct {
	status  *protocol.StatusResponse
	lookups *protocol.LookupsResponse
}

func (m *mockAPI) GetStatus(_ context.Context) (*protocol.StatusResponse, error) {
	return m.status, nil
}
func (m *mockAPI) GetLookups(_ context.Context) (*protocol.LookupsResponse, error) {
	return m.lookups, nil
}

// mockUapi implements uapi.Client and records the arguments it was called with.
type mockUapi struct {
	result     map[string]any
	err        error
	lastDomain string
	lastType   string
	lastHost   string
}

func (m *mockUapi) Whois(_ context.Context, domain string) (map[string]any, error) {
	m.lastDomain = domain
	return m.result, m.err
}
func (m *mockUapi) DNS(_ context.Context, domain, recordType string) (map[string]any, error) {
	m.lastDomain = domain
	m.lastType = recordType
	return m.result, m.err
}
func (m *mockUapi) Ping(_ context.Context, host string) (map[string]any, error) {
	m.lastHost = host
	return m.result, m.err
}

func toolText(t *testing.T, result *mcplib.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	return result.Content[0].(mcplib.TextContent).Text
}

func TestGetStatus(t *testing.T) {
	s := &MCPServer{
		api: &mockAPI{
			status: &protocol.StatusResponse{
				Status:         "ok",
				Uptime:         "1h30m",
				NATSRunning:    true,
				SlackConnected: true,
				LookupsHandled: 42,
			},
		},
	}

	result, err := s.handleGetStatus(context.Background(), mcplib.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("expected success, got error result")
	}

	var status protocol.StatusResponse
	if err := json.Unmarshal([]byte(toolText(t, result)), &status); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if status.Status != "ok" {
		t.Errorf("status = %q, want ok", status.Status)
	}
	if status.LookupsHandled != 42 {
		t.Errorf("lookups_handled = %d, want 42", status.LookupsHandled)
	}
}

func TestGetLookupStats(t *testing.T) {
	s := &MCPServer{
		api: &mockAPI{
			lookups: &protocol.LookupsResponse{
				Total:  3,
				Errors: 1,
				Commands: []protocol.LookupCounter{
					{Command: "whois", Handled: 2, LastTarget: "google.com"},
					{Command: "ping", Handled: 1, Errors: 1},
				},
			},
		},
	}

	result, err := s.handleGetLookupStats(context.Background(), mcplib.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatal("expected success, got error result")
	}

	var lookups protocol.LookupsResponse
	if err := json.Unmarshal([]byte(toolText(t, result)), &lookups); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if lookups.Total != 3 {
		t.Errorf("total = %d, want 3", lookups.Total)
	}
	if len(lookups.Commands) != 2 {
		t.Fatalf("expected 2 counters, got %d", len(lookups.Commands))
	}
	if lookups.Commands[0].Command != "whois" {
		t.Errorf("commands[0] = %q, want whois", lookups.Commands[0].Command)
	}
}

func TestLookupWhois(t *testing.T) {
	mock := &mockUapi{
		result: map[string]any{
			"code":      float64(200),
			"domain":    "example.com",
			"registrar": "Example Inc",
		},
	}
	s := &MCPServer{uapi: mock}

	req := mcplib.CallToolRequest{}
	req.Params.Arguments = map[string]any{"domain": "example.com"}

	result, err := s.handleLookupWhois(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", toolText(t, result))
	}

	text := toolText(t, result)
	if !strings.Contains(text, "WHOIS result for example.com") {
		t.Errorf("missing title in %q", text)
	}
	if !strings.Contains(text, "Example Inc") {
		t.Errorf("missing registrar in %q", text)
	}
	if mock.lastDomain != "example.com" {
		t.Errorf("lookup used domain %q, want example.com", mock.lastDomain)
	}
}

func TestLookupWhoisMissingDomain(t *testing.T) {
	s := &MCPServer{uapi: &mockUapi{}}

	result, err := s.handleLookupWhois(context.Background(), mcplib.CallToolRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected error result for missing domain")
	}
}

func TestLookupDNSDefaultsToA(t *testing.T) {
	mock := &mockUapi{
		result: map[string]any{
			"code": float64(200),
			"records": []any{
				map[string]any{"type": "A", "value": "93.184.216.34", "ttl": float64(300)},
			},
		},
	}
	s := &MCPServer{uapi: mock}

	req := mcplib.CallToolRequest{}
	req.Params.Arguments = map[string]any{"domain": "example.com"}

	result, err := s.handleLookupDNS(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", toolText(t, result))
	}
	if mock.lastType != "A" {
		t.Errorf("record type = %q, want A", mock.lastType)
	}
	if !strings.Contains(toolText(t, result), "93.184.216.34") {
		t.Errorf("missing record value in %q", toolText(t, result))
	}
}

func TestLookupDNSUppercasesType(t *testing.T) {
	mock := &mockUapi{
		result: map[string]any{"code": float64(200), "records": []any{}},
	}
	s := &MCPServer{uapi: mock}

	req := mcplib.CallToolRequest{}
	req.Params.Arguments = map[string]any{"domain": "example.com", "record_type": "mx"}

	result, err := s.handleLookupDNS(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.lastType != "MX" {
		t.Errorf("record type = %q, want MX", mock.lastType)
	}
	if !strings.Contains(toolText(t, result), "No records found.") {
		t.Errorf("expected empty-records message, got %q", toolText(t, result))
	}
}

func TestPingHostUnreachable(t *testing.T) {
	mock := &mockUapi{
		result: map[string]any{
			"code":      float64(200),
			"reachable": false,
		},
	}
	s := &MCPServer{uapi: mock}

	req := mcplib.CallToolRequest{}
	req.Params.Arguments = map[string]any{"host": "10.255.255.1"}

	result, err := s.handlePingHost(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := toolText(t, result)
	if !strings.Contains(text, "unreachable") {
		t.Errorf("expected unreachable message, got %q", text)
	}
	if strings.Contains(text, "Latency") {
		t.Errorf("unreachable result must not report latency, got %q", text)
	}
}

func TestSendChatMessage(t *testing.T) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	ns, err := natsserver.New(natsserver.Config{}, logger)
	if err != nil {
		t.Fatalf("start nats: %v", err)
	}
	defer ns.Shutdown()

	nc, err := nats.Connect(ns.ClientURL(), nats.InProcessServer(ns.NATSServer()))
	if err != nil {
		t.Fatalf("nats connect: %v", err)
	}
	defer nc.Close()

	s := &MCPServer{
		nc:            nc,
		commandSecret: "test-secret",
	}

	// Subscribe to the chat command subject.
	received := make(chan []byte, 1)
	sub, err := nc.Subscribe(protocol.SubjectCommands("chat"), func(msg *nats.Msg) {
		received <- msg.Data
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Unsubscribe()
	nc.Flush()

	req := mcplib.CallToolRequest{}
	req.Params.Arguments = map[string]any{
		"channel": "C123",
		"text":    "hello from mcp",
	}

	result, err := s.handleSendChatMessage(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("expected success, got error: %s", toolText(t, result))
	}

	select {
	case data := <-received:
		var cmd protocol.Command
		json.Unmarshal(data, &cmd)
		if cmd.Command != "send_message" {
			t.Errorf("command = %q, want send_message", cmd.Command)
		}
		if cmd.Source != "mcp" {
			t.Errorf("source = %q, want mcp", cmd.Source)
		}
		if cmd.Payload["text"] != "hello from mcp" {
			t.Errorf("payload.text = %v, want hello from mcp", cmd.Payload["text"])
		}
		if !protocol.VerifyCommand(&cmd, "test-secret") {
			t.Error("command signature did not verify")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for command")
	}
}
