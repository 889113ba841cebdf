package mcp

import (
	"context"
	"log"
	"os"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/uapibot/uapibot/internal/uapi"
)

// MCPServer exposes uapibot lookups and daemon state to AI assistants via MCP.
type MCPServer struct {
	api           DaemonAPI
	uapi          uapi.Client
	nc            *nats.Conn
	logger        zerolog.Logger
	commandSecret string

	// Overridable for testing.
	natsOpts []nats.Option
}

// New creates an MCPServer. Call Run() to start serving on stdio.
func New(cfg Config, logger zerolog.Logger) *MCPServer {
	s := &MCPServer{
		api:           NewAPIClient(cfg.Daemon.Socket),
		uapi:          uapi.NewClient(cfg.Uapi.BaseURL, cfg.Uapi.Timeout),
		logger:        logger.With().Str("component", "mcp").Logger(),
		commandSecret: cfg.Security.CommandSecret,
	}
	if cfg.NATS.Token != "" {
		s.natsOpts = append(s.natsOpts, nats.Token(cfg.NATS.Token))
	}
	return s
}

// SetDaemonAPI overrides the daemon API client. Intended for testing with a mock.
func (s *MCPServer) SetDaemonAPI(api DaemonAPI) {
	s.api = api
}

// SetUapiClient overrides the Uapi client. Intended for testing with a mock.
func (s *MCPServer) SetUapiClient(client uapi.Client) {
	s.uapi = client
}

// SetNATSOpts sets NATS connection options. Must be called before Run().
func (s *MCPServer) SetNATSOpts(opts []nats.Option) {
	s.natsOpts = opts
}

// Run connects to NATS, registers MCP tools, and serves on stdio.
// It blocks until stdin is closed or the context is cancelled.
func (s *MCPServer) Run(ctx context.Context, natsURL string) error {
	// Connect to NATS for the chat message tool.
	nc, err := nats.Connect(natsURL, s.natsOpts...)
	if err != nil {
		return err
	}
	defer nc.Close()
	s.nc = nc

	srv := mcpserver.NewMCPServer(
		"uapibot",
		"0.1.0",
		mcpserver.WithRecovery(),
	)

	s.registerTools(srv)

	stdio := mcpserver.NewStdioServer(srv)
	stdio.SetErrorLogger(log.New(os.Stderr, "", log.LstdFlags))

	s.logger.Info().Msg("MCP server starting on stdio")
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

func (s *MCPServer) registerTools(srv *mcpserver.MCPServer) {
	srv.AddTool(
		mcplib.NewTool("lookup_whois",
			mcplib.WithDescription("Look up WHOIS registration data for a domain (registrar, creation and expiry dates, status, name servers)"),
			mcplib.WithString("domain", mcplib.Required(), mcplib.Description("Domain name to look up (e.g. \"google.com\")")),
			mcplib.WithReadOnlyHintAnnotation(true),
		),
		s.handleLookupWhois,
	)

	srv.AddTool(
		mcplib.NewTool("lookup_dns",
			mcplib.WithDescription("Resolve DNS records for a domain"),
			mcplib.WithString("domain", mcplib.Required(), mcplib.Description("Domain name to resolve")),
			mcplib.WithString("record_type", mcplib.Description("DNS record type (A, AAAA, MX, TXT, NS, CNAME). Defaults to A")),
			mcplib.WithReadOnlyHintAnnotation(true),
		),
		s.handleLookupDNS,
	)

	srv.AddTool(
		mcplib.NewTool("ping_host",
			mcplib.WithDescription("Check whether a host is reachable and measure its latency"),
			mcplib.WithString("host", mcplib.Required(), mcplib.Description("Hostname or IP address to ping")),
			mcplib.WithReadOnlyHintAnnotation(true),
		),
		s.handlePingHost,
	)

	srv.AddTool(
		mcplib.NewTool("get_status",
			mcplib.WithDescription("Get uapibotd daemon status including uptime, NATS health, Slack connectivity, and lookup counts"),
			mcplib.WithReadOnlyHintAnnotation(true),
		),
		s.handleGetStatus,
	)

	srv.AddTool(
		mcplib.NewTool("get_lookup_stats",
			mcplib.WithDescription("Get per-command lookup statistics from the uapibotd daemon"),
			mcplib.WithReadOnlyHintAnnotation(true),
		),
		s.handleGetLookupStats,
	)

	srv.AddTool(
		mcplib.NewTool("send_chat_message",
			mcplib.WithDescription("Send a text message to a chat channel through the uapibotd gateway"),
			mcplib.WithString("channel", mcplib.Required(), mcplib.Description("Channel ID to post to")),
			mcplib.WithString("text", mcplib.Required(), mcplib.Description("Message text")),
		),
		s.handleSendChatMessage,
	)
}
