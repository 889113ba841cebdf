package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"

	"github.com/uapibot/uapibot/internal/format"
	"github.com/uapibot/uapibot/pkg/protocol"
)

func (s *MCPServer) handleLookupWhois(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	domain, err := req.RequireString("domain")
	if err != nil {
		return textError("missing required parameter: domain"), nil
	}

	result, err := s.uapi.Whois(ctx, domain)
	if err != nil {
		return textError("whois lookup failed: " + err.Error()), nil
	}

	title, sections := format.Whois(domain, result)
	var b strings.Builder
	b.WriteString(title)
	for _, section := range sections {
		b.WriteString("\n\n")
		b.WriteString(section)
	}
	return textResult(b.String()), nil
}

func (s *MCPServer) handleLookupDNS(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	domain, err := req.RequireString("domain")
	if err != nil {
		return textError("missing required parameter: domain"), nil
	}
	recordType := strings.ToUpper(req.GetString("record_type", "A"))

	result, err := s.uapi.DNS(ctx, domain, recordType)
	if err != nil {
		return textError("dns lookup failed: " + err.Error()), nil
	}
	return textResult(format.DNS(domain, recordType, result)), nil
}

func (s *MCPServer) handlePingHost(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	host, err := req.RequireString("host")
	if err != nil {
		return textError("missing required parameter: host"), nil
	}

	result, err := s.uapi.Ping(ctx, host)
	if err != nil {
		return textError("ping failed: " + err.Error()), nil
	}
	return textResult(format.Ping(host, result)), nil
}

func (s *MCPServer) handleGetStatus(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	status, err := s.api.GetStatus(ctx)
	if err != nil {
		return textError("failed to get status: " + err.Error()), nil
	}
	return textJSON(status)
}

func (s *MCPServer) handleGetLookupStats(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	lookups, err := s.api.GetLookups(ctx)
	if err != nil {
		return textError("failed to get lookup stats: " + err.Error()), nil
	}
	return textJSON(lookups)
}

func (s *MCPServer) handleSendChatMessage(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	channel, err := req.RequireString("channel")
	if err != nil {
		return textError("missing required parameter: channel"), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return textError("missing required parameter: text"), nil
	}

	cmd := protocol.Command{
		Command: "send_message",
		Payload: map[string]any{
			"channel": channel,
			"text":    text,
		},
		Source: "mcp",
	}
	if err := protocol.SignCommand(&cmd, s.commandSecret); err != nil {
		return textError("failed to sign command: " + err.Error()), nil
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return textError("failed to marshal command: " + err.Error()), nil
	}

	subject := protocol.SubjectCommands("chat")
	if err := s.nc.Publish(subject, data); err != nil {
		return textError("failed to send command: " + err.Error()), nil
	}
	s.nc.Flush()

	return textResult(fmt.Sprintf(`{"status":"sent","channel":"%s"}`, channel)), nil
}

// textResult returns a successful text result.
func textResult(text string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: text},
		},
	}
}

// textError returns an error text result.
func textError(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{
			mcplib.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

// textJSON marshals v to indented JSON and returns it as a text result.
func textJSON(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return textError("failed to marshal response: " + err.Error()), nil
	}
	return textResult(string(data)), nil
}
