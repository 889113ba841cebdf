// Package lookup implements the chat lookup commands: /whois, /DNS and
// /ping. Each invocation is stateless and single-shot: validate the
// argument, fetch from the Uapi API once, format, and send exactly one
// reply through the injected Messenger.
package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/uapibot/uapibot/internal/format"
	"github.com/uapibot/uapibot/internal/uapi"
)

// Command names understood by the handler, lowercased.
const (
	CommandWhois = "whois"
	CommandDNS   = "dns"
	CommandPing  = "ping"
)

// KnownCommand reports whether name (any case) is a lookup command.
func KnownCommand(name string) bool {
	switch strings.ToLower(name) {
	case CommandWhois, CommandDNS, CommandPing:
		return true
	}
	return false
}

// Messenger is the host messaging capability the handler replies through.
// The daemon wires a NATS-backed implementation; tests record calls.
type Messenger interface {
	// SendText posts a plain text message to the channel.
	SendText(ctx context.Context, channel, text string) error
	// SendForward posts a titled multi-section message as one merged
	// container so long output does not flood the channel.
	SendForward(ctx context.Context, channel, title string, sections []string) error
}

// Request is one chat command invocation.
type Request struct {
	Command string // whois, dns or ping, lowercased
	Args    string // remainder of the message after the command token
	Channel string
}

// Handler maps chat command requests to formatted chat replies.
type Handler struct {
	client uapi.Client
	msgr   Messenger
	logger zerolog.Logger
}

// NewHandler creates a Handler with its HTTP client and messaging
// capability injected.
func NewHandler(client uapi.Client, msgr Messenger, logger zerolog.Logger) *Handler {
	return &Handler{
		client: client,
		msgr:   msgr,
		logger: logger.With().Str("component", "lookup").Logger(),
	}
}

// Handle processes one request and sends exactly one reply: the formatted
// result, a usage hint, or an error message. The returned error reports
// lookup or delivery failures for telemetry; the user has already been
// answered in every case except a Messenger failure.
func (h *Handler) Handle(ctx context.Context, req Request) error {
	switch strings.ToLower(req.Command) {
	case CommandWhois:
		return h.handleWhois(ctx, req)
	case CommandDNS:
		return h.handleDNS(ctx, req)
	case CommandPing:
		return h.handlePing(ctx, req)
	default:
		return fmt.Errorf("unknown command: %s", req.Command)
	}
}

func (h *Handler) handleWhois(ctx context.Context, req Request) error {
	domain := strings.TrimSpace(req.Args)
	if domain == "" {
		return h.msgr.SendText(ctx, req.Channel, "Please provide a domain, e.g. /whois google.com")
	}

	result, err := h.client.Whois(ctx, domain)
	if err != nil {
		h.logger.Error().Err(err).Str("domain", domain).Msg("whois lookup failed")
		if sendErr := h.msgr.SendText(ctx, req.Channel, "⚠️ WHOIS lookup failed: "+err.Error()); sendErr != nil {
			return sendErr
		}
		return err
	}

	title, sections := format.Whois(domain, result)
	return h.msgr.SendForward(ctx, req.Channel, title, sections)
}

func (h *Handler) handleDNS(ctx context.Context, req Request) error {
	args := strings.Fields(req.Args)
	if len(args) == 0 {
		return h.msgr.SendText(ctx, req.Channel, "Please provide a domain, e.g. /DNS cn.bing.com")
	}
	domain := args[0]
	recordType := "A"
	if len(args) > 1 {
		recordType = strings.ToUpper(args[1])
	}

	result, err := h.client.DNS(ctx, domain, recordType)
	if err != nil {
		h.logger.Error().Err(err).Str("domain", domain).Msg("dns lookup failed")
		if sendErr := h.msgr.SendText(ctx, req.Channel, "⚠️ DNS lookup failed: "+err.Error()); sendErr != nil {
			return sendErr
		}
		return err
	}

	return h.msgr.SendText(ctx, req.Channel, format.DNS(domain, recordType, result))
}

func (h *Handler) handlePing(ctx context.Context, req Request) error {
	host := strings.TrimSpace(req.Args)
	if host == "" {
		return h.msgr.SendText(ctx, req.Channel, "Please provide a host or IP, e.g. /ping cn.bing.com")
	}

	result, err := h.client.Ping(ctx, host)
	if err != nil {
		h.logger.Error().Err(err).Str("host", host).Msg("ping lookup failed")
		if sendErr := h.msgr.SendText(ctx, req.Channel, "⚠️ Ping failed: "+err.Error()); sendErr != nil {
			return sendErr
		}
		return err
	}

	return h.msgr.SendText(ctx, req.Channel, format.Ping(host, result))
}
