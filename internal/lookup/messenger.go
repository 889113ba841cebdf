package lookup

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/uapibot/uapibot/pkg/protocol"
)

const agentSource = "lookup-agent"

// BusMessenger implements Messenger by publishing signed chat commands
// on the bus; the chat glue executes them against the real chat API.
type BusMessenger struct {
	nc     *nats.Conn
	secret string
}

// NewBusMessenger creates a BusMessenger. secret may be empty, in which
// case commands are published unsigned.
func NewBusMessenger(nc *nats.Conn, secret string) *BusMessenger {
	return &BusMessenger{nc: nc, secret: secret}
}

func (m *BusMessenger) SendText(ctx context.Context, channel, text string) error {
	return m.publish("send_message", map[string]any{
		"channel": channel,
		"text":    text,
	})
}

func (m *BusMessenger) SendForward(ctx context.Context, channel, title string, sections []string) error {
	body := make([]any, len(sections))
	for i, s := range sections {
		body[i] = s
	}
	return m.publish("send_forward", map[string]any{
		"channel":  channel,
		"title":    title,
		"sections": body,
	})
}

func (m *BusMessenger) publish(command string, payload map[string]any) error {
	cmd := protocol.Command{
		Command: command,
		Payload: payload,
		Source:  agentSource,
	}
	if err := protocol.SignCommand(&cmd, m.secret); err != nil {
		return fmt.Errorf("sign command: %w", err)
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}
	return m.nc.Publish(protocol.SubjectCommands("chat"), data)
}
