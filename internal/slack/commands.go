package slack

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"
)

// ChatClient abstracts the Slack API methods used by the command executor.
type ChatClient interface {
	// PostMessage posts to a channel and returns the message timestamp
	// so follow-up sections can be threaded under it.
	PostMessage(ctx context.Context, channel, text string) (string, error)
	PostReply(ctx context.Context, channel, threadTS, text string) error
}

// realChatClient wraps the slack-go/slack client.
type realChatClient struct {
	client *slackapi.Client
}

func (c *realChatClient) PostMessage(ctx context.Context, channel, text string) (string, error) {
	_, ts, err := c.client.PostMessageContext(ctx, channel,
		slackapi.MsgOptionText(text, false))
	return ts, err
}

func (c *realChatClient) PostReply(ctx context.Context, channel, threadTS, text string) error {
	_, _, err := c.client.PostMessageContext(ctx, channel,
		slackapi.MsgOptionText(text, false),
		slackapi.MsgOptionTS(threadTS))
	return err
}

// extractString extracts a required string field from the payload.
func extractString(payload map[string]any, key string) (string, error) {
	val, ok := payload[key]
	if !ok {
		return "", fmt.Errorf("missing required field: %s", key)
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return s, nil
}

func cmdSendMessage(ctx context.Context, cc ChatClient, payload map[string]any) error {
	channel, err := extractString(payload, "channel")
	if err != nil {
		return err
	}
	text, err := extractString(payload, "text")
	if err != nil {
		return err
	}
	_, err = cc.PostMessage(ctx, channel, text)
	return err
}

// cmdSendForward posts a titled message and threads each body section
// under it, so a long WHOIS result shows as one collapsible entry.
func cmdSendForward(ctx context.Context, cc ChatClient, payload map[string]any) error {
	channel, err := extractString(payload, "channel")
	if err != nil {
		return err
	}
	title, err := extractString(payload, "title")
	if err != nil {
		return err
	}

	raw, ok := payload["sections"].([]any)
	if !ok {
		return fmt.Errorf("sections must be a list")
	}

	ts, err := cc.PostMessage(ctx, channel, title)
	if err != nil {
		return err
	}
	for _, item := range raw {
		section, ok := item.(string)
		if !ok {
			return fmt.Errorf("sections must contain strings")
		}
		if err := cc.PostReply(ctx, channel, ts, section); err != nil {
			return err
		}
	}
	return nil
}
