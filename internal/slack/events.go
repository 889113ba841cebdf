package slack

import (
	"strings"

	"github.com/slack-go/slack/slackevents"

	"github.com/uapibot/uapibot/pkg/protocol"
)

// ParseCommand splits a chat message of the form "/whois example.com"
// into its command token (without the slash) and trimmed argument.
// Returns false when the text is not a slash command.
func ParseCommand(text string) (command, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}
	token, rest, _ := strings.Cut(text[1:], " ")
	if token == "" {
		return "", "", false
	}
	return token, strings.TrimSpace(rest), true
}

// MapMessageEvent converts a Slack message event into a chat.command bus
// event. Returns false for bot-own messages, message subtypes, and text
// that is not a slash command. botUserID filters self-messages.
func MapMessageEvent(ev *slackevents.MessageEvent, botUserID string) (protocol.Event, bool) {
	// Skip bot's own messages and subtypes (edits, deletes, etc.).
	if ev.User == botUserID || ev.SubType != "" {
		return protocol.Event{}, false
	}

	command, args, ok := ParseCommand(ev.Text)
	if !ok {
		return protocol.Event{}, false
	}

	payload := map[string]any{
		"command":   command,
		"args":      args,
		"channel":   ev.Channel,
		"user":      ev.User,
		"timestamp": ev.TimeStamp,
	}
	return protocol.NewEvent("chat.command", "chat", payload), true
}
