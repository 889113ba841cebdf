package protocol

import "fmt"

// NATS subject helpers. Chat glue publishes events on uapibot.events.chat;
// the lookup agent publishes telemetry on uapibot.events.lookup and replies
// via commands on uapibot.commands.chat.
func SubjectEvents(source string) string {
	return fmt.Sprintf("uapibot.events.%s", source)
}

func SubjectCommands(target string) string {
	return fmt.Sprintf("uapibot.commands.%s", target)
}
