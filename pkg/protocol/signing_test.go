package protocol

import (
	"testing"
)

func TestSignAndVerify(t *testing.T) {
	cmd := &Command{
		Command: "send_message",
		Payload: map[string]any{"channel": "C12345", "text": "lookup done"},
		Source:  "lookup-agent",
	}
	secret := "test-secret-key"

	if err := SignCommand(cmd, secret); err != nil {
		t.Fatalf("SignCommand: %v", err)
	}
	if cmd.Signature == "" {
		t.Fatal("expected non-empty signature")
	}
	if !VerifyCommand(cmd, secret) {
		t.Fatal("VerifyCommand returned false for valid signature")
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	cmd := &Command{
		Command: "send_message",
		Payload: map[string]any{"text": "ping ok"},
		Source:  "lookup-agent",
	}
	secret := "my-secret"

	if err := SignCommand(cmd, secret); err != nil {
		t.Fatalf("SignCommand: %v", err)
	}

	cmd.Payload["text"] = "ping not ok"

	if VerifyCommand(cmd, secret) {
		t.Fatal("VerifyCommand returned true for tampered payload")
	}
}

func TestVerifyTamperedCommand(t *testing.T) {
	cmd := &Command{
		Command: "send_message",
		Payload: map[string]any{"text": "hi"},
		Source:  "lookup-agent",
	}
	secret := "my-secret"

	if err := SignCommand(cmd, secret); err != nil {
		t.Fatalf("SignCommand: %v", err)
	}

	cmd.Command = "send_forward"

	if VerifyCommand(cmd, secret) {
		t.Fatal("VerifyCommand returned true for tampered command name")
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	cmd := &Command{
		Command: "send_message",
		Payload: map[string]any{"channel": "general"},
		Source:  "mcp",
	}

	if err := SignCommand(cmd, "secret-a"); err != nil {
		t.Fatalf("SignCommand: %v", err)
	}

	if VerifyCommand(cmd, "secret-b") {
		t.Fatal("VerifyCommand returned true for wrong secret")
	}
}

func TestEmptySecretSkipsSigning(t *testing.T) {
	cmd := &Command{
		Command: "send_message",
		Payload: map[string]any{"text": "hi"},
		Source:  "lookup-agent",
	}

	if err := SignCommand(cmd, ""); err != nil {
		t.Fatalf("SignCommand: %v", err)
	}
	if cmd.Signature != "" {
		t.Fatalf("expected empty signature, got %q", cmd.Signature)
	}

	if !VerifyCommand(cmd, "") {
		t.Fatal("VerifyCommand with empty secret should return true")
	}
}

func TestSecretConfiguredNoSignature(t *testing.T) {
	cmd := &Command{
		Command: "send_message",
		Payload: map[string]any{"text": "hi"},
		Source:  "lookup-agent",
	}

	if VerifyCommand(cmd, "my-secret") {
		t.Fatal("VerifyCommand should return false when secret configured but no signature present")
	}
}

func TestDeterministicSignature(t *testing.T) {
	secret := "deterministic-test"

	cmd1 := &Command{
		Command: "send_forward",
		Payload: map[string]any{"title": "whois example.com", "channel": "C1"},
		Source:  "lookup-agent",
	}
	cmd2 := &Command{
		Command: "send_forward",
		Payload: map[string]any{"title": "whois example.com", "channel": "C1"},
		Source:  "lookup-agent",
	}

	if err := SignCommand(cmd1, secret); err != nil {
		t.Fatalf("SignCommand cmd1: %v", err)
	}
	if err := SignCommand(cmd2, secret); err != nil {
		t.Fatalf("SignCommand cmd2: %v", err)
	}

	if cmd1.Signature != cmd2.Signature {
		t.Fatalf("signatures differ: %s vs %s", cmd1.Signature, cmd2.Signature)
	}
}
