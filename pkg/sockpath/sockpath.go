// Package sockpath provides the default Unix socket path for the uapibotd daemon.
// All binaries (uapibotd, uapibotctl, uapibot-mcp) use this to agree on the default.
package sockpath

import (
	"os"
	"path/filepath"
)

// DefaultSocketPath returns the default path for the uapibotd Unix socket.
// It prefers $XDG_RUNTIME_DIR/uapibot/uapibotd.sock (standard on Linux,
// tmpfs-backed), falling back to ~/.config/uapibot/uapibotd.sock.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "uapibot", "uapibotd.sock")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "uapibot", "uapibotd.sock")
}
