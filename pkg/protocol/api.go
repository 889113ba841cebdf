package protocol

import "time"

// StatusResponse is returned by GET /api/v1/status.
type StatusResponse struct {
	Status         string    `json:"status"`
	Uptime         string    `json:"uptime"`
	NATSRunning    bool      `json:"nats_running"`
	SlackConnected bool      `json:"slack_connected"`
	StartedAt      time.Time `json:"started_at"`
	LookupsHandled int64     `json:"lookups_handled"`
	LookupErrors   int64     `json:"lookup_errors"`
}

// LookupCounter is one entry in the GET /api/v1/lookups response.
type LookupCounter struct {
	Command    string    `json:"command"`
	Handled    int64     `json:"handled"`
	Errors     int64     `json:"errors"`
	LastTarget string    `json:"last_target,omitempty"`
	LastAt     time.Time `json:"last_at,omitempty"`
}

// LookupsResponse is returned by GET /api/v1/lookups.
type LookupsResponse struct {
	Total    int64           `json:"total"`
	Errors   int64           `json:"errors"`
	Commands []LookupCounter `json:"commands"`
}
