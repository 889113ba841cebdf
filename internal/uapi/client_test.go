package uapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestWhois(t *testing.T) {
	var gotPath, gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"code":      200,
			"domain":    "example.com",
			"registrar": "Example Inc",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	result, err := c.Whois(context.Background(), "example.com")
	if err != nil {
		t.Fatalf("Whois: %v", err)
	}

	if gotPath != "/api/whois" {
		t.Errorf("path = %q, want /api/whois", gotPath)
	}
	if !strings.Contains(gotQuery, "domain=example.com") {
		t.Errorf("query %q missing domain param", gotQuery)
	}
	if result["registrar"] != "Example Inc" {
		t.Errorf("registrar = %v, want Example Inc", result["registrar"])
	}
}

func TestDNS_DefaultRecordType(t *testing.T) {
	var gotQuery string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]any{"code": 200})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	if _, err := c.DNS(context.Background(), "example.com", ""); err != nil {
		t.Fatalf("DNS: %v", err)
	}
	if !strings.Contains(gotQuery, "type=A") {
		t.Errorf("query %q should default to type=A", gotQuery)
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ping" {
			t.Errorf("path = %q, want /api/ping", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"code":       200,
			"reachable":  true,
			"latency_ms": 23,
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	result, err := c.Ping(context.Background(), "8.8.8.8")
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if result["reachable"] != true {
		t.Errorf("reachable = %v, want true", result["reachable"])
	}
}

func TestGet_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Whois(context.Background(), "example.com")
	if err == nil {
		t.Fatal("expected error on non-200 status")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error %q should name the status code", err)
	}
}

func TestGet_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Ping(context.Background(), "example.com")
	if err == nil {
		t.Fatal("expected error on malformed JSON body")
	}
	if !strings.Contains(err.Error(), "decode") {
		t.Errorf("error %q should name the decode failure", err)
	}
}

func TestGet_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]any{"code": 200})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond)
	_, err := c.Ping(context.Background(), "example.com")
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestGet_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]any{"code": 200})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(srv.URL, 5*time.Second)
	if _, err := c.Whois(ctx, "example.com"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
