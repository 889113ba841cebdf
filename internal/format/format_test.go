package format

import (
	"strings"
	"testing"
)

func TestWhois_CoreFields(t *testing.T) {
	title, sections := Whois("example.com", map[string]any{
		"code":            float64(200),
		"registrar":       "Example Inc",
		"creation_date":   nil,
		"expiration_date": "2030-01-01",
		"name_servers":    []any{"ns1.example.com", "ns2.example.com"},
	})

	if !strings.Contains(title, "example.com") {
		t.Errorf("title %q should name the domain", title)
	}
	if len(sections) == 0 {
		t.Fatal("expected at least one body section")
	}

	body := strings.Join(sections, "\n")
	if !strings.Contains(body, "Example Inc") {
		t.Errorf("body should contain registrar, got:\n%s", body)
	}
	// Null creation date renders as the placeholder.
	if !strings.Contains(body, "Created: "+Placeholder) {
		t.Errorf("missing creation date should render %q, got:\n%s", Placeholder, body)
	}
	if !strings.Contains(body, "ns1.example.com, ns2.example.com") {
		t.Errorf("name servers should be joined, got:\n%s", body)
	}
	// Status was absent entirely.
	if !strings.Contains(body, "Status: "+Placeholder) {
		t.Errorf("absent status should render %q, got:\n%s", Placeholder, body)
	}
}

func TestWhois_DataEnvelope(t *testing.T) {
	_, sections := Whois("example.com", map[string]any{
		"code": float64(200),
		"data": map[string]any{"registrar": "Wrapped Registrar"},
	})
	body := strings.Join(sections, "\n")
	if !strings.Contains(body, "Wrapped Registrar") {
		t.Errorf("data envelope should be unwrapped, got:\n%s", body)
	}
}

func TestWhois_ExtraFieldsOnlyWhenPresent(t *testing.T) {
	_, sections := Whois("example.com", map[string]any{
		"registrar": "Example Inc",
		"dnssec":    "unsigned",
	})
	body := strings.Join(sections, "\n")
	if !strings.Contains(body, "DNSSEC: unsigned") {
		t.Errorf("present dnssec should render, got:\n%s", body)
	}
	if strings.Contains(body, "Referral") {
		t.Errorf("absent referral_url should not render, got:\n%s", body)
	}
}

func TestWhois_UpstreamFailure(t *testing.T) {
	_, sections := Whois("nope.invalid", map[string]any{
		"code": float64(400),
		"msg":  "domain not found",
	})
	body := strings.Join(sections, "\n")
	if !strings.Contains(body, "domain not found") {
		t.Errorf("failure body should carry upstream msg, got:\n%s", body)
	}
	if !strings.Contains(body, "400") {
		t.Errorf("failure body should carry upstream code, got:\n%s", body)
	}
}

func TestDNS_Records(t *testing.T) {
	out := DNS("example.com", "A", map[string]any{
		"code": float64(200),
		"records": []any{
			map[string]any{"type": "A", "value": "93.184.216.34", "ttl": float64(300)},
			map[string]any{"type": "A", "value": "93.184.216.35"},
		},
	})

	if !strings.Contains(out, "93.184.216.34") || !strings.Contains(out, "93.184.216.35") {
		t.Errorf("expected one line per record, got:\n%s", out)
	}
	if !strings.Contains(out, "TTL 300") {
		t.Errorf("TTL should render without a decimal point, got:\n%s", out)
	}
}

func TestDNS_NoRecords(t *testing.T) {
	out := DNS("example.com", "MX", map[string]any{"records": []any{}})
	if !strings.Contains(out, "No records found") {
		t.Errorf("empty record list should say no records found, got:\n%s", out)
	}
}

func TestDNS_ScalarRecords(t *testing.T) {
	out := DNS("example.com", "A", map[string]any{
		"records": []any{"93.184.216.34"},
	})
	if !strings.Contains(out, "93.184.216.34") {
		t.Errorf("scalar records should still render, got:\n%s", out)
	}
}

func TestPing_Reachable(t *testing.T) {
	out := Ping("8.8.8.8", map[string]any{
		"code":       float64(200),
		"reachable":  true,
		"latency_ms": float64(23),
		"ip":         "8.8.8.8",
	})

	if !strings.Contains(out, "Reachable") {
		t.Errorf("expected reachable indicator, got:\n%s", out)
	}
	if !strings.Contains(out, "23") {
		t.Errorf("expected latency figure, got:\n%s", out)
	}
}

func TestPing_Unreachable(t *testing.T) {
	out := Ping("10.255.255.1", map[string]any{"reachable": false})

	if !strings.Contains(out, "unreachable") {
		t.Errorf("expected unreachable message, got:\n%s", out)
	}
	if strings.Contains(out, "Latency") {
		t.Errorf("unreachable host must not render a latency figure, got:\n%s", out)
	}
}

func TestPing_AvgFallback(t *testing.T) {
	out := Ping("example.com", map[string]any{
		"reachable": true,
		"avg":       float64(41.5),
	})
	if !strings.Contains(out, "41.5") {
		t.Errorf("avg latency should be used when latency_ms is absent, got:\n%s", out)
	}
}

func TestRequestFailed_StringCode(t *testing.T) {
	// Uapi sometimes returns the code as a string; "200" still counts as ok.
	if fail, ok := requestFailed(map[string]any{"code": "200"}); ok {
		t.Errorf("string code 200 should not fail, got %q", fail)
	}
	if _, ok := requestFailed(map[string]any{"code": "500", "msg": "boom"}); !ok {
		t.Error("string code 500 should fail")
	}
}

func TestToString_WholeNumbers(t *testing.T) {
	if got := toString(float64(300)); got != "300" {
		t.Errorf("toString(300) = %q, want 300", got)
	}
	if got := toString(float64(41.5)); got != "41.5" {
		t.Errorf("toString(41.5) = %q, want 41.5", got)
	}
}
