// Package format renders Uapi JSON payloads into chat messages.
// All functions are pure: fields are read through safe accessors with
// defaults, and unexpected shapes degrade to placeholders rather than
// failing the lookup.
package format

import (
	"fmt"
	"strconv"
	"strings"
)

// Placeholder rendered for absent core fields.
const Placeholder = "N/A"

// Whois renders a WHOIS payload as a title line plus body sections,
// intended to be sent as one merged forward container.
func Whois(domain string, result map[string]any) (string, []string) {
	title := fmt.Sprintf("🔍 WHOIS result for %s", domain)

	if fail, ok := requestFailed(result); ok {
		return title, []string{fail}
	}
	data := unwrap(result)

	core := []string{
		"🌐 Domain: " + orPlaceholder(str(data, "domain"), domain),
		"🏢 Registrar: " + orPlaceholder(str(data, "registrar"), Placeholder),
		"📅 Created: " + orPlaceholder(firstStr(data, "creation_date", "created_date"), Placeholder),
		"📅 Expires: " + orPlaceholder(str(data, "expiration_date"), Placeholder),
		"📊 Status: " + orPlaceholder(joined(data, "status"), Placeholder),
		"🖥️ Name servers: " + orPlaceholder(joined(data, "name_servers"), Placeholder),
	}
	sections := []string{strings.Join(core, "\n")}

	// Secondary fields render only when the API supplied them.
	var extra []string
	for _, f := range extraWhoisFields {
		if val := joined(data, f.key); val != "" {
			extra = append(extra, f.label+": "+val)
		}
	}
	if len(extra) > 0 {
		sections = append(sections, strings.Join(extra, "\n"))
	}

	return title, sections
}

// extraWhoisFields maps optional WHOIS payload keys to display labels.
// Derived from the Uapi response surface; order is the render order.
var extraWhoisFields = []struct {
	key   string
	label string
}{
	{"updated_date", "🕒 Updated"},
	{"dnssec", "🔒 DNSSEC"},
	{"whois_server", "🖥️ WHOIS server"},
	{"emails", "📧 Emails"},
	{"registrant", "👤 Registrant"},
	{"org", "🏢 Organization"},
	{"country", "🌍 Country"},
	{"referral_url", "🔗 Referral"},
}

// DNS renders a DNS payload as one line per record.
func DNS(domain, recordType string, result map[string]any) string {
	header := fmt.Sprintf("🌐 DNS records for %s (%s)", domain, recordType)

	if fail, ok := requestFailed(result); ok {
		return header + "\n" + fail
	}
	data := unwrap(result)

	records := list(data, "records")
	if len(records) == 0 {
		return header + "\nNo records found."
	}

	lines := []string{header}
	for _, rec := range records {
		m, ok := rec.(map[string]any)
		if !ok {
			lines = append(lines, "🏷️ "+toString(rec))
			continue
		}
		rtype := orPlaceholder(str(m, "type"), recordType)
		value := firstStr(m, "value", "target", "address")
		line := fmt.Sprintf("🏷️ %s → %s", rtype, orPlaceholder(value, Placeholder))
		if ttl := str(m, "ttl"); ttl != "" {
			line += fmt.Sprintf(" (TTL %s)", ttl)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Ping renders a ping payload. An unreachable host gets a distinct
// timeout message with no latency figure.
func Ping(host string, result map[string]any) string {
	header := fmt.Sprintf("📶 Ping %s", host)

	if fail, ok := requestFailed(result); ok {
		return header + "\n" + fail
	}
	data := unwrap(result)

	if reachable, ok := data["reachable"].(bool); ok && !reachable {
		return header + "\n❌ Host unreachable (timeout)"
	}

	lines := []string{header, "✅ Reachable"}
	if latency := firstStr(data, "latency_ms", "avg"); latency != "" {
		lines = append(lines, fmt.Sprintf("⏱️ Latency: %s ms", latency))
	}
	if ip := str(data, "ip"); ip != "" {
		lines = append(lines, "📍 IP: "+ip)
	}
	if loc := str(data, "location"); loc != "" {
		lines = append(lines, "🌍 Location: "+loc)
	}
	if loss := str(data, "loss"); loss != "" {
		lines = append(lines, "📉 Packet loss: "+loss+"%")
	}
	return strings.Join(lines, "\n")
}

// requestFailed checks the Uapi envelope: a code field other than 200
// means the lookup itself failed upstream.
func requestFailed(result map[string]any) (string, bool) {
	code, ok := result["code"]
	if !ok {
		return "", false
	}
	if toString(code) == "200" {
		return "", false
	}
	msg := orPlaceholder(str(result, "msg"), "unknown error")
	return fmt.Sprintf("❌ Request failed: %s (code %s)", msg, toString(code)), true
}

// unwrap returns the data sub-object when the envelope carries one,
// otherwise the payload itself.
func unwrap(result map[string]any) map[string]any {
	if data, ok := result["data"].(map[string]any); ok {
		return data
	}
	return result
}

// str returns the value under key rendered as a string, or "" when the
// key is absent, null, or empty.
func str(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	return toString(v)
}

// firstStr returns the first non-empty value among keys.
func firstStr(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := str(m, k); s != "" {
			return s
		}
	}
	return ""
}

// joined renders a string or list value as a comma-separated string.
func joined(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	items, ok := v.([]any)
	if !ok {
		return toString(v)
	}
	var parts []string
	for _, item := range items {
		if s := toString(item); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// list returns the value under key as a slice, or nil.
func list(m map[string]any, key string) []any {
	v, _ := m[key].([]any)
	return v
}

func orPlaceholder(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// toString renders a scalar JSON value without a trailing .0 on whole
// numbers (encoding/json decodes all numbers as float64).
func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
