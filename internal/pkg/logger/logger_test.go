package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel(INFO)
		SetRedactPII(true)
	})
	return &buf
}

func TestInfo_WritesJSONEntry(t *testing.T) {
	buf := capture(t)

	Info("import completed", "imported", 3, "file", "leads.csv")

	var entry map[string]string
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "INFO" || entry["msg"] != "import completed" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if entry["imported"] != "3" || entry["file"] != "leads.csv" {
		t.Errorf("fields not recorded: %v", entry)
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := capture(t)
	SetLevel(WARN)

	Info("dropped")
	Debug("dropped")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below WARN, got %q", buf.String())
	}
	Error("kept")
	if buf.Len() == 0 {
		t.Fatal("expected ERROR entry")
	}
}

func TestRedaction(t *testing.T) {
	buf := capture(t)

	Warn("row rejected", "email", "john.doe@example.com", "phone", "0412 345 678", "error", "conflict for ann@example.com")

	var entry map[string]string
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["email"] != "jo***@example.com" {
		t.Errorf("email = %q", entry["email"])
	}
	if entry["phone"] != "***678" {
		t.Errorf("phone = %q", entry["phone"])
	}
	if entry["error"] != "conflict for an***@example.com" {
		t.Errorf("error = %q", entry["error"])
	}
}

func TestRedactionDisabled(t *testing.T) {
	buf := capture(t)
	SetRedactPII(false)

	Info("raw", "email", "john.doe@example.com")

	var entry map[string]string
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["email"] != "john.doe@example.com" {
		t.Errorf("email = %q", entry["email"])
	}
}

func TestRedactHelpers(t *testing.T) {
	tests := []struct {
		fn   func(string) string
		in   string
		want string
	}{
		{RedactEmail, "john.doe@example.com", "jo***@example.com"},
		{RedactEmail, "ab@example.com", "***@example.com"},
		{RedactEmail, "not-an-email", "***@***"},
		{RedactPhone, "+61 412 345 678", "***678"},
		{RedactPhone, "12", "***"},
	}
	for _, tt := range tests {
		if got := tt.fn(tt.in); got != tt.want {
			t.Errorf("redact(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": DEBUG, "WARN": WARN, "warning": WARN, "error": ERROR, "": INFO, "bogus": INFO}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
