package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestEntriesAreJSONLines(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stdout)

	Audit(nil, "admin.products.create", map[string]any{"product": "p1"})
	Error(nil, "assistant.describe.fail", errors.New("quota"), nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d: %q", len(lines), buf.String())
	}

	var first struct {
		Level  string         `json:"level"`
		Kind   string         `json:"kind"`
		Action string         `json:"action"`
		Fields map[string]any `json:"fields"`
	}
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatal(err)
	}
	if first.Action != "admin.products.create" || first.Kind != "audit" || first.Fields["product"] != "p1" {
		t.Fatalf("unexpected audit entry: %+v", first)
	}

	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatal(err)
	}
	if second["level"] != "error" || second["err"] != "quota" {
		t.Fatalf("unexpected error entry: %v", second)
	}
}
