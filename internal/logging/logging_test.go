package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New("debug", "json", &buf)

	log.Debug().Int("fragments", 7).Msg("collision")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected JSON line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "collision" || line["fragments"] != float64(7) || line["level"] != "debug" {
		t.Errorf("unexpected fields %v", line)
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		level   string
		debug   bool
		warning bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"WARN", false, true},
		{"error", false, false},
		{"", false, true},
		{"chatty", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			log := New(tt.level, "json", &buf)

			log.Debug().Msg("d")
			if got := buf.Len() > 0; got != tt.debug {
				t.Errorf("expected debug enabled=%v, got %v", tt.debug, got)
			}
			buf.Reset()
			log.Warn().Msg("w")
			if got := buf.Len() > 0; got != tt.warning {
				t.Errorf("expected warn enabled=%v, got %v", tt.warning, got)
			}
		})
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New("info", "console", &buf)
	log.Info().Str("scenario", "stress").Msg("run started")

	out := buf.String()
	if strings.HasPrefix(out, "{") {
		t.Errorf("expected console output, got JSON %q", out)
	}
	if !strings.Contains(out, "run started") || !strings.Contains(out, "stress") {
		t.Errorf("expected message and field, got %q", out)
	}
}
