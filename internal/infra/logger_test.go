package infra

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLevelFor(t *testing.T) {
	cases := []struct {
		dev   bool
		level string
		want  zerolog.Level
	}{
		{dev: true, want: zerolog.DebugLevel},
		{dev: false, want: zerolog.InfoLevel},
		{dev: false, level: "warn", want: zerolog.WarnLevel},
		{dev: true, level: "error", want: zerolog.ErrorLevel},
		{dev: false, level: "nonsense", want: zerolog.InfoLevel},
	}
	for _, tc := range cases {
		if got := levelFor(tc.dev, tc.level); got != tc.want {
			t.Fatalf("levelFor(%v, %q) = %v, want %v", tc.dev, tc.level, got, tc.want)
		}
	}
}

func TestNewLoggerJSONInProduction(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "", "worker")
	logger.Debug().Msg("hidden")
	logger.Info().Str("job_id", "j1").Msg("visible")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %q", lines)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["service"] != "worker" || entry["job_id"] != "j1" || entry["message"] != "visible" {
		t.Fatalf("entry = %v", entry)
	}
}
