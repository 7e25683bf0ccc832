package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	t.Parallel()
	log := Default()
	if log == nil {
		t.Fatal("Default() returned nil")
	}
	// Should not panic
	log.Info("test message")
	log.Debug("debug message")
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	log := Discard().With("k", "v").WithGroup("g")
	log.Error("dropped")
}

func TestJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("hello", "key", "value")

	output := buf.String()
	if !strings.Contains(output, `"key":"value"`) {
		t.Fatalf("expected key=value in JSON output, got: %s", output)
	}
	if !strings.Contains(output, `"level":"INFO"`) {
		t.Fatalf("expected level INFO in output, got: %s", output)
	}
}

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("should not appear")

	if buf.Len() > 0 {
		t.Fatalf("expected no output for info at warn level, got: %s", buf.String())
	}

	log.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("expected warn message in output, got: %s", buf.String())
	}
}

func TestSetup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		level  string
		debug  bool
		want   string
		quiet  bool
	}{
		{format: "json", level: "info", want: `"msg":"job done"`},
		{format: "TEXT", level: "info", want: "msg=\"job done\""},
		{format: "", level: "info", want: "job done"},
		{format: "pretty", level: "error", quiet: true},
		{format: "json", level: "error", debug: true, want: `"level":"DEBUG"`},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		log, err := Setup(&buf, tc.format, tc.level, tc.debug)
		if err != nil {
			t.Fatalf("Setup(%q): %v", tc.format, err)
		}
		if tc.debug {
			log.Debug("job done")
		} else {
			log.Info("job done")
		}
		if tc.quiet {
			if buf.Len() != 0 {
				t.Fatalf("Setup(%q, %q): expected no output, got %s", tc.format, tc.level, buf.String())
			}
			continue
		}
		if !strings.Contains(buf.String(), tc.want) {
			t.Fatalf("Setup(%q, %q): expected %s in output, got: %s", tc.format, tc.level, tc.want, buf.String())
		}
	}

	if _, err := Setup(&bytes.Buffer{}, "xml", "info", false); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestWith(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.With("component", "backend").Info("child message")

	if !strings.Contains(buf.String(), `"component":"backend"`) {
		t.Fatalf("expected component=backend in output, got: %s", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), JSON(&buf, slog.LevelInfo))

	FromContext(ctx).Info("roundtrip test")
	if !strings.Contains(buf.String(), "roundtrip test") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext with no logger returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" info ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tc := range tests {
		result := ParseLevel(tc.input)
		if result != tc.expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tc.input, tc.expected, result)
		}
	}
}

func TestPrettyHandlerEnabled(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, &PrettyOptions{HandlerOptions: slog.HandlerOptions{Level: slog.LevelWarn}})

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled at warn level")
	}
}

func TestPrettyNoColor(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, &PrettyOptions{NoColor: true})).Info("plain", "rows", 12)

	output := buf.String()
	if strings.Contains(output, "\033[") {
		t.Fatalf("expected no escape codes, got: %q", output)
	}
	if !strings.Contains(output, "INFO  plain rows=12") {
		t.Fatalf("unexpected layout: %q", output)
	}
}

func TestPrettyFormatsValues(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, &PrettyOptions{NoColor: true})).Info("job done",
		"duration", 1234567891*time.Nanosecond,
		"rate", 1234.56789,
		"job", "rbf features",
	)

	output := buf.String()
	for _, want := range []string{"duration=1.234568s", "rate=1234.57", `job="rbf features"`} {
		if !strings.Contains(output, want) {
			t.Fatalf("expected %s in output, got: %s", want, output)
		}
	}
}

func TestPrettyHandlerGroupsAndAttrs(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)

	if h.WithGroup("") != h {
		t.Fatal("WithGroup empty string should return same handler")
	}

	h2 := h.WithAttrs([]slog.Attr{slog.String("service", "api")}).WithGroup("a").WithGroup("b")
	slog.New(h2).Info("nested", "key", "val")

	output := buf.String()
	if !strings.Contains(output, "service=api") {
		t.Fatalf("expected 'service=api' in output, got: %s", output)
	}
	if !strings.Contains(output, "a.b.key=val") {
		t.Fatalf("expected 'a.b.key=val' in output, got: %s", output)
	}
}

func TestNeedsQuoting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bool
	}{
		{"simple", false},
		{"has space", true},
		{"has\ttab", true},
		{`has"quote`, true},
		{"k=v", true},
		{"", false},
	}

	for _, tc := range tests {
		result := needsQuoting(tc.input)
		if result != tc.expected {
			t.Errorf("needsQuoting(%q): expected %v, got %v", tc.input, tc.expected, result)
		}
	}
}
