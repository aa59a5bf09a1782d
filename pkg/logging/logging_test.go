package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		// Lowercase
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},

		// Uppercase
		{"DEBUG", LevelDebug},
		{"INFO", LevelInfo},
		{"WARN", LevelWarn},
		{"WARNING", LevelWarn},
		{"ERROR", LevelError},

		// Mixed case (the fix: these should all work now)
		{"Debug", LevelDebug},
		{"Info", LevelInfo},
		{"Warn", LevelWarn},
		{"Warning", LevelWarn},
		{"Error", LevelError},
		{"dEbUg", LevelDebug},

		// Empty string defaults to Info
		{"", LevelInfo},

		// Unrecognized defaults to Info
		{"trace", LevelInfo},
		{"fatal", LevelInfo},
		{"unknown", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseLevel(tt.input)
			if result != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"Json", FormatJSON},
		{"text", FormatText},
		{"TEXT", FormatText},
		{"", FormatText},
		{"yaml", FormatText}, // unrecognized defaults to text
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := ParseFormat(tt.input)
			if result != tt.expected {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestForObservers(t *testing.T) {
	var a, b bytes.Buffer
	logger := ForObservers(
		NewHandler(Config{Level: LevelDebug, Format: FormatText, Output: &a}),
		nil,
		NewHandler(Config{Level: LevelWarn, Format: FormatJSON, Output: &b}),
	)

	logger.Debug("parsed function", "function", "HtmlEncode")
	logger.Warn("plugin not registered", "plugin", "contoso")

	if !strings.Contains(a.String(), "parsed function") || !strings.Contains(a.String(), "plugin not registered") {
		t.Errorf("debug observer missed records: %q", a.String())
	}
	if strings.Contains(b.String(), "parsed function") {
		t.Errorf("warn observer received a debug record: %q", b.String())
	}
	if !strings.Contains(b.String(), `"plugin":"contoso"`) {
		t.Errorf("warn observer missed the warning: %q", b.String())
	}
}

func TestForObserversEmptyDiscards(t *testing.T) {
	logger := ForObservers(nil)
	logger.Error("dropped")
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }

func TestMultiHandlerContinuesAfterFailure(t *testing.T) {
	var buf bytes.Buffer
	ok := NewHandler(Config{Level: LevelInfo, Output: &buf})
	h := NewMultiHandler(failingHandler{ok}, ok)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), LevelInfo, "mapping loaded", 0))
	if err == nil || !strings.Contains(err.Error(), "sink down") {
		t.Fatalf("expected joined sink error, got %v", err)
	}
	if !strings.Contains(buf.String(), "mapping loaded") {
		t.Errorf("second handler did not receive the record: %q", buf.String())
	}
	if h.Len() != 2 {
		t.Errorf("Len() = %d, want 2", h.Len())
	}
}
