package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to unmarshal log entry: %v", err)
	}
	return entry
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	t.Run("debug not logged at info level", func(t *testing.T) {
		buf.Reset()
		logger.Debug("debug message")
		if buf.Len() > 0 {
			t.Error("Debug message should not be logged at Info level")
		}
	})

	t.Run("info logged at info level", func(t *testing.T) {
		buf.Reset()
		logger.Info("info message")
		if buf.Len() == 0 {
			t.Fatal("Info message should be logged at Info level")
		}

		entry := decodeEntry(t, &buf)
		if entry["level"] != "INFO" {
			t.Errorf("Expected level INFO, got %v", entry["level"])
		}
		if entry["msg"] != "info message" {
			t.Errorf("Expected message 'info message', got %v", entry["msg"])
		}
	})

	t.Run("warn and error logged at info level", func(t *testing.T) {
		buf.Reset()
		logger.Warn("warn message")
		if buf.Len() == 0 {
			t.Error("Warn message should be logged at Info level")
		}
		buf.Reset()
		logger.Error("error message")
		if buf.Len() == 0 {
			t.Error("Error message should be logged at Info level")
		}
	})

	t.Run("debug logged at debug level", func(t *testing.T) {
		var dbuf bytes.Buffer
		NewLogger(DebugLevel, &dbuf).Debug("debug message")
		if dbuf.Len() == 0 {
			t.Error("Debug message should be logged at Debug level")
		}
	})
}

func TestLogger_WithField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithField("run_id", "abc").Info("message")

	entry := decodeEntry(t, &buf)
	if entry["run_id"] != "abc" {
		t.Errorf("Expected field 'run_id' to be 'abc', got %v", entry["run_id"])
	}
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithFields(map[string]interface{}{
		"key1": "value1",
		"key2": 42,
	}).Info("message")

	entry := decodeEntry(t, &buf)
	if entry["key1"] != "value1" {
		t.Errorf("Expected field 'key1' to be 'value1', got %v", entry["key1"])
	}
	if entry["key2"] != float64(42) {
		t.Errorf("Expected field 'key2' to be 42, got %v", entry["key2"])
	}
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	t.Run("adds error field", func(t *testing.T) {
		buf.Reset()
		logger.WithError(errors.New("boom")).Error("something went wrong")
		entry := decodeEntry(t, &buf)
		if entry["error"] != "boom" {
			t.Errorf("Expected error field 'boom', got %v", entry["error"])
		}
	})

	t.Run("nil error is a no-op", func(t *testing.T) {
		buf.Reset()
		logger.WithError(nil).Info("fine")
		entry := decodeEntry(t, &buf)
		if _, exists := entry["error"]; exists {
			t.Error("Expected no error field for nil error")
		}
	})
}

func TestContextHelpers(t *testing.T) {
	t.Run("request id", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-1")
		if got := GetRequestID(ctx); got != "req-1" {
			t.Errorf("Expected req-1, got %s", got)
		}
		if got := GetRequestID(context.Background()); got != "" {
			t.Errorf("Expected empty request id, got %s", got)
		}
	})

	t.Run("run id", func(t *testing.T) {
		ctx := WithRunID(context.Background(), "run-1")
		if got := GetRunID(ctx); got != "run-1" {
			t.Errorf("Expected run-1, got %s", got)
		}
	})

	t.Run("WithContext attaches ids", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := WithRequestID(context.Background(), "req-2")
		ctx = WithRunID(ctx, "run-2")

		NewLogger(InfoLevel, &buf).WithContext(ctx).Info("message")

		entry := decodeEntry(t, &buf)
		if entry["request_id"] != "req-2" {
			t.Errorf("Expected request_id req-2, got %v", entry["request_id"])
		}
		if entry["run_id"] != "run-2" {
			t.Errorf("Expected run_id run-2, got %v", entry["run_id"])
		}
	})

	t.Run("WithContext on an empty context is a no-op", func(t *testing.T) {
		var buf bytes.Buffer
		NewLogger(InfoLevel, &buf).WithContext(context.Background()).Info("message")

		entry := decodeEntry(t, &buf)
		if _, exists := entry["request_id"]; exists {
			t.Error("Expected no request_id field")
		}
		if _, exists := entry["run_id"]; exists {
			t.Error("Expected no run_id field")
		}
	})
}
