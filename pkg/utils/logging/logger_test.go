package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/whisker/pkg/utils/logging"
)

func TestNew(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New(logging.Options{Level: "info", Writer: buf})
	gt.V(t, logger).NotNil()

	logger.Info("test message")
	gt.S(t, buf.String()).Contains("test message")
}

func TestNewWithDifferentLevels(t *testing.T) {
	testCases := []struct {
		level       string
		expectDebug bool
		expectInfo  bool
		expectWarn  bool
		expectError bool
	}{
		{"debug", true, true, true, true},
		{"info", false, true, true, true},
		{"warn", false, false, true, true},
		{"warning", false, false, true, true},
		{"error", false, false, false, true},
		{"DEBUG", true, true, true, true},
		{"", false, true, true, true},
		{"invalid", false, true, true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := logging.New(logging.Options{Level: tc.level, Writer: buf})

			logger.Debug("debug message")
			logger.Info("info message")
			logger.Warn("warn message")
			logger.Error("error message")

			output := buf.String()
			check := func(expect bool, msg string) {
				if expect {
					gt.S(t, output).Contains(msg)
				} else {
					gt.S(t, output).NotContains(msg)
				}
			}
			check(tc.expectDebug, "debug message")
			check(tc.expectInfo, "info message")
			check(tc.expectWarn, "warn message")
			check(tc.expectError, "error message")
		})
	}
}

func TestNewJSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New(logging.Options{Level: "info", Format: logging.FormatJSON, Writer: buf})

	logger.Info("Available cat breeds", "count", 67)

	var entry map[string]any
	gt.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	gt.Equal(t, entry["msg"], any("Available cat breeds"))
	gt.Equal(t, entry["count"], any(float64(67)))
}

func TestConsoleFormatPrintsGoerrValues(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logging.New(logging.Options{Level: "info", Writer: buf})

	err := goerr.New("Cat API returned error", goerr.V("status", 401))
	logger.Error("failed", "error", err)

	gt.S(t, buf.String()).Contains("Cat API returned error")
}

func TestParseFormat(t *testing.T) {
	gt.Equal(t, logging.ParseFormat("json"), logging.FormatJSON)
	gt.Equal(t, logging.ParseFormat(" JSON "), logging.FormatJSON)
	gt.Equal(t, logging.ParseFormat("console"), logging.FormatConsole)
	gt.Equal(t, logging.ParseFormat(""), logging.FormatConsole)
	gt.Equal(t, logging.ParseFormat("xml"), logging.FormatConsole)
}

func TestWithAndFrom(t *testing.T) {
	ctx := context.Background()
	buf := &bytes.Buffer{}
	logger := logging.New(logging.Options{Level: "debug", Writer: buf})

	ctx = logging.With(ctx, logger)

	retrieved := logging.From(ctx)
	gt.V(t, retrieved).NotNil()
	gt.Equal(t, retrieved, logger)

	retrieved.Info("context message")
	gt.S(t, buf.String()).Contains("context message")
}

func TestFromWithCustomLogger(t *testing.T) {
	buf := &bytes.Buffer{}
	customLogger := logging.New(logging.Options{Level: "info", Writer: buf}).With("session_id", "abc")

	ctx := logging.With(context.Background(), customLogger)
	retrieved := logging.From(ctx)
	gt.Equal(t, retrieved, customLogger)

	retrieved.Info("custom message")
	output := buf.String()
	gt.S(t, output).Contains("custom message")
	gt.S(t, output).Contains("session_id")
	gt.S(t, output).Contains("abc")
}

func TestFromUsesDefault(t *testing.T) {
	original := logging.Default()
	defer logging.SetDefault(original)

	buf := &bytes.Buffer{}
	customDefault := logging.New(logging.Options{Level: "warn", Writer: buf})
	logging.SetDefault(customDefault)

	retrieved := logging.From(context.Background())
	gt.Equal(t, retrieved, customDefault)

	retrieved.Warn("warning from default")
	gt.S(t, buf.String()).Contains("warning from default")
}
