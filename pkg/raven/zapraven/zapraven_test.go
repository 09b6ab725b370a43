package zapraven_test

import (
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/zeevl/raven-js/pkg/raven"
	"github.com/zeevl/raven-js/pkg/raven/transport/memory"
	"github.com/zeevl/raven-js/pkg/raven/zapraven"
)

func newTestPipeline(t *testing.T) (*zap.Logger, *memory.Transport) {
	t.Helper()
	transport := memory.New()
	client, err := raven.New("https://publickey@errors.test/1", raven.WithTransport(transport))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	core := zapraven.NewCore(client, zapcore.ErrorLevel)
	return zap.New(core), transport
}

func lastPayload(t *testing.T, transport *memory.Transport) map[string]any {
	t.Helper()
	reqs := transport.Requests()
	if len(reqs) == 0 {
		t.Fatal("no request captured")
	}
	var payload map[string]any
	if err := json.Unmarshal(reqs[len(reqs)-1].Body, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	return payload
}

func TestCore_ForwardsErrorEntries(t *testing.T) {
	logger, transport := newTestPipeline(t)

	logger.Error("database down", zap.String("db", "primary"), zap.Int("attempt", 3))

	payload := lastPayload(t, transport)
	if payload["message"] != "database down" {
		t.Errorf("message = %v", payload["message"])
	}
	tags, _ := payload["tags"].(map[string]any)
	if tags["level"] != "error" {
		t.Errorf("tags = %v", tags)
	}
	extra, _ := payload["extra"].(map[string]any)
	if extra["db"] != "primary" {
		t.Errorf("extra db = %v", extra["db"])
	}
	if extra["attempt"] != float64(3) {
		t.Errorf("extra attempt = %v", extra["attempt"])
	}
}

func TestCore_BelowLevelIgnored(t *testing.T) {
	logger, transport := newTestPipeline(t)

	logger.Info("just informational")

	if n := len(transport.Requests()); n != 0 {
		t.Errorf("requests = %d, want 0", n)
	}
}

func TestCore_WithFieldsCarried(t *testing.T) {
	logger, transport := newTestPipeline(t)

	logger.With(zap.String("tenant", "acme")).Error("quota exceeded")

	extra, _ := lastPayload(t, transport)["extra"].(map[string]any)
	if extra["tenant"] != "acme" {
		t.Errorf("extra = %v", extra)
	}
}

func TestCore_NamedLoggerBecomesLogger(t *testing.T) {
	logger, transport := newTestPipeline(t)

	logger.Named("worker").Error("job failed")

	payload := lastPayload(t, transport)
	if payload["logger"] != "worker" {
		t.Errorf("logger = %v", payload["logger"])
	}
}

func TestCore_CallerBecomesCulprit(t *testing.T) {
	transport := memory.New()
	client, err := raven.New("https://publickey@errors.test/1", raven.WithTransport(transport))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	logger := zap.New(zapraven.NewCore(client, zapcore.ErrorLevel), zap.AddCaller())

	logger.Error("with caller")

	payload := lastPayload(t, transport)
	culprit, _ := payload["culprit"].(string)
	if !strings.Contains(culprit, "zapraven_test.go") {
		t.Errorf("culprit = %q", culprit)
	}
}

func TestCore_TeeAlongsideExistingCore(t *testing.T) {
	transport := memory.New()
	client, err := raven.New("https://publickey@errors.test/1", raven.WithTransport(transport))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	observed, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(zapcore.NewTee(observed, zapraven.NewCore(client, zapcore.ErrorLevel)))

	logger.Error("shared entry")

	if len(transport.Requests()) != 1 {
		t.Error("reporting core must receive the entry")
	}
	if logs.Len() != 1 {
		t.Error("primary core must receive the entry")
	}
}
