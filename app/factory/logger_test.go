package factory

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
)

func TestNewModuleLogger(t *testing.T) {
	logger := NewModuleLogger("invoices-controller")
	if logger == nil {
		t.Fatal("expected logger")
	}
}

func TestLoggerWithContextAddsRequestID(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	base, hook := logrustest.NewNullLogger()
	logger := LoggerWithContext(base.WithField("module", "invoices-controller"), ctx)
	logger.Info("hello")

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected log entry")
	}
	if entry.Data["request_id"] != "req-123" {
		t.Fatalf("expected request_id field, got %v", entry.Data)
	}
}

func TestLoggerWithRequestIDSkipsEmpty(t *testing.T) {
	base, hook := logrustest.NewNullLogger()
	LoggerWithRequestID(logrus.FieldLogger(base), "").Info("hello")

	if _, ok := hook.LastEntry().Data["request_id"]; ok {
		t.Fatal("expected no request_id field")
	}
}
