package logging_test

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-surveyform/internal/logging"
)

func TestNew(t *testing.T) {
	logger, err := logging.New("warn", "json")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("error should be enabled at warn level")
	}

	if _, err := logging.New("loud", "json"); err == nil {
		t.Fatalf("expected unknown level error")
	}
}
