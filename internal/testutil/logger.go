package testutil

import (
	"io"
	"log/slog"

	"github.com/avasilenko/authgate-server/internal/logger"
)

// MakeNoopLogger returns a Logger that drops every record, for tests that
// need a logger but not its output.
func MakeNoopLogger() *logger.Logger {
	return &logger.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}
