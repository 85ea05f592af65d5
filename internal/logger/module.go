package logger

import (
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// Module wires slog logger for dependency injection.
var Module = fx.Provide(newFromConfig)

// FxEventLogger routes fx's own lifecycle events through the application logger.
var FxEventLogger = fx.WithLogger(func(l *slog.Logger) fxevent.Logger {
	return &fxevent.SlogLogger{Logger: l}
})
