package eventbus

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/riskibarqy/fan-identity/internal/platform/logging"
)

// LoggerAdapter routes watermill's internal logging into logging.Logger.
type LoggerAdapter struct {
	logger *logging.Logger
	fields watermill.LogFields
}

func NewLoggerAdapter(logger *logging.Logger) *LoggerAdapter {
	if logger == nil {
		logger = logging.Default()
	}
	return &LoggerAdapter{logger: logger.Named("eventbus")}
}

func (a *LoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error(msg, append(a.args(fields), "error", err)...)
}

func (a *LoggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info(msg, a.args(fields)...)
}

func (a *LoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, a.args(fields)...)
}

// Trace is folded into debug; zap has no lower level.
func (a *LoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, a.args(fields)...)
}

func (a *LoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &LoggerAdapter{
		logger: a.logger,
		fields: a.fields.Add(fields),
	}
}

func (a *LoggerAdapter) args(fields watermill.LogFields) []any {
	merged := a.fields.Add(fields)
	out := make([]any, 0, len(merged)*2)
	for k, v := range merged {
		out = append(out, k, v)
	}
	return out
}
