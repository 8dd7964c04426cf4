package utils

import (
	"context"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// DBLogAdapter implements pgx tracelog.Logger on top of goapp zerolog
type DBLogAdapter struct{}

// NewDBLogAdapter creates pgx log adapter
func NewDBLogAdapter() *DBLogAdapter {
	return &DBLogAdapter{}
}

// Log maps pgx records to zerolog events
func (l *DBLogAdapter) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]interface{}) {
	l.event(level).Fields(data).Msg(msg)
}

func (l *DBLogAdapter) event(level tracelog.LogLevel) *zerolog.Event {
	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug, tracelog.LogLevelInfo:
		return goapp.Log.Debug()
	case tracelog.LogLevelWarn:
		return goapp.Log.Warn()
	}
	return goapp.Log.Error()
}
