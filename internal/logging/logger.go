// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Field names shared across packages so one query can follow an order from
// the HTTP request through the POS ticket and its webhooks.
const (
	FieldService       = "service"
	FieldVersion       = "version"
	FieldEnvironment   = "env"
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldCorrelationID = "correlation_id"
	FieldOrderID       = "order_id"
	FieldLocationID    = "location_id"
	FieldEventID       = "event_id"
	FieldVendor        = "vendor"
)

// ServiceName is stamped on every line unless Config.Service overrides it.
const ServiceName = "orderbridge"

// Config holds logging configuration. It mirrors the logging section of the
// application config plus the build identity.
type Config struct {
	Level  string // trace, debug, info, warn, error, fatal or off
	Format string // json or console
	Caller bool

	// Timestamp adds a "time" field. Always on outside tests.
	Timestamp bool

	Service     string
	Version     string
	Environment string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig is what the process logs with before Init runs.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		Format:    "json",
		Timestamp: true,
		Service:   ServiceName,
		Output:    os.Stderr,
	}
}

var current atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // config loading logs before Init is called
func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.TimestampFieldName = "time"
	zerolog.MessageFieldName = "message"
	Init(DefaultConfig())
}

// Init replaces the global logger and level. It may be called again, for
// example after config is loaded.
func Init(cfg Config) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	l := build(cfg)
	current.Store(&l)
}

func build(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05.000"}
	}

	c := zerolog.New(out).With()
	if cfg.Timestamp {
		c = c.Timestamp()
	}
	if cfg.Caller {
		c = c.Caller()
	}
	if cfg.Service == "" {
		cfg.Service = ServiceName
	}
	c = c.Str(FieldService, cfg.Service)
	if cfg.Version != "" {
		c = c.Str(FieldVersion, cfg.Version)
	}
	if cfg.Environment != "" {
		c = c.Str(FieldEnvironment, cfg.Environment)
	}
	return c.Logger()
}

var levelAliases = map[string]zerolog.Level{
	"warning": zerolog.WarnLevel,
	"off":     zerolog.Disabled,
	"none":    zerolog.Disabled,
}

// parseLevel accepts zerolog level names and a few aliases. Anything
// unrecognized is info.
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if l, ok := levelAliases[level]; ok {
		return l
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil || l == zerolog.NoLevel || l == zerolog.PanicLevel {
		return zerolog.InfoLevel
	}
	return l
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger { return *current.Load() }

// SetLogger replaces the global logger without touching the level. Tests
// use it with NewTestLogger.
//
//nolint:gocritic // zerolog.Logger is a value type
func SetLogger(l zerolog.Logger) { current.Store(&l) }

// With starts a child logger:
//
//	posLogger := logging.With().Str(logging.FieldComponent, "posclient").Logger()
func With() zerolog.Context { return current.Load().With() }

// Trace, Debug, Info, Warn and Error start an event on the global logger.
func Trace() *zerolog.Event { return current.Load().Trace() }
func Debug() *zerolog.Event { return current.Load().Debug() }
func Info() *zerolog.Event  { return current.Load().Info() }
func Warn() *zerolog.Event  { return current.Load().Warn() }
func Error() *zerolog.Event { return current.Load().Error() }

// Fatal exits the process after the line is written.
func Fatal() *zerolog.Event { return current.Load().Fatal() }

// Err logs at error level when err is non-nil, info otherwise.
//
//	logging.Err(err).Str(logging.FieldOrderID, id).Msg("order submit finished")
func Err(err error) *zerolog.Event { return current.Load().Err(err) }

// SetLevelString changes the global level at runtime.
func SetLevelString(level string) { zerolog.SetGlobalLevel(parseLevel(level)) }

// NewTestLogger writes JSON lines to w without the service stamp.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
