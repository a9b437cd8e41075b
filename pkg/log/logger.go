// Package log provides structured logging for the gsva library, backed by
// zerolog. The scoring engine takes a Logger through its options; the default
// is a silent logger so library users opt in to output.
package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	gsvaerrors "github.com/YuminosukeSato/gsva/pkg/errors"
)

// Attribute keys shared across the pipeline so log events stay queryable.
const (
	MethodKey   = "method"
	KernelKey   = "kernel"
	GenesKey    = "genes"
	SamplesKey  = "samples"
	GeneSetsKey = "gene_sets"
	DroppedKey  = "dropped"
	ChunksKey   = "chunks"
	DurationKey = "duration_ms"
)

// NewLogger returns a zerolog.Logger writing JSON events to w at the given
// level. Level strings follow zerolog ("debug", "info", "warn", "error").
func NewLogger(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// NewStderrLogger returns a logger writing to standard error.
func NewStderrLogger(level string) zerolog.Logger {
	return NewLogger(os.Stderr, level)
}

// Nop returns a disabled logger. This is the engine default.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// BridgeWarnings routes pkg/errors warnings (constant rows, unmapped gene
// sets) into the given zerolog logger as WARN events. Warning types that
// implement zerolog.LogObjectMarshaler are embedded as a structured object.
func BridgeWarnings(logger zerolog.Logger) {
	gsvaerrors.SetZerologWarnFunc(func(warning error) {
		event := logger.Warn()
		if obj, ok := warning.(zerolog.LogObjectMarshaler); ok {
			event = event.Object("warning", obj)
		}
		event.Msg(warning.Error())
	})
}

// UnbridgeWarnings restores the default warning handler. Intended for tests.
func UnbridgeWarnings() {
	gsvaerrors.SetZerologWarnFunc(nil)
}
