// Package xbeelog wires the core's diagnostic events into zerolog with
// structured fields rather than formatted strings.
package xbeelog

import "github.com/rs/zerolog"

// Logger adapts a zerolog.Logger to the core's diagnostic sink.
type Logger struct {
	log zerolog.Logger
}

// New wraps an existing zerolog.Logger.
func New(log zerolog.Logger) Logger { return Logger{log: log} }

// WithDevice returns a child logger tagging every event with a device
// identifier, useful when one process drives several radios.
func (l Logger) WithDevice(id string) Logger {
	return Logger{log: l.log.With().Str("device", id).Logger()}
}

// Dropped satisfies the core's eventLogger interface.
func (l Logger) Dropped(reason string) {
	l.log.Warn().Str("reason", reason).Msg("xbee: frame dropped")
}

// Frame records a successfully parsed or sent frame at debug level.
func (l Logger) Frame(direction string, frameType byte, payload []byte) {
	l.log.Debug().
		Str("dir", direction).
		Uint8("type", frameType).
		Int("len", len(payload)).
		Msg("xbee: frame")
}

// Sent is a convenience wrapper around Frame for outbound frames.
func (l Logger) Sent(frameType byte, payload []byte) { l.Frame("tx", frameType, payload) }

// Received is a convenience wrapper around Frame for inbound frames.
func (l Logger) Received(frameType byte, payload []byte) { l.Frame("rx", frameType, payload) }
