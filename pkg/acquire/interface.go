// Package acquire reads raw ADC frames from an EEG board, either over a
// serial link or from a synthetic source used for development.
package acquire

// RawFrame is one multi-channel sample as emitted by the board: a capture
// timestamp in unix microseconds and one signed ADC code per channel.
type RawFrame struct {
	TimestampMicros int64
	Codes           []int32
}

// Source defines the interface for frame sources (real or mocked).
type Source interface {
	Connect() error
	Close() error
	Frames() <-chan RawFrame
	IsConnected() bool
}

// Ensure Serial implements Source.
var _ Source = (*Serial)(nil)

// Ensure Mock implements Source.
var _ Source = (*Mock)(nil)
