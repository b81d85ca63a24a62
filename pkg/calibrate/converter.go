package calibrate

import (
	"log"
	"time"

	"github.com/elata/goeeg/pkg/acquire"
	"github.com/elata/goeeg/pkg/board"
)

// Sample is one calibrated multi-channel sample in electrode volts.
type Sample struct {
	Timestamp time.Time
	Volts     []float64
}

// Converter is a function type that converts a RawFrame channel to a Sample
// channel.
type Converter func(in <-chan acquire.RawFrame) <-chan Sample

// NewConverter creates a converter that applies the board calibration to every
// frame. The profile is validated up front; a nil Converter and the error come
// back if it cannot be used.
func NewConverter(p board.Profile, bufSize int) (Converter, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	if bufSize <= 0 {
		bufSize = 256
	}

	return func(in <-chan acquire.RawFrame) <-chan Sample {
		out := make(chan Sample, bufSize)

		go func() {
			defer close(out)

			for frame := range in {
				volts, err := SeriesToVoltage(frame.Codes, p)
				if err != nil {
					log.Printf("Failed to convert frame: %v", err)
					continue
				}

				sample := Sample{
					Timestamp: time.UnixMicro(frame.TimestampMicros),
					Volts:     volts,
				}

				select {
				case out <- sample:
				case <-time.After(time.Second):
					log.Printf("Converter output channel full, dropping sample")
				}
			}
		}()

		return out
	}, nil
}
