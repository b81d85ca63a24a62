package acquire

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/elata/goeeg/pkg/board"
	"github.com/elata/goeeg/pkg/config"
)

// Mock synthesizes EEG-like frames for testing and development. Each channel
// carries a mixture of band-limited sinusoids plus mains interference and
// uniform noise, scaled to signed ADC codes for the given board profile.
type Mock struct {
	cfg     *config.MockConfig
	profile board.Profile

	frames    chan RawFrame
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool

	rng       *rand.Rand
	startTime time.Time
	n         int64 // samples emitted so far
}

// bandTones are the synthetic components mixed into every channel. Relative
// amplitudes favour alpha the way resting-state recordings do.
var bandTones = []struct {
	freqHz float64
	weight float64
}{
	{2, 0.3},  // delta
	{6, 0.4},  // theta
	{10, 1.0}, // alpha
	{22, 0.3}, // beta
}

// NewMock creates a synthetic source. The profile decides how volts map to
// ADC codes; pass the profile the downstream calibration will use.
func NewMock(cfg *config.MockConfig, profile board.Profile) *Mock {
	if cfg == nil {
		cfg = &config.MockConfig{
			SampleRateHz: profile.SampleRate,
			Channels:     4,
			SignalVolts:  20e-6,
			NoiseVolts:   2e-6,
			MainsVolts:   5e-6,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Mock{
		cfg:       cfg,
		profile:   profile,
		frames:    make(chan RawFrame, DefaultBufferSize),
		ctx:       ctx,
		cancel:    cancel,
		connected: false,
		rng:       rand.New(rand.NewSource(1)),
	}
}

// Connect starts frame generation.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	m.connected = true
	m.startTime = time.Now()
	m.n = 0

	go m.generateFrames()

	return nil
}

// Close stops the mocked source. The generator goroutine closes the frames
// channel on its way out, so a pending send can never hit a closed channel.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}

	m.cancel()
	m.connected = false

	return nil
}

// Frames returns the channel for reading frames.
func (m *Mock) Frames() <-chan RawFrame {
	return m.frames
}

// IsConnected returns whether the source is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// generateFrames emits frames at the configured sample rate. It owns the
// frames channel and closes it after the context is cancelled.
func (m *Mock) generateFrames() {
	defer close(m.frames)

	interval := time.Duration(float64(time.Second) / m.cfg.SampleRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			frame := m.generateFrame()
			select {
			case m.frames <- frame:
			case <-m.ctx.Done():
				return
			default:
				// Channel full, skip
			}
		}
	}
}

// generateFrame synthesizes one multi-channel frame.
func (m *Mock) generateFrame() RawFrame {
	m.mu.Lock()
	n := m.n
	m.n++
	m.mu.Unlock()

	t := float64(n) / m.cfg.SampleRateHz
	micros := m.startTime.UnixMicro() + int64(t*1e6)

	codes := make([]int32, m.cfg.Channels)
	for ch := range codes {
		// Per-channel phase offset keeps channels distinct but correlated.
		phase := float64(ch) * math.Pi / 4

		var v float64
		for _, tone := range bandTones {
			v += tone.weight * m.cfg.SignalVolts * math.Sin(2*math.Pi*tone.freqHz*t+phase)
		}
		v += m.cfg.MainsVolts * math.Sin(2*math.Pi*50*t)
		v += m.cfg.MainsVolts * 0.5 * math.Sin(2*math.Pi*60*t)
		v += (m.rng.Float64()*2 - 1) * m.cfg.NoiseVolts

		codes[ch] = m.voltsToCode(m.profile.VMid() + v)
	}

	return RawFrame{
		TimestampMicros: micros,
		Codes:           codes,
	}
}

// voltsToCode inverts the board calibration, clamping to the signed range.
func (m *Mock) voltsToCode(volts float64) int32 {
	fullScale := math.Exp2(float64(m.profile.ResolutionBits - 1))
	span := (m.profile.VRef - m.profile.AVSS) / (2 * m.profile.Gain)

	code := (volts - m.profile.VMid()) / span * fullScale
	if code > fullScale-1 {
		code = fullScale - 1
	} else if code < -fullScale {
		code = -fullScale
	}
	return int32(code)
}
