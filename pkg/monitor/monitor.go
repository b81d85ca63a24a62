// Package monitor maintains a rolling window over a calibrated sample stream
// and periodically recomputes per-channel spectra for display.
package monitor

import (
	"log"
	"sync"
	"time"

	"github.com/elata/goeeg/pkg/board"
	"github.com/elata/goeeg/pkg/calibrate"
	"github.com/elata/goeeg/pkg/config"
	"github.com/elata/goeeg/pkg/filter"
	"github.com/elata/goeeg/pkg/spectral"
)

var _ SpectrumMonitor = (*Monitor)(nil)

// SpectrumMonitor processes calibrated samples, maintains a rolling window,
// and recomputes conditioned per-channel spectra on a slide interval.
type SpectrumMonitor interface {
	ProcessSamples(input <-chan calibrate.Sample)
	Samples() []calibrate.Sample                                      // Current window (FIFO, ordered first to last)
	Spectra() []spectral.Spectrum                                     // Latest per-channel spectra, one per channel
	OnUpdate(func(samples []calibrate.Sample, spectra []spectral.Spectrum)) // Register callback for spectrum updates
}

// Monitor implements SpectrumMonitor.
// Internally uses a FIFO sample buffer trimmed by timestamp; externally it
// exposes ordered slices for oscillogram and spectrum drawing.
type Monitor struct {
	profile board.Profile
	chain   filter.Chain

	// Buffers
	// The sample buffer is FIFO and ordered first to last. Removal is based
	// on timestamp (time window), not sample count. Spectra are replaced
	// wholesale on every recompute.
	samples []calibrate.Sample
	spectra []spectral.Spectrum

	// Thread safety
	mu sync.RWMutex

	// Update callbacks
	callbacks []func(samples []calibrate.Sample, spectra []spectral.Spectrum)
	cbMu      sync.RWMutex

	// Configuration
	windowDuration time.Duration
	slideDuration  time.Duration

	lastCompute time.Time

	// Shutdown control
	shutdown bool // Set when the input channel closes, prevents further callbacks
}

// New creates a Monitor for the given board profile. The filter chain from
// the configuration conditions each window before the spectrum is taken.
func New(cfg *config.Config, profile board.Profile) *Monitor {
	return &Monitor{
		profile: profile,
		chain: filter.Chain{
			Order:     cfg.Filter.Order,
			LowCutHz:  cfg.Filter.LowCutHz,
			HighCutHz: cfg.Filter.HighCutHz,
			NotchQ:    cfg.Filter.NotchQ,
		},
		samples:        make([]calibrate.Sample, 0),
		spectra:        make([]spectral.Spectrum, 0),
		callbacks:      make([]func(samples []calibrate.Sample, spectra []spectral.Spectrum), 0),
		windowDuration: time.Duration(cfg.Monitor.WindowSeconds * float64(time.Second)),
		slideDuration:  time.Duration(cfg.Monitor.SlideSeconds * float64(time.Second)),
	}
}

// ProcessSamples consumes samples from the input channel until it closes.
// When the input channel closes, the shutdown flag stops further callbacks.
func (m *Monitor) ProcessSamples(input <-chan calibrate.Sample) {
	for s := range input {
		m.processSample(s)
	}
	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()
}

// processSample appends a sample, trims the window, and recomputes spectra
// when a full slide interval has elapsed.
func (m *Monitor) processSample(s calibrate.Sample) {
	m.mu.Lock()

	m.samples = append(m.samples, s)

	// Trim samples outside the time window.
	cutoffTime := s.Timestamp.Add(-m.windowDuration)
	cutoffIndex := 0
	for i, old := range m.samples {
		if old.Timestamp.After(cutoffTime) {
			cutoffIndex = i
			break
		}
	}
	if cutoffIndex > 0 {
		m.samples = m.samples[cutoffIndex:]
	}

	recompute := s.Timestamp.Sub(m.lastCompute) >= m.slideDuration
	if recompute {
		m.lastCompute = s.Timestamp
		m.recomputeSpectra()
	}

	shouldNotify := recompute && !m.shutdown
	m.mu.Unlock()

	if shouldNotify {
		m.notifyCallbacks()
	}
}

// recomputeSpectra conditions each channel's window through the filter chain
// and takes its spectrum. Called with the write lock held. Windows shorter
// than the chain's transient guard are skipped until enough data arrives.
func (m *Monitor) recomputeSpectra() {
	if len(m.samples) == 0 {
		return
	}
	channels := len(m.samples[0].Volts)
	min, err := m.chain.MinSamples(m.profile.SampleRate)
	if err != nil {
		log.Printf("Invalid filter chain: %v", err)
		return
	}
	if len(m.samples) <= min {
		return
	}

	spectra := make([]spectral.Spectrum, 0, channels)
	series := make([]float64, len(m.samples))
	for ch := 0; ch < channels; ch++ {
		for i, s := range m.samples {
			series[i] = s.Volts[ch]
		}

		conditioned, err := m.chain.Apply(series, m.profile.SampleRate)
		if err != nil {
			log.Printf("Failed to condition channel %d: %v", ch, err)
			return
		}
		spec, err := spectral.FFTSpectrum(conditioned, m.profile.SampleRate)
		if err != nil {
			log.Printf("Failed to compute spectrum for channel %d: %v", ch, err)
			return
		}
		spectra = append(spectra, spec)
	}
	m.spectra = spectra
}

// Samples returns a copy of the current window.
func (m *Monitor) Samples() []calibrate.Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]calibrate.Sample, len(m.samples))
	copy(result, m.samples)
	return result
}

// Spectra returns a copy of the latest per-channel spectra.
func (m *Monitor) Spectra() []spectral.Spectrum {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]spectral.Spectrum, len(m.spectra))
	copy(result, m.spectra)
	return result
}

// OnUpdate registers a callback invoked after every spectrum recompute.
// The callback should copy data quickly and return as fast as possible.
func (m *Monitor) OnUpdate(callback func(samples []calibrate.Sample, spectra []spectral.Spectrum)) {
	m.cbMu.Lock()
	defer m.cbMu.Unlock()
	m.callbacks = append(m.callbacks, callback)
}

// ResetShutdown resets the shutdown flag, allowing callbacks again.
// Call before attaching the monitor to a new stream.
func (m *Monitor) ResetShutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shutdown = false
}

// notifyCallbacks invokes all registered callbacks with copies of the
// current data, without holding any locks during the calls.
func (m *Monitor) notifyCallbacks() {
	m.mu.RLock()
	samplesCopy := make([]calibrate.Sample, len(m.samples))
	copy(samplesCopy, m.samples)
	spectraCopy := make([]spectral.Spectrum, len(m.spectra))
	copy(spectraCopy, m.spectra)
	m.mu.RUnlock()

	m.cbMu.RLock()
	callbacks := make([]func(samples []calibrate.Sample, spectra []spectral.Spectrum), len(m.callbacks))
	copy(callbacks, m.callbacks)
	m.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(samplesCopy, spectraCopy)
		}
	}
}
