package monitor

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elata/goeeg/pkg/board"
	"github.com/elata/goeeg/pkg/calibrate"
	"github.com/elata/goeeg/pkg/config"
	"github.com/elata/goeeg/pkg/spectral"
)

func testSetup(t *testing.T) (*Monitor, board.Profile) {
	t.Helper()
	p, err := board.Lookup("boardAds1299")
	require.NoError(t, err)
	return New(config.Default(), p), p
}

// feed pushes n samples of a single-channel sinusoid through the monitor
// synchronously. Timestamps start at a fixed base and advance at the board
// sample rate.
func feed(m *Monitor, p board.Profile, n int, freqHz float64) {
	base := time.Unix(1_700_000_000, 0)
	in := make(chan calibrate.Sample, n)
	for i := 0; i < n; i++ {
		tsec := float64(i) / p.SampleRate
		in <- calibrate.Sample{
			Timestamp: base.Add(time.Duration(tsec * float64(time.Second))),
			Volts:     []float64{p.VMid() + 20e-6*math.Sin(2*math.Pi*freqHz*tsec)},
		}
	}
	close(in)
	m.ProcessSamples(in)
}

func TestNew(t *testing.T) {
	m, _ := testSetup(t)
	assert.NotNil(t, m)
	assert.Equal(t, 2*time.Second, m.windowDuration)
	assert.Equal(t, time.Second, m.slideDuration)
	assert.Empty(t, m.Samples())
	assert.Empty(t, m.Spectra())
}

func TestMonitor_WindowTrimming(t *testing.T) {
	m, p := testSetup(t)

	// Three seconds of samples against a two second window.
	feed(m, p, 750, 10)

	samples := m.Samples()
	require.NotEmpty(t, samples)

	span := samples[len(samples)-1].Timestamp.Sub(samples[0].Timestamp)
	assert.LessOrEqual(t, span, 2*time.Second)
	// The window should still hold roughly two seconds at 250 Hz.
	assert.Greater(t, len(samples), 480)
	assert.LessOrEqual(t, len(samples), 501)
}

func TestMonitor_SpectraPeakAtTone(t *testing.T) {
	m, p := testSetup(t)

	feed(m, p, 750, 10)

	spectra := m.Spectra()
	require.Len(t, spectra, 1)

	peakFreq, _ := spectra[0].Peak()
	binWidth := p.SampleRate / float64(spectra[0].N)
	assert.InDelta(t, 10.0, peakFreq, 2*binWidth)
}

func TestMonitor_NoSpectraBeforeEnoughData(t *testing.T) {
	m, p := testSetup(t)

	// A handful of samples is below the chain's transient guard.
	feed(m, p, 10, 10)
	assert.Empty(t, m.Spectra())
}

func TestMonitor_OnUpdateCallback(t *testing.T) {
	m, p := testSetup(t)

	updates := 0
	var lastSpectra int
	m.OnUpdate(func(samples []calibrate.Sample, spectra []spectral.Spectrum) {
		updates++
		lastSpectra = len(spectra)
	})

	feed(m, p, 750, 10)

	assert.Greater(t, updates, 0, "callback should fire on recompute")
	assert.Equal(t, 1, lastSpectra)
}

func TestMonitor_GracefulShutdown(t *testing.T) {
	m, p := testSetup(t)

	feed(m, p, 300, 10)

	// Input closed: shutdown is set and new callbacks are suppressed.
	m.mu.RLock()
	shutdown := m.shutdown
	m.mu.RUnlock()
	assert.True(t, shutdown)

	m.ResetShutdown()
	m.mu.RLock()
	shutdown = m.shutdown
	m.mu.RUnlock()
	assert.False(t, shutdown)
}
