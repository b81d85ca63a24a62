package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elata/goeeg/pkg/config"
	"github.com/elata/goeeg/pkg/timefreq"
)

func TestTimeFrequencyRidgesFindAlphaTone(t *testing.T) {
	// A pure 10 Hz tone must dominate both the spectrogram and the scalogram
	// built from the configured analysis settings.
	cfg := config.Default()
	const fs = 250.0
	series := make([]float64, 2048)
	for i := range series {
		series[i] = 20e-6 * math.Sin(2*math.Pi*10*float64(i)/fs)
	}

	stftHz, cwtHz, err := timeFrequencyRidges(cfg, series, fs)
	require.NoError(t, err)

	// Spectrogram bins are fs/segment wide; the scalogram grid spans
	// freq_min_hz..freq_max_hz in num_freqs steps. One step of slack each.
	assert.InDelta(t, 10, stftHz, fs/float64(cfg.STFT.SegmentLength))
	assert.InDelta(t, 10, cwtHz, (cfg.CWT.FreqMaxHz-cfg.CWT.FreqMinHz)/float64(cfg.CWT.NumFreqs-1))
}

func TestTimeFrequencyRidgesEmptySeries(t *testing.T) {
	cfg := config.Default()
	_, _, err := timeFrequencyRidges(cfg, nil, 250)
	assert.ErrorIs(t, err, timefreq.ErrInvalidInput)
}
