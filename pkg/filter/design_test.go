package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const invSqrt2 = 0.7071067811865476

func TestButterworthLowPassResponse(t *testing.T) {
	tests := []struct {
		name   string
		order  int
		cutoff float64
	}{
		{name: "order 2", order: 2, cutoff: 0.3},
		{name: "order 4", order: 4, cutoff: 0.36}, // 45 Hz at 250 Hz sampling
		{name: "order 5 odd", order: 5, cutoff: 0.2},
		{name: "order 8", order: 8, cutoff: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf, err := ButterworthLowPass(tt.order, tt.cutoff)
			require.NoError(t, err)

			assert.InDelta(t, 1.0, tf.Magnitude(1e-9), 1e-6, "DC gain")
			assert.InDelta(t, invSqrt2, tf.Magnitude(tt.cutoff), 1e-6, "-3 dB point")
			assert.Less(t, tf.Magnitude(0.999), 1e-3, "stopband")
		})
	}
}

func TestButterworthHighPassResponse(t *testing.T) {
	tf, err := ButterworthHighPass(4, 0.004) // 0.5 Hz at 250 Hz sampling
	require.NoError(t, err)

	assert.Less(t, tf.Magnitude(1e-6), 1e-6, "DC rejection")
	assert.InDelta(t, invSqrt2, tf.Magnitude(0.004), 1e-6, "-3 dB point")
	assert.InDelta(t, 1.0, tf.Magnitude(0.5), 1e-3, "passband")
}

func TestButterworthBandPassResponse(t *testing.T) {
	tf, err := ButterworthBandPass(4, 0.1, 0.4)
	require.NoError(t, err)

	assert.InDelta(t, invSqrt2, tf.Magnitude(0.1), 1e-5, "lower edge")
	assert.InDelta(t, invSqrt2, tf.Magnitude(0.4), 1e-5, "upper edge")
	assert.InDelta(t, 1.0, tf.Magnitude(0.2), 1e-2, "passband")
	assert.Less(t, tf.Magnitude(0.01), 1e-3, "low stopband")
	assert.Less(t, tf.Magnitude(0.95), 1e-3, "high stopband")
}

func TestNotchResponse(t *testing.T) {
	// 50 Hz and 60 Hz at 250 Hz sampling.
	for _, w0 := range []float64{0.4, 0.48} {
		tf, err := Notch(w0, 30)
		require.NoError(t, err)

		assert.Less(t, tf.Magnitude(w0), 1e-9, "rejected frequency")
		assert.InDelta(t, 1.0, tf.Magnitude(1e-9), 1e-6, "DC gain")
		assert.InDelta(t, 1.0, tf.Magnitude(0.9999), 1e-3, "near-Nyquist gain")
		// -3 dB at the band edges w0 +- w0/(2q).
		bw := w0 / 30
		assert.InDelta(t, invSqrt2, tf.Magnitude(w0+bw/2), 0.02)
		assert.InDelta(t, invSqrt2, tf.Magnitude(w0-bw/2), 0.02)
	}
}

func TestDesignValidation(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"lowpass zero order", func() error { _, err := ButterworthLowPass(0, 0.2); return err }},
		{"lowpass cutoff at nyquist", func() error { _, err := ButterworthLowPass(4, 1); return err }},
		{"lowpass negative cutoff", func() error { _, err := ButterworthLowPass(4, -0.1); return err }},
		{"highpass cutoff at zero", func() error { _, err := ButterworthHighPass(4, 0); return err }},
		{"bandpass inverted edges", func() error { _, err := ButterworthBandPass(4, 0.4, 0.1); return err }},
		{"notch zero q", func() error { _, err := Notch(0.4, 0); return err }},
		{"notch frequency out of range", func() error { _, err := Notch(1.5, 30); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.fn(), ErrInvalidConfig)
		})
	}
}

func TestNotchMatchesQBandwidth(t *testing.T) {
	// A higher Q must give a narrower reject band.
	wide, err := Notch(0.4, 5)
	require.NoError(t, err)
	narrow, err := Notch(0.4, 50)
	require.NoError(t, err)

	off := 0.4 + 0.02
	assert.Less(t, wide.Magnitude(off), narrow.Magnitude(off))
	assert.Less(t, math.Abs(wide.Magnitude(0.4)), 1e-9)
}
