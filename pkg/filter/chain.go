package filter

import "fmt"

// Mains interference frequencies rejected by the chain (Hz).
const (
	NotchFreq50 = 50.0
	NotchFreq60 = 60.0
)

// Chain is the causal EEG conditioning cascade: high-pass, 50 Hz notch,
// 60 Hz notch, low-pass, applied in that order. Every stage is seeded with
// its steady state for the first sample of the incoming series, and stage
// state is discarded when the stage completes; nothing carries over between
// stages or between series. Seeding suppresses the startup transient but does
// not cancel DC exactly at sub-hertz high-pass cutoffs, where the
// steady-state solve is ill-conditioned; a constant input leaves a small
// residual several orders above machine epsilon.
//
// The chain is causal and state-continuous; it does not promise zero phase.
// For exploratory zero-phase filtering use ZeroPhaseLowPass / ZeroPhaseBandPass.
type Chain struct {
	Order     int     // Butterworth order for the high-pass and low-pass stages
	LowCutHz  float64 // High-pass cutoff (Hz)
	HighCutHz float64 // Low-pass cutoff (Hz)
	NotchQ    float64 // Quality factor of both notch stages
}

// design builds the four stage transfer functions for the given sample rate.
func (c Chain) design(sampleRate float64) ([]TF, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %v", ErrInvalidConfig, sampleRate)
	}
	nyq := sampleRate / 2
	if !(c.LowCutHz > 0 && c.LowCutHz < c.HighCutHz && c.HighCutHz < nyq) {
		return nil, fmt.Errorf("%w: need 0 < lowcut (%v) < highcut (%v) < nyquist (%v)",
			ErrInvalidConfig, c.LowCutHz, c.HighCutHz, nyq)
	}

	hp, err := ButterworthHighPass(c.Order, c.LowCutHz/nyq)
	if err != nil {
		return nil, err
	}
	n50, err := Notch(NotchFreq50/nyq, c.NotchQ)
	if err != nil {
		return nil, err
	}
	n60, err := Notch(NotchFreq60/nyq, c.NotchQ)
	if err != nil {
		return nil, err
	}
	lp, err := ButterworthLowPass(c.Order, c.HighCutHz/nyq)
	if err != nil {
		return nil, err
	}
	return []TF{hp, n50, n60, lp}, nil
}

// MinSamples returns the shortest series the chain accepts at the given
// sample rate. Series at or below this length are rejected rather than
// padded or truncated.
func (c Chain) MinSamples(sampleRate float64) (int, error) {
	stages, err := c.design(sampleRate)
	if err != nil {
		return 0, err
	}
	return minSamples(stages), nil
}

// Apply runs the series through the cascade and returns a new series of the
// same length. The input is never modified.
func (c Chain) Apply(series []float64, sampleRate float64) ([]float64, error) {
	stages, err := c.design(sampleRate)
	if err != nil {
		return nil, err
	}
	if min := minSamples(stages); len(series) <= min {
		return nil, fmt.Errorf("%w: series of %d samples, chain needs more than %d",
			ErrInsufficientData, len(series), min)
	}

	out := series
	for _, tf := range stages {
		out = FilterSeeded(tf, out)
	}
	return out, nil
}

// minSamples mirrors the forward-backward padding rule so both filtering
// paths agree on what "long enough" means.
func minSamples(stages []TF) int {
	widest := 0
	for _, tf := range stages {
		if n := tf.ntaps(); n > widest {
			widest = n
		}
	}
	return 3 * widest
}
