package filter

import "fmt"

// ZeroPhaseLowPass low-pass filters the series forward and backward so the
// result has no phase distortion. Exploratory use only: the output is not
// causal and must not be fed into anything that assumes streaming order.
func ZeroPhaseLowPass(series []float64, sampleRate, cutoffHz float64, order int) ([]float64, error) {
	nyq, err := nyquist(sampleRate)
	if err != nil {
		return nil, err
	}
	if cutoffHz <= 0 || cutoffHz >= nyq {
		return nil, fmt.Errorf("%w: cutoff %v Hz outside (0, %v)", ErrInvalidConfig, cutoffHz, nyq)
	}
	tf, err := ButterworthLowPass(order, cutoffHz/nyq)
	if err != nil {
		return nil, err
	}
	return FiltFilt(tf, series)
}

// ZeroPhaseBandPass band-pass filters the series forward and backward between
// lowCutHz and highCutHz with no phase distortion.
func ZeroPhaseBandPass(series []float64, sampleRate, lowCutHz, highCutHz float64, order int) ([]float64, error) {
	nyq, err := nyquist(sampleRate)
	if err != nil {
		return nil, err
	}
	if !(lowCutHz > 0 && lowCutHz < highCutHz && highCutHz < nyq) {
		return nil, fmt.Errorf("%w: need 0 < lowcut (%v) < highcut (%v) < nyquist (%v)",
			ErrInvalidConfig, lowCutHz, highCutHz, nyq)
	}
	tf, err := ButterworthBandPass(order, lowCutHz/nyq, highCutHz/nyq)
	if err != nil {
		return nil, err
	}
	return FiltFilt(tf, series)
}

func nyquist(sampleRate float64) (float64, error) {
	if sampleRate <= 0 {
		return 0, fmt.Errorf("%w: sample rate must be positive, got %v", ErrInvalidConfig, sampleRate)
	}
	return sampleRate / 2, nil
}
