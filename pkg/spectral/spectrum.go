// Package spectral computes frequency-domain views of calibrated EEG series:
// one-sided FFT spectra, Welch power spectral density estimates, and the EEG
// band table used to annotate them. All functions are pure and re-entrant.
package spectral

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// ErrInvalidInput is returned for empty signals or non-positive sample rates.
var ErrInvalidInput = errors.New("invalid spectral input")

// Spectrum is a one-sided spectrum restricted to strictly positive
// frequencies: DC and the mirrored negative half are excluded.
type Spectrum struct {
	Freqs  []float64    // Ascending, strictly positive (Hz)
	Values []complex128 // Raw FFT values at Freqs
	Power  []float64    // |Values[i]|^2 / N
	N      int          // Length of the analysed series
}

// FFTSpectrum computes the one-sided spectrum of a single-channel series.
// Power is |X[k]|^2/N with N the series length, so a unit sinusoid on an
// exact bin carries a peak of N/4.
func FFTSpectrum(signal []float64, sampleRate float64) (Spectrum, error) {
	if err := checkInput(signal, sampleRate); err != nil {
		return Spectrum{}, err
	}

	n := len(signal)
	full := fft.FFTReal(signal)

	// Positive frequencies only: k = 1 .. ceil(n/2)-1. For even n the k = n/2
	// bin is the (negative-labelled) Nyquist bin and is excluded too.
	half := (n - 1) / 2
	s := Spectrum{
		Freqs:  make([]float64, half),
		Values: make([]complex128, half),
		Power:  make([]float64, half),
		N:      n,
	}
	for k := 1; k <= half; k++ {
		s.Freqs[k-1] = float64(k) * sampleRate / float64(n)
		s.Values[k-1] = full[k]
		mag := cmplx.Abs(full[k])
		s.Power[k-1] = mag * mag / float64(n)
	}
	return s, nil
}

// Magnitude returns |Values|/N, the scaling used for overlay display.
func (s Spectrum) Magnitude() []float64 {
	out := make([]float64, len(s.Values))
	for i, v := range s.Values {
		out[i] = cmplx.Abs(v) / float64(s.N)
	}
	return out
}

// Peak returns the frequency and power of the strongest bin.
func (s Spectrum) Peak() (freqHz, power float64) {
	if len(s.Power) == 0 {
		return 0, 0
	}
	i := floats.MaxIdx(s.Power)
	return s.Freqs[i], s.Power[i]
}

func checkInput(signal []float64, sampleRate float64) error {
	if len(signal) == 0 {
		return fmt.Errorf("%w: empty signal", ErrInvalidInput)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %v", ErrInvalidInput, sampleRate)
	}
	return nil
}
