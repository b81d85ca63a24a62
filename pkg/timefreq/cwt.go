package timefreq

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/dsputils"
	"github.com/mjibson/go-dsp/fft"
)

// morletOmega is the centre angular frequency of the complex Morlet wavelet.
// Pinned to pi so that the scale carrying frequency f is exactly
// sampleRate / (2 * f).
const morletOmega = math.Pi

// ScaleForFrequency returns the wavelet scale (in samples) that concentrates
// on the given frequency.
func ScaleForFrequency(freqHz, sampleRate float64) float64 {
	return sampleRate / (2 * freqHz)
}

// CWTScalogram computes a continuous wavelet transform of a single channel
// over numFreqs linearly spaced frequencies in [freqMin, freqMax].
//
// coeffs is indexed [frequency][sample] and has one row per returned
// frequency, each the same length as the signal ("same"-mode convolution
// with a complex Morlet kernel of length min(10*scale, len(signal))).
// Magnitudes of coeffs form the scalogram.
func CWTScalogram(signal []float64, sampleRate, freqMin, freqMax float64, numFreqs int) (coeffs [][]complex128, freqs []float64, err error) {
	n := len(signal)
	if n == 0 {
		return nil, nil, fmt.Errorf("%w: empty signal", ErrInvalidInput)
	}
	if sampleRate <= 0 {
		return nil, nil, fmt.Errorf("%w: sample rate %v", ErrInvalidInput, sampleRate)
	}
	if numFreqs < 1 {
		return nil, nil, fmt.Errorf("%w: need at least one frequency, got %d", ErrInvalidInput, numFreqs)
	}
	if freqMin <= 0 || freqMin > freqMax || freqMax > sampleRate/2 {
		return nil, nil, fmt.Errorf("%w: frequency range [%v, %v] outside (0, %v]",
			ErrInvalidInput, freqMin, freqMax, sampleRate/2)
	}

	freqs = make([]float64, numFreqs)
	if numFreqs == 1 {
		freqs[0] = freqMin
	} else {
		step := (freqMax - freqMin) / float64(numFreqs-1)
		for i := range freqs {
			freqs[i] = freqMin + float64(i)*step
		}
	}

	// All convolutions share one padded length so the signal is transformed
	// once. The widest kernel belongs to the lowest frequency.
	maxKernel := kernelLength(ScaleForFrequency(freqs[0], sampleRate), n)
	padded := dsputils.NextPowerOf2(n + maxKernel - 1)

	data := make([]complex128, padded)
	for i, v := range signal {
		data[i] = complex(v, 0)
	}
	dataF := fft.FFT(data)

	coeffs = make([][]complex128, numFreqs)
	for fi, f := range freqs {
		scale := ScaleForFrequency(f, sampleRate)
		m := kernelLength(scale, n)

		kern := make([]complex128, padded)
		for j := 0; j < m; j++ {
			kern[j] = morlet(float64(j)-float64(m-1)/2, scale)
		}
		kernF := fft.FFT(kern)

		prod := make([]complex128, padded)
		for i := range prod {
			prod[i] = dataF[i] * kernF[i]
		}
		conv := fft.IFFT(prod)

		row := make([]complex128, n)
		copy(row, conv[(m-1)/2:(m-1)/2+n])
		coeffs[fi] = row
	}
	return coeffs, freqs, nil
}

// Magnitudes converts complex CWT coefficients to the scalogram magnitude map.
func Magnitudes(coeffs [][]complex128) [][]float64 {
	out := make([][]float64, len(coeffs))
	for i, row := range coeffs {
		out[i] = make([]float64, len(row))
		for j, c := range row {
			out[i][j] = cmplx.Abs(c)
		}
	}
	return out
}

// kernelLength follows the min(10*scale, n) support rule.
func kernelLength(scale float64, n int) int {
	m := int(10 * scale)
	if m > n {
		m = n
	}
	if m < 1 {
		m = 1
	}
	return m
}

// morlet evaluates the complex Morlet wavelet at offset t (in samples) for
// the given scale, including the 1/sqrt(scale) energy normalization.
func morlet(t, scale float64) complex128 {
	x := t / scale
	env := math.Exp(-0.5*x*x) * math.Pow(math.Pi, -0.25) * math.Sqrt(1/scale)
	return cmplx.Exp(complex(0, morletOmega*x)) * complex(env, 0)
}
