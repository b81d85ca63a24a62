// Package timefreq computes time-frequency views of a single EEG channel:
// short-time spectrograms and continuous wavelet scalograms. Callers iterate
// channels; every function is deterministic for identical inputs.
package timefreq

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	dspspectral "github.com/mjibson/go-dsp/spectral"
	"github.com/mjibson/go-dsp/window"
)

// ErrInvalidInput is returned for empty signals, non-positive sample rates,
// or unusable frequency ranges.
var ErrInvalidInput = errors.New("invalid time-frequency input")

// Epsilon is added to spectrogram power before the dB conversion so silence
// maps to a finite floor of 10*log10(Epsilon) instead of -Inf.
const Epsilon = 1e-10

// DefaultSegmentLength is the spectrogram segment size when the caller passes
// a non-positive one.
const DefaultSegmentLength = 256

// STFTSpectrogram computes a short-time power spectrogram with
// Hamming-windowed segments and 50% overlap.
//
// freqs covers 0..min(highCutHz, Nyquist); times holds each segment's centre
// in seconds; powerDB is indexed [frequency][time] and holds
// 10*log10(P + Epsilon) with P density-scaled like the Welch estimate.
func STFTSpectrogram(signal []float64, sampleRate, highCutHz float64, segmentLength int) (freqs, times []float64, powerDB [][]float64, err error) {
	if len(signal) == 0 {
		return nil, nil, nil, fmt.Errorf("%w: empty signal", ErrInvalidInput)
	}
	if sampleRate <= 0 {
		return nil, nil, nil, fmt.Errorf("%w: sample rate %v", ErrInvalidInput, sampleRate)
	}

	seg := segmentLength
	if seg <= 0 {
		seg = DefaultSegmentLength
	}
	if seg > len(signal) {
		seg = len(signal)
	}
	overlap := seg / 2

	nyq := sampleRate / 2
	if highCutHz <= 0 || highCutHz > nyq {
		highCutHz = nyq
	}

	win := window.Hamming(seg)
	var winNorm float64
	for _, w := range win {
		winNorm += w * w
	}

	// One-sided bins up to the display cutoff.
	nbins := seg/2 + 1
	keep := 0
	for k := 0; k < nbins; k++ {
		if float64(k)*sampleRate/float64(seg) > highCutHz {
			break
		}
		keep++
	}
	freqs = make([]float64, keep)
	for k := range freqs {
		freqs[k] = float64(k) * sampleRate / float64(seg)
	}

	segments := dspspectral.Segment(signal, seg, overlap)
	times = make([]float64, len(segments))
	powerDB = make([][]float64, keep)
	for k := range powerDB {
		powerDB[k] = make([]float64, len(segments))
	}

	stride := seg - overlap
	buf := make([]float64, seg)
	for si, s := range segments {
		times[si] = (float64(si*stride) + float64(seg)/2) / sampleRate

		copy(buf, s)
		for i := range buf {
			buf[i] *= win[i]
		}
		spec := fft.FFTReal(buf)

		for k := 0; k < keep; k++ {
			mag := cmplx.Abs(spec[k])
			p := mag * mag / (winNorm * sampleRate)
			if k != 0 && !(seg%2 == 0 && k == seg/2) {
				p *= 2 // one-sided spectrum, interior bins carry both halves
			}
			powerDB[k][si] = 10 * math.Log10(p+Epsilon)
		}
	}
	return freqs, times, powerDB, nil
}
