package spectral

import (
	dspspectral "github.com/mjibson/go-dsp/spectral"
	"github.com/mjibson/go-dsp/window"
)

// MaxSegmentLength caps Welch segments regardless of what the caller asks for.
const MaxSegmentLength = 4096

// WelchPSD estimates the power spectral density of a single-channel series by
// Welch's method: Hamming-windowed segments with 50% overlap, averaged
// periodograms, density scaling (V²/Hz).
//
// segmentLength is capped to MaxSegmentLength and to the signal length;
// values <= 0 select MaxSegmentLength. The overlap is half the effective
// segment, which also caps it to half the signal length.
func WelchPSD(signal []float64, sampleRate float64, segmentLength int) (freqs, psd []float64, err error) {
	if err := checkInput(signal, sampleRate); err != nil {
		return nil, nil, err
	}

	seg := segmentLength
	if seg <= 0 || seg > MaxSegmentLength {
		seg = MaxSegmentLength
	}
	if seg > len(signal) {
		seg = len(signal)
	}

	psd, freqs = dspspectral.Pwelch(signal, sampleRate, &dspspectral.PwelchOptions{
		NFFT:     seg,
		Noverlap: seg / 2,
		Window:   window.Hamming,
	})
	return freqs, psd, nil
}
