package spectral

import "image/color"

// Band is a named EEG frequency range. The table is used for annotation and
// band-power summaries only; it drives no filtering.
type Band struct {
	Name   string
	LowHz  float64
	HighHz float64
	Color  color.NRGBA // Backdrop shade used by the overlay display
}

// Bands returns the standard EEG band table, ascending in frequency.
func Bands() []Band {
	return []Band{
		{Name: "Delta", LowHz: 0.5, HighHz: 4, Color: color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0x33}},
		{Name: "Theta", LowHz: 4, HighHz: 8, Color: color.NRGBA{R: 0x80, G: 0x00, B: 0x80, A: 0x33}},
		{Name: "Alpha", LowHz: 8, HighHz: 13, Color: color.NRGBA{R: 0x00, G: 0x80, B: 0x00, A: 0x33}},
		{Name: "Beta", LowHz: 13, HighHz: 30, Color: color.NRGBA{R: 0xff, G: 0xa5, B: 0x00, A: 0x33}},
		{Name: "Gamma", LowHz: 30, HighHz: 45, Color: color.NRGBA{R: 0xff, G: 0x00, B: 0x00, A: 0x33}},
	}
}

// BandPower integrates a PSD over the band: the sum of density bins inside
// [LowHz, HighHz) times the bin width. freqs must be uniformly spaced and
// ascending, as produced by WelchPSD.
func BandPower(freqs, psd []float64, b Band) float64 {
	if len(freqs) < 2 || len(freqs) != len(psd) {
		return 0
	}
	df := freqs[1] - freqs[0]
	var total float64
	for i, f := range freqs {
		if f >= b.LowHz && f < b.HighHz {
			total += psd[i] * df
		}
	}
	return total
}
