// Package scope provides a Fyne widget that overlays per-channel EEG spectra
// on a shaded band backdrop (delta through gamma).
package scope

import (
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/elata/goeeg/pkg/config"
	"github.com/elata/goeeg/pkg/spectral"
)

// SpectrumWidget is a custom Fyne widget that displays per-channel spectra
// overlaid on the EEG band backdrop.
type SpectrumWidget struct {
	widget.BaseWidget

	cfg *config.Config

	// Data (protected by mu)
	mu      sync.RWMutex
	freqs   []float64
	mags    [][]float64 // one magnitude series per channel, matching freqs

	// Auto-scaling
	magMax  float64
	freqMax float64
}

// New creates a new SpectrumWidget instance.
func New(cfg *config.Config) *SpectrumWidget {
	s := &SpectrumWidget{
		cfg:     cfg,
		freqs:   make([]float64, 0),
		mags:    make([][]float64, 0),
		freqMax: cfg.Filter.HighCutHz,
		magMax:  1,
	}
	s.ExtendBaseWidget(s)
	// Trigger initial refresh to display the empty backdrop
	s.Refresh()
	return s
}

// UpdateData replaces the displayed spectra with the latest per-channel set.
// This should be called from the monitor callback using fyne.Do().
func (s *SpectrumWidget) UpdateData(spectra []spectral.Spectrum) {
	s.mu.Lock()

	s.freqs = s.freqs[:0]
	s.mags = s.mags[:0]
	if len(spectra) > 0 {
		s.freqs = append(s.freqs, spectra[0].Freqs...)
		for _, spec := range spectra {
			s.mags = append(s.mags, spec.Magnitude())
		}
	}

	s.updateAutoScale()

	s.mu.Unlock()

	// Refresh the widget (must be outside the lock to avoid deadlock)
	s.Refresh()
}

// updateAutoScale recomputes the vertical range from the displayed
// magnitudes, restricted to the visible frequency span.
func (s *SpectrumWidget) updateAutoScale() {
	s.freqMax = s.cfg.Filter.HighCutHz
	if s.freqMax <= 0 && len(s.freqs) > 0 {
		s.freqMax = s.freqs[len(s.freqs)-1]
	}

	s.magMax = 0
	for _, mag := range s.mags {
		for i, m := range mag {
			if i < len(s.freqs) && s.freqs[i] > s.freqMax {
				break
			}
			if m > s.magMax {
				s.magMax = m
			}
		}
	}
	if s.magMax == 0 {
		s.magMax = 1
	}
	// 10% headroom above the tallest peak
	s.magMax *= 1.1
}

// CreateRenderer creates the widget renderer.
func (s *SpectrumWidget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.RGBA{R: 20, G: 20, B: 20, A: 255}) // Dark background
	return &spectrumRenderer{
		scope:      s,
		background: background,
		objects:    []fyne.CanvasObject{background},
		lastSize:   fyne.Size{Width: 0, Height: 0},
	}
}
