package scope

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"github.com/chewxy/math32"

	"github.com/elata/goeeg/pkg/spectral"
)

// channelColors is the per-channel trace palette, cycled for extra channels.
var channelColors = []color.RGBA{
	{R: 255, G: 165, B: 0, A: 255},   // Orange
	{R: 100, G: 200, B: 255, A: 255}, // Light blue
	{R: 100, G: 255, B: 120, A: 255}, // Green
	{R: 255, G: 100, B: 220, A: 255}, // Magenta
	{R: 255, G: 255, B: 100, A: 255}, // Yellow
	{R: 180, G: 120, B: 255, A: 255}, // Violet
}

// spectrumRenderer renders the spectrum widget.
type spectrumRenderer struct {
	scope *SpectrumWidget

	// Background
	background *canvas.Rectangle

	// Band backdrop rectangles and labels
	bandRects  []*canvas.Rectangle
	bandLabels []*canvas.Text

	// Grid lines
	gridLines []*canvas.Line
	gridTexts []*canvas.Text

	// Objects list for Fyne
	objects []fyne.CanvasObject

	// Track last size to detect changes
	lastSize fyne.Size
}

// MinSize returns the minimum size of the widget.
func (r *spectrumRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 300)
}

// Layout arranges the widget components.
func (r *spectrumRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)

	if r.lastSize.Width != size.Width || r.lastSize.Height != size.Height {
		r.lastSize = size
		// Size changed, redraw with the new dimensions
		r.scope.BaseWidget.Refresh()
	}
}

// Refresh updates the widget display.
func (r *spectrumRenderer) Refresh() {
	r.scope.mu.RLock()
	freqs := r.scope.freqs
	mags := r.scope.mags
	magMax := r.scope.magMax
	freqMax := r.scope.freqMax
	r.scope.mu.RUnlock()

	size := r.scope.Size()
	if size.Width == 0 || size.Height == 0 {
		return
	}

	// Clear old objects (but keep the background)
	r.objects = []fyne.CanvasObject{r.background}
	r.bandRects = r.bandRects[:0]
	r.bandLabels = r.bandLabels[:0]
	r.gridLines = r.gridLines[:0]
	r.gridTexts = r.gridTexts[:0]

	marginLeft := float32(60.0)
	marginRight := float32(20.0)
	marginTop := float32(20.0)
	marginBottom := float32(40.0)

	plotWidth := size.Width - marginLeft - marginRight
	plotHeight := size.Height - marginTop - marginBottom
	plotX := marginLeft
	plotY := marginTop

	r.drawBands(plotX, plotY, plotWidth, plotHeight, freqMax)
	r.drawGrid(plotX, plotY, plotWidth, plotHeight, magMax, freqMax)

	for ch, mag := range mags {
		r.drawTrace(plotX, plotY, plotWidth, plotHeight, freqs, mag, magMax, freqMax, channelColors[ch%len(channelColors)])
	}
}

// drawBands shades the EEG band backdrop and labels each band.
func (r *spectrumRenderer) drawBands(plotX, plotY, plotWidth, plotHeight float32, freqMax float64) {
	for _, band := range spectral.Bands() {
		if band.LowHz >= freqMax {
			break
		}
		high := band.HighHz
		if high > freqMax {
			high = freqMax
		}

		x0 := plotX + float32(band.LowHz/freqMax)*plotWidth
		x1 := plotX + float32(high/freqMax)*plotWidth

		rect := canvas.NewRectangle(band.Color)
		rect.Move(fyne.NewPos(x0, plotY))
		rect.Resize(fyne.NewSize(x1-x0, plotHeight))
		r.bandRects = append(r.bandRects, rect)
		r.objects = append(r.objects, rect)

		label := canvas.NewText(band.Name, color.RGBA{R: 180, G: 180, B: 180, A: 255})
		label.TextSize = 10
		label.Alignment = fyne.TextAlignCenter
		label.Move(fyne.NewPos((x0+x1)/2-20, plotY+2))
		r.bandLabels = append(r.bandLabels, label)
		r.objects = append(r.objects, label)
	}
}

// drawGrid draws the magnitude and frequency grid with axis labels.
func (r *spectrumRenderer) drawGrid(plotX, plotY, plotWidth, plotHeight float32, magMax, freqMax float64) {
	// Horizontal grid lines (magnitude)
	numHLines := 8
	for i := 0; i <= numHLines; i++ {
		y := plotY + float32(i)*plotHeight/float32(numHLines)
		line := canvas.NewLine(color.RGBA{R: 40, G: 40, B: 40, A: 255})
		line.Position1 = fyne.NewPos(plotX, y)
		line.Position2 = fyne.NewPos(plotX+plotWidth, y)
		line.StrokeWidth = 1
		r.gridLines = append(r.gridLines, line)
		r.objects = append(r.objects, line)

		value := magMax - float64(i)*magMax/float64(numHLines)
		text := canvas.NewText(formatMagnitude(value), color.RGBA{R: 150, G: 150, B: 150, A: 255})
		text.TextSize = 10
		text.Alignment = fyne.TextAlignTrailing
		text.Move(fyne.NewPos(plotX-5, y-6))
		r.gridTexts = append(r.gridTexts, text)
		r.objects = append(r.objects, text)
	}

	// Vertical grid lines (frequency)
	numVLines := 9
	for i := 0; i <= numVLines; i++ {
		x := plotX + float32(i)*plotWidth/float32(numVLines)
		line := canvas.NewLine(color.RGBA{R: 40, G: 40, B: 40, A: 255})
		line.Position1 = fyne.NewPos(x, plotY)
		line.Position2 = fyne.NewPos(x, plotY+plotHeight)
		line.StrokeWidth = 1
		r.gridLines = append(r.gridLines, line)
		r.objects = append(r.objects, line)

		freq := float64(i) * freqMax / float64(numVLines)
		text := canvas.NewText(formatFrequency(freq), color.RGBA{R: 150, G: 150, B: 150, A: 255})
		text.TextSize = 10
		text.Alignment = fyne.TextAlignCenter
		text.Move(fyne.NewPos(x-15, plotY+plotHeight+5))
		r.gridTexts = append(r.gridTexts, text)
		r.objects = append(r.objects, text)
	}
}

// drawTrace draws one channel's spectrum as connected line segments.
func (r *spectrumRenderer) drawTrace(plotX, plotY, plotWidth, plotHeight float32, freqs, mag []float64, magMax, freqMax float64, c color.RGBA) {
	points := make([]fyne.Position, 0, len(mag))
	for i, m := range mag {
		if i >= len(freqs) || freqs[i] > freqMax {
			break
		}
		x := plotX + float32(freqs[i]/freqMax)*plotWidth
		y := plotY + plotHeight - float32(m/magMax)*plotHeight
		y = math32.Max(plotY, math32.Min(y, plotY+plotHeight))
		points = append(points, fyne.NewPos(x, y))
	}

	for i := 0; i+1 < len(points); i++ {
		line := canvas.NewLine(c)
		line.Position1 = points[i]
		line.Position2 = points[i+1]
		line.StrokeWidth = 1.5
		r.objects = append(r.objects, line)
	}
}

// Objects returns all canvas objects for rendering.
func (r *spectrumRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

// Destroy cleans up resources.
func (r *spectrumRenderer) Destroy() {
	// Cleanup handled by Fyne
}

// Helper functions for formatting

// formatMagnitude renders a magnitude in engineering units. EEG magnitudes
// sit in the microvolt range, so the label scales to uV when small.
func formatMagnitude(v float64) string {
	f := float32(v)
	if f != 0 && math32.Abs(f) < 1e-3 {
		return formatFixed(f*1e6, 2) + "uV"
	}
	return formatFixed(f, 3) + "V"
}

func formatFrequency(hz float64) string {
	return formatFixed(float32(hz), 1) + "Hz"
}

// formatFixed renders a float with a fixed number of decimals without
// pulling in fmt for the render path.
func formatFixed(v float32, decimals int) string {
	str := ""
	if v < 0 {
		str = "-"
		v = -v
	}
	intPart := int64(v)
	str += formatInt(intPart)
	if decimals > 0 {
		scale := math32.Pow(10, float32(decimals))
		frac := int64(math32.Round((v - float32(intPart)) * scale))
		fracStr := formatInt(frac)
		for len(fracStr) < decimals {
			fracStr = "0" + fracStr
		}
		str += "." + fracStr
	}
	return str
}

func formatInt(v int64) string {
	if v == 0 {
		return "0"
	}
	str := ""
	neg := v < 0
	if neg {
		v = -v
	}
	for v > 0 {
		str = string(rune('0'+v%10)) + str
		v /= 10
	}
	if neg {
		str = "-" + str
	}
	return str
}
