// Package filter provides the digital filters used to condition raw EEG
// voltage series: Butterworth high/low/band-pass design, mains notch design,
// causal filtering with explicit state, steady-state initialization, and
// zero-phase (forward-backward) filtering.
//
// Frequencies handed to the design functions are normalized to the Nyquist
// frequency (1.0 == sampleRate/2), matching the convention the chain and
// zero-phase helpers convert to internally.
package filter

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

var (
	// ErrInvalidConfig is returned for unusable filter parameters: cutoff
	// ordering violations, cutoffs at or beyond Nyquist, non-positive order
	// or quality factor.
	ErrInvalidConfig = errors.New("invalid filter configuration")
	// ErrInsufficientData is returned when a series is too short for the
	// requested filter order.
	ErrInsufficientData = errors.New("insufficient data for filter")
)

// TF is a digital IIR filter expressed as a transfer function with numerator
// B and denominator A, A[0] normalized to 1.
type TF struct {
	B []float64
	A []float64
}

// ntaps returns the length of the longer coefficient vector.
func (tf TF) ntaps() int {
	if len(tf.B) > len(tf.A) {
		return len(tf.B)
	}
	return len(tf.A)
}

// Magnitude evaluates |H(e^jw)| at the normalized frequency wn (1.0 == Nyquist).
func (tf TF) Magnitude(wn float64) float64 {
	w := wn * math.Pi
	z := cmplx.Exp(complex(0, -w))
	var num, den complex128
	zk := complex(1, 0)
	for _, b := range tf.B {
		num += complex(b, 0) * zk
		zk *= z
	}
	zk = complex(1, 0)
	for _, a := range tf.A {
		den += complex(a, 0) * zk
		zk *= z
	}
	return cmplx.Abs(num / den)
}

// ButterworthLowPass designs an order-N Butterworth low-pass filter with the
// given normalized cutoff.
func ButterworthLowPass(order int, cutoff float64) (TF, error) {
	if err := checkOrder(order); err != nil {
		return TF{}, err
	}
	if err := checkFreq(cutoff); err != nil {
		return TF{}, err
	}
	warped := prewarp(cutoff)
	p := prototypePoles(order)
	for i := range p {
		p[i] *= complex(warped, 0)
	}
	k := math.Pow(warped, float64(order))
	return bilinearTF(nil, p, k), nil
}

// ButterworthHighPass designs an order-N Butterworth high-pass filter with the
// given normalized cutoff.
func ButterworthHighPass(order int, cutoff float64) (TF, error) {
	if err := checkOrder(order); err != nil {
		return TF{}, err
	}
	if err := checkFreq(cutoff); err != nil {
		return TF{}, err
	}
	warped := prewarp(cutoff)
	proto := prototypePoles(order)

	p := make([]complex128, len(proto))
	prod := complex(1, 0)
	for i, pp := range proto {
		p[i] = complex(warped, 0) / pp
		prod *= -pp
	}
	// High-pass transform moves all zeros to the origin; the prototype has
	// none, so the gain adjustment reduces to 1/prod(-p).
	z := make([]complex128, order)
	k := real(complex(1, 0) / prod)
	return bilinearTF(z, p, k), nil
}

// ButterworthBandPass designs an order-N Butterworth band-pass filter between
// the given normalized edges. The resulting transfer function has order 2N.
func ButterworthBandPass(order int, low, high float64) (TF, error) {
	if err := checkOrder(order); err != nil {
		return TF{}, err
	}
	if err := checkFreq(low); err != nil {
		return TF{}, err
	}
	if err := checkFreq(high); err != nil {
		return TF{}, err
	}
	if low >= high {
		return TF{}, fmt.Errorf("%w: band edges out of order (%v >= %v)", ErrInvalidConfig, low, high)
	}
	w1 := prewarp(low)
	w2 := prewarp(high)
	bw := w2 - w1
	wo := math.Sqrt(w1 * w2)

	proto := prototypePoles(order)
	p := make([]complex128, 0, 2*order)
	for _, pp := range proto {
		pl := pp * complex(bw/2, 0)
		d := cmplx.Sqrt(pl*pl - complex(wo*wo, 0))
		p = append(p, pl+d, pl-d)
	}
	z := make([]complex128, order)
	k := math.Pow(bw, float64(order))
	return bilinearTF(z, p, k), nil
}

// Notch designs a second-order narrowband reject filter at the normalized
// frequency w0 with quality factor q. The design keeps unit gain at DC and at
// Nyquist with a -3 dB bandwidth of w0/q centered on the rejected frequency.
func Notch(w0, q float64) (TF, error) {
	if err := checkFreq(w0); err != nil {
		return TF{}, err
	}
	if q <= 0 {
		return TF{}, fmt.Errorf("%w: quality factor must be positive, got %v", ErrInvalidConfig, q)
	}
	w := w0 * math.Pi
	beta := math.Tan(w / (2 * q))
	gain := 1 / (1 + beta)
	cosw := math.Cos(w)
	return TF{
		B: []float64{gain, -2 * gain * cosw, gain},
		A: []float64{1, -2 * gain * cosw, 2*gain - 1},
	}, nil
}

func checkOrder(order int) error {
	if order < 1 {
		return fmt.Errorf("%w: order must be at least 1, got %d", ErrInvalidConfig, order)
	}
	return nil
}

func checkFreq(wn float64) error {
	if wn <= 0 || wn >= 1 {
		return fmt.Errorf("%w: normalized frequency must lie in (0, 1), got %v", ErrInvalidConfig, wn)
	}
	return nil
}

// prewarp maps a normalized digital frequency onto the analog axis so the
// bilinear transform lands the cutoff exactly.
func prewarp(wn float64) float64 {
	const fs = 2.0
	return 2 * fs * math.Tan(math.Pi*wn/fs)
}

// prototypePoles returns the poles of the normalized analog Butterworth
// prototype, evenly spaced on the left half of the unit circle.
func prototypePoles(order int) []complex128 {
	p := make([]complex128, order)
	for i := 0; i < order; i++ {
		m := float64(-order + 1 + 2*i)
		theta := math.Pi * m / float64(2*order)
		p[i] = -cmplx.Exp(complex(0, theta))
	}
	return p
}

// bilinearTF maps an analog zero/pole/gain design into the digital domain and
// expands it to transfer-function form.
func bilinearTF(z, p []complex128, k float64) TF {
	const fs2 = 4.0 // 2 * fs with fs = 2 (prewarp convention)

	degree := len(p) - len(z)
	zd := make([]complex128, 0, len(p))
	pd := make([]complex128, len(p))

	num := complex(1, 0)
	den := complex(1, 0)
	for _, zz := range z {
		zd = append(zd, (complex(fs2, 0)+zz)/(complex(fs2, 0)-zz))
		num *= complex(fs2, 0) - zz
	}
	for i, pp := range p {
		pd[i] = (complex(fs2, 0) + pp) / (complex(fs2, 0) - pp)
		den *= complex(fs2, 0) - pp
	}
	// Zeros at analog infinity map to z = -1.
	for i := 0; i < degree; i++ {
		zd = append(zd, complex(-1, 0))
	}
	kd := k * real(num/den)

	return TF{
		B: polyFromRoots(zd, kd),
		A: polyFromRoots(pd, 1),
	}
}

// polyFromRoots expands prod(x - r) * k into real coefficients, highest order
// first. Roots come in conjugate pairs, so imaginary parts cancel.
func polyFromRoots(roots []complex128, k float64) []float64 {
	coeffs := make([]complex128, 1, len(roots)+1)
	coeffs[0] = 1
	for _, r := range roots {
		next := make([]complex128, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] += c
			next[i+1] -= c * r
		}
		coeffs = next
	}
	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		out[i] = real(c) * k
	}
	return out
}
