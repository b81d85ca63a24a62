package filter

import "fmt"

// Filter runs x through the transfer function as a Direct Form II Transposed
// cascade. zi is the initial delay-line state (length ntaps-1); nil starts
// from rest. It returns the filtered series and the final state, so a caller
// can continue the same filter across consecutive series.
func Filter(tf TF, x, zi []float64) (y, zf []float64) {
	n := tf.ntaps()
	b := padded(tf.B, n)
	a := padded(tf.A, n)

	y = make([]float64, len(x))
	if n < 2 {
		for i, xn := range x {
			y[i] = b[0] * xn
		}
		return y, nil
	}

	z := make([]float64, n-1)
	if zi != nil {
		copy(z, zi)
	}

	for i, xn := range x {
		yn := b[0]*xn + z[0]
		for j := 0; j < n-2; j++ {
			z[j] = b[j+1]*xn + z[j+1] - a[j+1]*yn
		}
		z[n-2] = b[n-1]*xn - a[n-1]*yn
		y[i] = yn
	}
	return y, z
}

// SteadyState returns the delay-line state the filter settles into under a
// unit step input. Scaling this state by the first sample of a series makes
// the filter behave as if that value had been applied forever, which removes
// the startup transient.
//
// The solve divides by the sum of the denominator coefficients. For high-pass
// designs with cutoffs far below Nyquist that sum approaches zero, so the
// returned state settles the filter only to within a small residual.
func SteadyState(tf TF) []float64 {
	n := tf.ntaps()
	if n < 2 {
		return nil
	}
	b := padded(tf.B, n)
	a := padded(tf.A, n)

	var bSum, aSum float64
	for _, v := range a {
		aSum += v
	}
	for i := 1; i < n; i++ {
		bSum += b[i] - a[i]*b[0]
	}

	zi := make([]float64, n-1)
	zi[0] = bSum / aSum

	run := 1.0
	acc := 0.0
	for k := 1; k < n-1; k++ {
		run += a[k]
		acc += b[k] - a[k]*b[0]
		zi[k] = run*zi[0] - acc
	}
	return zi
}

// FilterSeeded filters x with the delay line pre-loaded to the steady state
// for x[0]. A DC-unity filter leaves a constant series untouched; a high-pass
// maps it to its near-zero DC response, in both cases without the transient a
// zero state would produce. The SteadyState conditioning caveat applies: at
// sub-hertz cutoffs the DC cancellation is approximate, not exact. The state
// is local to the call.
func FilterSeeded(tf TF, x []float64) []float64 {
	if len(x) == 0 {
		return nil
	}
	zi := SteadyState(tf)
	for i := range zi {
		zi[i] *= x[0]
	}
	y, _ := Filter(tf, x, zi)
	return y
}

// FiltFilt applies the filter forward and then backward, cancelling phase
// distortion at the cost of causality. The series is extended on both ends
// with an odd reflection of 3*ntaps samples before filtering, and each pass
// is seeded with the steady state for its first sample.
func FiltFilt(tf TF, x []float64) ([]float64, error) {
	n := len(x)
	edge := 3 * tf.ntaps()
	if n <= edge {
		return nil, fmt.Errorf("%w: series of %d samples, need more than %d", ErrInsufficientData, n, edge)
	}

	ext := make([]float64, 0, n+2*edge)
	for i := edge; i > 0; i-- {
		ext = append(ext, 2*x[0]-x[i])
	}
	ext = append(ext, x...)
	for i := 0; i < edge; i++ {
		ext = append(ext, 2*x[n-1]-x[n-2-i])
	}

	zi := SteadyState(tf)
	fwd := seededPass(tf, ext, zi)
	reverse(fwd)
	bwd := seededPass(tf, fwd, zi)
	reverse(bwd)

	return bwd[edge : edge+n], nil
}

func seededPass(tf TF, x, zi []float64) []float64 {
	z := make([]float64, len(zi))
	for i := range z {
		z[i] = zi[i] * x[0]
	}
	y, _ := Filter(tf, x, z)
	return y
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

func padded(c []float64, n int) []float64 {
	if len(c) == n {
		return c
	}
	out := make([]float64, n)
	copy(out, c)
	return out
}
