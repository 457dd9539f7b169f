// Package fft implements the offset search using a plain (non-whitened)
// FFT cross-correlation: the signals are zero-meaned, correlated in the
// frequency domain, and the lag with the strongest correlation inside
// the requested range wins.
//
// Compared to the gccphat package this keeps the magnitude information,
// which makes it a closer frequency-domain equivalent of the exhaustive
// time-domain correlation scan, at O(n log n) cost.
package fft

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/brettbuddin/fourier"
)

type Searcher struct{}

// NewSearcher initializes a new FFT cross-correlation offset searcher.
func NewSearcher() *Searcher {
	return &Searcher{}
}

// FindBestOffset returns the offset in [minOffset, maxOffset) with the
// strongest cross-correlation between the zero-meaned signals. The score
// is the Pearson-style normalized correlation at the winning lag, in
// [-1, 1].
//
// lookaheadSamples is accepted for interface compatibility and ignored:
// the transform already consumes the signals whole, and callers bound
// the cost with a window instead.
func (s *Searcher) FindBestOffset(
	ctx context.Context,
	reference []float32,
	delayed []float32,
	minOffset int,
	maxOffset int,
	lookaheadSamples int,
) (int, float64, error) {
	if minOffset >= maxOffset {
		return 0, 0, fmt.Errorf("the offset range [%d, %d) is empty", minOffset, maxOffset)
	}
	if len(reference) == 0 || len(delayed) == 0 {
		return 0, 0, fmt.Errorf("expected non-empty signals, got lengths %d and %d", len(reference), len(delayed))
	}

	select {
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	default:
	}

	ref := zeroMean(reference)
	del := zeroMean(delayed)

	// Radix-2 transform: the size is the next power of two of
	// (n1 + n2 - 1) to avoid circular convolution artifacts.
	n := 1
	for n < len(ref)+len(del)-1 {
		n <<= 1
	}

	fref := make([]complex128, n)
	fdel := make([]complex128, n)
	for i, v := range ref {
		fref[i] = complex(v, 0)
	}
	for i, v := range del {
		fdel[i] = complex(v, 0)
	}

	if err := fourier.Forward(fref); err != nil {
		return 0, 0, fmt.Errorf("unable to transform the reference signal: %w", err)
	}
	if err := fourier.Forward(fdel); err != nil {
		return 0, 0, fmt.Errorf("unable to transform the delayed signal: %w", err)
	}

	for i := range fdel {
		fdel[i] *= cmplx.Conj(fref[i])
	}
	if err := fourier.Inverse(fdel); err != nil {
		return 0, 0, fmt.Errorf("unable to transform the cross-power spectrum back: %w", err)
	}

	// A positive lag of the delayed signal lands on a positive index,
	// a negative one wraps around to the end of the buffer. Only the
	// relative peak strength matters here, so the transform's scaling
	// can be ignored.
	bestOffset, bestVal, found := 0, 0.0, false
	for offset := minOffset; offset < maxOffset; offset++ {
		if offset <= -n || offset >= n {
			continue
		}
		idx := offset
		if idx < 0 {
			idx += n
		}
		val := real(fdel[idx])
		if !found || val > bestVal {
			bestOffset, bestVal, found = offset, val, true
		}
	}
	if !found {
		return 0, 0, fmt.Errorf("the offset range [%d, %d) lies outside the transform of size %d", minOffset, maxOffset, n)
	}

	return bestOffset, correlationAt(ref, del, bestOffset), nil
}

func zeroMean(signal []float32) []float64 {
	var mean float64
	for _, v := range signal {
		mean += float64(v)
	}
	mean /= float64(len(signal))

	out := make([]float64, len(signal))
	for i, v := range signal {
		out[i] = float64(v) - mean
	}
	return out
}

// correlationAt computes the normalized correlation of the (already
// zero-meaned) signals at the given lag, independently of the
// transform's scaling.
func correlationAt(reference, delayed []float64, offset int) float64 {
	x, y := delayed, reference
	if offset >= 0 {
		if offset >= len(delayed) {
			return 0
		}
		x = delayed[offset:]
	} else {
		if -offset >= len(reference) {
			return 0
		}
		y = reference[-offset:]
	}

	n := min(len(x), len(y))
	var dot, xx, yy float64
	for i := 0; i < n; i++ {
		dot += x[i] * y[i]
		xx += x[i] * x[i]
		yy += y[i] * y[i]
	}
	denom := math.Sqrt(xx * yy)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
