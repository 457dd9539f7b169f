// Package gccphat implements the offset search using Generalized
// Cross-Correlation with Phase Transform (GCC-PHAT).
//
// The candidate offsets are scored in the frequency domain: the
// cross-power spectrum of the two signals is whitened (only the phase is
// kept), transformed back to the time domain, and the lag with the
// strongest peak inside the requested range wins. The whitening makes
// the search robust against volume differences and certain kinds of
// noise, since only the phase information carries the delay.
package gccphat

import (
	"context"
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// whiteningThresholdRatio bounds which bins are whitened: bins whose
// cross-power magnitude is more than 60dB below the strongest bin carry
// noise rather than phase and are zeroed instead.
const whiteningThresholdRatio = 0.001

type Searcher struct {
	// SampleRate is required only when band-limiting is requested.
	SampleRate float64
	// MinFreq and MaxFreq limit which frequency band takes part in the
	// correlation, in Hz. Zero values disable the respective limit.
	MinFreq float64
	MaxFreq float64
}

// NewSearcher initializes a new GCC-PHAT offset searcher. The sample
// rate is mandatory if (and only if) band limits are requested.
func NewSearcher(sampleRate, minFreq, maxFreq float64) (*Searcher, error) {
	if (minFreq > 0 || maxFreq > 0) && sampleRate <= 0 {
		return nil, fmt.Errorf("a sample rate is mandatory for band limiting: got %v", sampleRate)
	}
	if minFreq < 0 || maxFreq < 0 {
		return nil, fmt.Errorf("band limits must not be negative: got %v..%v", minFreq, maxFreq)
	}
	if maxFreq > 0 && minFreq > maxFreq {
		return nil, fmt.Errorf("the frequency band %v..%v is empty", minFreq, maxFreq)
	}
	return &Searcher{
		SampleRate: sampleRate,
		MinFreq:    minFreq,
		MaxFreq:    maxFreq,
	}, nil
}

// FindBestOffset returns the offset in [minOffset, maxOffset) with the
// strongest whitened cross-correlation peak. The score is a confidence
// in (0..1]: the peak magnitude normalized by the amount of bins that
// took part (1.0 means a perfect phase match).
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

	// The FFT size is the next power of two of (n1 + n2 - 1) to avoid
	// circular convolution artifacts.
	n1 := len(reference)
	n2 := len(delayed)
	n := 1
	for n < n1+n2-1 {
		n <<= 1
	}

	fref := make([]complex128, n)
	fdel := make([]complex128, n)
	for i, v := range reference {
		fref[i] = complex(float64(v), 0)
	}
	for i, v := range delayed {
		fdel[i] = complex(float64(v), 0)
	}

	ffref := fft.FFT(fref)
	ffdel := fft.FFT(fdel)

	binMin := 0
	binMax := n / 2
	if s.MinFreq > 0 {
		binMin = int(s.MinFreq * float64(n) / s.SampleRate)
	}
	if s.MaxFreq > 0 && s.MaxFreq < s.SampleRate/2 {
		binMax = int(s.MaxFreq * float64(n) / s.SampleRate)
	}

	// Cross-power spectrum with the Phase Transform: each bin is
	// normalized to magnitude 1, keeping only the phase. Bins below the
	// whitening threshold would amplify noise and are zeroed.
	maxMag := 0.0
	for i := 0; i < n; i++ {
		mag := cmplx.Abs(ffdel[i] * cmplx.Conj(ffref[i]))
		if mag > maxMag {
			maxMag = mag
		}
	}
	threshold := maxMag * whiteningThresholdRatio

	res := make([]complex128, n)
	activeBins := 0
	for i := 0; i < n; i++ {
		idx := i
		if i > n/2 {
			idx = n - i
		}
		if idx < binMin || idx > binMax {
			continue
		}

		prod := ffdel[i] * cmplx.Conj(ffref[i])
		mag := cmplx.Abs(prod)
		if mag > threshold && mag > 1e-12 {
			res[i] = prod / complex(mag, 0)
			activeBins++
		}
	}
	if activeBins == 0 {
		return 0, 0, fmt.Errorf("no spectral content to correlate (all bins below the whitening threshold)")
	}

	timeDomain := fft.IFFT(res)

	// A positive lag of the delayed signal lands on a positive index,
	// a negative one wraps around to the end of the buffer.
	bestOffset, bestVal, found := 0, 0.0, false
	for offset := minOffset; offset < maxOffset; offset++ {
		if offset <= -n || offset >= n {
			continue
		}
		idx := offset
		if idx < 0 {
			idx += n
		}
		val := cmplx.Abs(timeDomain[idx])
		if !found || val > bestVal {
			bestOffset, bestVal, found = offset, val, true
		}
	}
	if !found {
		return 0, 0, fmt.Errorf("the offset range [%d, %d) lies outside the transform of size %d", minOffset, maxOffset, n)
	}

	// In a perfect phase match the peak magnitude is activeBins/n:
	// activeBins bins of magnitude 1 in the frequency domain, and the
	// inverse transform divides by n.
	confidence := bestVal * float64(n) / float64(activeBins)
	if confidence > 1 {
		confidence = 1
	}

	return bestOffset, confidence, nil
}
