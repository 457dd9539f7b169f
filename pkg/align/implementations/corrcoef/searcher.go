// Package corrcoef implements the correlation-based offset search: every
// candidate offset is scored by the Pearson correlation coefficient of
// the overlapping parts of the two signals, and the candidate with the
// highest coefficient wins (on ties, the lowest offset).
//
// Only every Stride-th sample of the overlap takes part in each
// coefficient. The default stride of 4 cuts the work fourfold; genuine
// audio offsets are broadband enough that quarter-decimation rarely
// changes the winning offset.
package corrcoef

import (
	"context"
	"fmt"
	"math"
)

// DefaultStride is the decimation step used when none is configured.
const DefaultStride = 4

// varianceEpsilon is the smallest normalized denominator for which the
// coefficient is still considered defined. Candidates where either side
// of the overlap is (nearly) constant are skipped.
const varianceEpsilon = 1e-12

type Searcher struct {
	// Stride is the decimation step: only every Stride-th sample of the
	// overlap takes part in each coefficient.
	Stride int
}

// NewSearcher initializes a new correlation-coefficient offset searcher.
// A non-positive stride selects DefaultStride.
func NewSearcher(stride int) *Searcher {
	if stride <= 0 {
		stride = DefaultStride
	}
	return &Searcher{
		Stride: stride,
	}
}

// FindBestOffset returns the offset in [minOffset, maxOffset) maximizing
// the decimated Pearson correlation coefficient between the overlapping
// parts of the signals. When lookaheadSamples is positive, at most that
// many leading samples of each overlap take part in the coefficient.
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
	stride := s.Stride
	if stride <= 0 {
		stride = DefaultStride
	}

	bestOffset, bestScore, found := 0, 0.0, false
	for offset := minOffset; offset < maxOffset; offset++ {
		select {
		case <-ctx.Done():
			return 0, 0, ctx.Err()
		default:
		}

		x, y, ok := overlap(reference, delayed, offset)
		if !ok {
			continue
		}
		n := min(len(x), len(y))
		if lookaheadSamples > 0 && n > lookaheadSamples {
			n = lookaheadSamples
		}

		score, ok := pearson(x[:n], y[:n], stride)
		if !ok {
			continue
		}
		if !found || score > bestScore {
			bestOffset, bestScore, found = offset, score, true
		}
	}
	if !found {
		return 0, 0, fmt.Errorf("no offset in [%d, %d) yields a correlatable overlap between signals of lengths %d and %d", minOffset, maxOffset, len(reference), len(delayed))
	}

	return bestOffset, bestScore, nil
}

// overlap returns the parts of the signals that coincide in time when
// `delayed` is assumed to lag `reference` by `offset` samples.
func overlap(reference, delayed []float32, offset int) ([]float32, []float32, bool) {
	switch {
	case offset > 0:
		if offset >= len(delayed) || offset >= len(reference) {
			return nil, nil, false
		}
		return reference[:len(reference)-offset], delayed[offset:], true
	case offset < 0:
		if -offset >= len(reference) || -offset >= len(delayed) {
			return nil, nil, false
		}
		return reference[-offset:], delayed[:len(delayed)+offset], true
	}
	return reference, delayed, true
}

// pearson computes the correlation coefficient over every stride-th pair
// of samples. It reports false when fewer than two pairs are available or
// either side has no variance.
func pearson(x, y []float32, stride int) (float64, bool) {
	var sumX, sumY, sumXX, sumYY, sumXY float64
	var count float64
	for i := 0; i < min(len(x), len(y)); i += stride {
		xv, yv := float64(x[i]), float64(y[i])
		sumX += xv
		sumY += yv
		sumXX += xv * xv
		sumYY += yv * yv
		sumXY += xv * yv
		count++
	}
	if count < 2 {
		return 0, false
	}

	cov := sumXY - sumX*sumY/count
	varX := sumXX - sumX*sumX/count
	varY := sumYY - sumY*sumY/count
	denom := math.Sqrt(varX * varY)
	if denom < varianceEpsilon {
		return 0, false
	}
	return cov / denom, true
}
