// Package mse implements the time-domain offset search: every candidate
// offset in the requested range is scored by the mean squared error
// between the overlapping parts of the two signals, and the candidate
// with the smallest error wins.
//
// The tie-break is deterministic: at equal error the offset with the
// smaller magnitude wins, and at equal magnitude the positive one does.
package mse

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/xaionaro-go/observability"
)

type Searcher struct {
	// Concurrency is the amount of goroutines the candidate range is
	// sharded across. 0 or negative means GOMAXPROCS. The result does
	// not depend on the sharding.
	Concurrency int
}

// NewSearcher initializes a new MSE offset searcher.
func NewSearcher() *Searcher {
	return &Searcher{}
}

type candidate struct {
	offset int
	mse    float64
	valid  bool
}

// better reports whether c should be preferred over other. The order is
// total, which keeps the sharded scan deterministic: smaller error first,
// then smaller offset magnitude, then the positive offset.
func (c candidate) better(other candidate) bool {
	if !c.valid {
		return false
	}
	if !other.valid {
		return true
	}
	if c.mse != other.mse {
		return c.mse < other.mse
	}
	cAbs, otherAbs := abs(c.offset), abs(other.offset)
	if cAbs != otherAbs {
		return cAbs < otherAbs
	}
	return c.offset > other.offset
}

// FindBestOffset returns the offset in [minOffset, maxOffset) minimizing
// the mean squared error between delayed[offset:] and reference (for
// non-negative candidates; the negative case is symmetric). When
// lookaheadSamples is positive, at most that many leading samples take
// part in each comparison.
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

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	rangeSize := maxOffset - minOffset
	if concurrency > rangeSize {
		concurrency = rangeSize
	}

	shards := make([]candidate, concurrency)
	shardSize := (rangeSize + concurrency - 1) / concurrency

	var wg sync.WaitGroup
	for shardIdx := 0; shardIdx < concurrency; shardIdx++ {
		shardIdx := shardIdx
		begin := minOffset + shardIdx*shardSize
		end := begin + shardSize
		if end > maxOffset {
			end = maxOffset
		}
		wg.Add(1)
		observability.Go(ctx, func(ctx context.Context) {
			defer wg.Done()
			shards[shardIdx] = scanRange(ctx, reference, delayed, begin, end, lookaheadSamples)
		})
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	best := candidate{}
	for _, c := range shards {
		if c.better(best) {
			best = c
		}
	}
	if !best.valid {
		return 0, 0, fmt.Errorf("no candidate offset in [%d, %d) leaves an overlap between signals of lengths %d and %d", minOffset, maxOffset, len(reference), len(delayed))
	}

	// Higher score is better across this package's searchers, hence
	// the negation.
	return best.offset, -best.mse, nil
}

func scanRange(
	ctx context.Context,
	reference []float32,
	delayed []float32,
	begin, end int,
	lookaheadSamples int,
) candidate {
	best := candidate{}
	for offset := begin; offset < end; offset++ {
		select {
		case <-ctx.Done():
			return candidate{}
		default:
		}

		x, y := delayed, reference
		if offset >= 0 {
			if offset >= len(delayed) {
				continue
			}
			x = delayed[offset:]
		} else {
			if -offset >= len(reference) {
				continue
			}
			y = reference[-offset:]
		}

		n := min(len(x), len(y))
		if lookaheadSamples > 0 && n > lookaheadSamples {
			n = lookaheadSamples
		}
		if n == 0 {
			continue
		}

		var sum float64
		for i := 0; i < n; i++ {
			d := float64(x[i]) - float64(y[i])
			sum += d * d
		}

		c := candidate{offset: offset, mse: sum / float64(n), valid: true}
		if c.better(best) {
			best = c
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
