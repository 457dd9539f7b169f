package fft

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testSignal(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		t := float64(i)
		out[i] = float32(math.Sin(t*0.1) + 0.6*math.Sin(t*0.733+1) + 0.3*math.Sin(t*2.1))
	}
	return out
}

func delay(signal []float32, k int) []float32 {
	out := make([]float32, k+len(signal))
	copy(out[k:], signal)
	return out
}

func TestSearcher_FindBestOffset(t *testing.T) {
	ctx := context.Background()
	s := NewSearcher()

	t.Run("delayed by 25", func(t *testing.T) {
		signal := testSignal(2000)
		offset, score, err := s.FindBestOffset(ctx, signal, delay(signal, 25), -100, 100, 0)
		assert.NoError(t, err)
		assert.Equal(t, 25, offset)
		assert.Greater(t, score, 0.9)
	})

	t.Run("leading by 25", func(t *testing.T) {
		signal := testSignal(2000)
		offset, score, err := s.FindBestOffset(ctx, delay(signal, 25), signal, -100, 100, 0)
		assert.NoError(t, err)
		assert.Equal(t, -25, offset)
		assert.Greater(t, score, 0.9)
	})

	t.Run("identical signals", func(t *testing.T) {
		signal := testSignal(2000)
		offset, score, err := s.FindBestOffset(ctx, signal, signal, -100, 100, 0)
		assert.NoError(t, err)
		assert.Equal(t, 0, offset)
		assert.InDelta(t, 1.0, score, 1e-6)
	})

	t.Run("constant bias does not matter", func(t *testing.T) {
		signal := testSignal(2000)
		delayed := delay(signal, 25)
		for i := range delayed {
			delayed[i] += 3
		}
		offset, _, err := s.FindBestOffset(ctx, signal, delayed, -100, 100, 0)
		assert.NoError(t, err)
		assert.Equal(t, 25, offset)
	})

	t.Run("empty range", func(t *testing.T) {
		signal := testSignal(100)
		_, _, err := s.FindBestOffset(ctx, signal, signal, -10, -10, 0)
		assert.Error(t, err)
	})

	t.Run("empty signal", func(t *testing.T) {
		_, _, err := s.FindBestOffset(ctx, testSignal(100), nil, -10, 10, 0)
		assert.Error(t, err)
	})

	t.Run("canceled context", func(t *testing.T) {
		canceledCtx, cancelFn := context.WithCancel(ctx)
		cancelFn()
		signal := testSignal(1000)
		_, _, err := s.FindBestOffset(canceledCtx, signal, signal, -100, 100, 0)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func BenchmarkSearcher_FindBestOffset(b *testing.B) {
	ctx := context.Background()
	s := NewSearcher()
	for _, n := range []int{1024, 16384, 131072} {
		b.Run(fmt.Sprintf("size-%d", n), func(b *testing.B) {
			signal := testSignal(n)
			delayed := delay(signal, n/10)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _, err := s.FindBestOffset(ctx, signal, delayed, -n/5, n/5, 0)
				if err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
