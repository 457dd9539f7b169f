package align

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindow(t *testing.T) {
	reference := make([]float32, 100)
	delayed := make([]float32, 100)
	for i := range reference {
		reference[i] = float32(math.Sin(float64(i) * 0.1))
		delayed[i] = float32(math.Cos(float64(i) * 0.1))
	}

	t.Run("no lookahead", func(t *testing.T) {
		ref, del := Window(reference, delayed, 0)
		assert.Equal(t, reference, ref)
		assert.Equal(t, delayed, del)
	})

	t.Run("signal already fits", func(t *testing.T) {
		ref, del := Window(reference, delayed, 100)
		assert.Equal(t, reference, ref)
		assert.Equal(t, delayed, del)
	})

	t.Run("centered sub-range", func(t *testing.T) {
		ref, del := Window(reference, delayed, 10)
		assert.Equal(t, reference[50:60], ref)
		assert.Equal(t, delayed[50:60], del)
	})

	t.Run("delayed shorter than the window", func(t *testing.T) {
		ref, del := Window(reference, delayed[:55], 10)
		assert.Equal(t, reference[50:60], ref)
		assert.Equal(t, delayed[50:55], del)
	})

	t.Run("delayed ends before the window starts", func(t *testing.T) {
		ref, del := Window(reference, delayed[:20], 10)
		assert.Equal(t, reference[50:60], ref)
		assert.Empty(t, del)
	})

	t.Run("the windowed pair does not alias the inputs", func(t *testing.T) {
		ref, _ := Window(reference, delayed, 10)
		before := reference[50]
		ref[0] = before + 1
		assert.Equal(t, before, reference[50])
	})
}
