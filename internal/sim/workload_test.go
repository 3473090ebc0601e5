package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFib(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{7, 13},
		{10, 55},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fib(tt.n))
	}
}

func TestHaircutTimer(t *testing.T) {
	t.Run("Draws stay inside the configured range", func(t *testing.T) {
		h := NewHaircutTimer(1, 200, 400)
		for i := 0; i < 1000; i++ {
			d := h.Next()
			assert.GreaterOrEqual(t, d, 200*time.Millisecond)
			assert.LessOrEqual(t, d, 400*time.Millisecond)
		}
	})

	t.Run("Fixed seed reproduces the draw sequence", func(t *testing.T) {
		a := NewHaircutTimer(42, 200, 400)
		b := NewHaircutTimer(42, 200, 400)
		for i := 0; i < 100; i++ {
			assert.Equal(t, a.Next(), b.Next())
		}
	})

	t.Run("Degenerate range is constant", func(t *testing.T) {
		h := NewHaircutTimer(7, 50, 50)
		for i := 0; i < 10; i++ {
			assert.Equal(t, 50*time.Millisecond, h.Next())
		}
	})

	t.Run("Inverted range collapses to the minimum", func(t *testing.T) {
		h := NewHaircutTimer(7, 30, 10)
		assert.Equal(t, 30*time.Millisecond, h.Next())
	})
}
