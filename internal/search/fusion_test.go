package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLexical(t *testing.T) {
	t.Run("scales by maximum", func(t *testing.T) {
		got := NormalizeLexical([]float64{2, 4, 1})
		assert.InDeltaSlice(t, []float64{0.5, 1.0, 0.25}, got, 1e-9)
	})

	t.Run("all zeros stay zeros", func(t *testing.T) {
		got := NormalizeLexical([]float64{0, 0, 0})
		assert.Equal(t, []float64{0, 0, 0}, got)
	})

	t.Run("single element", func(t *testing.T) {
		got := NormalizeLexical([]float64{7.3})
		assert.InDeltaSlice(t, []float64{1.0}, got, 1e-9)
	})
}

func TestFuse(t *testing.T) {
	lexical := []float64{1.0, 0.5, 0.0}
	semantic := []float64{0.0, 0.5, 1.0}

	t.Run("balanced weight averages", func(t *testing.T) {
		got := Fuse(lexical, semantic, 0.5)
		assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5}, got, 1e-9)
	})

	t.Run("weight one is pure lexical", func(t *testing.T) {
		got := Fuse(lexical, semantic, 1.0)
		assert.InDeltaSlice(t, lexical, got, 1e-9)
	})

	t.Run("weight zero is pure semantic", func(t *testing.T) {
		got := Fuse(lexical, semantic, 0.0)
		assert.InDeltaSlice(t, semantic, got, 1e-9)
	})
}
