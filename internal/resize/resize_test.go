package resize

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFactor(t *testing.T) {
	test := []struct {
		name          string
		width, height int
		exp           int
	}{
		{"square", 4000, 4000, 4},
		{"wide", 3000, 1000, 3},
		{"tall", 1200, 2500, 2},
		{"just above target", 1999, 1000, 1},
		{"smaller than target", 640, 480, 1},
		{"empty", 0, 0, 1},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exp, Factor(tt.width, tt.height, DefaultTarget))
		})
	}
	assert.Equal(t, 1, Factor(5000, 5000, 0))
}

func TestPreprocess(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 300, 120))
	dist := Preprocess(src, 100)
	assert.Equal(t, image.Rect(0, 0, 100, 40), dist.Bounds())

	small := image.NewRGBA(image.Rect(0, 0, 50, 50))
	assert.Same(t, small, Preprocess(small, 100))
}
