package quality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yyyoichi/lsbsteg/internal/pixbuf"
)

func TestMSEAndPSNR(t *testing.T) {
	a := pixbuf.New(2, 2, 1)
	b := a.Clone()

	mse, err := MSE(a, b)
	require.NoError(t, err)
	assert.Zero(t, mse)
	psnr, err := PSNR(a, b)
	require.NoError(t, err)
	assert.True(t, math.IsInf(psnr, 1))

	b.Pix[0] = 2 // squared error 4 over 4 cells
	mse, err = MSE(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, mse, 1e-12)
	psnr, err = PSNR(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 10*math.Log10(255*255), psnr, 1e-9)

	_, err = MSE(a, pixbuf.New(2, 2, 3))
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestLSBRatio(t *testing.T) {
	b := pixbuf.New(2, 2, 2)
	// channel 0 all odd, channel 1 one odd value
	for i := range 4 {
		b.Pix[i*2] = 3
	}
	b.Pix[1] = 5
	assert.Equal(t, []float64{1, 0.25}, LSBRatio(b))
	assert.Equal(t, []float64{}, LSBRatio(pixbuf.New(0, 0, 0)))
}

func TestChiSquare(t *testing.T) {
	// even values only: every pair is maximally unbalanced
	clean := pixbuf.New(64, 64, 1)
	for i := range clean.Pix {
		clean.Pix[i] = uint8(i%128) * 2
	}
	_, p := ChiSquare(clean, 0)
	assert.Less(t, p, 0.01)

	// every value equally often: every pair is balanced
	flat := pixbuf.New(64, 64, 1)
	for i := range flat.Pix {
		flat.Pix[i] = uint8(i)
	}
	chi2, p := ChiSquare(flat, 0)
	assert.Zero(t, chi2)
	assert.InDelta(t, 1.0, p, 1e-9)

	chi2, p = ChiSquare(pixbuf.New(4, 4, 1), 0)
	assert.Zero(t, chi2)
	assert.Equal(t, 1.0, p)
}

func TestAnalyze(t *testing.T) {
	orig := pixbuf.New(8, 8, 3)
	marked := orig.Clone()
	marked.Pix[0] = 1

	r, err := Analyze(marked, orig)
	require.NoError(t, err)
	assert.Len(t, r.LSBRatio, 3)
	assert.Len(t, r.P, 3)
	assert.Greater(t, r.MSE, 0.0)
	assert.False(t, math.IsInf(r.PSNR, 1))

	r, err = Analyze(marked, nil)
	require.NoError(t, err)
	assert.Zero(t, r.MSE)
}
