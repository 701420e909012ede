// Package quality measures how much an embedding changed a carrier and how
// visible its LSB planes look to a simple statistical attack.
package quality

import (
	"errors"
	"fmt"
	"math"

	"github.com/yyyoichi/lsbsteg/internal/pixbuf"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var ErrShapeMismatch = errors.New("buffers have different shapes")

const peak = 255.0

func toFloats(b *pixbuf.Buffer) []float64 {
	out := make([]float64, len(b.Pix))
	for i, v := range b.Pix {
		out[i] = float64(v)
	}
	return out
}

// MSE returns the mean squared error between two buffers of the same shape.
func MSE(a, b *pixbuf.Buffer) (float64, error) {
	if a.Shape() != b.Shape() {
		return 0, fmt.Errorf("%w: %+v != %+v", ErrShapeMismatch, a.Shape(), b.Shape())
	}
	if len(a.Pix) == 0 {
		return 0, nil
	}
	diff := floats.SubTo(make([]float64, len(a.Pix)), toFloats(a), toFloats(b))
	return floats.Dot(diff, diff) / float64(len(diff)), nil
}

// PSNR returns the peak signal-to-noise ratio in dB. Identical buffers give +Inf.
func PSNR(a, b *pixbuf.Buffer) (float64, error) {
	mse, err := MSE(a, b)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 10 * math.Log10(peak*peak/mse), nil
}

// LSBRatio returns, per channel, the fraction of cells whose LSB is 1.
func LSBRatio(b *pixbuf.Buffer) []float64 {
	ratios := make([]float64, b.Channels)
	plane := b.Height * b.Width
	if plane <= 0 {
		return ratios
	}
	lsbs := make([]float64, plane)
	for ch := range b.Channels {
		for i := range plane {
			lsbs[i] = float64(b.Pix[i*b.Channels+ch] & 1)
		}
		ratios[ch] = stat.Mean(lsbs, nil)
	}
	return ratios
}

// ChiSquare runs the pairs-of-values test on one channel. Replacing LSBs
// with message bits evens out the counts of each value pair (2k, 2k+1), so a
// p value close to 1 suggests an embedded message.
func ChiSquare(b *pixbuf.Buffer, channel int) (chi2, p float64) {
	var hist [256]float64
	plane := b.Height * b.Width
	for i := range plane {
		hist[b.Pix[i*b.Channels+channel]]++
	}
	var obs, exp []float64
	for k := 0; k < 256; k += 2 {
		e := (hist[k] + hist[k+1]) / 2
		if e == 0 {
			continue
		}
		obs = append(obs, hist[k])
		exp = append(exp, e)
	}
	if len(obs) < 2 {
		return 0, 1
	}
	chi2 = stat.ChiSquare(obs, exp)
	dist := distuv.ChiSquared{K: float64(len(obs) - 1)}
	return chi2, 1 - dist.CDF(chi2)
}

// Report summarizes a carrier, optionally against the original it came from.
type Report struct {
	LSBRatio []float64
	Chi2     []float64
	P        []float64
	MSE      float64
	PSNR     float64
}

// Analyze builds a Report for b. original may be nil.
func Analyze(b, original *pixbuf.Buffer) (Report, error) {
	r := Report{
		LSBRatio: LSBRatio(b),
		Chi2:     make([]float64, b.Channels),
		P:        make([]float64, b.Channels),
	}
	for ch := range b.Channels {
		r.Chi2[ch], r.P[ch] = ChiSquare(b, ch)
	}
	if original == nil {
		return r, nil
	}
	var err error
	if r.MSE, err = MSE(original, b); err != nil {
		return r, err
	}
	r.PSNR, err = PSNR(original, b)
	return r, err
}
