package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/yyyoichi/lsbsteg/internal/pixbuf"
	"github.com/yyyoichi/lsbsteg/internal/quality"
	"go.uber.org/zap"
)

var channelNames = map[int][]string{
	1: {"Y"},
	3: {"R", "G", "B"},
	4: {"R", "G", "B", "A"},
}

func runAnalyze(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "analyze")
	original := fs.String("original", "", "carrier before embedding, for MSE and PSNR")
	chart := fs.String("chart", "", "write an HTML chart of the per-channel statistics")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	src, err := oneSource(positional)
	if err != nil {
		return err
	}

	img, err := e.load(ctx, src)
	if err != nil {
		return err
	}
	buf := pixbuf.FromImage(img)
	var orig *pixbuf.Buffer
	if *original != "" {
		o, err := e.load(ctx, *original)
		if err != nil {
			return err
		}
		orig = pixbuf.FromImage(o)
	}
	report, err := quality.Analyze(buf, orig)
	if err != nil {
		return err
	}
	if err := writeReport(e.stdout, buf, report, orig != nil); err != nil {
		return err
	}
	if *chart == "" {
		return nil
	}
	if err := renderChart(*chart, src, buf, report); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	e.log.Info("chart written", zap.String("path", *chart))
	return nil
}

func names(channels int) []string {
	if n, ok := channelNames[channels]; ok {
		return n
	}
	out := make([]string, channels)
	for i := range out {
		out[i] = fmt.Sprintf("C%d", i)
	}
	return out
}

func writeReport(w io.Writer, buf *pixbuf.Buffer, r quality.Report, withOriginal bool) error {
	if _, err := fmt.Fprintf(w, "shape: %s\n", buf.Shape()); err != nil {
		return err
	}
	for ch, name := range names(buf.Channels) {
		if _, err := fmt.Fprintf(w, "%s: lsb=1 %.4f chi2 %.2f p %.4f\n", name, r.LSBRatio[ch], r.Chi2[ch], r.P[ch]); err != nil {
			return err
		}
	}
	if !withOriginal {
		return nil
	}
	psnr := fmt.Sprintf("%.2f dB", r.PSNR)
	if math.IsInf(r.PSNR, 1) {
		psnr = "identical"
	}
	_, err := fmt.Fprintf(w, "mse: %.6f\npsnr: %s\n", r.MSE, psnr)
	return err
}

func renderChart(path, title string, buf *pixbuf.Buffer, r quality.Report) error {
	channels := names(buf.Channels)
	ratios := make([]opts.BarData, len(channels))
	pvalues := make([]opts.BarData, len(channels))
	for ch := range channels {
		ratios[ch] = opts.BarData{Value: r.LSBRatio[ch], Name: fmt.Sprintf("%s lsb=1 %.4f", channels[ch], r.LSBRatio[ch])}
		pvalues[ch] = opts.BarData{Value: r.P[ch], Name: fmt.Sprintf("%s p=%.4f chi2=%.2f", channels[ch], r.P[ch], r.Chi2[ch])}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "LSB plane statistics",
			Subtitle: fmt.Sprintf("%s (%s)", title, buf.Shape()),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "ratio / p",
			Type: "value",
			Min:  0,
			Max:  1,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "5%",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "item",
		}),
	)
	bar.SetXAxis(channels).
		AddSeries("LSB=1 ratio", ratios).
		AddSeries("chi-square p", pvalues)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return bar.Render(f)
}
