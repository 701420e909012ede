package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/yyyoichi/lsbsteg"
	"github.com/yyyoichi/lsbsteg/internal/imageio"
	"github.com/yyyoichi/lsbsteg/internal/pixbuf"
	"github.com/yyyoichi/lsbsteg/internal/quality"
	"github.com/yyyoichi/lsbsteg/internal/resize"
	"go.uber.org/zap"
)

type trial struct {
	url      string
	shape    string
	capacity int
	length   int
	psnr     float64
	elapsed  time.Duration
}

func runQuality(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "quality")
	urlsPath := fs.String("urls", "", "file with one carrier URL per line")
	n := fs.Int("n", 10, "number of images to test, 0 for all")
	ratio := fs.Float64("message-ratio", 0.5, "message length as a fraction of capacity")
	target := fs.Int("target", resize.DefaultTarget, "preprocess target size")
	seed := fs.Uint64("seed", 1, "seed for the random messages")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	if len(positional) != 0 {
		return fmt.Errorf("%w: unexpected arguments %v", errUsage, positional)
	}
	if *urlsPath == "" {
		return fmt.Errorf("%w: -urls is required", errUsage)
	}
	if *ratio <= 0 || *ratio > 1 {
		return fmt.Errorf("%w: -message-ratio must be in (0, 1]", errUsage)
	}

	data, err := os.ReadFile(*urlsPath)
	if err != nil {
		return err
	}
	urls := parseURLs(string(data))
	if len(urls) == 0 {
		return fmt.Errorf("no image URLs found in %s", *urlsPath)
	}
	if *n > 0 && *n < len(urls) {
		urls = urls[:*n]
	}
	if e.fetcher == nil {
		e.fetcher = imageio.NewFetcher(e.cacheDir, 250*time.Millisecond)
	}
	rng := rand.New(rand.NewPCG(*seed, *seed))

	e.log.Info("starting quality evaluation", zap.Int("images", len(urls)), zap.Float64("message_ratio", *ratio))
	success := 0
	for i, url := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}
		log := e.log.With(zap.Int("index", i+1), zap.String("url", url))
		t, err := roundTrip(ctx, e.fetcher, url, *target, *ratio, rng)
		if err != nil {
			log.Warn("fail", zap.Error(err))
			continue
		}
		success++
		log.Info("ok",
			zap.String("shape", t.shape),
			zap.Int("capacity", t.capacity),
			zap.Int("length", t.length),
			zap.Float64("psnr", t.psnr),
			zap.Duration("elapsed", t.elapsed),
		)
	}

	total := len(urls)
	e.log.Info("results",
		zap.Int("total", total),
		zap.Int("successful", success),
		zap.Int("failed", total-success),
	)
	_, err = fmt.Fprintf(e.stdout, "total: %d\nsuccessful: %d (%.2f%%)\nfailed: %d\n",
		total, success, float64(success)/float64(total)*100, total-success)
	return err
}

func parseURLs(data string) []string {
	var urls []string
	scanner := bufio.NewScanner(strings.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && imageio.IsURL(line) {
			urls = append(urls, line)
		}
	}
	return urls
}

// randomMessage returns n printable ASCII bytes.
func randomMessage(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(' ' + rng.IntN('~'-' '+1))
	}
	return string(b)
}

// roundTrip embeds a random message into the preprocessed carrier at url,
// passes the result through an in-memory PNG and checks the message survives.
func roundTrip(ctx context.Context, f *imageio.Fetcher, url string, target int, ratio float64, rng *rand.Rand) (trial, error) {
	start := time.Now()
	t := trial{url: url}

	src, err := f.Fetch(ctx, url)
	if err != nil {
		return t, err
	}
	carrier := resize.Preprocess(src, target)
	buf := lsbsteg.FromImage(carrier)
	t.shape = buf.Shape().String()
	t.capacity = lsbsteg.Capacity(buf)
	t.length = max(1, int(float64(t.capacity)*ratio))
	message := randomMessage(rng, t.length)

	marked, err := lsbsteg.EmbedImage(ctx, carrier, []byte(message))
	if err != nil {
		return t, fmt.Errorf("embed: %w", err)
	}
	var enc bytes.Buffer
	if err := imageio.Encode(&enc, marked, imageio.PNG, imageio.WithCompression(png.BestSpeed)); err != nil {
		return t, fmt.Errorf("png encode: %w", err)
	}
	decoded, _, err := image.Decode(&enc)
	if err != nil {
		return t, fmt.Errorf("png decode: %w", err)
	}
	got, err := lsbsteg.ExtractImage(ctx, decoded)
	if err != nil {
		return t, fmt.Errorf("extract: %w", err)
	}
	if string(got) != message {
		return t, fmt.Errorf("message mismatch: got %d bytes, want %d", len(got), len(message))
	}

	t.psnr, err = quality.PSNR(buf, pixbuf.FromImage(decoded))
	if err != nil {
		return t, err
	}
	t.elapsed = time.Since(start)
	return t, nil
}
