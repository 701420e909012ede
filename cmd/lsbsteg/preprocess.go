package main

import (
	"context"
	"fmt"

	"github.com/yyyoichi/lsbsteg/internal/imageio"
	"github.com/yyyoichi/lsbsteg/internal/resize"
	"go.uber.org/zap"
)

func runPreprocess(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "preprocess")
	target := fs.Int("target", resize.DefaultTarget, "approximate length of the longer edge")
	output := fs.String("o", "input.png", "output image: .png, .bmp or .tiff")
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	src, err := oneSource(positional)
	if err != nil {
		return err
	}
	if *target <= 0 {
		return fmt.Errorf("%w: target must be positive", errUsage)
	}
	if _, err := imageio.FormatOf(*output); err != nil {
		return err
	}

	img, err := e.load(ctx, src)
	if err != nil {
		return err
	}
	resized := resize.Preprocess(img, *target)
	if err := imageio.Save(*output, resized); err != nil {
		return err
	}
	e.log.Info("preprocessed",
		zap.String("output", *output),
		zap.Stringer("from", img.Bounds().Size()),
		zap.Stringer("to", resized.Bounds().Size()),
	)
	return nil
}
