package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"

	"github.com/yyyoichi/lsbsteg"
	"github.com/yyyoichi/lsbsteg/internal/imageio"
	"github.com/yyyoichi/lsbsteg/internal/pixbuf"
	"github.com/yyyoichi/lsbsteg/payload"
	"go.uber.org/zap"
)

type payloadFlags struct {
	binary *bool
	golay  *bool
	seed   *int64
}

func addPayloadFlags(fs *flag.FlagSet) payloadFlags {
	return payloadFlags{
		binary: fs.Bool("binary", false, "wrap the message in the payload envelope (any bytes, UTF-8)"),
		golay:  fs.Bool("golay", false, "protect the envelope with Golay ECC (implies -binary)"),
		seed:   fs.Int64("seed", payload.DefaultShuffleSeed, "shuffle seed for -golay"),
	}
}

func (p payloadFlags) options() []lsbsteg.Option {
	switch {
	case *p.golay:
		return []lsbsteg.Option{lsbsteg.WithPayload(payload.WithGolay(*p.seed))}
	case *p.binary:
		return []lsbsteg.Option{lsbsteg.WithPayload()}
	}
	return nil
}

func runEmbed(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "embed")
	message := fs.String("m", "", "message to embed")
	output := fs.String("o", "output.png", "output image: .png, .bmp or .tiff")
	compression := fs.Int("compression", int(png.NoCompression), "png compression level (0 default, -1 none, -2 speed, -3 best)")
	pf := addPayloadFlags(fs)
	positional, err := parse(fs, args)
	if err != nil {
		return err
	}
	src, err := oneSource(positional)
	if err != nil {
		return err
	}
	if *message == "" {
		return fmt.Errorf("%w: a message needs to be provided", errUsage)
	}
	// reject the output before doing any work
	if _, err := imageio.FormatOf(*output); err != nil {
		return err
	}

	img, err := e.load(ctx, src)
	if err != nil {
		return err
	}
	if isLossySource(src) {
		e.log.Warn("carrier was stored lossily; only the output file carries the message", zap.String("source", src))
	}
	s, err := lsbsteg.New(pf.options()...)
	if err != nil {
		return err
	}
	marked, err := s.EmbedImage(ctx, img, []byte(*message))
	if err != nil {
		return err
	}
	if err := imageio.Save(*output, marked, imageio.WithCompression(png.CompressionLevel(*compression))); err != nil {
		return err
	}
	e.log.Info("embedded",
		zap.String("output", *output),
		zap.Int("bytes", len(*message)),
		zap.Int("capacity", s.Capacity(img)),
		zap.Stringer("shape", pixbuf.ShapeOf(img)),
	)
	return nil
}
