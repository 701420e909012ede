package main

import (
	"context"
	"fmt"

	"github.com/yyyoichi/lsbsteg"
	"go.uber.org/zap"
)

func runExtract(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "extract")
	pf := addPayloadFlags(fs)
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
	s, err := lsbsteg.New(pf.options()...)
	if err != nil {
		return err
	}
	msg, err := s.ExtractImage(ctx, img)
	if err != nil {
		return err
	}
	e.log.Debug("extracted", zap.Int("bytes", len(msg)))
	_, err = fmt.Fprintln(e.stdout, string(msg))
	return err
}

func runCapacity(ctx context.Context, e *env, args []string) error {
	fs := newFlagSet(e, "capacity")
	pf := addPayloadFlags(fs)
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
	s, err := lsbsteg.New(pf.options()...)
	if err != nil {
		return err
	}
	buf := lsbsteg.FromImage(img)
	_, err = fmt.Fprintf(e.stdout, "shape: %dx%dx%d\ncells: %d\ncapacity: %d bytes\n",
		buf.Height, buf.Width, buf.Channels, len(buf.Pix), s.Capacity(img))
	return err
}
