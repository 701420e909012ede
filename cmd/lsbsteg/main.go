package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/yyyoichi/lsbsteg/internal/imageio"
	"github.com/yyyoichi/lsbsteg/internal/logger"
	"go.uber.org/zap"
)

// errUsage marks errors caused by bad arguments; they exit with status 2.
var errUsage = errors.New("usage")

type env struct {
	stdout   io.Writer
	stderr   io.Writer
	log      *zap.Logger
	cacheDir string
	fetcher  *imageio.Fetcher
}

type command struct {
	usage string
	run   func(ctx context.Context, e *env, args []string) error
}

var commands = map[string]command{
	"embed":      {"embed -m MESSAGE [-o output.png] [-binary] [-golay] [-seed N] [-compression N] IMAGE|URL", runEmbed},
	"extract":    {"extract [-binary] [-golay] [-seed N] IMAGE|URL", runExtract},
	"preprocess": {"preprocess [-target 1000] [-o input.png] IMAGE|URL", runPreprocess},
	"capacity":   {"capacity [-binary] [-golay] IMAGE|URL", runCapacity},
	"analyze":    {"analyze [-original IMAGE] [-chart report.html] IMAGE|URL", runAnalyze},
	"quality":    {"quality -urls FILE [-n 10] [-message-ratio 0.5]", runQuality},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("lsbsteg", flag.ContinueOnError)
	global.SetOutput(stderr)
	level := global.String("log-level", "info", "log level: debug, info, warn or error")
	dev := global.Bool("dev", false, "human readable logs")
	cacheDir := global.String("cache", imageio.DefaultCacheDir, "cache directory for carriers fetched over http")
	global.Usage = func() { usage(stderr) }
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if global.NArg() == 0 {
		usage(stderr)
		return 2
	}

	log, err := logger.New(logger.WithLevel(*level), logger.WithDevelopment(*dev), logger.WithWriter(stderr))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	defer func() { _ = log.Sync() }()

	name := global.Arg(0)
	cmd, ok := commands[name]
	if !ok {
		log.Error("invalid operation", zap.String("operation", name))
		usage(stderr)
		return 2
	}
	e := &env{stdout: stdout, stderr: stderr, log: log.Named(name), cacheDir: *cacheDir}
	if err := cmd.run(ctx, e, global.Args()[1:]); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			return 0
		case errors.Is(err, errUsage):
			fmt.Fprintf(stderr, "%v\nusage: lsbsteg %s\n", err, cmd.usage)
			return 2
		}
		e.log.Error("failed", zap.Error(err))
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "usage: lsbsteg [-log-level LEVEL] [-dev] [-cache DIR] OPERATION [flags] ARGS")
	fmt.Fprintln(w, "operations:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

// parse parses fs allowing flags after positional arguments, as in
// "embed carrier.png -m hello".
func parse(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", errUsage, err)
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

func newFlagSet(e *env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

func oneSource(positional []string) (string, error) {
	if len(positional) != 1 {
		return "", fmt.Errorf("%w: expected one image, got %d", errUsage, len(positional))
	}
	return positional[0], nil
}

// load opens a local image or fetches it when src is an http(s) URL.
func (e *env) load(ctx context.Context, src string) (image.Image, error) {
	if !imageio.IsURL(src) {
		img, format, err := imageio.Load(src)
		if err != nil {
			return nil, err
		}
		e.log.Debug("loaded", zap.String("path", src), zap.String("format", format),
			zap.Stringer("bounds", img.Bounds()))
		return img, nil
	}
	if e.fetcher == nil {
		e.fetcher = imageio.NewFetcher(e.cacheDir, 250*time.Millisecond)
	}
	e.log.Debug("fetching", zap.String("url", src))
	return e.fetcher.Fetch(ctx, src)
}

func isLossySource(src string) bool {
	src = strings.ToLower(src)
	for _, ext := range []string{".jpg", ".jpeg", ".webp"} {
		if strings.HasSuffix(src, ext) {
			return true
		}
	}
	return false
}
