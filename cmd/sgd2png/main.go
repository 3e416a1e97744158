// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"fmt"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("sgd2png", flag.ContinueOnError)
	fs.Usage = func() { printHelp(fs) }

	full := fs.Bool("f", false, "also render one PNG per named SET, full size")
	crop := fs.Bool("c", false, "also render one PNG per named SET, cropped to its bounds")
	paletteFile := fs.String("p", "", "palette override file (8 or 16 lines of hex \"r g b\")")
	compLevel := fs.Int("z", -1, "PNG deflate compression level, 0-9 (default: library default)")
	outDir := fs.String("o", ".", "destination directory (default \".\"); ### in the output name is replaced by the first three bytes of the input's base name")
	logPath := fs.String("log", "logs/sgd2png.log", "path to the run log")

	if err := fs.Parse(args); err != nil {
		return 0
	}
	if fs.NArg() == 0 {
		printHelp(fs)
		return 1
	}
	if *compLevel < -1 || *compLevel > 9 {
		fmt.Fprintf(os.Stderr, "sgd2png: bad compression level %d, want 0-9\n", *compLevel)
		return 1
	}

	logger, closeLog, err := openLogger(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sgd2png: %v\n", err)
		return 1
	}
	defer closeLog()

	pal16 := workingPalette(defaultPalette)
	if *paletteFile != "" {
		f, err := os.Open(*paletteFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sgd2png: %v\n", err)
			return 1
		}
		loaded, err := loadPaletteFile(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "sgd2png: %v\n", err)
			return 1
		}
		pal16 = colorPalette16(loaded)
	}
	var base [8]color.RGBA
	for i := 0; i < 8; i++ {
		base[i] = pal16[i].(color.RGBA)
	}

	cfg := runConfig{
		full:             *full,
		crop:             *crop,
		palette:          base,
		workingPal:       pal16,
		outDir:           *outDir,
		compressionLevel: resolveCompressionLevel(*compLevel),
	}

	m := newMetrics()
	var g errgroup.Group
	var failed atomic.Bool
	for _, path := range fs.Args() {
		path := path
		g.Go(func() error {
			if err := processFile(path, cfg, m, logger); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
				m.recordError(err)
				logger.Printf("%s: %v", path, err)
				failed.Store(true)
			}
			return nil
		})
	}
	g.Wait()

	m.dump(logger)
	if failed.Load() {
		return 1
	}
	return 0
}

func resolveCompressionLevel(flagVal int) png.CompressionLevel {
	switch {
	case flagVal < 0:
		return png.DefaultCompression
	case flagVal == 0:
		return png.NoCompression
	case flagVal <= 3:
		return png.BestSpeed
	default:
		return png.BestCompression
	}
}

type runConfig struct {
	full             bool
	crop             bool
	palette          [8]color.RGBA
	workingPal       color.Palette
	outDir           string
	compressionLevel png.CompressionLevel
}

func openLogger(path string) (*log.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, wrapErr(KindIO, err, "creating log directory")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, wrapErr(KindIO, err, "opening log file")
	}
	return log.New(f, "", log.Ldate|log.Ltime|log.LUTC|log.Lshortfile), func() { f.Close() }, nil
}

func printHelp(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "usage: sgd2png [flags] file.sgd [file2.sgd ...]")
	fs.PrintDefaults()
}
