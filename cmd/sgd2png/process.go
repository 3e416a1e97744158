// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"image/color"
	"log"
	"path/filepath"
	"strings"
)

// processFile runs the full decode-and-render pipeline for one input
// container: load, parse, validate, decode the raster, composite the
// label mask, write the whole-image PNG, and optionally one PNG per
// named SET. Matches sgd.c's write_png() top-level driver.
func processFile(path string, cfg runConfig, m *metrics, logger *log.Logger) error {
	data, err := loadFile(path)
	if err != nil {
		return err
	}
	m.bytesTotal.Add(float64(len(data)))

	r := newReader(data)
	hdr, err := parseFileHeader(r)
	if err != nil {
		return err
	}
	if err := validateFileHeader(hdr); err != nil {
		return err
	}

	d, err := loadDirectory(r)
	if err != nil {
		return err
	}

	plane, err := r.buildRasterPlane()
	if err != nil {
		return err
	}
	m.tilesTotal.Add(float64(plane.tilesDecoded))
	colorMap := buildColorMap(plane.palette, cfg.palette)
	labelMask := buildLabelMask(d, plane.width, plane.height)
	base := buildBaseImage(plane, colorMap, labelMask)
	workingPal := cfg.workingPal

	// Matches sgd.c's process_files(): fixsep() normalizes the input
	// path's separators, the basename is joined onto dest_dir (default
	// "."), and only then does ### substitution run over the joined
	// buffer — so -o is always a directory, never a full output path.
	outDir := filepath.ToSlash(cfg.outDir)
	if outDir == "" {
		outDir = "."
	}
	basename := filepath.Base(filepath.ToSlash(path))
	outBase := substituteHashTokens(outDir+"/"+basename, basename)
	outBase = strings.TrimSuffix(outBase, filepath.Ext(outBase))

	if err := writeIndexedPNG(outBase+".png", base, plane.width, plane.height, workingPal[:8], cfg.compressionLevel); err != nil {
		return err
	}
	logger.Printf("%s: wrote %s.png (%dx%d)", path, outBase, plane.width, plane.height)

	if cfg.full || cfg.crop {
		outDir := filepath.Dir(outBase)
		name := filepath.Base(outBase)
		sets, err := processSets(d, base, plane.width, plane.height, outDir, name, cfg, workingPal)
		if err != nil {
			return err
		}
		m.setsTotal.Add(float64(sets))
	}
	m.filesTotal.Inc()
	return nil
}

// processSets walks every named SET not already subsumed by a larger
// one, merges same-named sets sharing the same label, and renders
// each merged group's highlighted mask to its own PNG(s). Matches
// sgd.c's process_sets().
func processSets(d *directory, base []uint8, width, height int, outDir, baseName string, cfg runConfig, pal16 color.Palette) (int, error) {
	rendered := 0
	for i, e := range d.entries {
		if !e.isSet() || e.set.drawn() || isSubsetOfAnother(d, e) {
			continue
		}
		name := getSetName(e.set, d)
		if name == "" {
			continue
		}

		canvas := newMaskCanvas(width, height)
		if err := renderMaskR(canvas, e, d, height); err != nil {
			return rendered, err
		}

		b := emptyBounds()
		if cfg.crop {
			if err := calcSetBounds(&b, e, d, height); err != nil {
				return rendered, err
			}
		}
		e.set.markDrawn()

		for j := i + 1; j < len(d.entries); j++ {
			e2 := d.entries[j]
			if !e2.isSet() || e2.set.drawn() || isSubsetOfAnother(d, e2) {
				continue
			}
			name2 := getSetName(e2.set, d)
			if name2 == "" || name2 != name {
				continue
			}
			if err := renderMaskR(canvas, e2, d, height); err != nil {
				return rendered, err
			}
			if cfg.crop {
				if err := calcSetBounds(&b, e2, d, height); err != nil {
					return rendered, err
				}
			}
			e2.set.markDrawn()
		}

		highlighted := applySetMask(base, canvas, width, height)
		rendered++

		if cfg.full {
			path := filepath.Join(outDir, "full", fmt.Sprintf("%s_%s.png", baseName, name))
			if err := writeIndexedPNG(path, highlighted, width, height, pal16, cfg.compressionLevel); err != nil {
				return rendered, err
			}
		}
		if cfg.crop {
			finalizeBounds(&b, e, d, width, height)
			if !b.isEmpty() {
				crop := cropImage(highlighted, width, b)
				path := filepath.Join(outDir, "crop", fmt.Sprintf("%s_%s.png", baseName, name))
				cw, ch := b.maxX-b.minX+1, b.maxY-b.minY+1
				if err := writeIndexedPNG(path, crop, cw, ch, pal16, cfg.compressionLevel); err != nil {
					return rendered, err
				}
			}
		}
	}
	return rendered, nil
}
