// SPDX-License-Identifier: MIT

package main

import "fmt"

const (
	magic1        = 0x000a0090
	magic2        = 0x55555555
	verMajorWant  = 0x07db
	verMinorWantA = 0x0407
	verMinorWantB = 0x0406
	flagsWant     = 0x01020015

	dirTableOffset = 0x4c
	mrciOffset     = sgdOffset + 8
)

type fileHeader struct {
	magic1   uint32
	verMajor uint16
	verMinor uint16
	flags    uint32
	magic2   uint32
}

func parseFileHeader(r *reader) (fileHeader, error) {
	c := r.at(0)
	var h fileHeader
	var err error
	if h.magic1, err = c.u32(); err != nil {
		return h, err
	}
	if h.verMajor, err = c.u16(); err != nil {
		return h, err
	}
	if h.verMinor, err = c.u16(); err != nil {
		return h, err
	}
	if h.flags, err = c.u32(); err != nil {
		return h, err
	}
	if h.magic2, err = c.u32(); err != nil {
		return h, err
	}
	return h, nil
}

func validateFileHeader(h fileHeader) error {
	if h.magic1 != magic1 || h.magic2 != magic2 {
		return newErr(KindFormat, "bad SGD magic")
	}
	if h.verMajor != verMajorWant || (h.verMinor != verMinorWantA && h.verMinor != verMinorWantB) {
		return newErr(KindFormat, "bad SGD version %#x.%#x", h.verMajor, h.verMinor)
	}
	if h.flags != flagsWant {
		return newErr(KindFormat, "bad SGD flags %#x", h.flags)
	}
	return nil
}

// directory holds the fully parsed type-0 directory: every vector
// entity in the file, in on-disk order, plus an index for resolving
// POINT/POLYLINE/SET references by their INDEX field.
type directory struct {
	entries []*entry
	byIndex map[uint32]*entry
}

func (d *directory) resolve(index uint32) (*entry, error) {
	e, ok := d.byIndex[index]
	if !ok {
		return nil, newErr(KindFormat, "entry %d not found", index)
	}
	return e, nil
}

// findDirectory locates the type-0 directory entry in the directory
// table at the fixed offset 0x4c. Matches sgd.c's find_directory():
// directory-table addresses and the directory's own address are
// absolute file offsets, unlike the type-0 directory's own addr[]
// list, whose values are relative to sgdOffset.
func findDirectory(r *reader) (dirAddr int, numEntries uint32, err error) {
	c := r.at(dirTableOffset)
	count, err := c.u32()
	if err != nil {
		return 0, 0, err
	}
	if count > 8 {
		return 0, 0, newErr(KindFormat, "bad number of directory table entries: %d", count)
	}
	for i := uint32(0); i < count; i++ {
		typ, err := c.u32()
		if err != nil {
			return 0, 0, err
		}
		addr, err := c.u32()
		if err != nil {
			return 0, 0, err
		}
		if typ != 0 {
			continue
		}
		if int(addr) > r.size() {
			return 0, 0, newErr(KindBounds, "bad directory address 0x%x", addr)
		}
		hdrType, err := r.u16(int(addr) + 2)
		if err != nil {
			return 0, 0, err
		}
		if hdrType != typeBulkData {
			return 0, 0, newErr(KindFormat, "bad directory type %d", hdrType)
		}
		numEntries, err := r.u32(int(addr) + 12)
		if err != nil {
			return 0, 0, err
		}
		if int(numEntries) > (r.size()-int(addr))/4 {
			return 0, 0, newErr(KindFormat, "bad number of directory entries: %d", numEntries)
		}
		return int(addr), numEntries, nil
	}
	return 0, 0, newErr(KindFormat, "directory 0 not found")
}

// loadDirectory parses the type-0 directory's addr[] table, validates
// each referenced entry's self-declared size against the file tail,
// fully parses every entry, and runs cycle detection over SET entries.
func loadDirectory(r *reader) (*directory, error) {
	dirAddr, numEntries, err := findDirectory(r)
	if err != nil {
		return nil, err
	}

	addrTablePos := dirAddr + 24
	rawAddrs := make([]uint32, numEntries)
	c := r.at(addrTablePos)
	for i := range rawAddrs {
		a, err := c.u32()
		if err != nil {
			return nil, err
		}
		rawAddrs[i] = a
	}

	maxRel := uint32(r.size() - sgdOffset)
	for i, a := range rawAddrs {
		if a > maxRel {
			return nil, newErr(KindBounds, "bad entry address 0x%x at directory slot %d", a, i)
		}
		if err := validateEntrySize(r, a, maxRel); err != nil {
			return nil, err
		}
	}

	entries := make([]*entry, len(rawAddrs))
	byIndex := make(map[uint32]*entry, len(rawAddrs))
	for i, a := range rawAddrs {
		e, err := parseEntry(r, a)
		if err != nil {
			return nil, err
		}
		entries[i] = e
		byIndex[e.hdr.index] = e
	}

	d := &directory{entries: entries, byIndex: byIndex}
	if err := validateNoCycles(d); err != nil {
		return nil, err
	}
	return d, nil
}

// validateEntrySize replays sgd.c's validate_directory() switch: for
// the entity kinds whose entry carries a declared element count, that
// count must plausibly fit in the remaining file tail.
func validateEntrySize(r *reader, relAddrVal, maxRel uint32) error {
	abs := relAddr(relAddrVal)
	remaining := maxRel - relAddrVal
	typ, err := r.u16(abs + 2)
	if err != nil {
		return err
	}
	switch typ {
	case typePolyline2D:
		n, err := r.u32(abs + 28 + 8)
		if err != nil {
			return err
		}
		if n > remaining/8 {
			return newErr(KindFormat, "bad number of points in polyline at 0x%x", relAddrVal)
		}
	case typeLasso2D:
		n, err := r.u32(abs + 28)
		if err != nil {
			return err
		}
		if n > remaining/8 {
			return newErr(KindFormat, "bad number of points in lasso at 0x%x", relAddrVal)
		}
	case typeTextLine2D:
		textStart := abs + 72
		if _, err := r.cstring(textStart); err != nil {
			return newErr(KindFormat, "text too long at 0x%x", relAddrVal)
		}
	case typeSimpleArea, typeConnectedArea:
		n, err := r.u32(abs + 28)
		if err != nil {
			return err
		}
		if n > remaining/4 {
			return newErr(KindFormat, "bad number of entries in area at 0x%x", relAddrVal)
		}
	case typeSet:
		n, err := r.u32(abs + 28 + 4)
		if err != nil {
			return err
		}
		if n > remaining/4 {
			return newErr(KindFormat, "bad number of entries in set at 0x%x", relAddrVal)
		}
	}
	return nil
}

// validateNoCycles runs cycle detection over every SET entry reachable
// from the directory. The original toggles a sentinel into the
// 32-bit entry count it's currently visiting; we use a tri-state
// side-table instead, which leaves the entries untouched and so needs
// no state restored afterwards.
func validateNoCycles(d *directory) error {
	const (
		white = iota
		gray
		black
	)
	color := make(map[uint32]int, len(d.entries))

	var visit func(e *entry) error
	visit = func(e *entry) error {
		switch color[e.hdr.index] {
		case black:
			return nil
		case gray:
			return newErr(KindCycle, "cycle encountered at set %d", e.hdr.index)
		}
		color[e.hdr.index] = gray
		for _, idx := range e.set.entries {
			child, err := d.resolve(idx)
			if err != nil {
				return err
			}
			if child.isSet() {
				if err := visit(child); err != nil {
					return err
				}
			}
		}
		color[e.hdr.index] = black
		return nil
	}

	for _, e := range d.entries {
		if e.isSet() {
			if err := visit(e); err != nil {
				return err
			}
		}
	}
	return nil
}

func typeName(typ uint16) string {
	return fmt.Sprintf("type %d", typ)
}
