// SPDX-License-Identifier: MIT

package main

// parseEntry dispatches on the entry header's type tag and fully
// decodes the payload that follows it. addrRel is the file-relative
// address (as stored in the directory's addr[] table); the absolute
// offset is relAddr(addrRel).
func parseEntry(r *reader, addrRel uint32) (*entry, error) {
	abs := relAddr(addrRel)
	c := r.at(abs)
	hdr, err := parseEntryHeader(c)
	if err != nil {
		return nil, err
	}

	e := &entry{addr: addrRel, hdr: hdr}
	switch hdr.typ {
	case typePoint2D:
		e.point, err = parsePoint(c, hdr)
	case typePolyline2D:
		e.polyline, err = parsePolyline(c, hdr)
	case typeEllipticalArc:
		e.ellipticalArc, err = parseEllipticalArc(c, hdr)
	case typeLasso2D:
		e.lasso, err = parseLasso(c, hdr)
	case typeTextLine2D:
		e.textLine, err = parseTextLine(c, hdr)
	case typeSimpleArea, typeConnectedArea:
		e.simpleArea, err = parseSimpleArea(c, hdr)
	case typeSet:
		e.set, err = parseSet(c, hdr)
	default:
		// Unsupported entity kind: kept as a bare header. The set
		// engine and renderer simply skip entries with no payload.
	}
	if err != nil {
		return nil, wrapErr(KindFormat, err, "parsing %s entry at 0x%x", typeName(hdr.typ), addrRel)
	}
	return e, nil
}

// parsePoint stops after the (x,y) pair. POINT entries carry a
// trailing entries[] count/list that sgd.c never reads (no call site
// touches point.num_entries); parsing it eagerly would need its own
// validateEntrySize bound, so it's left unparsed rather than trusted.
func parsePoint(c *cursor, hdr entryHeader) (*pointEntity, error) {
	pos, err := c.point()
	if err != nil {
		return nil, err
	}
	return &pointEntity{hdr: hdr, pos: pos}, nil
}

func parsePolyline(c *cursor, hdr entryHeader) (*polylineEntity, error) {
	p1, err := c.u32()
	if err != nil {
		return nil, err
	}
	p2, err := c.u32()
	if err != nil {
		return nil, err
	}
	n, err := c.u32()
	if err != nil {
		return nil, err
	}
	pts := make([]point2, n)
	for i := range pts {
		if pts[i], err = c.point(); err != nil {
			return nil, err
		}
	}
	return &polylineEntity{hdr: hdr, point1: p1, point2: p2, points: pts}, nil
}

func parseEllipticalArc(c *cursor, hdr entryHeader) (*ellipticalArcEntity, error) {
	u7, err := c.u32()
	if err != nil {
		return nil, err
	}
	u8, err := c.u32()
	if err != nil {
		return nil, err
	}
	n, err := c.u32()
	if err != nil {
		return nil, err
	}
	pts := make([]point2, n)
	for i := range pts {
		if pts[i], err = c.point(); err != nil {
			return nil, err
		}
	}
	return &ellipticalArcEntity{hdr: hdr, unk7: u7, unk8: u8, points: pts}, nil
}

func parseLasso(c *cursor, hdr entryHeader) (*lassoEntity, error) {
	n, err := c.u32()
	if err != nil {
		return nil, err
	}
	pts := make([]point2, n)
	for i := range pts {
		if pts[i], err = c.point(); err != nil {
			return nil, err
		}
	}
	return &lassoEntity{hdr: hdr, points: pts}, nil
}

func parseTextLine(c *cursor, hdr entryHeader) (*textLineEntity, error) {
	u7, err := c.u32()
	if err != nil {
		return nil, err
	}
	u8, err := c.u32()
	if err != nil {
		return nil, err
	}
	pos, err := c.point()
	if err != nil {
		return nil, err
	}
	u11, err := c.f32()
	if err != nil {
		return nil, err
	}
	width, err := c.point()
	if err != nil {
		return nil, err
	}
	height, err := c.point()
	if err != nil {
		return nil, err
	}
	end, err := c.point()
	if err != nil {
		return nil, err
	}
	text, err := c.r.cstring(c.offset())
	if err != nil {
		return nil, err
	}
	return &textLineEntity{
		hdr: hdr, unk7: u7, unk8: u8, pos: pos, unk11: u11,
		width: width, height: height, end: end, text: text,
	}, nil
}

func parseSimpleArea(c *cursor, hdr entryHeader) (*simpleAreaEntity, error) {
	n, err := c.u32()
	if err != nil {
		return nil, err
	}
	entries := make([]int32, n)
	for i := range entries {
		if entries[i], err = c.i32(); err != nil {
			return nil, err
		}
	}
	return &simpleAreaEntity{hdr: hdr, entries: entries}, nil
}

func parseSet(c *cursor, hdr entryHeader) (*setEntity, error) {
	attr, err := c.u32()
	if err != nil {
		return nil, err
	}
	n, err := c.u32()
	if err != nil {
		return nil, err
	}
	entries := make([]uint32, n)
	for i := range entries {
		if entries[i], err = c.u32(); err != nil {
			return nil, err
		}
	}
	return &setEntity{hdr: hdr, attr: attr, entries: entries}, nil
}
