package elf

// Verify checks that the raw image follows the strict layout the
// mutation engine relies on: the header, then the program header
// table, then every section in ascending file order, then the section
// header table last, with nothing but zero bytes between those
// ranges. Zero gaps appear for alignment and are tolerated wherever
// they sit; any other arrangement is reported as unsupported.
func Verify(data []byte, f *File) error {
	hdr := f.Header
	covered := uint64(headerSize(hdr.Class))

	phsize := uint64(hdr.PhCount) * uint64(hdr.PhEntSize)
	if hdr.PhOff < covered {
		return badLayout("program header table at %#x overlaps the file header ending at %#x", hdr.PhOff, covered)
	}
	if err := zeroGap(data, covered, hdr.PhOff, "before the program header table"); err != nil {
		return err
	}
	covered = hdr.PhOff + phsize

	if len(f.Sections) < 2 {
		return badLayout("file has %d sections, at least 2 expected", len(f.Sections))
	}
	if first := &f.Sections[0]; first.Offset != 0 || first.Size != 0 {
		return badLayout("first section is not the null section: offset %#x, size %#x", first.Offset, first.Size)
	}
	for i := 1; i < len(f.Sections); i++ {
		s := &f.Sections[i]
		if s.FileSize() == 0 && s.Offset <= covered {
			continue
		}
		if s.Offset < covered {
			return badLayout("section %s at %#x overlaps the previous range ending at %#x",
				f.SectionName(s), s.Offset, covered)
		}
		if err := zeroGap(data, covered, s.Offset, "before section "+f.SectionName(s)); err != nil {
			return err
		}
		covered = s.Offset + s.FileSize()
	}

	shsize := uint64(hdr.ShCount) * uint64(hdr.ShEntSize)
	if hdr.ShOff < covered {
		return badLayout("section header table at %#x overlaps the previous range ending at %#x", hdr.ShOff, covered)
	}
	if err := zeroGap(data, covered, hdr.ShOff, "before the section header table"); err != nil {
		return err
	}
	covered = hdr.ShOff + shsize

	if covered > uint64(len(data)) {
		return badLayout("section header table ends at %#x past the file size %#x", covered, len(data))
	}
	return zeroGap(data, covered, uint64(len(data)), "after the section header table")
}

func zeroGap(data []byte, from, to uint64, where string) error {
	if from >= to || to > uint64(len(data)) {
		return nil
	}
	for at := from; at < to; at++ {
		if data[at] != 0 {
			return badLayout("non-zero byte at %#x in the gap %s", at, where)
		}
	}
	return nil
}
