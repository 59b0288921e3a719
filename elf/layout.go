package elf

// The re-layout engine. Resizing a section embedded in the middle of
// the file forces every later section, segment, header table and
// address to move; shift recomputes all of them from one resize point
// and validate rejects any model that breaks the layout invariants.

// span records the file geometry of a section before a shift.
type span struct {
	off uint64
	fsz uint64
}

func shiftu(v uint64, d int64) uint64 {
	return uint64(int64(v) + d)
}

// shift changes the size of one section by delta and cascades the
// change: every section past the resize point moves by the running
// delta and is re-rounded up to its own alignment, its virtual
// address follows its own offset shift, segments are re-pointed and
// resized through their boundary sections, and the header table
// offsets move with everything behind them. The receiver is edited in
// place, so callers operate on a clone and discard it on error.
func (f *File) shift(target int, delta int64) error {
	if target < 0 || target >= len(f.Sections) {
		return outOfRange("section", target, len(f.Sections))
	}
	s := &f.Sections[target]
	if delta < 0 && uint64(-delta) > s.Size {
		return invalidResize("section %s of %d bytes can not shrink by %d", f.SectionName(s), s.Size, -delta)
	}
	size := shiftu(s.Size, delta)
	if s.EntSize > 0 && size%s.EntSize != 0 {
		return invalidResize("section %s size %d is not a multiple of its entry size %d", f.SectionName(s), size, s.EntSize)
	}

	var (
		point = s.Offset
		old   = make([]span, len(f.Sections))
		addrs = make([]uint64, len(f.Sections))
	)
	for i := range f.Sections {
		old[i] = span{off: f.Sections[i].Offset, fsz: f.Sections[i].FileSize()}
		addrs[i] = f.Sections[i].Addr
	}
	s.Size = size

	grow := int64(s.FileSize()) - int64(old[target].fsz)
	run := grow
	shifts := make([]int64, len(f.Sections))
	for j := range f.Sections {
		if j == target || old[j].off <= point {
			continue
		}
		sec := &f.Sections[j]
		next := alignUp(shiftu(old[j].off, run), sec.Align)
		shifts[j] = int64(next) - int64(old[j].off)
		sec.Offset = next
		if sec.Addr != 0 {
			sec.Addr = shiftu(sec.Addr, shifts[j])
		}
		run = shifts[j]
	}

	// The entry address follows the section that holds it.
	if f.Header.Entry != 0 {
		for j := range f.Sections {
			if addrs[j] == 0 || shifts[j] == 0 {
				continue
			}
			if addrs[j] <= f.Header.Entry && f.Header.Entry < addrs[j]+f.Sections[j].Size {
				f.Header.Entry = shiftu(f.Header.Entry, shifts[j])
				break
			}
		}
	}

	ctx := shiftContext{
		target: target,
		point:  point,
		grow:   grow,
		run:    run,
		old:    old,
		shifts: shifts,
	}
	for k := range f.Programs {
		if err := f.reseat(&f.Programs[k], ctx); err != nil {
			return err
		}
	}

	if f.Header.PhOff > point {
		f.Header.PhOff = alignUp(shiftu(f.Header.PhOff, run), wordAlign(f.Header.Class))
	}
	if f.Header.ShOff > point {
		f.Header.ShOff = alignUp(shiftu(f.Header.ShOff, run), wordAlign(f.Header.Class))
	}
	return nil
}

type shiftContext struct {
	target int
	point  uint64
	grow   int64
	run    int64
	old    []span
	shifts []int64
}

// reseat moves one segment so that it still spans the same sections
// it did before the shift: its start follows the section it began at
// and its end follows the section it ended at, with the memory size
// adjusted by the same amount as the file size.
func (f *File) reseat(p *Program, ctx shiftContext) error {
	var (
		oldStart = p.Offset
		oldEnd   = p.Offset + p.FileSize
	)
	newStart := ctx.remapStart(oldStart)
	newEnd, err := ctx.remapEnd(oldEnd)
	if err != nil {
		return err
	}
	if newEnd < newStart {
		return invalidResize("segment %s collapses: %#x-%#x", SegmentTypeString(p.Type), newStart, newEnd)
	}
	ds := int64(newStart) - int64(oldStart)
	dsz := int64(newEnd-newStart) - int64(p.FileSize)
	p.Offset = newStart
	p.Vaddr = shiftu(p.Vaddr, ds)
	p.Paddr = shiftu(p.Paddr, ds)
	p.FileSize = newEnd - newStart
	p.MemSize = shiftu(p.MemSize, dsz)
	return nil
}

// remapStart maps an old file position marking the start of a range
// onto the shifted layout. Positions at or before the resize point do
// not move; a position inside a section moves with that section; a
// position in a gap moves with the section that follows it.
func (c shiftContext) remapStart(pos uint64) uint64 {
	if pos <= c.point {
		return pos
	}
	for j, o := range c.old {
		if pos < o.off || pos == o.off {
			return shiftu(pos, c.shifts[j])
		}
		if pos < o.off+o.fsz {
			return shiftu(pos, c.shifts[j])
		}
	}
	return shiftu(pos, c.run)
}

// remapEnd maps an old file position marking the end of a range. An
// end at the resized section's old end tracks its new end; an end
// inside the resized section is ambiguous and refused; any other end
// moves with the content it closes over.
func (c shiftContext) remapEnd(pos uint64) (uint64, error) {
	if pos <= c.point {
		return pos, nil
	}
	tOld := c.old[c.target]
	if pos == tOld.off+tOld.fsz {
		return shiftu(pos, c.grow), nil
	}
	if pos > tOld.off && pos < tOld.off+tOld.fsz {
		return 0, invalidResize("segment ends at %#x inside the resized section", pos)
	}
	for j, o := range c.old {
		if j == c.target || o.fsz == 0 {
			continue
		}
		if pos > o.off && pos <= o.off+o.fsz {
			return shiftu(pos, c.shifts[j]), nil
		}
	}
	// End in a gap: keep the distance to the content it follows.
	var d int64
	for j, o := range c.old {
		end := o.off + o.fsz
		if end <= pos {
			if j == c.target {
				d = c.grow
			} else {
				d = c.shifts[j]
			}
		}
	}
	return shiftu(pos, d), nil
}

// validate checks every invariant the model promises: ascending
// non-overlapping section ranges within the file, table sizes that
// are exact multiples of their entry size, contents matching their
// declared sizes, offsets staying congruent with addresses modulo
// alignment, and every loaded section kept inside the file range of
// the segment that maps it.
func (f *File) validate() error {
	if err := f.checkContent(); err != nil {
		return err
	}
	total := f.Size()
	last := uint64(0)
	for i := range f.Sections {
		s := &f.Sections[i]
		if s.FileSize() == 0 {
			continue
		}
		if s.Offset < last {
			return invalidResize("section %s at %#x overlaps the previous range ending at %#x",
				f.SectionName(s), s.Offset, last)
		}
		end := s.Offset + s.FileSize()
		if end > total {
			return invalidResize("section %s ends at %#x past the file end %#x", f.SectionName(s), end, total)
		}
		if s.EntSize > 0 && s.Size%s.EntSize != 0 {
			return invalidResize("section %s size %d is not a multiple of its entry size %d",
				f.SectionName(s), s.Size, s.EntSize)
		}
		if s.Addr != 0 && s.Align > 1 && s.Offset%s.Align != s.Addr%s.Align {
			return invalidResize("section %s offset %#x and address %#x disagree modulo %d",
				f.SectionName(s), s.Offset, s.Addr, s.Align)
		}
		last = end
	}
	for k := range f.Programs {
		p := &f.Programs[k]
		if p.Align > 1 && p.Offset%p.Align != p.Vaddr%p.Align {
			return invalidResize("segment %s offset %#x and address %#x disagree modulo %d",
				SegmentTypeString(p.Type), p.Offset, p.Vaddr, p.Align)
		}
		if p.Type != SegmentLoad {
			continue
		}
		for i := range f.Sections {
			s := &f.Sections[i]
			if s.Addr == 0 || s.Addr < p.Vaddr || s.Addr >= p.Vaddr+p.MemSize {
				continue
			}
			if s.FileSize() == 0 {
				continue
			}
			if s.Offset < p.Offset || s.Offset+s.FileSize() > p.Offset+p.FileSize {
				return invalidResize("segment %s no longer contains section %s",
					SegmentTypeString(p.Type), f.SectionName(s))
			}
		}
	}
	return nil
}
