package elf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// layoutFile builds a bare model for exercising the re-layout engine
// alone: geometry only, no content and no name table.
func layoutFile(sections []Section, programs []Program) *File {
	return &File{
		Header: Header{
			Class:     Class64,
			Data:      DataLittle,
			Version:   1,
			PhOff:     64,
			Size:      64,
			PhEntSize: 56,
			PhCount:   uint16(len(programs)),
			ShEntSize: 64,
			ShCount:   uint16(len(sections)),
		},
		Programs: programs,
		Sections: sections,
	}
}

func TestShiftNoop(t *testing.T) {
	f := layoutFile(
		[]Section{
			{Type: SectionProgbits, Offset: 140, Size: 15},
			{Type: SectionProgbits, Offset: 160, Size: 4, Align: 16},
			{Type: SectionProgbits, Offset: 164, Size: 4, Align: 4},
		},
		[]Program{
			{Type: SegmentLoad, Offset: 140, FileSize: 24, MemSize: 24, Align: 4},
		},
	)
	f.Header.ShOff = 168
	want := f.Clone()

	require.NoError(t, f.shift(0, 0))
	require.Equal(t, want, f)
}

func TestShiftGrowRealigns(t *testing.T) {
	f := layoutFile(
		[]Section{
			{Type: SectionProgbits, Offset: 140, Size: 15},
			{Type: SectionProgbits, Offset: 160, Size: 4, Align: 16, Addr: 0x10a0},
			{Type: SectionProgbits, Offset: 164, Size: 4, Align: 4, Addr: 0x10a4},
		},
		[]Program{
			{Type: SegmentLoad, Offset: 140, Vaddr: 0x108c, Paddr: 0x108c, FileSize: 24, MemSize: 24, Align: 4},
		},
	)
	f.Header.ShOff = 172

	require.NoError(t, f.shift(1, 1))

	require.Equal(t, uint64(5), f.Sections[1].Size)
	require.Equal(t, uint64(160), f.Sections[1].Offset)
	require.Equal(t, uint64(0x10a0), f.Sections[1].Addr)

	// 164+1 rounded up to the 4-byte alignment
	require.Equal(t, uint64(168), f.Sections[2].Offset)
	require.Equal(t, uint64(0x10a8), f.Sections[2].Addr)

	p := f.Programs[0]
	require.Equal(t, uint64(140), p.Offset)
	require.Equal(t, uint64(0x108c), p.Vaddr)
	require.Equal(t, uint64(25), p.FileSize)
	require.Equal(t, uint64(25), p.MemSize)

	require.Equal(t, uint64(64), f.Header.PhOff)
	require.Equal(t, uint64(176), f.Header.ShOff)
}

func TestShiftGrowIgnoresPadding(t *testing.T) {
	// 5 spare bytes sit between the grown section and the next one.
	// The shift does not reuse them: the next section moves by the
	// full delta and is re-rounded to its own alignment.
	f := layoutFile(
		[]Section{
			{Type: SectionProgbits, Offset: 140, Size: 15},
			{Type: SectionProgbits, Offset: 160, Size: 4, Align: 16},
			{Type: SectionProgbits, Offset: 168, Size: 4, Align: 4},
		},
		[]Program{
			{Type: SegmentLoad, Offset: 140, FileSize: 24, MemSize: 24, Align: 4},
		},
	)
	f.Header.ShOff = 176

	require.NoError(t, f.shift(1, 3))

	require.Equal(t, uint64(7), f.Sections[1].Size)
	require.Equal(t, uint64(172), f.Sections[2].Offset)
	require.Equal(t, uint64(27), f.Programs[0].FileSize)
	require.Equal(t, uint64(184), f.Header.ShOff)
}

func TestShiftShrinkOutsideSegment(t *testing.T) {
	// the section behind the shrunk one is not covered by the
	// segment: it still moves, the segment only shrinks
	f := layoutFile(
		[]Section{
			{Type: SectionProgbits, Offset: 64, Size: 16},
			{Type: SectionProgbits, Offset: 96, Size: 8},
		},
		[]Program{
			{Type: SegmentLoad, Offset: 64, FileSize: 16, MemSize: 16},
		},
	)
	f.Header.ShOff = 104

	require.NoError(t, f.shift(0, -8))

	require.Equal(t, uint64(8), f.Sections[0].Size)
	require.Equal(t, uint64(88), f.Sections[1].Offset)

	p := f.Programs[0]
	require.Equal(t, uint64(64), p.Offset)
	require.Equal(t, uint64(8), p.FileSize)
	require.Equal(t, uint64(8), p.MemSize)
	require.Equal(t, uint64(96), f.Header.ShOff)
}

func TestShiftShrinkInsideSegment(t *testing.T) {
	// both sections are covered by the segment: its end follows the
	// last one
	f := layoutFile(
		[]Section{
			{Type: SectionProgbits, Offset: 64, Size: 16},
			{Type: SectionProgbits, Offset: 96, Size: 8},
		},
		[]Program{
			{Type: SegmentLoad, Offset: 64, FileSize: 40, MemSize: 40},
		},
	)
	f.Header.ShOff = 104

	require.NoError(t, f.shift(0, -8))

	require.Equal(t, uint64(88), f.Sections[1].Offset)

	p := f.Programs[0]
	require.Equal(t, uint64(64), p.Offset)
	require.Equal(t, uint64(32), p.FileSize)
	require.Equal(t, uint64(32), p.MemSize)
}

func TestShiftShrinkCascades(t *testing.T) {
	f := layoutFile(
		[]Section{
			{Type: SectionProgbits, Offset: 64, Size: 48, EntSize: 24},
			{Type: SectionProgbits, Offset: 112, Size: 16},
			{Type: SectionProgbits, Offset: 128, Size: 33},
		},
		[]Program{
			{Type: SegmentLoad, Offset: 0, FileSize: 128, MemSize: 128},
		},
	)
	f.Header.ShOff = 168

	require.NoError(t, f.shift(0, -24))

	require.Equal(t, uint64(24), f.Sections[0].Size)
	require.Equal(t, uint64(88), f.Sections[1].Offset)
	require.Equal(t, uint64(104), f.Sections[2].Offset)

	p := f.Programs[0]
	require.Equal(t, uint64(0), p.Offset)
	require.Equal(t, uint64(104), p.FileSize)
	require.Equal(t, uint64(104), p.MemSize)

	require.Equal(t, uint64(144), f.Header.ShOff)
}

func TestShiftEntryFollows(t *testing.T) {
	f := layoutFile(
		[]Section{
			{Type: SectionProgbits, Offset: 100, Size: 10},
			{Type: SectionProgbits, Offset: 110, Size: 16, Addr: 0x210},
		},
		nil,
	)
	f.Header.ShOff = 126
	f.Header.Entry = 0x218

	require.NoError(t, f.shift(0, 6))

	require.Equal(t, uint64(116), f.Sections[1].Offset)
	require.Equal(t, uint64(0x216), f.Sections[1].Addr)
	require.Equal(t, uint64(0x21e), f.Header.Entry)
}

func TestShiftRejectsShrinkPastZero(t *testing.T) {
	f := layoutFile(
		[]Section{{Type: SectionProgbits, Offset: 64, Size: 48}},
		nil,
	)
	require.ErrorIs(t, f.shift(0, -100), ErrResize)
}

func TestShiftRejectsBrokenEntrySize(t *testing.T) {
	f := layoutFile(
		[]Section{{Type: SectionProgbits, Offset: 64, Size: 48, EntSize: 24}},
		nil,
	)
	require.ErrorIs(t, f.shift(0, 10), ErrResize)
}

func TestShiftRejectsBadTarget(t *testing.T) {
	f := layoutFile(
		[]Section{{Type: SectionProgbits, Offset: 64, Size: 48}},
		nil,
	)
	require.ErrorIs(t, f.shift(3, 8), ErrOutOfRange)
}

func TestShiftRejectsSegmentEndInsideTarget(t *testing.T) {
	f := layoutFile(
		[]Section{
			{Type: SectionProgbits, Offset: 140, Size: 15},
		},
		[]Program{
			{Type: SegmentLoad, Offset: 140, FileSize: 10, MemSize: 10},
		},
	)
	require.ErrorIs(t, f.shift(0, 1), ErrResize)
}
