package elf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testFile builds a small 64-bit little-endian shared object with a
// null section, .text, a three-entry .dynsym (null, foo, entrypoint),
// its .dynstr, optional extra sections, and .shstrtab last. One LOAD
// segment spans the file content from offset 0 to the end of the last
// allocated section, and a GNU_STACK segment sits at 0/0. Offsets are
// laid out sequentially so variants stay consistent by construction.
func testFile(extra ...Section) *File {
	hdr := Header{
		Class:       Class64,
		Data:        DataLittle,
		Version:     1,
		Type:        TypeDyn,
		Machine:     0x3e,
		FileVersion: 1,
		PhOff:       64,
		Size:        64,
		PhEntSize:   56,
		ShEntSize:   64,
	}

	dynstr := makeStrings([]byte{0})
	dynstr.add("foo")
	dynstr.add(EntrypointSymbol)

	syms := &Symtab{Syms: []Sym{
		{},
		{Name: 1, Info: 0x12, Shndx: 1, Value: 0x10b0, Size: 8},
		{Name: 5, Info: 0x12, Shndx: 1, Value: 0x10b8, Size: 16},
	}}

	text := make(Raw, 32)
	for i := range text {
		text[i] = 0x90
	}

	sections := []Section{
		{Type: SectionNull},
		{Type: SectionProgbits, Flags: 0x6, Align: 16, Content: text, Size: 32},
		{Type: SectionDynsym, Flags: flagAlloc, Align: 8, EntSize: 24, Link: 3, Info: 1, Content: syms, Size: 72},
		{Type: SectionStrtab, Flags: flagAlloc, Align: 1, Content: dynstr, Size: uint64(dynstr.Len())},
	}
	names := []string{"", ".text", ".dynsym", ".dynstr"}
	for _, s := range extra {
		sections = append(sections, s)
		names = append(names, "")
	}
	sections = append(sections, Section{Type: SectionStrtab, Align: 1})
	names = append(names, ".shstrtab")

	for i := range extra {
		names[4+i] = extraName(i)
	}
	shstr := makeStrings([]byte{0})
	for i, n := range names {
		if n != "" {
			sections[i].Name = shstr.add(n)
		}
	}
	last := len(sections) - 1
	sections[last].Content = shstr
	sections[last].Size = uint64(shstr.Len())

	cur := hdr.PhOff + 2*uint64(hdr.PhEntSize)
	lastAlloc := uint64(0)
	for i := 1; i < len(sections); i++ {
		s := &sections[i]
		cur = alignUp(cur, s.Align)
		s.Offset = cur
		if s.Flags&flagAlloc != 0 {
			s.Addr = 0x1000 + cur
		}
		cur += s.FileSize()
		if s.Flags&flagAlloc != 0 {
			lastAlloc = cur
		}
	}
	hdr.ShOff = alignUp(cur, 8)
	hdr.ShCount = uint16(len(sections))
	hdr.PhCount = 2
	hdr.Names = uint16(last)
	hdr.Entry = sections[1].Addr

	programs := []Program{
		{Type: SegmentLoad, Flags: 0x5, Offset: 0, Vaddr: 0x1000, Paddr: 0x1000, FileSize: lastAlloc, MemSize: lastAlloc, Align: 0x1000},
		{Type: SegmentGnuStack, Flags: 0x6, Align: 16},
	}
	return &File{Header: hdr, Programs: programs, Sections: sections}
}

func extraName(i int) string {
	names := []string{".dynamic", ".hash"}
	if i < len(names) {
		return names[i]
	}
	return ".extra"
}

// withGnuHashTag adds a .dynamic section whose tags announce a
// GNU-style hash table.
func withGnuHashTag() *File {
	body := make(Raw, 32)
	ord := Header{Class: Class64, Data: DataLittle}.ByteOrder()
	ord.PutUint64(body[0:], uint64(TagGnuHash))
	ord.PutUint64(body[8:], 0x1200)
	// remaining 16 bytes are the terminating NULL tag
	return testFile(Section{
		Type: SectionDynamic, Flags: flagAlloc, Align: 8, EntSize: 16, Link: 3,
		Content: body, Size: uint64(len(body)),
	})
}

// withHashSection adds a bare SHT_HASH section.
func withHashSection() *File {
	body := make(Raw, 16)
	return testFile(Section{
		Type: SectionHash, Flags: flagAlloc, Align: 8, EntSize: 4, Link: 2,
		Content: body, Size: uint64(len(body)),
	})
}

func TestSectionLookup(t *testing.T) {
	f := testFile()

	s, err := f.Section(".dynsym")
	require.NoError(t, err)
	require.Equal(t, SectionDynsym, s.Type)
	require.Equal(t, ".dynsym", f.SectionName(s))

	_, err = f.Section(".bogus")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDynsymNames(t *testing.T) {
	f := testFile()

	list, err := f.Dynsym()
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "", list[0].Name)
	require.Equal(t, "foo", list[1].Name)
	require.Equal(t, "entrypoint", list[2].Name)
	require.Equal(t, uint64(0x10b0), list[1].Sym.Value)
}

func TestEntrypointLookup(t *testing.T) {
	f := testFile()

	sym, err := f.Entrypoint()
	require.NoError(t, err)
	require.Equal(t, 2, sym.Index)
	require.Equal(t, uint64(0x10b8), sym.Sym.Value)

	g, err := f.RemoveDynsym(2)
	require.NoError(t, err)
	_, err = g.Entrypoint()
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFixtureIsValid(t *testing.T) {
	f := testFile()
	require.NoError(t, f.validate())

	data, err := Encode(f)
	require.NoError(t, err)
	require.NoError(t, Verify(data, f))
}
