package elf

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeEncodeRoundTrip(t *testing.T) {
	f := testFile()
	data, err := Encode(f)
	require.NoError(t, err)

	g, err := Decode(data)
	require.NoError(t, err)
	require.Equal(t, f.Header, g.Header)
	require.Equal(t, f.Programs, g.Programs)
	require.Len(t, g.Sections, len(f.Sections))

	back, err := Encode(g)
	require.NoError(t, err)
	require.Equal(t, data, back)
}

func TestDecodeTypedContent(t *testing.T) {
	data, err := Encode(testFile())
	require.NoError(t, err)

	f, err := Decode(data)
	require.NoError(t, err)

	s, err := f.Section(".dynsym")
	require.NoError(t, err)
	tab, ok := s.Content.(*Symtab)
	require.True(t, ok)
	require.Len(t, tab.Syms, 3)

	s, err = f.Section(".dynstr")
	require.NoError(t, err)
	str, ok := s.Content.(*Strings)
	require.True(t, ok)
	require.Equal(t, []string{"", "foo", "entrypoint"}, str.All())

	s, err = f.Section(".text")
	require.NoError(t, err)
	_, ok = s.Content.(Raw)
	require.True(t, ok)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data, err := Encode(testFile())
	require.NoError(t, err)
	data[0] = 0x7e

	_, err = Decode(data)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeRejectsBadIdent(t *testing.T) {
	base, err := Encode(testFile())
	require.NoError(t, err)

	for _, bad := range []struct {
		at  int
		val byte
	}{
		{4, 3}, // class
		{5, 0}, // data encoding
		{6, 2}, // version
	} {
		data := append([]byte(nil), base...)
		data[bad.at] = bad.val
		_, err := Decode(data)
		require.ErrorIs(t, err, ErrMalformed)
	}
}

func TestDecodeRejectsTruncation(t *testing.T) {
	data, err := Encode(testFile())
	require.NoError(t, err)

	_, err = Decode(data[:10])
	require.ErrorIs(t, err, ErrMalformed)

	_, err = Decode(data[:40])
	require.ErrorIs(t, err, ErrMalformed)

	// keep the ident but cut the file before the section header table
	_, err = Decode(data[:testFile().Header.ShOff+1])
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeRejectsWrappingTableOffsets(t *testing.T) {
	base, err := Encode(testFile())
	require.NoError(t, err)

	// a table offset near the top of the range makes the table end
	// wrap around zero; the decode must refuse it, not read past the
	// buffer
	for _, at := range []int{32, 40} { // e_phoff, e_shoff
		data := append([]byte(nil), base...)
		binary.LittleEndian.PutUint64(data[at:], ^uint64(55))
		_, err := Decode(data)
		require.ErrorIs(t, err, ErrMalformed)
	}
}

func TestDecodeRejectsBadNamesIndex(t *testing.T) {
	f := testFile()
	f.Header.Names = f.Header.ShCount
	data, err := Encode(f)
	require.NoError(t, err)

	_, err = Decode(data)
	require.ErrorIs(t, err, ErrMalformed)
}

func TestEncodeRejectsSizeMismatch(t *testing.T) {
	f := testFile()
	s, err := f.Section(".dynstr")
	require.NoError(t, err)
	s.Size += 4

	_, err = Encode(f)
	require.ErrorIs(t, err, ErrResize)
}

func TestVerifyStrictLayout(t *testing.T) {
	f := testFile()
	data, err := Encode(f)
	require.NoError(t, err)
	require.NoError(t, Verify(data, f))

	// poison a padding byte between the last section and the section
	// header table
	s := &f.Sections[len(f.Sections)-1]
	gap := s.Offset + s.FileSize()
	require.Less(t, gap, f.Header.ShOff)
	data[gap] = 0xcc
	require.ErrorIs(t, Verify(data, f), ErrLayout)
}
