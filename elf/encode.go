package elf

import (
	"bytes"
	"encoding/binary"
)

// Encode serializes the model back into a complete file image. Bytes
// not covered by the header, a table or a section content are zero,
// which makes Encode the exact inverse of Decode for files whose gaps
// hold only zeros. The model does not retain gap bytes, so non-zero
// gap content and trailing bytes past the last declared range are not
// reproduced.
func Encode(f *File) ([]byte, error) {
	if err := f.checkContent(); err != nil {
		return nil, err
	}
	var (
		hdr = f.Header
		ord = hdr.ByteOrder()
		out = make([]byte, f.Size())
	)
	copy(out, encodeHeader(hdr))
	for i, p := range f.Programs {
		at := hdr.PhOff + uint64(i)*uint64(hdr.PhEntSize)
		copy(out[at:], encodeProgram(p, hdr.Class, ord))
	}
	for i := range f.Sections {
		s := &f.Sections[i]
		copy(out[s.Offset:], contentBytes(s, hdr.Class, ord))
	}
	for i, s := range f.Sections {
		at := hdr.ShOff + uint64(i)*uint64(hdr.ShEntSize)
		copy(out[at:], encodeSection(s, hdr.Class, ord))
	}
	return out, nil
}

// checkContent verifies that every declared section size matches the
// content actually stored for it before any byte is produced.
func (f *File) checkContent() error {
	for i := range f.Sections {
		s := &f.Sections[i]
		var got uint64
		switch body := s.Content.(type) {
		case nil:
			got = 0
		case *Strings:
			got = uint64(body.Len())
		case *Symtab:
			got = uint64(len(body.Syms)) * symSize(f.Header.Class)
		case Raw:
			got = uint64(len(body))
		default:
			return invalidResize("section %d holds unknown content", i)
		}
		if got != s.FileSize() {
			return invalidResize("section %d declares %d bytes but holds %d", i, s.FileSize(), got)
		}
	}
	return nil
}

func contentBytes(s *Section, class uint8, ord binary.ByteOrder) []byte {
	switch body := s.Content.(type) {
	case *Strings:
		return body.Bytes()
	case *Symtab:
		return encodeSymtab(body, class, ord)
	case Raw:
		return body
	default:
		return nil
	}
}

func encodeHeader(hdr Header) []byte {
	var buf bytes.Buffer
	buf.Write(magic)
	buf.Write([]byte{hdr.Class, hdr.Data, hdr.Version, hdr.AbiOs, hdr.AbiVersion})
	buf.Write(make([]byte, 7))

	wr := writer{w: &buf, ord: hdr.ByteOrder()}
	wr.write(hdr.Type)
	wr.write(hdr.Machine)
	wr.write(hdr.FileVersion)
	if hdr.Is32() {
		wr.write(uint32(hdr.Entry))
		wr.write(uint32(hdr.PhOff))
		wr.write(uint32(hdr.ShOff))
	} else {
		wr.write(hdr.Entry)
		wr.write(hdr.PhOff)
		wr.write(hdr.ShOff)
	}
	wr.write(hdr.Flags)
	wr.write(hdr.Size)
	wr.write(hdr.PhEntSize)
	wr.write(hdr.PhCount)
	wr.write(hdr.ShEntSize)
	wr.write(hdr.ShCount)
	wr.write(hdr.Names)
	return buf.Bytes()
}

func encodeProgram(p Program, class uint8, ord binary.ByteOrder) []byte {
	var (
		buf bytes.Buffer
		wr  = writer{w: &buf, ord: ord}
	)
	wr.write(p.Type)
	if class == Class32 {
		wr.write(uint32(p.Offset))
		wr.write(uint32(p.Vaddr))
		wr.write(uint32(p.Paddr))
		wr.write(uint32(p.FileSize))
		wr.write(uint32(p.MemSize))
		wr.write(p.Flags)
		wr.write(uint32(p.Align))
	} else {
		wr.write(p.Flags)
		wr.write(p.Offset)
		wr.write(p.Vaddr)
		wr.write(p.Paddr)
		wr.write(p.FileSize)
		wr.write(p.MemSize)
		wr.write(p.Align)
	}
	return buf.Bytes()
}

func encodeSection(s Section, class uint8, ord binary.ByteOrder) []byte {
	var (
		buf bytes.Buffer
		wr  = writer{w: &buf, ord: ord}
	)
	wr.write(s.Name)
	wr.write(s.Type)
	if class == Class32 {
		wr.write(uint32(s.Flags))
		wr.write(uint32(s.Addr))
		wr.write(uint32(s.Offset))
		wr.write(uint32(s.Size))
		wr.write(s.Link)
		wr.write(s.Info)
		wr.write(uint32(s.Align))
		wr.write(uint32(s.EntSize))
	} else {
		wr.write(s.Flags)
		wr.write(s.Addr)
		wr.write(s.Offset)
		wr.write(s.Size)
		wr.write(s.Link)
		wr.write(s.Info)
		wr.write(s.Align)
		wr.write(s.EntSize)
	}
	return buf.Bytes()
}
