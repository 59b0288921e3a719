package elf

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// reader decodes fixed-width fields and keeps the first error it
// meets, so a decode sequence reads like the wire layout.
type reader struct {
	r   *bytes.Reader
	ord binary.ByteOrder
	err error
}

func (r *reader) read(v interface{}) {
	if r.err == nil {
		r.err = binary.Read(r.r, r.ord, v)
	}
}

func (r *reader) skip(n int64) {
	if r.err == nil {
		_, r.err = r.r.Seek(n, io.SeekCurrent)
	}
}

type writer struct {
	w   io.Writer
	ord binary.ByteOrder
	err error
}

func (w *writer) write(v interface{}) {
	if w.err == nil {
		w.err = binary.Write(w.w, w.ord, v)
	}
}

// Decode parses a complete ELF image into a layout model. The magic
// number, class, endianness and version are validated first; program
// and section headers are then read at their declared offsets, and
// string/symbol table sections are parsed into their typed content.
// Sections of any other type keep their raw bytes so that encoding
// the model again reproduces the input.
func Decode(data []byte) (*File, error) {
	hdr, err := decodeHeader(data)
	if err != nil {
		return nil, err
	}
	f := File{Header: hdr}

	phend := hdr.PhOff + uint64(hdr.PhCount)*uint64(hdr.PhEntSize)
	if int(hdr.PhEntSize) != programSize(hdr.Class) && hdr.PhCount > 0 {
		return nil, malformed("program header entry size %d", hdr.PhEntSize)
	}
	if phend > uint64(len(data)) || phend < hdr.PhOff {
		return nil, malformed("program header table at %#x ends past file size %#x", hdr.PhOff, len(data))
	}
	for i := 0; i < int(hdr.PhCount); i++ {
		at := hdr.PhOff + uint64(i)*uint64(hdr.PhEntSize)
		p, err := decodeProgram(data[at:phend], hdr)
		if err != nil {
			return nil, errors.Wrapf(err, "program header %d", i)
		}
		f.Programs = append(f.Programs, p)
	}

	shend := hdr.ShOff + uint64(hdr.ShCount)*uint64(hdr.ShEntSize)
	if int(hdr.ShEntSize) != sectionSize(hdr.Class) && hdr.ShCount > 0 {
		return nil, malformed("section header entry size %d", hdr.ShEntSize)
	}
	if shend > uint64(len(data)) || shend < hdr.ShOff {
		return nil, malformed("section header table at %#x ends past file size %#x", hdr.ShOff, len(data))
	}
	for i := 0; i < int(hdr.ShCount); i++ {
		at := hdr.ShOff + uint64(i)*uint64(hdr.ShEntSize)
		s, err := decodeSection(data[at:shend], hdr)
		if err != nil {
			return nil, errors.Wrapf(err, "section header %d", i)
		}
		f.Sections = append(f.Sections, s)
	}
	if int(hdr.Names) >= len(f.Sections) && hdr.ShCount > 0 {
		return nil, malformed("section name table index %d exceeds %d sections", hdr.Names, len(f.Sections))
	}

	for i := range f.Sections {
		if err := decodeContent(&f.Sections[i], data, hdr); err != nil {
			return nil, errors.Wrapf(err, "section %d content", i)
		}
	}
	return &f, nil
}

func decodeHeader(data []byte) (Header, error) {
	var hdr Header
	if len(data) < 16 {
		return hdr, malformed("file of %d bytes is too short", len(data))
	}
	if !bytes.Equal(data[:4], magic) {
		return hdr, malformed("invalid magic %x", data[:4])
	}
	hdr.Class = data[4]
	hdr.Data = data[5]
	hdr.Version = data[6]
	hdr.AbiOs = data[7]
	hdr.AbiVersion = data[8]
	if hdr.Class != Class32 && hdr.Class != Class64 {
		return hdr, malformed("invalid class %d", hdr.Class)
	}
	if hdr.Data != DataLittle && hdr.Data != DataBig {
		return hdr, malformed("invalid data encoding %d", hdr.Data)
	}
	if hdr.Version != 1 {
		return hdr, malformed("invalid version %d", hdr.Version)
	}
	if len(data) < headerSize(hdr.Class) {
		return hdr, malformed("file of %d bytes is too short for its class", len(data))
	}

	rd := reader{r: bytes.NewReader(data[16:]), ord: hdr.ByteOrder()}
	rd.read(&hdr.Type)
	rd.read(&hdr.Machine)
	rd.read(&hdr.FileVersion)
	if hdr.Is32() {
		var entry, phoff, shoff uint32
		rd.read(&entry)
		rd.read(&phoff)
		rd.read(&shoff)
		hdr.Entry = uint64(entry)
		hdr.PhOff = uint64(phoff)
		hdr.ShOff = uint64(shoff)
	} else {
		rd.read(&hdr.Entry)
		rd.read(&hdr.PhOff)
		rd.read(&hdr.ShOff)
	}
	rd.read(&hdr.Flags)
	rd.read(&hdr.Size)
	rd.read(&hdr.PhEntSize)
	rd.read(&hdr.PhCount)
	rd.read(&hdr.ShEntSize)
	rd.read(&hdr.ShCount)
	rd.read(&hdr.Names)
	if rd.err != nil {
		return hdr, malformed("truncated header: %s", rd.err)
	}
	if int(hdr.Size) != headerSize(hdr.Class) {
		return hdr, malformed("declared header size %d", hdr.Size)
	}
	return hdr, nil
}

func decodeProgram(data []byte, hdr Header) (Program, error) {
	var (
		p  Program
		rd = reader{r: bytes.NewReader(data), ord: hdr.ByteOrder()}
	)
	rd.read(&p.Type)
	if hdr.Is32() {
		var offset, vaddr, paddr, filesz, memsz, align uint32
		rd.read(&offset)
		rd.read(&vaddr)
		rd.read(&paddr)
		rd.read(&filesz)
		rd.read(&memsz)
		rd.read(&p.Flags)
		rd.read(&align)
		p.Offset = uint64(offset)
		p.Vaddr = uint64(vaddr)
		p.Paddr = uint64(paddr)
		p.FileSize = uint64(filesz)
		p.MemSize = uint64(memsz)
		p.Align = uint64(align)
	} else {
		rd.read(&p.Flags)
		rd.read(&p.Offset)
		rd.read(&p.Vaddr)
		rd.read(&p.Paddr)
		rd.read(&p.FileSize)
		rd.read(&p.MemSize)
		rd.read(&p.Align)
	}
	if rd.err != nil {
		return p, malformed("truncated program header: %s", rd.err)
	}
	return p, nil
}

func decodeSection(data []byte, hdr Header) (Section, error) {
	var (
		s  Section
		rd = reader{r: bytes.NewReader(data), ord: hdr.ByteOrder()}
	)
	rd.read(&s.Name)
	rd.read(&s.Type)
	if hdr.Is32() {
		var flags, addr, offset, size, align, entsize uint32
		rd.read(&flags)
		rd.read(&addr)
		rd.read(&offset)
		rd.read(&size)
		rd.read(&s.Link)
		rd.read(&s.Info)
		rd.read(&align)
		rd.read(&entsize)
		s.Flags = uint64(flags)
		s.Addr = uint64(addr)
		s.Offset = uint64(offset)
		s.Size = uint64(size)
		s.Align = uint64(align)
		s.EntSize = uint64(entsize)
	} else {
		rd.read(&s.Flags)
		rd.read(&s.Addr)
		rd.read(&s.Offset)
		rd.read(&s.Size)
		rd.read(&s.Link)
		rd.read(&s.Info)
		rd.read(&s.Align)
		rd.read(&s.EntSize)
	}
	if rd.err != nil {
		return s, malformed("truncated section header: %s", rd.err)
	}
	return s, nil
}

func decodeContent(s *Section, data []byte, hdr Header) error {
	if s.FileSize() == 0 {
		s.Content = nil
		return nil
	}
	end := s.Offset + s.Size
	if end > uint64(len(data)) || end < s.Offset {
		return malformed("section range %#x-%#x exceeds file size %#x", s.Offset, end, len(data))
	}
	body := data[s.Offset:end]
	switch s.Type {
	case SectionStrtab:
		s.Content = makeStrings(body)
	case SectionSymtab, SectionDynsym:
		tab, err := decodeSymtab(body, hdr.Class, hdr.ByteOrder())
		if err != nil {
			return err
		}
		s.Content = tab
	default:
		buf := make(Raw, len(body))
		copy(buf, body)
		s.Content = buf
	}
	return nil
}
