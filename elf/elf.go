// Package elf decodes ELF binaries into an in-memory layout model,
// projects typed views over their tables, and produces new byte-valid
// files with dynamic symbols added or removed. A File is never edited
// in place: every mutation yields a fresh model, so a failed operation
// leaves the caller's model untouched.
package elf

import (
	"encoding/binary"
)

var magic = []byte{0x7f, 0x45, 0x4c, 0x46}

// File is the decoded layout model: one header, the program header
// table and the section header table, each section carrying its own
// content.
type File struct {
	Header   Header
	Programs []Program
	Sections []Section
}

type Header struct {
	Class       uint8
	Data        uint8
	Version     uint8
	AbiOs       uint8
	AbiVersion  uint8
	Type        uint16
	Machine     uint16
	FileVersion uint32
	Entry       uint64
	PhOff       uint64
	ShOff       uint64
	Flags       uint32
	Size        uint16
	PhEntSize   uint16
	PhCount     uint16
	ShEntSize   uint16
	ShCount     uint16
	Names       uint16
}

func (h Header) Is32() bool {
	return h.Class == Class32
}

func (h Header) Is64() bool {
	return h.Class == Class64
}

// HeaderSize returns the encoded size of the file header for the
// class.
func (h Header) HeaderSize() uint64 {
	return uint64(headerSize(h.Class))
}

func (h Header) ByteOrder() binary.ByteOrder {
	if h.Data == DataBig {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Program describes one runtime-loadable segment.
type Program struct {
	Type     uint32
	Flags    uint32
	Offset   uint64
	Vaddr    uint64
	Paddr    uint64
	FileSize uint64
	MemSize  uint64
	Align    uint64
}

// Section describes one file-layout region together with its content.
type Section struct {
	Name    uint32
	Type    uint32
	Flags   uint64
	Addr    uint64
	Offset  uint64
	Size    uint64
	Link    uint32
	Info    uint32
	Align   uint64
	EntSize uint64

	Content Content
}

// FileSize returns the number of file bytes the section occupies.
// SHT_NOBITS and SHT_NULL sections occupy none regardless of their
// declared size.
func (s Section) FileSize() uint64 {
	if s.Type == SectionNull || s.Type == SectionNobits {
		return 0
	}
	return s.Size
}

// Content is the tagged variant over a section body: *Strings for
// string tables, *Symtab for symbol tables, Raw for everything else
// kept as opaque bytes, nil when the section has no file content.
// Every site that serializes or resizes a section switches over the
// concrete type and treats an unknown one as an error.
type Content interface {
	clone() Content
}

// Raw holds the body of a section whose type the model does not
// interpret, so round-tripping it is lossless.
type Raw []byte

func (r Raw) clone() Content {
	c := make(Raw, len(r))
	copy(c, r)
	return c
}

// Clone returns a deep copy of the model. Mutations operate on a
// clone and discard it on error.
func (f *File) Clone() *File {
	g := File{
		Header:   f.Header,
		Programs: make([]Program, len(f.Programs)),
		Sections: make([]Section, len(f.Sections)),
	}
	copy(g.Programs, f.Programs)
	for i, s := range f.Sections {
		if s.Content != nil {
			s.Content = s.Content.clone()
		}
		g.Sections[i] = s
	}
	return &g
}

// Names returns the section-name string table declared by the header.
func (f *File) Names() (*Strings, error) {
	ix := int(f.Header.Names)
	if ix >= len(f.Sections) {
		return nil, outOfRange("section name table", ix, len(f.Sections))
	}
	str, ok := f.Sections[ix].Content.(*Strings)
	if !ok {
		return nil, corruptTable("section name table is not a string table")
	}
	return str, nil
}

// SectionName resolves the name of the given section, or returns an
// empty string when the name table is unusable.
func (f *File) SectionName(s *Section) string {
	str, err := f.Names()
	if err != nil {
		return ""
	}
	n, err := str.At(s.Name)
	if err != nil {
		return ""
	}
	return n
}

// Section finds a section by its exact name.
func (f *File) Section(name string) (*Section, error) {
	ix, err := f.SectionIndex(name)
	if err != nil {
		return nil, err
	}
	return &f.Sections[ix], nil
}

// SectionIndex finds the index of a section by its exact name.
func (f *File) SectionIndex(name string) (int, error) {
	str, err := f.Names()
	if err != nil {
		return 0, err
	}
	for i := range f.Sections {
		n, err := str.At(f.Sections[i].Name)
		if err != nil {
			continue
		}
		if n == name {
			return i, nil
		}
	}
	return 0, notFound("section %s", name)
}

// Size returns the total file length implied by the model: the end of
// the furthest header table or section.
func (f *File) Size() uint64 {
	end := uint64(headerSize(f.Header.Class))
	if n := f.Header.PhOff + uint64(f.Header.PhCount)*uint64(f.Header.PhEntSize); n > end {
		end = n
	}
	if n := f.Header.ShOff + uint64(f.Header.ShCount)*uint64(f.Header.ShEntSize); n > end {
		end = n
	}
	for i := range f.Sections {
		if n := f.Sections[i].Offset + f.Sections[i].FileSize(); n > end {
			end = n
		}
	}
	return end
}

func headerSize(class uint8) int {
	if class == Class32 {
		return 52
	}
	return 64
}

func programSize(class uint8) int {
	if class == Class32 {
		return 32
	}
	return 56
}

func sectionSize(class uint8) int {
	if class == Class32 {
		return 40
	}
	return 64
}

func wordAlign(class uint8) uint64 {
	if class == Class32 {
		return 4
	}
	return 8
}

func alignUp(v, align uint64) uint64 {
	if align <= 1 {
		return v
	}
	if mod := v % align; mod != 0 {
		v += align - mod
	}
	return v
}
