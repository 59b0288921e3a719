package elf

import (
	"bytes"
	"encoding/binary"
)

// Sym is one fixed-size record of a symbol table. Name is an offset
// into the string table the owning section links to.
type Sym struct {
	Name  uint32
	Info  uint8
	Other uint8
	Shndx uint16
	Value uint64
	Size  uint64
}

// Symtab holds the ordered entries of a SYMTAB or DYNSYM section.
// Index 0 is the reserved null symbol.
type Symtab struct {
	Syms []Sym
}

func (t *Symtab) clone() Content {
	c := make([]Sym, len(t.Syms))
	copy(c, t.Syms)
	return &Symtab{Syms: c}
}

func symSize(class uint8) uint64 {
	if class == Class32 {
		return 16
	}
	return 24
}

func decodeSymtab(data []byte, class uint8, ord binary.ByteOrder) (*Symtab, error) {
	width := symSize(class)
	if uint64(len(data))%width != 0 {
		return nil, malformed("symbol table size %d is not a multiple of %d", len(data), width)
	}
	var (
		tab Symtab
		rd  = reader{r: bytes.NewReader(data), ord: ord}
	)
	for i := 0; i < len(data)/int(width); i++ {
		var sym Sym
		if class == Class32 {
			var value, size uint32
			rd.read(&sym.Name)
			rd.read(&value)
			rd.read(&size)
			rd.read(&sym.Info)
			rd.read(&sym.Other)
			rd.read(&sym.Shndx)
			sym.Value = uint64(value)
			sym.Size = uint64(size)
		} else {
			rd.read(&sym.Name)
			rd.read(&sym.Info)
			rd.read(&sym.Other)
			rd.read(&sym.Shndx)
			rd.read(&sym.Value)
			rd.read(&sym.Size)
		}
		tab.Syms = append(tab.Syms, sym)
	}
	if rd.err != nil {
		return nil, rd.err
	}
	return &tab, nil
}

func encodeSymtab(tab *Symtab, class uint8, ord binary.ByteOrder) []byte {
	var (
		buf bytes.Buffer
		wr  = writer{w: &buf, ord: ord}
	)
	for _, sym := range tab.Syms {
		if class == Class32 {
			wr.write(sym.Name)
			wr.write(uint32(sym.Value))
			wr.write(uint32(sym.Size))
			wr.write(sym.Info)
			wr.write(sym.Other)
			wr.write(sym.Shndx)
		} else {
			wr.write(sym.Name)
			wr.write(sym.Info)
			wr.write(sym.Other)
			wr.write(sym.Shndx)
			wr.write(sym.Value)
			wr.write(sym.Size)
		}
	}
	return buf.Bytes()
}

// Symbol is a symbol table entry together with its position and its
// name resolved from the linked string table.
type Symbol struct {
	Index int
	Name  string
	Sym   Sym
}

// EntrypointSymbol is the well-known name the Entrypoint lookup scans
// for.
const EntrypointSymbol = "entrypoint"

// dynsym locates the .dynsym section and its typed content.
func (f *File) dynsym() (int, *Symtab, error) {
	for i := range f.Sections {
		if f.Sections[i].Type != SectionDynsym {
			continue
		}
		tab, ok := f.Sections[i].Content.(*Symtab)
		if !ok {
			return 0, nil, malformed("dynamic symbol section holds no symbol table")
		}
		return i, tab, nil
	}
	return 0, nil, notFound("dynamic symbol section")
}

// linked resolves the string table the given section links to.
func (f *File) linked(s *Section) (*Strings, error) {
	ix := int(s.Link)
	if ix >= len(f.Sections) {
		return nil, outOfRange("linked section", ix, len(f.Sections))
	}
	str, ok := f.Sections[ix].Content.(*Strings)
	if !ok {
		return nil, corruptTable("linked section %d is not a string table", ix)
	}
	return str, nil
}

// Dynsym lists the dynamic symbol entries in table order with their
// names resolved.
func (f *File) Dynsym() ([]Symbol, error) {
	ix, tab, err := f.dynsym()
	if err != nil {
		return nil, err
	}
	str, err := f.linked(&f.Sections[ix])
	if err != nil {
		return nil, err
	}
	list := make([]Symbol, 0, len(tab.Syms))
	for i, sym := range tab.Syms {
		name, err := str.At(sym.Name)
		if err != nil {
			return nil, err
		}
		list = append(list, Symbol{Index: i, Name: name, Sym: sym})
	}
	return list, nil
}

// Entrypoint scans the dynamic symbols for the one whose resolved
// name is exactly "entrypoint". The comparison is an exact match, not
// a pattern search.
func (f *File) Entrypoint() (Symbol, error) {
	list, err := f.Dynsym()
	if err != nil {
		return Symbol{}, err
	}
	for _, sym := range list {
		if sym.Name == EntrypointSymbol {
			return sym, nil
		}
	}
	return Symbol{}, notFound("%s symbol", EntrypointSymbol)
}
