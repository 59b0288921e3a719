package elf

// The dynamic-symbol mutation engine. Both operations compose the
// table views with the re-layout engine and are total: they return a
// fresh, fully consistent model or an error, never a half-updated
// one. The caller's model is read, not touched.

// AddDynsym appends a dynamic symbol. The name is reused when its
// bytes already exist in .dynstr, otherwise it is appended there,
// which is the first resize point; the new entry appended to .dynsym
// is the second. Files carrying a dynamic hash table are refused, see
// guardHashTables.
func (f *File) AddDynsym(name string, value, size uint64, info, other uint8, shndx uint16) (*File, error) {
	if err := f.guardHashTables(); err != nil {
		return nil, err
	}
	g := f.Clone()
	ix, tab, err := g.dynsym()
	if err != nil {
		return nil, err
	}
	si := int(g.Sections[ix].Link)
	str, err := g.linked(&g.Sections[ix])
	if err != nil {
		return nil, err
	}

	offset, ok := str.Lookup(name)
	if !ok {
		offset = str.add(name)
		if err := g.shift(si, int64(len(name))+1); err != nil {
			return nil, err
		}
	}
	tab.Syms = append(tab.Syms, Sym{
		Name:  offset,
		Info:  info,
		Other: other,
		Shndx: shndx,
		Value: value,
		Size:  size,
	})
	if err := g.shift(ix, int64(symSize(g.Header.Class))); err != nil {
		return nil, err
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// RemoveDynsym removes the dynamic symbol at the given table index.
// Index 0 is the reserved null symbol and is never removable. Later
// entries move one slot earlier and .dynsym shrinks by one entry
// width. The name bytes stay in .dynstr: other names may share their
// suffix, and reclaiming them would be one more resize point for no
// structural gain.
func (f *File) RemoveDynsym(index int) (*File, error) {
	if err := f.guardHashTables(); err != nil {
		return nil, err
	}
	if index == 0 {
		return nil, ErrNullSymbol
	}
	g := f.Clone()
	ix, tab, err := g.dynsym()
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(tab.Syms) {
		return nil, outOfRange("dynamic symbol", index, len(tab.Syms))
	}
	tab.Syms = append(tab.Syms[:index], tab.Syms[index+1:]...)
	if err := g.shift(ix, -int64(symSize(g.Header.Class))); err != nil {
		return nil, err
	}
	if err := g.validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// RemoveDynsymNamed resolves an exact symbol name to its index and
// removes that entry. The first entry carrying the name wins.
func (f *File) RemoveDynsymNamed(name string) (*File, error) {
	list, err := f.Dynsym()
	if err != nil {
		return nil, err
	}
	for _, sym := range list {
		if sym.Index > 0 && sym.Name == name {
			return f.RemoveDynsym(sym.Index)
		}
	}
	return nil, notFound("dynamic symbol %s", name)
}
