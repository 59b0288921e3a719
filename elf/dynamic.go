package elf

import (
	"bytes"
)

// DynEntry is one tag/value pair of the .dynamic section.
type DynEntry struct {
	Tag   int64
	Value uint64
}

// DynamicTags parses the .dynamic section up to its terminating NULL
// tag. Files without a dynamic section yield an empty list.
func (f *File) DynamicTags() ([]DynEntry, error) {
	var body Raw
	for i := range f.Sections {
		if f.Sections[i].Type == SectionDynamic {
			raw, ok := f.Sections[i].Content.(Raw)
			if !ok {
				return nil, malformed("dynamic section holds no raw content")
			}
			body = raw
			break
		}
	}
	if body == nil {
		return nil, nil
	}
	var (
		list []DynEntry
		rd   = reader{r: bytes.NewReader(body), ord: f.Header.ByteOrder()}
	)
	for rd.r.Len() > 0 {
		var e DynEntry
		if f.Header.Is32() {
			var tag int32
			var value uint32
			rd.read(&tag)
			rd.read(&value)
			e.Tag = int64(tag)
			e.Value = uint64(value)
		} else {
			rd.read(&e.Tag)
			rd.read(&e.Value)
		}
		if rd.err != nil {
			return nil, malformed("truncated dynamic section: %s", rd.err)
		}
		if e.Tag == TagNull {
			break
		}
		list = append(list, e)
	}
	return list, nil
}

// guardHashTables refuses dynamic symbol mutation when the file
// carries a DT_HASH or DT_GNU_HASH lookup structure: this package
// does not rebuild those tables, and a symbol missing from them would
// be structurally present yet unreachable by the loader, which is
// worse than refusing.
func (f *File) guardHashTables() error {
	for i := range f.Sections {
		switch f.Sections[i].Type {
		case SectionHash, SectionGnuHash:
			return badHash(f.SectionName(&f.Sections[i]))
		}
	}
	tags, err := f.DynamicTags()
	if err != nil {
		return err
	}
	for _, e := range tags {
		if e.Tag == TagHash || e.Tag == TagGnuHash {
			return badHash(TagString(e.Tag))
		}
	}
	return nil
}
