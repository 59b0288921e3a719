package elf

import (
	"bytes"
)

// Reloc is one relocation record with its symbol index and type
// already split out of the packed info field. Relocations are exposed
// read-only: this package never rewrites them, and a removed or
// shifted dynamic symbol is not renumbered into existing records.
type Reloc struct {
	Offset uint64
	Sym    uint32
	Type   uint32
	Addend int64
}

func relSize(class uint8, rela bool) uint64 {
	if class == Class32 {
		if rela {
			return 12
		}
		return 8
	}
	if rela {
		return 24
	}
	return 16
}

// Relocations parses the records of a REL or RELA section on demand
// from its raw bytes.
func (f *File) Relocations(s *Section) ([]Reloc, error) {
	if s.Type != SectionRel && s.Type != SectionRela {
		return nil, notFound("section %s holds no relocations", f.SectionName(s))
	}
	body, ok := s.Content.(Raw)
	if !ok {
		return nil, malformed("relocation section holds no raw content")
	}
	var (
		class = f.Header.Class
		rela  = s.Type == SectionRela
		width = relSize(class, rela)
	)
	if uint64(len(body))%width != 0 {
		return nil, malformed("relocation table size %d is not a multiple of %d", len(body), width)
	}
	var (
		list []Reloc
		rd   = reader{r: bytes.NewReader(body), ord: f.Header.ByteOrder()}
	)
	for i := 0; i < len(body)/int(width); i++ {
		var rel Reloc
		if class == Class32 {
			var offset, info uint32
			rd.read(&offset)
			rd.read(&info)
			rel.Offset = uint64(offset)
			rel.Sym = info >> 8
			rel.Type = info & 0xff
			if rela {
				var addend int32
				rd.read(&addend)
				rel.Addend = int64(addend)
			}
		} else {
			var info uint64
			rd.read(&rel.Offset)
			rd.read(&info)
			rel.Sym = uint32(info >> 32)
			rel.Type = uint32(info)
			if rela {
				rd.read(&rel.Addend)
			}
		}
		list = append(list, rel)
	}
	if rd.err != nil {
		return nil, malformed("truncated relocation table: %s", rd.err)
	}
	return list, nil
}
