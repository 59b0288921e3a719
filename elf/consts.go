package elf

const (
	Class32 uint8 = 1
	Class64 uint8 = 2
)

const (
	DataLittle uint8 = 1
	DataBig    uint8 = 2
)

const (
	TypeNone uint16 = 0
	TypeRel  uint16 = 1
	TypeExec uint16 = 2
	TypeDyn  uint16 = 3
	TypeCore uint16 = 4
)

const (
	SectionNull     uint32 = 0
	SectionProgbits uint32 = 1
	SectionSymtab   uint32 = 2
	SectionStrtab   uint32 = 3
	SectionRela     uint32 = 4
	SectionHash     uint32 = 5
	SectionDynamic  uint32 = 6
	SectionNote     uint32 = 7
	SectionNobits   uint32 = 8
	SectionRel      uint32 = 9
	SectionShlib    uint32 = 10
	SectionDynsym   uint32 = 11
	SectionInitArr  uint32 = 14
	SectionFiniArr  uint32 = 15
	SectionGnuHash  uint32 = 0x6ffffff6
	SectionVerneed  uint32 = 0x6ffffffe
	SectionVersym   uint32 = 0x6fffffff
)

const (
	SegmentNull       uint32 = 0
	SegmentLoad       uint32 = 1
	SegmentDynamic    uint32 = 2
	SegmentInterp     uint32 = 3
	SegmentNote       uint32 = 4
	SegmentShlib      uint32 = 5
	SegmentPhdr       uint32 = 6
	SegmentTls        uint32 = 7
	SegmentGnuEhFrame uint32 = 0x6474e550
	SegmentGnuStack   uint32 = 0x6474e551
	SegmentGnuRelro   uint32 = 0x6474e552
)

const (
	TagNull    int64 = 0
	TagNeeded  int64 = 1
	TagHash    int64 = 4
	TagStrtab  int64 = 5
	TagSymtab  int64 = 6
	TagRela    int64 = 7
	TagStrsz   int64 = 10
	TagSyment  int64 = 11
	TagSoname  int64 = 14
	TagRel     int64 = 17
	TagGnuHash int64 = 0x6ffffef5
)

const flagAlloc uint64 = 0x2

func ClassString(c uint8) string {
	switch c {
	case Class32:
		return "ELF32"
	case Class64:
		return "ELF64"
	default:
		return "unknown"
	}
}

func DataString(d uint8) string {
	switch d {
	case DataLittle:
		return "little endian"
	case DataBig:
		return "big endian"
	default:
		return "unknown"
	}
}

func TypeString(t uint16) string {
	switch t {
	case TypeNone:
		return "NONE"
	case TypeRel:
		return "REL"
	case TypeExec:
		return "EXEC"
	case TypeDyn:
		return "DYN"
	case TypeCore:
		return "CORE"
	default:
		return "other"
	}
}

func MachineString(m uint16) string {
	switch m {
	case 0x03:
		return "x86"
	case 0x08:
		return "MIPS"
	case 0x14:
		return "PowerPC"
	case 0x28:
		return "ARM"
	case 0x3e:
		return "x86-64"
	case 0xb7:
		return "AArch64"
	case 0xf3:
		return "RISC-V"
	default:
		return "other"
	}
}

func SectionTypeString(t uint32) string {
	switch t {
	case SectionNull:
		return "NULL"
	case SectionProgbits:
		return "PROGBITS"
	case SectionSymtab:
		return "SYMTAB"
	case SectionStrtab:
		return "STRTAB"
	case SectionRela:
		return "RELA"
	case SectionHash:
		return "HASH"
	case SectionDynamic:
		return "DYNAMIC"
	case SectionNote:
		return "NOTE"
	case SectionNobits:
		return "NOBITS"
	case SectionRel:
		return "REL"
	case SectionShlib:
		return "SHLIB"
	case SectionDynsym:
		return "DYNSYM"
	case SectionInitArr:
		return "INIT_ARRAY"
	case SectionFiniArr:
		return "FINI_ARRAY"
	case SectionGnuHash:
		return "GNU_HASH"
	case SectionVerneed:
		return "GNU_verneed"
	case SectionVersym:
		return "GNU_versym"
	default:
		return "other"
	}
}

func SegmentTypeString(t uint32) string {
	switch t {
	case SegmentNull:
		return "NULL"
	case SegmentLoad:
		return "LOAD"
	case SegmentDynamic:
		return "DYNAMIC"
	case SegmentInterp:
		return "INTERP"
	case SegmentNote:
		return "NOTE"
	case SegmentShlib:
		return "SHLIB"
	case SegmentPhdr:
		return "PHDR"
	case SegmentTls:
		return "TLS"
	case SegmentGnuEhFrame:
		return "GNU_EH_FRAME"
	case SegmentGnuStack:
		return "GNU_STACK"
	case SegmentGnuRelro:
		return "GNU_RELRO"
	default:
		return "other"
	}
}

func TagString(t int64) string {
	switch t {
	case TagNull:
		return "NULL"
	case TagNeeded:
		return "NEEDED"
	case TagHash:
		return "HASH"
	case TagStrtab:
		return "STRTAB"
	case TagSymtab:
		return "SYMTAB"
	case TagRela:
		return "RELA"
	case TagStrsz:
		return "STRSZ"
	case TagSyment:
		return "SYMENT"
	case TagSoname:
		return "SONAME"
	case TagRel:
		return "REL"
	case TagGnuHash:
		return "GNU_HASH"
	default:
		return "other"
	}
}
