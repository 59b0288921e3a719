package elf

import (
	"bytes"
	"strings"
)

// Strings is a NUL-terminated string table addressed by byte offset.
// Offset 0 is always the empty string. Names may share bytes: a name
// that is the suffix of another starts inside the longer one.
type Strings struct {
	data []byte
}

func makeStrings(data []byte) *Strings {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Strings{data: buf}
}

func (s *Strings) clone() Content {
	return makeStrings(s.data)
}

func (s *Strings) Len() int {
	return len(s.data)
}

func (s *Strings) Bytes() []byte {
	return s.data
}

// At reads the NUL-terminated name starting at the given offset.
// Offsets past the declared size, and names missing their terminator,
// are reported as corruption instead of being read past the table.
func (s *Strings) At(offset uint32) (string, error) {
	if int64(offset) >= int64(len(s.data)) {
		return "", corruptTable("offset %d exceeds table size %d", offset, len(s.data))
	}
	x := bytes.IndexByte(s.data[offset:], 0)
	if x < 0 {
		return "", corruptTable("name at offset %d has no terminator", offset)
	}
	return string(s.data[offset : int(offset)+x]), nil
}

// Lookup finds the offset of an existing name, matching shared
// suffixes too, so adding a name that is already stored reuses its
// bytes.
func (s *Strings) Lookup(name string) (uint32, bool) {
	want := append([]byte(name), 0)
	x := bytes.Index(s.data, want)
	if x < 0 {
		return 0, false
	}
	return uint32(x), true
}

// add appends a new NUL-terminated name and returns its offset.
func (s *Strings) add(name string) uint32 {
	offset := uint32(len(s.data))
	s.data = append(s.data, name...)
	s.data = append(s.data, 0)
	return offset
}

// All lists every name in table order, splitting on the terminators.
// The leading empty string at offset 0 is included.
func (s *Strings) All() []string {
	if len(s.data) == 0 {
		return nil
	}
	list := strings.Split(string(s.data), "\x00")
	if n := len(list); n > 0 && list[n-1] == "" {
		list = list[:n-1]
	}
	return list
}
