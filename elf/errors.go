package elf

import (
	"errors"
	"fmt"
)

// The package reports every failure as one of these kinds, wrapped
// with context. Match with errors.Is.
var (
	ErrMalformed    = errors.New("elf: malformed header")
	ErrCorruptTable = errors.New("elf: corrupt string table")
	ErrOutOfRange   = errors.New("elf: out of range")
	ErrResize       = errors.New("elf: invalid resize")
	ErrHashTable    = errors.New("elf: dynamic hash table present")
	ErrNullSymbol   = errors.New("elf: the null symbol can not be removed")
	ErrNotFound     = errors.New("elf: not found")
	ErrLayout       = errors.New("elf: unsupported layout")
)

func malformed(msg string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(msg, args...))
}

func corruptTable(msg string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrCorruptTable, fmt.Sprintf(msg, args...))
}

func outOfRange(what string, got, limit int) error {
	return fmt.Errorf("%w: %s: %d exceeds %d", ErrOutOfRange, what, got, limit)
}

func invalidResize(msg string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrResize, fmt.Sprintf(msg, args...))
}

func badHash(what string) error {
	return fmt.Errorf("%w: %s", ErrHashTable, what)
}

func notFound(msg string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(msg, args...))
}

func badLayout(msg string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrLayout, fmt.Sprintf(msg, args...))
}
