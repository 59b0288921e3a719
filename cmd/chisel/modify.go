package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/midbel/cli"
	"github.com/midbel/toml"

	"github.com/midbel/chisel/elf"
)

func runAdd(cmd *cli.Command, args []string) error {
	var (
		output  = cmd.Flag.String("o", "", "output file (default: rewrite in place)")
		verbose = cmd.Flag.Bool("v", false, "trace the re-layout")
		value   = cmd.Flag.String("value", "0", "symbol value")
		size    = cmd.Flag.String("size", "0", "symbol size")
		info    = cmd.Flag.Uint("info", 0x12, "symbol info byte")
		other   = cmd.Flag.Uint("other", 0, "symbol other byte")
		section = cmd.Flag.Uint("section", 0, "index of the section the symbol refers to")
	)
	if err := cmd.Flag.Parse(args); err != nil {
		return err
	}
	var (
		file = cmd.Flag.Arg(0)
		name = cmd.Flag.Arg(1)
	)
	if name == "" {
		return fmt.Errorf("missing symbol name")
	}
	val, err := strconv.ParseUint(*value, 0, 64)
	if err != nil {
		return err
	}
	siz, err := strconv.ParseUint(*size, 0, 64)
	if err != nil {
		return err
	}
	f, data, err := openFile(file)
	if err != nil {
		return err
	}
	if err := elf.Verify(data, f); err != nil {
		return err
	}
	g, err := f.AddDynsym(name, val, siz, uint8(*info), uint8(*other), uint16(*section))
	if err != nil {
		return err
	}
	logShifts(newLogger(*verbose), f, g)
	return saveFile(file, *output, g)
}

func runRemove(cmd *cli.Command, args []string) error {
	var (
		output  = cmd.Flag.String("o", "", "output file (default: rewrite in place)")
		verbose = cmd.Flag.Bool("v", false, "trace the re-layout")
		index   = cmd.Flag.Int("i", -1, "index of the symbol to remove")
	)
	if err := cmd.Flag.Parse(args); err != nil {
		return err
	}
	var (
		file = cmd.Flag.Arg(0)
		name = cmd.Flag.Arg(1)
	)
	f, data, err := openFile(file)
	if err != nil {
		return err
	}
	if err := elf.Verify(data, f); err != nil {
		return err
	}
	var g *elf.File
	switch {
	case name != "":
		g, err = f.RemoveDynsymNamed(name)
	case *index >= 0:
		g, err = f.RemoveDynsym(*index)
	default:
		return fmt.Errorf("missing symbol name or index")
	}
	if err != nil {
		return err
	}
	logShifts(newLogger(*verbose), f, g)
	return saveFile(file, *output, g)
}

// plan is the batch-edit manifest: additions are applied first, then
// removals, each in file order, and the result is written only when
// every step succeeds.
type plan struct {
	Add []struct {
		Name    string `toml:"name"`
		Value   uint64 `toml:"value"`
		Size    uint64 `toml:"size"`
		Info    uint8  `toml:"info"`
		Other   uint8  `toml:"other"`
		Section uint16 `toml:"section"`
	} `toml:"add"`
	Remove []struct {
		Name  string `toml:"name"`
		Index int    `toml:"index"`
	} `toml:"remove"`
}

func runApply(cmd *cli.Command, args []string) error {
	var (
		output  = cmd.Flag.String("o", "", "output file (default: rewrite in place)")
		verbose = cmd.Flag.Bool("v", false, "trace the re-layout")
	)
	if err := cmd.Flag.Parse(args); err != nil {
		return err
	}
	r, err := os.Open(cmd.Flag.Arg(0))
	if err != nil {
		return err
	}
	defer r.Close()
	var p plan
	if err := toml.Decode(r, &p); err != nil {
		return err
	}
	file := cmd.Flag.Arg(1)
	f, data, err := openFile(file)
	if err != nil {
		return err
	}
	if err := elf.Verify(data, f); err != nil {
		return err
	}
	logger := newLogger(*verbose)
	g := f
	for _, a := range p.Add {
		h, err := g.AddDynsym(a.Name, a.Value, a.Size, a.Info, a.Other, a.Section)
		if err != nil {
			return err
		}
		logShifts(logger, g, h)
		g = h
	}
	for _, d := range p.Remove {
		var h *elf.File
		if d.Name != "" {
			h, err = g.RemoveDynsymNamed(d.Name)
		} else {
			h, err = g.RemoveDynsym(d.Index)
		}
		if err != nil {
			return err
		}
		logShifts(logger, g, h)
		g = h
	}
	return saveFile(file, *output, g)
}

func saveFile(input, output string, f *elf.File) error {
	data, err := elf.Encode(f)
	if err != nil {
		return err
	}
	if output == "" {
		output = input
	}
	mode := os.FileMode(0755)
	if fi, err := os.Stat(input); err == nil {
		mode = fi.Mode().Perm()
	}
	return os.WriteFile(output, data, mode)
}

func newLogger(verbose bool) log.Logger {
	if !verbose {
		return log.NewNopLogger()
	}
	l := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	return log.With(l, "app", "chisel")
}

// logShifts reports what the re-layout moved between two models.
func logShifts(logger log.Logger, before, after *elf.File) {
	for i := range before.Sections {
		old := &before.Sections[i]
		cur := &after.Sections[i]
		if old.Offset == cur.Offset && old.Size == cur.Size {
			continue
		}
		_ = level.Debug(logger).Log("msg", "section moved",
			"section", after.SectionName(cur),
			"offset", fmt.Sprintf("%#x->%#x", old.Offset, cur.Offset),
			"size", fmt.Sprintf("%d->%d", old.Size, cur.Size))
	}
	if before.Header.ShOff != after.Header.ShOff {
		_ = level.Debug(logger).Log("msg", "section header table moved",
			"offset", fmt.Sprintf("%#x->%#x", before.Header.ShOff, after.Header.ShOff))
	}
}
