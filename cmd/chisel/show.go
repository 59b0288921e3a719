package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"text/template"

	"github.com/midbel/cli"

	"github.com/midbel/chisel/elf"
)

var views = map[string]func(*elf.File) error{
	"header":     showHeader,
	"layout":     showLayout,
	"sections":   showSections,
	"segments":   showSegments,
	"dyn-sym":    showDynsym,
	"shstrtab":   showNames,
	"relocs":     showRelocs,
	"entrypoint": showEntrypoint,
}

func runShow(cmd *cli.Command, args []string) error {
	if err := cmd.Flag.Parse(args); err != nil {
		return err
	}
	show, ok := views[cmd.Flag.Arg(0)]
	if !ok {
		return fmt.Errorf("unknown view %q", cmd.Flag.Arg(0))
	}
	f, _, err := openFile(cmd.Flag.Arg(1))
	if err != nil {
		return err
	}
	return show(f)
}

func showHeader(f *elf.File) error {
	const meta = `{{.Class | class}} {{.Type | etype}} for {{.Machine | machine}}

- class   : {{.Class | class}}
- data    : {{.Data | data}}
- type    : {{.Type | etype}}
- machine : {{.Machine | machine}}
- version : {{.Version}}
- entry   : {{printf "%#x" .Entry}}
- phoff   : {{printf "%#x" .PhOff}} ({{.PhCount}} headers)
- shoff   : {{printf "%#x" .ShOff}} ({{.ShCount}} headers)
- flags   : {{printf "%#x" .Flags}}
- names   : section {{.Names}}
`
	fs := template.FuncMap{
		"class":   elf.ClassString,
		"data":    elf.DataString,
		"etype":   elf.TypeString,
		"machine": elf.MachineString,
	}
	t, err := template.New("header").Funcs(fs).Parse(meta)
	if err != nil {
		return err
	}
	return t.Execute(os.Stdout, f.Header)
}

func showLayout(f *elf.File) error {
	type byterange struct {
		name string
		from uint64
		to   uint64
	}
	var (
		hdr  = f.Header
		list []byterange
	)
	list = append(list, byterange{name: "file header", to: hdr.HeaderSize()})
	if hdr.PhCount > 0 {
		from := hdr.PhOff
		list = append(list, byterange{
			name: "program headers",
			from: from,
			to:   from + uint64(hdr.PhCount)*uint64(hdr.PhEntSize),
		})
	}
	for i := range f.Sections {
		s := &f.Sections[i]
		if s.FileSize() == 0 {
			continue
		}
		list = append(list, byterange{
			name: fmt.Sprintf("section %s", f.SectionName(s)),
			from: s.Offset,
			to:   s.Offset + s.FileSize(),
		})
	}
	if hdr.ShCount > 0 {
		list = append(list, byterange{
			name: "section headers",
			from: hdr.ShOff,
			to:   hdr.ShOff + uint64(hdr.ShCount)*uint64(hdr.ShEntSize),
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].from < list[j].from })

	w := tabwriter.NewWriter(os.Stdout, 12, 2, 2, ' ', 0)
	defer w.Flush()
	for _, r := range list {
		fmt.Fprintf(w, "%#x\t%#x\t%d\t%s\n", r.from, r.to, r.to-r.from, r.name)
	}
	return nil
}

func showSections(f *elf.File) error {
	w := tabwriter.NewWriter(os.Stdout, 12, 2, 2, ' ', 0)
	defer w.Flush()
	for i := range f.Sections {
		s := &f.Sections[i]
		fmt.Fprintf(w, "%d\t%s\t%s\t%#x\t%#x\t%d\t%d\t%d\n",
			i, f.SectionName(s), elf.SectionTypeString(s.Type), s.Addr, s.Offset, s.Size, s.EntSize, s.Link)
	}
	return nil
}

func showSegments(f *elf.File) error {
	w := tabwriter.NewWriter(os.Stdout, 12, 2, 2, ' ', 0)
	defer w.Flush()
	for i := range f.Programs {
		p := &f.Programs[i]
		fmt.Fprintf(w, "%d\t%s\t%#x\t%#x\t%#x\t%d\t%d\t%d\n",
			i, elf.SegmentTypeString(p.Type), p.Flags, p.Offset, p.Vaddr, p.FileSize, p.MemSize, p.Align)
	}
	return nil
}

func showDynsym(f *elf.File) error {
	list, err := f.Dynsym()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 12, 2, 2, ' ', 0)
	defer w.Flush()
	for _, sym := range list {
		fmt.Fprintf(w, "%d\t%s\t%#x\t%d\t%#x\t%d\t%d\n",
			sym.Index, sym.Name, sym.Sym.Value, sym.Sym.Size, sym.Sym.Info, sym.Sym.Other, sym.Sym.Shndx)
	}
	return nil
}

func showNames(f *elf.File) error {
	str, err := f.Names()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 12, 2, 2, ' ', 0)
	defer w.Flush()
	offset := 0
	for _, n := range str.All() {
		fmt.Fprintf(w, "%d\t%s\n", offset, n)
		offset += len(n) + 1
	}
	return nil
}

func showRelocs(f *elf.File) error {
	w := tabwriter.NewWriter(os.Stdout, 12, 2, 2, ' ', 0)
	defer w.Flush()
	for i := range f.Sections {
		s := &f.Sections[i]
		if s.Type != elf.SectionRel && s.Type != elf.SectionRela {
			continue
		}
		list, err := f.Relocations(s)
		if err != nil {
			return err
		}
		for _, rel := range list {
			fmt.Fprintf(w, "%s\t%#x\t%d\t%d\t%d\n",
				f.SectionName(s), rel.Offset, rel.Sym, rel.Type, rel.Addend)
		}
	}
	return nil
}

func showEntrypoint(f *elf.File) error {
	sym, err := f.Entrypoint()
	if err != nil {
		return err
	}
	fmt.Printf("%-8s: %d\n", "index", sym.Index)
	fmt.Printf("%-8s: %s\n", "name", sym.Name)
	fmt.Printf("%-8s: %#x\n", "value", sym.Sym.Value)
	fmt.Printf("%-8s: %d\n", "size", sym.Sym.Size)
	return nil
}
