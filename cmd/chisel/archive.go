package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/midbel/cli"
	"github.com/midbel/tape/ar"

	"github.com/midbel/chisel/elf"
)

func runArchive(cmd *cli.Command, args []string) error {
	if err := cmd.Flag.Parse(args); err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 12, 2, 2, ' ', 0)
	defer w.Flush()
	for _, n := range cmd.Flag.Args() {
		if err := listArchive(w, n); err != nil {
			return fmt.Errorf("%s: %w", n, err)
		}
	}
	return nil
}

// listArchive walks the ar members of a static library and identifies
// the ELF objects among them.
func listArchive(w io.Writer, file string) error {
	r, err := os.Open(file)
	if err != nil {
		return err
	}
	defer r.Close()
	a, err := ar.NewReader(r)
	if err != nil {
		return err
	}
	for {
		h, err := a.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, io.LimitReader(a, h.Size)); err != nil {
			return err
		}
		kind := "data"
		if f, err := elf.Decode(buf.Bytes()); err == nil {
			kind = fmt.Sprintf("%s %s %s",
				elf.ClassString(f.Header.Class),
				elf.TypeString(f.Header.Type),
				elf.MachineString(f.Header.Machine))
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", h.Filename, h.Size, h.ModTime.Format("2006-01-02 15:04"), kind)
	}
	return nil
}
