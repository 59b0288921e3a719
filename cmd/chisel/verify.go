package main

import (
	"fmt"

	"github.com/midbel/cli"
	"github.com/midbel/textwrap"

	"github.com/midbel/chisel/elf"
)

const layoutText = `the file does not follow the strict layout this tool relies on:
the file header first, then the program header table, then every
section in ascending file order with only zero bytes between them, and
the section header table last. Binaries produced by a regular linker
follow it; this one was probably post-processed by another tool.`

func runVerify(cmd *cli.Command, args []string) error {
	if err := cmd.Flag.Parse(args); err != nil {
		return err
	}
	var bad int
	for _, n := range cmd.Flag.Args() {
		f, data, err := openFile(n)
		if err != nil {
			return err
		}
		if err := elf.Verify(data, f); err != nil {
			bad++
			fmt.Printf("%s: %s\n", n, err)
			fmt.Println(textwrap.Wrap(layoutText))
			continue
		}
		fmt.Printf("%s: ok\n", n)
	}
	if bad > 0 {
		return fmt.Errorf("%d file(s) with an unsupported layout", bad)
	}
	return nil
}
