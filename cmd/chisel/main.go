package main

import (
	"log"
	"os"
	"path/filepath"
	"text/template"

	"github.com/midbel/cli"
	"github.com/pkg/errors"

	"github.com/midbel/chisel/elf"
)

const helpText = `{{.Name}} inspects and modifies ELF binaries.

Usage:

  {{.Name}} command [arguments]

The commands are:

{{range .Commands}}{{printf "  %-9s %s" .String .Short}}
{{end}}

Use {{.Name}} [command] -h for more information about its usage.
`

var commands = []*cli.Command{
	{
		Run:   runShow,
		Usage: "show <view> <binary>",
		Short: "show one view of a binary (header, layout, sections, ...)",
		Alias: []string{"info"},
	},
	{
		Run:   runVerify,
		Usage: "verify <binary,...>",
		Short: "check that binaries have the strict layout modify relies on",
		Alias: []string{"check"},
	},
	{
		Run:   runAdd,
		Usage: "add [-o <output>] [-v] [-value <addr>] [-size <n>] [-info <n>] [-other <n>] [-section <ndx>] <binary> <name>",
		Short: "add a dynamic symbol to a binary",
	},
	{
		Run:   runRemove,
		Usage: "remove [-o <output>] [-v] [-i <index>] <binary> [<name>]",
		Short: "remove a dynamic symbol from a binary",
		Alias: []string{"rm"},
	},
	{
		Run:   runApply,
		Usage: "apply [-o <output>] [-v] <plan.toml> <binary>",
		Short: "apply a batch of dynamic symbol changes from a plan file",
		Alias: []string{"batch"},
	},
	{
		Run:   runArchive,
		Usage: "archive <file.a,...>",
		Short: "list the members of static library archives",
		Alias: []string{"members"},
	},
}

func main() {
	log.SetFlags(0)
	if err := cli.Run(commands, usage); err != nil {
		log.Fatalln(err)
	}
}

func usage() {
	data := struct {
		Name     string
		Commands []*cli.Command
	}{
		Name:     filepath.Base(os.Args[0]),
		Commands: commands,
	}
	t := template.Must(template.New("help").Parse(helpText))
	t.Execute(os.Stderr, data)

	os.Exit(2)
}

func openFile(file string) (*elf.File, []byte, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, nil, err
	}
	f, err := elf.Decode(data)
	if err != nil {
		return nil, nil, errors.Wrap(err, file)
	}
	return f, data, nil
}
