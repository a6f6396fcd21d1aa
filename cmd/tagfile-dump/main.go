// The tagfile-dump command writes a readable representation of a tag file.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	_ "github.com/tagtools/tagfile/defs"
	"github.com/tagtools/tagfile/tag"
)

const usage = `usage: tagfile-dump [INPUT] [OUTPUT]

Reads a tag file from INPUT, and writes to OUTPUT a readable representation of
its header and body, including the elements of each block and the name of each
tag reference.

INPUT and OUTPUT are paths to files. If INPUT is "-" or unspecified, then stdin
is used. If OUTPUT is "-" or unspecified, then stdout is used. Warnings and
errors are written to stderr.
`

func main() {
	os.Exit(run())
}

func run() int {
	var input io.Reader = os.Stdin
	var output io.Writer = os.Stdout

	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()
	args := flag.Args()
	if len(args) >= 1 && args[0] != "-" {
		in, err := os.Open(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("open input: %w", err))
			return 1
		}
		input = in
		defer in.Close()
	}
	if len(args) >= 2 && args[1] != "-" {
		out, err := os.Create(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, fmt.Errorf("create output: %w", err))
			return 1
		}
		defer out.Close()
		defer func() {
			if err := out.Sync(); err != nil {
				fmt.Fprintln(os.Stderr, fmt.Errorf("sync output: %w", err))
			}
		}()
		output = out
	}

	warn, err := tag.Decoder{}.Dump(output, input)
	if warn != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("warning: %w", warn))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("error: %w", err))
		return 1
	}
	return 0
}
