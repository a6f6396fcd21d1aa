package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/tagtools/tagfile/tag"
)

func (t *tool) check(c *cli.Context) error {
	paths, err := files(c)
	if err != nil {
		return err
	}
	return t.report(t.batch(c.Context, paths, func(o *outcome, b []byte) {
		decode(o, b)
	}))
}

func (t *tool) roundtrip(c *cli.Context) error {
	paths, err := files(c)
	if err != nil {
		return err
	}
	return t.report(t.batch(c.Context, paths, func(o *outcome, b []byte) {
		if !decode(o, b) {
			return
		}
		rebuilt, _, err := tag.Build(o.Tree)
		if err != nil {
			o.Err = err
			return
		}
		if i := mismatch(b, rebuilt); i >= 0 {
			o.Err = fmt.Errorf("rebuilt file differs at offset %d (%d bytes, rebuilt %d bytes)", i, len(b), len(rebuilt))
			return
		}
		o.Detail = "identical"
	}))
}

// mismatch returns the offset of the first byte that differs between a and b,
// or -1 if they are equal.
func mismatch(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return n
	}
	return -1
}
