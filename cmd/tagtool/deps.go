package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/tagtools/tagfile/loader"
)

func (t *tool) deps(c *cli.Context) error {
	paths, err := files(c)
	if err != nil {
		return err
	}
	l, err := loader.New(t.cfg.Loader, loader.WithLogger(t.log))
	if err != nil {
		return err
	}
	onlyMissing := c.Bool("missing")

	var failed int
	for _, path := range paths {
		entry, err := l.LoadPath(c.Context, path)
		if err != nil {
			failed++
			fmt.Fprintf(t.out, "%s: error: %s\n", path, err)
			continue
		}
		results, err := l.Walk(c.Context, entry.Tree)
		if err != nil {
			return errors.Wrapf(err, "walk %s", path)
		}
		fmt.Fprintf(t.out, "%s:\n", path)
		for _, r := range results {
			switch {
			case r.Err != nil:
				fmt.Fprintf(t.out, "\t%s\tmissing: %s\n", r.Ref, r.Err)
			case !onlyMissing:
				fmt.Fprintf(t.out, "\t%s\t%s\n", r.Ref, r.Entry.Path)
			}
		}
	}
	if failed > 0 {
		return errors.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}
