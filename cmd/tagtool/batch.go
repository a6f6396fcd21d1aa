package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/tagtools/tagfile"
	tagerrors "github.com/tagtools/tagfile/errors"
	"github.com/tagtools/tagfile/tag"
)

// outcome is the result of processing one file of a batch.
type outcome struct {
	Path string
	Tree *tagfile.Tree
	Warn error
	Err  error
	// Detail is an additional message reported for the file.
	Detail string
}

func (t *tool) parallelism() int {
	if n := t.cfg.Loader.Parallelism; n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// batch calls fn for each path, at most parallelism at once. A failure of one
// file is recorded in its outcome, and never stops the others.
func (t *tool) batch(ctx context.Context, paths []string, fn func(o *outcome, b []byte)) []outcome {
	outcomes := make([]outcome, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.parallelism())
	for i, path := range paths {
		o := &outcomes[i]
		o.Path = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				o.Err = err
				return nil
			}
			b, err := os.ReadFile(o.Path)
			if err != nil {
				o.Err = errors.Wrap(err, "read file")
				return nil
			}
			fn(o, b)
			return nil
		})
	}
	g.Wait()
	return outcomes
}

// decode parses b into o.
func decode(o *outcome, b []byte) bool {
	o.Tree, o.Warn, o.Err = tag.Parse(b)
	return o.Err == nil
}

// report writes one line per problem of each outcome, and returns an error if
// any outcome failed.
func (t *tool) report(outcomes []outcome) error {
	var failed int
	for _, o := range outcomes {
		log := t.log.WithField("file", o.Path)
		for _, w := range tagerrors.List(o.Warn) {
			fmt.Fprintf(t.out, "%s: warning: %s\n", o.Path, w)
		}
		switch {
		case o.Err != nil:
			failed++
			fmt.Fprintf(t.out, "%s: error: %s\n", o.Path, o.Err)
			log.WithError(o.Err).Debug("failed")
		case o.Detail != "":
			fmt.Fprintf(t.out, "%s: %s\n", o.Path, o.Detail)
		default:
			fmt.Fprintf(t.out, "%s: ok\n", o.Path)
		}
	}
	t.log.WithFields(logrus.Fields{
		"files":  len(outcomes),
		"failed": failed,
	}).Info("done")
	if failed > 0 {
		return errors.Errorf("%d of %d files failed", failed, len(outcomes))
	}
	return nil
}

func files(c *cli.Context) ([]string, error) {
	if c.NArg() == 0 {
		return nil, errors.New("no files given")
	}
	return c.Args().Slice(), nil
}
