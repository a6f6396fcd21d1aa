package loader

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/tagtools/tagfile"
)

// Result is the outcome of loading one reference of a batch.
type Result struct {
	Ref   *tagfile.TagRef
	Entry *Entry
	Err   error
}

// LoadAll loads each reference in refs, at most Config.Parallelism at once.
// Results are returned in the order of refs. A failure to load one reference
// is recorded in its Result, and does not stop the others.
//
// If ctx is canceled, the references that were not yet loaded fail with the
// error of ctx.
func (l *Loader) LoadAll(ctx context.Context, refs []*tagfile.TagRef) []Result {
	results := make([]Result, len(refs))
	g := new(errgroup.Group)
	g.SetLimit(l.cfg.parallelism())
	for i, ref := range refs {
		i, ref := i, ref
		results[i].Ref = ref
		g.Go(func() error {
			results[i].Entry, results[i].Err = l.Load(ctx, ref)
			return nil
		})
	}
	g.Wait()
	return results
}

// Walk loads the dependency closure of tree: every non-null reference in the
// tree, then every reference in the loaded files, and so on. Each distinct
// reference appears once in the returned results, in the order in which it
// was first encountered. Files that fail to load do not contribute further
// references.
//
// Walk returns an error only if ctx is canceled.
func (l *Loader) Walk(ctx context.Context, tree *tagfile.Tree) ([]Result, error) {
	seen := map[string]bool{}
	var all []Result
	next := func(t *tagfile.Tree) (refs []*tagfile.TagRef) {
		for _, ref := range t.Refs() {
			if ref.IsNull() {
				continue
			}
			key := ref.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			refs = append(refs, ref)
		}
		return refs
	}

	level := next(tree)
	for depth := 0; len(level) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		l.log.WithField("depth", depth).Debugf("loading %d dependencies", len(level))
		results := l.LoadAll(ctx, level)
		all = append(all, results...)
		level = nil
		for _, r := range results {
			if r.Err != nil {
				l.log.WithError(r.Err).WithField("ref", r.Ref.String()).Warn("cannot load dependency")
				continue
			}
			level = append(level, next(r.Entry.Tree)...)
		}
	}
	return all, ctx.Err()
}
