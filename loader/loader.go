// The loader package resolves tag references to files, and loads them through
// the tag codec.
//
// A Loader parses each file at most once. Parsed files are kept in an LRU
// cache by path, concurrent loads of the same path are merged, and files with
// identical content share the same parsed tree. Trees returned by a Loader are
// shared, and must be copied before they are modified.
package loader

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"
	"github.com/golang/groupcache/singleflight"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"github.com/tagtools/tagfile"
	tagerrors "github.com/tagtools/tagfile/errors"
	"github.com/tagtools/tagfile/tag"
)

var (
	// ErrNullRef is returned when loading a null reference.
	ErrNullRef = errors.New("null tag reference")
	// ErrNotFound is returned when a reference does not resolve to a file
	// under any root.
	ErrNotFound = errors.New("tag file not found")
)

// Entry is a loaded tag file.
type Entry struct {
	// Path is the cleaned path of the file.
	Path string
	// Digest is the BLAKE2b-256 digest of the content of the file.
	Digest [blake2b.Size256]byte
	// Tree is the parsed content of the file.
	Tree *tagfile.Tree
	// Warn holds the warnings produced while parsing, or nil.
	Warn error
}

// parsed is the result of parsing the content of a file, shared by entries
// with the same digest.
type parsed struct {
	tree *tagfile.Tree
	warn error
}

// Loader loads tag files. A Loader is safe for concurrent use.
type Loader struct {
	cfg        Config
	dec        tag.Decoder
	log        logrus.FieldLogger
	registerer prometheus.Registerer
	metrics    *metrics

	group singleflight.Group

	mu      sync.Mutex
	entries *lru.Cache // path -> *Entry
	trees   *lru.Cache // digest -> *parsed
}

// New returns a Loader configured by cfg.
func New(cfg Config, opts ...Option) (*Loader, error) {
	l := &Loader{
		cfg:     cfg,
		metrics: newMetrics(),
		entries: lru.New(cfg.cacheSize()),
		trees:   lru.New(cfg.cacheSize()),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		log := logrus.New()
		log.SetOutput(io.Discard)
		l.log = log
	}
	if l.registerer != nil {
		if err := l.metrics.register(l.registerer); err != nil {
			return nil, errors.Wrap(err, "register loader metrics")
		}
	}
	return l, nil
}

// Config returns the configuration of the Loader.
func (l *Loader) Config() Config {
	return l.cfg
}

// Resolve returns the path of the file referred to by ref. Each root is
// searched in order, and the first existing file is returned.
func (l *Loader) Resolve(ref *tagfile.TagRef) (string, error) {
	if ref.IsNull() {
		return "", ErrNullRef
	}
	rel := filepath.Clean(filepath.FromSlash(strings.ReplaceAll(ref.Name, `\`, "/")))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("tag name %q escapes its root", ref.Name)
	}
	rel += "." + l.cfg.Extension(ref.Group)
	for _, root := range l.cfg.Roots {
		path := filepath.Join(root, rel)
		fi, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", errors.Wrapf(err, "resolve %s", ref)
		}
		if fi.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", errors.Wrapf(ErrNotFound, "resolve %s", ref)
}

// Load resolves ref and loads the file it refers to.
func (l *Loader) Load(ctx context.Context, ref *tagfile.TagRef) (*Entry, error) {
	path, err := l.Resolve(ref)
	if err != nil {
		l.metrics.loads.WithLabelValues(resultError).Inc()
		return nil, err
	}
	entry, err := l.LoadPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if entry.Tree.Header.Group != ref.Group && !ref.Group.IsNull() {
		l.log.WithFields(logrus.Fields{
			"ref":   ref.String(),
			"path":  path,
			"group": entry.Tree.Header.Group.String(),
		}).Warn("referenced file has a different group")
	}
	return entry, nil
}

// LoadPath loads the file at path. A file that is cached is not read again.
func (l *Loader) LoadPath(ctx context.Context, path string) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path = filepath.Clean(path)

	l.mu.Lock()
	v, ok := l.entries.Get(path)
	l.mu.Unlock()
	if ok {
		l.metrics.loads.WithLabelValues(resultHit).Inc()
		return v.(*Entry), nil
	}

	v, err := l.group.Do(path, func() (interface{}, error) {
		return l.load(path)
	})
	if err != nil {
		l.metrics.loads.WithLabelValues(resultError).Inc()
		return nil, err
	}
	return v.(*Entry), nil
}

func (l *Loader) load(path string) (*Entry, error) {
	log := l.log.WithField("path", path)

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", path)
	}
	l.metrics.bytesRead.Add(float64(len(b)))

	entry := &Entry{Path: path, Digest: blake2b.Sum256(b)}

	l.mu.Lock()
	v, ok := l.trees.Get(entry.Digest)
	l.mu.Unlock()
	if ok {
		p := v.(*parsed)
		entry.Tree, entry.Warn = p.tree, p.warn
		l.metrics.loads.WithLabelValues(resultShared).Inc()
		log.Debug("reusing tree of identical file")
	} else {
		tree, warn, err := l.dec.DecodeBytes(b)
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s", path)
		}
		entry.Tree, entry.Warn = tree, warn
		l.metrics.loads.WithLabelValues(resultMiss).Inc()
		log.WithFields(logrus.Fields{
			"group":  tree.Header.Group.String(),
			"engine": tree.Header.Engine.String(),
			"size":   len(b),
		}).Debug("parsed tag file")
	}

	if warns := tagerrors.List(entry.Warn); len(warns) > 0 {
		l.metrics.warnings.WithLabelValues(entry.Tree.Header.Group.String()).Add(float64(len(warns)))
		for _, w := range warns {
			log.WithError(w).Warn("tag file has problems")
		}
	}

	l.mu.Lock()
	l.trees.Add(entry.Digest, &parsed{tree: entry.Tree, warn: entry.Warn})
	l.entries.Add(path, entry)
	l.mu.Unlock()
	return entry, nil
}

// Invalidate removes the file at path from the cache, so that the next load
// reads it again.
func (l *Loader) Invalidate(path string) {
	path = filepath.Clean(path)
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.entries.Get(path); ok {
		l.trees.Remove(v.(*Entry).Digest)
		l.entries.Remove(path)
	}
}

// Cached returns the number of files in the cache.
func (l *Loader) Cached() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries.Len()
}
