package loader

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagtools/tagfile"
	. "github.com/tagtools/tagfile/declare"
	_ "github.com/tagtools/tagfile/defs"
	"github.com/tagtools/tagfile/tag"
)

func writeTag(t *testing.T, root, rel string, dtree Tree) string {
	t.Helper()
	tree, err := dtree.Declare(nil)
	require.NoError(t, err)
	b, _, err := tag.Build(tree)
	require.NoError(t, err)
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, b, 0644))
	return path
}

// fixture writes a scenario that references two sceneries, one of which is
// missing. The present scenery references a missing model.
func fixture(t *testing.T) (root string, scenario string) {
	root = t.TempDir()
	scenario = writeTag(t, root, "scenarios/test.scenario", File("scnr", "BLM!",
		Block("scenery_palette",
			Elem(Value("name", `scenery\rocks\boulder`)),
			Elem(Value("name", `scenery\trees\pine`)),
		),
	))
	writeTag(t, root, "scenery/rocks/boulder.scenery", File("scen", "BLM!",
		Value("bounding_radius", 2),
		Value("model", `models\boulder`),
	))
	return root, scenario
}

func ref(group, name string) *tagfile.TagRef {
	return tagfile.NewTagRef(tagfile.MakeCode(group), name)
}

func newLoader(t *testing.T, root string) *Loader {
	l, err := New(Config{Roots: []string{t.TempDir(), root}})
	require.NoError(t, err)
	return l
}

func count(l *Loader, result string) int {
	return int(testutil.ToFloat64(l.metrics.loads.WithLabelValues(result)))
}

func TestResolve(t *testing.T) {
	root, scenario := fixture(t)
	l := newLoader(t, root)

	path, err := l.Resolve(ref("scnr", `scenarios\test`))
	require.NoError(t, err)
	assert.Equal(t, scenario, path)

	_, err = l.Resolve(ref("scen", `scenery\trees\pine`))
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	_, err = l.Resolve(&tagfile.TagRef{Group: tagfile.MakeCode("scen")})
	assert.Equal(t, ErrNullRef, err)

	_, err = l.Resolve(ref("scnr", `..\..\etc\passwd`))
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestExtension(t *testing.T) {
	cfg := Config{Extensions: map[string]string{"scen": "scn"}}
	assert.Equal(t, "scn", cfg.Extension(tagfile.MakeCode("scen")))
	assert.Equal(t, "bitmap", cfg.Extension(tagfile.MakeCode("bitm")))
	assert.Equal(t, "hud_message_text", cfg.Extension(tagfile.MakeCode("hmt")))
	assert.Equal(t, "zzzz", cfg.Extension(tagfile.MakeCode("zzzz")))
}

func TestLoadCaches(t *testing.T) {
	root, scenario := fixture(t)
	l := newLoader(t, root)
	ctx := context.Background()

	a, err := l.LoadPath(ctx, scenario)
	require.NoError(t, err)
	b, err := l.Load(ctx, ref("scnr", `scenarios\test`))
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.Equal(t, tagfile.MakeCode("scnr"), a.Tree.Header.Group)
	assert.Nil(t, a.Warn)
	assert.Equal(t, 1, count(l, resultMiss))
	assert.Equal(t, 1, count(l, resultHit))
	assert.Equal(t, 1, l.Cached())

	l.Invalidate(scenario)
	assert.Equal(t, 0, l.Cached())
	c, err := l.LoadPath(ctx, scenario)
	require.NoError(t, err)
	assert.NotSame(t, a, c)
	assert.Equal(t, a.Digest, c.Digest)
	assert.Equal(t, 2, count(l, resultMiss))
}

func TestLoadSharesIdenticalContent(t *testing.T) {
	root, scenario := fixture(t)
	l := newLoader(t, root)
	ctx := context.Background()

	b, err := os.ReadFile(scenario)
	require.NoError(t, err)
	other := filepath.Join(root, "scenarios", "copy.scenario")
	require.NoError(t, os.WriteFile(other, b, 0644))

	a, err := l.LoadPath(ctx, scenario)
	require.NoError(t, err)
	c, err := l.LoadPath(ctx, other)
	require.NoError(t, err)

	assert.NotSame(t, a, c)
	assert.Equal(t, other, c.Path)
	assert.Same(t, a.Tree, c.Tree)
	assert.Equal(t, 1, count(l, resultMiss))
	assert.Equal(t, 1, count(l, resultShared))
}

func TestLoadConcurrent(t *testing.T) {
	root, scenario := fixture(t)
	l := newLoader(t, root)
	ctx := context.Background()

	const n = 16
	entries := make([]*Entry, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			e, err := l.LoadPath(ctx, scenario)
			assert.NoError(t, err)
			entries[i] = e
		}(i)
	}
	wg.Wait()

	for _, e := range entries {
		require.NotNil(t, e)
		assert.Same(t, entries[0].Tree, e.Tree)
	}
	assert.Equal(t, 1, count(l, resultMiss))
}

func TestLoadErrors(t *testing.T) {
	root, _ := fixture(t)
	l := newLoader(t, root)
	ctx := context.Background()

	bad := filepath.Join(root, "bad.scenario")
	require.NoError(t, os.WriteFile(bad, []byte("not a tag file"), 0644))
	_, err := l.LoadPath(ctx, bad)
	require.Error(t, err)
	var trunc tag.TruncatedInput
	assert.True(t, errors.As(err, &trunc), "got %v", err)

	_, err = l.LoadPath(ctx, filepath.Join(root, "missing.scenario"))
	assert.Error(t, err)
	assert.Equal(t, 2, count(l, resultError))
	assert.Equal(t, 0, l.Cached())

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = l.LoadPath(canceled, bad)
	assert.Equal(t, context.Canceled, err)
}

func TestLoadWarnings(t *testing.T) {
	root, scenario := fixture(t)
	l := newLoader(t, root)

	b, err := os.ReadFile(scenario)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(scenario, append(b, 0xEE), 0644))

	e, err := l.LoadPath(context.Background(), scenario)
	require.NoError(t, err)
	var trailing tag.TrailingData
	assert.True(t, errors.As(e.Warn, &trailing), "got %v", e.Warn)
	assert.Equal(t, float64(1), testutil.ToFloat64(l.metrics.warnings.WithLabelValues("scnr")))
}

func TestLoadAllIsolatesFailures(t *testing.T) {
	root, _ := fixture(t)
	l := newLoader(t, root)

	refs := []*tagfile.TagRef{
		ref("scen", `scenery\rocks\boulder`),
		ref("scen", `scenery\trees\pine`),
		{Group: tagfile.MakeCode("scen")},
		ref("scnr", `scenarios\test`),
	}
	results := l.LoadAll(context.Background(), refs)
	require.Len(t, results, len(refs))

	for i, r := range results {
		assert.Same(t, refs[i], r.Ref)
	}
	require.NoError(t, results[0].Err)
	assert.Equal(t, tagfile.MakeCode("scen"), results[0].Entry.Tree.Header.Group)
	assert.True(t, errors.Is(results[1].Err, ErrNotFound))
	assert.Equal(t, ErrNullRef, results[2].Err)
	require.NoError(t, results[3].Err)
	assert.Equal(t, tagfile.MakeCode("scnr"), results[3].Entry.Tree.Header.Group)
}

func TestWalk(t *testing.T) {
	root, scenario := fixture(t)
	l := newLoader(t, root)
	ctx := context.Background()

	e, err := l.LoadPath(ctx, scenario)
	require.NoError(t, err)
	results, err := l.Walk(ctx, e.Tree)
	require.NoError(t, err)

	var names []string
	var failed int
	for _, r := range results {
		names = append(names, r.Ref.String())
		if r.Err != nil {
			failed++
		}
	}
	assert.Equal(t, []string{
		`scen:scenery\rocks\boulder`,
		`scen:scenery\trees\pine`,
		`hlmt:models\boulder`,
	}, names)
	assert.Equal(t, 2, failed)
}

func TestWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(Config{}, WithMetrics(reg))
	require.NoError(t, err)
	_, err = New(Config{}, WithMetrics(reg))
	assert.Error(t, err)
}

func TestConfigTOML(t *testing.T) {
	const doc = `
roots = ["tags", "/data/tags"]
cache_size = 64
parallelism = 2

[extensions]
scen = "scenery_v2"
`
	var cfg Config
	require.NoError(t, toml.Unmarshal([]byte(doc), &cfg))
	assert.Equal(t, []string{"tags", "/data/tags"}, cfg.Roots)
	assert.Equal(t, 64, cfg.cacheSize())
	assert.Equal(t, 2, cfg.parallelism())
	assert.Equal(t, "scenery_v2", cfg.Extension(tagfile.MakeCode("scen")))

	assert.Equal(t, DefaultCacheSize, Config{}.cacheSize())
	assert.Greater(t, Config{}.parallelism(), 0)
}
