package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/tagtools/tagfile/declare"
	"github.com/tagtools/tagfile/tag"
)

func writeTag(t *testing.T, path string, dtree Tree) []byte {
	t.Helper()
	tree, err := dtree.Declare(nil)
	require.NoError(t, err)
	b, _, err := tag.Build(tree)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, b, 0644))
	return b
}

type fixture struct {
	root     string
	scenario string
	scenery  string
	trailing string
	bad      string
}

func newFixture(t *testing.T) fixture {
	root := t.TempDir()
	f := fixture{
		root:     root,
		scenario: filepath.Join(root, "scenarios", "test.scenario"),
		scenery:  filepath.Join(root, "scenery", "rocks", "boulder.scenery"),
		trailing: filepath.Join(root, "trailing.light"),
		bad:      filepath.Join(root, "bad.light"),
	}
	writeTag(t, f.scenario, File("scnr", "BLM!",
		Block("scenery_palette",
			Elem(Value("name", `scenery\rocks\boulder`)),
			Elem(Value("name", `scenery\trees\pine`)),
		),
	))
	writeTag(t, f.scenery, File("scen", "BLM!",
		Value("model", `models\boulder`),
	))
	b := writeTag(t, f.trailing, File("ligh", "blam", Value("radius", 1)))
	require.NoError(t, os.WriteFile(f.trailing, append(b, 0, 0), 0644))
	require.NoError(t, os.WriteFile(f.bad, b[:len(b)-8], 0644))
	return f
}

func run(t *testing.T, args ...string) (*tool, string, error) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	var out bytes.Buffer
	app, tl := newApp(&out, log)
	err := app.Run(append([]string{"tagtool"}, args...))
	return tl, out.String(), err
}

func lines(s string) []string {
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

func TestConfigure(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "tagtool.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[loader]
roots = ["a", "b"]
parallelism = 3

[loader.extensions]
scen = "scn"
`), 0644))

	tl, _, err := run(t, "--config", path, "check", f.scenario)
	require.NoError(t, err)
	assert.Equal(t, "debug", tl.cfg.LogLevel)
	assert.Equal(t, []string{"a", "b"}, tl.cfg.Loader.Roots)
	assert.Equal(t, 3, tl.cfg.Loader.Parallelism)
	assert.Equal(t, "scn", tl.cfg.Loader.Extensions["scen"])
	assert.Equal(t, logrus.DebugLevel, tl.log.GetLevel())

	tl, _, err = run(t, "--config", path, "--root", "c", "-j", "1", "--log-level", "warn", "check", f.scenario)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, tl.cfg.Loader.Roots)
	assert.Equal(t, 1, tl.cfg.Loader.Parallelism)
	assert.Equal(t, "warn", tl.cfg.LogLevel)

	_, _, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "check", f.scenario)
	assert.Error(t, err)

	_, _, err = run(t, "--log-level", "loud", "check", f.scenario)
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	f := newFixture(t)
	_, out, err := run(t, "check", f.scenario, f.bad, f.trailing, f.scenery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 4 files failed")

	got := lines(out)
	require.Len(t, got, 5)
	assert.Equal(t, f.scenario+": ok", got[0])
	assert.True(t, strings.HasPrefix(got[1], f.bad+": error: "), got[1])
	assert.True(t, strings.HasPrefix(got[2], f.trailing+": warning: "), got[2])
	assert.Contains(t, got[2], "trailing")
	assert.Equal(t, f.trailing+": ok", got[3])
	assert.Equal(t, f.scenery+": ok", got[4])
}

func TestCheckNoFiles(t *testing.T) {
	_, _, err := run(t, "check")
	assert.Error(t, err)
}

func TestRoundtrip(t *testing.T) {
	f := newFixture(t)
	_, out, err := run(t, "roundtrip", f.scenario, f.scenery)
	require.NoError(t, err)
	assert.Equal(t, []string{
		f.scenario + ": identical",
		f.scenery + ": identical",
	}, lines(out))

	_, out, err = run(t, "roundtrip", f.trailing)
	require.Error(t, err)
	assert.Contains(t, out, "differs at offset")
}

func TestStat(t *testing.T) {
	f := newFixture(t)
	_, out, err := run(t, "stat", f.scenario, f.scenery, f.bad)
	require.NoError(t, err)

	var stats struct {
		FileCount      int
		FailedCount    int
		GroupCount     map[string]int
		ElementCount   int
		ReferenceCount int
		LargestBlocks  []BlockLen
	}
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 3, stats.FileCount)
	assert.Equal(t, 1, stats.FailedCount)
	assert.Equal(t, map[string]int{"scnr": 1, "scen": 1}, stats.GroupCount)
	assert.Equal(t, 4, stats.ElementCount)
	assert.Equal(t, 3, stats.ReferenceCount)
	require.Len(t, stats.LargestBlocks, 1)
	assert.Equal(t, BlockLen{File: f.scenario, Group: "scnr", Path: "scenery_palette", Length: 2}, stats.LargestBlocks[0])
}

func TestDeps(t *testing.T) {
	f := newFixture(t)
	_, out, err := run(t, "--root", f.root, "deps", f.scenario)
	require.NoError(t, err)
	got := lines(out)
	require.Len(t, got, 4)
	assert.Equal(t, f.scenario+":", got[0])
	assert.Equal(t, "\tscen:scenery\\rocks\\boulder\t"+f.scenery, got[1])
	assert.True(t, strings.HasPrefix(got[2], "\tscen:scenery\\trees\\pine\tmissing: "), got[2])
	assert.True(t, strings.HasPrefix(got[3], "\thlmt:models\\boulder\tmissing: "), got[3])

	_, out, err = run(t, "--root", f.root, "deps", "--missing", f.scenario)
	require.NoError(t, err)
	assert.Len(t, lines(out), 3)

	_, _, err = run(t, "--root", f.root, "deps", f.bad)
	assert.Error(t, err)
}

func TestMismatch(t *testing.T) {
	assert.Equal(t, -1, mismatch([]byte{1, 2}, []byte{1, 2}))
	assert.Equal(t, 1, mismatch([]byte{1, 2}, []byte{1, 3}))
	assert.Equal(t, 2, mismatch([]byte{1, 2}, []byte{1, 2, 3}))
	assert.Equal(t, 0, mismatch(nil, []byte{1}))
}
