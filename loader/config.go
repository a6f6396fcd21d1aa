package loader

import (
	"runtime"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/tagtools/tagfile"
	"github.com/tagtools/tagfile/tag"
)

// DefaultCacheSize is the number of parsed files kept when Config.CacheSize
// is zero.
const DefaultCacheSize = 256

// DefaultExtensions maps the groups of the defs package to the file
// extensions under which they are stored.
var DefaultExtensions = map[string]string{
	"bitm": "bitmap",
	"scen": "scenery",
	"ligh": "light",
	"scnr": "scenario",
	"sbsp": "scenario_structure_bsp",
	"sky":  "sky",
	"lens": "lens_flare",
	"mod2": "gbxmodel",
	"mode": "render_model",
	"coll": "model_collision_geometry",
	"hmt":  "hud_message_text",
	"unic": "multilingual_unicode_string_list",
}

// Config configures a Loader. It can be decoded from TOML.
type Config struct {
	// Roots are the directories searched for tag files, in order.
	Roots []string `toml:"roots"`
	// Extensions maps a group to the extension of its files, without the
	// leading dot. Groups not present use DefaultExtensions, then the group
	// itself.
	Extensions map[string]string `toml:"extensions"`
	// CacheSize is the number of parsed files kept in memory.
	CacheSize int `toml:"cache_size"`
	// Parallelism limits the number of files loaded at once by LoadAll.
	Parallelism int `toml:"parallelism"`
}

func (c Config) cacheSize() int {
	if c.CacheSize <= 0 {
		return DefaultCacheSize
	}
	return c.CacheSize
}

func (c Config) parallelism() int {
	if c.Parallelism <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Parallelism
}

// Extension returns the file extension of a group.
func (c Config) Extension(group tagfile.Code) string {
	g := strings.TrimRight(group.String(), " ")
	if ext, ok := c.Extensions[g]; ok {
		return ext
	}
	if ext, ok := DefaultExtensions[g]; ok {
		return ext
	}
	return g
}

// Option configures optional collaborators of a Loader.
type Option func(*Loader)

// WithLogger sets the logger of the Loader. By default, nothing is logged.
func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Loader) {
		l.log = log
	}
}

// WithRegistry sets the registry used to parse files. By default,
// tag.DefaultRegistry is used.
func WithRegistry(reg *tag.Registry) Option {
	return func(l *Loader) {
		l.dec.Registry = reg
	}
}

// WithMetrics registers the counters of the Loader with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(l *Loader) {
		l.registerer = reg
	}
}
