package main

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/tagtools/tagfile/loader"
)

// Config is the content of the configuration file.
//
//	log_level = "debug"
//
//	[loader]
//	roots = ["tags"]
//	cache_size = 512
//	parallelism = 4
//
//	[loader.extensions]
//	scen = "scenery"
type Config struct {
	LogLevel string        `toml:"log_level"`
	Loader   loader.Config `toml:"loader"`
}

// readConfig decodes the configuration file at path.
func readConfig(path string) (cfg Config, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config file")
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parse config file %s", path)
	}
	return cfg, nil
}

// configure reads the configuration file named by the config flag, if any,
// then applies the remaining flags over it.
func (t *tool) configure(c *cli.Context) error {
	if path := c.String("config"); path != "" {
		cfg, err := readConfig(path)
		if err != nil {
			return err
		}
		t.cfg = cfg
	}
	if c.IsSet("log-level") || t.cfg.LogLevel == "" {
		t.cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("root") {
		t.cfg.Loader.Roots = c.StringSlice("root")
	}
	if c.IsSet("parallelism") {
		t.cfg.Loader.Parallelism = c.Int("parallelism")
	}
	if c.IsSet("cache-size") {
		t.cfg.Loader.CacheSize = c.Int("cache-size")
	}

	level, err := logrus.ParseLevel(t.cfg.LogLevel)
	if err != nil {
		return errors.Wrap(err, "invalid log level")
	}
	t.log.SetLevel(level)
	t.log.WithFields(logrus.Fields{
		"roots":       t.cfg.Loader.Roots,
		"parallelism": t.cfg.Loader.Parallelism,
	}).Debug("configured")
	return nil
}
