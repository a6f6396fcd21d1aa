// The tagtool command validates, round-trips, and inspects tag files in bulk.
package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	_ "github.com/tagtools/tagfile/defs"
)

type tool struct {
	out io.Writer
	log *logrus.Logger
	cfg Config
}

func newApp(out io.Writer, log *logrus.Logger) (*cli.App, *tool) {
	t := &tool{out: out, log: log}
	app := &cli.App{
		Name:      "tagtool",
		Usage:     "Validate, round-trip, and inspect tag files",
		Writer:    out,
		ErrWriter: log.Out,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, TakesFile: true, Usage: "Read configuration from a TOML file", EnvVars: []string{"TAGTOOL_CONFIG"}},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "Set log level (panic, fatal, error, warn, info, debug, trace)", EnvVars: []string{"LOG_LEVEL"}},
			&cli.StringSliceFlag{Name: "root", Usage: "Search for referenced tags under `DIR`; may be repeated", EnvVars: []string{"TAGTOOL_ROOTS"}},
			&cli.IntFlag{Name: "parallelism", Aliases: []string{"j"}, Usage: "Process at most `N` files at once"},
			&cli.IntFlag{Name: "cache-size", Usage: "Keep at most `N` parsed files in memory"},
		},
		Before: t.configure,
		Commands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "Parse files and report their warnings and errors",
				ArgsUsage: "FILE...",
				Action:    t.check,
			},
			{
				Name:      "roundtrip",
				Usage:     "Verify that files are rebuilt byte for byte",
				ArgsUsage: "FILE...",
				Action:    t.roundtrip,
			},
			{
				Name:      "stat",
				Usage:     "Write statistics of files as JSON",
				ArgsUsage: "FILE...",
				Action:    t.stat,
			},
			{
				Name:      "deps",
				Usage:     "List the tags referenced by files, recursively",
				ArgsUsage: "FILE...",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "missing", Usage: "Only list references that cannot be loaded"},
				},
				Action: t.deps,
			},
		},
	}
	return app, t
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	app, _ := newApp(os.Stdout, log)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
