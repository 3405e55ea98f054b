package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/bodgit/spriter"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const defaultRoot = "/"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	if verbose {
		logger.SetOutput(os.Stderr)
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func run(c *cli.Context) error {
	if c.NArg() > 1 {
		cli.ShowAppHelpAndExit(c, 1)
	}

	root := defaultRoot
	if c.NArg() == 1 {
		root = c.Args().First()
	}

	categories := spriter.DefaultCategories
	if file := c.String("config"); file != "" {
		var err error
		if categories, err = spriter.LoadCategories(file); err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	options := []spriter.Option{
		spriter.Colors(c.Int("colors")),
	}
	if c.IsSet("workers") {
		options = append(options, spriter.Workers(c.Int("workers")))
	}

	s, err := spriter.New(categories, newLogger(c.Bool("verbose")), options...)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	m, err := s.Run(root)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if file := c.String("db"); file != "" {
		db, err := spriter.NewManifestDB(file)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer db.Close()

		if err := db.Save(m); err != nil {
			return cli.NewExitError(err, 1)
		}
	}

	if n := len(m.Errors()); n > 0 {
		return cli.NewExitError(fmt.Sprintf("%d error(s) recorded", n), 1)
	}

	return nil
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "spriter"
	app.Usage = "Pack entity images into texture atlases"
	app.Version = "1.0.0"
	app.ArgsUsage = "[ROOT]"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"SPRITER_CONFIG"},
			Usage:   "path to YAML category table",
		},
		&cli.IntFlag{
			Name:    "workers",
			EnvVars: []string{"SPRITER_WORKERS"},
			Usage:   "number of images to decode concurrently (default: number of CPUs)",
		},
		&cli.IntFlag{
			Name:  "colors",
			Usage: "quantize atlases to a palette of this many colors, 0 for truecolor",
		},
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"SPRITER_DB"},
			Usage:   "also save the manifest to this SQLite database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Action = run

	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
