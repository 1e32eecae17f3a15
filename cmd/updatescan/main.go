package main

import (
	"fmt"
	"os"
	"updatescan/internal/fuzzy"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "updatescan",
		Usage: "watch web pages and report meaningful changes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to the YAML config file",
				EnvVars: []string{"UPDATESCAN_CONFIG"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "verbose logging and the fast autoscan cadence",
			},
		},
		DefaultCommand: "run",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "serve the HTTP API and autoscan on a timer",
				Action: RunAction,
			},
			{
				Name:   "scan",
				Usage:  "run one autoscan cycle over the due pages and exit",
				Action: ScanAction,
			},
			{
				Name:      "compare",
				Usage:     "fuzzy-compare two text files",
				ArgsUsage: "<old> <new>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "threshold",
						Value: 100,
						Usage: "characters of drift tolerated per divergence",
					},
					&cli.IntFlag{
						Name:  "resync",
						Value: fuzzy.DefaultResyncLength,
						Usage: "matching run needed to resume after a divergence",
					},
				},
				Action: CompareAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
