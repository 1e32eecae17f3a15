package main

import (
	"fmt"
	"os"
	"updatescan/internal/di"
	"updatescan/internal/fuzzy"
	"updatescan/internal/structures"

	"github.com/urfave/cli/v2"
)

const exitDifferent = 3

func cliFlags(c *cli.Context) *structures.CliFlags {
	return &structures.CliFlags{
		ConfigPath: c.String("config"),
		DebugMode:  c.Bool("debug"),
	}
}

func RunAction(c *cli.Context) error {
	app, err := di.InitApp(cliFlags(c))
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	return app.Run()
}

func ScanAction(c *cli.Context) error {
	app, err := di.InitApp(cliFlags(c))
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	n, err := app.ScanOnce(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d major changes\n", n)
	return nil
}

// CompareAction prints "equivalent" or "different"; different files exit
// with a non-zero status so the command can be scripted.
func CompareAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("compare needs exactly two files", 2)
	}
	comparator := fuzzy.Comparator{Threshold: c.Int("threshold"), ResyncLength: c.Int("resync")}
	same, err := compareFiles(c.Args().Get(0), c.Args().Get(1), comparator)
	if err != nil {
		return err
	}
	if !same {
		fmt.Fprintln(c.App.Writer, "different")
		return cli.Exit("", exitDifferent)
	}
	fmt.Fprintln(c.App.Writer, "equivalent")
	return nil
}

func compareFiles(oldPath, newPath string, comparator fuzzy.Comparator) (bool, error) {
	if err := comparator.Validate(); err != nil {
		return false, err
	}
	a, err := os.ReadFile(oldPath)
	if err != nil {
		return false, err
	}
	b, err := os.ReadFile(newPath)
	if err != nil {
		return false, err
	}
	return comparator.Equivalent(string(a), string(b)), nil
}
