package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/tuxinal/packwiz-parent-pack/pkg/derive"
	"github.com/tuxinal/packwiz-parent-pack/pkg/fetch"
)

const appVersion = "0.1.0"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "packwiz-parent",
		Usage:     "generate a packwiz modpack based on another modpack",
		ArgsUsage: "[pack.toml]",
		Version:   appVersion,
		Before: func(c *cli.Context) error {
			configureLogging(c.Bool("verbose"))
			return nil
		},
		Flags: []cli.Flag{
			&cli.PathFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				EnvVars:  []string{"PACKWIZ_PARENT_OUTPUT"},
				Required: true,
				Usage:    "output directory (created if missing, must be empty)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "verbose output",
			},
		},
		Action: generateAction,
	}
}

func generateAction(c *cli.Context) error {
	if c.NArg() > 1 {
		return fmt.Errorf("usage: packwiz-parent [pack.toml] --output <dir>")
	}
	return derive.Run(context.Background(), derive.Config{
		PackPath:  c.Args().First(),
		OutputDir: c.Path("output"),
		Getter:    fetch.New(),
		Logger:    slog.Default(),
	})
}

func configureLogging(verbose bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	slog.SetDefault(slog.New(
		log.NewWithOptions(os.Stderr, log.Options{
			Level:  level,
			Prefix: "packwiz-parent",
		}),
	))
}
