// Command valorctl is an offline companion to the server: it prints seeded
// boards, autoplays games with a greedy lane policy and validates config
// files without starting anything.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/valor-lanes/game/catalog"
	"github.com/wricardo/valor-lanes/game/engine"
	"github.com/wricardo/valor-lanes/pkg/logger"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "valorctl",
		Usage: "Inspect, simulate and validate Legends of Valor games",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "catalog",
				Usage:   "YAML hero/monster catalog (embedded default when empty)",
				Sources: cli.EnvVars("CATALOG_PATH"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "engine log level",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logger.Configure(cmd.String("log-level"), "text", os.Stderr)
			return ctx, nil
		},
		Commands: []*cli.Command{
			boardCommand(),
			simulateCommand(),
			validateCommand(),
		},
	}
}

func out(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func loadCatalog(cmd *cli.Command) (*catalog.Catalog, error) {
	if path := cmd.String("catalog"); path != "" {
		return catalog.LoadFile(path)
	}
	return catalog.Default()
}

// loadConfig reads a config file, or the built-in default when path is empty
func loadConfig(path string) (*engine.GameConfig, error) {
	if path == "" {
		return engine.DefaultConfig(), nil
	}
	return engine.LoadGameConfig(path)
}

func boardCommand() *cli.Command {
	return &cli.Command{
		Name:  "board",
		Usage: "Print the opening board for a config and seed",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file (default settings when empty)"},
			&cli.Int64Flag{Name: "seed", Aliases: []string{"s"}, Value: 1, Usage: "random seed"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cat, err := loadCatalog(cmd)
			if err != nil {
				return err
			}
			config, err := loadConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			seeded := *config
			seeded.Seed = cmd.Int64("seed")

			game, err := engine.NewEngine(&seeded, cat, nil)
			if err != nil {
				return err
			}
			snap := game.Snapshot()

			w := out(cmd)
			fmt.Fprintf(w, "%s (seed %d)\n\n", snap.ConfigName, seeded.Seed)
			for _, row := range snap.Layout {
				fmt.Fprintln(w, row)
			}
			fmt.Fprintln(w)
			fmt.Fprint(w, snap.Render())
			return nil
		},
	}
}
