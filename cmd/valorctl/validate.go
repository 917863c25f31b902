package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/valor-lanes/game/board"
	"github.com/wricardo/valor-lanes/game/catalog"
	"github.com/wricardo/valor-lanes/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Notes holds informational lines for valid files.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Notes  []string
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Check game config files (defaults to ./configs)",
		ArgsUsage: "[file or directory ...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cat, err := loadCatalog(cmd)
			if err != nil {
				return err
			}

			paths := cmd.Args().Slice()
			if len(paths) == 0 {
				paths = []string{"configs"}
			}
			files, err := collectConfigFiles(paths)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no config files found in %v", paths)
			}

			w := out(cmd)
			allValid := true
			for _, file := range files {
				result := validateConfig(file, cat)

				fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)
				if result.Valid {
					fmt.Fprintln(w, "✅ VALID")
					for _, note := range result.Notes {
						fmt.Fprintln(w, "  "+note)
					}
				} else {
					fmt.Fprintln(w, "❌ INVALID")
					allValid = false
					for _, e := range result.Errors {
						fmt.Fprintln(w, "  ❌ "+e)
					}
				}
			}

			fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
			if !allValid {
				return fmt.Errorf("❌ Some configurations have errors")
			}
			fmt.Fprintln(w, "✅ All configurations are valid!")
			return nil
		},
	}
}

// collectConfigFiles expands directories into their *.json files
func collectConfigFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(p, "*.json"))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}

// validateConfig loads a config file, validates it and starts a game from
// it so that layout and party problems surface too
func validateConfig(path string, cat *catalog.Catalog) ValidationResult {
	result := ValidationResult{File: filepath.Base(path)}

	config, err := engine.LoadGameConfig(path)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	game, err := engine.NewEngine(config, cat, rand.New(rand.NewSource(1)))
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	snap := game.Snapshot()
	result.Valid = true
	result.Notes = append(result.Notes,
		fmt.Sprintf("✓ %s: %s", config.Name, config.Description),
		fmt.Sprintf("✓ difficulty %s, waves every %d rounds, respawn after %d",
			config.EffectiveDifficulty(), config.EffectiveSpawnInterval(), config.EffectiveRespawnRounds()),
		fmt.Sprintf("✓ party of %d, %d opening monsters", len(snap.Heroes), len(snap.Monsters)),
	)
	if len(config.Layout) > 0 {
		result.Notes = append(result.Notes, fmt.Sprintf("✓ fixed layout: %d obstacles, %d terrain cells",
			engine.CountCellType(snap, board.Obstacle),
			engine.CountCellType(snap, board.Bush)+engine.CountCellType(snap, board.Cave)+engine.CountCellType(snap, board.Koulou)))
	}
	return result
}
