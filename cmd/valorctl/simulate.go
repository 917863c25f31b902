package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/valor-lanes/game/board"
	"github.com/wricardo/valor-lanes/game/engine"
	"github.com/wricardo/valor-lanes/game/rules"
	"golang.org/x/sync/errgroup"
)

// lowHealth is the HP fraction below which the greedy policy recalls
const lowHealth = 0.25

// Outcome summarises one simulated game
type Outcome struct {
	Seed   int64
	Phase  engine.Phase
	Rounds int
	Turns  int
	Capped bool
}

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:  "simulate",
		Usage: "Autoplay seeded games with a greedy lane policy",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file (default settings when empty)"},
			&cli.Int64Flag{Name: "seed", Aliases: []string{"s"}, Value: 1, Usage: "seed of the first game"},
			&cli.IntFlag{Name: "games", Aliases: []string{"n"}, Value: 1, Usage: "number of games, seeds increase by one"},
			&cli.IntFlag{Name: "max-turns", Value: 2000, Usage: "give up after this many hero turns"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "print every action (single game only)"},
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

			games := max(1, cmd.Int("games"))
			maxTurns := cmd.Int("max-turns")
			first := cmd.Int64("seed")
			w := out(cmd)

			var trace io.Writer
			if cmd.Bool("verbose") && games == 1 {
				trace = w
			}

			outcomes := make([]Outcome, games)
			g, ctx := errgroup.WithContext(ctx)
			g.SetLimit(runtime.NumCPU())
			for i := 0; i < games; i++ {
				seed := first + int64(i)
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					seeded := *config
					seeded.Seed = seed
					game, err := engine.NewEngine(&seeded, cat, nil)
					if err != nil {
						return fmt.Errorf("seed %d: %w", seed, err)
					}
					o, err := playGreedy(game, maxTurns, trace)
					if err != nil {
						return fmt.Errorf("seed %d: %w", seed, err)
					}
					o.Seed = seed
					outcomes[i] = o
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			printOutcomes(w, outcomes)
			return nil
		},
	}
}

// playGreedy runs game until it ends or maxTurns hero turns have passed.
// trace, when set, receives one line per action.
func playGreedy(game *engine.GameEngine, maxTurns int, trace io.Writer) (Outcome, error) {
	logf := func(format string, args ...interface{}) {
		if trace != nil {
			fmt.Fprintf(trace, format, args...)
		}
	}

	turns := 0
	for !game.IsGameOver() && turns < maxTurns {
		snap := game.Snapshot()
		consumed := false
		for _, action := range greedyActions(snap) {
			res, err := game.Act(action)
			if errors.Is(err, engine.ErrGameOver) {
				break
			}
			if err != nil {
				return Outcome{}, err
			}
			if res.Success || res.TurnConsumed {
				logf("[round %d] %s %s: %v\n", snap.Round, snap.ActiveHero, describeAction(action), res.Messages)
				consumed = true
				break
			}
		}
		if !consumed && !game.IsGameOver() {
			return Outcome{}, fmt.Errorf("no action accepted for %s in round %d", snap.ActiveHero, snap.Round)
		}
		turns++
	}

	return Outcome{
		Phase:  game.Phase(),
		Rounds: game.Round(),
		Turns:  turns,
		Capped: !game.IsGameOver(),
	}, nil
}

// greedyActions ranks what the active hero should try: fight whatever is
// in range, fall back when badly hurt, otherwise push up the lane.
// The list always ends with pass.
func greedyActions(s engine.Snapshot) []engine.Action {
	pass := engine.Action{Type: engine.ActionPass}
	hero, ok := engine.FindHero(s, s.ActiveHero)
	if !ok || hero.Position == nil {
		return []engine.Action{pass}
	}
	pos := *hero.Position

	var actions []engine.Action
	for _, m := range s.Monsters {
		if !rules.InRange(pos, m.Position) {
			continue
		}
		if len(hero.Spells) > 0 {
			actions = append(actions, engine.Action{Type: engine.ActionCast, Target: m.ID})
		}
		actions = append(actions, engine.Action{Type: engine.ActionAttack, Target: m.ID})
		break
	}

	if len(actions) == 0 && hero.MaxHP > 0 && float64(hero.HP) < lowHealth*float64(hero.MaxHP) && pos.Row < board.HeroNexusRow {
		actions = append(actions, engine.Action{Type: engine.ActionRecall})
	}

	actions = append(actions,
		engine.Action{Type: engine.ActionMove, Direction: "up"},
		engine.Action{Type: engine.ActionRemoveObstacle},
	)

	// Sidestep toward the lane column the nearest monster is not in
	sides := []string{"left", "right"}
	if m, _, ok := engine.NearestMonster(s, pos); ok && m.Position.Col < pos.Col {
		sides = []string{"right", "left"}
	}
	for _, d := range sides {
		actions = append(actions, engine.Action{Type: engine.ActionMove, Direction: d})
	}

	return append(actions, pass)
}

func describeAction(a engine.Action) string {
	switch {
	case a.Direction != "":
		return fmt.Sprintf("%s %s", a.Type, a.Direction)
	case a.Target != "":
		return fmt.Sprintf("%s %s", a.Type, a.Target)
	default:
		return string(a.Type)
	}
}

func printOutcomes(w io.Writer, outcomes []Outcome) {
	var heroWins, monsterWins, capped int
	for _, o := range outcomes {
		status := string(o.Phase)
		if o.Capped {
			status = "unfinished"
			capped++
		}
		switch o.Phase {
		case engine.HeroesWin:
			heroWins++
		case engine.MonstersWin:
			monsterWins++
		}
		fmt.Fprintf(w, "seed %-6d %-14s rounds %-4d turns %d\n", o.Seed, status, o.Rounds, o.Turns)
	}
	if len(outcomes) > 1 {
		fmt.Fprintf(w, "\nheroes %d, monsters %d, unfinished %d of %d games\n", heroWins, monsterWins, capped, len(outcomes))
	}
}
