package engine

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/wricardo/valor-lanes/game/board"
	"github.com/wricardo/valor-lanes/game/character"
	"github.com/wricardo/valor-lanes/game/occupancy"
	"github.com/wricardo/valor-lanes/game/rules"
	"github.com/wricardo/valor-lanes/pkg/logger"
)

// Source supplies characters. The engine asks it for the party once per
// game and for a monster whenever a slot needs filling.
type Source interface {
	Party(n int) ([]*character.Hero, error)
	MonsterNear(level int, rng *rand.Rand) (*character.Monster, bool)
}

// NamedSource is a Source that can also build a party from hero names
type NamedSource interface {
	Source
	PartyOf(names []string) ([]*character.Hero, error)
}

// Engine provides the main interface for game operations
type Engine interface {
	Act(action Action) (ActionResult, error)
	Snapshot() Snapshot
	Reset() error

	Phase() Phase
	Round() int
	IsGameOver() bool
	ActiveHero() (occupancy.Handle, bool)
	TeleportCandidates(target string) ([]board.Position, error)

	GetConfig() *GameConfig
	History() []Event
}

// GameEngine owns the board, the occupancy store, the respawn timers and
// the round state. It is not safe for concurrent use; callers serialize
// actions into it.
type GameEngine struct {
	config *GameConfig
	source Source
	rng    *rand.Rand
	log    *logrus.Entry

	board    *board.Board
	store    *occupancy.Store
	party    []occupancy.Handle
	turn     int
	phase    Phase
	round    int
	respawn  map[occupancy.Handle]int
	message  string
	turns    int
	history  []Event
	resetRNG bool
}

// NewEngine creates a game from config. rng drives every random choice;
// when nil a source is seeded from config.Seed, or from the clock when the
// seed is zero.
func NewEngine(config *GameConfig, source Source, rng *rand.Rand) (*GameEngine, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("character source is required")
	}

	e := &GameEngine{
		config:   config,
		source:   source,
		rng:      rng,
		log:      logger.Component("engine").WithField("config", config.Name),
		resetRNG: rng == nil,
	}
	if err := e.setup(); err != nil {
		return nil, err
	}
	return e, nil
}

// SetLogger replaces the engine's log entry, e.g. to tag it with a session
func (e *GameEngine) SetLogger(entry *logrus.Entry) {
	if entry != nil {
		e.log = entry
	}
}

func (e *GameEngine) seedRNG() {
	seed := e.config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	e.rng = rand.New(rand.NewSource(seed))
}

// setup builds a fresh board, party and opening monsters. The engine's
// state is only replaced once the new board and party are complete.
func (e *GameEngine) setup() error {
	if e.rng == nil || e.resetRNG {
		e.seedRNG()
	}

	var b *board.Board
	if len(e.config.Layout) > 0 {
		fixed, err := board.FromLayout(e.config.Layout)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		b = fixed
	} else {
		b = board.Generate(e.rng)
	}
	store := occupancy.NewStore(b)

	heroes, err := e.buildParty()
	if err != nil {
		return err
	}
	party := make([]occupancy.Handle, 0, len(heroes))
	for i, h := range heroes {
		handle := store.AddHero(h)
		if err := rules.PlaceHero(store, handle, board.HeroSpawn(i)); err != nil {
			return fmt.Errorf("failed to place %s: %w", h.Name, err)
		}
		party = append(party, handle)
	}

	e.board = b
	e.store = store
	e.party = party
	e.turn = 0
	e.round = 1
	e.phase = AwaitingHero
	e.respawn = make(map[occupancy.Handle]int)
	e.turns = 0

	level := e.highestHeroLevel()
	for lane := 0; lane < e.config.InitialMonsterCount(); lane++ {
		e.spawnMonster(board.MonsterSpawn(lane), level)
	}

	e.message = fmt.Sprintf("Round 1 begins. %s to act.", e.heroName(e.party[0]))
	e.log.WithFields(logrus.Fields{
		"heroes":   len(e.party),
		"monsters": len(e.store.PlacedMonsters()),
	}).Info("game started")
	return nil
}

func (e *GameEngine) buildParty() ([]*character.Hero, error) {
	if len(e.config.Party) > 0 {
		named, ok := e.source.(NamedSource)
		if !ok {
			return nil, fmt.Errorf("%w: source cannot build a named party", ErrInvalidConfig)
		}
		heroes, err := named.PartyOf(e.config.Party)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return heroes, nil
	}
	heroes, err := e.source.Party(e.config.EffectivePartySize())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if len(heroes) == 0 || len(heroes) > MaxPartySize {
		return nil, fmt.Errorf("%w: source returned %d heroes", ErrInvalidConfig, len(heroes))
	}
	return heroes, nil
}

// Reset starts a new game from the same config. History is kept.
func (e *GameEngine) Reset() error {
	if err := e.setup(); err != nil {
		return err
	}
	e.record(Event{Kind: EventReset, Message: "game reset", Success: true})
	return nil
}

// Phase returns the current state of the round machine
func (e *GameEngine) Phase() Phase {
	return e.phase
}

// Round returns the current round, starting at 1
func (e *GameEngine) Round() int {
	return e.round
}

// IsGameOver reports whether a terminal state was reached
func (e *GameEngine) IsGameOver() bool {
	return e.phase.Terminal()
}

// ActiveHero returns the hero whose action is awaited
func (e *GameEngine) ActiveHero() (occupancy.Handle, bool) {
	if e.phase != AwaitingHero || e.turn >= len(e.party) {
		return occupancy.Handle{}, false
	}
	return e.party[e.turn], true
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// Board exposes the grid for read-only use
func (e *GameEngine) Board() *board.Board {
	return e.board
}

// Store exposes occupancy for read-only use
func (e *GameEngine) Store() *occupancy.Store {
	return e.store
}

// History returns the recorded events, oldest first
func (e *GameEngine) History() []Event {
	return e.history
}

// TeleportCandidates lists where the active hero could teleport next to
// the target hero
func (e *GameEngine) TeleportCandidates(target string) ([]board.Position, error) {
	if e.IsGameOver() {
		return nil, ErrGameOver
	}
	mover, ok := e.ActiveHero()
	if !ok {
		return nil, fmt.Errorf("%w: no active hero", ErrUnknownEntity)
	}
	th, err := e.resolveHero(target)
	if err != nil {
		return nil, err
	}
	return rules.TeleportCandidates(e.store, mover, th)
}

func (e *GameEngine) record(ev Event) {
	ev.ID = uuid.NewString()
	if ev.Round == 0 {
		ev.Round = e.round
	}
	ev.Timestamp = time.Now().Unix()
	e.history = append(e.history, ev)
	if len(e.history) > MaxHistoryEntries {
		e.history = e.history[len(e.history)-MaxHistoryEntries:]
	}
}

func (e *GameEngine) hero(h occupancy.Handle) *character.Hero {
	hero, _ := e.store.Hero(h)
	return hero
}

func (e *GameEngine) heroName(h occupancy.Handle) string {
	if hero := e.hero(h); hero != nil {
		return fmt.Sprintf("%s (%s)", hero.Name, h)
	}
	return h.ID()
}

func (e *GameEngine) monsterName(m occupancy.Handle) string {
	if mon, ok := e.store.Monster(m); ok {
		return fmt.Sprintf("%s (%s)", mon.Name, m)
	}
	return m.ID()
}

func (e *GameEngine) highestHeroLevel() int {
	level := 1
	for _, h := range e.party {
		if hero := e.hero(h); hero != nil && hero.Level > level {
			level = hero.Level
		}
	}
	return level
}

func (e *GameEngine) resolveHero(id string) (occupancy.Handle, error) {
	h, err := occupancy.ParseHandle(id)
	if err != nil || h.Kind != occupancy.HeroKind {
		return occupancy.Handle{}, fmt.Errorf("%w: %q is not a hero id", ErrUnknownEntity, id)
	}
	if _, ok := e.store.Hero(h); !ok {
		return occupancy.Handle{}, fmt.Errorf("%w: %s", ErrUnknownEntity, h)
	}
	return h, nil
}

func (e *GameEngine) resolveMonster(id string) (occupancy.Handle, error) {
	m, err := occupancy.ParseHandle(id)
	if err != nil || m.Kind != occupancy.MonsterKind {
		return occupancy.Handle{}, fmt.Errorf("%w: %q is not a monster id", ErrUnknownEntity, id)
	}
	if _, ok := e.store.Monster(m); !ok || !e.store.Placed(m) {
		return occupancy.Handle{}, fmt.Errorf("%w: %s", ErrUnknownEntity, m)
	}
	return m, nil
}
