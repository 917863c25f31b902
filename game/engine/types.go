package engine

import (
	"github.com/wricardo/valor-lanes/game/board"
	"github.com/wricardo/valor-lanes/game/character"
	"github.com/wricardo/valor-lanes/game/combat"
)

// Phase is the state of the round machine
type Phase string

const (
	AwaitingHero Phase = "awaiting_hero"
	MonsterPhase Phase = "monster_phase"
	EndOfRound   Phase = "end_of_round"
	HeroesWin    Phase = "heroes_win"
	MonstersWin  Phase = "monsters_win"
)

// Terminal reports whether the game is over
func (p Phase) Terminal() bool {
	return p == HeroesWin || p == MonstersWin
}

// Difficulty scales wave size and spawn interval
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Normal Difficulty = "normal"
	Hard   Difficulty = "hard"
)

const (
	// DefaultRespawnRounds is how long a fainted hero waits by default
	DefaultRespawnRounds = 2

	// MaxPartySize is one hero per lane
	MaxPartySize = board.NumLanes

	// MaxHistoryEntries caps the stored event log
	MaxHistoryEntries = 5000
)

var spawnIntervals = map[Difficulty]int{
	Easy:   10,
	Normal: 6,
	Hard:   4,
}

// ActionType names a hero action
type ActionType string

const (
	ActionMove           ActionType = "move"
	ActionAttack         ActionType = "attack"
	ActionCast           ActionType = "cast"
	ActionTeleport       ActionType = "teleport"
	ActionRecall         ActionType = "recall"
	ActionRemoveObstacle ActionType = "remove_obstacle"
	ActionPass           ActionType = "pass"
	ActionCancel         ActionType = "cancel"
	ActionInfo           ActionType = "info"
)

// ActionTypes lists every accepted action in display order
func ActionTypes() []ActionType {
	return []ActionType{
		ActionMove, ActionAttack, ActionCast, ActionTeleport, ActionRecall,
		ActionRemoveObstacle, ActionPass, ActionCancel, ActionInfo,
	}
}

// Action is one request from the active hero. Target holds a unit id
// ("M2" for attack and cast, "H3" for teleport). Position is the teleport
// destination or the obstacle to clear.
type Action struct {
	Type      ActionType      `json:"type"`
	Direction string          `json:"direction,omitempty"`
	Target    string          `json:"target,omitempty"`
	Spell     string          `json:"spell,omitempty"`
	Position  *board.Position `json:"position,omitempty"`
}

// ActionResult reports what an action did. Rule violations come back with
// Success false and a Reason; TurnConsumed tells whether play moved on.
type ActionResult struct {
	Success      bool           `json:"success"`
	TurnConsumed bool           `json:"turn_consumed"`
	Reason       string         `json:"reason,omitempty"`
	Messages     []string       `json:"messages"`
	Combat       *combat.Result `json:"combat,omitempty"`
	Phase        Phase          `json:"phase"`
	Round        int            `json:"round"`
	ActiveHero   string         `json:"active_hero,omitempty"`
}

// EventKind classifies history entries
type EventKind string

const (
	EventHeroAction    EventKind = "hero_action"
	EventMonsterAttack EventKind = "monster_attack"
	EventMonsterMove   EventKind = "monster_move"
	EventMonsterSpawn  EventKind = "monster_spawn"
	EventMonsterDeath  EventKind = "monster_defeated"
	EventHeroFainted   EventKind = "hero_fainted"
	EventHeroRespawn   EventKind = "hero_respawn"
	EventLevelUp       EventKind = "level_up"
	EventRoundEnd      EventKind = "round_end"
	EventGameOver      EventKind = "game_over"
	EventReset         EventKind = "game_reset"
)

// Event is one entry of the game history
type Event struct {
	ID        string     `json:"id"`
	Round     int        `json:"round"`
	Kind      EventKind  `json:"kind"`
	Actor     string     `json:"actor,omitempty"`
	Action    ActionType `json:"action,omitempty"`
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Timestamp int64      `json:"timestamp"`
}

// CellView is one cell of a snapshot
type CellView struct {
	Type    board.CellType `json:"type"`
	Hero    string         `json:"hero,omitempty"`
	Monster string         `json:"monster,omitempty"`
}

// HeroView is the serializable state of a hero
type HeroView struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name"`
	Class      character.HeroClass     `json:"class"`
	Level      int                     `json:"level"`
	Experience int                     `json:"experience"`
	Gold       int                     `json:"gold"`
	HP         int                     `json:"hp"`
	MaxHP      int                     `json:"max_hp"`
	MP         int                     `json:"mp"`
	MaxMP      int                     `json:"max_mp"`
	Strength   int                     `json:"strength"`
	Dexterity  int                     `json:"dexterity"`
	Agility    int                     `json:"agility"`
	Weapon     string                  `json:"weapon,omitempty"`
	Armor      string                  `json:"armor,omitempty"`
	Spells     []string                `json:"spells,omitempty"`
	Terrain    *character.TerrainBonus `json:"terrain,omitempty"`
	Position   *board.Position         `json:"position,omitempty"`
	HomeLane   int                     `json:"home_lane"`
	RespawnIn  int                     `json:"respawn_in,omitempty"`
}

// MonsterView is the serializable state of a monster with debuffs applied
type MonsterView struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Kind     character.MonsterKind `json:"kind"`
	Level    int                   `json:"level"`
	HP       int                   `json:"hp"`
	MaxHP    int                   `json:"max_hp"`
	Damage   int                   `json:"damage"`
	Defense  int                   `json:"defense"`
	Dodge    float64               `json:"dodge"`
	Position board.Position        `json:"position"`
}

// Snapshot is the full observable state of a game
type Snapshot struct {
	ConfigName string        `json:"config_name"`
	Difficulty Difficulty    `json:"difficulty"`
	Round      int           `json:"round"`
	Phase      Phase         `json:"phase"`
	GameOver   bool          `json:"game_over"`
	ActiveHero string        `json:"active_hero,omitempty"`
	Layout     []string      `json:"layout"`
	Cells      [][]CellView  `json:"cells"`
	Heroes     []HeroView    `json:"heroes"`
	Monsters   []MonsterView `json:"monsters"`
	Message    string        `json:"message,omitempty"`
	TotalTurns int           `json:"total_turns"`
}
