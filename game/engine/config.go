package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/valor-lanes/game/board"
)

// GameConfig represents the game configuration from JSON
type GameConfig struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Difficulty      Difficulty `json:"difficulty"`
	SpawnInterval   int        `json:"spawn_interval,omitempty"`
	RespawnRounds   *int       `json:"respawn_rounds,omitempty"`
	PartySize       int        `json:"party_size,omitempty"`
	Party           []string   `json:"party,omitempty"`
	Seed            int64      `json:"seed,omitempty"`
	AllFaintedLoses bool       `json:"all_fainted_loses"`
	MonsterPressure *bool      `json:"monster_pressure,omitempty"`
	InitialMonsters *int       `json:"initial_monsters,omitempty"`
	Layout          []string   `json:"layout,omitempty"`
}

// DefaultConfig is used when no configuration file is given
func DefaultConfig() *GameConfig {
	return &GameConfig{
		Name:        "default",
		Description: "Three heroes, random board, normal difficulty",
		Difficulty:  Normal,
		PartySize:   MaxPartySize,
	}
}

// EffectiveDifficulty treats an empty difficulty as normal
func (c *GameConfig) EffectiveDifficulty() Difficulty {
	if c.Difficulty == "" {
		return Normal
	}
	return c.Difficulty
}

// EffectiveSpawnInterval falls back to the difficulty preset
func (c *GameConfig) EffectiveSpawnInterval() int {
	if c.SpawnInterval > 0 {
		return c.SpawnInterval
	}
	return spawnIntervals[c.EffectiveDifficulty()]
}

// EffectiveRespawnRounds falls back to DefaultRespawnRounds
func (c *GameConfig) EffectiveRespawnRounds() int {
	if c.RespawnRounds == nil {
		return DefaultRespawnRounds
	}
	return *c.RespawnRounds
}

// EffectivePartySize prefers the named party, then party_size, then a
// full party
func (c *GameConfig) EffectivePartySize() int {
	if len(c.Party) > 0 {
		return len(c.Party)
	}
	if c.PartySize > 0 {
		return c.PartySize
	}
	return MaxPartySize
}

// PressureEnabled reports whether a random monster advances after each
// successful hero step. It defaults to on.
func (c *GameConfig) PressureEnabled() bool {
	return c.MonsterPressure == nil || *c.MonsterPressure
}

// InitialMonsterCount defaults to one monster per lane
func (c *GameConfig) InitialMonsterCount() int {
	if c.InitialMonsters == nil {
		return board.NumLanes
	}
	return *c.InitialMonsters
}

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}

	if _, ok := spawnIntervals[config.EffectiveDifficulty()]; !ok {
		return fmt.Errorf("%w: difficulty must be easy, normal or hard, got %q", ErrInvalidConfig, config.Difficulty)
	}
	if config.SpawnInterval < 0 {
		return fmt.Errorf("%w: spawn_interval cannot be negative, got %d", ErrInvalidConfig, config.SpawnInterval)
	}
	if config.EffectiveRespawnRounds() < 0 {
		return fmt.Errorf("%w: respawn_rounds cannot be negative, got %d", ErrInvalidConfig, config.EffectiveRespawnRounds())
	}

	if config.PartySize < 0 || config.PartySize > MaxPartySize {
		return fmt.Errorf("%w: party_size must be between 1 and %d, got %d", ErrInvalidConfig, MaxPartySize, config.PartySize)
	}
	if len(config.Party) > MaxPartySize {
		return fmt.Errorf("%w: party can name at most %d heroes, got %d", ErrInvalidConfig, MaxPartySize, len(config.Party))
	}
	if len(config.Party) > 0 && config.PartySize > 0 && config.PartySize != len(config.Party) {
		return fmt.Errorf("%w: party_size %d does not match %d named heroes", ErrInvalidConfig, config.PartySize, len(config.Party))
	}
	seen := make(map[string]bool)
	for _, name := range config.Party {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: party contains an empty hero name", ErrInvalidConfig)
		}
		if seen[name] {
			return fmt.Errorf("%w: hero %q listed twice", ErrInvalidConfig, name)
		}
		seen[name] = true
	}

	if n := config.InitialMonsterCount(); n < 0 || n > board.NumLanes {
		return fmt.Errorf("%w: initial_monsters must be between 0 and %d, got %d", ErrInvalidConfig, board.NumLanes, n)
	}

	if len(config.Layout) > 0 {
		if _, err := board.FromLayout(config.Layout); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a game configuration by name from dir
func LoadConfigByName(dir, configName string) (*GameConfig, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}
	config, err := LoadGameConfig(filepath.Join(dir, configName))
	if err != nil {
		return nil, fmt.Errorf("config '%s': %w", configName, err)
	}
	return config, nil
}
