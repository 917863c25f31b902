package engine

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func createValidConfig() *GameConfig {
	return &GameConfig{
		Name:        "Test Config",
		Description: "A valid test configuration",
		Difficulty:  Normal,
		PartySize:   3,
		Seed:        7,
		Layout:      append([]string(nil), testLayout...),
	}
}

func TestValidateGameConfig_ValidConfig(t *testing.T) {
	config := createValidConfig()
	err := ValidateGameConfig(config)
	if err != nil {
		t.Errorf("Expected valid config to pass validation, got: %v", err)
	}
}

func TestValidateGameConfig_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *GameConfig)
		want   string
	}{
		{"missing name", func(c *GameConfig) { c.Name = "" }, "name is required"},
		{"bad difficulty", func(c *GameConfig) { c.Difficulty = "nightmare" }, "difficulty must be"},
		{"negative spawn interval", func(c *GameConfig) { c.SpawnInterval = -1 }, "spawn_interval cannot be negative"},
		{"negative respawn", func(c *GameConfig) { c.RespawnRounds = intPtr(-2) }, "respawn_rounds cannot be negative"},
		{"party too large", func(c *GameConfig) { c.PartySize = 4 }, "party_size must be between"},
		{"too many named heroes", func(c *GameConfig) {
			c.PartySize = 0
			c.Party = []string{"a", "b", "c", "d"}
		}, "at most 3 heroes"},
		{"party size mismatch", func(c *GameConfig) { c.Party = []string{"a", "b"} }, "does not match"},
		{"duplicate hero", func(c *GameConfig) {
			c.PartySize = 0
			c.Party = []string{"a", "a"}
		}, "listed twice"},
		{"blank hero", func(c *GameConfig) {
			c.PartySize = 0
			c.Party = []string{" "}
		}, "empty hero name"},
		{"too many initial monsters", func(c *GameConfig) { c.InitialMonsters = intPtr(4) }, "initial_monsters must be"},
		{"short layout", func(c *GameConfig) { c.Layout = c.Layout[:7] }, "invalid config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := createValidConfig()
			tt.modify(config)
			err := ValidateGameConfig(config)
			if err == nil {
				t.Fatal("Expected validation error, got nil")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got: %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got: %v", tt.want, err)
			}
		})
	}
}

func TestValidateGameConfig_Nil(t *testing.T) {
	if err := ValidateGameConfig(nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for nil config, got %v", err)
	}
}

func TestGameConfigDefaults(t *testing.T) {
	config := &GameConfig{Name: "bare"}

	if got := config.EffectiveDifficulty(); got != Normal {
		t.Errorf("Expected difficulty normal, got %s", got)
	}
	if got := config.EffectiveSpawnInterval(); got != 6 {
		t.Errorf("Expected spawn interval 6, got %d", got)
	}
	if got := config.EffectiveRespawnRounds(); got != DefaultRespawnRounds {
		t.Errorf("Expected respawn rounds %d, got %d", DefaultRespawnRounds, got)
	}
	if got := config.EffectivePartySize(); got != MaxPartySize {
		t.Errorf("Expected party size %d, got %d", MaxPartySize, got)
	}
	if !config.PressureEnabled() {
		t.Error("Expected monster pressure to default on")
	}
	if got := config.InitialMonsterCount(); got != 3 {
		t.Errorf("Expected 3 initial monsters, got %d", got)
	}

	config.MonsterPressure = boolPtr(false)
	config.RespawnRounds = intPtr(0)
	config.InitialMonsters = intPtr(0)
	if config.PressureEnabled() {
		t.Error("Expected monster pressure off")
	}
	if got := config.EffectiveRespawnRounds(); got != 0 {
		t.Errorf("Expected explicit respawn rounds 0, got %d", got)
	}
	if got := config.InitialMonsterCount(); got != 0 {
		t.Errorf("Expected explicit 0 initial monsters, got %d", got)
	}
}

func TestEffectiveSpawnInterval(t *testing.T) {
	tests := []struct {
		difficulty Difficulty
		explicit   int
		want       int
	}{
		{Easy, 0, 10},
		{Normal, 0, 6},
		{Hard, 0, 4},
		{Hard, 2, 2},
	}

	for _, tt := range tests {
		config := &GameConfig{Name: "x", Difficulty: tt.difficulty, SpawnInterval: tt.explicit}
		if got := config.EffectiveSpawnInterval(); got != tt.want {
			t.Errorf("Expected spawn interval %d for %s/%d, got %d", tt.want, tt.difficulty, tt.explicit, got)
		}
	}
}

func TestEffectivePartySize_NamedParty(t *testing.T) {
	config := &GameConfig{Name: "x", PartySize: 3, Party: []string{"a", "b"}}
	if got := config.EffectivePartySize(); got != 2 {
		t.Errorf("Expected named party to win, got %d", got)
	}
}

const testConfigJSON = `{
	"name": "Test Config",
	"description": "Test description",
	"difficulty": "hard",
	"respawn_rounds": 1,
	"party_size": 2,
	"seed": 42,
	"all_fainted_loses": true,
	"monster_pressure": false
}`

func TestLoadGameConfig(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "test_config.json")

	err := os.WriteFile(tempFile, []byte(testConfigJSON), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	config, err := LoadGameConfig(tempFile)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Name != "Test Config" {
		t.Errorf("Expected config name 'Test Config', got '%s'", config.Name)
	}
	if config.EffectiveDifficulty() != Hard {
		t.Errorf("Expected difficulty hard, got %s", config.Difficulty)
	}
	if config.EffectiveRespawnRounds() != 1 {
		t.Errorf("Expected respawn rounds 1, got %d", config.EffectiveRespawnRounds())
	}
	if config.PressureEnabled() {
		t.Error("Expected monster pressure disabled")
	}
	if !config.AllFaintedLoses {
		t.Error("Expected all_fainted_loses true")
	}

	_, err = LoadGameConfig("nonexistent.json")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestLoadGameConfig_InvalidJSON(t *testing.T) {
	tempFile := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(tempFile, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadGameConfig(tempFile)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for broken JSON, got %v", err)
	}
}

func TestLoadConfigByName(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "test.json"), []byte(testConfigJSON), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	config, err := LoadConfigByName(dir, "test")
	if err != nil {
		t.Fatalf("Failed to load config by name: %v", err)
	}
	if config.Name != "Test Config" {
		t.Errorf("Expected config name 'Test Config', got '%s'", config.Name)
	}

	config2, err := LoadConfigByName(dir, "test.json")
	if err != nil {
		t.Fatalf("Failed to load config by name with extension: %v", err)
	}
	if config2.Name != "Test Config" {
		t.Errorf("Expected config name 'Test Config', got '%s'", config2.Name)
	}

	_, err = LoadConfigByName(dir, "nonexistent")
	if err == nil {
		t.Error("Expected error for non-existent config")
	}
	if !strings.Contains(err.Error(), "nonexistent.json") {
		t.Errorf("Expected error naming the file, got: %v", err)
	}
}

func TestLoadGameConfig_ConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "moved.json"), []byte(testConfigJSON), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}
	t.Setenv("CONFIG_DIR", dir)

	config, err := LoadGameConfig("configs/moved.json")
	if err != nil {
		t.Fatalf("Expected CONFIG_DIR to redirect configs/ paths, got %v", err)
	}
	if config.Seed != 42 {
		t.Errorf("Expected seed 42, got %d", config.Seed)
	}
}
