// Package config provides configuration management for the Valor Lanes
// server.
//
// The config package handles:
//   - Loading game configurations from JSON files
//   - Validation through engine.ValidateGameConfig
//   - Default configuration management
//   - Configuration discovery and listing
//   - Process settings read from the environment
//
// Configuration Format:
//
// Game configurations are stored as JSON files in the configs directory.
// Each file is an engine.GameConfig: difficulty, spawn interval, respawn
// rounds, party, seed, and an optional fixed 8-row board layout.
//
// Available Configurations:
//   - easy: waves every 10 rounds, one monster fewer per wave
//   - normal: waves every 6 rounds
//   - hard: waves every 4 rounds, one monster more per wave
//   - fixed: a hand-drawn board with a fixed seed for replays
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameConfig, err := manager.LoadConfig("hard")
//	defaultConfig := manager.GetDefault()
//	configs, err := manager.ListConfigs()
//
// Loaded configurations are cached. Concurrent first loads of the same name
// are collapsed into one file read.
//
// Settings:
//
// LoadSettings reads PORT, HOST, CONFIG_DIR, CATALOG_PATH, SESSION_TTL,
// LOG_LEVEL, LOG_FORMAT and NGROK_ENABLED, NGROK_AUTHTOKEN, NGROK_DOMAIN.
package config
