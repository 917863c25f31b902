package service

import (
	"time"

	"github.com/wricardo/valor-lanes/game/engine"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *GameState         `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// GameState is a snapshot enriched with decision aids for clients that
// cannot see the board
type GameState struct {
	engine.Snapshot

	// ThreatLevel is CRITICAL, DANGER, CAUTION, LOW or SAFE
	ThreatLevel  string                   `json:"threat_level"`
	ThreatDetail string                   `json:"threat_detail"`
	Actions      []engine.ActionType      `json:"available_actions,omitempty"`
	LocalView    []engine.SurroundingCell `json:"local_view,omitempty"`
	Board        string                   `json:"board"`
}

// ActResult contains the result of one hero action
type ActResult struct {
	engine.ActionResult

	GameState *GameState     `json:"game_state"`
	Events    []engine.Event `json:"events,omitempty"`
}

// HistoryOptions configures history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated event history
type HistoryResponse struct {
	Events      []engine.Event `json:"events"`
	TotalEvents int            `json:"total_events"`
	Page        int            `json:"page"`
	PageSize    int            `json:"page_size"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename      string `json:"filename"`
	ConfigID      string `json:"config_id"` // The identifier to use for session creation
	Name          string `json:"name"`      // Display name
	Description   string `json:"description"`
	Difficulty    string `json:"difficulty"`
	PartySize     int    `json:"party_size"`
	SpawnInterval int    `json:"spawn_interval"`
	FixedLayout   bool   `json:"fixed_layout"`
}
