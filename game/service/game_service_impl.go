package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/valor-lanes/game/board"
	"github.com/wricardo/valor-lanes/game/engine"
	"github.com/wricardo/valor-lanes/pkg/logger"
)

// gameServiceImpl implements the GameService interface. Sessions carry
// their own lock, so actions on different games run in parallel.
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	log      *logrus.Entry
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		log:      logger.Component("service"),
	}
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	if configName == "" {
		return "default"
	}
	return configName
}

func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func (s *gameServiceImpl) info(sess *Session, configID string) *SessionInfo {
	sess.Lock()
	state := buildState(sess.Engine)
	accessed := sess.LastAccessedAt
	sess.Unlock()

	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: accessed,
		GameState:      state,
		GameConfig:     sess.Config,
	}
}

// CreateSession creates a new game session. A non-zero seed overrides the
// config's seed so the game can be replayed.
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, seed int64) (*SessionInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var config *engine.GameConfig
	var err error
	if configName != "" {
		config, err = s.configs.LoadConfig(configName)
		if err != nil {
			// Provide helpful error message with available options
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
	} else {
		config = s.configs.GetDefault()
	}

	if seed != 0 {
		seeded := *config
		seeded.Seed = seed
		config = &seeded
	}

	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	configID := configName
	if configID == "" {
		configID = s.getConfigID(config.Name)
	}

	s.log.WithFields(logrus.Fields{"session": session.ID, "config": configID, "seed": config.Seed}).Info("session created")
	return s.info(session, configID), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.info(sess, s.getConfigID(sess.Config.Name)), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.info(sess, s.getConfigID(sess.Config.Name)))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %s: %w", sessionID, err)
	}
	s.log.WithField("session", sessionID).Info("session deleted")
	return nil
}

// Act applies one action for the active hero and returns the outcome with
// every event it produced
func (s *gameServiceImpl) Act(ctx context.Context, sessionID string, action engine.Action) (*ActResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	mark := lastEventID(sess.Engine.History())
	res, err := sess.Engine.Act(action)
	if err != nil {
		if errors.Is(err, engine.ErrGameOver) {
			return nil, fmt.Errorf("session %s: %w", sessionID, err)
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"session":  sessionID,
		"action":   action.Type,
		"success":  res.Success,
		"consumed": res.TurnConsumed,
		"round":    res.Round,
	}).Debug("action applied")

	return &ActResult{
		ActionResult: res,
		GameState:    buildState(sess.Engine),
		Events:       eventsSince(sess.Engine.History(), mark),
	}, nil
}

// Reset starts the session's game over from its config
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*GameState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	if err := sess.Engine.Reset(); err != nil {
		return nil, fmt.Errorf("failed to reset session %s: %w", sessionID, err)
	}
	s.log.WithField("session", sessionID).Info("session reset")
	return buildState(sess.Engine), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*GameState, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	return buildState(sess.Engine), nil
}

// TeleportCandidates lists the cells the active hero may teleport to
// next to target
func (s *gameServiceImpl) TeleportCandidates(ctx context.Context, sessionID, target string) ([]board.Position, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	cands, err := sess.Engine.TeleportCandidates(target)
	if err != nil {
		return nil, err
	}
	if cands == nil {
		cands = []board.Position{}
	}
	return cands, nil
}

// GetHistory returns paginated event history
func (s *gameServiceImpl) GetHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	history := append([]engine.Event(nil), sess.Engine.History()...)
	sess.Unlock()

	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order != "asc" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	events := []engine.Event{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			events = append(events, history[i])
		}
	} else if start < total {
		events = append(events, history[start:end]...)
	}

	return &HistoryResponse{
		Events:      events,
		TotalEvents: total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

// buildState snapshots the engine and adds the decision aids. The caller
// holds the session lock.
func buildState(e *engine.GameEngine) *GameState {
	snap := e.Snapshot()
	threat := engine.AnalyzeNexusThreat(snap)
	state := &GameState{
		Snapshot:     snap,
		ThreatLevel:  riskCode(threat),
		ThreatDetail: threat,
		Board:        snap.Render(),
	}
	if snap.GameOver {
		return state
	}
	state.Actions = engine.ActionTypes()
	if h, ok := engine.FindHero(snap, snap.ActiveHero); ok && h.Position != nil {
		state.LocalView = engine.LocalView(snap, *h.Position)
	}
	return state
}

func lastEventID(history []engine.Event) string {
	if len(history) == 0 {
		return ""
	}
	return history[len(history)-1].ID
}

// eventsSince returns the events recorded after the one with id mark
func eventsSince(history []engine.Event, mark string) []engine.Event {
	if mark == "" {
		return append([]engine.Event(nil), history...)
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].ID == mark {
			return append([]engine.Event(nil), history[i+1:]...)
		}
	}
	// The mark rotated out of the capped log
	return append([]engine.Event(nil), history...)
}

// riskCode extracts the level prefix of a threat description
func riskCode(text string) string {
	level, _, _ := strings.Cut(text, ":")
	switch level = strings.ToUpper(strings.TrimSpace(level)); level {
	case "CRITICAL", "DANGER", "CAUTION", "LOW", "SAFE":
		return level
	default:
		return "UNKNOWN"
	}
}
