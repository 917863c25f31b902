package session

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/valor-lanes/game/board"
	"github.com/wricardo/valor-lanes/game/catalog"
	"github.com/wricardo/valor-lanes/game/engine"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	return NewManager(cat)
}

func createTestConfig() *engine.GameConfig {
	pressure := false
	return &engine.GameConfig{
		Name:            "Test Config",
		Description:     "Test configuration",
		Difficulty:      engine.Normal,
		PartySize:       3,
		Seed:            11,
		MonsterPressure: &pressure,
	}
}

func TestManager_Create(t *testing.T) {
	manager := newTestManager(t)
	config := createTestConfig()

	t.Run("create with specific ID", func(t *testing.T) {
		session, err := manager.Create("test-123", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if session.ID != "test-123" {
			t.Errorf("Expected session ID 'test-123', got '%s'", session.ID)
		}
		if session.Engine == nil {
			t.Error("Expected engine to be initialized")
		}
		if session.Config != config {
			t.Error("Expected config to be set")
		}
		if session.CreatedAt.IsZero() || session.LastAccessedAt.IsZero() {
			t.Error("Expected timestamps to be set")
		}
	})

	t.Run("create with generated ID", func(t *testing.T) {
		session, err := manager.Create("", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character ID, got '%s'", session.ID)
		}
	})

	t.Run("duplicate ID", func(t *testing.T) {
		_, err := manager.Create("TEST-123", config)
		if !errors.Is(err, ErrSessionAlreadyExists) {
			t.Errorf("Expected ErrSessionAlreadyExists, got %v", err)
		}
	})

	t.Run("invalid ID", func(t *testing.T) {
		_, err := manager.Create("bad/id", config)
		if !errors.Is(err, ErrInvalidSessionID) {
			t.Errorf("Expected ErrInvalidSessionID, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := manager.Create("broken", &engine.GameConfig{Name: "broken", PartySize: 7})
		if !errors.Is(err, engine.ErrInvalidConfig) {
			t.Errorf("Expected ErrInvalidConfig, got %v", err)
		}
		if _, err := manager.Get("broken"); !errors.Is(err, ErrSessionNotFound) {
			t.Error("Expected a failed create to store nothing")
		}
	})
}

func TestManager_Get(t *testing.T) {
	manager := newTestManager(t)
	created, err := manager.Create("AbCd", createTestConfig())
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"exact case", "AbCd", nil},
		{"lower case", "abcd", nil},
		{"upper case", "ABCD", nil},
		{"missing", "zzzz", ErrSessionNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := manager.Get(tt.id)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && got != created {
				t.Error("Expected the stored session")
			}
		})
	}
}

func TestManager_Delete(t *testing.T) {
	manager := newTestManager(t)
	manager.Create("delete-me", createTestConfig())

	if err := manager.Delete("DELETE-ME"); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}
	if _, err := manager.Get("delete-me"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
	}
	if err := manager.Delete("delete-me"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestManager_List(t *testing.T) {
	manager := newTestManager(t)
	if len(manager.List()) != 0 {
		t.Error("Expected an empty manager")
	}

	for i := 0; i < 3; i++ {
		if _, err := manager.Create(fmt.Sprintf("list-%d", i), createTestConfig()); err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
	}

	if got := len(manager.List()); got != 3 {
		t.Errorf("Expected 3 sessions, got %d", got)
	}
	if manager.Count() != 3 {
		t.Errorf("Expected count 3, got %d", manager.Count())
	}
}

func TestManager_CleanupExpired(t *testing.T) {
	manager := newTestManager(t)
	config := createTestConfig()

	old, _ := manager.Create("old", config)
	manager.Create("fresh", config)
	old.LastAccessedAt = time.Now().Add(-2 * time.Hour)

	removed := manager.CleanupExpiredSessions(time.Hour)
	if removed != 1 {
		t.Errorf("Expected 1 session removed, got %d", removed)
	}
	if _, err := manager.Get("old"); !errors.Is(err, ErrSessionNotFound) {
		t.Error("Expected old session to be removed")
	}
	if _, err := manager.Get("fresh"); err != nil {
		t.Errorf("Expected fresh session to remain, got %v", err)
	}
}

func TestManager_UpdateLastAccessed(t *testing.T) {
	manager := newTestManager(t)
	session, _ := manager.Create("touch", createTestConfig())
	before := session.LastAccessedAt

	time.Sleep(5 * time.Millisecond)
	if err := manager.UpdateLastAccessed("TOUCH"); err != nil {
		t.Fatalf("Failed to update last accessed: %v", err)
	}
	if !session.LastAccessedAt.After(before) {
		t.Error("Expected last accessed time to move forward")
	}
	if err := manager.UpdateLastAccessed("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager := newTestManager(t)
	config := createTestConfig()

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c-%d", i)
			if _, err := manager.Create(id, config); err != nil {
				errs <- err
				return
			}
			if _, err := manager.Get(id); err != nil {
				errs <- err
			}
			manager.List()
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Unexpected error during concurrent access: %v", err)
	}
	if manager.Count() != 50 {
		t.Errorf("Expected 50 sessions, got %d", manager.Count())
	}
}

func TestManager_SessionIsolation(t *testing.T) {
	manager := newTestManager(t)
	config := createTestConfig()

	session1, _ := manager.Create("iso-1", config)
	session2, _ := manager.Create("iso-2", config)

	// Same seed, same board: find a legal first step for H1 and take it in
	// session 1 only
	moved := false
	for _, dir := range []string{"up", "right"} {
		res, err := session1.Engine.Act(engine.Action{Type: engine.ActionMove, Direction: dir})
		if err != nil {
			t.Fatalf("Act failed: %v", err)
		}
		if res.Success {
			moved = true
			break
		}
	}
	if !moved {
		t.Skip("H1 is boxed in on this seed")
	}

	h1, _ := engine.FindHero(session2.Engine.Snapshot(), "H1")
	if h1.Position == nil || *h1.Position != board.HeroSpawn(0) {
		t.Errorf("Session 2 should not be affected by session 1 moves, H1 at %+v", h1.Position)
	}
	if session1.Engine.Round() != 1 || session2.Engine.Snapshot().ActiveHero != "H1" {
		t.Error("Sessions should have independent game state")
	}
}

func TestManager_SessionIDGeneration(t *testing.T) {
	manager := newTestManager(t)
	config := createTestConfig()

	generatedIDs := make(map[string]bool)
	for i := 0; i < 50; i++ {
		session, err := manager.Create("", config)
		if err != nil {
			t.Fatalf("Failed to create session: %v", err)
		}
		if generatedIDs[session.ID] {
			t.Errorf("Duplicate session ID generated: %s", session.ID)
		}
		generatedIDs[session.ID] = true

		if len(session.ID) != 4 {
			t.Errorf("Expected 4-character ID, got %d", len(session.ID))
		}
	}
}
