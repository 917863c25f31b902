package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wricardo/valor-lanes/game/config"
	"github.com/wricardo/valor-lanes/game/session"
	"github.com/wricardo/valor-lanes/transport/mcp"
)

func testSettings() *config.Settings {
	return &config.Settings{
		Port:       8080,
		Host:       "localhost",
		ConfigDir:  "configs",
		SessionTTL: 2 * time.Hour,
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}

	expectedAppName := "Legends of Valor Server"
	if AppName != expectedAppName {
		t.Errorf("Expected app name %s, got %s", expectedAppName, AppName)
	}
}

func TestRegisterFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(*testing.T, *config.Settings, bool)
	}{
		{
			name: "no flags keep environment values",
			args: nil,
			check: func(t *testing.T, s *config.Settings, version bool) {
				if s.Port != 8080 || s.ConfigDir != "configs" || version {
					t.Errorf("Expected settings untouched, got %+v version=%v", s, version)
				}
			},
		},
		{
			name: "flags override",
			args: []string{"-port", "9090", "-config-dir", "/tmp/cfg", "-session-ttl", "30m", "-ngrok", "-version"},
			check: func(t *testing.T, s *config.Settings, version bool) {
				if s.Port != 9090 {
					t.Errorf("Expected port 9090, got %d", s.Port)
				}
				if s.ConfigDir != "/tmp/cfg" {
					t.Errorf("Expected config dir /tmp/cfg, got %s", s.ConfigDir)
				}
				if s.SessionTTL != 30*time.Minute {
					t.Errorf("Expected TTL 30m, got %v", s.SessionTTL)
				}
				if !s.Ngrok.Enabled || !version {
					t.Error("Expected ngrok and version flags set")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings()
			fset := flag.NewFlagSet("test", flag.ContinueOnError)
			version := registerFlags(fset, s)
			if err := fset.Parse(tt.args); err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			tt.check(t, s, *version)
		})
	}
}

func TestUsage(t *testing.T) {
	var out bytes.Buffer
	fset := flag.NewFlagSet("test", flag.ContinueOnError)
	fset.SetOutput(&out)
	registerFlags(fset, testSettings())
	usage(fset)()

	for _, want := range []string{"stdio-mcp", "-port", "-config-dir"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected '%s' in usage", want)
		}
	}
}

func TestIsStdioMode(t *testing.T) {
	for mode, want := range map[string]bool{
		"stdio-mcp": true,
		"mcp-stdio": true,
		"mcp":       true,
		"server":    false,
		"http":      false,
	} {
		if got := isStdioMode(mode); got != want {
			t.Errorf("Expected isStdioMode(%s) = %v, got %v", mode, want, got)
		}
	}
}

func TestInitializeServices(t *testing.T) {
	gameService, sessions, err := initializeServices(testSettings())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	if gameService == nil || sessions == nil {
		t.Fatal("Expected game service and session manager to be initialized")
	}

	configs, err := gameService.ListConfigs(context.Background())
	if err != nil {
		t.Fatalf("ListConfigs failed: %v", err)
	}
	if len(configs) != 4 {
		t.Errorf("Expected 4 shipped configs, got %d", len(configs))
	}

	// Every shipped config must start a game
	for _, c := range configs {
		info, err := gameService.CreateSession(context.Background(), c.ConfigID, 0)
		if err != nil {
			t.Errorf("Config %s failed to start: %v", c.ConfigID, err)
			continue
		}
		if info.GameState == nil || info.GameState.ActiveHero != "H1" {
			t.Errorf("Config %s: expected H1 to act first", c.ConfigID)
		}
	}
	if sessions.Count() != len(configs) {
		t.Errorf("Expected %d sessions, got %d", len(configs), sessions.Count())
	}
}

func TestInitializeServices_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Settings)
	}{
		{"missing config dir", func(s *config.Settings) { s.ConfigDir = "/non/existent/path" }},
		{"missing catalog", func(s *config.Settings) { s.CatalogPath = "/non/existent/catalog.yaml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testSettings()
			tt.modify(s)
			if _, _, err := initializeServices(s); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestSessionCleanupRoutine_StopsWithContext(t *testing.T) {
	_, sessions, err := initializeServices(testSettings())
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sessionCleanupRoutine(ctx, sessions, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Expected cleanup routine to stop after cancel")
	}

	// A zero TTL disables cleanup entirely
	sessionCleanupRoutine(context.Background(), session.NewManager(nil), 0)
}

func TestExternalAPIAvailable(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer healthy.Close()

	if !externalAPIAvailable(healthy.URL) {
		t.Error("Expected healthy server to be available")
	}

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()

	if externalAPIAvailable(broken.URL) {
		t.Error("Expected failing server to be unavailable")
	}
}

func TestMCPHandler(t *testing.T) {
	handler := newMCPHandler(mcp.NewClient("http://127.0.0.1:1"))

	t.Run("rejects GET", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest("GET", "/mcp", nil))
		if w.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected status 405, got %d", w.Code)
		}
	})

	t.Run("lists tools", func(t *testing.T) {
		body := `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest("POST", "/mcp", strings.NewReader(body)))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		raw, _ := io.ReadAll(w.Body)
		var resp struct {
			Result struct {
				Tools []struct {
					Name string `json:"name"`
				} `json:"tools"`
			} `json:"result"`
		}
		if err := json.Unmarshal(raw, &resp); err != nil {
			t.Fatalf("Failed to parse response: %v", err)
		}
		if len(resp.Result.Tools) != 10 {
			t.Errorf("Expected 10 tools, got %d: %s", len(resp.Result.Tools), raw)
		}
	})
}
