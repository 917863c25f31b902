package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/valor-lanes/game/board"
	"github.com/wricardo/valor-lanes/game/engine"
	"github.com/wricardo/valor-lanes/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Legends of Valor",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Legends of Valor - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Get any hero to row 0 (the monsters' nexus) before a monster reaches row 7.
Heroes act one at a time in party order; after the last hero every monster acts.

AVAILABLE TOOLS:
- create_session: Start a game (optional config_id and seed)
- list_sessions / get_session: Inspect sessions
- game_state: Board, heroes, monsters, threat level and the active hero's surroundings
- act: Take one action for the active hero - requires intent explanation
- teleport_candidates: Cells the active hero may teleport to next to another hero
- reset_game: Restart a session from its config
- action_history: Paginated event log
- list_configs: Available scenarios
- game_instructions: Full rules and strategy notes

NOTE: The 'intent' parameter on act serves as rubber duck debugging - explain your reasoning!`),
	)

	// Register all tools
	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional config selection and seed",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Config to use, e.g. easy, normal, hard (optional)",
				},
				"seed": map[string]interface{}{
					"type":        "integer",
					"description": "Random seed for a reproducible game (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "act",
		Description: "Take one action for the active hero",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"type": map[string]interface{}{
					"type":        "string",
					"enum":        actionTypeNames(),
					"description": "Action to take",
				},
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Direction for move",
				},
				"target": map[string]interface{}{
					"type":        "string",
					"description": "Monster id (M1) for attack/cast, hero id (H2) for teleport",
				},
				"spell": map[string]interface{}{
					"type":        "string",
					"description": "Spell name for cast (defaults to the hero's first spell)",
				},
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Destination row for teleport or remove_obstacle",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Destination column for teleport or remove_obstacle",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this action (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "type"},
		},
	}, c.handleAct)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "teleport_candidates",
		Description: "List the cells the active hero may teleport to next to another hero",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"target": map[string]interface{}{
					"type":        "string",
					"description": "Hero id to teleport next to, e.g. H2",
				},
			},
			Required: []string{"session_id", "target"},
		},
	}, c.handleTeleportCandidates)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Reset the game to its initial state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "action_history",
		Description: "Get the event history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleActionHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available game configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

func actionTypeNames() []string {
	types := engine.ActionTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return names
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	configID, _ := args["config_id"].(string)

	body := map[string]interface{}{}
	if configID != "" {
		body["config_id"] = configID
	}
	if seed, ok := args["seed"].(float64); ok && seed != 0 {
		body["seed"] = int64(seed)
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n\n%s", session.ID, session.ConfigName, formatGameState(session.GameState))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "in progress"
		if s.GameState != nil {
			status = fmt.Sprintf("round %d, %s", s.GameState.Round, s.GameState.Phase)
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Created: %s, %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"), status)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var state service.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

// actionFromArgs builds an engine action from tool arguments. row and col
// are only sent together.
func actionFromArgs(args map[string]interface{}) engine.Action {
	action := engine.Action{}
	if v, ok := args["type"].(string); ok {
		action.Type = engine.ActionType(v)
	}
	action.Direction, _ = args["direction"].(string)
	action.Target, _ = args["target"].(string)
	action.Spell, _ = args["spell"].(string)

	row, rowOK := args["row"].(float64)
	col, colOK := args["col"].(float64)
	if rowOK && colOK {
		action.Position = &board.Position{Row: int(row), Col: int(col)}
	}
	return action
}

func (c *Client) handleAct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = args["intent"]

	action := actionFromArgs(args)
	if action.Type == "" {
		return mcp.NewToolResultError("type is required"), nil
	}

	var result service.ActResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/actions"), action, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatActResult(action, &result)), nil
}

func (c *Client) handleTeleportCandidates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	target := request.GetString("target", "")

	var response struct {
		Target     string           `json:"target"`
		Candidates []board.Position `json:"candidates"`
	}
	path := sessionPath(sessionID, "/teleport-candidates?target="+url.QueryEscape(target))
	if err := c.apiCall(ctx, "GET", path, nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(response.Candidates) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No legal teleport destination next to %s", response.Target)), nil
	}
	cells := make([]string, len(response.Candidates))
	for i, p := range response.Candidates {
		cells[i] = p.String()
	}
	result := fmt.Sprintf("Teleport destinations next to %s: %s", response.Target, strings.Join(cells, ", "))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var response struct {
		Message string             `json:"message"`
		State   *service.GameState `json:"state"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/reset"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGameState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleActionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := args["page"].(float64); ok {
		params.Set("page", fmt.Sprintf("%d", int(page)))
	}
	if limit, ok := args["limit"].(float64); ok {
		params.Set("limit", fmt.Sprintf("%d", int(limit)))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Difficulty: %s, Party: %d, Waves every %d rounds",
			config.ConfigID, config.Name, config.Description, config.Difficulty, config.PartySize, config.SpawnInterval)
		if config.FixedLayout {
			b.WriteString(", fixed layout")
		}
		b.WriteString("\n\n")
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(instructions), nil
}

const instructions = `Legends of Valor - Complete Instructions

GAME OBJECTIVE:
Move any hero onto row 0, the monsters' nexus. You lose as soon as a monster
steps onto row 7, the heroes' nexus.

THE BOARD:
8x8 grid, row 0 at the top. Columns 2 and 5 are inaccessible walls, which
splits the board into three lanes: columns 0-1 (lane 0), 3-4 (lane 1) and
6-7 (lane 2). Each hero has a home lane and spawns on row 7 of it.

CELL LEGEND:
  N  Nexus (rows 0 and 7)
  .  Plain
  M  Market   (plain ground; trading is not part of this game)
  B  Bush     (+2 dexterity while standing on it)
  C  Cave     (+2 agility)
  K  Koulou   (+2 strength)
  O  Obstacle (blocks movement until removed)
  X  Inaccessible

TURN ORDER:
Heroes act one at a time in party order (H1, H2, H3). After the last hero,
every monster attacks a hero in range or advances one cell toward row 7.
At the end of each round heroes regenerate 10% HP and MP, fainted heroes
count down to respawn, and a new wave may spawn on row 0.

ACTIONS (one per turn):
  move            up/down/left/right. Cannot move past a monster in your lane
                  or onto another hero. A move also lets one monster advance.
  attack          Hit a monster in range (same cell or adjacent, diagonals count).
  cast            Use a spell on a monster in range. Costs MP.
  teleport        Jump next to another hero in a different lane. Use
                  teleport_candidates to see legal cells.
  recall          Return to your spawn cell.
  remove_obstacle Clear an adjacent obstacle.
  pass / cancel   End the turn doing nothing.
  info            Describe the active hero. Does not use the turn.

RULE VIOLATIONS:
An illegal action returns success=false with a reason. Nothing changes and
the same hero acts again.

STRATEGY NOTES:
- Watch threat_level in game_state: CRITICAL means a monster is one step
  from row 7.
- Heroes in range of a monster take its attack in the monster phase.
  Spread damage by rotating who stands in front.
- Terrain bonuses matter: a warrior on a Koulou hits harder.
- Fainted heroes come back after a few rounds. Do not let a lane go empty
  for long.

Good luck, and hold the lanes!`

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *service.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder
	fmt.Fprintf(&result, "Round: %d | Phase: %s | Turns: %d\n", state.Round, state.Phase, state.TotalTurns)

	switch state.Phase {
	case engine.HeroesWin:
		result.WriteString("🎉 VICTORY! The heroes reached the monsters' nexus.\n")
	case engine.MonstersWin:
		result.WriteString("💀 DEFEAT! The monsters broke through.\n")
	}
	if state.Message != "" {
		fmt.Fprintf(&result, "Message: %s\n", state.Message)
	}
	if state.ThreatLevel != "" {
		fmt.Fprintf(&result, "Threat: %s\n", state.ThreatDetail)
	}
	result.WriteString("\n")

	if state.Board != "" {
		result.WriteString(state.Board)
	} else {
		result.WriteString(state.Snapshot.Render())
	}

	if len(state.LocalView) > 0 {
		fmt.Fprintf(&result, "\nAround %s:\n", state.ActiveHero)
		for _, cell := range state.LocalView {
			occupant := ""
			if cell.Hero != "" {
				occupant += " " + cell.Hero
			}
			if cell.Monster != "" {
				occupant += " " + cell.Monster
			}
			fmt.Fprintf(&result, "  %s %s%s\n", cell.Position, cell.Type, occupant)
		}
	}
	if len(state.Actions) > 0 {
		names := make([]string, len(state.Actions))
		for i, a := range state.Actions {
			names[i] = string(a)
		}
		fmt.Fprintf(&result, "\nAvailable actions: %s\n", strings.Join(names, ", "))
	}

	return result.String()
}

func formatActResult(action engine.Action, result *service.ActResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "✓ %s\n", action.Type)
	} else {
		fmt.Fprintf(&b, "✗ %s: %s\n", action.Type, result.Reason)
		if !result.TurnConsumed {
			b.WriteString("The turn was not used; the same hero acts again.\n")
		}
	}
	for _, msg := range result.Messages {
		fmt.Fprintf(&b, "  %s\n", msg)
	}
	if result.Combat != nil && result.Combat.Damage > 0 {
		fmt.Fprintf(&b, "  Damage dealt: %d\n", result.Combat.Damage)
	}
	if n := len(result.Events); n > 0 {
		fmt.Fprintf(&b, "Events this action: %d\n", n)
	}
	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Event History (Page %d/%d) - Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalEvents)

	for _, event := range history.Events {
		status := "✓"
		if !event.Success {
			status = "✗"
		}
		actor := event.Actor
		if actor == "" {
			actor = "-"
		}
		fmt.Fprintf(&b, "[round %d] %s %s %s %s\n", event.Round, event.Kind, actor, status, event.Message)
	}

	return b.String()
}
