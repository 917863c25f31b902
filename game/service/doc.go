// Package service provides the business logic layer for Valor Lanes.
//
// The service package implements:
//   - Multi-session game management
//   - Configuration loading, listing and saving
//   - Hero actions with the events they produced
//   - Decision aids: nexus threat level, local view, available actions
//   - Paginated event history
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns one engine and a mutex, so actions on a
// session are serialized while different sessions run in parallel.
//
// Usage:
//
//	cat, _ := catalog.Default()
//	configMgr, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	gameService := service.NewGameService(session.NewManager(cat), configMgr)
//
//	info, err := gameService.CreateSession(ctx, "hard", 42)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := gameService.Act(ctx, info.ID, engine.Action{Type: engine.ActionMove, Direction: "up"})
//
// Errors:
//
// Rule violations are not errors: Act returns them as a result with
// Success false. Errors are reserved for ErrSessionNotFound,
// ErrConfigNotFound and engine.ErrGameOver, all matchable with errors.Is.
package service
