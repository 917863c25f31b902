// Package session keeps the live Valor Lanes games of a server.
//
// Manager stores service.Session values in memory keyed by a
// case-insensitive id. Each session owns its own engine.GameEngine, built
// from the game config and the character source handed to NewManager.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs generated with crypto/rand. Callers may
// also pass their own id; ids are unique regardless of case.
//
// Concurrency:
//
// The manager is safe for concurrent use. It only guards the session map;
// access to a session's engine is serialized by the session's own lock
// (service.Session.Lock), which the game service takes around every call.
//
// Usage:
//
//	cat, _ := catalog.Default()
//	manager := session.NewManager(cat)
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//
// Cleanup:
//
// Nothing is persisted. CleanupExpiredSessions drops sessions idle for
// longer than a given age; the server runs it on a ticker.
package session
