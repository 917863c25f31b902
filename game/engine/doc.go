// Package engine runs a Valor Lanes game: heroes push up three lanes of an
// 8x8 board toward the monsters' nexus while monsters march the other way.
//
// The engine package implements the round machine:
//   - Hero turns in party order (move, attack, cast, teleport, recall,
//     remove_obstacle, pass, cancel, info)
//   - The monster phase, where every monster attacks a hero in range or
//     advances one cell
//   - The end of round: regeneration, respawn timers and monster waves
//   - Win detection after every movement and at the end of each round
//
// Core Types:
//
// The Engine interface defines the contract used by the service layer and
// is implemented by GameEngine. GameConfig describes a scenario loaded from
// JSON, Snapshot is the serializable view of a game, and Event is one entry
// of its history.
//
// Usage:
//
//	cat, err := catalog.Default()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	config, err := engine.LoadConfigByName("configs", "normal")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	game, err := engine.NewEngine(config, cat, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	res, err := game.Act(engine.Action{Type: engine.ActionMove, Direction: "up"})
//	fmt.Println(res.Messages, game.Snapshot().Render())
//
// Rule violations never return an error from Act: they come back as an
// ActionResult with Success false and leave the turn with the same hero.
// Act only fails with ErrGameOver once a side has won.
//
// A GameEngine is not safe for concurrent use. The session layer holds a
// lock around every call.
package engine
