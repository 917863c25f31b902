// Package character holds the hero and monster units, their items and the
// balance constants used by the combat resolver.
//
// Heroes come in three classes and monsters in three kinds. Each variant is
// a tag plus a row in a modifier table: a hero class names the two stats
// that grow faster on level-up, a monster kind names the stat boosted once
// at construction.
//
// Usage:
//
//	h := character.NewHero("Gaerdal", character.Warrior, 1, 100, 700, 600, 500, 1354, 7)
//	m := character.NewMonster(character.Dragon, "Natsunomeryu", 1, 100, 200, 10)
//	h.GainExperience(m.Level * character.VictoryXPPerLevel)
package character
