package engine

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/valor-lanes/game/board"
	"github.com/wricardo/valor-lanes/game/combat"
	"github.com/wricardo/valor-lanes/game/occupancy"
	"github.com/wricardo/valor-lanes/game/rules"
)

// advanceTurn hands play to the next hero on the board. After the last
// hero it runs the monster phase and the end of round, then starts the
// next round with the first hero standing. While the whole party is
// fainted rounds keep running until someone respawns or the game ends.
func (e *GameEngine) advanceTurn(res *ActionResult) {
	if next, ok := e.nextPlacedHero(e.turn + 1); ok {
		e.turn = next
		return
	}

	guard := e.config.EffectiveRespawnRounds() + 2
	for i := 0; i <= guard; i++ {
		res.Messages = append(res.Messages, e.runRound()...)
		if e.IsGameOver() {
			return
		}
		if first, ok := e.nextPlacedHero(0); ok {
			e.turn = first
			return
		}
	}
	// Nobody came back; keep waiting for the next action to retry.
	e.turn = len(e.party)
	e.log.WithField("round", e.round).Warn("no hero available after respawn window")
}

func (e *GameEngine) nextPlacedHero(from int) (int, bool) {
	for i := from; i < len(e.party); i++ {
		if e.store.Placed(e.party[i]) {
			return i, true
		}
	}
	return 0, false
}

// runRound closes the current round and opens the next one
func (e *GameEngine) runRound() []string {
	var msgs []string

	e.phase = MonsterPhase
	msgs = append(msgs, e.monsterPhase()...)
	if e.IsGameOver() {
		return msgs
	}

	e.phase = EndOfRound
	msgs = append(msgs, e.endOfRound()...)
	if e.IsGameOver() {
		return msgs
	}

	e.record(Event{Kind: EventRoundEnd, Success: true, Message: fmt.Sprintf("round %d ended", e.round)})
	e.log.WithFields(logrus.Fields{
		"round":    e.round,
		"monsters": len(e.store.PlacedMonsters()),
	}).Debug("round ended")

	e.round++
	e.phase = AwaitingHero
	return msgs
}

// monsterPhase lets every monster alive at its start act once: attack a
// random hero in range, otherwise advance.
func (e *GameEngine) monsterPhase() []string {
	var msgs []string
	for _, m := range e.store.PlacedMonsters() {
		mon, ok := e.store.Monster(m)
		if !ok || !mon.Alive() || !e.store.Placed(m) {
			continue
		}

		targets := rules.HeroesInRange(e.store, m)
		if len(targets) > 0 {
			h := targets[e.rng.Intn(len(targets))]
			hero := e.hero(h)
			out, err := combat.MonsterAttack(mon, hero, e.rng)
			if err != nil {
				continue
			}
			combat.ApplyMonsterAction(hero, out)
			msgs = append(msgs, out.Message)
			e.record(Event{Kind: EventMonsterAttack, Actor: m.ID(), Success: !out.Dodged, Message: out.Message})
			if out.Defeated {
				msgs = append(msgs, e.faint(h))
				if e.checkWin() {
					return msgs
				}
			}
			continue
		}

		if to, moved := rules.AdvanceMonster(e.store, m); moved {
			msg := fmt.Sprintf("%s advances to %s", e.monsterName(m), to)
			msgs = append(msgs, msg)
			e.record(Event{Kind: EventMonsterMove, Actor: m.ID(), Success: true, Message: msg})
			if e.checkWin() {
				return msgs
			}
		}
	}
	return msgs
}

// faint takes a defeated hero off the board and starts its respawn timer
func (e *GameEngine) faint(h occupancy.Handle) string {
	_ = rules.Withdraw(e.store, h)
	e.respawn[h] = e.config.EffectiveRespawnRounds()
	msg := fmt.Sprintf("%s has fainted and will respawn in %d rounds", e.heroName(h), e.respawn[h])
	e.record(Event{Kind: EventHeroFainted, Actor: h.ID(), Success: true, Message: msg})
	e.log.WithFields(logrus.Fields{"round": e.round, "hero": h.ID()}).Info("hero fainted")
	return msg
}

// endOfRound regenerates heroes, ticks respawn timers and spawns waves
func (e *GameEngine) endOfRound() []string {
	var msgs []string

	for _, h := range e.store.PlacedHeroes() {
		if hero := e.hero(h); hero.Alive() {
			hero.Regenerate()
		}
	}

	msgs = append(msgs, e.tickRespawns()...)

	if interval := e.config.EffectiveSpawnInterval(); interval > 0 && e.round%interval == 0 {
		msgs = append(msgs, e.spawnWave()...)
	}

	e.checkWin()
	return msgs
}

func (e *GameEngine) tickRespawns() []string {
	var msgs []string
	pending := make([]occupancy.Handle, 0, len(e.respawn))
	for h := range e.respawn {
		pending = append(pending, h)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].N < pending[j].N })

	for _, h := range pending {
		e.respawn[h]--
		if e.respawn[h] > 0 {
			continue
		}
		lane, _ := e.store.HomeLane(h)
		spawn := board.HeroSpawn(lane)
		if _, taken := e.store.HeroAt(spawn); taken {
			e.respawn[h] = 1
			msgs = append(msgs, fmt.Sprintf("%s cannot respawn, %s is occupied", e.heroName(h), spawn))
			continue
		}
		hero := e.hero(h)
		hero.Revive()
		if err := rules.PlaceHero(e.store, h, spawn); err != nil {
			e.respawn[h] = 1
			continue
		}
		delete(e.respawn, h)
		msg := fmt.Sprintf("%s respawned at %s", e.heroName(h), spawn)
		msgs = append(msgs, msg)
		e.record(Event{Kind: EventHeroRespawn, Actor: h.ID(), Success: true, Message: msg})
		e.log.WithFields(logrus.Fields{"round": e.round, "hero": h.ID()}).Info("hero respawned")
	}
	return msgs
}

// WaveTarget is how many monsters should be alive after a wave
func WaveTarget(d Difficulty, heroes, round int) int {
	target := max(1, heroes) + (round-1)/3
	switch d {
	case Easy:
		target = max(1, target-1)
	case Hard:
		target++
	}
	return target
}

// spawnWave tops the board up to the wave target, one monster per lane in
// turn at the topmost free cell of each lane
func (e *GameEngine) spawnWave() []string {
	target := WaveTarget(e.config.EffectiveDifficulty(), len(e.party), e.round)
	need := target - len(e.store.PlacedMonsters())
	if need <= 0 {
		return nil
	}

	level := e.highestHeroLevel()
	var msgs []string
	for lane, full := 0, 0; need > 0 && full < board.NumLanes; lane = (lane + 1) % board.NumLanes {
		p, ok := e.topFreeMonsterCell(lane)
		if !ok {
			full++
			continue
		}
		full = 0
		if msg, ok := e.spawnMonster(p, level); ok {
			msgs = append(msgs, msg)
		}
		// A slot the source could not fill still counts toward the wave
		need--
	}
	e.log.WithFields(logrus.Fields{"round": e.round, "spawned": len(msgs), "target": target}).Info("wave spawned")
	return msgs
}

// topFreeMonsterCell finds the first enterable cell of a lane scanning
// down from the monsters' nexus. The heroes' nexus row is never a spawn
// cell, so a wave cannot end the game on its own.
func (e *GameEngine) topFreeMonsterCell(lane int) (board.Position, bool) {
	for r := board.MonsterNexusRow; r < board.HeroNexusRow; r++ {
		for _, c := range board.LaneColumns(lane) {
			p := board.Position{Row: r, Col: c}
			if e.store.CanEnter(occupancy.MonsterKind, p) == nil {
				return p, true
			}
		}
	}
	return board.Position{}, false
}

// spawnMonster asks the source for a monster and places it on p. An empty
// template pool or a taken cell leaves the slot empty.
func (e *GameEngine) spawnMonster(p board.Position, level int) (string, bool) {
	if e.store.CanEnter(occupancy.MonsterKind, p) != nil {
		return "", false
	}
	mon, ok := e.source.MonsterNear(level, e.rng)
	if !ok || mon == nil {
		e.log.WithField("level", level).Warn("no monster template available")
		return "", false
	}
	m := e.store.AddMonster(mon)
	if err := e.store.Place(m, p); err != nil {
		_ = e.store.Remove(m)
		return "", false
	}
	msg := fmt.Sprintf("%s (level %d %s) appears at %s", e.monsterName(m), mon.Level, mon.Kind, p)
	e.record(Event{Kind: EventMonsterSpawn, Actor: m.ID(), Success: true, Message: msg})
	return msg, true
}

// checkWin moves the game to a terminal phase when a win condition holds
func (e *GameEngine) checkWin() bool {
	if e.IsGameOver() {
		return true
	}
	for _, h := range e.store.PlacedHeroes() {
		if p, _ := e.store.PositionOf(h); p.Row == board.MonsterNexusRow {
			e.finish(HeroesWin, fmt.Sprintf("%s reached the monsters' nexus. Heroes win!", e.heroName(h)))
			return true
		}
	}
	for _, m := range e.store.PlacedMonsters() {
		if p, _ := e.store.PositionOf(m); p.Row == board.HeroNexusRow {
			e.finish(MonstersWin, fmt.Sprintf("%s reached the heroes' nexus. Monsters win!", e.monsterName(m)))
			return true
		}
	}
	if e.config.AllFaintedLoses && len(e.store.PlacedHeroes()) == 0 {
		e.finish(MonstersWin, "Every hero has fainted. Monsters win!")
		return true
	}
	return false
}

func (e *GameEngine) finish(p Phase, msg string) {
	e.phase = p
	e.message = msg
	e.record(Event{Kind: EventGameOver, Success: p == HeroesWin, Message: msg})
	e.log.WithFields(logrus.Fields{"round": e.round, "result": p}).Info("game over")
}
