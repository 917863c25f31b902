package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/wricardo/valor-lanes/game/board"
	"github.com/wricardo/valor-lanes/game/character"
	"github.com/wricardo/valor-lanes/game/combat"
	"github.com/wricardo/valor-lanes/game/occupancy"
	"github.com/wricardo/valor-lanes/game/rules"
)

// Act applies one action for the active hero. Rule violations are reported
// in the result and leave the state untouched; the only error is
// ErrGameOver once a terminal state is reached.
func (e *GameEngine) Act(a Action) (ActionResult, error) {
	if e.IsGameOver() {
		return ActionResult{}, ErrGameOver
	}
	h, ok := e.ActiveHero()
	if !ok {
		// The whole party was down when the last round closed
		var idle ActionResult
		e.advanceTurn(&idle)
		if e.IsGameOver() {
			return ActionResult{}, ErrGameOver
		}
		if h, ok = e.ActiveHero(); !ok {
			return ActionResult{}, fmt.Errorf("%w: no hero on the board", ErrUnknownEntity)
		}
	}

	a.Type = ActionType(strings.ToLower(strings.TrimSpace(string(a.Type))))
	res := ActionResult{}
	var consumed bool
	var err error

	switch a.Type {
	case ActionMove:
		consumed, err = e.doMove(h, a, &res)
	case ActionAttack:
		consumed, err = e.doAttack(h, a, &res)
	case ActionCast:
		consumed, err = e.doCast(h, a, &res)
	case ActionTeleport:
		consumed, err = e.doTeleport(h, a, &res)
	case ActionRecall:
		consumed, err = e.doRecall(h, &res)
	case ActionRemoveObstacle:
		consumed, err = e.doRemoveObstacle(h, a, &res)
	case ActionPass, ActionCancel:
		consumed = true
		res.Messages = append(res.Messages, fmt.Sprintf("%s passes", e.heroName(h)))
	case ActionInfo:
		res.Messages = append(res.Messages, e.describe(h)...)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}

	res.Success = err == nil
	res.TurnConsumed = consumed
	if err != nil {
		res.Reason = err.Error()
	}

	e.log.WithFields(logrus.Fields{
		"round":    e.round,
		"hero":     h.ID(),
		"action":   a.Type,
		"success":  res.Success,
		"consumed": consumed,
	}).Debug("hero action")

	if a.Type != ActionInfo {
		msg := res.Reason
		if len(res.Messages) > 0 {
			msg = res.Messages[0]
		}
		e.record(Event{
			Kind:    EventHeroAction,
			Actor:   h.ID(),
			Action:  a.Type,
			Success: res.Success,
			Message: msg,
		})
	}

	if consumed {
		e.turns++
		if !e.checkWin() {
			e.advanceTurn(&res)
		}
	}

	switch {
	case e.IsGameOver():
		res.Messages = append(res.Messages, e.message)
	case len(res.Messages) > 0:
		e.message = res.Messages[len(res.Messages)-1]
	case res.Reason != "":
		e.message = res.Reason
	}
	res.Phase = e.phase
	res.Round = e.round
	if next, ok := e.ActiveHero(); ok {
		res.ActiveHero = next.ID()
	}
	return res, nil
}

func (e *GameEngine) doMove(h occupancy.Handle, a Action, res *ActionResult) (bool, error) {
	dir, err := board.ParseDirection(a.Direction)
	if err != nil {
		return false, err
	}
	to, err := rules.Step(e.store, h, dir)
	if err != nil {
		return false, err
	}
	res.Messages = append(res.Messages, fmt.Sprintf("%s moved %s to %s", e.heroName(h), dir, to))
	if hero := e.hero(h); hero.Terrain != nil {
		res.Messages = append(res.Messages, fmt.Sprintf("%s gains +%d %s from the %s", hero.Name, hero.Terrain.Amount, hero.Terrain.Stat, e.board.At(to)))
	}

	if e.checkWin() {
		return true, nil
	}
	if e.config.PressureEnabled() {
		if m, mp, ok := rules.AdvanceRandomMonster(e.store, e.rng); ok {
			msg := fmt.Sprintf("%s advances to %s", e.monsterName(m), mp)
			res.Messages = append(res.Messages, msg)
			e.record(Event{Kind: EventMonsterMove, Actor: m.ID(), Success: true, Message: msg})
		}
	}
	return true, nil
}

// pickMonster resolves an explicit target, or the first monster in range
// when none is given. A missing target with nobody in range is ErrNoTarget.
func (e *GameEngine) pickMonster(h occupancy.Handle, target string) (occupancy.Handle, error) {
	if target == "" {
		inRange := rules.MonstersInRange(e.store, h)
		if len(inRange) == 0 {
			return occupancy.Handle{}, ErrNoTarget
		}
		return inRange[0], nil
	}
	m, err := e.resolveMonster(target)
	if err != nil {
		return occupancy.Handle{}, fmt.Errorf("%w: %w", combat.ErrInvalidTarget, err)
	}
	hp, _ := e.store.PositionOf(h)
	mp, _ := e.store.PositionOf(m)
	if !rules.InRange(hp, mp) {
		return occupancy.Handle{}, fmt.Errorf("%w: %s at %s", ErrOutOfRange, m, mp)
	}
	return m, nil
}

func (e *GameEngine) doAttack(h occupancy.Handle, a Action, res *ActionResult) (bool, error) {
	m, err := e.pickMonster(h, a.Target)
	if errors.Is(err, ErrNoTarget) {
		return true, err
	}
	if err != nil {
		return false, err
	}
	hero := e.hero(h)
	mon, _ := e.store.Monster(m)

	out, err := combat.HeroAttack(hero, mon, e.rng)
	if err != nil {
		return false, err
	}
	combat.ApplyHeroAction(hero, mon, out)
	res.Combat = &out
	res.Messages = append(res.Messages, out.Message)
	if out.Defeated {
		res.Messages = append(res.Messages, e.defeatMonster(m)...)
	}
	return true, nil
}

func (e *GameEngine) doCast(h occupancy.Handle, a Action, res *ActionResult) (bool, error) {
	hero := e.hero(h)
	spell, err := e.pickSpell(hero, a.Spell)
	if err != nil {
		return false, err
	}
	if !hero.HasMana(spell.ManaCost) {
		return false, fmt.Errorf("%w: %s needs %d MP, %s has %d", combat.ErrInsufficientMana, spell.Name, spell.ManaCost, hero.Name, hero.MP)
	}

	m, err := e.pickMonster(h, a.Target)
	if errors.Is(err, ErrNoTarget) {
		return true, err
	}
	if err != nil {
		return false, err
	}
	mon, _ := e.store.Monster(m)

	out, err := combat.CastSpell(hero, mon, spell, e.rng)
	if err != nil {
		return false, err
	}
	combat.ApplyHeroAction(hero, mon, out)
	res.Combat = &out
	res.Messages = append(res.Messages, out.Message)
	if out.Defeated {
		res.Messages = append(res.Messages, e.defeatMonster(m)...)
	}
	return true, nil
}

func (e *GameEngine) pickSpell(hero *character.Hero, name string) (character.Spell, error) {
	if len(hero.Spells) == 0 {
		return character.Spell{}, fmt.Errorf("%w: %s knows no spells", ErrUnknownSpell, hero.Name)
	}
	if name == "" {
		return hero.Spells[0], nil
	}
	for _, s := range hero.Spells {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	return character.Spell{}, fmt.Errorf("%w: %q", ErrUnknownSpell, name)
}

func (e *GameEngine) doTeleport(h occupancy.Handle, a Action, res *ActionResult) (bool, error) {
	target, err := e.resolveHero(a.Target)
	if err != nil {
		return false, err
	}
	dest := a.Position
	if dest == nil {
		cands, err := rules.TeleportCandidates(e.store, h, target)
		if err != nil {
			return false, err
		}
		if len(cands) == 0 {
			return false, fmt.Errorf("%w: no free cell next to %s", rules.ErrIllegalDestination, target)
		}
		dest = &cands[0]
	}
	if err := rules.Teleport(e.store, h, target, *dest); err != nil {
		return false, err
	}
	res.Messages = append(res.Messages, fmt.Sprintf("%s teleported next to %s at %s", e.heroName(h), e.heroName(target), *dest))
	return true, nil
}

func (e *GameEngine) doRecall(h occupancy.Handle, res *ActionResult) (bool, error) {
	to, err := rules.Recall(e.store, h)
	if err != nil {
		return false, err
	}
	res.Messages = append(res.Messages, fmt.Sprintf("%s recalled to %s", e.heroName(h), to))
	return true, nil
}

func (e *GameEngine) doRemoveObstacle(h occupancy.Handle, a Action, res *ActionResult) (bool, error) {
	var target board.Position
	if a.Position != nil {
		target = *a.Position
	} else {
		near := rules.AdjacentObstacles(e.store, h)
		if len(near) == 0 {
			return false, fmt.Errorf("%w: nothing to clear next to %s", rules.ErrNoObstacle, e.heroName(h))
		}
		target = near[0]
	}
	if err := rules.RemoveObstacle(e.store, h, target); err != nil {
		return false, err
	}
	res.Messages = append(res.Messages, fmt.Sprintf("%s cleared the obstacle at %s", e.heroName(h), target))
	return true, nil
}

// defeatMonster removes a slain monster and pays every hero on the board
func (e *GameEngine) defeatMonster(m occupancy.Handle) []string {
	mon, _ := e.store.Monster(m)
	name := e.monsterName(m)
	_ = e.store.Remove(m)

	xp := mon.Level * character.VictoryXPPerLevel
	gold := mon.Level * character.VictoryGoldPerLevel
	msgs := []string{fmt.Sprintf("%s was defeated! Heroes gain %d XP and %d gold", name, xp, gold)}
	e.record(Event{Kind: EventMonsterDeath, Actor: m.ID(), Success: true, Message: msgs[0]})

	for _, h := range e.store.PlacedHeroes() {
		hero := e.hero(h)
		if !hero.Alive() {
			continue
		}
		hero.AddGold(gold)
		if hero.GainExperience(xp) {
			msg := fmt.Sprintf("%s reached level %d", e.heroName(h), hero.Level)
			msgs = append(msgs, msg)
			e.record(Event{Kind: EventLevelUp, Actor: h.ID(), Success: true, Message: msg})
		}
	}
	e.log.WithFields(logrus.Fields{"round": e.round, "monster": m.ID()}).Info("monster defeated")
	return msgs
}

// describe reports the active hero and what it can reach without acting
func (e *GameEngine) describe(h occupancy.Handle) []string {
	hero := e.hero(h)
	p, _ := e.store.PositionOf(h)
	out := []string{
		fmt.Sprintf("%s at %s: %s", h, p, hero),
		fmt.Sprintf("STR %d DEX %d AGI %d, XP %d/%d, gold %d", hero.Strength, hero.Dexterity, hero.Agility, hero.Experience, hero.XPForNextLevel(), hero.Gold),
	}
	for _, m := range rules.MonstersInRange(e.store, h) {
		mon, _ := e.store.Monster(m)
		out = append(out, fmt.Sprintf("in range: %s", mon))
	}
	for _, o := range rules.AdjacentObstacles(e.store, h) {
		out = append(out, fmt.Sprintf("obstacle at %s", o))
	}
	return out
}
