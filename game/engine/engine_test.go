package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/wricardo/valor-lanes/game/board"
	"github.com/wricardo/valor-lanes/game/character"
	"github.com/wricardo/valor-lanes/game/occupancy"
)

var testLayout = []string{
	"NNXNNXNN",
	"..X.BX..",
	".OXC.XK.",
	"..X..X.O",
	"B.XO.X..",
	"..X..XM.",
	".MX..X..",
	"NNXNNXNN",
}

var frostBite = character.Spell{Name: "Frost Bite", Damage: 100, ManaCost: 50, Element: character.Ice}

// fakeSource is a Source whose behavior each test can override
type fakeSource struct {
	PartyFunc       func(n int) ([]*character.Hero, error)
	MonsterNearFunc func(level int, rng *rand.Rand) (*character.Monster, bool)
}

func (f *fakeSource) Party(n int) ([]*character.Hero, error) {
	if f.PartyFunc != nil {
		return f.PartyFunc(n)
	}
	return testParty(n), nil
}

func (f *fakeSource) MonsterNear(level int, rng *rand.Rand) (*character.Monster, bool) {
	if f.MonsterNearFunc != nil {
		return f.MonsterNearFunc(level, rng)
	}
	return testMonster(level), true
}

func testParty(n int) []*character.Hero {
	heroes := make([]*character.Hero, n)
	for i := range heroes {
		h := character.NewHero(fmt.Sprintf("Hero%d", i+1), character.Warrior, 1, 100, 500, 500, 0, 0, 0)
		h.Spells = []character.Spell{frostBite}
		heroes[i] = h
	}
	return heroes
}

func testMonster(level int) *character.Monster {
	return character.NewMonster(character.Exoskeleton, "Grunt", level, 100, 0, 0)
}

func newTestEngine(t *testing.T, src Source, modify func(c *GameConfig)) *GameEngine {
	t.Helper()
	config := &GameConfig{
		Name:            "test",
		Difficulty:      Normal,
		SpawnInterval:   100,
		PartySize:       3,
		Seed:            1,
		InitialMonsters: intPtr(0),
		MonsterPressure: boolPtr(false),
		Layout:          append([]string(nil), testLayout...),
	}
	if modify != nil {
		modify(config)
	}
	if src == nil {
		src = &fakeSource{}
	}
	e, err := NewEngine(config, src, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return e
}

func addMonster(t *testing.T, e *GameEngine, m *character.Monster, p board.Position) occupancy.Handle {
	t.Helper()
	h := e.store.AddMonster(m)
	if err := e.store.Place(h, p); err != nil {
		t.Fatalf("Failed to place monster at %s: %v", p, err)
	}
	return h
}

func moveHero(t *testing.T, e *GameEngine, i int, p board.Position) {
	t.Helper()
	if err := e.store.Move(e.party[i], p); err != nil {
		t.Fatalf("Failed to move hero %d to %s: %v", i, p, err)
	}
}

func act(t *testing.T, e *GameEngine, a Action) ActionResult {
	t.Helper()
	res, err := e.Act(a)
	if err != nil {
		t.Fatalf("Unexpected error from %s: %v", a.Type, err)
	}
	return res
}

func pass(t *testing.T, e *GameEngine, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		act(t, e, Action{Type: ActionPass})
	}
}

func heroPos(e *GameEngine, i int) (board.Position, bool) {
	return e.store.PositionOf(e.party[i])
}

func TestNewEngine_InitialState(t *testing.T) {
	e := newTestEngine(t, nil, func(c *GameConfig) { c.InitialMonsters = nil })

	if e.Round() != 1 {
		t.Errorf("Expected round 1, got %d", e.Round())
	}
	if e.Phase() != AwaitingHero {
		t.Errorf("Expected phase %s, got %s", AwaitingHero, e.Phase())
	}
	active, ok := e.ActiveHero()
	if !ok || active.ID() != "H1" {
		t.Errorf("Expected H1 to act first, got %v (%v)", active, ok)
	}

	for lane := 0; lane < board.NumLanes; lane++ {
		p, ok := heroPos(e, lane)
		if !ok || p != board.HeroSpawn(lane) {
			t.Errorf("Expected hero %d at %s, got %s (%v)", lane, board.HeroSpawn(lane), p, ok)
		}
		if _, ok := e.store.MonsterAt(board.MonsterSpawn(lane)); !ok {
			t.Errorf("Expected a monster at %s", board.MonsterSpawn(lane))
		}
	}
	if err := e.store.CheckInvariants(); err != nil {
		t.Errorf("Expected consistent occupancy, got %v", err)
	}
}

func TestNewEngine_Errors(t *testing.T) {
	if _, err := NewEngine(DefaultConfig(), nil, nil); err == nil {
		t.Error("Expected error for missing source")
	}

	bad := DefaultConfig()
	bad.Difficulty = "impossible"
	if _, err := NewEngine(bad, &fakeSource{}, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}

	empty := &fakeSource{PartyFunc: func(n int) ([]*character.Hero, error) { return nil, nil }}
	if _, err := NewEngine(DefaultConfig(), empty, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for empty party, got %v", err)
	}

	named := DefaultConfig()
	named.PartySize = 0
	named.Party = []string{"Gaerdal"}
	if _, err := NewEngine(named, &fakeSource{}, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig when source cannot name heroes, got %v", err)
	}
}

func TestNewEngine_SeededBoardIsReplayable(t *testing.T) {
	config := DefaultConfig()
	config.Seed = 99

	a, err := NewEngine(config, &fakeSource{}, nil)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	b, err := NewEngine(config, &fakeSource{}, nil)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	la, lb := a.Board().Layout(), b.Board().Layout()
	if strings.Join(la, "\n") != strings.Join(lb, "\n") {
		t.Errorf("Expected identical boards for the same seed\n%v\n%v", la, lb)
	}
}

func TestAct_MoveAdvancesTurnAndRound(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	res := act(t, e, Action{Type: ActionMove, Direction: "up"})
	if !res.Success || !res.TurnConsumed {
		t.Fatalf("Expected successful consuming move, got %+v", res)
	}
	if res.ActiveHero != "H2" {
		t.Errorf("Expected H2 to act next, got %q", res.ActiveHero)
	}
	if p, _ := heroPos(e, 0); p != (board.Position{Row: 6, Col: 0}) {
		t.Errorf("Expected H1 at (6,0), got %s", p)
	}

	act(t, e, Action{Type: ActionMove, Direction: "UP"})
	res = act(t, e, Action{Type: " Move ", Direction: "w"})
	if !res.Success {
		t.Fatalf("Expected normalized action to succeed, got %+v", res)
	}
	if e.Round() != 2 {
		t.Errorf("Expected round 2 after every hero acted, got %d", e.Round())
	}
	if res.ActiveHero != "H1" {
		t.Errorf("Expected H1 to open round 2, got %q", res.ActiveHero)
	}
	if e.Snapshot().TotalTurns != 3 {
		t.Errorf("Expected 3 turns, got %d", e.Snapshot().TotalTurns)
	}
}

func TestAct_RejectedActionsKeepTurn(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   string
	}{
		{"off the board", Action{Type: ActionMove, Direction: "down"}, "out of bounds"},
		{"bad direction", Action{Type: ActionMove, Direction: "sideways"}, ""},
		{"unknown action", Action{Type: "dance"}, "unknown action"},
		{"unknown monster", Action{Type: ActionAttack, Target: "M9"}, "invalid target"},
		{"hero as monster", Action{Type: ActionAttack, Target: "H2"}, "invalid target"},
		{"unknown spell", Action{Type: ActionCast, Spell: "Meteor"}, "unknown spell"},
		{"teleport to self", Action{Type: ActionTeleport, Target: "H1"}, "illegal destination"},
		{"teleport off lane", Action{Type: ActionTeleport, Target: "H2", Position: &board.Position{Row: 6, Col: 1}}, "illegal destination"},
		{"no obstacle nearby", Action{Type: ActionRemoveObstacle}, "no obstacle"},
		{"obstacle too far", Action{Type: ActionRemoveObstacle, Position: &board.Position{Row: 2, Col: 1}}, "not adjacent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, nil, nil)
			before := len(e.History())

			res := act(t, e, tt.action)
			if res.Success {
				t.Errorf("Expected failure, got %+v", res)
			}
			if res.TurnConsumed {
				t.Error("Expected rejected action to keep the turn")
			}
			if res.ActiveHero != "H1" {
				t.Errorf("Expected H1 still active, got %q", res.ActiveHero)
			}
			if tt.want != "" && !strings.Contains(res.Reason, tt.want) {
				t.Errorf("Expected reason containing %q, got %q", tt.want, res.Reason)
			}
			if len(e.History()) != before+1 {
				t.Errorf("Expected rejected action to be recorded, history %d -> %d", before, len(e.History()))
			}
			if p, _ := heroPos(e, 0); p != board.HeroSpawn(0) {
				t.Errorf("Expected H1 to stay at spawn, got %s", p)
			}
		})
	}
}

func TestAct_PassCancelAndInfo(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	res := act(t, e, Action{Type: ActionInfo})
	if !res.Success || res.TurnConsumed {
		t.Errorf("Expected info to succeed without consuming, got %+v", res)
	}
	if len(res.Messages) == 0 {
		t.Error("Expected info to describe the hero")
	}
	if len(e.History()) != 0 {
		t.Errorf("Expected info to stay out of the history, got %d events", len(e.History()))
	}

	res = act(t, e, Action{Type: ActionPass})
	if !res.TurnConsumed || res.ActiveHero != "H2" {
		t.Errorf("Expected pass to hand over to H2, got %+v", res)
	}
	res = act(t, e, Action{Type: ActionCancel})
	if !res.TurnConsumed || res.ActiveHero != "H3" {
		t.Errorf("Expected cancel to hand over to H3, got %+v", res)
	}
}

func TestAct_AttackWithNothingInRangeConsumesTurn(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	for _, a := range []Action{{Type: ActionAttack}, {Type: ActionCast}} {
		res := act(t, e, a)
		if res.Success {
			t.Errorf("Expected %s to report failure, got %+v", a.Type, res)
		}
		if !res.TurnConsumed {
			t.Errorf("Expected %s with nothing in range to consume the turn", a.Type)
		}
		if res.Reason != "no monsters in range" {
			t.Errorf("Expected reason 'no monsters in range', got %q", res.Reason)
		}
	}
	if hero := e.hero(e.party[1]); hero.MP != hero.MaxMP {
		t.Errorf("Expected no mana spent without a target, got %d/%d", hero.MP, hero.MaxMP)
	}
}

func TestAct_AttackOutOfRange(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	addMonster(t, e, testMonster(1), board.Position{Row: 3, Col: 0})

	res := act(t, e, Action{Type: ActionAttack, Target: "M1"})
	if res.TurnConsumed || res.Success {
		t.Errorf("Expected out-of-range attack to be rejected, got %+v", res)
	}
	if !strings.Contains(res.Reason, "out of range") {
		t.Errorf("Expected out of range reason, got %q", res.Reason)
	}
}

func TestAct_AttackDefeatsMonsterAndPaysParty(t *testing.T) {
	src := &fakeSource{PartyFunc: func(n int) ([]*character.Hero, error) {
		heroes := testParty(n)
		heroes[0].Strength = 1500
		heroes[1].Experience = 19
		return heroes, nil
	}}
	e := newTestEngine(t, src, nil)
	addMonster(t, e, testMonster(1), board.Position{Row: 6, Col: 0})

	res := act(t, e, Action{Type: ActionAttack})
	if !res.Success || !res.TurnConsumed {
		t.Fatalf("Expected successful attack, got %+v", res)
	}
	if res.Combat == nil || !res.Combat.Defeated || res.Combat.Damage != 150 {
		t.Fatalf("Expected a 150 damage killing blow, got %+v", res.Combat)
	}
	if len(e.store.PlacedMonsters()) != 0 {
		t.Error("Expected defeated monster to leave the board")
	}

	for i, h := range e.party {
		hero := e.hero(h)
		if hero.Gold != 100 {
			t.Errorf("Expected hero %d to earn 100 gold, got %d", i, hero.Gold)
		}
	}
	if got := e.hero(e.party[0]).Experience; got != 2 {
		t.Errorf("Expected 2 XP, got %d", got)
	}
	if got := e.hero(e.party[1]).Level; got != 2 {
		t.Errorf("Expected H2 to reach level 2, got %d", got)
	}

	kinds := map[EventKind]bool{}
	for _, ev := range e.History() {
		kinds[ev.Kind] = true
		if ev.ID == "" {
			t.Error("Expected every event to carry an id")
		}
	}
	for _, k := range []EventKind{EventHeroAction, EventMonsterDeath, EventLevelUp} {
		if !kinds[k] {
			t.Errorf("Expected a %s event in the history", k)
		}
	}
}

func TestAct_CastSpell(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	m := addMonster(t, e, testMonster(1), board.Position{Row: 6, Col: 1})
	mon, _ := e.store.Monster(m)

	res := act(t, e, Action{Type: ActionCast, Target: "m1"})
	if !res.Success || !res.TurnConsumed {
		t.Fatalf("Expected successful cast, got %+v", res)
	}
	if res.Combat == nil || res.Combat.Damage <= 0 {
		t.Fatalf("Expected spell damage, got %+v", res.Combat)
	}
	if mon.HP != mon.MaxHP-res.Combat.Damage {
		t.Errorf("Expected monster HP %d, got %d", mon.MaxHP-res.Combat.Damage, mon.HP)
	}
	if hero := e.hero(e.party[0]); hero.MP != 50 {
		t.Errorf("Expected 50 MP left, got %d", hero.MP)
	}
	if mon.DamageReduction < 0.09 || mon.DamageReduction > 0.11 {
		t.Errorf("Expected ice debuff of 0.1, got %f", mon.DamageReduction)
	}
}

func TestAct_CastWithoutManaKeepsTurn(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	addMonster(t, e, testMonster(1), board.Position{Row: 6, Col: 0})
	e.hero(e.party[0]).MP = 10

	res := act(t, e, Action{Type: ActionCast, Spell: "frost bite"})
	if res.Success || res.TurnConsumed {
		t.Errorf("Expected cast without mana to be rejected, got %+v", res)
	}
	if !strings.Contains(res.Reason, "insufficient mana") {
		t.Errorf("Expected insufficient mana reason, got %q", res.Reason)
	}
}

func TestAct_Teleport(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	cands, err := e.TeleportCandidates("H2")
	if err != nil {
		t.Fatalf("Failed to list candidates: %v", err)
	}
	want := []board.Position{{Row: 6, Col: 3}, {Row: 6, Col: 4}, {Row: 7, Col: 4}}
	if fmt.Sprint(cands) != fmt.Sprint(want) {
		t.Errorf("Expected candidates %v, got %v", want, cands)
	}

	res := act(t, e, Action{Type: ActionTeleport, Target: "H2"})
	if !res.Success || !res.TurnConsumed {
		t.Fatalf("Expected teleport to succeed, got %+v", res)
	}
	if p, _ := heroPos(e, 0); p != want[0] {
		t.Errorf("Expected H1 at first candidate %s, got %s", want[0], p)
	}
	if lane, _ := e.store.HomeLane(e.party[0]); lane != 0 {
		t.Errorf("Expected home lane to stay 0, got %d", lane)
	}
}

func TestAct_Recall(t *testing.T) {
	e := newTestEngine(t, nil, nil)

	act(t, e, Action{Type: ActionMove, Direction: "up"})
	res := act(t, e, Action{Type: ActionTeleport, Target: "H1", Position: &board.Position{Row: 7, Col: 0}})
	if !res.Success {
		t.Fatalf("Expected H2 to teleport onto lane 0 spawn, got %+v", res)
	}
	pass(t, e, 1)

	res = act(t, e, Action{Type: ActionRecall})
	if res.Success || res.TurnConsumed {
		t.Errorf("Expected recall onto a held spawn to be rejected, got %+v", res)
	}
	if !strings.Contains(res.Reason, "spawn cell occupied") {
		t.Errorf("Expected occupied spawn reason, got %q", res.Reason)
	}

	pass(t, e, 1)
	res = act(t, e, Action{Type: ActionRecall})
	if !res.Success || !res.TurnConsumed {
		t.Fatalf("Expected H2 recall to succeed, got %+v", res)
	}
	if p, _ := heroPos(e, 1); p != board.HeroSpawn(1) {
		t.Errorf("Expected H2 back at %s, got %s", board.HeroSpawn(1), p)
	}
}

func TestAct_RemoveObstacle(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	moveHero(t, e, 0, board.Position{Row: 3, Col: 1})

	res := act(t, e, Action{Type: ActionRemoveObstacle})
	if !res.Success || !res.TurnConsumed {
		t.Fatalf("Expected obstacle removal to succeed, got %+v", res)
	}
	if got := e.Board().At(board.Position{Row: 2, Col: 1}); got != board.Plain {
		t.Errorf("Expected (2,1) to become plain, got %s", got)
	}
}

func TestAct_TerrainBonusFollowsHero(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	moveHero(t, e, 0, board.Position{Row: 5, Col: 0})
	hero := e.hero(e.party[0])
	base := hero.Dexterity

	act(t, e, Action{Type: ActionMove, Direction: "up"})
	if hero.Dexterity != base+2 {
		t.Errorf("Expected bush to grant +2 DEX, got %d -> %d", base, hero.Dexterity)
	}
	pass(t, e, 2)

	act(t, e, Action{Type: ActionMove, Direction: "up"})
	if hero.Dexterity != base {
		t.Errorf("Expected DEX back to %d after leaving the bush, got %d", base, hero.Dexterity)
	}
	if hero.Terrain != nil {
		t.Errorf("Expected no terrain bonus, got %+v", hero.Terrain)
	}
}

func TestAct_MonsterPressure(t *testing.T) {
	e := newTestEngine(t, nil, func(c *GameConfig) {
		c.InitialMonsters = nil
		c.MonsterPressure = nil
	})

	act(t, e, Action{Type: ActionMove, Direction: "up"})

	advanced := 0
	for _, m := range e.store.PlacedMonsters() {
		if p, _ := e.store.PositionOf(m); p.Row == 1 {
			advanced++
		}
	}
	if advanced != 1 {
		t.Errorf("Expected exactly one monster pushed forward, got %d", advanced)
	}
}

func TestAct_HeroesWin(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	moveHero(t, e, 0, board.Position{Row: 1, Col: 0})

	res := act(t, e, Action{Type: ActionMove, Direction: "up"})
	if res.Phase != HeroesWin {
		t.Fatalf("Expected heroes to win, got %s", res.Phase)
	}
	if !e.IsGameOver() {
		t.Error("Expected game over")
	}
	if _, err := e.Act(Action{Type: ActionPass}); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver, got %v", err)
	}
}

func TestAct_MonsterReachesNexus(t *testing.T) {
	e := newTestEngine(t, nil, func(c *GameConfig) { c.PartySize = 1 })
	addMonster(t, e, testMonster(1), board.Position{Row: 6, Col: 4})

	res := act(t, e, Action{Type: ActionPass})
	if res.Phase != MonstersWin {
		t.Fatalf("Expected monsters to win, got %s (%v)", res.Phase, res.Messages)
	}

	snap := e.Snapshot()
	if !snap.GameOver || snap.Cells[7][4].Monster != "M1" {
		t.Errorf("Expected M1 on the heroes' nexus, got %+v", snap.Cells[7][4])
	}
	if last := e.History()[len(e.History())-1]; last.Kind != EventGameOver {
		t.Errorf("Expected last event game_over, got %s", last.Kind)
	}

	if _, err := e.Act(Action{Type: ActionMove, Direction: "up"}); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver after the game ended, got %v", err)
	}
	if _, err := e.TeleportCandidates("H1"); !errors.Is(err, ErrGameOver) {
		t.Errorf("Expected ErrGameOver from candidates, got %v", err)
	}
}

func killerMonster() *character.Monster {
	return character.NewMonster(character.Exoskeleton, "Brute", 1, 2000, 0, 0)
}

func TestRespawnLiveness(t *testing.T) {
	e := newTestEngine(t, nil, func(c *GameConfig) { c.PartySize = 1 })
	moveHero(t, e, 0, board.Position{Row: 1, Col: 1})
	addMonster(t, e, killerMonster(), board.Position{Row: 0, Col: 1})

	res := act(t, e, Action{Type: ActionPass})

	joined := strings.Join(res.Messages, "\n")
	if !strings.Contains(joined, "fainted") || !strings.Contains(joined, "respawned") {
		t.Errorf("Expected faint and respawn messages, got:\n%s", joined)
	}
	if e.Round() != 3 {
		t.Errorf("Expected play to resume in round 3, got %d", e.Round())
	}
	if res.ActiveHero != "H1" || res.Phase != AwaitingHero {
		t.Errorf("Expected H1 awaiting action, got %q in %s", res.ActiveHero, res.Phase)
	}
	if p, ok := heroPos(e, 0); !ok || p != board.HeroSpawn(0) {
		t.Errorf("Expected H1 back at %s, got %s (%v)", board.HeroSpawn(0), p, ok)
	}
	if hero := e.hero(e.party[0]); hero.HP != hero.MaxHP/2 {
		t.Errorf("Expected half HP after revival, got %d/%d", hero.HP, hero.MaxHP)
	}
}

func TestRespawnWaitsForFreeSpawn(t *testing.T) {
	e := newTestEngine(t, nil, func(c *GameConfig) { c.PartySize = 2 })
	moveHero(t, e, 0, board.Position{Row: 1, Col: 1})
	moveHero(t, e, 1, board.HeroSpawn(0))
	addMonster(t, e, killerMonster(), board.Position{Row: 0, Col: 1})

	pass(t, e, 2)
	if e.store.Placed(e.party[0]) {
		t.Fatal("Expected H1 to faint in round 1")
	}

	res := act(t, e, Action{Type: ActionPass})
	if !strings.Contains(strings.Join(res.Messages, "\n"), "cannot respawn") {
		t.Errorf("Expected respawn to wait, got %v", res.Messages)
	}
	if e.store.Placed(e.party[0]) {
		t.Error("Expected H1 to stay off the board while H2 holds the spawn")
	}
	if e.Snapshot().Heroes[0].RespawnIn != 1 {
		t.Errorf("Expected timer re-armed to 1, got %d", e.Snapshot().Heroes[0].RespawnIn)
	}

	act(t, e, Action{Type: ActionMove, Direction: "right"})
	if p, ok := heroPos(e, 0); !ok || p != board.HeroSpawn(0) {
		t.Errorf("Expected H1 respawned at %s, got %s (%v)", board.HeroSpawn(0), p, ok)
	}
}

func TestAllFaintedLoses(t *testing.T) {
	e := newTestEngine(t, nil, func(c *GameConfig) {
		c.PartySize = 1
		c.AllFaintedLoses = true
	})
	moveHero(t, e, 0, board.Position{Row: 1, Col: 1})
	addMonster(t, e, killerMonster(), board.Position{Row: 0, Col: 1})

	res := act(t, e, Action{Type: ActionPass})
	if res.Phase != MonstersWin {
		t.Errorf("Expected monsters to win when every hero fainted, got %s", res.Phase)
	}
}

func TestWaveTarget(t *testing.T) {
	tests := []struct {
		difficulty Difficulty
		heroes     int
		round      int
		want       int
	}{
		{Normal, 3, 1, 3},
		{Normal, 3, 4, 4},
		{Normal, 0, 1, 1},
		{Easy, 1, 1, 1},
		{Easy, 3, 7, 4},
		{Hard, 2, 1, 3},
		{Hard, 3, 10, 7},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d/%d", tt.difficulty, tt.heroes, tt.round), func(t *testing.T) {
			if got := WaveTarget(tt.difficulty, tt.heroes, tt.round); got != tt.want {
				t.Errorf("Expected wave target %d, got %d", tt.want, got)
			}
		})
	}
}

func TestSpawnWave(t *testing.T) {
	e := newTestEngine(t, nil, func(c *GameConfig) { c.SpawnInterval = 1 })

	pass(t, e, 3)

	monsters := e.store.PlacedMonsters()
	if len(monsters) != 3 {
		t.Fatalf("Expected a wave of 3 monsters, got %d", len(monsters))
	}
	for lane := 0; lane < board.NumLanes; lane++ {
		if _, ok := e.store.MonsterAt(board.MonsterSpawn(lane)); !ok {
			t.Errorf("Expected a wave monster at %s", board.MonsterSpawn(lane))
		}
	}

	// A full board is not topped up past the target
	pass(t, e, 3)
	if got := len(e.store.PlacedMonsters()); got > WaveTarget(Normal, 3, 2) {
		t.Errorf("Expected at most %d monsters, got %d", WaveTarget(Normal, 3, 2), got)
	}
}

func TestSpawnWave_EmptySource(t *testing.T) {
	src := &fakeSource{MonsterNearFunc: func(level int, rng *rand.Rand) (*character.Monster, bool) {
		return nil, false
	}}
	e := newTestEngine(t, src, func(c *GameConfig) { c.SpawnInterval = 1 })

	pass(t, e, 3)

	if got := len(e.store.PlacedMonsters()); got != 0 {
		t.Errorf("Expected no monsters from an empty source, got %d", got)
	}
	if e.Round() != 2 {
		t.Errorf("Expected the round to close normally, got round %d", e.Round())
	}
}

func TestSpawnWave_NeverOnHeroNexus(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	for r := board.MonsterNexusRow; r < board.HeroNexusRow; r++ {
		for _, c := range board.LaneColumns(0) {
			p := board.Position{Row: r, Col: c}
			if e.store.CanEnter(occupancy.MonsterKind, p) == nil {
				addMonster(t, e, testMonster(1), p)
			}
		}
	}

	if p, ok := e.topFreeMonsterCell(0); ok {
		t.Errorf("Expected no spawn cell in a packed lane, got %s", p)
	}

	e.round = 40
	e.spawnWave()
	for _, m := range e.store.PlacedMonsters() {
		if p, _ := e.store.PositionOf(m); p.Row == board.HeroNexusRow {
			t.Errorf("Expected no monster spawned on the heroes' nexus, got %s at %s", m, p)
		}
	}
	if e.checkWin() {
		t.Errorf("Expected the game to continue after a wave, got %s", e.Phase())
	}
}

func TestMonsterPhaseAttacksHeroInRange(t *testing.T) {
	e := newTestEngine(t, nil, func(c *GameConfig) { c.PartySize = 1 })
	addMonster(t, e, testMonster(1), board.Position{Row: 6, Col: 1})
	hero := e.hero(e.party[0])

	res := act(t, e, Action{Type: ActionPass})

	// 100 damage scaled by 0.08 minus no armor, then 10% regeneration
	if hero.HP != 100 {
		t.Errorf("Expected 8 damage healed back to 100, got %d", hero.HP)
	}
	found := false
	for _, ev := range e.History() {
		if ev.Kind == EventMonsterAttack {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected a monster_attack event, messages %v", res.Messages)
	}
	if p, _ := e.store.PositionOf(e.store.PlacedMonsters()[0]); p != (board.Position{Row: 6, Col: 1}) {
		t.Errorf("Expected attacking monster to hold its cell, got %s", p)
	}
}

func TestReset(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	act(t, e, Action{Type: ActionMove, Direction: "up"})
	pass(t, e, 2)

	if err := e.Reset(); err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}
	if e.Round() != 1 {
		t.Errorf("Expected round 1 after reset, got %d", e.Round())
	}
	if p, _ := heroPos(e, 0); p != board.HeroSpawn(0) {
		t.Errorf("Expected H1 back at spawn, got %s", p)
	}
	h := e.History()
	if len(h) < 4 || h[len(h)-1].Kind != EventReset {
		t.Errorf("Expected history kept with a reset event at the end, got %d events", len(h))
	}
	if e.Snapshot().TotalTurns != 0 {
		t.Errorf("Expected turn counter cleared, got %d", e.Snapshot().TotalTurns)
	}
}

func TestReset_FailedPartyKeepsGame(t *testing.T) {
	calls := 0
	src := &fakeSource{PartyFunc: func(n int) ([]*character.Hero, error) {
		calls++
		if calls > 1 {
			return nil, errors.New("party table unavailable")
		}
		return testParty(n), nil
	}}
	e := newTestEngine(t, src, nil)
	act(t, e, Action{Type: ActionMove, Direction: "up"})

	if err := e.Reset(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("Expected ErrInvalidConfig from reset, got %v", err)
	}

	if p, _ := heroPos(e, 0); p != (board.Position{Row: 6, Col: 0}) {
		t.Errorf("Expected H1 still at (6,0), got %s", p)
	}
	res := act(t, e, Action{Type: ActionInfo})
	if !res.Success {
		t.Errorf("Expected info to succeed after a failed reset, got %q", res.Reason)
	}
	res = act(t, e, Action{Type: ActionMove, Direction: "up"})
	if !res.Success || !res.TurnConsumed {
		t.Errorf("Expected H2 to keep playing after a failed reset, got %+v", res)
	}
}

func TestHistoryIsCapped(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	for i := 0; i < MaxHistoryEntries+10; i++ {
		e.record(Event{Kind: EventRoundEnd, Message: fmt.Sprintf("event %d", i)})
	}
	h := e.History()
	if len(h) != MaxHistoryEntries {
		t.Errorf("Expected %d events, got %d", MaxHistoryEntries, len(h))
	}
	if h[0].Message != "event 10" {
		t.Errorf("Expected oldest events dropped, first is %q", h[0].Message)
	}
}

func TestSnapshot(t *testing.T) {
	e := newTestEngine(t, nil, nil)
	addMonster(t, e, testMonster(2), board.Position{Row: 3, Col: 4})

	snap := e.Snapshot()
	if snap.ConfigName != "test" || snap.Round != 1 || snap.ActiveHero != "H1" {
		t.Errorf("Unexpected header: %+v", snap)
	}
	if strings.Join(snap.Layout, "") != strings.Join(testLayout, "") {
		t.Errorf("Expected layout %v, got %v", testLayout, snap.Layout)
	}
	if snap.Cells[7][3].Hero != "H2" || snap.Cells[7][3].Type != board.Nexus {
		t.Errorf("Expected H2 on the nexus at (7,3), got %+v", snap.Cells[7][3])
	}
	if snap.Cells[3][4].Monster != "M1" {
		t.Errorf("Expected M1 at (3,4), got %+v", snap.Cells[3][4])
	}
	if len(snap.Heroes) != 3 || snap.Heroes[2].HomeLane != 2 {
		t.Errorf("Expected 3 heroes with H3 homed on lane 2, got %+v", snap.Heroes)
	}
	if snap.Heroes[0].Position == nil || len(snap.Heroes[0].Spells) != 1 {
		t.Errorf("Expected H1 placed with one spell, got %+v", snap.Heroes[0])
	}
	if len(snap.Monsters) != 1 || snap.Monsters[0].MaxHP != 300 {
		t.Errorf("Expected one level 2 monster with 300 HP, got %+v", snap.Monsters)
	}

	out := snap.Render()
	for _, want := range []string{"Round 1", "H1", "M1", "Hero1"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected render to contain %q:\n%s", want, out)
		}
	}
}
