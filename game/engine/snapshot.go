package engine

import (
	"fmt"
	"strings"

	"github.com/wricardo/valor-lanes/game/board"
	"github.com/wricardo/valor-lanes/game/occupancy"
)

// Snapshot captures the observable state of the game
func (e *GameEngine) Snapshot() Snapshot {
	s := Snapshot{
		ConfigName: e.config.Name,
		Difficulty: e.config.EffectiveDifficulty(),
		Round:      e.round,
		Phase:      e.phase,
		GameOver:   e.IsGameOver(),
		Layout:     e.board.Layout(),
		Message:    e.message,
		TotalTurns: e.turns,
	}
	if h, ok := e.ActiveHero(); ok {
		s.ActiveHero = h.ID()
	}

	s.Cells = make([][]CellView, board.Size)
	for r := 0; r < board.Size; r++ {
		s.Cells[r] = make([]CellView, board.Size)
		for c := 0; c < board.Size; c++ {
			p := board.Position{Row: r, Col: c}
			cv := CellView{Type: e.board.At(p)}
			if h, ok := e.store.HeroAt(p); ok {
				cv.Hero = h.ID()
			}
			if m, ok := e.store.MonsterAt(p); ok {
				cv.Monster = m.ID()
			}
			s.Cells[r][c] = cv
		}
	}

	for _, h := range e.party {
		s.Heroes = append(s.Heroes, e.heroView(h))
	}
	for _, m := range e.store.PlacedMonsters() {
		mon, _ := e.store.Monster(m)
		p, _ := e.store.PositionOf(m)
		s.Monsters = append(s.Monsters, MonsterView{
			ID:       m.ID(),
			Name:     mon.Name,
			Kind:     mon.Kind,
			Level:    mon.Level,
			HP:       mon.HP,
			MaxHP:    mon.MaxHP,
			Damage:   mon.EffectiveDamage(),
			Defense:  mon.EffectiveDefense(),
			Dodge:    mon.EffectiveDodge(),
			Position: p,
		})
	}
	return s
}

func (e *GameEngine) heroView(h occupancy.Handle) HeroView {
	hero := e.hero(h)
	v := HeroView{
		ID:         h.ID(),
		Name:       hero.Name,
		Class:      hero.Class,
		Level:      hero.Level,
		Experience: hero.Experience,
		Gold:       hero.Gold,
		HP:         hero.HP,
		MaxHP:      hero.MaxHP,
		MP:         hero.MP,
		MaxMP:      hero.MaxMP,
		Strength:   hero.Strength,
		Dexterity:  hero.Dexterity,
		Agility:    hero.Agility,
		Terrain:    hero.Terrain,
		RespawnIn:  e.respawn[h],
	}
	if hero.Weapon != nil {
		v.Weapon = hero.Weapon.Name
	}
	if hero.Armor != nil {
		v.Armor = hero.Armor.Name
	}
	for _, sp := range hero.Spells {
		v.Spells = append(v.Spells, sp.Name)
	}
	if p, ok := e.store.PositionOf(h); ok {
		v.Position = &p
	}
	v.HomeLane, _ = e.store.HomeLane(h)
	return v
}

// Render draws the snapshot as text: one cell per column showing the
// occupant ids, or the terrain symbol when the cell is empty.
func (s Snapshot) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Round %d  %s", s.Round, s.Phase)
	if s.ActiveHero != "" {
		fmt.Fprintf(&sb, "  (%s to act)", s.ActiveHero)
	}
	sb.WriteString("\n    ")
	for c := 0; c < len(s.Cells); c++ {
		fmt.Fprintf(&sb, " %-5d", c)
	}
	sb.WriteString("\n")
	for r, row := range s.Cells {
		fmt.Fprintf(&sb, "%2d  ", r)
		for _, cell := range row {
			label := cell.Type.Symbol()
			switch {
			case cell.Hero != "" && cell.Monster != "":
				label = cell.Hero + "/" + cell.Monster
			case cell.Hero != "":
				label = cell.Hero
			case cell.Monster != "":
				label = cell.Monster
			}
			fmt.Fprintf(&sb, "[%-5s]", label)
		}
		sb.WriteString("\n")
	}
	for _, h := range s.Heroes {
		where := "fainted"
		if h.Position != nil {
			where = h.Position.String()
		} else if h.RespawnIn > 0 {
			where = fmt.Sprintf("respawn in %d", h.RespawnIn)
		}
		fmt.Fprintf(&sb, "%s %s Lv%d HP %d/%d MP %d/%d %s\n", h.ID, h.Name, h.Level, h.HP, h.MaxHP, h.MP, h.MaxMP, where)
	}
	for _, m := range s.Monsters {
		fmt.Fprintf(&sb, "%s %s Lv%d HP %d/%d %s\n", m.ID, m.Name, m.Level, m.HP, m.MaxHP, m.Position)
	}
	if s.Message != "" {
		sb.WriteString(s.Message + "\n")
	}
	return sb.String()
}
