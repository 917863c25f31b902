package engine

import (
	"github.com/wricardo/valor-lanes/game/board"
)

// SurroundingCell is one neighbour of a hero with whoever stands on it
type SurroundingCell struct {
	Position board.Position `json:"position"`
	Type     board.CellType `json:"type"`
	Hero     string         `json:"hero,omitempty"`
	Monster  string         `json:"monster,omitempty"`
}

// LocalView lists the 8 cells around p, clockwise from north. Cells off
// the board are reported as Inaccessible.
func LocalView(s Snapshot, p board.Position) []SurroundingCell {
	directions := []struct{ dr, dc int }{
		{-1, 0},  // North
		{-1, 1},  // North-East
		{0, 1},   // East
		{1, 1},   // South-East
		{1, 0},   // South
		{1, -1},  // South-West
		{0, -1},  // West
		{-1, -1}, // North-West
	}

	view := make([]SurroundingCell, len(directions))
	for i, d := range directions {
		q := board.Position{Row: p.Row + d.dr, Col: p.Col + d.dc}
		view[i] = SurroundingCell{Position: q, Type: board.Inaccessible}
		if !board.InBounds(q) || q.Row >= len(s.Cells) {
			continue
		}
		cell := s.Cells[q.Row][q.Col]
		view[i].Type = cell.Type
		view[i].Hero = cell.Hero
		view[i].Monster = cell.Monster
	}
	return view
}

// FindHero returns the view of a hero by id
func FindHero(s Snapshot, id string) (HeroView, bool) {
	for _, h := range s.Heroes {
		if h.ID == id {
			return h, true
		}
	}
	return HeroView{}, false
}

// NearestMonster finds the closest monster to p by Manhattan distance,
// preferring monsters in the same lane on ties
func NearestMonster(s Snapshot, p board.Position) (MonsterView, int, bool) {
	best := -1
	var nearest MonsterView
	for _, m := range s.Monsters {
		d := board.Manhattan(p, m.Position)
		sameLane := board.LaneOfPosition(m.Position) == board.LaneOfPosition(p)
		if best == -1 || d < best || (d == best && sameLane && board.LaneOfPosition(nearest.Position) != board.LaneOfPosition(p)) {
			best = d
			nearest = m
		}
	}
	return nearest, best, best != -1
}

// AnalyzeNexusThreat rates how close the monsters are to the heroes' nexus
func AnalyzeNexusThreat(s Snapshot) string {
	if s.Phase == MonstersWin {
		return "CRITICAL: Nexus has fallen!"
	}
	if len(s.Monsters) == 0 {
		return "SAFE: No monsters on the board"
	}

	closest := board.Size
	for _, m := range s.Monsters {
		if d := board.HeroNexusRow - m.Position.Row; d < closest {
			closest = d
		}
	}

	switch {
	case closest <= 1:
		return "DANGER: A monster is one step from the nexus!"
	case closest <= 3:
		return "CAUTION: Monsters are past the middle of the board"
	case len(s.Monsters) > len(s.Heroes)+1:
		return "LOW: Monsters outnumber the party"
	}
	return "SAFE: Lanes are holding"
}

// CountCellType counts the cells of one type in a snapshot
func CountCellType(s Snapshot, cellType board.CellType) int {
	count := 0
	for _, row := range s.Cells {
		for _, cell := range row {
			if cell.Type == cellType {
				count++
			}
		}
	}
	return count
}
