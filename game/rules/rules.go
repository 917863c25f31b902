package rules

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/wricardo/valor-lanes/game/board"
	"github.com/wricardo/valor-lanes/game/character"
	"github.com/wricardo/valor-lanes/game/occupancy"
)

var (
	ErrIllegalDestination = errors.New("illegal destination")
	ErrOccupiedSpawn      = errors.New("spawn cell occupied")
	ErrNotAdjacent        = errors.New("not adjacent")
	ErrNoObstacle         = errors.New("no obstacle there")
)

// TerrainBonusAmount is the flat bonus granted by Bush, Cave and Koulou
const TerrainBonusAmount = 2

var terrainStats = map[board.CellType]character.Stat{
	board.Bush:   character.Dexterity,
	board.Cave:   character.Agility,
	board.Koulou: character.Strength,
}

// TerrainBonusFor returns the bonus a cell type grants, if any
func TerrainBonusFor(ct board.CellType) (character.TerrainBonus, bool) {
	st, ok := terrainStats[ct]
	if !ok {
		return character.TerrainBonus{}, false
	}
	return character.TerrainBonus{Stat: st, Amount: TerrainBonusAmount}, true
}

// SyncTerrain reverts the hero's previous bonus and grants the one for the
// cell it now stands on. Detached heroes just lose their bonus.
func SyncTerrain(s *occupancy.Store, h occupancy.Handle) {
	hero, ok := s.Hero(h)
	if !ok {
		return
	}
	hero.ClearTerrainBonus()
	p, placed := s.PositionOf(h)
	if !placed {
		return
	}
	if b, ok := TerrainBonusFor(s.Board().At(p)); ok {
		hero.ApplyTerrainBonus(b)
	}
}

// InRange reports whether two cells are within attack range (king move)
func InRange(a, b board.Position) bool {
	return board.Chebyshev(a, b) <= 1
}

// BlockedByOpposing reports whether a unit of kind k moving from one cell
// to another in the same lane would pass over an opposing unit on a row
// strictly between them. Single steps never have such a row.
func BlockedByOpposing(s *occupancy.Store, k occupancy.Kind, from, to board.Position) bool {
	lane := board.LaneOfPosition(from)
	if lane < 0 || lane != board.LaneOfPosition(to) {
		return false
	}
	lo, hi := min(from.Row, to.Row), max(from.Row, to.Row)
	for r := lo + 1; r < hi; r++ {
		for _, c := range board.LaneColumns(lane) {
			p := board.Position{Row: r, Col: c}
			if k == occupancy.HeroKind {
				if _, ok := s.MonsterAt(p); ok {
					return true
				}
			} else if _, ok := s.HeroAt(p); ok {
				return true
			}
		}
	}
	return false
}

// CanStep checks a one-cell orthogonal move and returns the destination
func CanStep(s *occupancy.Store, h occupancy.Handle, dir board.Direction) (board.Position, error) {
	from, ok := s.PositionOf(h)
	if !ok {
		return board.Position{}, fmt.Errorf("%w: %s", occupancy.ErrNotPlaced, h)
	}
	to := from.Step(dir)
	if err := s.CanEnter(h.Kind, to); err != nil {
		return to, fmt.Errorf("%w: %w", ErrIllegalDestination, err)
	}
	if BlockedByOpposing(s, h.Kind, from, to) {
		return to, fmt.Errorf("%w: path to %s crosses an enemy", ErrIllegalDestination, to)
	}
	return to, nil
}

// Step moves a unit one cell. Heroes pick up or drop terrain bonuses.
func Step(s *occupancy.Store, h occupancy.Handle, dir board.Direction) (board.Position, error) {
	to, err := CanStep(s, h, dir)
	if err != nil {
		return to, err
	}
	if err := s.Move(h, to); err != nil {
		return to, fmt.Errorf("%w: %w", ErrIllegalDestination, err)
	}
	if h.Kind == occupancy.HeroKind {
		SyncTerrain(s, h)
	}
	return to, nil
}

// PlaceHero puts a detached hero on p and applies the terrain bonus there
func PlaceHero(s *occupancy.Store, h occupancy.Handle, p board.Position) error {
	if err := s.Place(h, p); err != nil {
		return err
	}
	SyncTerrain(s, h)
	return nil
}

// Withdraw takes a hero off the board and reverts its terrain bonus
func Withdraw(s *occupancy.Store, h occupancy.Handle) error {
	if err := s.Detach(h); err != nil {
		return err
	}
	SyncTerrain(s, h)
	return nil
}

func teleportTarget(s *occupancy.Store, mover, target occupancy.Handle) (board.Position, error) {
	if target.Kind != occupancy.HeroKind || target == mover {
		return board.Position{}, fmt.Errorf("%w: %s is not another hero", ErrIllegalDestination, target)
	}
	if !s.Placed(mover) {
		return board.Position{}, fmt.Errorf("%w: %s", occupancy.ErrNotPlaced, mover)
	}
	tp, ok := s.PositionOf(target)
	if !ok {
		return board.Position{}, fmt.Errorf("%w: %s", occupancy.ErrNotPlaced, target)
	}
	return tp, nil
}

// TeleportCandidates lists every legal destination around target: the
// rows above, level with and below it, across both columns of its lane.
func TeleportCandidates(s *occupancy.Store, mover, target occupancy.Handle) ([]board.Position, error) {
	tp, err := teleportTarget(s, mover, target)
	if err != nil {
		return nil, err
	}
	var out []board.Position
	for r := tp.Row - 1; r <= tp.Row+1; r++ {
		for _, c := range board.LaneColumns(board.LaneOfPosition(tp)) {
			p := board.Position{Row: r, Col: c}
			if checkTeleport(s, tp, p) == nil {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func checkTeleport(s *occupancy.Store, target, dest board.Position) error {
	if dest == target {
		return fmt.Errorf("%w: cannot land on the target", ErrIllegalDestination)
	}
	if board.Chebyshev(target, dest) > 1 {
		return fmt.Errorf("%w: %s is not next to %s", ErrIllegalDestination, dest, target)
	}
	if board.LaneOfPosition(dest) != board.LaneOfPosition(target) {
		return fmt.Errorf("%w: %s is outside the target's lane", ErrIllegalDestination, dest)
	}
	if err := s.CanEnter(occupancy.HeroKind, dest); err != nil {
		return fmt.Errorf("%w: %w", ErrIllegalDestination, err)
	}
	return nil
}

// Teleport moves mover next to the ally target
func Teleport(s *occupancy.Store, mover, target occupancy.Handle, dest board.Position) error {
	tp, err := teleportTarget(s, mover, target)
	if err != nil {
		return err
	}
	if err := checkTeleport(s, tp, dest); err != nil {
		return err
	}
	if err := s.Move(mover, dest); err != nil {
		return fmt.Errorf("%w: %w", ErrIllegalDestination, err)
	}
	SyncTerrain(s, mover)
	return nil
}

// Recall sends a hero back to the spawn cell of its home lane
func Recall(s *occupancy.Store, h occupancy.Handle) (board.Position, error) {
	lane, ok := s.HomeLane(h)
	if !ok {
		return board.Position{}, fmt.Errorf("%w: %s", occupancy.ErrNotPlaced, h)
	}
	spawn := board.HeroSpawn(lane)
	if other, taken := s.HeroAt(spawn); taken {
		if other == h {
			return spawn, nil
		}
		return spawn, fmt.Errorf("%w: %s holds %s", ErrOccupiedSpawn, spawn, other)
	}
	if err := s.Move(h, spawn); err != nil {
		return spawn, err
	}
	SyncTerrain(s, h)
	return spawn, nil
}

// AdjacentObstacles lists obstacle cells orthogonally next to the hero
func AdjacentObstacles(s *occupancy.Store, h occupancy.Handle) []board.Position {
	p, ok := s.PositionOf(h)
	if !ok {
		return nil
	}
	var out []board.Position
	for _, n := range []board.Position{p.Up(), p.Down(), p.Left(), p.Right()} {
		if s.Board().At(n) == board.Obstacle {
			out = append(out, n)
		}
	}
	return out
}

// RemoveObstacle clears an obstacle orthogonally next to the hero
func RemoveObstacle(s *occupancy.Store, h occupancy.Handle, target board.Position) error {
	p, ok := s.PositionOf(h)
	if !ok {
		return fmt.Errorf("%w: %s", occupancy.ErrNotPlaced, h)
	}
	if board.Manhattan(p, target) != 1 {
		return fmt.Errorf("%w: %s is not next to %s", ErrNotAdjacent, target, p)
	}
	if !s.Board().ClearObstacle(target) {
		return fmt.Errorf("%w: %s is %s", ErrNoObstacle, target, s.Board().At(target))
	}
	return nil
}

// advanceTarget returns where a monster would go: one row toward the hero
// nexus, else the other column of its lane, else nowhere.
func advanceTarget(s *occupancy.Store, m occupancy.Handle) (board.Position, bool) {
	from, ok := s.PositionOf(m)
	if !ok {
		return board.Position{}, false
	}
	if to, err := CanStep(s, m, board.DirDown); err == nil {
		return to, true
	}
	for _, c := range board.LaneColumns(board.LaneOfPosition(from)) {
		if c == from.Col {
			continue
		}
		to := board.Position{Row: from.Row, Col: c}
		if s.CanEnter(occupancy.MonsterKind, to) == nil {
			return to, true
		}
	}
	return from, false
}

// AdvanceMonster moves one monster forward or sideways; it stays put when
// both are blocked.
func AdvanceMonster(s *occupancy.Store, m occupancy.Handle) (board.Position, bool) {
	to, ok := advanceTarget(s, m)
	if !ok {
		return to, false
	}
	if err := s.Move(m, to); err != nil {
		return to, false
	}
	return to, true
}

// AdvanceRandomMonster picks one placed monster that can move and advances
// it. It reports false when no monster can move.
func AdvanceRandomMonster(s *occupancy.Store, rng *rand.Rand) (occupancy.Handle, board.Position, bool) {
	var eligible []occupancy.Handle
	for _, m := range s.PlacedMonsters() {
		if _, ok := advanceTarget(s, m); ok {
			eligible = append(eligible, m)
		}
	}
	if len(eligible) == 0 {
		return occupancy.Handle{}, board.Position{}, false
	}
	m := eligible[rng.Intn(len(eligible))]
	to, ok := AdvanceMonster(s, m)
	return m, to, ok
}

// MonstersInRange lists placed monsters within range of a hero, in id order
func MonstersInRange(s *occupancy.Store, h occupancy.Handle) []occupancy.Handle {
	p, ok := s.PositionOf(h)
	if !ok {
		return nil
	}
	var out []occupancy.Handle
	for _, m := range s.PlacedMonsters() {
		if mp, _ := s.PositionOf(m); InRange(p, mp) {
			out = append(out, m)
		}
	}
	return out
}

// HeroesInRange lists placed heroes within range of a monster, in id order
func HeroesInRange(s *occupancy.Store, m occupancy.Handle) []occupancy.Handle {
	p, ok := s.PositionOf(m)
	if !ok {
		return nil
	}
	var out []occupancy.Handle
	for _, h := range s.PlacedHeroes() {
		if hp, _ := s.PositionOf(h); InRange(p, hp) {
			out = append(out, h)
		}
	}
	return out
}
