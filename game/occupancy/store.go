package occupancy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/wricardo/valor-lanes/game/board"
	"github.com/wricardo/valor-lanes/game/character"
	"github.com/zyedidia/generic/mapset"
)

var (
	ErrOutOfBounds   = errors.New("position out of bounds")
	ErrBlockedCell   = errors.New("cell cannot be occupied")
	ErrSlotOccupied  = errors.New("slot already occupied")
	ErrAlreadyPlaced = errors.New("unit already placed")
	ErrNotPlaced     = errors.New("unit not on the board")
	ErrRetired       = errors.New("unit has been removed")
	ErrUnknownUnit   = errors.New("unknown unit")
)

// Store tracks which hero and which monster stand on each cell. A cell
// holds at most one of each. The forward maps and the reverse position map
// are updated together so they always agree.
type Store struct {
	board    *board.Board
	heroes   *Arena[character.Hero]
	monsters *Arena[character.Monster]

	heroAt    map[board.Position]Handle
	monsterAt map[board.Position]Handle
	pos       map[Handle]board.Position
	homeLane  map[Handle]int
}

// NewStore creates an empty store over b
func NewStore(b *board.Board) *Store {
	return &Store{
		board:     b,
		heroes:    NewArena[character.Hero](HeroKind),
		monsters:  NewArena[character.Monster](MonsterKind),
		heroAt:    make(map[board.Position]Handle),
		monsterAt: make(map[board.Position]Handle),
		pos:       make(map[Handle]board.Position),
		homeLane:  make(map[Handle]int),
	}
}

// Board returns the grid the store sits on
func (s *Store) Board() *board.Board {
	return s.board
}

// AddHero registers a hero and assigns its display id
func (s *Store) AddHero(h *character.Hero) Handle {
	return s.heroes.Add(h)
}

// AddMonster registers a monster and assigns its display id
func (s *Store) AddMonster(m *character.Monster) Handle {
	return s.monsters.Add(m)
}

// Hero resolves a hero handle
func (s *Store) Hero(h Handle) (*character.Hero, bool) {
	return s.heroes.Get(h)
}

// Monster resolves a monster handle
func (s *Store) Monster(h Handle) (*character.Monster, bool) {
	return s.monsters.Get(h)
}

func (s *Store) slots(k Kind) map[board.Position]Handle {
	if k == HeroKind {
		return s.heroAt
	}
	return s.monsterAt
}

func (s *Store) known(h Handle) error {
	switch h.Kind {
	case HeroKind:
		if s.heroes.Retired(h) {
			return fmt.Errorf("%w: %s", ErrRetired, h)
		}
		if _, ok := s.heroes.Get(h); ok {
			return nil
		}
	case MonsterKind:
		if s.monsters.Retired(h) {
			return fmt.Errorf("%w: %s", ErrRetired, h)
		}
		if _, ok := s.monsters.Get(h); ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownUnit, h)
}

// CanEnter checks that a unit of kind k may stand on p
func (s *Store) CanEnter(k Kind, p board.Position) error {
	if !board.InBounds(p) {
		return fmt.Errorf("%w: %s", ErrOutOfBounds, p)
	}
	if !s.board.At(p).Enterable() {
		return fmt.Errorf("%w: %s is %s", ErrBlockedCell, p, s.board.At(p))
	}
	if other, ok := s.slots(k)[p]; ok {
		return fmt.Errorf("%w: %s holds %s", ErrSlotOccupied, p, other)
	}
	return nil
}

// Place puts a registered, detached unit on p. The first placement of a
// unit records its home lane.
func (s *Store) Place(h Handle, p board.Position) error {
	if err := s.known(h); err != nil {
		return err
	}
	if at, ok := s.pos[h]; ok {
		return fmt.Errorf("%w: %s at %s", ErrAlreadyPlaced, h, at)
	}
	if err := s.CanEnter(h.Kind, p); err != nil {
		return err
	}
	s.slots(h.Kind)[p] = h
	s.pos[h] = p
	if _, ok := s.homeLane[h]; !ok {
		s.homeLane[h] = board.LaneOfPosition(p)
	}
	return nil
}

// Move relocates a placed unit to p
func (s *Store) Move(h Handle, p board.Position) error {
	from, ok := s.pos[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotPlaced, h)
	}
	if from == p {
		return nil
	}
	if err := s.CanEnter(h.Kind, p); err != nil {
		return err
	}
	slots := s.slots(h.Kind)
	delete(slots, from)
	slots[p] = h
	s.pos[h] = p
	return nil
}

// Detach takes a unit off the board but keeps it registered with its id
// and home lane, ready to be placed again.
func (s *Store) Detach(h Handle) error {
	p, ok := s.pos[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotPlaced, h)
	}
	delete(s.slots(h.Kind), p)
	delete(s.pos, h)
	return nil
}

// Remove detaches a unit if needed and forgets it. Its id is not reused.
func (s *Store) Remove(h Handle) error {
	if err := s.known(h); err != nil {
		return err
	}
	if _, ok := s.pos[h]; ok {
		_ = s.Detach(h)
	}
	delete(s.homeLane, h)
	if h.Kind == HeroKind {
		s.heroes.Retire(h)
	} else {
		s.monsters.Retire(h)
	}
	return nil
}

// PositionOf returns where a unit stands
func (s *Store) PositionOf(h Handle) (board.Position, bool) {
	p, ok := s.pos[h]
	return p, ok
}

// Placed reports whether the unit is on the board
func (s *Store) Placed(h Handle) bool {
	_, ok := s.pos[h]
	return ok
}

// HomeLane returns the lane of the unit's first placement
func (s *Store) HomeLane(h Handle) (int, bool) {
	l, ok := s.homeLane[h]
	return l, ok
}

// HeroAt returns the hero on p
func (s *Store) HeroAt(p board.Position) (Handle, bool) {
	h, ok := s.heroAt[p]
	return h, ok
}

// MonsterAt returns the monster on p
func (s *Store) MonsterAt(p board.Position) (Handle, bool) {
	h, ok := s.monsterAt[p]
	return h, ok
}

// Heroes returns every registered hero handle in id order, placed or not
func (s *Store) Heroes() []Handle {
	var out []Handle
	s.heroes.Each(func(h Handle, _ *character.Hero) { out = append(out, h) })
	return out
}

// Monsters returns every registered monster handle in id order
func (s *Store) Monsters() []Handle {
	var out []Handle
	s.monsters.Each(func(h Handle, _ *character.Monster) { out = append(out, h) })
	return out
}

// PlacedHeroes returns the heroes on the board in id order
func (s *Store) PlacedHeroes() []Handle {
	return sortedHandles(s.heroAt)
}

// PlacedMonsters returns the monsters on the board in id order
func (s *Store) PlacedMonsters() []Handle {
	return sortedHandles(s.monsterAt)
}

func sortedHandles(m map[board.Position]Handle) []Handle {
	out := make([]Handle, 0, len(m))
	for _, h := range m {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].N < out[j].N })
	return out
}

// CheckInvariants verifies that the forward maps and the reverse map agree
// and that nobody stands on a blocked cell.
func (s *Store) CheckInvariants() error {
	seen := mapset.New[Handle]()
	for _, slots := range []map[board.Position]Handle{s.heroAt, s.monsterAt} {
		for p, h := range slots {
			if seen.Has(h) {
				return fmt.Errorf("%s occupies more than one cell", h)
			}
			seen.Put(h)
			if got, ok := s.pos[h]; !ok || got != p {
				return fmt.Errorf("%s is at %s but reverse lookup says %v", h, p, got)
			}
			if !s.board.At(p).Enterable() {
				return fmt.Errorf("%s stands on blocked cell %s", h, p)
			}
			if err := s.known(h); err != nil {
				return err
			}
		}
	}
	if seen.Size() != len(s.pos) {
		return fmt.Errorf("reverse lookup has %d entries, grid has %d", len(s.pos), seen.Size())
	}
	return nil
}
