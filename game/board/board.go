package board

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/zyedidia/generic/mapset"
)

var ErrInvalidLayout = errors.New("invalid layout")

// Board is the 8x8 lane grid. Cell types are fixed at generation except for
// obstacles, which can be cleared to plain.
type Board struct {
	cells [Size][Size]CellType
}

// terrainWeights drives the random fill of non-guaranteed lane cells.
// Thresholds are cumulative; anything above the last one stays plain.
var terrainWeights = []struct {
	below float64
	cell  CellType
}{
	{0.12, Obstacle},
	{0.20, Bush},
	{0.26, Cave},
	{0.30, Koulou},
}

// guaranteed lists the types that must appear at least once on every board
var guaranteed = []CellType{Obstacle, Bush, Cave, Koulou}

const marketsPerBoard = 2

// Generate builds a new board from rng. Every lane is guaranteed a walkable
// path between the two nexus rows.
func Generate(rng *rand.Rand) *Board {
	b := skeleton()

	var eligible []Position
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b.cells[r][c] == Plain {
				eligible = append(eligible, Position{r, c})
			}
		}
	}
	rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	pick := 0
	for _, ct := range guaranteed {
		if pick >= len(eligible) {
			break
		}
		b.set(eligible[pick], ct)
		pick++
	}

	for _, p := range eligible[pick:] {
		roll := rng.Float64()
		for _, w := range terrainWeights {
			if roll < w.below {
				b.set(p, w.cell)
				break
			}
		}
	}

	placed := 0
	for _, p := range eligible[pick:] {
		if placed >= marketsPerBoard {
			break
		}
		if b.At(p) == Plain {
			b.set(p, Market)
			placed++
		}
	}

	for lane := 0; lane < NumLanes; lane++ {
		b.ensureLanePath(lane)
	}
	return b
}

// skeleton returns a plain board with walls and nexus rows in place
func skeleton() *Board {
	b := &Board{}
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			b.cells[r][c] = Plain
		}
	}
	for _, wc := range wallColumns {
		for r := 0; r < Size; r++ {
			b.cells[r][wc] = Inaccessible
		}
	}
	for _, cols := range laneColumns {
		for _, c := range cols {
			b.cells[MonsterNexusRow][c] = Nexus
			b.cells[HeroNexusRow][c] = Nexus
		}
	}
	return b
}

// FromLayout parses a fixed layout of Size rows of Size symbols. Walls and
// nexus rows must be in their standard places.
func FromLayout(rows []string) (*Board, error) {
	if len(rows) != Size {
		return nil, fmt.Errorf("%w: expected %d rows, got %d", ErrInvalidLayout, Size, len(rows))
	}
	b := &Board{}
	for r, row := range rows {
		if len(row) != Size {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidLayout, r, len(row), Size)
		}
		for c := 0; c < Size; c++ {
			ct, ok := CellTypeFromSymbol(string(row[c]))
			if !ok {
				return nil, fmt.Errorf("%w: unknown symbol %q at %s", ErrInvalidLayout, row[c], Position{r, c})
			}
			b.cells[r][c] = ct
		}
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks the structural rules every board must satisfy
func (b *Board) Validate() error {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			p := Position{r, c}
			ct := b.cells[r][c]
			switch {
			case IsWallColumn(c):
				if ct != Inaccessible {
					return fmt.Errorf("%w: wall column cell %s is %s", ErrInvalidLayout, p, ct)
				}
			case r == MonsterNexusRow || r == HeroNexusRow:
				if ct != Nexus {
					return fmt.Errorf("%w: nexus row cell %s is %s", ErrInvalidLayout, p, ct)
				}
			case ct == Nexus || ct == Inaccessible:
				return fmt.Errorf("%w: %s not allowed inside a lane at %s", ErrInvalidLayout, ct, p)
			}
		}
	}
	for lane := 0; lane < NumLanes; lane++ {
		if !b.LanePathExists(lane) {
			return fmt.Errorf("%w: lane %d has no path between the nexus rows", ErrInvalidLayout, lane)
		}
	}
	return nil
}

// At returns the cell type at p, or "" when out of bounds
func (b *Board) At(p Position) CellType {
	if !InBounds(p) {
		return ""
	}
	return b.cells[p.Row][p.Col]
}

func (b *Board) set(p Position, ct CellType) {
	b.cells[p.Row][p.Col] = ct
}

// ClearObstacle converts an obstacle at p to plain
func (b *Board) ClearObstacle(p Position) bool {
	if b.At(p) != Obstacle {
		return false
	}
	b.set(p, Plain)
	return true
}

// Layout returns the board as rows of symbols
func (b *Board) Layout() []string {
	rows := make([]string, Size)
	for r := 0; r < Size; r++ {
		var sb strings.Builder
		for c := 0; c < Size; c++ {
			sb.WriteString(b.cells[r][c].Symbol())
		}
		rows[r] = sb.String()
	}
	return rows
}

// Count returns how many cells have the given type
func (b *Board) Count(ct CellType) int {
	n := 0
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if b.cells[r][c] == ct {
				n++
			}
		}
	}
	return n
}

// LanePathExists runs a BFS restricted to the lane's columns from its top
// nexus cells to its bottom nexus cells, avoiding walls and obstacles.
func (b *Board) LanePathExists(lane int) bool {
	cols := LaneColumns(lane)
	if cols == nil {
		return false
	}

	visited := mapset.New[Position]()
	var queue []Position
	for _, c := range cols {
		start := Position{MonsterNexusRow, c}
		if !b.At(start).Enterable() {
			continue
		}
		visited.Put(start)
		queue = append(queue, start)
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if p.Row == HeroNexusRow {
			return true
		}
		for _, n := range []Position{p.Up(), p.Down(), p.Left(), p.Right()} {
			if visited.Has(n) || LaneOfPosition(n) != lane {
				continue
			}
			if !b.At(n).Enterable() {
				continue
			}
			visited.Put(n)
			queue = append(queue, n)
		}
	}
	return false
}

// ensureLanePath clears the lane's first column when random fill sealed it
func (b *Board) ensureLanePath(lane int) {
	if b.LanePathExists(lane) {
		return
	}
	col := laneColumns[lane][0]
	for r := 0; r < Size; r++ {
		p := Position{r, col}
		if ct := b.At(p); ct == Obstacle || ct == Inaccessible {
			b.set(p, Plain)
		}
	}
}
