package board

import (
	"fmt"
	"strings"
)

// CellType represents the terrain class of a grid cell
type CellType string

const (
	Nexus        CellType = "nexus"
	Market       CellType = "market"
	Inaccessible CellType = "inaccessible"
	Obstacle     CellType = "obstacle"
	Plain        CellType = "plain"
	Bush         CellType = "bush"
	Cave         CellType = "cave"
	Koulou       CellType = "koulou"
)

const (
	// Size is the edge length of the square grid
	Size = 8

	// NumLanes is the number of parallel lanes
	NumLanes = 3

	// MonsterNexusRow is where monsters spawn and heroes win
	MonsterNexusRow = 0

	// HeroNexusRow is where heroes spawn and monsters win
	HeroNexusRow = Size - 1
)

var (
	laneColumns = [NumLanes][2]int{{0, 1}, {3, 4}, {6, 7}}
	wallColumns = [2]int{2, 5}
)

var symbols = map[CellType]string{
	Nexus:        "N",
	Market:       "M",
	Inaccessible: "X",
	Obstacle:     "O",
	Plain:        ".",
	Bush:         "B",
	Cave:         "C",
	Koulou:       "K",
}

// Symbol returns the single character used in layouts and text boards
func (c CellType) Symbol() string {
	if s, ok := symbols[c]; ok {
		return s
	}
	return "?"
}

// Enterable reports whether units may stand on the cell
func (c CellType) Enterable() bool {
	return c != Inaccessible && c != Obstacle && c != ""
}

// IsTerrain reports whether the cell grants a terrain bonus
func (c CellType) IsTerrain() bool {
	return c == Bush || c == Cave || c == Koulou
}

// CellTypeFromSymbol maps a layout character back to its cell type
func CellTypeFromSymbol(s string) (CellType, bool) {
	for ct, sym := range symbols {
		if sym == s {
			return ct, true
		}
	}
	return "", false
}

// Position represents row,col coordinates on the grid
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Up returns the position one row toward the monster nexus
func (p Position) Up() Position { return Position{p.Row - 1, p.Col} }

// Down returns the position one row toward the hero nexus
func (p Position) Down() Position { return Position{p.Row + 1, p.Col} }

// Left returns the position one column to the left
func (p Position) Left() Position { return Position{p.Row, p.Col - 1} }

// Right returns the position one column to the right
func (p Position) Right() Position { return Position{p.Row, p.Col + 1} }

// Direction is one of the four orthogonal step directions
type Direction string

const (
	DirUp    Direction = "up"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
	DirRight Direction = "right"
)

// ParseDirection accepts up/down/left/right and the w/s/a/d shorthands
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "w", "north":
		return DirUp, nil
	case "down", "s", "south":
		return DirDown, nil
	case "left", "a", "west":
		return DirLeft, nil
	case "right", "d", "east":
		return DirRight, nil
	}
	return "", fmt.Errorf("invalid direction %q", s)
}

// Step returns the neighbouring position in the given direction
func (p Position) Step(d Direction) Position {
	switch d {
	case DirUp:
		return p.Up()
	case DirDown:
		return p.Down()
	case DirLeft:
		return p.Left()
	case DirRight:
		return p.Right()
	}
	return p
}

// InBounds reports whether p lies on the grid
func InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

// LaneOf returns the lane index for a column, or -1 for wall columns
func LaneOf(col int) int {
	for i, cols := range laneColumns {
		if cols[0] == col || cols[1] == col {
			return i
		}
	}
	return -1
}

// LaneOfPosition returns the lane index for a position, or -1
func LaneOfPosition(p Position) int {
	if !InBounds(p) {
		return -1
	}
	return LaneOf(p.Col)
}

// LaneColumns returns the columns of a lane
func LaneColumns(lane int) []int {
	if lane < 0 || lane >= NumLanes {
		return nil
	}
	return []int{laneColumns[lane][0], laneColumns[lane][1]}
}

// IsWallColumn reports whether col is one of the full-height walls
func IsWallColumn(col int) bool {
	return col == wallColumns[0] || col == wallColumns[1]
}

// HeroSpawn returns the hero nexus spawn cell of a lane
func HeroSpawn(lane int) Position {
	return Position{HeroNexusRow, laneColumns[clampLane(lane)][0]}
}

// MonsterSpawn returns the monster nexus spawn cell of a lane
func MonsterSpawn(lane int) Position {
	return Position{MonsterNexusRow, laneColumns[clampLane(lane)][0]}
}

func clampLane(lane int) int {
	if lane < 0 {
		return 0
	}
	if lane >= NumLanes {
		return NumLanes - 1
	}
	return lane
}

// Chebyshev returns the king-move distance between two positions
func Chebyshev(a, b Position) int {
	return max(abs(a.Row-b.Row), abs(a.Col-b.Col))
}

// Manhattan returns the taxicab distance between two positions
func Manhattan(a, b Position) int {
	return abs(a.Row-b.Row) + abs(a.Col-b.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
