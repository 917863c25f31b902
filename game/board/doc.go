// Package board models the fixed 8x8 lane grid.
//
// The grid is split into three lanes of two columns each ({0,1}, {3,4},
// {6,7}) separated by full-height Inaccessible walls at columns 2 and 5.
// Row 0 is the monster Nexus (heroes win by reaching it) and row 7 is the
// hero Nexus (monsters win by reaching it).
//
// Generation:
//
// Generate fills the remaining lane cells with weighted random terrain,
// guaranteeing at least one Obstacle, Bush, Cave and Koulou and placing two
// Markets. Each lane is then checked with a breadth-first search restricted
// to its own columns; a sealed lane has its first column cleared to Plain.
//
// Usage:
//
//	rng := rand.New(rand.NewSource(42))
//	b := board.Generate(rng)
//	fmt.Println(strings.Join(b.Layout(), "\n"))
//
// Fixed layouts can be loaded with FromLayout, which applies the same
// structural validation.
package board
