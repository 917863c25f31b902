// Package occupancy tracks which units stand where.
//
// Units live in two arenas, one for heroes and one for monsters. Adding a
// unit hands out a Handle whose display id ("H1", "M4") never changes and
// is never reused, even after the unit is removed. The Store then maps
// cells to handles and handles back to cells: at most one hero and one
// monster share a cell, and neither may stand on an Inaccessible or
// Obstacle cell.
//
// Detach takes a unit off the grid without forgetting it, which is how a
// fainted hero waits for respawn. Remove forgets it for good.
package occupancy
