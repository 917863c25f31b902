// Package rules decides which moves are legal and applies them to an
// occupancy store.
//
// Heroes and monsters step one orthogonal cell at a time. Heroes may also
// teleport next to an ally in the ally's lane, recall to the spawn cell of
// their home lane and clear an adjacent obstacle. Standing on Bush, Cave or
// Koulou grants a +2 bonus to dexterity, agility or strength; the exact
// amount is reverted whenever the hero leaves the cell by any means.
//
// Monsters advance one row toward the hero nexus, fall back to the other
// column of their lane, and otherwise stay put.
package rules
