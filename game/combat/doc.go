// Package combat resolves attacks between heroes and monsters.
//
// Every resolver takes the two units and a Roller for the dodge draw and
// returns a Result without touching either unit. The engine commits the
// outcome with ApplyHeroAction or ApplyMonsterAction.
//
// Formulas:
//
//	hero melee   = max(1, floor(STR*0.1) + weapon - floor(effDEF*0.1))
//	hero spell   = max(1, floor(DEX*0.15 + base*0.15) - floor(effDEF*0.1))
//	monster hit  = max(0, floor(effDMG*0.08) - armor)
//	hero dodge   = AGI * 0.0002
//
// Spells add one 0.1 debuff for their element: ice lowers damage, fire
// lowers defense, lightning lowers dodge.
package combat
