package character

import "fmt"

// Monster is an engine-controlled unit. The three reductions accumulate from
// spell debuffs and are clamped so no effective stat goes negative.
type Monster struct {
	Name    string      `json:"name"`
	Kind    MonsterKind `json:"kind"`
	Level   int         `json:"level"`
	HP      int         `json:"hp"`
	MaxHP   int         `json:"max_hp"`
	Damage  int         `json:"damage"`
	Defense int         `json:"defense"`
	Dodge   float64     `json:"dodge"`

	DamageReduction  float64 `json:"damage_reduction"`
	DefenseReduction float64 `json:"defense_reduction"`
	DodgeReduction   float64 `json:"dodge_reduction"`
}

// NewMonster builds a monster and applies its kind boost. dodgePercent is
// given in percent, as the stat tables list it.
func NewMonster(kind MonsterKind, name string, level, damage, defense int, dodgePercent float64) *Monster {
	if level < 1 {
		level = 1
	}
	hp := level * MonsterHPPerLevel
	m := &Monster{
		Name:    name,
		Kind:    kind,
		Level:   level,
		HP:      hp,
		MaxHP:   hp,
		Damage:  damage,
		Defense: defense,
		Dodge:   dodgePercent / 100,
	}
	if v, ok := monsterVariants[kind]; ok {
		v.boost(m)
	}
	return m
}

// Clone returns an independent copy, used when a template spawns a unit
func (m *Monster) Clone() *Monster {
	c := *m
	return &c
}

func (m *Monster) String() string {
	return fmt.Sprintf("%s [%s] (Lv.%d) HP %d/%d", m.Name, m.Kind, m.Level, m.HP, m.MaxHP)
}

// Alive reports whether the monster has HP left
func (m *Monster) Alive() bool {
	return m.HP > 0
}

// TakeDamage lowers HP, never below zero
func (m *Monster) TakeDamage(amount int) {
	if amount <= 0 {
		return
	}
	m.HP = max(0, m.HP-amount)
}

// EffectiveDamage is the base damage after ice debuffs
func (m *Monster) EffectiveDamage() int {
	return int(float64(m.Damage) * (1 - m.DamageReduction))
}

// EffectiveDefense is the defense after fire debuffs
func (m *Monster) EffectiveDefense() int {
	return int(float64(m.Defense) * (1 - m.DefenseReduction))
}

// EffectiveDodge is the dodge chance after lightning debuffs
func (m *Monster) EffectiveDodge() float64 {
	return max(0, m.Dodge-m.DodgeReduction)
}

// ApplyDebuff stacks one increment of the element's debuff. Ice and fire
// cap at a full reduction, lightning caps at the monster's dodge.
func (m *Monster) ApplyDebuff(e Element, amount float64) {
	switch e {
	case Ice:
		m.DamageReduction = min(1.0, m.DamageReduction+amount)
	case Fire:
		m.DefenseReduction = min(1.0, m.DefenseReduction+amount)
	case Lightning:
		m.DodgeReduction = min(m.Dodge, m.DodgeReduction+amount)
	}
}
