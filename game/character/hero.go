package character

import "fmt"

// TerrainBonus is the flat stat increase a hero holds while standing on a
// Bush, Cave or Koulou cell
type TerrainBonus struct {
	Stat   Stat `json:"stat"`
	Amount int  `json:"amount"`
}

// Hero is a player-controlled unit
type Hero struct {
	Name       string    `json:"name"`
	Class      HeroClass `json:"class"`
	Level      int       `json:"level"`
	Experience int       `json:"experience"`
	Gold       int       `json:"gold"`

	HP    int `json:"hp"`
	MaxHP int `json:"max_hp"`
	MP    int `json:"mp"`
	MaxMP int `json:"max_mp"`

	Strength  int `json:"strength"`
	Dexterity int `json:"dexterity"`
	Agility   int `json:"agility"`

	Weapon  *Weapon       `json:"weapon,omitempty"`
	Armor   *Armor        `json:"armor,omitempty"`
	Spells  []Spell       `json:"spells,omitempty"`
	Terrain *TerrainBonus `json:"terrain,omitempty"`
}

// NewHero builds a hero at the given level with full HP and MP
func NewHero(name string, class HeroClass, level, mana, strength, dexterity, agility, gold, experience int) *Hero {
	if level < 1 {
		level = 1
	}
	hp := level * HeroHPPerLevel
	return &Hero{
		Name:       name,
		Class:      class,
		Level:      level,
		Experience: experience,
		Gold:       gold,
		HP:         hp,
		MaxHP:      hp,
		MP:         mana,
		MaxMP:      mana,
		Strength:   strength,
		Dexterity:  dexterity,
		Agility:    agility,
	}
}

func (h *Hero) String() string {
	return fmt.Sprintf("%s the %s (Lv.%d) HP %d/%d MP %d/%d", h.Name, h.Class, h.Level, h.HP, h.MaxHP, h.MP, h.MaxMP)
}

// Alive reports whether the hero has HP left
func (h *Hero) Alive() bool {
	return h.HP > 0
}

// TakeDamage lowers HP, never below zero
func (h *Hero) TakeDamage(amount int) {
	if amount <= 0 {
		return
	}
	h.HP = max(0, h.HP-amount)
}

// Heal raises HP, never above MaxHP
func (h *Hero) Heal(amount int) {
	if amount <= 0 {
		return
	}
	h.HP = min(h.MaxHP, h.HP+amount)
}

// HasMana reports whether the hero can pay cost
func (h *Hero) HasMana(cost int) bool {
	return h.MP >= cost
}

// UseMana spends MP, never below zero
func (h *Hero) UseMana(cost int) {
	h.MP = max(0, h.MP-cost)
}

// RestoreMana raises MP, never above MaxMP
func (h *Hero) RestoreMana(amount int) {
	if amount <= 0 {
		return
	}
	h.MP = min(h.MaxMP, h.MP+amount)
}

// MeleeDamage is the raw attack value before monster defense
func (h *Hero) MeleeDamage() int {
	dmg := int(float64(h.Strength) * HeroAttackScale)
	if h.Weapon != nil {
		dmg += h.Weapon.Damage
	}
	return dmg
}

// SpellDamage is the raw spell value before monster defense
func (h *Hero) SpellDamage(s Spell) int {
	return int(float64(h.Dexterity)*HeroSpellScale + float64(s.Damage)*HeroSpellScale)
}

// Defense comes from equipped armor only
func (h *Hero) Defense() int {
	if h.Armor == nil {
		return 0
	}
	return h.Armor.Reduction
}

// DodgeChance is derived from agility
func (h *Hero) DodgeChance() float64 {
	return float64(h.Agility) * HeroDodgePerAgility
}

// FindSpell looks up a known spell by name
func (h *Hero) FindSpell(name string) (Spell, bool) {
	for _, s := range h.Spells {
		if s.Name == name {
			return s, true
		}
	}
	return Spell{}, false
}

// Regenerate restores a tenth of max HP and MP
func (h *Hero) Regenerate() {
	h.Heal(int(float64(h.MaxHP) * HPRegenRate))
	h.RestoreMana(int(float64(h.MaxMP) * MPRegenRate))
}

// Revive brings a fainted hero back at half HP and MP
func (h *Hero) Revive() {
	h.HP = int(float64(h.MaxHP) * RevivalHPRate)
	h.MP = int(float64(h.MaxMP) * RevivalMPRate)
}

// XPForNextLevel is the experience threshold of the next level-up
func (h *Hero) XPForNextLevel() int {
	return (h.Level + 1) * BaseXPForLevelUp
}

// GainExperience adds XP and levels up once when the threshold is reached.
// It reports whether a level-up happened.
func (h *Hero) GainExperience(xp int) bool {
	h.Experience += xp
	if h.Experience < h.XPForNextLevel() {
		return false
	}
	h.levelUp()
	return true
}

// AddGold credits gold; negative amounts are ignored
func (h *Hero) AddGold(amount int) {
	if amount > 0 {
		h.Gold += amount
	}
}

func (h *Hero) levelUp() {
	grow := func(v int, rate float64) int { return int(float64(v) * (1 + rate)) }

	h.Level++
	h.MaxHP = grow(h.MaxHP, LevelUpIncrease)
	h.MaxMP = grow(h.MaxMP, LevelUpIncrease)
	h.Strength = grow(h.Strength, LevelUpIncrease)
	h.Dexterity = grow(h.Dexterity, LevelUpIncrease)
	h.Agility = grow(h.Agility, LevelUpIncrease)

	for _, st := range h.Class.FavoredStats() {
		v := h.Stat(st)
		h.AddStat(st, int(float64(v)*FavoredStatBonus))
	}

	h.HP = h.MaxHP
	h.MP = h.MaxMP
}

// Stat returns the current value of a stat
func (h *Hero) Stat(st Stat) int {
	switch st {
	case Strength:
		return h.Strength
	case Dexterity:
		return h.Dexterity
	case Agility:
		return h.Agility
	}
	return 0
}

// AddStat adds delta (possibly negative) to a stat
func (h *Hero) AddStat(st Stat, delta int) {
	switch st {
	case Strength:
		h.Strength += delta
	case Dexterity:
		h.Dexterity += delta
	case Agility:
		h.Agility += delta
	}
}

// ApplyTerrainBonus replaces any active bonus with b
func (h *Hero) ApplyTerrainBonus(b TerrainBonus) {
	h.ClearTerrainBonus()
	h.AddStat(b.Stat, b.Amount)
	h.Terrain = &b
}

// ClearTerrainBonus reverts the exact amount of the active bonus, if any
func (h *Hero) ClearTerrainBonus() {
	if h.Terrain == nil {
		return
	}
	h.AddStat(h.Terrain.Stat, -h.Terrain.Amount)
	h.Terrain = nil
}
