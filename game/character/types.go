package character

import (
	"fmt"
	"strings"
)

// Balance constants shared by heroes, monsters and the combat resolver
const (
	HeroHPPerLevel    = 100
	MonsterHPPerLevel = 150

	LevelUpIncrease     = 0.05
	FavoredStatBonus    = 0.05
	BaseXPForLevelUp    = 10
	VictoryXPPerLevel   = 2
	VictoryGoldPerLevel = 100

	DragonDamageBoost       = 0.10
	ExoskeletonDefenseBoost = 0.10
	SpiritDodgeBoost        = 0.10

	HeroAttackScale     = 0.1
	HeroSpellScale      = 0.15
	MonsterAttackScale  = 0.08
	MonsterDefenseScale = 0.1
	HeroDodgePerAgility = 0.0002

	HPRegenRate   = 0.1
	MPRegenRate   = 0.1
	RevivalHPRate = 0.5
	RevivalMPRate = 0.5

	DebuffIncrement = 0.1
)

// Stat names a hero attribute that terrain and level-ups modify
type Stat string

const (
	Strength  Stat = "strength"
	Dexterity Stat = "dexterity"
	Agility   Stat = "agility"
)

// HeroClass is the tag of the hero variant
type HeroClass string

const (
	Warrior  HeroClass = "warrior"
	Sorcerer HeroClass = "sorcerer"
	Paladin  HeroClass = "paladin"
)

// MonsterKind is the tag of the monster variant
type MonsterKind string

const (
	Dragon      MonsterKind = "dragon"
	Exoskeleton MonsterKind = "exoskeleton"
	Spirit      MonsterKind = "spirit"
)

// Element is the spell school; it decides which debuff a hit applies
type Element string

const (
	Ice       Element = "ice"
	Fire      Element = "fire"
	Lightning Element = "lightning"
)

// ParseHeroClass normalises a class name
func ParseHeroClass(s string) (HeroClass, error) {
	c := HeroClass(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := heroVariants[c]; !ok {
		return "", fmt.Errorf("unknown hero class %q", s)
	}
	return c, nil
}

// ParseMonsterKind normalises a monster kind name
func ParseMonsterKind(s string) (MonsterKind, error) {
	k := MonsterKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := monsterVariants[k]; !ok {
		return "", fmt.Errorf("unknown monster kind %q", s)
	}
	return k, nil
}

// ParseElement normalises a spell element name
func ParseElement(s string) (Element, error) {
	switch e := Element(strings.ToLower(strings.TrimSpace(s))); e {
	case Ice, Fire, Lightning:
		return e, nil
	}
	return "", fmt.Errorf("unknown spell element %q", s)
}

// MonsterKinds returns every kind in a stable order
func MonsterKinds() []MonsterKind {
	return []MonsterKind{Dragon, Exoskeleton, Spirit}
}

// Weapon adds flat damage to melee attacks
type Weapon struct {
	Name          string `json:"name" yaml:"name"`
	Damage        int    `json:"damage" yaml:"damage"`
	Hands         int    `json:"hands" yaml:"hands"`
	RequiredLevel int    `json:"required_level" yaml:"required_level"`
}

// Armor reduces incoming monster damage
type Armor struct {
	Name          string `json:"name" yaml:"name"`
	Reduction     int    `json:"reduction" yaml:"reduction"`
	RequiredLevel int    `json:"required_level" yaml:"required_level"`
}

// Spell is a castable attack with an elemental debuff
type Spell struct {
	Name          string  `json:"name" yaml:"name"`
	Damage        int     `json:"damage" yaml:"damage"`
	ManaCost      int     `json:"mana_cost" yaml:"mana_cost"`
	Element       Element `json:"element" yaml:"element"`
	RequiredLevel int     `json:"required_level" yaml:"required_level"`
}

// heroVariant holds the per-class modifiers
type heroVariant struct {
	favored [2]Stat
}

var heroVariants = map[HeroClass]heroVariant{
	Warrior:  {favored: [2]Stat{Strength, Agility}},
	Sorcerer: {favored: [2]Stat{Dexterity, Agility}},
	Paladin:  {favored: [2]Stat{Strength, Dexterity}},
}

// FavoredStats returns the two stats a class boosts further on level-up
func (c HeroClass) FavoredStats() [2]Stat {
	return heroVariants[c].favored
}

// monsterVariant holds the per-kind construction boost
type monsterVariant struct {
	boost func(m *Monster)
}

var monsterVariants = map[MonsterKind]monsterVariant{
	Dragon: {boost: func(m *Monster) {
		m.Damage = int(float64(m.Damage) * (1 + DragonDamageBoost))
	}},
	Exoskeleton: {boost: func(m *Monster) {
		m.Defense = int(float64(m.Defense) * (1 + ExoskeletonDefenseBoost))
	}},
	Spirit: {boost: func(m *Monster) {
		m.Dodge = m.Dodge * (1 + SpiritDodgeBoost)
	}},
}
