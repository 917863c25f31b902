package combat

import (
	"errors"
	"fmt"

	"github.com/wricardo/valor-lanes/game/character"
)

var (
	ErrInvalidTarget    = errors.New("invalid target")
	ErrInsufficientMana = errors.New("insufficient mana")
)

// Roller supplies the random draw for a dodge roll. *rand.Rand satisfies it.
type Roller interface {
	Float64() float64
}

// Result describes one resolved exchange. Resolving never touches the
// units; call ApplyHeroAction or ApplyMonsterAction to commit it.
type Result struct {
	Dodged   bool              `json:"dodged"`
	Damage   int               `json:"damage"`
	TargetHP int               `json:"target_hp"`
	Defeated bool              `json:"defeated"`
	ManaCost int               `json:"mana_cost,omitempty"`
	Debuff   character.Element `json:"debuff,omitempty"`
	Message  string            `json:"message"`
}

// ScaledDefense is the share of a monster's effective defense that offsets
// hero damage
func ScaledDefense(m *character.Monster) int {
	return int(float64(m.EffectiveDefense()) * character.MonsterDefenseScale)
}

// MeleeDamage is the damage a landed hero attack deals, at least 1
func MeleeDamage(h *character.Hero, m *character.Monster) int {
	return max(1, h.MeleeDamage()-ScaledDefense(m))
}

// SpellDamage is the damage a landed spell deals, at least 1
func SpellDamage(h *character.Hero, m *character.Monster, s character.Spell) int {
	return max(1, h.SpellDamage(s)-ScaledDefense(m))
}

// MonsterDamage is the damage a landed monster attack deals, at least 0
func MonsterDamage(m *character.Monster, h *character.Hero) int {
	return max(0, int(float64(m.EffectiveDamage())*character.MonsterAttackScale)-h.Defense())
}

func checkUnits(h *character.Hero, m *character.Monster) error {
	if h == nil || !h.Alive() {
		return fmt.Errorf("%w: hero is not able to fight", ErrInvalidTarget)
	}
	if m == nil || !m.Alive() {
		return fmt.Errorf("%w: monster is not able to fight", ErrInvalidTarget)
	}
	return nil
}

// HeroAttack resolves a melee attack
func HeroAttack(h *character.Hero, m *character.Monster, r Roller) (Result, error) {
	if err := checkUnits(h, m); err != nil {
		return Result{}, err
	}
	if r.Float64() < m.EffectiveDodge() {
		return Result{
			Dodged:   true,
			TargetHP: m.HP,
			Message:  fmt.Sprintf("%s dodged %s's attack", m.Name, h.Name),
		}, nil
	}
	dmg := MeleeDamage(h, m)
	hp := max(0, m.HP-dmg)
	return Result{
		Damage:   dmg,
		TargetHP: hp,
		Defeated: hp == 0,
		Message:  fmt.Sprintf("%s hit %s for %d damage", h.Name, m.Name, dmg),
	}, nil
}

// CastSpell resolves a spell. The mana is spent even when the monster
// dodges.
func CastSpell(h *character.Hero, m *character.Monster, s character.Spell, r Roller) (Result, error) {
	if err := checkUnits(h, m); err != nil {
		return Result{}, err
	}
	if !h.HasMana(s.ManaCost) {
		return Result{}, fmt.Errorf("%w: %s needs %d MP, has %d", ErrInsufficientMana, s.Name, s.ManaCost, h.MP)
	}
	if r.Float64() < m.EffectiveDodge() {
		return Result{
			Dodged:   true,
			TargetHP: m.HP,
			ManaCost: s.ManaCost,
			Message:  fmt.Sprintf("%s dodged %s's %s", m.Name, h.Name, s.Name),
		}, nil
	}
	dmg := SpellDamage(h, m, s)
	hp := max(0, m.HP-dmg)
	return Result{
		Damage:   dmg,
		TargetHP: hp,
		Defeated: hp == 0,
		ManaCost: s.ManaCost,
		Debuff:   s.Element,
		Message:  fmt.Sprintf("%s cast %s on %s for %d damage (%s)", h.Name, s.Name, m.Name, dmg, s.Element),
	}, nil
}

// MonsterAttack resolves a monster hitting a hero
func MonsterAttack(m *character.Monster, h *character.Hero, r Roller) (Result, error) {
	if err := checkUnits(h, m); err != nil {
		return Result{}, err
	}
	if r.Float64() < h.DodgeChance() {
		return Result{
			Dodged:   true,
			TargetHP: h.HP,
			Message:  fmt.Sprintf("%s dodged %s's attack", h.Name, m.Name),
		}, nil
	}
	dmg := MonsterDamage(m, h)
	hp := max(0, h.HP-dmg)
	return Result{
		Damage:   dmg,
		TargetHP: hp,
		Defeated: hp == 0,
		Message:  fmt.Sprintf("%s hit %s for %d damage", m.Name, h.Name, dmg),
	}, nil
}

// ApplyHeroAction commits a hero attack or spell result
func ApplyHeroAction(h *character.Hero, m *character.Monster, res Result) {
	h.UseMana(res.ManaCost)
	m.TakeDamage(res.Damage)
	if res.Debuff != "" {
		m.ApplyDebuff(res.Debuff, character.DebuffIncrement)
	}
}

// ApplyMonsterAction commits a monster attack result
func ApplyMonsterAction(h *character.Hero, res Result) {
	h.TakeDamage(res.Damage)
}
