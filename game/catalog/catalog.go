package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/wricardo/valor-lanes/game/character"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

var (
	ErrInvalidCatalog = errors.New("invalid catalog")
	ErrUnknownHero    = errors.New("unknown hero")
)

// HeroTemplate is one row of the hero table
type HeroTemplate struct {
	Name       string              `yaml:"name" json:"name"`
	Class      character.HeroClass `yaml:"class" json:"class"`
	Level      int                 `yaml:"level,omitempty" json:"level,omitempty"`
	Mana       int                 `yaml:"mana" json:"mana"`
	Strength   int                 `yaml:"strength" json:"strength"`
	Agility    int                 `yaml:"agility" json:"agility"`
	Dexterity  int                 `yaml:"dexterity" json:"dexterity"`
	Gold       int                 `yaml:"gold" json:"gold"`
	Experience int                 `yaml:"experience" json:"experience"`
	Weapon     string              `yaml:"weapon,omitempty" json:"weapon,omitempty"`
	Armor      string              `yaml:"armor,omitempty" json:"armor,omitempty"`
	Spells     []string            `yaml:"spells,omitempty" json:"spells,omitempty"`
}

// MonsterTemplate is one row of the monster table. Dodge is in percent.
type MonsterTemplate struct {
	Name    string                `yaml:"name" json:"name"`
	Kind    character.MonsterKind `yaml:"kind" json:"kind"`
	Level   int                   `yaml:"level" json:"level"`
	Damage  int                   `yaml:"damage" json:"damage"`
	Defense int                   `yaml:"defense" json:"defense"`
	Dodge   float64               `yaml:"dodge" json:"dodge"`
}

// Catalog is the character data source: it builds fresh heroes and
// monsters from its tables on every request.
type Catalog struct {
	Heroes   []HeroTemplate     `yaml:"heroes"`
	Monsters []MonsterTemplate  `yaml:"monsters"`
	Weapons  []character.Weapon `yaml:"weapons"`
	Armor    []character.Armor  `yaml:"armor"`
	Spells   []character.Spell  `yaml:"spells"`
}

// Default returns the embedded catalog
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Load reads a catalog from r
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// LoadFile reads a catalog from a YAML file
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML catalog data
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every row names a known variant and that hero gear
// refers to items in the tables. Class, kind and element names are
// normalised in place.
func (c *Catalog) Validate() error {
	if len(c.Heroes) == 0 {
		return fmt.Errorf("%w: no heroes", ErrInvalidCatalog)
	}
	for i, s := range c.Spells {
		el, err := character.ParseElement(string(s.Element))
		if err != nil {
			return fmt.Errorf("%w: spell %d (%s): %w", ErrInvalidCatalog, i, s.Name, err)
		}
		c.Spells[i].Element = el
	}
	for i, h := range c.Heroes {
		cls, err := character.ParseHeroClass(string(h.Class))
		if err != nil {
			return fmt.Errorf("%w: hero %d (%s): %w", ErrInvalidCatalog, i, h.Name, err)
		}
		c.Heroes[i].Class = cls
		if h.Weapon != "" && c.weapon(h.Weapon) == nil {
			return fmt.Errorf("%w: hero %s carries unknown weapon %q", ErrInvalidCatalog, h.Name, h.Weapon)
		}
		if h.Armor != "" && c.armor(h.Armor) == nil {
			return fmt.Errorf("%w: hero %s wears unknown armor %q", ErrInvalidCatalog, h.Name, h.Armor)
		}
		for _, sp := range h.Spells {
			if _, ok := c.spell(sp); !ok {
				return fmt.Errorf("%w: hero %s knows unknown spell %q", ErrInvalidCatalog, h.Name, sp)
			}
		}
	}
	for i, m := range c.Monsters {
		kind, err := character.ParseMonsterKind(string(m.Kind))
		if err != nil {
			return fmt.Errorf("%w: monster %d (%s): %w", ErrInvalidCatalog, i, m.Name, err)
		}
		c.Monsters[i].Kind = kind
		if m.Level < 1 {
			return fmt.Errorf("%w: monster %s has level %d", ErrInvalidCatalog, m.Name, m.Level)
		}
	}
	return nil
}

func (c *Catalog) weapon(name string) *character.Weapon {
	for i := range c.Weapons {
		if c.Weapons[i].Name == name {
			w := c.Weapons[i]
			return &w
		}
	}
	return nil
}

func (c *Catalog) armor(name string) *character.Armor {
	for i := range c.Armor {
		if c.Armor[i].Name == name {
			a := c.Armor[i]
			return &a
		}
	}
	return nil
}

func (c *Catalog) spell(name string) (character.Spell, bool) {
	for _, s := range c.Spells {
		if s.Name == name {
			return s, true
		}
	}
	return character.Spell{}, false
}

func (c *Catalog) build(t HeroTemplate) *character.Hero {
	h := character.NewHero(t.Name, t.Class, max(1, t.Level), t.Mana, t.Strength, t.Dexterity, t.Agility, t.Gold, t.Experience)
	if t.Weapon != "" {
		h.Weapon = c.weapon(t.Weapon)
	}
	if t.Armor != "" {
		h.Armor = c.armor(t.Armor)
	}
	for _, name := range t.Spells {
		if s, ok := c.spell(name); ok {
			h.Spells = append(h.Spells, s)
		}
	}
	return h
}

// Party returns n fresh heroes in table order
func (c *Catalog) Party(n int) ([]*character.Hero, error) {
	if n < 1 || n > len(c.Heroes) {
		return nil, fmt.Errorf("party size %d out of range 1-%d", n, len(c.Heroes))
	}
	out := make([]*character.Hero, 0, n)
	for _, t := range c.Heroes[:n] {
		out = append(out, c.build(t))
	}
	return out, nil
}

// PartyOf returns fresh heroes picked by name
func (c *Catalog) PartyOf(names []string) ([]*character.Hero, error) {
	out := make([]*character.Hero, 0, len(names))
	for _, name := range names {
		t, ok := c.hero(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownHero, name)
		}
		out = append(out, c.build(t))
	}
	return out, nil
}

func (c *Catalog) hero(name string) (HeroTemplate, bool) {
	for _, t := range c.Heroes {
		if t.Name == name {
			return t, true
		}
	}
	return HeroTemplate{}, false
}

// MonsterNear builds a monster from the templates whose level is closest
// to level, picking among ties with rng. It reports false when the table
// is empty.
func (c *Catalog) MonsterNear(level int, rng *rand.Rand) (*character.Monster, bool) {
	if len(c.Monsters) == 0 {
		return nil, false
	}
	best := -1
	var pool []MonsterTemplate
	for _, t := range c.Monsters {
		d := t.Level - level
		if d < 0 {
			d = -d
		}
		switch {
		case best < 0 || d < best:
			best = d
			pool = []MonsterTemplate{t}
		case d == best:
			pool = append(pool, t)
		}
	}
	t := pool[rng.Intn(len(pool))]
	return character.NewMonster(t.Kind, t.Name, t.Level, t.Damage, t.Defense, t.Dodge), true
}
