package analysis

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// CardRoles flags the roles a card (or a window of cards) fills.
type CardRoles struct {
	AntiAir bool `json:"anti_air"`
	Spell   bool `json:"spell"`
	WinCon  bool `json:"wincon"`
}

// Roles holds the card-role name sets used by the classifiers. Names are
// stored lower-cased. A Roles value is never mutated after construction.
type Roles struct {
	antiAir map[string]struct{}
	spell   map[string]struct{}
	winCon  map[string]struct{}
}

// RolesFile is the YAML shape accepted by LoadRoles.
type RolesFile struct {
	AntiAir      []string `yaml:"anti_air"`
	Spell        []string `yaml:"spell"`
	WinCondition []string `yaml:"win_condition"`
}

var defaultRolesFile = RolesFile{
	AntiAir: []string{
		"archer", "archers", "musketeer", "baby dragon", "wizard", "electro wizard",
		"ice wizard", "minions", "minion horde", "mega minion", "executioner",
		"hunter", "inferno dragon", "firecracker", "dart goblin", "princess",
		"magic archer", "electro dragon", "bats", "flying machine", "tesla",
		"inferno tower", "three musketeers", "spear goblins", "phoenix",
	},
	Spell: []string{
		"fireball", "zap", "the log", "arrows", "poison", "rocket", "lightning",
		"earthquake", "giant snowball", "barbarian barrel", "tornado", "freeze",
		"rage", "royal delivery", "void",
	},
	WinCondition: []string{
		"hog rider", "giant", "golem", "royal giant", "x-bow", "mortar", "balloon",
		"miner", "graveyard", "goblin barrel", "lava hound", "ram rider",
		"battle ram", "royal hogs", "wall breakers", "elixir golem",
		"electro giant", "goblin giant", "skeleton barrel", "goblin drill",
	},
}

// DefaultRoles returns the built-in role sets.
func DefaultRoles() Roles {
	return NewRoles(defaultRolesFile)
}

// NewRoles builds role sets from plain name lists.
func NewRoles(f RolesFile) Roles {
	return Roles{
		antiAir: nameSet(f.AntiAir),
		spell:   nameSet(f.Spell),
		winCon:  nameSet(f.WinCondition),
	}
}

// LoadRoles reads role sets from a YAML file. Lists omitted from the file
// keep their built-in values.
func LoadRoles(path string) (Roles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Roles{}, fmt.Errorf("read roles file: %w", err)
	}
	var f RolesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Roles{}, fmt.Errorf("parse roles file: %w", err)
	}
	if f.AntiAir == nil {
		f.AntiAir = defaultRolesFile.AntiAir
	}
	if f.Spell == nil {
		f.Spell = defaultRolesFile.Spell
	}
	if f.WinCondition == nil {
		f.WinCondition = defaultRolesFile.WinCondition
	}
	return NewRoles(f), nil
}

func nameSet(names []string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[normName(n)] = struct{}{}
	}
	return m
}

func normName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (r Roles) IsSpell(name string) bool {
	_, ok := r.spell[normName(name)]
	return ok
}

func (r Roles) IsWinCon(name string) bool {
	_, ok := r.winCon[normName(name)]
	return ok
}

func (r Roles) IsAntiAir(name string) bool {
	_, ok := r.antiAir[normName(name)]
	return ok
}

// ClassifyCard looks name up in each role set, case-insensitively.
func (r Roles) ClassifyCard(name string) CardRoles {
	return CardRoles{
		AntiAir: r.IsAntiAir(name),
		Spell:   r.IsSpell(name),
		WinCon:  r.IsWinCon(name),
	}
}
