package rules

import (
	"fmt"
	"strings"
)

// Modifier is a per-player flag or counter. The counter value is kept in
// roster.Side; the meaning of the value depends on the modifier.
type Modifier int

const (
	ModElsewhere Modifier = iota + 1
	ModShelled
	ModFlinch
	ModWired
	ModTired
	ModCoffeeRally
	ModFriendOfCrows
	ModSwimBladder
	ModEgo1
	ModEgo2
	ModEgo3
	ModEgo4
	ModBlaserunning
	ModTripleThreat
	ModOverPerforming
	ModUnderPerforming
	ModSpicy
	ModHomebody
	ModPerk
	ModChunky
	ModSmooth
	ModUnderOver
	ModOverUnder
)

var modifierNames = map[Modifier]string{
	ModElsewhere:       "ELSEWHERE",
	ModShelled:         "SHELLED",
	ModFlinch:          "FLINCH",
	ModWired:           "WIRED",
	ModTired:           "TIRED",
	ModCoffeeRally:     "COFFEE_RALLY",
	ModFriendOfCrows:   "FRIEND_OF_CROWS",
	ModSwimBladder:     "SWIM_BLADDER",
	ModEgo1:            "EGO1",
	ModEgo2:            "EGO2",
	ModEgo3:            "EGO3",
	ModEgo4:            "EGO4",
	ModBlaserunning:    "BLASERUNNING",
	ModTripleThreat:    "TRIPLE_THREAT",
	ModOverPerforming:  "OVERPERFORMING",
	ModUnderPerforming: "UNDERPERFORMING",
	ModSpicy:           "SPICY",
	ModHomebody:        "HOMEBODY",
	ModPerk:            "PERK",
	ModChunky:          "CHUNKY",
	ModSmooth:          "SMOOTH",
	ModUnderOver:       "UNDEROVER",
	ModOverUnder:       "OVERUNDER",
}

func (m Modifier) String() string {
	if s, ok := modifierNames[m]; ok {
		return s
	}
	return fmt.Sprintf("modifier(%d)", int(m))
}

// Unavailable reports whether a batter holding m is skipped in the lineup.
func (m Modifier) Unavailable() bool {
	return m == ModElsewhere || m == ModShelled
}

// Ego reports whether m keeps a runner on base through a flood.
func (m Modifier) Ego() bool {
	switch m {
	case ModEgo1, ModEgo2, ModEgo3, ModEgo4:
		return true
	default:
		return false
	}
}

// ParseModifier matches the upper-case feed name of a modifier.
func ParseModifier(s string) (Modifier, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	for m, name := range modifierNames {
		if name == key {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown modifier %q", s)
}

func (m Modifier) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Modifier) UnmarshalText(b []byte) error {
	v, err := ParseModifier(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
