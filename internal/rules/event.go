package rules

import (
	"fmt"
	"strings"
)

// TeamEvent is a team-wide rule granted for a range of seasons.
type TeamEvent int

const (
	EventCharm TeamEvent = iota + 1
	EventZap
	EventFiery
	EventAcid
	EventPsychic
	EventONo
	EventBaseInstincts
	EventAA
	EventAAA
	EventO
	EventH2O
	EventHomeFieldAdvantage
)

var eventNames = map[TeamEvent]string{
	EventCharm:              "charm",
	EventZap:                "zap",
	EventFiery:              "fiery",
	EventAcid:               "acid",
	EventPsychic:            "psychic",
	EventONo:                "o_no",
	EventBaseInstincts:      "base_instincts",
	EventAA:                 "aa",
	EventAAA:                "aaa",
	EventO:                  "o",
	EventH2O:                "h2o",
	EventHomeFieldAdvantage: "home_field_advantage",
}

func (e TeamEvent) String() string {
	if s, ok := eventNames[e]; ok {
		return s
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// Rerolls reports whether e redraws a called strike.
func (e TeamEvent) Rerolls() bool {
	return e == EventO || e == EventH2O
}

func ParseTeamEvent(s string) (TeamEvent, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for e, name := range eventNames {
		if name == key {
			return e, nil
		}
	}
	return 0, fmt.Errorf("unknown team event %q", s)
}

func (e TeamEvent) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

func (e *TeamEvent) UnmarshalText(b []byte) error {
	v, err := ParseTeamEvent(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// EventGrant assigns a team event for seasons StartSeason..EndSeason.
// A nil EndSeason leaves the window open. Blood, when set, is the blood
// type the acting player must carry.
type EventGrant struct {
	Event       TeamEvent `json:"event" yaml:"event"`
	StartSeason int       `json:"start_season" yaml:"start_season"`
	EndSeason   *int      `json:"end_season,omitempty" yaml:"end_season,omitempty"`
	Blood       BloodType `json:"blood,omitempty" yaml:"blood,omitempty"`
}

// ActiveIn reports whether the grant covers season.
func (g EventGrant) ActiveIn(season int) bool {
	if season < g.StartSeason {
		return false
	}
	return g.EndSeason == nil || season <= *g.EndSeason
}
