// Package stadium holds per-venue attributes. A Stadium is immutable once
// built and may be shared by concurrently simulated games.
package stadium

import (
	"slices"
	"strings"
)

const (
	ModPeanutMister = "PEANUT_MISTER"
	ModBigBucket    = "BIG_BUCKET"
)

// FeatureLen is the length of FeatureVector.
const FeatureLen = 7

// Stadium is a venue. The seven numeric attributes feed every predictor.
type Stadium struct {
	TeamID      string   `json:"team_id" yaml:"team_id"`
	StadiumID   string   `json:"stadium_id" yaml:"stadium_id"`
	Name        string   `json:"name" yaml:"name"`
	Mysticism   float64  `json:"mysticism" yaml:"mysticism"`
	Viscosity   float64  `json:"viscosity" yaml:"viscosity"`
	Elongation  float64  `json:"elongation" yaml:"elongation"`
	Obtuseness  float64  `json:"obtuseness" yaml:"obtuseness"`
	Forwardness float64  `json:"forwardness" yaml:"forwardness"`
	Grandiosity float64  `json:"grandiosity" yaml:"grandiosity"`
	Ominousness float64  `json:"ominousness" yaml:"ominousness"`
	Mods        []string `json:"mods" yaml:"mods"`
}

// Default is a neutral venue used when a home team has no ballpark on file.
func Default(teamID string) Stadium {
	return Stadium{
		TeamID:      teamID,
		StadiumID:   "default",
		Name:        "Neutral Field",
		Mysticism:   0.5,
		Viscosity:   0.5,
		Elongation:  0.5,
		Obtuseness:  0.5,
		Forwardness: 0.5,
		Grandiosity: 0.5,
		Ominousness: 0.5,
		Mods:        []string{},
	}
}

// FeatureVector returns the attributes in model order.
func (s Stadium) FeatureVector() []float64 {
	return []float64{
		s.Mysticism,
		s.Viscosity,
		s.Elongation,
		s.Obtuseness,
		s.Forwardness,
		s.Grandiosity,
		s.Ominousness,
	}
}

func (s Stadium) HasBigBuckets() bool   { return s.hasMod(ModBigBucket) }
func (s Stadium) HasPeanutMister() bool { return s.hasMod(ModPeanutMister) }

func (s Stadium) hasMod(mod string) bool {
	return slices.ContainsFunc(s.Mods, func(m string) bool {
		return strings.EqualFold(m, mod)
	})
}

// Clone returns a copy that shares no slices with s.
func (s Stadium) Clone() Stadium {
	out := s
	out.Mods = slices.Clone(s.Mods)
	return out
}
