package roster

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/xtding233/diamond-sim/internal/rules"
)

const (
	performBoost  = 1.2
	spicyBoost    = 1.4
	peanutBoost   = 2.0
	spicyMaxStack = 4
	// a side at or under this score keeps UNDEROVER active
	underOverScore = 5
)

// active counter value for modifiers that switch on and off during a game
const modActive = 2

// Additives are multipliers applied to stlats before they reach a model.
type Additives struct {
	Batting  float64 `json:"batting"`
	Pitching float64 `json:"pitching"`
	Defense  float64 `json:"defense"`
	Running  float64 `json:"running"`
}

func unitAdditives() Additives { return Additives{1, 1, 1, 1} }

func (a Additives) scale(f float64) Additives {
	return Additives{a.Batting * f, a.Pitching * f, a.Defense * f, a.Running * f}
}

func (s *Side) HasMod(id string, m rules.Modifier) bool {
	_, ok := s.mods[id][m]
	return ok
}

func (s *Side) Mod(id string, m rules.Modifier) (int, bool) {
	v, ok := s.mods[id][m]
	return v, ok
}

// SetMod sets a modifier counter and refreshes that player's additives.
func (s *Side) SetMod(id string, m rules.Modifier, v int) {
	pm := s.mods[id]
	if pm == nil {
		pm = make(map[rules.Modifier]int)
		s.mods[id] = pm
	}
	pm[m] = v
	s.recalcPlayer(id)
}

func (s *Side) ClearMod(id string, m rules.Modifier) {
	if pm, ok := s.mods[id]; ok {
		delete(pm, m)
		s.recalcPlayer(id)
	}
}

// Mods returns a copy of a player's live modifiers.
func (s *Side) Mods(id string) map[rules.Modifier]int {
	return maps.Clone(s.mods[id])
}

// ApplyHit stacks hit-driven modifiers after a hit.
func (s *Side) ApplyHit(id string) {
	if v, ok := s.Mod(id, rules.ModSpicy); ok && v < spicyMaxStack {
		s.SetMod(id, rules.ModSpicy, v+1)
	}
}

// ResetHitModifiers drops hit stacks back to their base value.
func (s *Side) ResetHitModifiers(id string) {
	if _, ok := s.Mod(id, rules.ModSpicy); ok {
		s.SetMod(id, rules.ModSpicy, 1)
	}
}

// ValidateGameStateAdditives switches score-dependent modifiers.
func (s *Side) ValidateGameStateAdditives(score decimal.Decimal) {
	limit := decimal.NewFromInt(underOverScore)
	for id, pm := range s.mods {
		changed := false
		if v, ok := pm[rules.ModUnderOver]; ok {
			want := 1
			if score.LessThanOrEqual(limit) {
				want = modActive
			}
			changed = changed || v != want
			pm[rules.ModUnderOver] = want
		}
		if v, ok := pm[rules.ModOverUnder]; ok {
			want := 1
			if score.GreaterThan(limit) {
				want = modActive
			}
			changed = changed || v != want
			pm[rules.ModOverUnder] = want
		}
		if changed {
			s.recalcPlayer(id)
		}
	}
}

// PlayerAdditives returns the multipliers for a player, team boosts
// excluded.
func (s *Side) PlayerAdditives(id string) Additives {
	if a, ok := s.additives[id]; ok {
		return a
	}
	return unitAdditives()
}

// TeamAdditives returns the product of active team boosts.
func (s *Side) TeamAdditives() Additives { return s.team }

// recalcAdditives sets pre-game counters for context-dependent modifiers,
// then recomputes every multiplier.
func (s *Side) recalcAdditives() {
	s.team = unitAdditives()
	for _, b := range s.cfg.Boosts {
		if !s.boostActive(b) {
			continue
		}
		s.team.Batting *= orOne(b.Batting)
		s.team.Pitching *= orOne(b.Pitching)
		s.team.Defense *= orOne(b.Defense)
		s.team.Running *= orOne(b.Running)
	}
	s.additives = make(map[string]Additives, len(s.mods))
	for id, pm := range s.mods {
		for m := range pm {
			switch m {
			case rules.ModOverPerforming, rules.ModUnderPerforming, rules.ModUnderOver:
				pm[m] = modActive
			case rules.ModOverUnder:
				pm[m] = 1
			case rules.ModPerk:
				if s.cfg.Weather.IsCoffee() {
					pm[m] = modActive
				} else {
					pm[m] = 1
				}
			}
		}
		s.recalcPlayer(id)
	}
}

func (s *Side) recalcPlayer(id string) {
	a := unitAdditives()
	pm := s.mods[id]
	for _, m := range slices.Sorted(maps.Keys(pm)) {
		v := pm[m]
		switch m {
		case rules.ModOverPerforming:
			a = a.scale(performBoost)
		case rules.ModUnderPerforming:
			a = a.scale(1 / performBoost)
		case rules.ModHomebody:
			if s.cfg.Home {
				a = a.scale(performBoost)
			} else {
				a = a.scale(1 / performBoost)
			}
		case rules.ModPerk:
			if v == modActive {
				a = a.scale(performBoost)
			}
		case rules.ModUnderOver:
			if v == modActive {
				a = a.scale(performBoost)
			}
		case rules.ModOverUnder:
			if v == modActive {
				a = a.scale(1 / performBoost)
			}
		case rules.ModChunky:
			if s.cfg.Weather == rules.WeatherPeanuts {
				a.Batting *= peanutBoost
			}
		case rules.ModSmooth:
			if s.cfg.Weather == rules.WeatherPeanuts {
				a.Running *= peanutBoost
			}
		case rules.ModSpicy:
			if v >= spicyMaxStack {
				a.Batting *= spicyBoost
			}
		}
	}
	if s.additives == nil {
		s.additives = make(map[string]Additives)
	}
	s.additives[id] = a
}

func (s *Side) boostActive(b TeamBoost) bool {
	if s.cfg.Season < b.StartSeason {
		return false
	}
	if b.EndSeason != nil && s.cfg.Season > *b.EndSeason {
		return false
	}
	if b.Weather != nil && *b.Weather != s.cfg.Weather {
		return false
	}
	if b.AwayOnly && s.cfg.Home {
		return false
	}
	return true
}

func orOne(f float64) float64 {
	if f == 0 {
		return 1
	}
	return f
}
