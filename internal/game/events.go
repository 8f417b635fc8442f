package game

import (
	"github.com/shopspring/decimal"

	"github.com/xtding233/diamond-sim/internal/rules"
)

// prePitchEvent runs the pre-pitch checks in order and stops at the first
// one that fires. It reports whether the pitch was replaced.
func (s *State) prePitchEvent() bool {
	for _, check := range []func() bool{
		s.flood,
		s.coffeeBean,
		s.coffeeRally,
		s.crows,
		s.charmStrikeout,
		s.charmWalk,
		s.zap,
	} {
		if check() {
			return true
		}
	}
	return false
}

// flood sweeps the bases. Swimmers score, ego keeps a runner on base.
func (s *State) flood() bool {
	if s.weather != rules.WeatherFlooding || s.bases.Empty() || !s.trigger(floodingChance) {
		return false
	}
	s.logf("A surge of Immateria rushes up from Under! Baserunners are swept from play!")
	for _, base := range s.bases.Descending() {
		runner, _ := s.bases.Runner(base)
		name := s.batting.PlayerName(runner)
		switch {
		case s.batting.HasMod(runner, rules.ModSwimBladder):
			s.logf("%s uses FLIPPERS to swim home.", name)
			s.addRuns(decimal.NewFromInt(1))
			s.bases.Remove(base)
		case s.hasEgo(runner):
			s.logf("%s's EGO keeps them on base.", name)
		default:
			s.bases.Remove(base)
		}
	}
	return true
}

func (s *State) hasEgo(id string) bool {
	for m := range s.batting.Mods(id) {
		if m.Ego() {
			return true
		}
	}
	return false
}

// coffeeBean cycles the batter from neutral to wired to tired and back.
func (s *State) coffeeBean() bool {
	if s.weather != rules.WeatherCoffee || !s.trigger(coffeeBeanChance) {
		return false
	}
	batter := s.batting.CurrentBatter()
	name := s.batting.PlayerName(batter)
	s.logf("%s is beaned.", name)
	switch {
	case s.batting.HasMod(batter, rules.ModTired):
		s.logf("%s loses Tired.", name)
		s.batting.ClearMod(batter, rules.ModTired)
	case s.batting.HasMod(batter, rules.ModWired):
		s.logf("%s becomes Tired.", name)
		s.batting.ClearMod(batter, rules.ModWired)
		s.batting.SetMod(batter, rules.ModTired, 1)
	default:
		s.logf("%s becomes Wired.", name)
		s.batting.SetMod(batter, rules.ModWired, 1)
	}
	return true
}

func (s *State) coffeeRally() bool {
	if s.weather != rules.WeatherCoffee2 || !s.trigger(coffeeRallyChance) {
		return false
	}
	batter := s.batting.CurrentBatter()
	s.logf("%s is filled up.", s.batting.PlayerName(batter))
	s.batting.SetMod(batter, rules.ModCoffeeRally, 1)
	return true
}

// crows chase the batter off the plate for an out.
func (s *State) crows() bool {
	if s.weather != rules.WeatherBirds || !s.pitching.HasMod(s.pitching.StartingPitcher(), rules.ModFriendOfCrows) {
		return false
	}
	if !s.trigger(crowsChance) {
		return false
	}
	batter := s.batting.CurrentBatter()
	s.logf("%s is chased away by crows.  Out.", s.batting.PlayerName(batter))
	s.plateAppearance()
	s.batting.ResetHitModifiers(batter)
	s.outs++
	s.endAtBat()
	return true
}

func (s *State) charmStrikeout() bool {
	if !s.startOfAtBat() {
		return false
	}
	if _, ok := s.grant(s.pitching, rules.EventCharm, s.pitching.StartingPitcher()); !ok || !s.trigger(charmChance) {
		return false
	}
	s.logf("Batter %s is charmed into a strikeout.", s.batting.CurrentBatterName())
	s.resolveStrikeout(false)
	return true
}

func (s *State) charmWalk() bool {
	if !s.startOfAtBat() {
		return false
	}
	if _, ok := s.grant(s.batting, rules.EventCharm, s.batting.CurrentBatter()); !ok || !s.trigger(charmChance) {
		return false
	}
	s.logf("Batter %s charms a walk.", s.batting.CurrentBatterName())
	s.resolveWalk(1, false)
	return true
}

func (s *State) zap() bool {
	if s.strikes == 0 {
		return false
	}
	if _, ok := s.grant(s.batting, rules.EventZap, s.batting.CurrentBatter()); !ok || !s.trigger(zapChance) {
		return false
	}
	s.logf("Batter %s zaps a strike.", s.batting.CurrentBatterName())
	s.strikes--
	return true
}
