package game

import (
	"maps"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/xtding233/diamond-sim/internal/predictor"
	"github.com/xtding233/diamond-sim/internal/roster"
	"github.com/xtding233/diamond-sim/internal/rules"
)

// resolveWalk sends the batter to base n. A walk past first moves every
// runner n bases; a walk to first only pushes runners who are forced.
func (s *State) resolveWalk(n int, acidic bool) {
	batter := s.batting.CurrentBatter()
	s.logf("Batter %s walks to base %d.", s.batting.PlayerName(batter), n)
	if n > 1 {
		s.advanceAll(n, acidic)
	} else {
		s.forceAdvance(acidic)
	}
	s.pitching.UpdateStat(s.pitching.StartingPitcher(), rules.StatPitcherWalks, 1, s.day)
	s.batting.UpdateStat(batter, rules.StatBatterWalks, 1, s.day)
	s.bases.Place(n, batter)
	s.endAtBat()
}

// forceAdvance moves the unbroken chain of runners starting at first up
// one base, lead runner first.
func (s *State) forceAdvance(acidic bool) {
	last := 0
	for s.bases.Occupied(last + 1) {
		last++
	}
	for base := last; base >= 1; base-- {
		s.advanceRunner(base, 1, acidic)
	}
}

// baseInstincts picks how far a walk goes for a side with the event.
func (s *State) baseInstincts() int {
	batter := s.batting.CurrentBatter()
	if _, ok := s.grant(s.batting, rules.EventBaseInstincts, batter); !ok {
		return 1
	}
	priors, ok := walkPriors[s.numBases]
	if !ok {
		return 1
	}
	roll := s.rng.Float64()
	total := 0.0
	for _, n := range slices.Backward(slices.Sorted(maps.Keys(priors))) {
		total += priors[n]
		if roll < total {
			s.logf("Batter %s walks and base instincts lets them go to %d.", s.batting.PlayerName(batter), n)
			return n
		}
	}
	return 1
}

func (s *State) resolveStrikeout(acidic bool) {
	batter := s.batting.CurrentBatter()
	pitcher := s.pitching.StartingPitcher()
	s.logf("Batter %s strikes out.", s.batting.PlayerName(batter))
	s.pitching.UpdateStat(pitcher, rules.StatPitcherStrikeouts, 1, s.day)
	s.batting.UpdateStat(batter, rules.StatBatterStrikeouts, 1, s.day)
	s.outs++
	s.batting.ResetHitModifiers(batter)

	if s.pitching.HasMod(pitcher, rules.ModTripleThreat) {
		penalty := decimal.RequireFromString(tripleThreatPenalty)
		if acidic {
			penalty = penalty.Add(decimal.RequireFromString(acidicRunPenalty))
		}
		if s.balls == s.ballsForWalk-1 {
			s.addRuns(penalty)
		}
		if s.bases.Count() == 3 {
			s.addRuns(penalty)
		}
		if s.bases.Occupied(s.numBases - 1) {
			s.addRuns(penalty)
		}
	}
	s.endAtBat()
}

func (s *State) advanceAll(n int, acidic bool) {
	for _, base := range s.bases.Descending() {
		s.advanceRunner(base, n, acidic)
	}
}

// advanceRunner moves the runner on base n bases, scoring them if that
// reaches home.
func (s *State) advanceRunner(base, n int, acidic bool) {
	if base+n < s.numBases {
		s.bases.Move(base, base+n)
		return
	}
	runner, _ := s.bases.Runner(base)
	s.logf("Runner %s scores.", s.batting.PlayerName(runner))
	earned := 1.0
	if acidic {
		earned = 0.9
	}
	s.batting.UpdateStat(s.batting.CurrentBatter(), rules.StatBatterRBIs, 1, s.day)
	s.batting.UpdateStat(runner, rules.StatBatterRunsScored, 1, s.day)
	s.pitching.UpdateStat(s.pitching.StartingPitcher(), rules.StatPitcherEarnedRuns, earned, s.day)
	val := s.runValue(runner, acidic)
	s.rallyRefund(runner)
	s.addRuns(val)
	s.logScore()
	s.bases.Remove(base)
}

// runValue is what one run by id is worth on this pitch.
func (s *State) runValue(id string, acidic bool) decimal.Decimal {
	val := decimal.NewFromInt(1)
	if s.weather == rules.WeatherCoffee {
		switch {
		case s.batting.HasMod(id, rules.ModTired):
			val = decimal.RequireFromString("0.5")
		case s.batting.HasMod(id, rules.ModWired):
			val = decimal.RequireFromString("1.5")
		}
	}
	if acidic {
		val = val.Add(decimal.RequireFromString(acidicRunPenalty))
	}
	return val
}

// rallyRefund gives back an out when a rallying runner scores in Coffee 2.
func (s *State) rallyRefund(id string) {
	if s.weather != rules.WeatherCoffee2 || s.outs == 0 || !s.batting.HasMod(id, rules.ModCoffeeRally) {
		return
	}
	s.outs--
	s.batting.ClearMod(id, rules.ModCoffeeRally)
	s.logf("%s rallies and takes back an out.", s.batting.PlayerName(id))
}

// stealBase gives the lead runner a chance to steal. It reports whether a
// steal was attempted, in which case no pitch is thrown.
func (s *State) stealBase() (bool, error) {
	lead := s.bases.Descending()
	if len(lead) == 0 {
		return false, nil
	}
	base := lead[0]
	runner, _ := s.bases.Runner(base)
	fv := s.runnerFeatures(runner)
	attempt, err := s.draw(predictor.StealAttempt, fv)
	if err != nil || attempt != yes {
		return false, err
	}
	pitcher := s.pitching.StartingPitcher()
	s.recordSteal(runner, pitcher, rules.StatStolenBaseAttempts, rules.StatDefenseStolenBaseAttempts)
	success, err := s.draw(predictor.StealSuccess, fv)
	if err != nil {
		return true, err
	}
	if success != yes {
		s.recordSteal(runner, pitcher, rules.StatCaughtStealings, rules.StatDefenseCaughtStealings)
		s.logf("Runner %s caught stealing.", s.batting.PlayerName(runner))
		s.outs++
		s.bases.Remove(base)
		return true, nil
	}
	s.recordSteal(runner, pitcher, rules.StatStolenBases, rules.StatDefenseStolenBases)
	if base == s.numBases-1 {
		s.logf("Runner %s steals home.", s.batting.PlayerName(runner))
		s.pitching.UpdateStat(pitcher, rules.StatPitcherEarnedRuns, 1, s.day)
		val := s.runValue(runner, false)
		s.rallyRefund(runner)
		s.addRuns(val)
		s.bases.Remove(base)
	} else {
		s.logf("Runner %s steals base %d.", s.batting.PlayerName(runner), base+1)
		s.bases.Move(base, base+1)
	}
	if s.batting.HasMod(runner, rules.ModBlaserunning) {
		s.logf("%s gains a fraction of a run with Blaserunning.", s.batting.PlayerName(runner))
		s.addRuns(decimal.RequireFromString(blaserunningBonus))
	}
	return true, nil
}

func (s *State) recordSteal(runner, pitcher string, offense, defense rules.Stat) {
	s.batting.UpdateStat(runner, offense, 1, s.day)
	s.pitching.UpdateStat(roster.DefenseKey, defense, 1, s.day)
	s.pitching.UpdateStat(pitcher, defense, 1, s.day)
}
