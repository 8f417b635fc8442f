package game

import (
	"github.com/shopspring/decimal"

	"github.com/xtding233/diamond-sim/internal/predictor"
	"github.com/xtding233/diamond-sim/internal/rules"
)

// resolveOut plays a ball in play that becomes an out.
func (s *State) resolveOut(fv []float64, acidic bool) error {
	kind, err := s.draw(predictor.OutType, fv)
	if err != nil {
		return err
	}
	batter := s.batting.CurrentBatter()
	pitcher := s.pitching.StartingPitcher()
	name := s.batting.PlayerName(batter)
	s.outs++
	s.batting.UpdateStat(batter, rules.StatBatterAtBats, 1, s.day)
	switch kind {
	case outFly:
		s.logf("Batter %s flies out.", name)
		s.pitching.UpdateStat(pitcher, rules.StatPitcherFlyouts, 1, s.day)
		s.batting.UpdateStat(batter, rules.StatBatterFlyouts, 1, s.day)
		if s.outs < s.outsForInning {
			if err := s.extraBases(predictor.RunnerAdvanceOnOut, "tags up and advances", acidic); err != nil {
				return err
			}
		}
	case outGround:
		s.logf("Batter %s grounds out.", name)
		s.pitching.UpdateStat(pitcher, rules.StatPitcherGroundouts, 1, s.day)
		s.batting.UpdateStat(batter, rules.StatBatterGroundouts, 1, s.day)
		if s.outs < s.outsForInning {
			// no fielder's choice or double play: everyone moves up one
			s.advanceAll(1, acidic)
		}
	}
	s.resetCount()
	return nil
}

// resolveHit plays a base hit: runners move up, then may take an extra
// base, then the batter takes the base the hit earned.
func (s *State) resolveHit(fv []float64, acidic bool) error {
	batter := s.batting.CurrentBatter()
	pitcher := s.pitching.StartingPitcher()
	name := s.batting.PlayerName(batter)
	s.batting.UpdateStat(batter, rules.StatBatterHits, 1, s.day)
	s.pitching.UpdateStat(pitcher, rules.StatPitcherHitsAllowed, 1, s.day)
	kind, err := s.draw(predictor.HitType, fv)
	if err != nil {
		return err
	}

	var bases int
	switch kind {
	case hitSingle:
		s.logf("Batter %s hits a single.", name)
		bases = 1
		s.advanceAll(bases, acidic)
		s.batting.UpdateStat(batter, rules.StatBatterSingles, 1, s.day)
	case hitDouble:
		s.logf("Batter %s hits a double.", name)
		s.overPerform(rules.EventAA, aaChance)
		bases = 2
		s.advanceAll(bases, acidic)
		s.batting.UpdateStat(batter, rules.StatBatterDoubles, 1, s.day)
		s.pitching.UpdateStat(pitcher, rules.StatPitcherXBHAllowed, 1, s.day)
	case hitTriple:
		s.logf("Batter %s hits a triple.", name)
		s.overPerform(rules.EventAAA, aaaChance)
		bases = 3
		s.advanceAll(bases, acidic)
		s.batting.UpdateStat(batter, rules.StatBatterTriples, 1, s.day)
		s.pitching.UpdateStat(pitcher, rules.StatPitcherXBHAllowed, 1, s.day)
	case hitHomeRun:
		s.logf("Batter %s hits a home run.", name)
		s.homeRun(acidic)
		s.resetCount()
		s.logRunners()
		return nil
	}

	if err := s.extraBases(predictor.RunnerAdvanceOnHit, "takes an extra base on the hit", acidic); err != nil {
		return err
	}
	s.bases.Place(bases, batter)
	s.resetCount()
	s.logRunners()
	return nil
}

// overPerform may grant the batter OVERPERFORMING after an extra-base hit.
func (s *State) overPerform(e rules.TeamEvent, p float64) {
	batter := s.batting.CurrentBatter()
	if _, ok := s.grant(s.batting, e, batter); !ok {
		return
	}
	if !s.trigger(p) || s.batting.HasMod(batter, rules.ModOverPerforming) {
		return
	}
	s.logf("%s triggers and turning on over perform.", e)
	s.batting.SetMod(batter, rules.ModOverPerforming, 1)
}

func (s *State) homeRun(acidic bool) {
	batter := s.batting.CurrentBatter()
	pitcher := s.pitching.StartingPitcher()
	s.advanceAll(s.numBases, acidic)
	s.batting.UpdateStat(batter, rules.StatBatterHRs, 1, s.day)
	s.batting.UpdateStat(batter, rules.StatBatterRBIs, 1, s.day)
	s.batting.UpdateStat(batter, rules.StatBatterRunsScored, 1, s.day)
	s.pitching.UpdateStat(pitcher, rules.StatPitcherHRsAllowed, 1, s.day)
	s.pitching.UpdateStat(pitcher, rules.StatPitcherEarnedRuns, 1, s.day)

	val := s.runValue(batter, acidic)
	s.rallyRefund(batter)
	if s.stadium.HasBigBuckets() && s.trigger(bigBucketChance) {
		s.logf("The home run lands in the big bucket, letting the batter score twice.")
		val = val.Mul(decimal.NewFromInt(2))
	}
	s.addRuns(val)
	s.logf("Batter %s scores.", s.batting.PlayerName(batter))
	s.logScore()
}

// extraBases gives every runner with an open base ahead one chance to take
// it, nearest to scoring first.
func (s *State) extraBases(m predictor.Model, verb string, acidic bool) error {
	for _, base := range s.bases.Descending() {
		if !s.bases.Open(base + 1) {
			continue
		}
		runner, _ := s.bases.Runner(base)
		adv, err := s.draw(m, s.runnerFeatures(runner))
		if err != nil {
			return err
		}
		if adv == yes {
			s.logf("Runner %s %s.", s.batting.PlayerName(runner), verb)
			s.advanceRunner(base, 1, acidic)
		}
	}
	return nil
}
