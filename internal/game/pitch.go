package game

import (
	"github.com/xtding233/diamond-sim/internal/predictor"
	"github.com/xtding233/diamond-sim/internal/roster"
	"github.com/xtding233/diamond-sim/internal/rules"
)

// pitchMods are rolled once per pitch, before the pitch outcome is drawn.
type pitchMods struct {
	strikes        int  // strikes added by a strike, 2 on a fiery pitch
	psychicBatter  bool // strikeout becomes a walk
	psychicPitcher bool // walk becomes a strikeout
	acidic         bool // runs scored on this pitch are worth 0.1 less
}

// resolvePitch throws one pitch, or lets a pre-pitch event take its place.
func (s *State) resolvePitch() error {
	if err := s.skipUnavailable(); err != nil {
		return err
	}
	if s.prePitchEvent() {
		return nil
	}
	batter := s.batting.CurrentBatter()
	pitcher := s.pitching.StartingPitcher()
	s.pitching.UpdateStat(pitcher, rules.StatPitcherPitchesThrown, 1, s.day)
	s.batting.UpdateStat(batter, rules.StatBatterPitchesFaced, 1, s.day)

	mods := pitchMods{
		strikes:        s.extraStrikes(),
		psychicBatter:  s.psychic(s.batting, batter),
		psychicPitcher: s.psychic(s.pitching, pitcher),
		acidic:         s.acidicPitch(),
	}
	fv := s.pitchFeatures()
	outcome, err := s.draw(predictor.Pitch, fv)
	if err != nil {
		return err
	}
	outcome, err = s.reroll(outcome, fv)
	if err != nil {
		return err
	}

	switch outcome {
	case pitchBall:
		s.ball(mods)
	case pitchStrikeSwinging, pitchStrikeLooking:
		if s.forcedSwing() {
			s.logf("Oh No triggered!.")
			s.foul(mods)
			return nil
		}
		s.strike(outcome, mods)
	case pitchFoul:
		s.foul(mods)
	case pitchInPlayHit:
		if s.flinch() {
			return nil
		}
		s.plateAppearance()
		s.batting.UpdateStat(batter, rules.StatBatterAtBats, 1, s.day)
		if err := s.resolveHit(fv, mods.acidic); err != nil {
			return err
		}
		s.batting.ApplyHit(batter)
		s.endAtBat()
	case pitchInPlayOut:
		if s.flinch() {
			return nil
		}
		s.plateAppearance()
		if err := s.resolveOut(fv, mods.acidic); err != nil {
			return err
		}
		s.batting.ResetHitModifiers(batter)
		s.endAtBat()
	}
	return nil
}

// skipUnavailable moves past batters who cannot come to the plate.
func (s *State) skipUnavailable() error {
	for range s.batting.Lineup() {
		batter := s.batting.CurrentBatter()
		if !s.unavailable(batter) {
			return nil
		}
		s.logf("Skipping %s due to UNAVAILABILITY.", s.batting.PlayerName(batter))
		s.batting.NextBatter()
	}
	if !s.unavailable(s.batting.CurrentBatter()) {
		return nil
	}
	return ErrNoBatter
}

func (s *State) unavailable(id string) bool {
	for m := range s.batting.Mods(id) {
		if m.Unavailable() {
			return true
		}
	}
	return false
}

func (s *State) extraStrikes() int {
	if _, ok := s.grant(s.pitching, rules.EventFiery, s.pitching.StartingPitcher()); ok && s.trigger(fieryChance) {
		return 2
	}
	return 1
}

func (s *State) psychic(side *roster.Side, playerID string) bool {
	if _, ok := s.grant(side, rules.EventPsychic, playerID); ok {
		return s.trigger(psychicChance)
	}
	return false
}

func (s *State) acidicPitch() bool {
	if _, ok := s.grant(s.pitching, rules.EventAcid, s.pitching.StartingPitcher()); ok {
		return s.trigger(acidicChance)
	}
	return false
}

// forcedSwing turns a would-be strikeout on a 0-(max-1) count into a foul.
func (s *State) forcedSwing() bool {
	if s.strikes != s.strikesForOut-1 || s.balls != 0 {
		return false
	}
	_, ok := s.grant(s.batting, rules.EventONo, s.batting.CurrentBatter())
	return ok
}

// reroll redraws a called strike while the batting side holds O blood at
// the start of an at-bat, or H2O blood with one out left.
func (s *State) reroll(outcome int, fv []float64) (int, error) {
	if outcome != pitchStrikeLooking {
		return outcome, nil
	}
	batter := s.batting.CurrentBatter()
	var event rules.TeamEvent
	switch {
	case s.hasGrant(rules.EventO, batter) && s.startOfAtBat():
		event = rules.EventO
	case s.hasGrant(rules.EventH2O, batter) && s.outs == s.outsForInning-1:
		event = rules.EventH2O
	default:
		return outcome, nil
	}
	for tries := 0; outcome == pitchStrikeLooking; tries++ {
		if tries == maxRerolls {
			return 0, &RerollError{Event: event, TeamID: s.batting.TeamID(), Tries: tries}
		}
		s.logf("%s Blood triggered a pitch redo!.", event)
		var err error
		if outcome, err = s.draw(predictor.Pitch, fv); err != nil {
			return 0, err
		}
	}
	return outcome, nil
}

func (s *State) hasGrant(e rules.TeamEvent, playerID string) bool {
	_, ok := s.grant(s.batting, e, playerID)
	return ok
}

func (s *State) ball(mods pitchMods) {
	s.pitching.UpdateStat(s.pitching.StartingPitcher(), rules.StatPitcherBallsThrown, 1, s.day)
	s.balls++
	s.logf("Ball %d.", s.balls)
	if s.balls < s.ballsForWalk {
		return
	}
	if mods.psychicPitcher {
		s.logf("Psychic triggered!  Transforming a walk into a strikeout.")
		s.strikes = s.strikesForOut
		s.resolveStrikeout(false)
		return
	}
	s.resolveWalk(s.baseInstincts(), mods.acidic)
}

func (s *State) strike(outcome int, mods pitchMods) {
	s.pitching.UpdateStat(s.pitching.StartingPitcher(), rules.StatPitcherStrikesThrown, float64(mods.strikes), s.day)
	s.strikes += mods.strikes
	if mods.strikes > 1 {
		s.logf("FIERY STRIKE!")
	}
	if outcome == pitchStrikeSwinging {
		s.logf("Strike swinging. Strike %d.", s.strikes)
	} else {
		s.logf("Strike looking. Strike %d.", s.strikes)
	}
	if s.strikes < s.strikesForOut {
		return
	}
	if mods.psychicBatter {
		s.logf("Psychic triggered!  Transforming a strikeout into a walk.")
		s.strikes = 0
		s.balls = s.ballsForWalk
		s.resolveWalk(1, mods.acidic)
		return
	}
	s.resolveStrikeout(mods.acidic)
}

// foul adds a strike but never the last one.
func (s *State) foul(mods pitchMods) {
	batter := s.batting.CurrentBatter()
	s.batting.UpdateStat(batter, rules.StatBatterFoulBalls, 1, s.day)
	switch {
	case s.strikes >= s.strikesForOut-1:
		s.logf("Foul ball.")
	case mods.strikes == 2 && s.strikes < s.strikesForOut-2:
		s.batting.UpdateStat(batter, rules.StatBatterFoulBalls, 1, s.day)
		s.strikes += 2
		s.logf("Fouled off 2 fiery strikes.  Strike %d.", s.strikes)
	default:
		s.strikes++
		s.logf("Foul ball.  Strike %d.", s.strikes)
	}
}

// flinch turns contact into a strike for a flinching batter with no
// strikes.
func (s *State) flinch() bool {
	batter := s.batting.CurrentBatter()
	if s.strikes != 0 || !s.batting.HasMod(batter, rules.ModFlinch) {
		return false
	}
	s.pitching.UpdateStat(s.pitching.StartingPitcher(), rules.StatPitcherStrikesThrown, 1, s.day)
	s.strikes++
	s.logf("%s flinches. Strike %d.", s.batting.PlayerName(batter), s.strikes)
	return true
}

func (s *State) plateAppearance() {
	s.batting.UpdateStat(s.batting.CurrentBatter(), rules.StatBatterPlateAppearances, 1, s.day)
	s.pitching.UpdateStat(s.pitching.StartingPitcher(), rules.StatPitcherBattersFaced, 1, s.day)
}

// endAtBat clears the count and brings up the next batter.
func (s *State) endAtBat() {
	s.resetCount()
	s.batting.NextBatter()
	if s.outs < s.outsForInning {
		s.logf("%s now at bat.", s.batting.CurrentBatterName())
	}
}
