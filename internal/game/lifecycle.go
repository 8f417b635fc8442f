package game

import (
	"fmt"

	"github.com/xtding233/diamond-sim/internal/roster"
	"github.com/xtding233/diamond-sim/internal/rules"
)

// Step plays one pitch cycle: a steal attempt or, failing that, a pitch.
// It then closes out the half inning if it is over.
func (s *State) Step() error {
	if s.over {
		return ErrGameOver
	}
	stole, err := s.stealBase()
	if err != nil {
		return err
	}
	if !stole {
		if err := s.resolvePitch(); err != nil {
			return err
		}
	}
	s.advanceInning()
	s.batting.ValidateGameStateAdditives(s.battingScore())
	s.pitching.ValidateGameStateAdditives(s.pitchingScore())
	s.loseTripleThreat()
	return nil
}

// Simulate plays until the game is over and credits the final statistics.
func (s *State) Simulate() (Result, error) {
	for !s.over {
		if err := s.Step(); err != nil {
			return Result{}, fmt.Errorf("simulate %s: %w", s.id, err)
		}
	}
	s.finalize()
	return s.Result(), nil
}

// Result reports the current score. It is final once Over is true.
func (s *State) Result() Result {
	return Result{
		GameID:    s.id,
		HomeScore: s.homeScore,
		AwayScore: s.awayScore,
		Innings:   s.inning,
		Log:       s.Log(),
	}
}

// advanceInning ends the half inning once the batting side is out of outs.
// From the ninth on, the game ends after a top half the home side leads or
// a bottom half that is not tied.
func (s *State) advanceInning() {
	if s.outs < s.outsForInning {
		return
	}
	s.pitching.UpdateStat(s.pitching.StartingPitcher(), rules.StatPitcherInningsPitched, 1, s.day)
	if s.inning >= regulationInnings {
		top := s.half == Top
		if (top && s.homeScore.GreaterThan(s.awayScore)) || (!top && !s.homeScore.Equal(s.awayScore)) {
			s.over = true
			s.logf("Side retired. Game over.")
			s.logScore()
			return
		}
	}
	if s.half == Top {
		s.half = Bottom
	} else {
		s.half = Top
		s.inning++
	}
	s.logf("Side retired. %s of inning %d.", s.half, s.inning)
	s.logScore()
	s.bases.Clear()
	s.refresh()
	s.resetInningCounts()
}

// loseTripleThreat gives each Coffee 3 triple threat one chance to wear off
// as the fourth inning begins.
func (s *State) loseTripleThreat() {
	if s.weather != rules.WeatherCoffee3 || s.tripleThreatChecked {
		return
	}
	if s.inning != tripleThreatInning || s.half != Top || s.outs != 0 || !s.startOfAtBat() || !s.bases.Empty() {
		return
	}
	s.tripleThreatChecked = true
	for _, side := range []*roster.Side{s.batting, s.pitching} {
		pitcher := side.StartingPitcher()
		if !side.HasMod(pitcher, rules.ModTripleThreat) {
			continue
		}
		if s.rng.Float64() <= loseTripleThreat {
			s.logf("%s loses triple threat.", side.PitcherName())
			side.ClearMod(pitcher, rules.ModTripleThreat)
		}
	}
}

// finalize credits shutouts, appearances and the win and loss.
func (s *State) finalize() {
	if s.awayScore.IsZero() {
		s.home.UpdateStat(s.home.StartingPitcher(), rules.StatPitcherShutouts, 1, s.day)
	}
	if s.homeScore.IsZero() {
		s.away.UpdateStat(s.away.StartingPitcher(), rules.StatPitcherShutouts, 1, s.day)
	}
	for _, side := range []*roster.Side{s.home, s.away} {
		side.UpdateStat(side.StartingPitcher(), rules.StatPitcherShutouts, 0, s.day)
		side.UpdateStat(side.StartingPitcher(), rules.StatPitcherGamesAppeared, 1, s.day)
	}
	winner, loser := s.away, s.home
	if s.homeScore.GreaterThan(s.awayScore) {
		winner, loser = s.home, s.away
	}
	winner.UpdateStat(roster.TeamKey, rules.StatTeamWins, 1, s.day)
	loser.UpdateStat(roster.TeamKey, rules.StatTeamLosses, 1, s.day)
}
