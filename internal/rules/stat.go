package rules

import (
	"fmt"
	"strings"
)

// Stat is a statistic kind recorded through roster.Side.UpdateStat.
type Stat int

const (
	StatBatterPitchesFaced Stat = iota + 1
	StatBatterFoulBalls
	StatBatterPlateAppearances
	StatBatterAtBats
	StatBatterHits
	StatBatterSingles
	StatBatterDoubles
	StatBatterTriples
	StatBatterHRs
	StatBatterRBIs
	StatBatterRunsScored
	StatBatterWalks
	StatBatterStrikeouts
	StatBatterFlyouts
	StatBatterGroundouts

	StatPitcherPitchesThrown
	StatPitcherBallsThrown
	StatPitcherStrikesThrown
	StatPitcherBattersFaced
	StatPitcherHitsAllowed
	StatPitcherXBHAllowed
	StatPitcherHRsAllowed
	StatPitcherEarnedRuns
	StatPitcherWalks
	StatPitcherStrikeouts
	StatPitcherFlyouts
	StatPitcherGroundouts
	StatPitcherInningsPitched
	StatPitcherShutouts
	StatPitcherGamesAppeared

	StatStolenBaseAttempts
	StatStolenBases
	StatCaughtStealings

	StatDefenseStolenBaseAttempts
	StatDefenseStolenBases
	StatDefenseCaughtStealings

	StatTeamWins
	StatTeamLosses
	StatTeamSun2Wins
	StatTeamBlackHoleConsumption
)

var statNames = map[Stat]string{
	StatBatterPitchesFaced:        "batter_pitches_faced",
	StatBatterFoulBalls:           "batter_foul_balls",
	StatBatterPlateAppearances:    "batter_plate_appearances",
	StatBatterAtBats:              "batter_at_bats",
	StatBatterHits:                "batter_hits",
	StatBatterSingles:             "batter_singles",
	StatBatterDoubles:             "batter_doubles",
	StatBatterTriples:             "batter_triples",
	StatBatterHRs:                 "batter_hrs",
	StatBatterRBIs:                "batter_rbis",
	StatBatterRunsScored:          "batter_runs_scored",
	StatBatterWalks:               "batter_walks",
	StatBatterStrikeouts:          "batter_strikeouts",
	StatBatterFlyouts:             "batter_flyouts",
	StatBatterGroundouts:          "batter_groundouts",
	StatPitcherPitchesThrown:      "pitcher_pitches_thrown",
	StatPitcherBallsThrown:        "pitcher_balls_thrown",
	StatPitcherStrikesThrown:      "pitcher_strikes_thrown",
	StatPitcherBattersFaced:       "pitcher_batters_faced",
	StatPitcherHitsAllowed:        "pitcher_hits_allowed",
	StatPitcherXBHAllowed:         "pitcher_xbh_allowed",
	StatPitcherHRsAllowed:         "pitcher_hrs_allowed",
	StatPitcherEarnedRuns:         "pitcher_earned_runs",
	StatPitcherWalks:              "pitcher_walks",
	StatPitcherStrikeouts:         "pitcher_strikeouts",
	StatPitcherFlyouts:            "pitcher_flyouts",
	StatPitcherGroundouts:         "pitcher_groundouts",
	StatPitcherInningsPitched:     "pitcher_innings_pitched",
	StatPitcherShutouts:           "pitcher_shutouts",
	StatPitcherGamesAppeared:      "pitcher_games_appeared",
	StatStolenBaseAttempts:        "stolen_base_attempts",
	StatStolenBases:               "stolen_bases",
	StatCaughtStealings:           "caught_stealings",
	StatDefenseStolenBaseAttempts: "defense_stolen_base_attempts",
	StatDefenseStolenBases:        "defense_stolen_bases",
	StatDefenseCaughtStealings:    "defense_caught_stealings",
	StatTeamWins:                  "team_wins",
	StatTeamLosses:                "team_losses",
	StatTeamSun2Wins:              "team_sun2_wins",
	StatTeamBlackHoleConsumption:  "team_black_hole_consumption",
}

func (s Stat) String() string {
	if n, ok := statNames[s]; ok {
		return n
	}
	return fmt.Sprintf("stat(%d)", int(s))
}

func ParseStat(s string) (Stat, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for st, name := range statNames {
		if name == key {
			return st, nil
		}
	}
	return 0, fmt.Errorf("unknown stat %q", s)
}

func (s Stat) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Stat) UnmarshalText(b []byte) error {
	v, err := ParseStat(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
