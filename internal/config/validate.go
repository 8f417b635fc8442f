package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xtding233/diamond-sim/internal/game"
)

const minBases = 4

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config validation failed")

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// rules
	if n := cfg.Rules.NumBases; n != nil && (*n < minBases || *n > game.MaxBases) {
		errs = append(errs, fmt.Sprintf("rules.num_bases must be in [%d,%d]", minBases, game.MaxBases))
	}
	if n := cfg.Rules.BallsForWalk; n != nil && *n < 1 {
		errs = append(errs, "rules.balls_for_walk must be >= 1")
	}
	if n := cfg.Rules.StrikesForOut; n != nil && *n < 1 {
		errs = append(errs, "rules.strikes_for_out must be >= 1")
	}
	if n := cfg.Rules.OutsForInning; n != nil && *n < 1 {
		errs = append(errs, "rules.outs_for_inning must be >= 1")
	}

	if cfg.Trials != nil && *cfg.Trials < 1 {
		errs = append(errs, "trials must be >= 1")
	}
	if cfg.SegmentSize != nil && *cfg.SegmentSize < 0 {
		errs = append(errs, "segment_size must be >= 0 (0 disables segments)")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

// ValidateTeam checks that a team file can field a side.
func ValidateTeam(t TeamFile) error {
	var errs []string
	if t.TeamID == "" {
		errs = append(errs, "team_id is required")
	}
	if len(t.Lineup) == 0 {
		errs = append(errs, "lineup must not be empty")
	}
	if len(t.Rotation) == 0 {
		errs = append(errs, "rotation must not be empty")
	}
	known := make(map[string]bool, len(t.Players))
	for i, p := range t.Players {
		switch {
		case p.ID == "":
			errs = append(errs, fmt.Sprintf("players[%d].id is required", i))
		case known[p.ID]:
			errs = append(errs, fmt.Sprintf("players[%d]: duplicate id %s", i, p.ID))
		}
		known[p.ID] = true
	}
	for _, id := range append(append([]string(nil), t.Lineup...), t.Rotation...) {
		if !known[id] {
			errs = append(errs, fmt.Sprintf("player %s is not on the roster", id))
		}
	}
	for i, e := range t.Events {
		if e.EndSeason != nil && *e.EndSeason < e.StartSeason {
			errs = append(errs, fmt.Sprintf("events[%d] (%s): end_season before start_season", i, e.Event))
		}
	}
	if err := ValidateRaw(t.RawConfig); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("team %s: %w: %s", t.TeamID, ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}

// ValidateSchedule checks game ids are unique and no team plays itself.
func ValidateSchedule(s Schedule) error {
	var errs []string
	ids := make(map[string]bool)
	for _, d := range s.Days {
		if d.Day < 0 {
			errs = append(errs, fmt.Sprintf("day %d must be >= 0", d.Day))
		}
		for _, g := range d.Games {
			switch {
			case g.ID == "":
				errs = append(errs, fmt.Sprintf("day %d: game id is required", d.Day))
			case ids[g.ID]:
				errs = append(errs, fmt.Sprintf("day %d: duplicate game id %s", d.Day, g.ID))
			}
			ids[g.ID] = true
			if g.Home == "" || g.Away == "" || g.Home == g.Away {
				errs = append(errs, fmt.Sprintf("game %s: needs two distinct teams", g.ID))
			}
			if !g.Weather.Valid() {
				errs = append(errs, fmt.Sprintf("game %s: unknown weather %d", g.ID, int(g.Weather)))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("schedule %d: %w: %s", s.Season, ErrInvalid, strings.Join(errs, "; "))
	}
	return nil
}
