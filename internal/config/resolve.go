package config

import (
	"fmt"

	"github.com/xtding233/diamond-sim/internal/roster"
	"github.com/xtding233/diamond-sim/internal/stadium"
)

const defaultTrials = 1

// Overrides carry request-level settings applied above the team layer.
type Overrides struct {
	Rules        RawRules
	Trials       *int
	EnforceBlood *bool
}

type Resolver interface {
	// Returns merged RawConfig and normalized Params
	Resolve(season int, teamID string, o Overrides) (RawConfig, Params, error)
}

var _ Resolver = (*Loader)(nil)

// Resolve merges default → season → team → overrides into Params.
func (l *Loader) Resolve(season int, teamID string, o Overrides) (RawConfig, Params, error) {
	raw, err := l.LoadMerged(season, teamID)
	if err != nil {
		return RawConfig{}, Params{}, err
	}
	raw = mergeRaw(raw, RawConfig{Rules: o.Rules, Trials: o.Trials, EnforceBlood: o.EnforceBlood})
	p, err := Normalize(raw)
	if err != nil {
		return raw, Params{}, fmt.Errorf("season %d team %s: %w", season, teamID, err)
	}
	return raw, p, nil
}

// Normalize validates raw and fills unset fields with defaults.
func Normalize(raw RawConfig) (Params, error) {
	if err := ValidateRaw(raw); err != nil {
		return Params{}, err
	}
	r := roster.DefaultRules()
	setInt(&r.NumBases, raw.Rules.NumBases)
	setInt(&r.BallsForWalk, raw.Rules.BallsForWalk)
	setInt(&r.StrikesForOut, raw.Rules.StrikesForOut)
	setInt(&r.OutsForInning, raw.Rules.OutsForInning)

	p := Params{Rules: r, Trials: defaultTrials, Version: raw.Version}
	setInt(&p.Trials, raw.Trials)
	setInt(&p.SegmentSize, raw.SegmentSize)
	if raw.EnforceBlood != nil {
		p.EnforceBlood = *raw.EnforceBlood
	}
	return p, nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// SideConfig builds the roster configuration of teamID for one game.
// An empty pitcher starts the head of the rotation.
func (l *Loader) SideConfig(season, day int, teamID, pitcher string, o Overrides) (roster.Config, Params, error) {
	team, err := l.Team(teamID)
	if err != nil {
		return roster.Config{}, Params{}, err
	}
	_, p, err := l.Resolve(season, teamID, o)
	if err != nil {
		return roster.Config{}, Params{}, err
	}
	players := make(map[string]roster.Player, len(team.Players))
	for _, pl := range team.Players {
		players[pl.ID] = pl
	}
	return roster.Config{
		TeamID:          team.TeamID,
		Name:            team.Name,
		Season:          season,
		Day:             day,
		Rules:           p.Rules,
		Lineup:          team.Lineup,
		Rotation:        team.Rotation,
		StartingPitcher: pitcher,
		Players:         players,
		Events:          team.Events,
		Boosts:          team.Boosts,
		SegmentSize:     p.SegmentSize,
	}, p, nil
}

// Stadium returns the home ballpark of teamID, or a neutral one.
func (l *Loader) Stadium(teamID string) stadium.Stadium {
	team, err := l.Team(teamID)
	if err != nil || team.Stadium == nil {
		return stadium.Default(teamID)
	}
	s := team.Stadium.Clone()
	if s.TeamID == "" {
		s.TeamID = teamID
	}
	return s
}
