// Package roster tracks one team's side of a game: lineup and rotation,
// per-player modifier counters, statistics and the multiplicative
// additives baked into the feature vectors handed to predictors.
//
// A Side is owned by exactly one running game at a time.
package roster

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/xtding233/diamond-sim/internal/rules"
)

// Stat keys that are not player ids.
const (
	TeamKey    = "__team__"
	DefenseKey = "__defense__"
)

var ErrIncompleteRoster = errors.New("incomplete roster")

// Rules are the count ceilings a side brings to the plate.
type Rules struct {
	NumBases      int `json:"num_bases" yaml:"num_bases"`
	BallsForWalk  int `json:"balls_for_walk" yaml:"balls_for_walk"`
	StrikesForOut int `json:"strikes_for_out" yaml:"strikes_for_out"`
	OutsForInning int `json:"outs_for_inning" yaml:"outs_for_inning"`
}

func DefaultRules() Rules {
	return Rules{NumBases: 4, BallsForWalk: 4, StrikesForOut: 3, OutsForInning: 3}
}

type Player struct {
	ID     string                 `json:"id" yaml:"id"`
	Name   string                 `json:"name" yaml:"name"`
	Blood  rules.BloodType        `json:"blood,omitempty" yaml:"blood,omitempty"`
	Stlats Stlats                 `json:"stlats" yaml:"stlats"`
	Mods   map[rules.Modifier]int `json:"mods,omitempty" yaml:"mods,omitempty"`
}

// TeamBoost multiplies every player's additives while active. A zero
// multiplier is treated as 1.
type TeamBoost struct {
	Name        string         `json:"name" yaml:"name"`
	StartSeason int            `json:"start_season" yaml:"start_season"`
	EndSeason   *int           `json:"end_season,omitempty" yaml:"end_season,omitempty"`
	Weather     *rules.Weather `json:"weather,omitempty" yaml:"weather,omitempty"`
	AwayOnly    bool           `json:"away_only,omitempty" yaml:"away_only,omitempty"`
	Batting     float64        `json:"batting,omitempty" yaml:"batting,omitempty"`
	Pitching    float64        `json:"pitching,omitempty" yaml:"pitching,omitempty"`
	Defense     float64        `json:"defense,omitempty" yaml:"defense,omitempty"`
	Running     float64        `json:"running,omitempty" yaml:"running,omitempty"`
}

// Config describes a side before its first game.
type Config struct {
	TeamID          string             `json:"team_id" yaml:"team_id"`
	Name            string             `json:"name" yaml:"name"`
	Season          int                `json:"season" yaml:"season"`
	Day             int                `json:"day" yaml:"day"`
	Home            bool               `json:"home" yaml:"home"`
	Weather         rules.Weather      `json:"weather" yaml:"weather"`
	Rules           Rules              `json:"rules" yaml:"rules"`
	Lineup          []string           `json:"lineup" yaml:"lineup"`
	Rotation        []string           `json:"rotation" yaml:"rotation"`
	StartingPitcher string             `json:"starting_pitcher" yaml:"starting_pitcher"`
	Players         map[string]Player  `json:"players" yaml:"players"`
	Events          []rules.EventGrant `json:"events,omitempty" yaml:"events,omitempty"`
	Boosts          []TeamBoost        `json:"boosts,omitempty" yaml:"boosts,omitempty"`
	SegmentSize     int                `json:"segment_size,omitempty" yaml:"segment_size,omitempty"`
}

type Side struct {
	cfg Config

	batterPos int
	mods      map[string]map[rules.Modifier]int
	stats     map[string]map[rules.Stat]float64
	segments  map[int]map[string]map[rules.Stat]float64

	team      Additives
	additives map[string]Additives
}

// New validates cfg and builds a side positioned at the top of its lineup.
func New(cfg Config) (*Side, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	s := &Side{
		cfg:      cfg,
		stats:    make(map[string]map[rules.Stat]float64),
		segments: make(map[int]map[string]map[rules.Stat]float64),
	}
	s.restoreMods()
	s.recalcAdditives()
	return s, nil
}

func (c *Config) check() error {
	if c.TeamID == "" {
		return fmt.Errorf("%w: missing team id", ErrIncompleteRoster)
	}
	if len(c.Lineup) == 0 {
		return fmt.Errorf("%w: team %s has no lineup", ErrIncompleteRoster, c.TeamID)
	}
	if len(c.Rotation) == 0 {
		return fmt.Errorf("%w: team %s has no rotation", ErrIncompleteRoster, c.TeamID)
	}
	if c.StartingPitcher == "" {
		c.StartingPitcher = c.Rotation[0]
	}
	ids := append(slices.Clone(c.Lineup), c.Rotation...)
	ids = append(ids, c.StartingPitcher)
	for _, id := range ids {
		if _, ok := c.Players[id]; !ok {
			return fmt.Errorf("%w: team %s missing player %s", ErrIncompleteRoster, c.TeamID, id)
		}
	}
	if c.Rules == (Rules{}) {
		c.Rules = DefaultRules()
	}
	r := c.Rules
	if r.NumBases < 4 || r.BallsForWalk < 1 || r.StrikesForOut < 1 || r.OutsForInning < 1 {
		return fmt.Errorf("team %s: invalid rules %+v", c.TeamID, r)
	}
	return nil
}

// SetGameContext aligns the side with the game it is about to play and
// recalculates additives.
func (s *Side) SetGameContext(season, day int, weather rules.Weather, home bool) {
	s.cfg.Season = season
	s.cfg.Day = day
	s.cfg.Weather = weather
	s.cfg.Home = home
	s.recalcAdditives()
}

func (s *Side) TeamID() string         { return s.cfg.TeamID }
func (s *Side) Name() string           { return s.cfg.Name }
func (s *Side) Home() bool             { return s.cfg.Home }
func (s *Side) Season() int            { return s.cfg.Season }
func (s *Side) Weather() rules.Weather { return s.cfg.Weather }
func (s *Side) Rules() Rules           { return s.cfg.Rules }
func (s *Side) Lineup() []string       { return slices.Clone(s.cfg.Lineup) }

func (s *Side) CurrentBatter() string     { return s.cfg.Lineup[s.batterPos] }
func (s *Side) CurrentBatterName() string { return s.PlayerName(s.CurrentBatter()) }
func (s *Side) StartingPitcher() string   { return s.cfg.StartingPitcher }
func (s *Side) PitcherName() string       { return s.PlayerName(s.cfg.StartingPitcher) }

// BatterPos is the zero-based lineup slot of the current batter.
func (s *Side) BatterPos() int { return s.batterPos }

// NextBatter advances to the next lineup slot, wrapping at the end.
func (s *Side) NextBatter() {
	s.batterPos = (s.batterPos + 1) % len(s.cfg.Lineup)
}

func (s *Side) PlayerName(id string) string {
	if p, ok := s.cfg.Players[id]; ok && p.Name != "" {
		return p.Name
	}
	return id
}

func (s *Side) Blood(id string) rules.BloodType {
	return s.cfg.Players[id].Blood
}

// Event returns the grant of e active in season, if any.
func (s *Side) Event(e rules.TeamEvent, season int) (rules.EventGrant, bool) {
	for _, g := range s.cfg.Events {
		if g.Event == e && g.ActiveIn(season) {
			return g, true
		}
	}
	return rules.EventGrant{}, false
}

// HasEvent reports whether the side carries e in any season.
func (s *Side) HasEvent(e rules.TeamEvent) bool {
	return slices.ContainsFunc(s.cfg.Events, func(g rules.EventGrant) bool { return g.Event == e })
}

// Reset puts modifiers and the lineup back to their pre-game values.
// Statistics survive unless clearStats is set so repeated trials can be
// averaged.
func (s *Side) Reset(clearStats bool) {
	s.batterPos = 0
	s.restoreMods()
	if clearStats {
		s.stats = make(map[string]map[rules.Stat]float64)
		s.segments = make(map[int]map[string]map[rules.Stat]float64)
	}
	s.recalcAdditives()
}

func (s *Side) restoreMods() {
	s.mods = make(map[string]map[rules.Modifier]int, len(s.cfg.Players))
	for id, p := range s.cfg.Players {
		m := make(map[rules.Modifier]int, len(p.Mods))
		maps.Copy(m, p.Mods)
		s.mods[id] = m
	}
}
