// Package config loads simulation settings: process settings from the
// environment and league data from a directory of YAML files.
package config

import (
	"github.com/xtding233/diamond-sim/internal/roster"
	"github.com/xtding233/diamond-sim/internal/rules"
	"github.com/xtding233/diamond-sim/internal/stadium"
)

// RawConfig is one YAML layer. Nil fields inherit from the layer below.
type RawConfig struct {
	Version      string   `yaml:"version"`
	Rules        RawRules `yaml:"rules"`
	Trials       *int     `yaml:"trials,omitempty"`
	SegmentSize  *int     `yaml:"segment_size,omitempty"`
	EnforceBlood *bool    `yaml:"enforce_blood,omitempty"`
	Notes        string   `yaml:"notes,omitempty"`
}

type RawRules struct {
	NumBases      *int `yaml:"num_bases,omitempty" json:"num_bases,omitempty"`
	BallsForWalk  *int `yaml:"balls_for_walk,omitempty" json:"balls_for_walk,omitempty"`
	StrikesForOut *int `yaml:"strikes_for_out,omitempty" json:"strikes_for_out,omitempty"`
	OutsForInning *int `yaml:"outs_for_inning,omitempty" json:"outs_for_inning,omitempty"`
}

// TeamFile is teams/<id>.yaml. Its rules block is the top merge layer.
type TeamFile struct {
	RawConfig `yaml:",inline"`

	TeamID   string             `yaml:"team_id"`
	Name     string             `yaml:"name"`
	Lineup   []string           `yaml:"lineup"`
	Rotation []string           `yaml:"rotation"`
	Players  []roster.Player    `yaml:"players"`
	Events   []rules.EventGrant `yaml:"events,omitempty"`
	Boosts   []roster.TeamBoost `yaml:"boosts,omitempty"`
	Stadium  *stadium.Stadium   `yaml:"stadium,omitempty"`
}

// Schedule is schedules/<season>.yaml.
type Schedule struct {
	Season int           `yaml:"season"`
	Days   []ScheduleDay `yaml:"days"`
}

type ScheduleDay struct {
	Day   int             `yaml:"day"`
	Games []ScheduledGame `yaml:"games"`
}

type ScheduledGame struct {
	ID          string        `yaml:"id"`
	Home        string        `yaml:"home"`
	Away        string        `yaml:"away"`
	Weather     rules.Weather `yaml:"weather"`
	HomePitcher string        `yaml:"home_pitcher,omitempty"`
	AwayPitcher string        `yaml:"away_pitcher,omitempty"`
}

// Params are the normalized settings for one team in one season.
type Params struct {
	Rules        roster.Rules
	Trials       int
	SegmentSize  int
	EnforceBlood bool
	Version      string // effective config version for tracing
}
