package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a required team or schedule file is missing.
var ErrNotFound = errors.New("config file not found")

// Paths locates files under the data directory.
type Paths struct {
	BaseDir string // e.g. /opt/diamond/data
}

func (p Paths) DefaultPath() string { return filepath.Join(p.BaseDir, "defaults.yaml") }
func (p Paths) ModelsPath() string  { return filepath.Join(p.BaseDir, "models.yaml") }

func (p Paths) SeasonPath(season int) string {
	return filepath.Join(p.BaseDir, "seasons", strconv.Itoa(season)+".yaml")
}

func (p Paths) TeamPath(teamID string) string {
	return filepath.Join(p.BaseDir, "teams", teamID+".yaml")
}

func (p Paths) SchedulePath(season int) string {
	return filepath.Join(p.BaseDir, "schedules", strconv.Itoa(season)+".yaml")
}

// Loader reads YAML files and merges default → season → team.
type Loader struct {
	paths Paths

	mu        sync.RWMutex
	merged    map[string]RawConfig // key: "$default", "s<n>" or "s<n>/<team>"
	teams     map[string]TeamFile
	schedules map[int]Schedule
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	l := &Loader{paths: Paths{BaseDir: baseDir}}
	l.Invalidate()
	return l
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default → season → team rule layers.
// Season and team files are optional; an empty teamID stops at the season.
func (l *Loader) LoadMerged(season int, teamID string) (RawConfig, error) {
	key := "s" + strconv.Itoa(season)
	if teamID != "" {
		key += "/" + teamID
	}
	l.mu.RLock()
	if cfg, ok := l.merged[key]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	var defCfg, seasonCfg RawConfig
	if err := readYAML(l.paths.DefaultPath(), &defCfg); err != nil && !errors.Is(err, ErrNotFound) {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	if err := readYAML(l.paths.SeasonPath(season), &seasonCfg); err != nil && !errors.Is(err, ErrNotFound) {
		return RawConfig{}, fmt.Errorf("read season %d: %w", season, err)
	}
	merged := mergeRaw(defCfg, seasonCfg)
	if teamID != "" {
		team, err := l.Team(teamID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return RawConfig{}, err
		}
		merged = mergeRaw(merged, team.RawConfig)
	}

	l.mu.Lock()
	l.merged["$default"] = defCfg
	l.merged["s"+strconv.Itoa(season)] = mergeRaw(defCfg, seasonCfg)
	l.merged[key] = merged
	l.mu.Unlock()
	return merged, nil
}

// Team reads teams/<id>.yaml.
func (l *Loader) Team(teamID string) (TeamFile, error) {
	l.mu.RLock()
	if t, ok := l.teams[teamID]; ok {
		l.mu.RUnlock()
		return t, nil
	}
	l.mu.RUnlock()

	var t TeamFile
	if err := readYAML(l.paths.TeamPath(teamID), &t); err != nil {
		return TeamFile{}, fmt.Errorf("team %s: %w", teamID, err)
	}
	if t.TeamID == "" {
		t.TeamID = teamID
	}
	if err := ValidateTeam(t); err != nil {
		return TeamFile{}, err
	}
	l.mu.Lock()
	l.teams[teamID] = t
	l.mu.Unlock()
	return t, nil
}

// Schedule reads schedules/<season>.yaml.
func (l *Loader) Schedule(season int) (Schedule, error) {
	l.mu.RLock()
	if s, ok := l.schedules[season]; ok {
		l.mu.RUnlock()
		return s, nil
	}
	l.mu.RUnlock()

	var s Schedule
	if err := readYAML(l.paths.SchedulePath(season), &s); err != nil {
		return Schedule{}, fmt.Errorf("schedule %d: %w", season, err)
	}
	if s.Season == 0 {
		s.Season = season
	}
	if err := ValidateSchedule(s); err != nil {
		return Schedule{}, err
	}
	l.mu.Lock()
	l.schedules[season] = s
	l.mu.Unlock()
	return s, nil
}

// Files lists every YAML file under the data directory, for watching.
func (l *Loader) Files() ([]string, error) {
	var out []string
	err := filepath.WalkDir(l.paths.BaseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && (strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml")) {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}

// Invalidate clears the loader's caches. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.merged = make(map[string]RawConfig)
	l.teams = make(map[string]TeamFile)
	l.schedules = make(map[int]Schedule)
}

// readYAML decodes path into out. A missing file reports ErrNotFound.
func readYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return err
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// mergeRaw performs a deep merge: b overrides a where set.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	out.Trials = pick(out.Trials, b.Trials)
	out.SegmentSize = pick(out.SegmentSize, b.SegmentSize)
	out.EnforceBlood = pick(out.EnforceBlood, b.EnforceBlood)

	out.Rules.NumBases = pick(out.Rules.NumBases, b.Rules.NumBases)
	out.Rules.BallsForWalk = pick(out.Rules.BallsForWalk, b.Rules.BallsForWalk)
	out.Rules.StrikesForOut = pick(out.Rules.StrikesForOut, b.Rules.StrikesForOut)
	out.Rules.OutsForInning = pick(out.Rules.OutsForInning, b.Rules.OutsForInning)
	return out
}

func pick[T any](a, b *T) *T {
	if b != nil {
		v := *b
		return &v
	}
	return a
}
