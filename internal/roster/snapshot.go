package roster

import (
	"fmt"
	"maps"

	"github.com/xtding233/diamond-sim/internal/rules"
)

// Snapshot is the persisted form of a Side.
type Snapshot struct {
	Config    Config                                    `json:"config"`
	BatterPos int                                       `json:"batter_pos"`
	Mods      map[string]map[rules.Modifier]int         `json:"mods"`
	Stats     map[string]map[rules.Stat]float64         `json:"stats"`
	Segments  map[int]map[string]map[rules.Stat]float64 `json:"segments,omitempty"`
}

func (s *Side) Snapshot() Snapshot {
	mods := make(map[string]map[rules.Modifier]int, len(s.mods))
	for id, pm := range s.mods {
		mods[id] = maps.Clone(pm)
	}
	return Snapshot{
		Config:    s.cfg,
		BatterPos: s.batterPos,
		Mods:      mods,
		Stats:     s.Stats(),
		Segments:  s.SegmentedStats(),
	}
}

// FromSnapshot rebuilds a Side with its live modifiers, statistics and
// lineup position.
func FromSnapshot(snap Snapshot) (*Side, error) {
	s, err := New(snap.Config)
	if err != nil {
		return nil, err
	}
	if snap.BatterPos < 0 || snap.BatterPos >= len(s.cfg.Lineup) {
		return nil, fmt.Errorf("team %s: batter position %d out of range", s.cfg.TeamID, snap.BatterPos)
	}
	s.batterPos = snap.BatterPos
	if snap.Mods != nil {
		s.mods = make(map[string]map[rules.Modifier]int, len(snap.Mods))
		for id, pm := range snap.Mods {
			s.mods[id] = maps.Clone(pm)
		}
		s.additives = nil
		for id := range s.mods {
			s.recalcPlayer(id)
		}
	}
	if snap.Stats != nil {
		s.stats = cloneStats(snap.Stats)
	}
	for seg, bucket := range snap.Segments {
		s.segments[seg] = cloneStats(bucket)
	}
	return s, nil
}
