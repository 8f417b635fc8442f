package roster

import (
	"maps"

	"github.com/xtding233/diamond-sim/internal/rules"
)

// UpdateStat adds delta to a statistic for id, which is a player id,
// TeamKey or DefenseKey. With a segment size set the delta is also
// recorded in the bucket that holds day.
func (s *Side) UpdateStat(id string, stat rules.Stat, delta float64, day int) {
	addStat(s.stats, id, stat, delta)
	if s.cfg.SegmentSize > 0 {
		seg := day - day%s.cfg.SegmentSize
		bucket, ok := s.segments[seg]
		if !ok {
			bucket = make(map[string]map[rules.Stat]float64)
			s.segments[seg] = bucket
		}
		addStat(bucket, id, stat, delta)
	}
}

func addStat(m map[string]map[rules.Stat]float64, id string, stat rules.Stat, delta float64) {
	ps, ok := m[id]
	if !ok {
		ps = make(map[rules.Stat]float64)
		m[id] = ps
	}
	ps[stat] += delta
}

// Stat returns the accumulated value and whether it was ever recorded.
func (s *Side) Stat(id string, stat rules.Stat) (float64, bool) {
	v, ok := s.stats[id][stat]
	return v, ok
}

// Stats returns a deep copy of every accumulated statistic.
func (s *Side) Stats() map[string]map[rules.Stat]float64 {
	return cloneStats(s.stats)
}

// SegmentedStats returns a deep copy of the per-segment statistics keyed by
// the first day of each segment.
func (s *Side) SegmentedStats() map[int]map[string]map[rules.Stat]float64 {
	out := make(map[int]map[string]map[rules.Stat]float64, len(s.segments))
	for seg, bucket := range s.segments {
		out[seg] = cloneStats(bucket)
	}
	return out
}

func cloneStats(in map[string]map[rules.Stat]float64) map[string]map[rules.Stat]float64 {
	out := make(map[string]map[rules.Stat]float64, len(in))
	for id, ps := range in {
		out[id] = maps.Clone(ps)
	}
	return out
}
