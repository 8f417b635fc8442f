package season

import (
	"cmp"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/xtding233/diamond-sim/internal/rules"
	"github.com/xtding233/diamond-sim/internal/service"
)

// LeaderCount is how many players each board lists.
const LeaderCount = 5

// minAtBats per game to qualify for the batting average board.
const minAtBats = 2.0

type Standing struct {
	Team   string `json:"team"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
}

// Standings counts every trial as a game and orders teams by wins.
func Standings(outs []service.Outcome) []Standing {
	byTeam := make(map[string]*Standing)
	get := func(team string) *Standing {
		s, ok := byTeam[team]
		if !ok {
			s = &Standing{Team: team}
			byTeam[team] = s
		}
		return s
	}
	for _, o := range outs {
		home, away := get(o.Home), get(o.Away)
		home.Wins += o.HomeWins
		home.Losses += len(o.Trials) - o.HomeWins
		away.Wins += len(o.Trials) - o.HomeWins
		away.Losses += o.HomeWins
	}
	out := make([]Standing, 0, len(byTeam))
	for _, team := range slices.Sorted(maps.Keys(byTeam)) {
		out = append(out, *byTeam[team])
	}
	slices.SortStableFunc(out, func(a, b Standing) int { return cmp.Compare(b.Wins, a.Wins) })
	return out
}

type Leader struct {
	PlayerID string  `json:"player_id"`
	Name     string  `json:"name"`
	Team     string  `json:"team"`
	Value    float64 `json:"value"`
}

// Leaders are season totals, each game's statistics divided by its trials.
type Leaders struct {
	HomeRuns       []Leader `json:"home_runs"`
	Strikeouts     []Leader `json:"strikeouts"`
	StolenBases    []Leader `json:"stolen_bases"`
	BattingAverage []Leader `json:"batting_average"`
}

type playerKey struct{ team, id string }

func (r *Runner) leaders(outs []service.Outcome) Leaders {
	totals := make(map[playerKey]map[rules.Stat]float64)
	games := make(map[playerKey]int)
	add := func(team string, stats map[string]map[rules.Stat]float64, trials int) {
		for id, st := range stats {
			if strings.HasPrefix(id, "__") {
				continue
			}
			k := playerKey{team, id}
			if totals[k] == nil {
				totals[k] = make(map[rules.Stat]float64)
			}
			for stat, v := range st {
				totals[k][stat] += v / float64(trials)
			}
			games[k]++
		}
	}
	for _, o := range outs {
		if len(o.Trials) == 0 {
			continue
		}
		add(o.Home, o.HomeStats, len(o.Trials))
		add(o.Away, o.AwayStats, len(o.Trials))
	}

	board := func(value func(k playerKey, st map[rules.Stat]float64) (float64, bool)) []Leader {
		var out []Leader
		for k, st := range totals {
			v, ok := value(k, st)
			if !ok || v <= 0 {
				continue
			}
			out = append(out, Leader{PlayerID: k.id, Name: r.playerName(k.team, k.id), Team: k.team, Value: v})
		}
		slices.SortFunc(out, func(a, b Leader) int {
			if c := cmp.Compare(b.Value, a.Value); c != 0 {
				return c
			}
			return cmp.Compare(a.PlayerID, b.PlayerID)
		})
		if len(out) > LeaderCount {
			out = out[:LeaderCount]
		}
		return out
	}
	stat := func(s rules.Stat) func(playerKey, map[rules.Stat]float64) (float64, bool) {
		return func(_ playerKey, st map[rules.Stat]float64) (float64, bool) { return st[s], true }
	}

	return Leaders{
		HomeRuns:    board(stat(rules.StatBatterHRs)),
		Strikeouts:  board(stat(rules.StatPitcherStrikeouts)),
		StolenBases: board(stat(rules.StatStolenBases)),
		BattingAverage: board(func(k playerKey, st map[rules.Stat]float64) (float64, bool) {
			ab := st[rules.StatBatterAtBats]
			if ab < minAtBats*float64(games[k]) {
				return 0, false
			}
			return st[rules.StatBatterHits] / ab, true
		}),
	}
}

func (r *Runner) playerName(team, id string) string {
	t, err := r.svc.Loader().Team(team)
	if err != nil {
		return id
	}
	for _, p := range t.Players {
		if p.ID == id && p.Name != "" {
			return p.Name
		}
	}
	return id
}

// WriteSummary prints standings and leader boards with grouped numbers.
func WriteSummary(w io.Writer, rep Report) error {
	p := message.NewPrinter(language.AmericanEnglish)
	var b strings.Builder
	p.Fprintf(&b, "Season %d: %d games, %d failed, run %s\n", rep.Season, rep.Games, rep.Failed, rep.RunID)

	b.WriteString("\nStandings\n")
	for _, s := range rep.Standings {
		p.Fprintf(&b, "  %-20s %7d %7d\n", s.Team, s.Wins, s.Losses)
	}
	for _, sec := range []struct {
		title  string
		format string
		rows   []Leader
	}{
		{"Home runs", "%9.2f", rep.Leaders.HomeRuns},
		{"Strikeouts", "%9.2f", rep.Leaders.Strikeouts},
		{"Stolen bases", "%9.2f", rep.Leaders.StolenBases},
		{"Batting average", "%9.3f", rep.Leaders.BattingAverage},
	} {
		fmt.Fprintf(&b, "\n%s\n", sec.title)
		for _, l := range sec.rows {
			p.Fprintf(&b, "  %-24s %-12s "+sec.format+"\n", l.Name, l.Team, l.Value)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func randomSeed() uint64 {
	id := uuid.New()
	return xxhash.Sum64(id[:]) | 1
}
