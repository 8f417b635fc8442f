package game

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/xtding233/diamond-sim/internal/chance"
	"github.com/xtding233/diamond-sim/internal/predictor"
	"github.com/xtding233/diamond-sim/internal/roster"
	"github.com/xtding233/diamond-sim/internal/rules"
	"github.com/xtding233/diamond-sim/internal/stadium"
)

// Snapshot is the persisted form of a State. Half and Weather are stored as
// numbers and scores as decimal strings.
type Snapshot struct {
	GameID              string          `json:"game_id"`
	Season              int             `json:"season"`
	Day                 int             `json:"day"`
	Stadium             stadium.Stadium `json:"stadium"`
	NumBases            int             `json:"num_bases"`
	Inning              int             `json:"inning"`
	Half                int             `json:"half"`
	Outs                int             `json:"outs"`
	Strikes             int             `json:"strikes"`
	Balls               int             `json:"balls"`
	Weather             int             `json:"weather"`
	HomeScore           string          `json:"home_score"`
	AwayScore           string          `json:"away_score"`
	Bases               map[int]string  `json:"cur_base_runners"`
	Home                roster.Snapshot `json:"home_team"`
	Away                roster.Snapshot `json:"away_team"`
	EnforceBlood        bool            `json:"enforce_blood,omitempty"`
	GameOver            bool            `json:"game_over,omitempty"`
	TripleThreatChecked bool            `json:"triple_threat_checked,omitempty"`
}

func (s *State) Snapshot() Snapshot {
	return Snapshot{
		GameID:              s.id,
		Season:              s.season,
		Day:                 s.day,
		Stadium:             s.stadium.Clone(),
		NumBases:            s.numBases,
		Inning:              s.inning,
		Half:                int(s.half),
		Outs:                s.outs,
		Strikes:             s.strikes,
		Balls:               s.balls,
		Weather:             int(s.weather),
		HomeScore:           s.homeScore.String(),
		AwayScore:           s.awayScore.String(),
		Bases:               s.bases.Map(),
		Home:                s.home.Snapshot(),
		Away:                s.away.Snapshot(),
		EnforceBlood:        s.enforceBlood,
		GameOver:            s.over,
		TripleThreatChecked: s.tripleThreatChecked,
	}
}

// Restore rebuilds a live State from snap. The sides keep the game context
// they were saved with; the base runners are placed last.
func Restore(snap Snapshot, pred predictor.Predictor, rng chance.RandomSource) (*State, error) {
	bad := func(format string, args ...any) error {
		return fmt.Errorf("restore %s: %w: %s", snap.GameID, ErrInvalidSnapshot, fmt.Sprintf(format, args...))
	}
	home, err := roster.FromSnapshot(snap.Home)
	if err != nil {
		return nil, fmt.Errorf("restore %s: home: %w", snap.GameID, err)
	}
	away, err := roster.FromSnapshot(snap.Away)
	if err != nil {
		return nil, fmt.Errorf("restore %s: away: %w", snap.GameID, err)
	}
	half := Half(snap.Half)
	if half != Top && half != Bottom {
		return nil, bad("half %d", snap.Half)
	}
	if snap.Inning < 1 {
		return nil, bad("inning %d", snap.Inning)
	}
	homeScore, err := decimal.NewFromString(snap.HomeScore)
	if err != nil {
		return nil, bad("home score %q", snap.HomeScore)
	}
	awayScore, err := decimal.NewFromString(snap.AwayScore)
	if err != nil {
		return nil, bad("away score %q", snap.AwayScore)
	}

	s, err := newState(Config{
		ID:           snap.GameID,
		Season:       snap.Season,
		Day:          snap.Day,
		Weather:      rules.Weather(snap.Weather),
		EnforceBlood: snap.EnforceBlood,
	}, Deps{Stadium: snap.Stadium, Home: home, Away: away, Predictor: pred, RNG: rng})
	if err != nil {
		return nil, fmt.Errorf("restore: %w", err)
	}
	s.inning = snap.Inning
	s.half = half
	s.alias()
	if snap.NumBases != s.numBases {
		return nil, bad("%d bases saved, batting side plays %d", snap.NumBases, s.numBases)
	}
	if snap.Outs < 0 || snap.Outs > s.outsForInning ||
		snap.Strikes < 0 || snap.Strikes > s.strikesForOut ||
		snap.Balls < 0 || snap.Balls > s.ballsForWalk {
		return nil, bad("count %d-%d with %d outs", snap.Balls, snap.Strikes, snap.Outs)
	}
	s.outs, s.strikes, s.balls = snap.Outs, snap.Strikes, snap.Balls
	s.homeScore, s.awayScore = homeScore, awayScore
	s.over = snap.GameOver
	s.tripleThreatChecked = snap.TripleThreatChecked

	s.bases = NewBases(s.numBases)
	var seen []string
	for base, id := range snap.Bases {
		if base < 1 || base >= s.numBases || id == "" || slices.Contains(seen, id) {
			return nil, bad("runner %q on base %d", id, base)
		}
		seen = append(seen, id)
		s.bases.Place(base, id)
	}
	return s, nil
}
