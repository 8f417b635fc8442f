// Package game runs a single contest pitch by pitch. A State is owned by
// one goroutine; it borrows its stadium, both roster sides and the
// predictor, and records what happens in an append-only event log.
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

// Config identifies a scheduled game.
type Config struct {
	ID      string
	Season  int
	Day     int
	Weather rules.Weather
	// EnforceBlood makes event grants with a blood type apply only to
	// players of that blood. Off, every blood check passes.
	EnforceBlood bool
}

// Deps are the collaborators a State borrows.
type Deps struct {
	Stadium   stadium.Stadium
	Home      *roster.Side
	Away      *roster.Side
	Predictor predictor.Predictor
	RNG       chance.RandomSource
}

type State struct {
	id           string
	season       int
	day          int
	weather      rules.Weather
	enforceBlood bool

	stadium stadium.Stadium
	home    *roster.Side
	away    *roster.Side
	pred    predictor.Predictor
	rng     chance.RandomSource

	batting  *roster.Side
	pitching *roster.Side

	homeScore decimal.Decimal
	awayScore decimal.Decimal

	inning  int
	half    Half
	outs    int
	strikes int
	balls   int

	numBases      int
	ballsForWalk  int
	strikesForOut int
	outsForInning int

	bases Bases
	over  bool
	log   []string

	tripleThreatChecked bool
}

// Result is the outcome of one completed trial.
type Result struct {
	GameID    string          `json:"game_id"`
	HomeScore decimal.Decimal `json:"home_score"`
	AwayScore decimal.Decimal `json:"away_score"`
	Innings   int             `json:"innings"`
	Log       []string        `json:"log,omitempty"`
}

// HomeWon reports the winner the way final statistics are credited.
func (r Result) HomeWon() bool { return r.HomeScore.GreaterThan(r.AwayScore) }

// New builds a game at the first pitch: score 0-0 (or 1-0 under home field
// advantage), top of the first, empty bases.
func New(cfg Config, d Deps) (*State, error) {
	s, err := newState(cfg, d)
	if err != nil {
		return nil, err
	}
	s.home.SetGameContext(cfg.Season, cfg.Day, cfg.Weather, true)
	s.away.SetGameContext(cfg.Season, cfg.Day, cfg.Weather, false)
	s.start()
	return s, nil
}

func newState(cfg Config, d Deps) (*State, error) {
	if d.Home == nil || d.Away == nil {
		return nil, fmt.Errorf("game %s: %w: both sides are required", cfg.ID, ErrIncompleteRoster)
	}
	if d.Home == d.Away {
		return nil, fmt.Errorf("game %s: home and away share one side", cfg.ID)
	}
	if d.Predictor == nil {
		return nil, fmt.Errorf("game %s: predictor is required", cfg.ID)
	}
	if !cfg.Weather.Valid() {
		return nil, fmt.Errorf("game %s: unknown weather %d", cfg.ID, int(cfg.Weather))
	}
	for _, side := range []*roster.Side{d.Home, d.Away} {
		if n := side.Rules().NumBases; n > MaxBases {
			return nil, fmt.Errorf("game %s: team %s plays %d bases, max %d", cfg.ID, side.TeamID(), n, MaxBases)
		}
	}
	rng := d.RNG
	if rng == nil {
		rng = chance.DefaultRNG()
	}
	return &State{
		id:           cfg.ID,
		season:       cfg.Season,
		day:          cfg.Day,
		weather:      cfg.Weather,
		enforceBlood: cfg.EnforceBlood,
		stadium:      d.Stadium,
		home:         d.Home,
		away:         d.Away,
		pred:         d.Predictor,
		rng:          rng,
	}, nil
}

// start puts the state at the first pitch. Sides must already be reset.
func (s *State) start() {
	s.inning = 1
	s.half = Top
	s.resetInningCounts()
	s.homeScore = decimal.Zero
	s.awayScore = decimal.Zero
	if _, ok := s.home.Event(rules.EventHomeFieldAdvantage, s.season); ok {
		s.homeScore = decimal.NewFromInt(1)
	}
	s.over = false
	s.tripleThreatChecked = false
	s.log = []string{"Play ball."}
	if s.weather == rules.WeatherCoffee3 {
		s.home.SetMod(s.home.StartingPitcher(), rules.ModTripleThreat, 1)
		s.away.SetMod(s.away.StartingPitcher(), rules.ModTripleThreat, 1)
		s.logf("%s and %s are now triple threats.", s.away.PitcherName(), s.home.PitcherName())
	}
	s.refresh()
}

// Reset restores the first-pitch state in place for another trial. Side
// statistics keep accumulating.
func (s *State) Reset() {
	s.home.Reset(false)
	s.away.Reset(false)
	s.home.SetGameContext(s.season, s.day, s.weather, true)
	s.away.SetGameContext(s.season, s.day, s.weather, false)
	s.start()
}

// refresh points the batting and pitching aliases at the sides for the
// current half and loads the batting side's ceilings.
func (s *State) refresh() {
	s.alias()
	if s.half == Top {
		s.logf("\nTop of the %d, %s batting.", s.inning, s.batting.Name())
	} else {
		s.logf("\nBottom of the %d, %s batting.", s.inning, s.batting.Name())
	}
	s.logf("%s at bat. %s pitching.", s.batting.CurrentBatterName(), s.pitching.PitcherName())
	s.bases = NewBases(s.numBases)
}

func (s *State) alias() {
	if s.half == Top {
		s.batting, s.pitching = s.away, s.home
	} else {
		s.batting, s.pitching = s.home, s.away
	}
	r := s.batting.Rules()
	s.numBases = r.NumBases
	s.ballsForWalk = r.BallsForWalk
	s.strikesForOut = r.StrikesForOut
	s.outsForInning = r.OutsForInning
}

func (s *State) resetCount() {
	s.balls = 0
	s.strikes = 0
}

func (s *State) resetInningCounts() {
	s.resetCount()
	s.outs = 0
}

func (s *State) ID() string             { return s.id }
func (s *State) Season() int            { return s.season }
func (s *State) Day() int               { return s.day }
func (s *State) Weather() rules.Weather { return s.weather }
func (s *State) Inning() int            { return s.inning }
func (s *State) Half() Half             { return s.half }
func (s *State) Over() bool             { return s.over }
func (s *State) NumBases() int          { return s.numBases }

// Count returns balls, strikes and outs.
func (s *State) Count() (balls, strikes, outs int) { return s.balls, s.strikes, s.outs }

// Score returns the home and away scores.
func (s *State) Score() (home, away decimal.Decimal) { return s.homeScore, s.awayScore }

// Runners maps occupied bases to runner ids.
func (s *State) Runners() map[int]string { return s.bases.Map() }

// Log returns a copy of the event log.
func (s *State) Log() []string { return slices.Clone(s.log) }

func (s *State) BattingSide() *roster.Side  { return s.batting }
func (s *State) PitchingSide() *roster.Side { return s.pitching }

func (s *State) logf(format string, args ...any) {
	s.log = append(s.log, fmt.Sprintf(format, args...))
}

func (s *State) logScore() {
	s.logf("%s: %s  %s: %s.", s.away.Name(), s.awayScore.String(), s.home.Name(), s.homeScore.String())
}

func (s *State) logRunners() {
	for _, base := range slices.Backward(s.bases.Descending()) {
		id, _ := s.bases.Runner(base)
		s.logf("%s is on base %d.", s.batting.PlayerName(id), base)
	}
}

func (s *State) battingScore() decimal.Decimal {
	if s.batting == s.home {
		return s.homeScore
	}
	return s.awayScore
}

func (s *State) pitchingScore() decimal.Decimal {
	if s.pitching == s.home {
		return s.homeScore
	}
	return s.awayScore
}

// addRuns credits the batting side. Sun 2 and the Black Hole take ten runs
// off any side that reaches ten.
func (s *State) addRuns(amt decimal.Decimal) {
	score := &s.awayScore
	if s.batting == s.home {
		score = &s.homeScore
	}
	*score = score.Add(amt)
	ten := decimal.NewFromInt(winThreshold)
	if score.LessThan(ten) {
		return
	}
	switch s.weather {
	case rules.WeatherSun2:
		s.logf("Sun 2 sets a win upon the %s.", s.batting.Name())
		s.batting.UpdateStat(roster.TeamKey, rules.StatTeamSun2Wins, 1, s.day)
		*score = score.Sub(ten)
	case rules.WeatherBlackHole:
		s.logf("The Black Hole swallows a win from the %s.", s.pitching.Name())
		s.pitching.UpdateStat(roster.TeamKey, rules.StatTeamBlackHoleConsumption, 1, s.day)
		*score = score.Sub(ten)
	}
}

// trigger rolls once against one of the fixed event chances. A chance
// outside 0..1 panics.
func (s *State) trigger(p float64) bool {
	hit, err := chance.Draw(p, s.rng)
	if err != nil {
		panic(fmt.Sprintf("game %s: event chance %v: %v", s.id, p, err))
	}
	return hit
}

// draw asks the predictor for m's distribution and rolls once against it.
func (s *State) draw(m predictor.Model, fv []float64) (int, error) {
	probs, err := s.pred.PredictProba(m, fv)
	if err != nil {
		return 0, fmt.Errorf("game %s: %w", s.id, err)
	}
	i, err := chance.Categorical(probs, s.rng)
	if err != nil {
		return 0, fmt.Errorf("game %s: %s: %w", s.id, m, err)
	}
	return i, nil
}

func (s *State) pitchFeatures() []float64 {
	fv := s.batting.CurrentBatterFeatures()
	fv = append(fv, s.pitching.PitcherFeatures()...)
	fv = append(fv, s.pitching.DefenseFeatures()...)
	return append(fv, s.stadium.FeatureVector()...)
}

func (s *State) runnerFeatures(id string) []float64 {
	fv := s.batting.RunnerFeatures(id)
	fv = append(fv, s.pitching.DefenseFeatures()...)
	fv = append(fv, s.pitching.PitcherFeatures()...)
	return append(fv, s.stadium.FeatureVector()...)
}

// grant returns side's active grant of e when the acting player passes its
// blood requirement.
func (s *State) grant(side *roster.Side, e rules.TeamEvent, playerID string) (rules.EventGrant, bool) {
	g, ok := side.Event(e, s.season)
	if !ok {
		return g, false
	}
	if s.enforceBlood && g.Blood != rules.BloodUnknown && side.Blood(playerID) != g.Blood {
		return g, false
	}
	return g, true
}

func (s *State) startOfAtBat() bool { return s.balls == 0 && s.strikes == 0 }
