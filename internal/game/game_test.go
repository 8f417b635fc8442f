package game

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/xtding233/diamond-sim/internal/chance"
	"github.com/xtding233/diamond-sim/internal/predictor"
	"github.com/xtding233/diamond-sim/internal/roster"
	"github.com/xtding233/diamond-sim/internal/rules"
	"github.com/xtding233/diamond-sim/internal/stadium"
)

// fixedPredictor answers every feature vector with the same distribution.
type fixedPredictor map[predictor.Model][]float64

func (f fixedPredictor) PredictProba(m predictor.Model, _ []float64) ([]float64, error) {
	p, ok := f[m]
	if !ok {
		return nil, fmt.Errorf("%w: %s", predictor.ErrUnknownModel, m)
	}
	return slices.Clone(p), nil
}

func defaultPredictor() fixedPredictor {
	return fixedPredictor{
		predictor.Pitch:              {0.3, 0.15, 0.2, 0.12, 0.15, 0.08},
		predictor.HitType:            {0.6, 0.2, 0.05, 0.15},
		predictor.OutType:            {0.5, 0.5},
		predictor.RunnerAdvanceOnOut: {0.7, 0.3},
		predictor.RunnerAdvanceOnHit: {0.6, 0.4},
		predictor.StealAttempt:       {0.9, 0.1},
		predictor.StealSuccess:       {0.3, 0.7},
	}
}

func (f fixedPredictor) with(m predictor.Model, probs ...float64) fixedPredictor {
	out := maps.Clone(f)
	out[m] = probs
	return out
}

func testSide(t *testing.T, team string, mutate func(*roster.Config)) *roster.Side {
	t.Helper()
	cfg := roster.Config{
		TeamID:  team,
		Name:    strings.ToUpper(team[:1]) + team[1:],
		Players: map[string]roster.Player{},
	}
	for i := 1; i <= 9; i++ {
		id := fmt.Sprintf("%s-b%d", team, i)
		cfg.Lineup = append(cfg.Lineup, id)
		cfg.Players[id] = roster.Player{
			ID:     id,
			Name:   fmt.Sprintf("%s batter %d", team, i),
			Blood:  rules.BloodO,
			Stlats: roster.Stlats{BaseThirst: 0.5, Patheticism: 0.5, Thwackability: 0.5},
		}
	}
	pitcher := team + "-p"
	cfg.Rotation = []string{pitcher}
	cfg.Players[pitcher] = roster.Player{ID: pitcher, Name: team + " pitcher", Stlats: roster.Stlats{Coldness: 0.5}}
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := roster.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

type gameOpts struct {
	weather rules.Weather
	pred    predictor.Predictor
	rng     chance.RandomSource
	stadium stadium.Stadium
	home    func(*roster.Config)
	away    func(*roster.Config)
	blood   bool
}

func newTestGame(t *testing.T, o gameOpts) *State {
	t.Helper()
	if o.pred == nil {
		o.pred = defaultPredictor()
	}
	if o.rng == nil {
		o.rng = chance.NewSeededRNG(1)
	}
	if o.stadium.StadiumID == "" {
		o.stadium = stadium.Default("home")
	}
	s, err := New(
		Config{ID: "g1", Season: 12, Day: 3, Weather: o.weather, EnforceBlood: o.blood},
		Deps{
			Stadium:   o.stadium,
			Home:      testSide(t, "home", o.home),
			Away:      testSide(t, "away", o.away),
			Predictor: o.pred,
			RNG:       o.rng,
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func grant(e rules.TeamEvent) func(*roster.Config) {
	return func(c *roster.Config) {
		c.Events = append(c.Events, rules.EventGrant{Event: e, StartSeason: 1})
	}
}

func stat(t *testing.T, side *roster.Side, id string, st rules.Stat) float64 {
	t.Helper()
	v, _ := side.Stat(id, st)
	return v
}

func TestNewGameInitialState(t *testing.T) {
	s := newTestGame(t, gameOpts{})
	if s.Inning() != 1 || s.Half() != Top || s.Over() {
		t.Fatalf("inning=%d half=%v over=%v", s.Inning(), s.Half(), s.Over())
	}
	if b, st, o := s.Count(); b != 0 || st != 0 || o != 0 {
		t.Fatalf("count=%d-%d, %d outs", b, st, o)
	}
	home, away := s.Score()
	if !home.IsZero() || !away.IsZero() {
		t.Fatalf("score=%s-%s", home, away)
	}
	if s.BattingSide().TeamID() != "away" || s.PitchingSide().TeamID() != "home" {
		t.Fatalf("away side bats first")
	}
	if s.Log()[0] != "Play ball." {
		t.Fatalf("log=%v", s.Log())
	}
}

func TestHomeFieldAdvantage(t *testing.T) {
	s := newTestGame(t, gameOpts{home: grant(rules.EventHomeFieldAdvantage)})
	home, _ := s.Score()
	if !home.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("home=%s", home)
	}
}

func TestNewRejectsMissingSide(t *testing.T) {
	_, err := New(Config{ID: "g"}, Deps{Home: testSide(t, "home", nil), Predictor: defaultPredictor()})
	if !errors.Is(err, ErrIncompleteRoster) {
		t.Fatalf("err=%v", err)
	}
}

func TestDrawIsCategorical(t *testing.T) {
	pred := defaultPredictor().with(predictor.StealSuccess, 0.2, 0.3, 0.5)
	s := newTestGame(t, gameOpts{pred: pred, rng: chance.NewScript(0.1, 0.45, 0.99)})
	for _, want := range []int{0, 1, 2} {
		got, err := s.draw(predictor.StealSuccess, nil)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("got %d want %d", got, want)
		}
	}
}

func TestForcedWalkWithBasesLoaded(t *testing.T) {
	s := newTestGame(t, gameOpts{})
	s.bases.Place(1, "away-b7")
	s.bases.Place(2, "away-b8")
	s.bases.Place(3, "away-b9")

	s.resolveWalk(1, false)

	want := map[int]string{1: "away-b1", 2: "away-b7", 3: "away-b8"}
	if got := s.Runners(); !maps.Equal(got, want) {
		t.Fatalf("runners=%v want %v", got, want)
	}
	_, away := s.Score()
	if !away.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("away=%s", away)
	}
	if stat(t, s.batting, "away-b9", rules.StatBatterRunsScored) != 1 {
		t.Fatalf("runner on third should be credited the run")
	}
	if stat(t, s.batting, "away-b1", rules.StatBatterRBIs) != 1 {
		t.Fatalf("batter should be credited the RBI")
	}
	if s.batting.CurrentBatter() != "away-b2" {
		t.Fatalf("next batter=%s", s.batting.CurrentBatter())
	}
}

func TestWalkOnlyPushesForcedRunners(t *testing.T) {
	s := newTestGame(t, gameOpts{})
	s.bases.Place(1, "away-b8")
	s.bases.Place(3, "away-b9")
	s.resolveWalk(1, false)
	want := map[int]string{1: "away-b1", 2: "away-b8", 3: "away-b9"}
	if got := s.Runners(); !maps.Equal(got, want) {
		t.Fatalf("runners=%v want %v", got, want)
	}
}

func TestBaseInstinctsWalk(t *testing.T) {
	s := newTestGame(t, gameOpts{away: grant(rules.EventBaseInstincts), rng: chance.NewScript(0.005)})
	if n := s.baseInstincts(); n != 3 {
		t.Fatalf("roll under the third base prior should walk to 3, got %d", n)
	}
	s = newTestGame(t, gameOpts{away: grant(rules.EventBaseInstincts), rng: chance.NewScript(0.03)})
	if n := s.baseInstincts(); n != 2 {
		t.Fatalf("got %d want 2", n)
	}
	s = newTestGame(t, gameOpts{away: grant(rules.EventBaseInstincts), rng: chance.NewScript(0.5)})
	if n := s.baseInstincts(); n != 1 {
		t.Fatalf("got %d want 1", n)
	}
}

func TestLongWalkMovesEveryone(t *testing.T) {
	s := newTestGame(t, gameOpts{})
	s.bases.Place(1, "away-b9")
	s.resolveWalk(2, false)
	want := map[int]string{2: "away-b1", 3: "away-b9"}
	if got := s.Runners(); !maps.Equal(got, want) {
		t.Fatalf("runners=%v want %v", got, want)
	}
}

func TestHomeRunScoresEveryone(t *testing.T) {
	pred := defaultPredictor().with(predictor.HitType, 0, 0, 0, 1)
	s := newTestGame(t, gameOpts{weather: rules.WeatherCoffee, pred: pred, rng: chance.NewScript(0.5)})
	s.bases.Place(2, "away-b8")
	s.bases.Place(3, "away-b9")
	s.batting.SetMod("away-b8", rules.ModWired, 1)

	if err := s.resolveHit(s.pitchFeatures(), false); err != nil {
		t.Fatal(err)
	}
	_, away := s.Score()
	if !away.Equal(decimal.RequireFromString("3.5")) {
		t.Fatalf("away=%s want 3.5", away)
	}
	if len(s.Runners()) != 0 {
		t.Fatalf("bases should be clear, got %v", s.Runners())
	}
	if stat(t, s.pitching, "home-p", rules.StatPitcherHRsAllowed) != 1 {
		t.Fatalf("pitcher should be charged the home run")
	}
}

func TestBigBucketDoublesHomeRun(t *testing.T) {
	pred := defaultPredictor().with(predictor.HitType, 0, 0, 0, 1)
	park := stadium.Default("home")
	park.Mods = []string{stadium.ModBigBucket}
	s := newTestGame(t, gameOpts{pred: pred, stadium: park, rng: chance.NewScript(0.5, 0.05)})
	if err := s.resolveHit(nil, false); err != nil {
		t.Fatal(err)
	}
	if _, away := s.Score(); !away.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("away=%s want 2", away)
	}
}

func TestSingleAdvancesRunnersAndPlacesBatter(t *testing.T) {
	pred := defaultPredictor().
		with(predictor.HitType, 1, 0, 0, 0).
		with(predictor.RunnerAdvanceOnHit, 1, 0)
	s := newTestGame(t, gameOpts{pred: pred, rng: chance.NewScript(0.5)})
	s.bases.Place(1, "away-b9")
	if err := s.resolveHit(nil, false); err != nil {
		t.Fatal(err)
	}
	want := map[int]string{1: "away-b1", 2: "away-b9"}
	if got := s.Runners(); !maps.Equal(got, want) {
		t.Fatalf("runners=%v want %v", got, want)
	}
}

func TestGroundOutAdvancesEveryone(t *testing.T) {
	pred := defaultPredictor().with(predictor.OutType, 0, 1)
	s := newTestGame(t, gameOpts{pred: pred, rng: chance.NewScript(0.5)})
	s.bases.Place(3, "away-b9")
	if err := s.resolveOut(nil, false); err != nil {
		t.Fatal(err)
	}
	if _, _, outs := s.Count(); outs != 1 {
		t.Fatalf("outs=%d", outs)
	}
	if _, away := s.Score(); !away.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("runner on third should score, away=%s", away)
	}
}

func TestAcidicRunsWorthLess(t *testing.T) {
	s := newTestGame(t, gameOpts{})
	s.bases.Place(3, "away-b9")
	s.advanceAll(1, true)
	if _, away := s.Score(); !away.Equal(decimal.RequireFromString("0.9")) {
		t.Fatalf("away=%s want 0.9", away)
	}
	if v := stat(t, s.pitching, "home-p", rules.StatPitcherEarnedRuns); v != 0.9 {
		t.Fatalf("earned runs=%v", v)
	}
}

func TestCoffeeRallyRefundsOut(t *testing.T) {
	s := newTestGame(t, gameOpts{weather: rules.WeatherCoffee2})
	s.outs = 2
	s.bases.Place(3, "away-b9")
	s.batting.SetMod("away-b9", rules.ModCoffeeRally, 1)
	s.advanceAll(1, false)
	if _, _, outs := s.Count(); outs != 1 {
		t.Fatalf("outs=%d want 1", outs)
	}
	if s.batting.HasMod("away-b9", rules.ModCoffeeRally) {
		t.Fatalf("rally should be spent")
	}
}

func TestWalkOffEndsGame(t *testing.T) {
	s := newTestGame(t, gameOpts{})
	s.inning = 9
	s.homeScore = decimal.NewFromInt(5)
	s.awayScore = decimal.NewFromInt(3)
	s.outs = s.outsForInning

	s.advanceInning()

	if !s.Over() {
		t.Fatalf("home leads after the top of the ninth, game should be over")
	}
	if s.Inning() != 9 || s.Half() != Top {
		t.Fatalf("inning=%d half=%v", s.Inning(), s.Half())
	}
	if err := s.Step(); !errors.Is(err, ErrGameOver) {
		t.Fatalf("step after game over: %v", err)
	}
}

func TestTopOfNinthTrailingContinues(t *testing.T) {
	s := newTestGame(t, gameOpts{})
	s.inning = 9
	s.homeScore = decimal.NewFromInt(2)
	s.awayScore = decimal.NewFromInt(3)
	s.outs = s.outsForInning
	s.advanceInning()
	if s.Over() || s.Half() != Bottom || s.BattingSide().TeamID() != "home" {
		t.Fatalf("over=%v half=%v", s.Over(), s.Half())
	}
}

func TestTiedExtraInnings(t *testing.T) {
	s := newTestGame(t, gameOpts{})
	s.inning = 9
	s.half = Bottom
	s.alias()
	s.homeScore = decimal.NewFromInt(4)
	s.awayScore = decimal.NewFromInt(4)
	s.outs = s.outsForInning
	s.bases.Place(2, "home-b4")

	s.advanceInning()

	if s.Over() {
		t.Fatalf("tied game should continue")
	}
	if s.Inning() != 10 || s.Half() != Top {
		t.Fatalf("inning=%d half=%v", s.Inning(), s.Half())
	}
	if _, _, outs := s.Count(); outs != 0 || len(s.Runners()) != 0 {
		t.Fatalf("outs=%d runners=%v", outs, s.Runners())
	}
	if v := stat(t, s.away, "away-p", rules.StatPitcherInningsPitched); v != 1 {
		t.Fatalf("innings pitched=%v", v)
	}
}

func TestRerollExhausted(t *testing.T) {
	pred := defaultPredictor().with(predictor.Pitch, 0, 0, 0, 0, 0, 1)
	s := newTestGame(t, gameOpts{pred: pred, away: grant(rules.EventO), rng: chance.NewScript(0.5)})
	err := s.Step()
	if !errors.Is(err, ErrRerollExhausted) {
		t.Fatalf("err=%v", err)
	}
	var re *RerollError
	if !errors.As(err, &re) || re.Tries != maxRerolls || re.TeamID != "away" || re.Event != rules.EventO {
		t.Fatalf("reroll error=%+v", re)
	}
}

func TestRerollOnlyOnCalledStrike(t *testing.T) {
	pred := defaultPredictor().with(predictor.Pitch, 0, 0, 0, 0, 0, 1)
	s := newTestGame(t, gameOpts{pred: pred, away: grant(rules.EventO)})
	s.strikes = 1
	got, err := s.reroll(pitchStrikeLooking, nil)
	if err != nil || got != pitchStrikeLooking {
		t.Fatalf("O blood only rerolls at the start of an at-bat: got %d err %v", got, err)
	}
}

func TestH2OReroll(t *testing.T) {
	pred := defaultPredictor().with(predictor.Pitch, 1, 0, 0, 0, 0, 0)
	s := newTestGame(t, gameOpts{pred: pred, away: grant(rules.EventH2O)})
	s.outs = s.outsForInning - 1
	s.strikes = 1
	got, err := s.reroll(pitchStrikeLooking, nil)
	if err != nil || got != pitchBall {
		t.Fatalf("got %d err %v", got, err)
	}
}

func TestBloodRequirementEnforced(t *testing.T) {
	away := func(c *roster.Config) {
		c.Events = append(c.Events, rules.EventGrant{Event: rules.EventO, StartSeason: 1, Blood: rules.BloodH2O})
	}
	s := newTestGame(t, gameOpts{away: away, blood: true})
	if s.hasGrant(rules.EventO, "away-b1") {
		t.Fatalf("O blood batter should not use an H2O-only grant")
	}
	s = newTestGame(t, gameOpts{away: away})
	if !s.hasGrant(rules.EventO, "away-b1") {
		t.Fatalf("blood is ignored unless enforced")
	}
}

func TestSkipUnavailableBatter(t *testing.T) {
	s := newTestGame(t, gameOpts{})
	s.batting.SetMod("away-b1", rules.ModElsewhere, 1)
	if err := s.skipUnavailable(); err != nil {
		t.Fatal(err)
	}
	if s.batting.CurrentBatter() != "away-b2" {
		t.Fatalf("batter=%s", s.batting.CurrentBatter())
	}
	if !slices.ContainsFunc(s.Log(), func(l string) bool { return strings.HasPrefix(l, "Skipping") }) {
		t.Fatalf("skip should be logged")
	}
}

func TestNoAvailableBatter(t *testing.T) {
	s := newTestGame(t, gameOpts{})
	for _, id := range s.batting.Lineup() {
		s.batting.SetMod(id, rules.ModShelled, 1)
	}
	if err := s.Step(); !errors.Is(err, ErrNoBatter) {
		t.Fatalf("err=%v", err)
	}
}

func TestSun2SetsWin(t *testing.T) {
	s := newTestGame(t, gameOpts{weather: rules.WeatherSun2})
	s.awayScore = decimal.RequireFromString("9.5")
	s.addRuns(decimal.NewFromInt(1))
	if _, away := s.Score(); !away.Equal(decimal.RequireFromString("0.5")) {
		t.Fatalf("away=%s", away)
	}
	if v := stat(t, s.away, roster.TeamKey, rules.StatTeamSun2Wins); v != 1 {
		t.Fatalf("sun2 wins=%v", v)
	}
}

func TestBlackHoleConsumesWin(t *testing.T) {
	s := newTestGame(t, gameOpts{weather: rules.WeatherBlackHole})
	s.awayScore = decimal.NewFromInt(9)
	s.addRuns(decimal.NewFromInt(1))
	if _, away := s.Score(); !away.IsZero() {
		t.Fatalf("away=%s", away)
	}
	if v := stat(t, s.home, roster.TeamKey, rules.StatTeamBlackHoleConsumption); v != 1 {
		t.Fatalf("consumption=%v", v)
	}
}

func TestTripleThreatStrikeoutPenalty(t *testing.T) {
	s := newTestGame(t, gameOpts{weather: rules.WeatherCoffee3})
	if !s.pitching.HasMod("home-p", rules.ModTripleThreat) {
		t.Fatalf("coffee 3 should make starting pitchers triple threats")
	}
	s.balls = s.ballsForWalk - 1
	s.bases.Place(3, "away-b9")
	s.resolveStrikeout(false)
	if _, away := s.Score(); !away.Equal(decimal.RequireFromString("-0.6")) {
		t.Fatalf("away=%s want -0.6", away)
	}
	if _, _, outs := s.Count(); outs != 1 {
		t.Fatalf("outs=%d", outs)
	}
}

func TestStealHomeWithBlaserunning(t *testing.T) {
	pred := defaultPredictor().
		with(predictor.StealAttempt, 0, 1).
		with(predictor.StealSuccess, 0, 1)
	s := newTestGame(t, gameOpts{pred: pred, rng: chance.NewScript(0.5)})
	s.bases.Place(3, "away-b9")
	s.batting.SetMod("away-b9", rules.ModBlaserunning, 1)
	stole, err := s.stealBase()
	if err != nil || !stole {
		t.Fatalf("stole=%v err=%v", stole, err)
	}
	if _, away := s.Score(); !away.Equal(decimal.RequireFromString("1.2")) {
		t.Fatalf("away=%s want 1.2", away)
	}
	if len(s.Runners()) != 0 {
		t.Fatalf("runners=%v", s.Runners())
	}
	if stat(t, s.pitching, roster.DefenseKey, rules.StatDefenseStolenBases) != 1 {
		t.Fatalf("defense should record the stolen base")
	}
}

func TestCaughtStealing(t *testing.T) {
	pred := defaultPredictor().
		with(predictor.StealAttempt, 0, 1).
		with(predictor.StealSuccess, 1, 0)
	s := newTestGame(t, gameOpts{pred: pred, rng: chance.NewScript(0.5)})
	s.bases.Place(1, "away-b9")
	if stole, err := s.stealBase(); err != nil || !stole {
		t.Fatalf("stole=%v err=%v", stole, err)
	}
	if _, _, outs := s.Count(); outs != 1 || len(s.Runners()) != 0 {
		t.Fatalf("outs=%d runners=%v", outs, s.Runners())
	}
	if stat(t, s.batting, "away-b9", rules.StatCaughtStealings) != 1 {
		t.Fatalf("runner should be caught")
	}
}

func TestFloodSweepsBases(t *testing.T) {
	s := newTestGame(t, gameOpts{weather: rules.WeatherFlooding, rng: chance.NewScript(0.005)})
	s.bases.Place(1, "away-b7")
	s.bases.Place(2, "away-b8")
	s.bases.Place(3, "away-b9")
	s.batting.SetMod("away-b7", rules.ModSwimBladder, 1)
	s.batting.SetMod("away-b8", rules.ModEgo2, 1)
	if !s.prePitchEvent() {
		t.Fatalf("flood should replace the pitch")
	}
	if got := s.Runners(); !maps.Equal(got, map[int]string{2: "away-b8"}) {
		t.Fatalf("runners=%v", got)
	}
	if _, away := s.Score(); !away.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("swimmer should score, away=%s", away)
	}
}

func TestCoffeeBeanCycle(t *testing.T) {
	s := newTestGame(t, gameOpts{weather: rules.WeatherCoffee, rng: chance.NewScript(0.01)})
	id := s.batting.CurrentBatter()
	s.coffeeBean()
	if !s.batting.HasMod(id, rules.ModWired) {
		t.Fatalf("first bean wires the batter")
	}
	s.coffeeBean()
	if s.batting.HasMod(id, rules.ModWired) || !s.batting.HasMod(id, rules.ModTired) {
		t.Fatalf("second bean tires the batter")
	}
	s.coffeeBean()
	if s.batting.HasMod(id, rules.ModTired) || s.batting.HasMod(id, rules.ModWired) {
		t.Fatalf("third bean returns to neutral")
	}
}

func TestCrowsChaseBatter(t *testing.T) {
	home := func(c *roster.Config) {
		p := c.Players["home-p"]
		p.Mods = map[rules.Modifier]int{rules.ModFriendOfCrows: 1}
		c.Players["home-p"] = p
	}
	s := newTestGame(t, gameOpts{weather: rules.WeatherBirds, home: home, rng: chance.NewScript(0.01)})
	if !s.prePitchEvent() {
		t.Fatalf("crows should fire")
	}
	if _, _, outs := s.Count(); outs != 1 {
		t.Fatalf("outs=%d", outs)
	}
	if s.batting.CurrentBatter() != "away-b2" {
		t.Fatalf("batter=%s", s.batting.CurrentBatter())
	}
}

func TestCharmWalk(t *testing.T) {
	s := newTestGame(t, gameOpts{away: grant(rules.EventCharm), rng: chance.NewScript(0.01)})
	if !s.prePitchEvent() {
		t.Fatalf("charm should fire")
	}
	if got := s.Runners(); !maps.Equal(got, map[int]string{1: "away-b1"}) {
		t.Fatalf("runners=%v", got)
	}
}

func TestZapRemovesStrike(t *testing.T) {
	s := newTestGame(t, gameOpts{away: grant(rules.EventZap), rng: chance.NewScript(0.01)})
	s.strikes = 2
	if !s.prePitchEvent() {
		t.Fatalf("zap should fire")
	}
	if _, st, _ := s.Count(); st != 1 {
		t.Fatalf("strikes=%d", st)
	}
}

func TestPsychicBatterTurnsStrikeoutIntoWalk(t *testing.T) {
	s := newTestGame(t, gameOpts{})
	s.strikes = s.strikesForOut - 1
	s.strike(pitchStrikeSwinging, pitchMods{strikes: 1, psychicBatter: true})
	if got := s.Runners(); !maps.Equal(got, map[int]string{1: "away-b1"}) {
		t.Fatalf("runners=%v", got)
	}
	if _, _, outs := s.Count(); outs != 0 {
		t.Fatalf("outs=%d", outs)
	}
}

func TestFoulNeverStrikesOut(t *testing.T) {
	s := newTestGame(t, gameOpts{})
	s.strikes = s.strikesForOut - 1
	s.foul(pitchMods{strikes: 1})
	if _, st, outs := s.Count(); st != s.strikesForOut-1 || outs != 0 {
		t.Fatalf("strikes=%d outs=%d", st, outs)
	}
}

func TestFlinchTurnsContactIntoStrike(t *testing.T) {
	away := func(c *roster.Config) {
		p := c.Players["away-b1"]
		p.Mods = map[rules.Modifier]int{rules.ModFlinch: 1}
		c.Players["away-b1"] = p
	}
	s := newTestGame(t, gameOpts{away: away})
	if !s.flinch() {
		t.Fatalf("flinch should fire with no strikes")
	}
	if s.flinch() {
		t.Fatalf("flinch only fires with no strikes")
	}
}

func checkInvariants(t *testing.T, s *State) {
	t.Helper()
	balls, strikes, outs := s.Count()
	if outs > s.outsForInning || strikes >= s.strikesForOut || balls >= s.ballsForWalk {
		t.Fatalf("count %d-%d with %d outs breaks ceilings", balls, strikes, outs)
	}
	seen := map[string]bool{}
	for base, id := range s.Runners() {
		if base < 1 || base >= s.NumBases() || seen[id] {
			t.Fatalf("bad runner %s on base %d: %v", id, base, s.Runners())
		}
		seen[id] = true
	}
}

func TestSimulateFullGame(t *testing.T) {
	s := newTestGame(t, gameOpts{rng: chance.NewSeededRNG(42)})
	for steps := 0; !s.Over(); steps++ {
		if steps > 100000 {
			t.Fatalf("game did not finish")
		}
		if err := s.Step(); err != nil {
			t.Fatal(err)
		}
		checkInvariants(t, s)
	}
	s.finalize()
	res := s.Result()
	if res.Innings < regulationInnings {
		t.Fatalf("innings=%d", res.Innings)
	}
	if res.HomeScore.Equal(res.AwayScore) {
		t.Fatalf("a finished game cannot be tied: %s-%s", res.HomeScore, res.AwayScore)
	}
	winner, loser := s.away, s.home
	if res.HomeWon() {
		winner, loser = s.home, s.away
	}
	if stat(t, winner, roster.TeamKey, rules.StatTeamWins) != 1 || stat(t, loser, roster.TeamKey, rules.StatTeamLosses) != 1 {
		t.Fatalf("win and loss not credited")
	}
	if stat(t, s.home, "home-p", rules.StatPitcherGamesAppeared) != 1 {
		t.Fatalf("appearance not credited")
	}
}

func TestDeterministicTrials(t *testing.T) {
	run := func() Result {
		s := newTestGame(t, gameOpts{rng: chance.NewSeededRNG(2024)})
		res, err := s.Simulate()
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	a, b := run(), run()
	if !a.HomeScore.Equal(b.HomeScore) || !a.AwayScore.Equal(b.AwayScore) {
		t.Fatalf("scores differ: %s-%s vs %s-%s", a.HomeScore, a.AwayScore, b.HomeScore, b.AwayScore)
	}
	if !slices.Equal(a.Log, b.Log) {
		t.Fatalf("logs differ")
	}
}

func TestResetReplaysFromFirstPitch(t *testing.T) {
	s := newTestGame(t, gameOpts{rng: chance.NewSeededRNG(5)})
	if _, err := s.Simulate(); err != nil {
		t.Fatal(err)
	}
	s.Reset()
	if s.Over() || s.Inning() != 1 || s.Half() != Top || len(s.Runners()) != 0 {
		t.Fatalf("reset state: over=%v inning=%d", s.Over(), s.Inning())
	}
	if stat(t, s.home, roster.TeamKey, rules.StatTeamWins)+stat(t, s.home, roster.TeamKey, rules.StatTeamLosses) != 1 {
		t.Fatalf("statistics should survive a reset")
	}
	if _, err := s.Simulate(); err != nil {
		t.Fatal(err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestGame(t, gameOpts{weather: rules.WeatherCoffee2, rng: chance.NewSeededRNG(9)})
	for range 40 {
		if s.Over() {
			break
		}
		if err := s.Step(); err != nil {
			t.Fatal(err)
		}
	}
	raw, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatal(err)
	}
	r, err := Restore(snap, defaultPredictor(), chance.NewSeededRNG(9))
	if err != nil {
		t.Fatal(err)
	}
	if r.Inning() != s.Inning() || r.Half() != s.Half() {
		t.Fatalf("inning %d/%v vs %d/%v", r.Inning(), r.Half(), s.Inning(), s.Half())
	}
	rb, rs, ro := r.Count()
	sb, ss, so := s.Count()
	if rb != sb || rs != ss || ro != so {
		t.Fatalf("count differs")
	}
	rh, ra := r.Score()
	sh, sa := s.Score()
	if !rh.Equal(sh) || !ra.Equal(sa) {
		t.Fatalf("score differs")
	}
	if !maps.Equal(r.Runners(), s.Runners()) {
		t.Fatalf("runners %v vs %v", r.Runners(), s.Runners())
	}
	again, err := json.Marshal(r.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(raw, again) {
		t.Fatalf("snapshot changed across a round trip:\n%s\n%s", raw, again)
	}
}

func TestRestoreRejectsBadSnapshot(t *testing.T) {
	s := newTestGame(t, gameOpts{})
	snap := s.Snapshot()
	snap.Bases = map[int]string{7: "away-b1"}
	if _, err := Restore(snap, defaultPredictor(), nil); !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("err=%v", err)
	}
	snap = s.Snapshot()
	snap.HomeScore = "lots"
	if _, err := Restore(snap, defaultPredictor(), nil); !errors.Is(err, ErrInvalidSnapshot) {
		t.Fatalf("err=%v", err)
	}
}

func TestEventChancesAreProbabilities(t *testing.T) {
	s := newTestGame(t, gameOpts{rng: chance.NewScript(0.5)})
	for _, p := range []float64{
		floodingChance, coffeeBeanChance, coffeeRallyChance, crowsChance, charmChance,
		zapChance, fieryChance, acidicChance, psychicChance, aaChance, aaaChance, bigBucketChance,
	} {
		if p <= 0 || p >= 1 {
			t.Fatalf("event chance %v should be strictly between 0 and 1", p)
		}
		before := s.rng.(*chance.Script).Used()
		s.trigger(p)
		if s.rng.(*chance.Script).Used() != before+1 {
			t.Fatalf("chance %v should consume exactly one roll", p)
		}
	}
}

func TestTriggerPanicsOnBadChance(t *testing.T) {
	s := newTestGame(t, gameOpts{})
	defer func() {
		if recover() == nil {
			t.Fatalf("a chance above 1 must panic")
		}
	}()
	s.trigger(1.5)
}

func TestOverfullDistributionFailsStep(t *testing.T) {
	pred := defaultPredictor().with(predictor.Pitch, 0.8, 0.8, 0, 0, 0, 0)
	s := newTestGame(t, gameOpts{pred: pred})
	var err error
	for i := 0; i < 10 && err == nil; i++ {
		err = s.Step()
	}
	if !errors.Is(err, chance.ErrInvalidDistribution) {
		t.Fatalf("want ErrInvalidDistribution; got %v", err)
	}
}

func withMods(id string, mods map[rules.Modifier]int) func(*roster.Config) {
	return func(c *roster.Config) {
		p := c.Players[id]
		p.Mods = mods
		c.Players[id] = p
	}
}

func fiveBases(c *roster.Config) {
	c.Rules = roster.Rules{NumBases: 5, BallsForWalk: 4, StrikesForOut: 3, OutsForInning: 3}
}

func chain(fs ...func(*roster.Config)) func(*roster.Config) {
	return func(c *roster.Config) {
		for _, f := range fs {
			f(c)
		}
	}
}

func TestFullGameInvariantsUnderEvents(t *testing.T) {
	cases := []struct {
		name    string
		weather rules.Weather
		home    func(*roster.Config)
		away    func(*roster.Config)
	}{
		{"plain", rules.WeatherVoid, nil, nil},
		{"fiery and psychic", rules.WeatherSun2,
			chain(grant(rules.EventFiery), grant(rules.EventPsychic)),
			chain(grant(rules.EventFiery), grant(rules.EventPsychic))},
		{"base instincts on five bases", rules.WeatherVoid,
			chain(fiveBases, grant(rules.EventBaseInstincts)),
			chain(fiveBases, grant(rules.EventBaseInstincts))},
		{"flooding", rules.WeatherFlooding, nil, nil},
		{"triple threat", rules.WeatherCoffee3,
			withMods("home-p", map[rules.Modifier]int{rules.ModTripleThreat: 1}),
			withMods("away-p", map[rules.Modifier]int{rules.ModTripleThreat: 1})},
		{"everything on five bases", rules.WeatherFlooding,
			chain(fiveBases, grant(rules.EventFiery), grant(rules.EventPsychic), grant(rules.EventBaseInstincts),
				withMods("home-p", map[rules.Modifier]int{rules.ModTripleThreat: 1})),
			chain(fiveBases, grant(rules.EventFiery), grant(rules.EventPsychic), grant(rules.EventBaseInstincts),
				withMods("away-p", map[rules.Modifier]int{rules.ModTripleThreat: 1}))},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			for seed := uint64(1); seed <= 25; seed++ {
				s := newTestGame(t, gameOpts{
					weather: c.weather,
					rng:     chance.NewSeededRNG(seed),
					home:    c.home,
					away:    c.away,
				})
				for steps := 0; !s.Over(); steps++ {
					if steps > 100000 {
						t.Fatalf("seed %d: game did not finish", seed)
					}
					if err := s.Step(); err != nil {
						t.Fatalf("seed %d: %v", seed, err)
					}
					checkInvariants(t, s)
				}
				home, away := s.Score()
				if home.Equal(away) {
					t.Fatalf("seed %d: finished tied at %s", seed, home)
				}
			}
		})
	}
}
