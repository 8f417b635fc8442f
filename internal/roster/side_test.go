package roster

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/xtding233/diamond-sim/internal/rules"
)

func testConfig() Config {
	return Config{
		TeamID:   "747b8e4a",
		Name:     "Tigers",
		Season:   1,
		Day:      1,
		Weather:  rules.WeatherSun2,
		Rules:    DefaultRules(),
		Lineup:   []string{"p1", "p2", "p3"},
		Rotation: []string{"p4", "p1"},
		Players: map[string]Player{
			"p1": {ID: "p1", Name: "Player 1", Blood: rules.BloodO, Stlats: Stlats{BaseThirst: 3, Patheticism: 2}},
			"p2": {ID: "p2", Name: "Player 2", Blood: rules.BloodGrass, Stlats: Stlats{BaseThirst: 2, Patheticism: 1, Thwackability: 1}},
			"p3": {ID: "p3", Name: "Player 3", Blood: rules.BloodLove, Stlats: Stlats{BaseThirst: 1, Anticapitalism: 6, Chasiness: 3, Patheticism: 0.2, Thwackability: 2}},
			"p4": {ID: "p4", Name: "Player 4", Blood: rules.BloodElectric, Stlats: Stlats{Coldness: 1, Patheticism: 0.01, Thwackability: 3}},
		},
		SegmentSize: 3,
	}
}

func newTestSide(t *testing.T, mutate func(*Config)) *Side {
	t.Helper()
	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	s, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestInitialState(t *testing.T) {
	s := newTestSide(t, nil)
	if s.StartingPitcher() != "p4" {
		t.Fatalf("starting pitcher defaults to head of rotation, got %s", s.StartingPitcher())
	}
	if s.Rules() != DefaultRules() {
		t.Fatalf("rules=%+v", s.Rules())
	}
	if s.Blood("p3") != rules.BloodLove {
		t.Fatalf("blood=%v", s.Blood("p3"))
	}
	if s.CurrentBatterName() != "Player 1" || s.PitcherName() != "Player 4" {
		t.Fatalf("names: %s %s", s.CurrentBatterName(), s.PitcherName())
	}
}

func TestIncompleteRoster(t *testing.T) {
	cases := map[string]func(*Config){
		"no lineup":       func(c *Config) { c.Lineup = nil },
		"no rotation":     func(c *Config) { c.Rotation = nil },
		"unknown batter":  func(c *Config) { c.Lineup = append(c.Lineup, "ghost") },
		"unknown pitcher": func(c *Config) { c.StartingPitcher = "ghost" },
	}
	for name, mutate := range cases {
		cfg := testConfig()
		mutate(&cfg)
		if _, err := New(cfg); !errors.Is(err, ErrIncompleteRoster) {
			t.Fatalf("%s: want ErrIncompleteRoster, got %v", name, err)
		}
	}
}

func TestBatterAdvancement(t *testing.T) {
	s := newTestSide(t, nil)
	if s.CurrentBatter() != "p1" {
		t.Fatalf("got %s", s.CurrentBatter())
	}
	s.NextBatter()
	if s.CurrentBatter() != "p2" || s.BatterPos() != 1 {
		t.Fatalf("got %s at %d", s.CurrentBatter(), s.BatterPos())
	}
	s.NextBatter()
	s.NextBatter()
	if s.CurrentBatter() != "p1" {
		t.Fatalf("lineup should wrap, got %s", s.CurrentBatter())
	}
}

func TestTravellingBoost(t *testing.T) {
	s := newTestSide(t, func(c *Config) {
		c.Season = 12
		c.Boosts = []TeamBoost{{Name: "travelling", StartSeason: 12, AwayOnly: true, Batting: 1.05, Pitching: 1.05, Defense: 1.05, Running: 1.05}}
	})
	if got := s.TeamAdditives().Batting; got != 1.05 {
		t.Fatalf("away batting=%v", got)
	}
	if fv := s.BatterFeatures("p1"); fv[5] != 2.1 {
		t.Fatalf("patheticism=%v", fv[5])
	}
	s.SetGameContext(12, 1, rules.WeatherSun2, true)
	if got := s.TeamAdditives(); got != unitAdditives() {
		t.Fatalf("home side should not travel: %+v", got)
	}
}

func TestWeatherBoost(t *testing.T) {
	birds := rules.WeatherBirds
	s := newTestSide(t, func(c *Config) {
		c.Season = 14
		c.Weather = birds
		c.Boosts = []TeamBoost{{Name: "crows", StartSeason: 14, Weather: &birds, Batting: 1.5, Pitching: 1.5}}
	})
	if a := s.TeamAdditives(); a.Batting != 1.5 || a.Pitching != 1.5 || a.Defense != 1 || a.Running != 1 {
		t.Fatalf("additives=%+v", a)
	}
	if fv := s.BatterFeatures("p1"); fv[5] != 3.0 {
		t.Fatalf("patheticism=%v", fv[5])
	}
	s.SetGameContext(14, 2, rules.WeatherSun2, false)
	if a := s.TeamAdditives(); a != unitAdditives() {
		t.Fatalf("boost should lapse outside birds: %+v", a)
	}
}

func TestSpicyStacks(t *testing.T) {
	s := newTestSide(t, nil)
	s.SetMod("p1", rules.ModSpicy, 1)
	for i, want := range []float64{1, 1, 1.4, 1.4} {
		s.ApplyHit("p1")
		if got := s.PlayerAdditives("p1").Batting; got != want {
			t.Fatalf("hit %d: batting=%v want %v", i+1, got, want)
		}
	}
	if v, _ := s.Mod("p1", rules.ModSpicy); v != 4 {
		t.Fatalf("spicy should cap at 4, got %d", v)
	}
	s.ResetHitModifiers("p1")
	if v, _ := s.Mod("p1", rules.ModSpicy); v != 1 {
		t.Fatalf("spicy reset to %d", v)
	}
	if got := s.PlayerAdditives("p1").Batting; got != 1 {
		t.Fatalf("batting=%v after reset", got)
	}
}

func TestPreloadModifiers(t *testing.T) {
	cases := []struct {
		name    string
		mod     rules.Modifier
		weather rules.Weather
		home    bool
		want    Additives
		counter int
	}{
		{"chunky off", rules.ModChunky, rules.WeatherSun2, false, unitAdditives(), 1},
		{"chunky peanuts", rules.ModChunky, rules.WeatherPeanuts, false, Additives{2, 1, 1, 1}, 1},
		{"smooth peanuts", rules.ModSmooth, rules.WeatherPeanuts, false, Additives{1, 1, 1, 2}, 1},
		{"homebody away", rules.ModHomebody, rules.WeatherSun2, false, unitAdditives().scale(1.0 / 1.2), 1},
		{"homebody home", rules.ModHomebody, rules.WeatherSun2, true, unitAdditives().scale(1.2), 1},
		{"perk sun", rules.ModPerk, rules.WeatherSun2, false, unitAdditives(), 1},
		{"perk coffee", rules.ModPerk, rules.WeatherCoffee, false, unitAdditives().scale(1.2), 2},
		{"perk coffee3", rules.ModPerk, rules.WeatherCoffee3, false, unitAdditives().scale(1.2), 2},
		{"underover", rules.ModUnderOver, rules.WeatherSun2, false, unitAdditives().scale(1.2), 2},
		{"overperforming", rules.ModOverPerforming, rules.WeatherSun2, false, unitAdditives().scale(1.2), 2},
		{"underperforming", rules.ModUnderPerforming, rules.WeatherSun2, false, unitAdditives().scale(1.0 / 1.2), 2},
	}
	for _, c := range cases {
		s := newTestSide(t, func(cfg *Config) {
			p := cfg.Players["p1"]
			p.Mods = map[rules.Modifier]int{c.mod: 1}
			cfg.Players["p1"] = p
		})
		s.SetGameContext(1, 1, c.weather, c.home)
		if got := s.PlayerAdditives("p1"); got != c.want {
			t.Fatalf("%s: additives=%+v want %+v", c.name, got, c.want)
		}
		if v, _ := s.Mod("p1", c.mod); v != c.counter {
			t.Fatalf("%s: counter=%d want %d", c.name, v, c.counter)
		}
	}
}

func TestValidateUnderOver(t *testing.T) {
	s := newTestSide(t, nil)
	s.SetMod("p1", rules.ModUnderOver, 1)
	if got := s.PlayerAdditives("p1"); got != unitAdditives() {
		t.Fatalf("inactive underover should be neutral: %+v", got)
	}
	s.ValidateGameStateAdditives(decimal.NewFromInt(4))
	if got := s.PlayerAdditives("p1"); got != unitAdditives().scale(1.2) {
		t.Fatalf("score 4: %+v", got)
	}
	s.ValidateGameStateAdditives(decimal.NewFromInt(5))
	if v, _ := s.Mod("p1", rules.ModUnderOver); v != 2 {
		t.Fatalf("score 5 keeps it active, counter=%d", v)
	}
	s.ValidateGameStateAdditives(decimal.RequireFromString("5.1"))
	if got := s.PlayerAdditives("p1"); got != unitAdditives() {
		t.Fatalf("score 5.1: %+v", got)
	}
}

func TestValidateOverUnder(t *testing.T) {
	s := newTestSide(t, nil)
	s.SetMod("p1", rules.ModOverUnder, 1)
	s.ValidateGameStateAdditives(decimal.NewFromInt(4))
	if got := s.PlayerAdditives("p1"); got != unitAdditives() {
		t.Fatalf("score 4: %+v", got)
	}
	s.ValidateGameStateAdditives(decimal.NewFromInt(6))
	if got := s.PlayerAdditives("p1"); got != unitAdditives().scale(1.0/1.2) {
		t.Fatalf("score 6: %+v", got)
	}
}

func TestStatsAndSegments(t *testing.T) {
	s := newTestSide(t, nil)
	s.UpdateStat("p1", rules.StatBatterAtBats, 1, 1)
	s.UpdateStat("p1", rules.StatBatterAtBats, 1, 4)
	s.UpdateStat(TeamKey, rules.StatTeamWins, 1, 4)
	if v, _ := s.Stat("p1", rules.StatBatterAtBats); v != 2 {
		t.Fatalf("at bats=%v", v)
	}
	seg := s.SegmentedStats()
	if seg[0]["p1"][rules.StatBatterAtBats] != 1 || seg[3]["p1"][rules.StatBatterAtBats] != 1 {
		t.Fatalf("segments=%v", seg)
	}
	if seg[3][TeamKey][rules.StatTeamWins] != 1 {
		t.Fatalf("team stat not segmented")
	}
	s.Reset(false)
	if _, ok := s.Stat("p1", rules.StatBatterAtBats); !ok {
		t.Fatalf("stats should survive a soft reset")
	}
	s.Reset(true)
	if _, ok := s.Stat("p1", rules.StatBatterAtBats); ok {
		t.Fatalf("stats should clear on a hard reset")
	}
}

func TestResetRestoresBaselineMods(t *testing.T) {
	s := newTestSide(t, func(c *Config) {
		p := c.Players["p2"]
		p.Mods = map[rules.Modifier]int{rules.ModFlinch: 1}
		c.Players["p2"] = p
	})
	s.ClearMod("p2", rules.ModFlinch)
	s.SetMod("p1", rules.ModWired, 1)
	s.NextBatter()
	s.Reset(false)
	if !s.HasMod("p2", rules.ModFlinch) || s.HasMod("p1", rules.ModWired) {
		t.Fatalf("reset should restore baseline mods")
	}
	if s.CurrentBatter() != "p1" {
		t.Fatalf("reset should return to leadoff")
	}
}

func TestDefenseFeaturesAverageLineup(t *testing.T) {
	s := newTestSide(t, nil)
	fv := s.DefenseFeatures()
	if len(fv) != DefenseLen || fv[0] != 2 || fv[1] != 1 {
		t.Fatalf("defense fv=%v", fv)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestSide(t, nil)
	s.SetMod("p3", rules.ModSpicy, 4)
	s.UpdateStat("p3", rules.StatBatterHits, 2, 2)
	s.NextBatter()
	b, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		t.Fatal(err)
	}
	r, err := FromSnapshot(snap)
	if err != nil {
		t.Fatal(err)
	}
	if r.CurrentBatter() != "p2" {
		t.Fatalf("batter=%s", r.CurrentBatter())
	}
	if v, _ := r.Stat("p3", rules.StatBatterHits); v != 2 {
		t.Fatalf("hits=%v", v)
	}
	if r.SegmentedStats()[0]["p3"][rules.StatBatterHits] != 2 {
		t.Fatalf("segments lost")
	}
	if r.PlayerAdditives("p3").Batting != 1.4 {
		t.Fatalf("spicy additive not rebuilt")
	}
}
