// Package service is the simulate-a-game use case shared by the HTTP, gRPC
// and season front ends.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/xtding233/diamond-sim/internal/chance"
	"github.com/xtding233/diamond-sim/internal/config"
	"github.com/xtding233/diamond-sim/internal/game"
	"github.com/xtding233/diamond-sim/internal/predictor"
	"github.com/xtding233/diamond-sim/internal/publish"
	"github.com/xtding233/diamond-sim/internal/roster"
	"github.com/xtding233/diamond-sim/internal/rules"
	"github.com/xtding233/diamond-sim/internal/store"
)

const tracerName = "github.com/xtding233/diamond-sim/internal/service"

// MaxTrials caps trials per request.
const MaxTrials = 10000

var (
	ErrBadRequest = errors.New("bad request")
	ErrNoStore    = errors.New("snapshot store not configured")
)

// GameRequest names two teams from the data directory and how to play them.
type GameRequest struct {
	ID          string        `json:"id,omitempty"`
	Season      int           `json:"season"`
	Day         int           `json:"day"`
	Home        string        `json:"home"`
	Away        string        `json:"away"`
	Weather     rules.Weather `json:"weather"`
	HomePitcher string        `json:"home_pitcher,omitempty"`
	AwayPitcher string        `json:"away_pitcher,omitempty"`
	// Trials of zero uses the configured count.
	Trials int `json:"trials,omitempty"`
	// Seed of zero draws from the crypto source.
	Seed    uint64 `json:"seed,omitempty"`
	KeepLog bool   `json:"keep_log,omitempty"`

	Overrides config.Overrides `json:"-"`
}

func (r *GameRequest) check() error {
	switch {
	case r.Home == "" || r.Away == "":
		return fmt.Errorf("%w: home and away are required", ErrBadRequest)
	case r.Home == r.Away:
		return fmt.Errorf("%w: a team cannot play itself", ErrBadRequest)
	case !r.Weather.Valid():
		return fmt.Errorf("%w: unknown weather %d", ErrBadRequest, int(r.Weather))
	case r.Trials < 0 || r.Trials > MaxTrials:
		return fmt.Errorf("%w: trials must be in [0,%d]", ErrBadRequest, MaxTrials)
	}
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// RequestBody is the wire form of a GameRequest with its config overrides.
type RequestBody struct {
	GameRequest
	Rules        *config.RawRules `json:"rules,omitempty"`
	EnforceBlood *bool            `json:"enforce_blood,omitempty"`
}

func (b RequestBody) Request() GameRequest {
	req := b.GameRequest
	req.Overrides.EnforceBlood = b.EnforceBlood
	if b.Rules != nil {
		req.Overrides.Rules = *b.Rules
	}
	return req
}

// Outcome summarizes every trial of one game.
type Outcome struct {
	GameID   string        `json:"game_id"`
	RunID    string        `json:"run_id,omitempty"`
	Season   int           `json:"season"`
	Day      int           `json:"day"`
	Home     string        `json:"home"`
	Away     string        `json:"away"`
	Trials   []game.Result `json:"trials"`
	HomeWins int           `json:"home_wins"`
	HomeRuns chance.Stats  `json:"home_runs"`
	AwayRuns chance.Stats  `json:"away_runs"`
	Margin   chance.Stats  `json:"margin"`

	Snapshot  game.Snapshot                     `json:"-"`
	HomeStats map[string]map[rules.Stat]float64 `json:"-"`
	AwayStats map[string]map[rules.Stat]float64 `json:"-"`
}

// Options wire the collaborators. Store, Publisher and Logger are optional.
type Options struct {
	Loader    *config.Loader
	Predictor predictor.Predictor
	Store     *store.Store
	Publisher *publish.RedisPublisher
	Logger    *log.Logger
}

type Service struct {
	loader    *config.Loader
	pred      predictor.Predictor
	store     *store.Store
	publisher *publish.RedisPublisher
	logger    *log.Logger
	tracer    trace.Tracer
}

func New(o Options) (*Service, error) {
	if o.Loader == nil || o.Predictor == nil {
		return nil, fmt.Errorf("service: loader and predictor are required")
	}
	return &Service{
		loader:    o.Loader,
		pred:      o.Predictor,
		store:     o.Store,
		publisher: o.Publisher,
		logger:    o.Logger,
		tracer:    otel.Tracer(tracerName),
	}, nil
}

func (s *Service) Loader() *config.Loader { return s.loader }

// GameSeed mixes a run seed with a game id. Every game of a run draws its
// own stream regardless of scheduling order.
func GameSeed(runSeed uint64, gameID string) uint64 {
	return runSeed ^ xxhash.Sum64String(gameID)
}

func rngFor(seed uint64, gameID string) chance.RandomSource {
	if seed == 0 {
		return chance.DefaultRNG()
	}
	return chance.NewSeededRNG(GameSeed(seed, gameID))
}

// Prepare builds a game at its first pitch and the number of trials to play.
func (s *Service) Prepare(req *GameRequest) (*game.State, int, error) {
	if err := req.check(); err != nil {
		return nil, 0, err
	}
	home, hp, err := s.side(req, req.Home, req.HomePitcher)
	if err != nil {
		return nil, 0, err
	}
	away, _, err := s.side(req, req.Away, req.AwayPitcher)
	if err != nil {
		return nil, 0, err
	}
	st, err := game.New(game.Config{
		ID:           req.ID,
		Season:       req.Season,
		Day:          req.Day,
		Weather:      req.Weather,
		EnforceBlood: hp.EnforceBlood,
	}, game.Deps{
		Stadium:   s.loader.Stadium(req.Home),
		Home:      home,
		Away:      away,
		Predictor: s.pred,
		RNG:       rngFor(req.Seed, req.ID),
	})
	if err != nil {
		return nil, 0, err
	}
	trials := req.Trials
	if trials == 0 {
		trials = hp.Trials
	}
	return st, trials, nil
}

func (s *Service) side(req *GameRequest, teamID, pitcher string) (*roster.Side, config.Params, error) {
	cfg, p, err := s.loader.SideConfig(req.Season, req.Day, teamID, pitcher, req.Overrides)
	if err != nil {
		return nil, config.Params{}, err
	}
	side, err := roster.New(cfg)
	if err != nil {
		return nil, config.Params{}, err
	}
	return side, p, nil
}

// Play runs every trial of req without persisting anything.
func (s *Service) Play(ctx context.Context, req GameRequest) (Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "game.play")
	defer span.End()

	st, trials, err := s.Prepare(&req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}
	span.SetAttributes(
		attribute.String("game.id", req.ID),
		attribute.Int("game.season", req.Season),
		attribute.Int("game.trials", trials),
	)

	out := Outcome{
		GameID: req.ID,
		Season: req.Season,
		Day:    req.Day,
		Home:   req.Home,
		Away:   req.Away,
	}
	for i := 0; i < trials; i++ {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		if i > 0 {
			st.Reset()
		}
		res, err := st.Simulate()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return out, fmt.Errorf("trial %d: %w", i, err)
		}
		if !req.KeepLog {
			res.Log = nil
		}
		out.Trials = append(out.Trials, res)
	}
	out.summarize()
	snap := st.Snapshot()
	out.Snapshot = snap
	out.HomeStats = snap.Home.Stats
	out.AwayStats = snap.Away.Stats
	return out, nil
}

func (o *Outcome) summarize() {
	home := make([]float64, 0, len(o.Trials))
	away := make([]float64, 0, len(o.Trials))
	margin := make([]float64, 0, len(o.Trials))
	o.HomeWins = 0
	for _, r := range o.Trials {
		h, a := r.HomeScore.InexactFloat64(), r.AwayScore.InexactFloat64()
		home = append(home, h)
		away = append(away, a)
		margin = append(margin, h-a)
		if r.HomeWon() {
			o.HomeWins++
		}
	}
	o.HomeRuns = chance.Summarize(home)
	o.AwayRuns = chance.Summarize(away)
	o.Margin = chance.Summarize(margin)
}

// Records flattens an outcome into one row per trial.
func (o Outcome) Records(runID string) []store.GameRecord {
	recs := make([]store.GameRecord, 0, len(o.Trials))
	for i, r := range o.Trials {
		recs = append(recs, store.GameRecord{
			RunID:     runID,
			GameID:    o.GameID,
			Trial:     i,
			Day:       o.Day,
			HomeTeam:  o.Home,
			AwayTeam:  o.Away,
			HomeScore: r.HomeScore,
			AwayScore: r.AwayScore,
			Innings:   r.Innings,
		})
	}
	return recs
}

// Record persists and publishes recs to whichever sinks are configured.
func (s *Service) Record(ctx context.Context, season int, recs []store.GameRecord) error {
	if s.store != nil {
		if err := s.store.SaveResults(ctx, recs); err != nil {
			return err
		}
	}
	if s.publisher != nil {
		for _, r := range recs {
			if err := s.publisher.PublishResult(ctx, season, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// Simulate plays req as its own run and records the results and final
// snapshot.
func (s *Service) Simulate(ctx context.Context, req GameRequest) (Outcome, error) {
	if err := req.check(); err != nil {
		return Outcome{}, err
	}
	runID := uuid.New().String()
	started := time.Now()
	if err := s.StartRun(ctx, store.Run{ID: runID, Kind: "game", Season: req.Season, Seed: req.Seed, Trials: req.Trials, StartedAt: started}); err != nil {
		return Outcome{}, err
	}

	out, err := s.Play(ctx, req)
	out.RunID = runID
	failed := 0
	if err != nil {
		failed = 1
		if s.logger != nil {
			s.logger.Error("game failed", "game", req.ID, "run", runID, "err", err)
		}
	}
	if rerr := s.Record(ctx, req.Season, out.Records(runID)); rerr != nil {
		return out, fmt.Errorf("record %s: %w", out.GameID, rerr)
	}
	if err == nil && s.store != nil {
		if serr := s.store.SaveSnapshot(ctx, runID, out.Snapshot); serr != nil {
			return out, serr
		}
	}
	if ferr := s.FinishRun(ctx, runID, 1, failed); ferr != nil {
		return out, ferr
	}
	if s.logger != nil && err == nil {
		s.logger.Info("game simulated", "game", out.GameID, "trials", len(out.Trials),
			"home_wins", out.HomeWins, "elapsed", time.Since(started))
	}
	return out, err
}

// StartRun registers a run when a store is configured.
func (s *Service) StartRun(ctx context.Context, r store.Run) error {
	if s.store == nil {
		return nil
	}
	return s.store.CreateRun(ctx, r)
}

// FinishRun closes a run and publishes its totals.
func (s *Service) FinishRun(ctx context.Context, id string, games, failed int) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.FinishRun(ctx, id, games, failed, time.Now()); err != nil {
		return err
	}
	if s.publisher != nil {
		r, err := s.store.GetRun(ctx, id)
		if err != nil {
			return err
		}
		return s.publisher.PublishRun(ctx, r)
	}
	return nil
}

// SaveSnapshot stores st's current snapshot under runID.
func (s *Service) SaveSnapshot(ctx context.Context, runID string, st *game.State) error {
	if s.store == nil {
		return ErrNoStore
	}
	return s.store.SaveSnapshot(ctx, runID, st.Snapshot())
}

// Snapshot loads the stored snapshot of gameID.
func (s *Service) Snapshot(ctx context.Context, gameID string) (game.Snapshot, error) {
	if s.store == nil {
		return game.Snapshot{}, ErrNoStore
	}
	return s.store.LoadSnapshot(ctx, gameID)
}

// Resume finishes a stored game from its snapshot. A finished game returns
// its stored result.
func (s *Service) Resume(ctx context.Context, gameID string, seed uint64) (game.Result, error) {
	snap, err := s.Snapshot(ctx, gameID)
	if err != nil {
		return game.Result{}, err
	}
	st, err := game.Restore(snap, s.pred, rngFor(seed, gameID))
	if err != nil {
		return game.Result{}, err
	}
	if st.Over() {
		return st.Result(), nil
	}
	res, err := st.Simulate()
	if err != nil {
		return game.Result{}, err
	}
	if err := s.store.SaveSnapshot(ctx, "resume", st.Snapshot()); err != nil {
		return res, err
	}
	return res, nil
}

// LatestResult reads the cached result of gameID from the publisher.
func (s *Service) LatestResult(ctx context.Context, gameID string) (store.GameRecord, error) {
	if s.publisher == nil {
		return store.GameRecord{}, publish.ErrNotFound
	}
	return s.publisher.LatestResult(ctx, gameID)
}
