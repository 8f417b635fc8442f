// Package season plays a schedule: every game of a day runs concurrently,
// days run in order, and each game is played for a number of trials.
package season

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/xtding233/diamond-sim/internal/config"
	"github.com/xtding233/diamond-sim/internal/service"
	"github.com/xtding233/diamond-sim/internal/store"
)

const tracerName = "github.com/xtding233/diamond-sim/internal/season"

// ErrDoubleBooked is returned when a team appears in two games of one day.
var ErrDoubleBooked = errors.New("team scheduled twice in one day")

type Options struct {
	// Seed of zero draws one from the crypto source.
	Seed uint64
	// Trials of zero uses each team's configured count.
	Trials  int
	Workers int
	// Days limits the run to these days when non-empty.
	Days []int
}

type Report struct {
	RunID     string            `json:"run_id"`
	Season    int               `json:"season"`
	Seed      uint64            `json:"seed"`
	Games     int               `json:"games"`
	Failed    int               `json:"failed"`
	Elapsed   time.Duration     `json:"elapsed"`
	Outcomes  []service.Outcome `json:"outcomes"`
	Standings []Standing        `json:"standings"`
	Leaders   Leaders           `json:"leaders"`
}

type Runner struct {
	svc    *service.Service
	logger *log.Logger
	tracer trace.Tracer
}

func NewRunner(svc *service.Service, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{svc: svc, logger: logger, tracer: otel.Tracer(tracerName)}
}

// Run plays the schedule of season. A game that fails is logged and counted
// and the run goes on; a malformed schedule or a cancelled context stops it.
func (r *Runner) Run(ctx context.Context, season int, o Options) (Report, error) {
	sched, err := r.svc.Loader().Schedule(season)
	if err != nil {
		return Report{}, err
	}
	days := sched.Days
	if len(o.Days) > 0 {
		days = slices.DeleteFunc(slices.Clone(days), func(d config.ScheduleDay) bool {
			return !slices.Contains(o.Days, d.Day)
		})
	}
	slices.SortStableFunc(days, func(a, b config.ScheduleDay) int { return a.Day - b.Day })
	for _, d := range days {
		if err := checkDay(d); err != nil {
			return Report{}, err
		}
	}
	if o.Seed == 0 {
		o.Seed = randomSeed()
	}
	if o.Workers < 1 {
		o.Workers = 1
	}

	ctx, span := r.tracer.Start(ctx, "season.run", trace.WithAttributes(
		attribute.Int("season", season),
		attribute.Int("days", len(days)),
	))
	defer span.End()

	rep := Report{RunID: uuid.New().String(), Season: season, Seed: o.Seed}
	started := time.Now()
	if err := r.svc.StartRun(ctx, store.Run{
		ID: rep.RunID, Kind: "season", Season: season, Seed: o.Seed, Trials: o.Trials, StartedAt: started,
	}); err != nil {
		return Report{}, err
	}
	r.logger.Info("season started", "season", season, "run", rep.RunID, "days", len(days), "workers", o.Workers)

	for _, d := range days {
		outs, failed, err := r.playDay(ctx, season, d, o)
		if err != nil {
			return rep, err
		}
		rep.Outcomes = append(rep.Outcomes, outs...)
		rep.Failed += failed
		rep.Games += len(d.Games)

		var recs []store.GameRecord
		for _, out := range outs {
			recs = append(recs, out.Records(rep.RunID)...)
		}
		if err := r.svc.Record(ctx, season, recs); err != nil {
			return rep, fmt.Errorf("record day %d: %w", d.Day, err)
		}
	}

	rep.Elapsed = time.Since(started)
	rep.Standings = Standings(rep.Outcomes)
	rep.Leaders = r.leaders(rep.Outcomes)
	if err := r.svc.FinishRun(ctx, rep.RunID, rep.Games, rep.Failed); err != nil {
		return rep, err
	}
	r.logger.Info("season finished", "season", season, "games", rep.Games, "failed", rep.Failed, "elapsed", rep.Elapsed)
	return rep, nil
}

// playDay runs one day's games concurrently. Outcomes keep schedule order.
func (r *Runner) playDay(ctx context.Context, season int, d config.ScheduleDay, o Options) ([]service.Outcome, int, error) {
	ctx, span := r.tracer.Start(ctx, "season.day", trace.WithAttributes(
		attribute.Int("day", d.Day),
		attribute.Int("games", len(d.Games)),
	))
	defer span.End()

	results := make([]*service.Outcome, len(d.Games))
	var (
		mu     sync.Mutex
		failed int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.Workers)
	for i, sg := range d.Games {
		g.Go(func() error {
			out, err := r.svc.Play(gctx, service.GameRequest{
				ID:          sg.ID,
				Season:      season,
				Day:         d.Day,
				Home:        sg.Home,
				Away:        sg.Away,
				Weather:     sg.Weather,
				HomePitcher: sg.HomePitcher,
				AwayPitcher: sg.AwayPitcher,
				Trials:      o.Trials,
				Seed:        o.Seed,
			})
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				r.logger.Error("game failed", "season", season, "day", d.Day, "game", sg.ID, "err", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			results[i] = &out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	outs := make([]service.Outcome, 0, len(results))
	for _, out := range results {
		if out != nil {
			outs = append(outs, *out)
		}
	}
	r.logger.Debug("day finished", "day", d.Day, "games", len(d.Games), "failed", failed)
	return outs, failed, nil
}

// checkDay rejects a day in which a team would field two sides at once.
func checkDay(d config.ScheduleDay) error {
	seen := make(map[string]string, 2*len(d.Games))
	for _, g := range d.Games {
		for _, team := range []string{g.Home, g.Away} {
			if other, ok := seen[team]; ok {
				return fmt.Errorf("%w: %s on day %d in %s and %s", ErrDoubleBooked, team, d.Day, other, g.ID)
			}
			seen[team] = g.ID
		}
	}
	return nil
}
