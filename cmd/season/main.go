// Command season plays a season schedule from the data directory and prints
// standings and leaders.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/xtding233/diamond-sim/internal/app"
	"github.com/xtding233/diamond-sim/internal/config"
	"github.com/xtding233/diamond-sim/internal/platform/otel"
	"github.com/xtding233/diamond-sim/internal/season"
)

type flags struct {
	season  int
	seed    uint64
	trials  int
	workers int
	days    string
	asJSON  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatal("season failed", "err", err)
	}
}

func run(ctx context.Context, args []string) error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	var f flags
	fs := flag.NewFlagSet("season", flag.ContinueOnError)
	fs.IntVar(&f.season, "season", 0, "season to play")
	fs.Uint64Var(&f.seed, "seed", 0, "run seed (0 picks one)")
	fs.IntVar(&f.trials, "trials", 0, "trials per game (0 uses config)")
	fs.IntVar(&f.workers, "workers", env.Workers, "games played concurrently")
	fs.StringVar(&f.days, "days", "", "comma separated days to play")
	fs.BoolVar(&f.asJSON, "json", false, "print the report as JSON")
	fs.StringVar(&env.DataDir, "data", env.DataDir, "data directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	days, err := parseDays(f.days)
	if err != nil {
		return err
	}

	logger, err := app.NewLogger(os.Stderr, env.LogLevel, "season")
	if err != nil {
		return err
	}
	shutdownTracing, err := otel.Setup(ctx, "diamond-season", env.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	a, err := app.Open(ctx, env, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := season.NewRunner(a.Service, logger).Run(ctx, f.season, season.Options{
		Seed:    f.seed,
		Trials:  f.trials,
		Workers: f.workers,
		Days:    days,
	})
	if err != nil {
		return err
	}
	if f.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return season.WriteSummary(os.Stdout, rep)
}

func parseDays(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid day %q", part)
		}
		days = append(days, d)
	}
	return days, nil
}
