package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	ts "github.com/azargarov/taskscheduler"
)

const maxValue = 100

type roundReport struct {
	Round     int
	Submitted int
	Processed int
	Elapsed   time.Duration
	Metrics   ts.MetricsSnapshot
}

// sink collects processed values and optionally mirrors them to a file.
type sink struct {
	mu     sync.Mutex
	values []int
	w      *bufio.Writer
	wg     sync.WaitGroup
}

func (s *sink) add(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, v)
	if s.w != nil {
		fmt.Fprintln(s.w, v)
	}
	s.wg.Done()
}

func (s *sink) snapshot() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.values)
}

func run(ctx context.Context, cfg config, logger *zap.Logger) ([]roundReport, error) {
	mode, err := ts.ParseProbeMode(cfg.Probe)
	if err != nil {
		return nil, err
	}

	var w *bufio.Writer
	if cfg.Out != "" {
		f, err := os.OpenFile(cfg.Out, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open output file: %w", err)
		}
		defer f.Close()
		w = bufio.NewWriter(f)
		defer w.Flush()
	}

	onErr := func(err error) {
		logger.Warn("dispatcher error", zap.Error(err))
	}

	var reports []roundReport
	for round := 1; round <= cfg.Rounds; round++ {
		r, err := runRound(ctx, cfg, mode, w, onErr)
		r.Round = round
		reports = append(reports, r)
		if err != nil {
			return reports, fmt.Errorf("round %d: %w", round, err)
		}
	}
	return reports, nil
}

func runRound(ctx context.Context, cfg config, mode ts.ProbeMode, w *bufio.Writer, onErr func(error)) (roundReport, error) {
	var (
		report roundReport
		group  ts.Group
		out    = &sink{w: w}
	)

	dispatch := ts.Dispatcher(group.Dispatch)
	if cfg.Pin {
		dispatch = ts.Pinned(nil, onErr)
	}
	if cfg.Rate > 0 {
		dispatch = ts.RateLimited(ctx, rate.NewLimiter(rate.Limit(cfg.Rate), 1), dispatch, onErr)
	}

	step := cfg.MaxSleep / maxValue
	conv := func(v int) ts.Task {
		return func() {
			time.Sleep(time.Duration(v) * step)
			out.add(v)
		}
	}

	metrics := &ts.AtomicMetrics{}
	s, err := ts.NewSchedulerFromOptions[*ts.AtomicMetrics, int](
		metrics,
		ts.Options{MaxConcurrency: cfg.Slots, Probe: mode, Ctx: ctx},
		conv,
		dispatch,
	)
	if err != nil {
		return report, err
	}

	submitted := make([]int, cfg.Producers)
	for i := range submitted {
		submitted[i] = rand.IntN(maxValue) + 1
	}
	out.wg.Add(len(submitted))

	start := time.Now()
	var eg errgroup.Group
	for _, v := range submitted {
		eg.Go(func() error {
			s.Submit(v)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return report, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		out.wg.Wait()
	}()
	select {
	case <-done:
	case <-ctx.Done():
		report.Submitted = len(submitted)
		report.Processed = len(out.snapshot())
		report.Metrics = metrics.Snapshot()
		return report, fmt.Errorf("waiting for tasks: %w (pending %d)", ctx.Err(), s.Pending())
	}
	if !cfg.Pin {
		if err := group.Wait(ctx); err != nil {
			return report, fmt.Errorf("waiting for drain loops: %w", err)
		}
	}

	processed := out.snapshot()
	report.Submitted = len(submitted)
	report.Processed = len(processed)
	report.Elapsed = time.Since(start)
	report.Metrics = metrics.Snapshot()

	slices.Sort(submitted)
	slices.Sort(processed)
	if !slices.Equal(submitted, processed) {
		return report, fmt.Errorf("processed values differ from submitted values")
	}
	if report.Metrics.PeakActive > int64(cfg.Slots) {
		return report, fmt.Errorf("peak active slots %d exceeds %d", report.Metrics.PeakActive, cfg.Slots)
	}
	return report, nil
}
