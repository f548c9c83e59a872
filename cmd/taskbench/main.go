// Command taskbench drives a taskscheduler.Scheduler the way a busy
// service would: many producers submit at once, tasks take a while, and
// at the end every submitted value must have been processed exactly once.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg, err := newConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	v := viper.New()

	cmd := &cobra.Command{
		Use:           "taskbench",
		Short:         "Stress a bounded-concurrency task scheduler",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := v.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to read configuration: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("failed to validate configuration: %w", err)
			}

			logger, err := newLogger(cfg.LogFormat)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			zap.ReplaceGlobals(logger)
			defer func() { _ = logger.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
			defer cancel()

			reports, err := run(ctx, cfg, logger)
			for _, r := range reports {
				logger.Info("round finished",
					zap.Int("round", r.Round),
					zap.Int("submitted", r.Submitted),
					zap.Int("processed", r.Processed),
					zap.Duration("elapsed", r.Elapsed),
					zap.Stringer("metrics", r.Metrics),
				)
			}
			return err
		},
	}

	registerFlags(cmd.Flags(), cfg)

	v.SetEnvPrefix("TASKSCHED")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cmd
}

func registerFlags(fs *pflag.FlagSet, cfg config) {
	fs.Int("slots", cfg.Slots, "Maximum number of concurrently active drain loops")
	fs.Int("producers", cfg.Producers, "Number of concurrent producers per round (one submit each)")
	fs.Int("rounds", cfg.Rounds, "Number of rounds, each with a fresh scheduler")
	fs.Duration("max-sleep", cfg.MaxSleep, "Task duration for the largest value (values are 1..100)")
	fs.Float64("rate", cfg.Rate, "Maximum drain loop starts per second (0 = unlimited)")
	fs.Bool("pin", cfg.Pin, "Pin drain loops to CPUs (linux only)")
	fs.String("probe", cfg.Probe, "Probe mode: 'auto', 'hint' or 'always'")
	fs.String("log-format", cfg.LogFormat, "Log format: 'dev' or 'prod'")
	fs.Duration("timeout", cfg.Timeout, "Give up waiting for tasks after this long")
	fs.String("out", cfg.Out, "Append processed values to this file, one per line")
}

func newLogger(format string) (*zap.Logger, error) {
	if format == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
