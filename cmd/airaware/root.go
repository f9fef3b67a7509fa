package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/i474232898/airaware/internal/app"
	"github.com/i474232898/airaware/internal/config"
	"github.com/i474232898/airaware/internal/telemetry"
)

// cliDeps lets tests swap out the store and upstream clients.
type cliDeps struct {
	overrides app.Overrides
}

type cli struct {
	deps    cliDeps
	cfgFile string
	verbose bool
	logFile string
}

func newRootCmd(deps cliDeps) *cobra.Command {
	c := &cli{deps: deps}

	root := &cobra.Command{
		Use:   "airaware",
		Short: "Air quality at a glance, with a daily exercise checklist",
		Long: `airaware looks up the current US AQI for a city or your position,
tells you which outdoor activities are sensible today, ranks major cities by
pollution and keeps a small daily exercise checklist.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&c.logFile, "log-file", "", "also write logs to this file")

	root.AddCommand(
		c.newAirCmd(),
		c.newRankCmd(),
		c.newExercisesCmd(),
		c.newServeCmd(),
	)
	return root
}

// setup loads configuration, initialises logging and wires the app.
func (c *cli) setup(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(c.cfgFile)
	if err != nil {
		return nil, err
	}
	if c.verbose {
		cfg.Debug = true
	}
	telemetry.InitLogger(cfg.Debug, c.logFile)

	a, err := app.New(ctx, cfg, c.deps.overrides)
	if err != nil {
		return nil, fmt.Errorf("start airaware: %w", err)
	}
	return a, nil
}
