package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/KyungWonPark/lsdgrad/internal/calc"
	"github.com/KyungWonPark/lsdgrad/internal/config"
	"github.com/KyungWonPark/lsdgrad/internal/metrics"
)

type app struct {
	configPath string
	logLevel   string

	cfg config.Config
	pl  *calc.PipeLine
	rec *metrics.Recorder
}

// Execute runs the lsdgrad command tree
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "lsdgrad",
		Short:         "Gradient-space analysis tools for parcellated fMRI",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.rec.WriteTextfile(a.cfg.MetricsFile)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML configuration file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		a.connectivityCmd(),
		a.gradientsCmd(),
		a.dynamicsCmd(),
		a.extractCmd(),
		a.alignCmd(),
		a.similarityCmd(),
		a.fcCmd(),
	)

	return root
}

func (a *app) setup() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	zerolog.SetGlobalLevel(cfg.Level())

	a.cfg = cfg
	a.pl = calc.Init(cfg.Workers)
	a.rec = metrics.New()

	log.Debug().Int("workers", a.pl.Workers()).Str("config", a.configPath).Msg("configured")

	return nil
}

// stage times fn under the given stage label
func (a *app) stage(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	a.rec.ObserveStage(name, start)

	return err
}

func saved(w io.Writer, path string) {
	fmt.Fprintf(w, "Saved %s\n", path)
}
