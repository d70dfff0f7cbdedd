package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/scoresight/internal/config"
	"github.com/yourusername/scoresight/internal/features"
	"github.com/yourusername/scoresight/internal/heuristic"
	"github.com/yourusername/scoresight/internal/logger"
	"github.com/yourusername/scoresight/internal/metrics"
	"github.com/yourusername/scoresight/internal/ml"
	"github.com/yourusername/scoresight/internal/models"
	"github.com/yourusername/scoresight/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	logLevel   string
	appLogger  *logrus.Logger
	cfg        *config.Config
	registry   *ml.Registry
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")

	for _, target := range models.AllTargets {
		rootCmd.AddCommand(newPredictCmd(target))
	}
	rootCmd.AddCommand(formCmd, modelsCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:           "scoresight",
	Short:         "Football statistics predictions",
	Long:          `Predicts player goals and assists, league champion odds, match winners and season points from raw statistics.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		appLogger = logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
		registry = ml.OpenRegistry(cfg.Models, appLogger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if registry != nil {
			if err := registry.Close(); err != nil {
				appLogger.WithError(err).Warn("Failed to close models")
			}
		}
		if cfg != nil && cfg.Metrics.Enabled {
			return metrics.WriteText(os.Stderr)
		}
		return nil
	},
}

var formCmd = &cobra.Command{
	Use:   "form <sequence>",
	Short: "Score a W/D/L form sequence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := features.FormPoints(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), points)
		return nil
	},
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Show configured model status",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		statuses := registry.Status(ctx)
		bound := make(map[models.Target]bool, len(statuses))
		for _, st := range statuses {
			bound[st.Target] = true
		}
		for _, target := range models.AllTargets {
			if !bound[target] {
				statuses = append(statuses, ml.ModelStatus{Target: target, Kind: config.ModelKindNone})
			}
		}
		return writeJSON(cmd.OutOrStdout(), statuses)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scoresight %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func newPredictCmd(target models.Target) *cobra.Command {
	var (
		stats     []string
		inputFile string
	)

	cmd := &cobra.Command{
		Use:   string(target),
		Short: fmt.Sprintf("Predict %s from raw statistics", target),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(inputFile, stats)
			if err != nil {
				return err
			}

			svc := service.NewPredictionService(newScorer(), registry, nil, appLogger)
			result, err := svc.Predict(cmd.Context(), target, raw)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringArrayVarP(&stats, "stat", "s", nil, "Stat as key=value (repeatable)")
	cmd.Flags().StringVarP(&inputFile, "input", "i", "", "YAML or JSON file of stats")
	return cmd
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.App.LogLevel = logLevel
	}
	return config.Validate(cfg)
}

func newScorer() *heuristic.Scorer {
	hcfg := heuristic.DefaultConfig()
	hcfg.Anchors.Enabled = cfg.Heuristics.AnchorsEnabled
	return heuristic.NewScorer(hcfg)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
