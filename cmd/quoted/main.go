// Package main implements the quoted CLI: a quote generation service
// with a serve daemon and a one-shot generate command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/quoted/internal/classify"
	"github.com/fyrsmithlabs/quoted/internal/config"
	"github.com/fyrsmithlabs/quoted/internal/distribute"
	"github.com/fyrsmithlabs/quoted/internal/embeddings"
	"github.com/fyrsmithlabs/quoted/internal/estimate"
	"github.com/fyrsmithlabs/quoted/internal/history"
	"github.com/fyrsmithlabs/quoted/internal/llm"
	"github.com/fyrsmithlabs/quoted/internal/logging"
	"github.com/fyrsmithlabs/quoted/internal/quote"
	"github.com/fyrsmithlabs/quoted/internal/sector"
	"github.com/fyrsmithlabs/quoted/internal/signals"
)

// Version information (set via ldflags during build)
var version = "dev"

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "quoted",
	Short: "Quote pricing and generation service",
	Long: `quoted turns free-text project descriptions into priced quotes with
weighted line items, sector-aware price bands and per-owner history.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (optional)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
}

// buildPipeline constructs the full generator from configuration.
func buildPipeline(cfg *config.Config, logger *logging.Logger) (*quote.Generator, error) {
	registry, err := sector.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("load sector registry: %w", err)
	}

	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("build llm client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(cfg.Embeddings)
	if err != nil {
		return nil, fmt.Errorf("build embedder: %w", err)
	}

	var store history.Store
	switch cfg.History.Backend {
	case config.BackendChromem:
		store, err = history.NewChromemStore(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
	default:
		store = history.NewMemoryStore()
	}
	matcher := history.NewMatcher(cfg.Engine.Matching, store,
		history.NewChainVectorizer(embedder, logger.Named("vectorizer")),
		logger.Named("history"))

	return quote.NewGenerator(cfg.Engine.Quote, registry,
		classify.NewClassifier(registry, client, logger.Named("classify")),
		signals.NewExtractor(registry),
		estimate.NewEstimator(registry, cfg.Engine.Estimate),
		distribute.NewDistributor(registry, cfg.Engine.Distribute),
		matcher, client, logger.Named("quote")), nil
}
