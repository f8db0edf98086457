package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/quoted/internal/config"
	"github.com/fyrsmithlabs/quoted/internal/logging"
	"github.com/fyrsmithlabs/quoted/internal/quote"
)

var generateFlags struct {
	client     string
	sector     string
	priceRange string
	location   string
	owner      string
	quality    string
	region     string
	tax        float64
}

var generateCmd = &cobra.Command{
	Use:   "generate <description>",
	Short: "Generate a single quote and print it as JSON",
	Long: `Generate one quote from a project description without starting the
server. The quote is printed to stdout as JSON.

Examples:
  quoted generate "Necesito una tienda en línea para mi marca de ropa"

  quoted generate --sector construction --location Guadalajara \
    "Remodelación de una casa de 200 m2"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&generateFlags.client, "client", "", "client name for the quote header")
	f.StringVar(&generateFlags.sector, "sector", "", "sector tag (skips classification)")
	f.StringVar(&generateFlags.priceRange, "price-range", "", "requester's budget text, e.g. \"50 mil a 80 mil\"")
	f.StringVar(&generateFlags.location, "location", "", "project location")
	f.StringVar(&generateFlags.owner, "owner", "", "owner id for history matching")
	f.StringVar(&generateFlags.quality, "quality", "", "quality level: economy, standard or premium")
	f.StringVar(&generateFlags.region, "region", "", "region key for regional pricing")
	f.Float64Var(&generateFlags.tax, "tax", 0, "tax percent override (default 16)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	// One-shot runs log warnings and errors only, keeping stdout as pure
	// JSON output.
	cfg.Logging.Level = "warn"
	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	generator, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}

	generated, err := generator.Generate(cmd.Context(), quote.Request{
		Description: strings.Join(args, " "),
		ClientName:  generateFlags.client,
		SectorHint:  generateFlags.sector,
		PriceRange:  generateFlags.priceRange,
		Location:    generateFlags.location,
		OwnerID:     generateFlags.owner,
		Quality:     quote.QualityLevel(generateFlags.quality),
		Region:      generateFlags.region,
		TaxPercent:  generateFlags.tax,
	})
	if err != nil {
		var rejected *quote.RejectedError
		if errors.As(err, &rejected) {
			return fmt.Errorf("rechazado (%s): %s", rejected.Reason, rejected.Message)
		}
		return err
	}

	out, err := json.MarshalIndent(generated, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
