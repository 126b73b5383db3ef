package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prospecta/leads-cli/internal/acquire"
	"github.com/prospecta/leads-cli/internal/enrich"
	"github.com/prospecta/leads-cli/internal/pipeline"
)

var (
	searchTerm     string
	searchLocation string
	searchRadius   int
	searchMax      int
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Discover, enrich and store leads for a business type in a location",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		location := searchLocation
		if location == "" {
			location = cfg.Search.DefaultRegion
		}
		if location == "" {
			return eris.New("a location is required (--location or LEADS_SEARCH_DEFAULT_REGION)")
		}

		radius := searchRadius
		if radius <= 0 {
			radius = cfg.Search.DefaultRadiusM
		}
		maxResults := searchMax
		if maxResults <= 0 {
			maxResults = cfg.Search.MaxResults
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		searcher := acquire.New(cfg)
		enricher := enrich.NewEnricher(time.Duration(cfg.Search.DelaySecs) * time.Second)

		p := pipeline.New(searcher, enricher, st)

		result, err := p.Run(ctx, acquire.Query{
			Term:         searchTerm,
			Location:     location,
			RadiusMeters: radius,
			MaxResults:   maxResults,
		})
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		zap.L().Info("search complete",
			zap.String("term", searchTerm),
			zap.String("location", location),
			zap.Int("discovered", result.Discovered),
			zap.Int("qualified", result.Qualified),
			zap.Int("saved", len(result.SavedIDs)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchTerm, "term", "", "business type to search for, e.g. \"pet shop\" (required)")
	searchCmd.Flags().StringVar(&searchLocation, "location", "", "city or region, e.g. \"Curitiba, PR\"")
	searchCmd.Flags().IntVar(&searchRadius, "radius", 0, "search radius in meters (default from config)")
	searchCmd.Flags().IntVar(&searchMax, "max", 0, "maximum number of businesses to capture (default from config)")
	_ = searchCmd.MarkFlagRequired("term")
	rootCmd.AddCommand(searchCmd)
}
