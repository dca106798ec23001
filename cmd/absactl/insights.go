package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"review_absa/internal/absa"
	"review_absa/internal/app"
	"review_absa/internal/bootstrap"
	"review_absa/internal/corpus"
	"review_absa/internal/domain"
)

type insightsFlags struct {
	input      string
	analyze    bool
	report     string
	highRating float64
	top        int
	partitions int
}

func newInsightsCmd(g *globalFlags) *cobra.Command {
	f := &insightsFlags{}
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Compute corpus insights from a labeled (or raw, with --analyze) JSONL/CSV file",
		Example: `  absactl insights --input final_absa_results.csv
  absactl insights --input reviews.jsonl --analyze --report root-causes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsights(cmd, g, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.input, "input", "i", "", "corpus file (.csv or .jsonl)")
	fl.BoolVar(&f.analyze, "analyze", false, "treat input as raw reviews and run the pipeline first")
	fl.StringVar(&f.report, "report", "all", "all|distribution|mismatch|root-causes")
	fl.Float64Var(&f.highRating, "high-rating", 0, "minimum rating counted as high (default: HIGH_RATING_THRESHOLD)")
	fl.IntVar(&f.top, "top", 0, "root-cause keywords per aspect (default: ROOT_CAUSE_TOP_N)")
	fl.IntVar(&f.partitions, "partitions", 0, "parallel reduction partitions (default: GOMAXPROCS)")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runInsights(cmd *cobra.Command, g *globalFlags, f *insightsFlags) error {
	ctx := cmd.Context()
	cfg := g.config()
	if cmd.Flags().Changed("high-rating") {
		if f.highRating <= 0 || f.highRating > 5 {
			return fmt.Errorf("--high-rating must be in (0, 5], got %v", f.highRating)
		}
		cfg.HighRatingThreshold = f.highRating
	}
	if f.top > 0 {
		cfg.RootCauseTopN = f.top
	}
	if f.partitions > 0 {
		cfg.InsightsPartitions = f.partitions
	}

	var (
		recs []domain.CorpusRecord
		err  error
	)
	if f.analyze {
		p, perr := bootstrap.Pipeline(ctx, cfg)
		if perr != nil {
			return perr
		}
		recs, err = analyzeFile(ctx, p, f.input)
	} else {
		recs, err = corpus.ReadRecords(f.input)
	}
	if err != nil {
		return err
	}
	log.Info().Int("records", len(recs)).Msg("corpus loaded")

	rep, err := bootstrap.Insights(cfg).Report(ctx, recs)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	switch f.report {
	case "all":
		return printJSON(out, rep)
	case "distribution":
		return printJSON(out, rep.Distribution)
	case "mismatch":
		return printJSON(out, rep.RatingMismatch)
	case "root-causes":
		return printJSON(out, rep.RootCauses)
	}
	return fmt.Errorf("unknown report %q", f.report)
}

// analyzeFile runs every raw row through the pipeline, keeping input order in the output.
func analyzeFile(ctx context.Context, p *absa.Pipeline, path string) ([]domain.CorpusRecord, error) {
	var rows []domain.Review
	err := corpus.EachFile(path, func(line int, row map[string]any) error {
		rv, err := app.MapReview(row)
		if err != nil {
			log.Warn().Int("line", line).Err(err).Msg("skipping row")
			return nil
		}
		rows = append(rows, rv)
		return nil
	})
	if err != nil {
		return nil, err
	}

	results := make([][]domain.CorpusRecord, len(rows))
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.GOMAXPROCS(0))
	for i, rv := range rows {
		eg.Go(func() error {
			res, err := p.Analyze(ectx, rv.Text)
			if err != nil {
				return fmt.Errorf("review %s: %w", rv.ID, err)
			}
			results[i] = res.Records(rv)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var out []domain.CorpusRecord
	for _, r := range results {
		out = append(out, r...)
	}
	return out, nil
}
