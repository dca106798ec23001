package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"review_absa/internal/absa"
	"review_absa/internal/adapters/observability"
	"review_absa/internal/bootstrap"
	"review_absa/internal/shared"
)

type globalFlags struct {
	lexicon     string
	model       string
	backend     string
	modelServer string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "absactl",
		Short: "Aspect-based sentiment analysis for product reviews",
		Long: `absactl splits reviews into clauses, detects product aspects and classifies
the sentiment expressed about each one. It also computes corpus insights
(aspect distribution, rating mismatch, root-cause keywords) over labeled files.

Settings default to the same environment variables the services read.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Logger = observability.NewCLILogger(g.verbose)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.lexicon, "lexicon", "", "aspect lexicon YAML (default: LEXICON_PATH or built-in)")
	pf.StringVar(&g.model, "model", "", "linear model artifact (default: MODEL_PATH)")
	pf.StringVar(&g.backend, "backend", "", "classifier backend: linear|remote (default: CLASSIFIER_BACKEND)")
	pf.StringVar(&g.modelServer, "model-server", "", "model server URL for the remote backend")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "verbose logging to stderr")

	root.AddCommand(newAnalyzeCmd(g), newInsightsCmd(g), newLexiconCmd(g))
	return root
}

// config overlays explicitly set flags on the environment config.
func (g *globalFlags) config() shared.Config {
	cfg := shared.Load()
	if g.lexicon != "" {
		cfg.LexiconPath = g.lexicon
	}
	if g.model != "" {
		cfg.ModelPath = g.model
	}
	if g.backend != "" {
		cfg.ClassifierBackend = g.backend
	}
	if g.modelServer != "" {
		cfg.ModelServerURL = g.modelServer
	}
	// a one-shot process gains nothing from memoization
	cfg.ClassifyCacheTTL = 0
	return cfg
}

func (g *globalFlags) pipeline(ctx context.Context) (*absa.Pipeline, shared.Config, error) {
	cfg := g.config()
	p, err := bootstrap.Pipeline(ctx, cfg)
	return p, cfg, err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
