package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"review_absa/internal/absa"
	"review_absa/internal/app"
	"review_absa/internal/domain"
)

func newAnalyzeCmd(g *globalFlags) *cobra.Command {
	var trace bool
	cmd := &cobra.Command{
		Use:   "analyze [review text]",
		Short: "Analyze one review (reads stdin when no text is given)",
		Example: `  absactl analyze "Great camera but terrible battery."
  echo "The screen is dim." | absactl analyze --trace`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 || text == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(b)
			}

			p, _, err := g.pipeline(cmd.Context())
			if err != nil {
				return err
			}
			if trace {
				tr, err := p.Trace(cmd.Context(), text)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), traceView(tr))
			}
			out, err := app.NewAnalysisService(p, nil, nil).Analyze(cmd.Context(), text)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&trace, "trace", false, "print sentences, clauses, matched aspects and per-clause scores")
	return cmd
}

type clauseJSON struct {
	Sentence     string                       `json:"sentence"`
	Clause       string                       `json:"clause"`
	Aspects      []string                     `json:"aspects"`
	Sentiment    domain.Sentiment             `json:"sentiment,omitempty"`
	Confidence   float64                      `json:"confidence,omitempty"`
	Distribution map[domain.Sentiment]float64 `json:"distribution,omitempty"`
}

type traceJSON struct {
	Sentences []string         `json:"sentences"`
	Clauses   []clauseJSON     `json:"clauses"`
	Result    app.AnalysisView `json:"result"`
}

func traceView(tr absa.Trace) traceJSON {
	out := traceJSON{Sentences: tr.Sentences, Clauses: make([]clauseJSON, 0, len(tr.Clauses)), Result: app.MapAnalysis(tr.Result)}
	for _, c := range tr.Clauses {
		cj := clauseJSON{Sentence: c.Sentence, Clause: c.Text, Aspects: c.Aspects}
		if c.Aspects == nil {
			cj.Aspects = []string{}
		}
		if c.Result != nil {
			cj.Sentiment = c.Result.Label
			cj.Confidence = c.Result.Confidence
			cj.Distribution = c.Result.Distribution
		}
		out.Clauses = append(out.Clauses, cj)
	}
	return out
}
