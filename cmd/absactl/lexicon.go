package main

import (
	"github.com/spf13/cobra"

	"review_absa/internal/lexicon"
)

func newLexiconCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "lexicon",
		Short: "Validate and print the effective aspect lexicon as YAML",
		Example: `  absactl lexicon
  absactl lexicon --lexicon artifacts/lexicon.yaml > my-lexicon.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lex, err := lexicon.LoadFile(g.config().LexiconPath)
			if err != nil {
				return err
			}
			b, err := lexicon.Marshal(lex)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}
}
