package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"inventory-workers/internal/inventory/engine"
	"inventory-workers/internal/inventory/query"
)

var (
	askSource    string
	askThreshold float64
	askSuggest   int
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a free-text question about the inventory",
	Example: `  inventory-cli ask -f farmacia.csv "cuanto cuesta el paracetamol"
  inventory-cli ask -f farmacia.csv -r gerencia "que productos estan vencidos"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askSource, "source", "typed", "how the question was captured: typed, voice or ocr")
	askCmd.Flags().Float64Var(&askThreshold, "threshold", 0, "override the match threshold (0-100)")
	askCmd.Flags().IntVar(&askSuggest, "suggest", 0, "also list the N closest products")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}

	text := strings.Join(args, " ")
	req := engine.AskRequest{
		Session: cliSession,
		Text:    text,
		Role:    role,
		Source:  query.ParseSource(askSource),
	}
	if cmd.Flags().Changed("threshold") {
		req.Threshold = &askThreshold
	}

	res, err := s.engine.Ask(ctx, req)
	if err != nil {
		return err
	}

	out := struct {
		*engine.AskResult
		Closest []string `json:"closest,omitempty"`
	}{AskResult: res}
	if askSuggest > 0 {
		if out.Closest, err = s.engine.Suggest(cliSession, text, askSuggest); err != nil {
			return err
		}
	}
	return printJSON(cmd.OutOrStdout(), out)
}
