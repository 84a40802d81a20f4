package main

import (
	"context"

	"github.com/spf13/cobra"

	"inventory-workers/internal/inventory/engine"
	"inventory-workers/internal/models"
)

var (
	summaryGroupBy string
	summaryValueBy string
	summaryLimit   int
)

var summarizeCmd = &cobra.Command{
	Use:       "summarize <expired|lowStock|topPerformer|pareto>",
	Short:     "Build a management report",
	Example:   `  inventory-cli summarize -f ventas.csv topPerformer --group-by salesperson --value-by total`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"expired", "lowStock", "topPerformer", "pareto"},
	RunE:      runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVar(&summaryGroupBy, "group-by", "", "canonical field to rank by (topPerformer)")
	summarizeCmd.Flags().StringVar(&summaryValueBy, "value-by", "", "canonical numeric field to sum (topPerformer)")
	summarizeCmd.Flags().IntVar(&summaryLimit, "limit", 0, "maximum items listed")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}

	// Reports are management-only; an empty role means the operator.
	r := role
	if r == "" {
		r = string(models.RolePrivileged)
	}
	summary, err := s.engine.Summarize(ctx, engine.SummaryRequest{
		Session: cliSession,
		Kind:    args[0],
		Role:    r,
		GroupBy: summaryGroupBy,
		ValueBy: summaryValueBy,
		Limit:   summaryLimit,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), summary)
}
