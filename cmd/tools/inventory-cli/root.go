package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"inventory-workers/internal/common/config"
	"inventory-workers/internal/common/logger"
	"inventory-workers/internal/inventory/engine"
	"inventory-workers/internal/models"
)

const cliSession = "cli"

var (
	csvFile string
	cfgFile string
	role    string
	rate    float64
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "inventory-cli",
	Short: "Ask questions and build reports over a local inventory CSV",
	Long: `inventory-cli loads a spreadsheet exported as CSV into an in-process
inventory engine and runs one operation against it: a free-text question,
a management report, or the detected column mapping.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&csvFile, "file", "f", "", "inventory CSV file (required)")
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file for inventory settings")
	rootCmd.PersistentFlags().StringVarP(&role, "role", "r", "", "caller role (empty is public)")
	rootCmd.PersistentFlags().Float64Var(&rate, "rate", 0, "exchange rate, BS per USD")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log engine activity to stderr")
	rootCmd.MarkPersistentFlagRequired("file")

	rootCmd.AddCommand(askCmd, summarizeCmd, schemaCmd)
}

// session is an engine with the CSV already ingested.
type session struct {
	engine *engine.Engine
	ingest *engine.IngestResult
}

func openSession(ctx context.Context) (*session, error) {
	cfg := engine.DefaultConfig()
	if cfgFile != "" {
		inv, err := config.LoadInventory(cfgFile)
		if err != nil {
			return nil, err
		}
		if cfg, err = engine.FromSettings(*inv); err != nil {
			return nil, err
		}
	}

	log := logger.NewNoOpLogger()
	if verbose {
		zapLog, err := logger.NewWithOutput("debug", "console", "stderr")
		if err != nil {
			return nil, err
		}
		log = logger.NewZapAdapter(zapLog)
	}

	eng, err := engine.New(cfg, log)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(csvFile)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", csvFile, err)
	}
	defer f.Close()

	headers, rows, err := readCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", csvFile, err)
	}
	res, err := eng.Ingest(ctx, cliSession, headers, rows)
	if err != nil {
		return nil, err
	}

	if rate > 0 {
		if _, err := eng.SetRate(ctx, cliSession, string(models.RolePrivileged), rate); err != nil {
			return nil, err
		}
	}
	return &session{engine: eng, ingest: res}, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
