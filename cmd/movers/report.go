package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"MarketMovers/internal/exporter"
	"MarketMovers/internal/model"
	"MarketMovers/internal/notifier"
	"MarketMovers/internal/report"
)

var (
	reportSymbols string
	reportStart   string
	reportEnd     string
	reportJSON    bool
	reportXLSX    bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run one market cap movers report",
	Long:  `Runs the report once for the given symbols and date range and prints it. Without --symbols the configured watchlist is used.`,
	Example: `  movers report --symbols "AAPL, MSFT" --start 2024-01-01 --end 2024-03-01
  movers report --json | jq .top_gainers`,
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVarP(&reportSymbols, "symbols", "s", "", "comma-separated ticker symbols")
	f.StringVar(&reportStart, "start", "", "start date (YYYY-MM-DD), inclusive")
	f.StringVar(&reportEnd, "end", "", "end date (YYYY-MM-DD), exclusive")
	f.BoolVar(&reportJSON, "json", false, "print the report as JSON")
	f.BoolVar(&reportXLSX, "xlsx", false, "also save an xlsx workbook to the export directory")
}

func runReport(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	symbols := a.cfg.Report.Symbols
	if cmd.Flags().Changed("symbols") {
		symbols = reportSymbols
	}
	rng, err := report.ResolveRange(reportStart, reportEnd, time.Now(), a.cfg.Report.LookbackDays)
	if err != nil {
		return err
	}

	rep, runErr := a.pipeline.Run(cmd.Context(), report.Request{Symbols: symbols, Range: rng})
	if err := a.recorder.RecordRun(rep); err != nil {
		a.logger.Error("record run", zap.Error(err))
	}

	out := cmd.OutOrStdout()
	if reportJSON {
		data, err := json.Marshal(rep)
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		out.Write(pretty.Pretty(data))
	} else {
		fmt.Fprint(out, notifier.FormatText(rep))
	}

	if runErr != nil {
		return errors.New(rep.Message)
	}
	if reportXLSX && rep.Outcome == model.OutcomeOK {
		path, err := exporter.SaveFile(a.cfg.Export.Dir, rep)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "workbook saved to %s\n", path)
	}
	return nil
}
