package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/nugget/credo-bot/internal/ledger"
)

const historyLimit = 14

// runHistory lists the most recent ledger entries.
func runHistory(ctx context.Context, stdout io.Writer, opts options) error {
	cfg, _, err := loadConfig(opts)
	if err != nil {
		return err
	}
	led, err := ledger.Open(filepath.Join(cfg.DataDir, ledgerFile))
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer led.Close()

	records, err := led.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}

	if opts.outputFmt == "json" {
		if records == nil {
			records = []ledger.Record{}
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Fprintln(stdout, "no deliveries recorded")
		return nil
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSTATUS\tCHANNEL\tUPDATED")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Date, r.Status, r.Deliverer, r.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}
