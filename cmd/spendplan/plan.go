package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"spendplan/internal/core"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a file is an importable plan document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPlan(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: plan %s (%d, %s), %d categories, annual total %s\n",
				p.Plan.ID, p.Plan.Year, p.Plan.Currency, len(p.Categories), fixed(core.AnnualTotal(p)))
			return nil
		},
	}
}

func newSummaryCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary <file>",
		Short: "Print the totals of a plan document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readPlan(args[0])
			if err != nil {
				return err
			}
			s := core.Summarize(p)
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			return writeSummary(cmd.OutOrStdout(), p, s)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}

func newSampleCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write the built-in sample plan as an export document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			data, err := core.MarshalExport(core.Export(core.SamplePlan(now), now, core.SampleAppVersion))
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write sample plan: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "file to write instead of stdout")
	return cmd
}

// readPlan loads and validates a plan document from disk.
func readPlan(path string) (core.PlanFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.PlanFile{}, fmt.Errorf("read plan: %w", err)
	}
	p, err := core.Import(filepath.Base(path), data).Unwrap()
	if err != nil {
		return core.PlanFile{}, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func writeSummary(w io.Writer, p core.PlanFile, s core.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "Plan\t%s\t\n", p.Plan.ID)
	fmt.Fprintf(tw, "Year\t%d\t\n", s.Year)
	fmt.Fprintf(tw, "Currency\t%s\t\n", s.Currency)
	fmt.Fprintf(tw, "Categories\t%d\t\n", s.CategoryCount)
	fmt.Fprintf(tw, "Annual total\t%s\t\n", fixed(s.AnnualTotal))
	fmt.Fprintf(tw, "Monthly average\t%s\t\n", fixed(s.MonthlyAverage))
	fmt.Fprintf(tw, "Peak month\t%s (%s)\t\n", time.Month(s.Peak.Month), fixed(s.Peak.Amount))
	fmt.Fprintln(tw, "\t\t")
	for i, total := range s.MonthlyTotals {
		fmt.Fprintf(tw, "%s\t%s\t\n", time.Month(i+1), fixed(total))
	}
	return tw.Flush()
}

func fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
