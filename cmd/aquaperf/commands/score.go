package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/aquaperf/internal/analytics"
	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

// scoreInput is the file format read by the score command.
type scoreInput struct {
	FarmID string                `json:"farm_id"`
	Now    *time.Time            `json:"now,omitempty"`
	Units  []analytics.UnitInput `json:"units"`
}

type scoreOptions struct {
	input  string
	format string
	now    string
	params analytics.Params
}

func newScoreCmd(root *rootOptions) *cobra.Command {
	opts := &scoreOptions{params: analytics.DefaultParams()}

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score units from a JSON file without touching any backing service",
		Example: `  aquaperf score --input farm.json
  cat farm.json | aquaperf score --input - --format table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readScoreInput(cmd.InOrStdin(), opts.input)
			if err != nil {
				return err
			}

			now, err := resolveNow(opts.now, in.Now)
			if err != nil {
				return err
			}

			report := analytics.EvaluateBatch(in.FarmID, in.Units, opts.params, now)
			root.log.Debug("batch scored")

			switch opts.format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			case "table":
				return writeTable(cmd.OutOrStdout(), report)
			default:
				return fmt.Errorf("unknown format %q (want json or table)", opts.format)
			}
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "input JSON file, - for stdin")
	f.StringVarP(&opts.format, "format", "f", "json", "output format: json or table")
	f.StringVar(&opts.now, "now", "", "evaluation time (RFC3339), defaults to the file's now or the current time")
	f.Float64Var(&opts.params.TargetFCR, "target-fcr", opts.params.TargetFCR, "FCR below which the score earns a bonus")
	f.Float64Var(&opts.params.TargetMassKg, "target-mass", opts.params.TargetMassKg, "default harvest mass in kg")
	f.Float64Var(&opts.params.JuvenileMassKg, "juvenile-mass", opts.params.JuvenileMassKg, "mass at introduction in kg")
	f.Float64Var(&opts.params.FeedUnitPrice, "feed-price", opts.params.FeedUnitPrice, "price per kg of feed")
	f.Float64Var(&opts.params.SalePricePerKg, "sale-price", opts.params.SalePricePerKg, "fallback sale price per kg")
	f.IntVar(&opts.params.RecentWindowDays, "window-days", opts.params.RecentWindowDays, "recent window in days")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func readScoreInput(stdin io.Reader, path string) (scoreInput, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return scoreInput{}, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var in scoreInput
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return scoreInput{}, fmt.Errorf("decode input: %w", err)
	}
	return in, nil
}

func resolveNow(flag string, fromFile *time.Time) (time.Time, error) {
	switch {
	case flag != "":
		now, err := time.Parse(time.RFC3339, flag)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse --now: %w", err)
		}
		return now, nil
	case fromFile != nil:
		return *fromFile, nil
	default:
		return time.Now().UTC(), nil
	}
}

func writeTable(out io.Writer, report models.BatchReport) error {
	ranks := make(map[string]models.ComparisonResult, len(report.Comparisons))
	for _, c := range report.Comparisons {
		ranks[c.UnitID] = c
	}
	alerts := make(map[string]int)
	for _, a := range report.Alerts {
		alerts[a.UnitID]++
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tUNIT\tSTATUS\tSCORE\tPCTL\tFCR\tMORTALITY%\tGROWTH g/d\tALERTS")
	for _, s := range report.Snapshots {
		rank, pctl := "-", "-"
		if c, ok := ranks[s.UnitID]; ok {
			rank, pctl = fmt.Sprint(c.Rank), fmt.Sprint(c.Percentile)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%.2f\t%.2f\t%.1f\t%d\n",
			rank, s.UnitID, s.Status, s.Score, pctl, s.FCR, s.MortalityRate, s.DailyGrowthGPerDay, alerts[s.UnitID])
	}
	if b := report.Benchmark; b.UnitCount > 0 {
		fmt.Fprintf(w, "\nactive units: %d\tavg score: %.1f\tbest: %s\n", b.UnitCount, b.AvgScore, b.BestPerformer)
	}
	return w.Flush()
}
