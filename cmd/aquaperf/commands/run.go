package commands

import (
	"context"
	"encoding/json"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/aquaperf/internal/app"
	"github.com/mamadbah2/aquaperf/internal/config"
	"github.com/mamadbah2/aquaperf/internal/domain/models"
)

type batchSummary struct {
	FarmID   string               `json:"farm_id"`
	Units    int                  `json:"units"`
	Alerts   int                  `json:"alerts"`
	Failures []models.UnitFailure `json:"failures,omitempty"`
	Best     string               `json:"best_performer,omitempty"`
}

func newRunCmd(root *rootOptions) *cobra.Command {
	var farmID string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the evaluation batch against the configured sheet and database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.envFile)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Reporting.BatchTimeout)
			defer cancel()

			application, err := app.Build(ctx, cfg, root.log)
			if err != nil {
				return err
			}
			defer func() {
				if err := application.Close(context.Background()); err != nil {
					root.log.Warn("failed to close connections", zap.Error(err))
				}
			}()

			now := time.Now().UTC()
			var reports []models.BatchReport
			if farmID != "" {
				report, runErr := application.Performance.RunBatch(ctx, farmID, now)
				reports, err = []models.BatchReport{report}, runErr
			} else {
				reports, err = application.Performance.RunAll(ctx, now)
			}

			summaries := make([]batchSummary, 0, len(reports))
			for _, r := range reports {
				if r.FarmID == "" {
					continue
				}
				summaries = append(summaries, batchSummary{
					FarmID:   r.FarmID,
					Units:    len(r.Snapshots),
					Alerts:   len(r.Alerts),
					Failures: r.Failures,
					Best:     r.Benchmark.BestPerformer,
				})
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if encErr := enc.Encode(summaries); encErr != nil {
				return encErr
			}
			return err
		},
	}

	cmd.Flags().StringVar(&farmID, "farm", "", "evaluate a single farm instead of all farms")
	return cmd
}
