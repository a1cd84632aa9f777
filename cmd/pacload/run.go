package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/pacstays/internal/db"
	"github.com/gyeh/pacstays/internal/exitcode"
	"github.com/gyeh/pacstays/internal/logging"
	"github.com/gyeh/pacstays/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full stay-building pipeline and publish the serving tables",
	RunE:  runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&cfg.ClaimsFile, "claims-file", "", "Read claim lines from a Parquet snapshot instead of the landing table")
	f.BoolVar(&cfg.DryRun, "dry-run", false, "Build everything but skip the publish transaction")
	f.IntVar(&cfg.Workers, "workers", 4, "Worker goroutines for partitioned stages")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if err := cfg.ValidateWithDSN(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.LoadCorrections(); err != nil {
		log.Error().Err(err).Msg("corrections validation failed")
		os.Exit(exitcode.ValidationError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	summary, err := pipeline.Run(ctx, pool, log, &cfg)
	if err != nil {
		var pe *pipeline.PipelineError
		if errors.As(err, &pe) {
			log.Error().Err(pe.Err).Str("phase", pe.Phase).Msg("run failed")
			switch pe.Phase {
			case "register", "load":
				os.Exit(exitcode.LoadError)
			case "publish":
				os.Exit(exitcode.PublishError)
			default:
				os.Exit(exitcode.BuildError)
			}
		}
		log.Error().Err(err).Msg("run failed")
		os.Exit(exitcode.BuildError)
	}

	fmt.Printf("Run complete: %d stays, %d stay rows, %d visit rows (%.1fs)\n",
		summary.StaysFinal, summary.RowsPublishedStays, summary.RowsPublishedVisits,
		summary.DurationTotal.Seconds())
	return nil
}
