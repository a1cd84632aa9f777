package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gyeh/pacstays/internal/exitcode"
	"github.com/gyeh/pacstays/internal/logging"
	"github.com/gyeh/pacstays/internal/parquetread"
	"github.com/gyeh/pacstays/internal/pipeline"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run the pipeline over a Parquet snapshot (no database)",
	RunE:  runPlan,
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&cfg.ClaimsFile, "claims-file", "", "Path to Parquet claims snapshot (required)")
	f.IntVar(&cfg.Workers, "workers", 4, "Worker goroutines for partitioned stages")
	_ = planCmd.MarkFlagRequired("claims-file")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	if err := cfg.LoadCorrections(); err != nil {
		log.Error().Err(err).Msg("corrections validation failed")
		os.Exit(exitcode.ValidationError)
	}

	claims, err := parquetread.ReadAll(cfg.ClaimsFile)
	if err != nil {
		log.Error().Err(err).Msg("snapshot validation failed")
		os.Exit(exitcode.ValidationError)
	}

	// No dimensions or encounters offline: provider display names fall
	// back to billed names, bed-day tagging uses the built-in revenue
	// ranges, and linkage stats stay zero.
	in := &pipeline.Inputs{Claims: claims}
	res := pipeline.Build(log, &cfg, in, uuid.New(), time.Now().UTC())
	s := &res.Summary

	fmt.Println("=== pacload plan ===")
	fmt.Printf("Snapshot:        %s\n", cfg.ClaimsFile)
	fmt.Printf("Claim rows:      %d (rejected %d, voided %d, filtered %d)\n",
		s.RowsLoaded, s.RowsRejected, s.LinesVoided, s.LinesFiltered)
	fmt.Printf("Coverage:        %s .. %s\n",
		s.CoverageStart.Format("2006-01-02"), s.CoverageEnd.Format("2006-01-02"))
	fmt.Printf("Date repairs:    %d single-date, %d gap-chain\n",
		s.SingleDateFixes, s.GapChainFixes)
	fmt.Printf("Stays:           %d initial, %d splits repaired, %d final\n",
		s.StaysInitial, s.SplitsRepaired, s.StaysFinal)
	fmt.Printf("Residual pairs:  %d\n", s.ResidualAdjacentPairs)
	fmt.Printf("LOS exceptions:  %d recovered, %d clamped\n", s.LOSRecovered, s.LOSClamped)
	fmt.Printf("Excluded stays:  %d\n", s.StaysExcluded)
	fmt.Println("Schema validation: OK")
	return nil
}
