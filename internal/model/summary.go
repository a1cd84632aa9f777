package model

import "time"

// RunSummary captures metrics from a single pipeline run.
type RunSummary struct {
	RunID         string
	RunAt         time.Time
	CoverageStart time.Time
	CoverageEnd   time.Time

	RowsLoaded   int64
	RowsRejected int64

	LinesExtracted  int64
	LinesVoided     int64
	LinesFiltered   int64
	SingleDateFixes int64
	GapChainFixes   int64

	StaysInitial   int64
	StaysMerged    int64
	StaysFinal     int64
	SplitsRepaired int64
	// ResidualAdjacentPairs counts adjacent-touching stay pairs left
	// after the split-correction fixpoint; anything non-zero is a bug.
	ResidualAdjacentPairs int64

	LOSRecovered  int64
	LOSClamped    int64
	StaysExcluded int64

	EncountersLoaded int64
	PriorLinks       int64
	VisitLinks       int64
	Readmissions     int64

	RowsPublishedStays  int64
	RowsPublishedVisits int64

	DurationLoad    time.Duration
	DurationBuild   time.Duration
	DurationLink    time.Duration
	DurationPublish time.Duration
	DurationTotal   time.Duration
}
