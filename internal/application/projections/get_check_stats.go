package projections

import (
	"context"

	"linecheck/internal/domain/microcheck"
)

// CheckStatsRunStore defines the run store interface needed by the check stats projection.
type CheckStatsRunStore interface {
	ListByLocation(ctx context.Context, locationID string, limit int) ([]microcheck.Run, error)
}

// CheckStatsResponseStore defines the response store interface needed by the check stats projection.
type CheckStatsResponseStore interface {
	ListByRun(ctx context.Context, runID string) ([]microcheck.Response, error)
}

// GetCheckStatsQuery carries input for the check stats projection.
type GetCheckStatsQuery struct {
	LocationID string
	Limit      int // recent runs considered (defaults to 30)
}

// GetCheckStatsDeps holds dependencies for the check stats projection.
type GetCheckStatsDeps struct {
	RunStore      CheckStatsRunStore
	ResponseStore CheckStatsResponseStore
}

// RunSummary is one run with its response tally.
type RunSummary struct {
	Run    microcheck.Run
	Passed int
	Failed int
	NA     int
}

// CheckStatsResult carries the check stats projection output.
type CheckStatsResult struct {
	LocationID   string
	TotalRuns    int
	Completed    int
	PassRate     float64 // passed / (passed+failed), NA excluded
	FailedItems  int
	RecentRuns   []RunSummary
}

// QueryGetCheckStats tallies pass/fail results across a location's
// recent runs. NA answers are excluded from the pass rate.
// INVARIANT: Store state is not mutated
func QueryGetCheckStats(ctx context.Context, query GetCheckStatsQuery, deps GetCheckStatsDeps) (CheckStatsResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 30
	}

	runs, err := deps.RunStore.ListByLocation(ctx, query.LocationID, limit)
	if err != nil {
		return CheckStatsResult{}, err
	}

	result := CheckStatsResult{LocationID: query.LocationID, TotalRuns: len(runs)}
	var passed, failed int

	for _, run := range runs {
		summary := RunSummary{Run: run}
		if run.Status == microcheck.RunStatusCompleted {
			result.Completed++
		}

		responses, err := deps.ResponseStore.ListByRun(ctx, run.ID)
		if err != nil {
			continue
		}
		for _, resp := range responses {
			switch resp.Result {
			case microcheck.ResultPass:
				summary.Passed++
			case microcheck.ResultFail:
				summary.Failed++
			case microcheck.ResultNA:
				summary.NA++
			}
		}
		passed += summary.Passed
		failed += summary.Failed
		result.RecentRuns = append(result.RecentRuns, summary)
	}

	result.FailedItems = failed
	if passed+failed > 0 {
		result.PassRate = float64(passed) / float64(passed+failed)
	}
	return result, nil
}
