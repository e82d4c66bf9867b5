package projections

import (
	"context"
	"errors"

	"linecheck/internal/domain/pulsesurvey"
)

// PulseSurveyStore defines the survey store interface needed by the pulse results projection.
type PulseSurveyStore interface {
	GetByID(ctx context.Context, id string) (pulsesurvey.Survey, error)
}

// PulseResponseStore defines the response store interface needed by the pulse results projection.
type PulseResponseStore interface {
	ListBySurvey(ctx context.Context, surveyID string) ([]pulsesurvey.Response, error)
	CountBySurvey(ctx context.Context, surveyID string) (int, error)
}

// GetPulseResultsQuery carries input for the pulse results projection.
type GetPulseResultsQuery struct {
	SurveyID string
}

// GetPulseResultsDeps holds dependencies for the pulse results projection.
type GetPulseResultsDeps struct {
	SurveyStore   PulseSurveyStore
	ResponseStore PulseResponseStore
}

// ErrPulseSurveyNotFound is returned when the survey does not exist.
var ErrPulseSurveyNotFound = errors.New("pulse survey not found")

// PulseResultsResult carries the pulse results projection output. When
// Visible is false only Respondents and MinRespondents are populated —
// aggregates and comments stay zeroed so nothing below the privacy floor
// can leak through a template.
type PulseResultsResult struct {
	Survey         pulsesurvey.Survey
	Respondents    int
	MinRespondents int
	Visible        bool

	// Populated only when Visible.
	AverageScore float64
	ScoreCounts  [5]int // index 0 = score 1
	Comments     []string
}

// QueryGetPulseResults aggregates survey responses, enforcing the
// privacy floor: below MinRespondents only the counts are exposed.
// INVARIANT: per-response data is never returned below the floor
func QueryGetPulseResults(ctx context.Context, query GetPulseResultsQuery, deps GetPulseResultsDeps) (PulseResultsResult, error) {
	survey, err := deps.SurveyStore.GetByID(ctx, query.SurveyID)
	if err != nil {
		return PulseResultsResult{}, ErrPulseSurveyNotFound
	}

	count, err := deps.ResponseStore.CountBySurvey(ctx, query.SurveyID)
	if err != nil {
		return PulseResultsResult{}, err
	}

	result := PulseResultsResult{
		Survey:         survey,
		Respondents:    count,
		MinRespondents: survey.MinRespondents,
	}
	if !survey.ResultsVisible(count) {
		return result, nil
	}
	result.Visible = true

	responses, err := deps.ResponseStore.ListBySurvey(ctx, query.SurveyID)
	if err != nil {
		return PulseResultsResult{}, err
	}

	var sum int
	for _, r := range responses {
		sum += r.Score
		if r.Score >= pulsesurvey.MinScore && r.Score <= pulsesurvey.MaxScore {
			result.ScoreCounts[r.Score-1]++
		}
		if r.Comment != "" {
			result.Comments = append(result.Comments, r.Comment)
		}
	}
	if len(responses) > 0 {
		result.AverageScore = float64(sum) / float64(len(responses))
	}
	return result, nil
}
