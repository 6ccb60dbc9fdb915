// Package grading turns assessment scores into percentages, letter grades,
// GPA and academic standing. Everything here is pure; storage lives in the
// callers.
package grading

import (
	"math"

	"github.com/mind-engage/mindengage-academics/internal/shared"
)

// legacyMaxScore is the max_score older rows were recorded with regardless
// of the assessment's real maximum. See effectiveMax.
const legacyMaxScore = 100

const weightTolerance = 1e-9

// AssessmentDefinition is a weighted graded component of a course.
type AssessmentDefinition struct {
	ID       string  `json:"id"`
	Name     string  `json:"name,omitempty"`
	Weight   float64 `json:"weight"`    // 0..100, sums to 100 per course
	MaxScore float64 `json:"max_score"` // > 0
}

// ScoreEntry is a student's raw score for one assessment. A nil Score means
// the score has not been entered yet.
type ScoreEntry struct {
	AssessmentID string   `json:"assessment_id"`
	Score        *float64 `json:"score"`
	MaxScore     *float64 `json:"max_score,omitempty"`
}

// Percentage is either a complete 0..100 value or incomplete. The zero
// value is incomplete, so a missing result can never read as 0%.
type Percentage struct {
	value    int
	complete bool
}

func Complete(v int) Percentage { return Percentage{value: v, complete: true} }
func Incomplete() Percentage    { return Percentage{} }

// Value returns the percentage and whether it is complete.
func (p Percentage) Value() (int, bool) { return p.value, p.complete }

func (p Percentage) IsComplete() bool { return p.complete }

// effectiveMax resolves the denominator for one entry. Rows stored with the
// legacy max of 100 were really "points out of <weight>", so the weight is
// used instead.
func effectiveMax(def AssessmentDefinition, e ScoreEntry) float64 {
	if e.MaxScore != nil {
		if *e.MaxScore == legacyMaxScore {
			return def.Weight
		}
		return *e.MaxScore
	}
	return def.MaxScore
}

// ComputeWeightedPercentage aggregates per-assessment scores into a single
// rounded percentage. Any definition without an entered score makes the
// whole result incomplete; there is no partial credit.
func ComputeWeightedPercentage(assessments []AssessmentDefinition, scores map[string]ScoreEntry) Percentage {
	var weighted, totalWeight float64
	for _, def := range assessments {
		e, ok := scores[def.ID]
		if !ok || e.Score == nil {
			return Incomplete()
		}
		max := effectiveMax(def, e)
		if max <= 0 {
			continue
		}
		weighted += *e.Score / max * def.Weight
		totalWeight += def.Weight
	}
	if totalWeight == 0 {
		return Incomplete()
	}
	return Complete(int(math.Round(100 * weighted / totalWeight)))
}

// ValidateWeights is the definition-time check for a course's assessment
// set: non-empty, unique ids, weights in [0,100] summing to 100, positive
// maxima.
func ValidateWeights(assessments []AssessmentDefinition) error {
	if len(assessments) == 0 {
		return shared.Validation("grading", "ValidateWeights", "no assessments defined")
	}
	seen := make(map[string]struct{}, len(assessments))
	sum := 0.0
	for _, a := range assessments {
		if a.ID == "" {
			return shared.Validation("grading", "ValidateWeights", "assessment id is empty")
		}
		if _, dup := seen[a.ID]; dup {
			return shared.Validation("grading", "ValidateWeights", "duplicate assessment %q", a.ID)
		}
		seen[a.ID] = struct{}{}
		if math.IsNaN(a.Weight) || a.Weight < 0 || a.Weight > 100 {
			return shared.Validation("grading", "ValidateWeights", "assessment %q weight %v outside [0,100]", a.ID, a.Weight)
		}
		if !(a.MaxScore > 0) {
			return shared.Validation("grading", "ValidateWeights", "assessment %q max score must be positive", a.ID)
		}
		sum += a.Weight
	}
	if math.Abs(sum-100) > weightTolerance {
		return shared.Validation("grading", "ValidateWeights", "weights sum to %g, want 100", sum)
	}
	return nil
}
