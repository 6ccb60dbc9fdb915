package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-academics/internal/shared"
)

func f(v float64) *float64 { return &v }

func standardSet() []AssessmentDefinition {
	return []AssessmentDefinition{
		{ID: "quiz", Weight: 15, MaxScore: 20},
		{ID: "midterm", Weight: 35, MaxScore: 50},
		{ID: "final", Weight: 50, MaxScore: 80},
	}
}

func TestComputeWeightedPercentage_FullMarksIsHundred(t *testing.T) {
	sets := [][]AssessmentDefinition{
		standardSet(),
		{{ID: "only", Weight: 100, MaxScore: 7}},
		{{ID: "a", Weight: 33.3, MaxScore: 3}, {ID: "b", Weight: 33.3, MaxScore: 9}, {ID: "c", Weight: 33.4, MaxScore: 11}},
	}
	for _, defs := range sets {
		scores := map[string]ScoreEntry{}
		for _, d := range defs {
			scores[d.ID] = ScoreEntry{AssessmentID: d.ID, Score: f(d.MaxScore)}
		}
		got, ok := ComputeWeightedPercentage(defs, scores).Value()
		require.True(t, ok)
		assert.Equal(t, 100, got)
	}
}

func TestComputeWeightedPercentage_MissingScoreIsIncomplete(t *testing.T) {
	defs := standardSet()

	missingEntry := map[string]ScoreEntry{
		"quiz":    {AssessmentID: "quiz", Score: f(20)},
		"midterm": {AssessmentID: "midterm", Score: f(50)},
	}
	assert.False(t, ComputeWeightedPercentage(defs, missingEntry).IsComplete())

	nilScore := map[string]ScoreEntry{
		"quiz":    {AssessmentID: "quiz", Score: f(20)},
		"midterm": {AssessmentID: "midterm", Score: f(50)},
		"final":   {AssessmentID: "final"},
	}
	assert.False(t, ComputeWeightedPercentage(defs, nilScore).IsComplete())
}

func TestComputeWeightedPercentage_ZeroIsNotIncomplete(t *testing.T) {
	defs := []AssessmentDefinition{{ID: "x", Weight: 100, MaxScore: 10}}
	p := ComputeWeightedPercentage(defs, map[string]ScoreEntry{"x": {Score: f(0)}})

	v, ok := p.Value()
	assert.True(t, ok)
	assert.Equal(t, 0, v)
	assert.NotEqual(t, Incomplete(), p)
}

func TestComputeWeightedPercentage_LegacyMaxUsesWeight(t *testing.T) {
	defs := []AssessmentDefinition{
		{ID: "lab", Weight: 15, MaxScore: 40},
		{ID: "exam", Weight: 85, MaxScore: 85},
	}
	scores := map[string]ScoreEntry{
		"lab":  {Score: f(11), MaxScore: f(100)},
		"exam": {Score: f(85)},
	}
	// 11/15*15 + 85/85*85 = 96 out of 100
	got, ok := ComputeWeightedPercentage(defs, scores).Value()
	require.True(t, ok)
	assert.Equal(t, 96, got)
}

func TestComputeWeightedPercentage_EntryMaxOverridesDefinition(t *testing.T) {
	defs := []AssessmentDefinition{{ID: "x", Weight: 100, MaxScore: 10}}
	scores := map[string]ScoreEntry{"x": {Score: f(30), MaxScore: f(40)}}

	got, ok := ComputeWeightedPercentage(defs, scores).Value()
	require.True(t, ok)
	assert.Equal(t, 75, got)
}

func TestComputeWeightedPercentage_NonPositiveMaxIsSkipped(t *testing.T) {
	defs := []AssessmentDefinition{
		{ID: "broken", Weight: 50, MaxScore: 10},
		{ID: "ok", Weight: 50, MaxScore: 10},
	}
	scores := map[string]ScoreEntry{
		"broken": {Score: f(3), MaxScore: f(0)},
		"ok":     {Score: f(8)},
	}
	got, ok := ComputeWeightedPercentage(defs, scores).Value()
	require.True(t, ok)
	assert.Equal(t, 80, got)

	allBroken := map[string]ScoreEntry{
		"broken": {Score: f(3), MaxScore: f(0)},
		"ok":     {Score: f(3), MaxScore: f(-1)},
	}
	assert.False(t, ComputeWeightedPercentage(defs, allBroken).IsComplete())
}

func TestComputeWeightedPercentage_NoAssessmentsIsIncomplete(t *testing.T) {
	assert.False(t, ComputeWeightedPercentage(nil, nil).IsComplete())
}

func TestComputeWeightedPercentage_RoundsOnce(t *testing.T) {
	defs := []AssessmentDefinition{
		{ID: "a", Weight: 50, MaxScore: 3},
		{ID: "b", Weight: 50, MaxScore: 3},
	}
	scores := map[string]ScoreEntry{"a": {Score: f(2)}, "b": {Score: f(2)}}
	// 66.67 rounded at the end only
	got, _ := ComputeWeightedPercentage(defs, scores).Value()
	assert.Equal(t, 67, got)
}

func TestValidateWeights(t *testing.T) {
	require.NoError(t, ValidateWeights(standardSet()))

	cases := map[string][]AssessmentDefinition{
		"empty":        nil,
		"sum below":    {{ID: "a", Weight: 40, MaxScore: 1}, {ID: "b", Weight: 40, MaxScore: 1}},
		"sum above":    {{ID: "a", Weight: 60, MaxScore: 1}, {ID: "b", Weight: 60, MaxScore: 1}},
		"negative":     {{ID: "a", Weight: -10, MaxScore: 1}, {ID: "b", Weight: 110, MaxScore: 1}},
		"duplicate id": {{ID: "a", Weight: 50, MaxScore: 1}, {ID: "a", Weight: 50, MaxScore: 1}},
		"empty id":     {{ID: "", Weight: 100, MaxScore: 1}},
		"zero max":     {{ID: "a", Weight: 100, MaxScore: 0}},
	}
	for name, defs := range cases {
		t.Run(name, func(t *testing.T) {
			err := ValidateWeights(defs)
			require.Error(t, err)
			assert.True(t, shared.IsValidation(err))
		})
	}
}
