package grading

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateStanding(t *testing.T) {
	tests := []struct {
		gpa  float64
		want AcademicStanding
	}{
		{4.0, DeansList},
		{3.5, DeansList},
		{3.49, GoodStanding},
		{2.0, GoodStanding},
		{1.99, Probation},
		{0, Probation},
		{math.NaN(), NotYetRated},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EvaluateStanding(tt.gpa), "gpa=%v", tt.gpa)
	}
}

func TestComputeGPA_CreditWeighted(t *testing.T) {
	gpa, err := ComputeGPA([]CompletedCourse{
		{CourseCode: "CS101", Grade: GradeA, Credits: 4},
		{CourseCode: "MA101", Grade: GradeC, Credits: 2},
		{CourseCode: "PE100", Grade: GradeP, Credits: 1},
	})
	require.NoError(t, err)
	// (4*4 + 2*2) / 6
	assert.InDelta(t, 20.0/6.0, gpa, 1e-9)
}

func TestComputeGPA_UncreditedIsPlainMean(t *testing.T) {
	gpa, err := ComputeGPA([]CompletedCourse{
		{CourseCode: "A", Grade: GradeB},
		{CourseCode: "B", Grade: GradeF},
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.5, gpa, 1e-9)
	assert.Equal(t, Probation, EvaluateStanding(gpa))
}

func TestComputeGPA_ZeroCreditIgnoredWhenOthersCarryCredits(t *testing.T) {
	gpa, err := ComputeGPA([]CompletedCourse{
		{CourseCode: "SEM100", Grade: GradeF, Credits: 0},
		{CourseCode: "CS101", Grade: GradeA, Credits: 3},
		{CourseCode: "MA101", Grade: GradeB, Credits: 1},
	})
	require.NoError(t, err)
	// (4*3 + 3*1) / 4
	assert.InDelta(t, 3.75, gpa, 1e-9)
	assert.Equal(t, DeansList, EvaluateStanding(gpa))
}

func TestComputeGPA_NoImpactingCoursesIsNaN(t *testing.T) {
	gpa, err := ComputeGPA([]CompletedCourse{{CourseCode: "X", Grade: GradeW}, {CourseCode: "Y", Grade: GradeI}})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(gpa))
	assert.Equal(t, NotYetRated, EvaluateStanding(gpa))

	gpa, err = ComputeGPA(nil)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(gpa))
}

func TestComputeGPA_RejectsBadInput(t *testing.T) {
	_, err := ComputeGPA([]CompletedCourse{{CourseCode: "X", Grade: "Z"}})
	assert.Error(t, err)

	_, err = ComputeGPA([]CompletedCourse{{CourseCode: "X", Grade: GradeA, Credits: -1}})
	assert.Error(t, err)
}
