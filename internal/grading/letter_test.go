package grading

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-academics/internal/shared"
)

func TestGradeToPoints(t *testing.T) {
	pts, ok, err := GradeToPoints(GradeA)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4.0, pts)

	pts, ok, err = GradeToPoints(GradeF)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.0, pts)

	for _, g := range []LetterGrade{GradeP, GradeI, GradeW, GradeDO, GradeNG} {
		_, ok, err := GradeToPoints(g)
		require.NoError(t, err)
		assert.False(t, ok, "grade %s should have no GPA impact", g)
	}
}

func TestGradeToPoints_Descending(t *testing.T) {
	prev := 5.0
	for _, g := range AllGrades()[:10] {
		pts, ok, err := GradeToPoints(g)
		require.NoError(t, err)
		require.True(t, ok)
		assert.LessOrEqual(t, pts, prev, "grade %s", g)
		prev = pts
	}
}

func TestGradeToLabel(t *testing.T) {
	cases := map[LetterGrade]string{
		GradeAPlus:  "A+",
		GradeAMinus: "A-",
		GradeCPlus:  "C+",
		GradeP:      "Pass",
		GradeDO:     "Dropped Out",
	}
	for g, want := range cases {
		got, err := GradeToLabel(g)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestInvalidGrade(t *testing.T) {
	_, _, err := GradeToPoints("E")
	var ige *InvalidGradeError
	require.True(t, errors.As(err, &ige))
	assert.Equal(t, "E", ige.Value)
	assert.True(t, shared.IsValidation(err))

	_, err = GradeToLabel("")
	assert.True(t, shared.IsValidation(err))
}

func TestIsPassing(t *testing.T) {
	assert.True(t, IsPassing(GradeD))
	assert.True(t, IsPassing(GradeAPlus))
	assert.False(t, IsPassing(GradeF))
	assert.False(t, IsPassing(GradeP))
	assert.False(t, IsPassing(GradeW))
	assert.False(t, IsPassing("bogus"))
}

func TestParseLetterGrade(t *testing.T) {
	cases := map[string]LetterGrade{
		"A_PLUS": GradeAPlus,
		"a+":     GradeAPlus,
		"B-":     GradeBMinus,
		" c ":    GradeC,
		"Pass":   GradeP,
		"ng":     GradeNG,
	}
	for in, want := range cases {
		got, err := ParseLetterGrade(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLetterGrade("Z")
	assert.Error(t, err)
}

func TestLetterGradeJSON(t *testing.T) {
	b, err := json.Marshal(CompletedCourse{CourseCode: "CS101", Grade: GradeBPlus, Credits: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"course_code":"CS101","grade":"B_PLUS","credits":3}`, string(b))

	var c CompletedCourse
	require.NoError(t, json.Unmarshal([]byte(`{"course_code":"CS102","grade":"A-"}`), &c))
	assert.Equal(t, GradeAMinus, c.Grade)

	assert.Error(t, json.Unmarshal([]byte(`{"grade":"Q"}`), &c))
}

func TestDefaultScale_EveryBoundaryHasLabel(t *testing.T) {
	s := DefaultScale()
	for p := 0; p <= 100; p++ {
		g := s.PercentageToGrade(float64(p))
		label, err := GradeToLabel(g)
		require.NoError(t, err, "pct %d", p)
		assert.NotEmpty(t, label)
	}
	for _, b := range s.Bands() {
		label, err := GradeToLabel(s.PercentageToGrade(b.MinPercentage))
		require.NoError(t, err)
		assert.NotEmpty(t, label)
		assert.Equal(t, b.Grade, s.PercentageToGrade(b.MinPercentage))
	}
}

func TestDefaultScale_Bands(t *testing.T) {
	s := DefaultScale()
	assert.Equal(t, GradeAPlus, s.PercentageToGrade(100))
	assert.Equal(t, GradeAPlus, s.PercentageToGrade(97))
	assert.Equal(t, GradeA, s.PercentageToGrade(96.99))
	assert.Equal(t, GradeC, s.PercentageToGrade(70))
	assert.Equal(t, GradeD, s.PercentageToGrade(69))
	assert.Equal(t, GradeF, s.PercentageToGrade(59))
	assert.Equal(t, GradeF, s.PercentageToGrade(0))
	assert.Equal(t, GradeF, s.PercentageToGrade(-3))
}

func TestNewScale_Validation(t *testing.T) {
	_, err := NewScale(nil)
	assert.True(t, shared.IsValidation(err))

	_, err = NewScale([]Band{{50, GradeC}})
	assert.True(t, shared.IsValidation(err), "missing floor band")

	_, err = NewScale([]Band{{50, GradeP}, {0, GradeF}})
	assert.True(t, shared.IsValidation(err), "pass carries no points")

	_, err = NewScale([]Band{{50, GradeC}, {50, GradeD}, {0, GradeF}})
	assert.True(t, shared.IsValidation(err), "duplicate threshold")

	s, err := NewScale([]Band{{0, GradeF}, {50, GradeC}})
	require.NoError(t, err)
	assert.Equal(t, GradeC, s.PercentageToGrade(51))
}

func TestLoadScale(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scale.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bands:
  - {min: 0, grade: F}
  - {min: 50, grade: D}
  - {min: 85, grade: "A"}
  - {min: 65, grade: B}
`), 0o644))

	s, err := LoadScale(path)
	require.NoError(t, err)
	assert.Equal(t, GradeA, s.PercentageToGrade(90))
	assert.Equal(t, GradeB, s.PercentageToGrade(70))
	assert.Equal(t, GradeD, s.PercentageToGrade(50))
	assert.Equal(t, GradeF, s.PercentageToGrade(49))

	s, err = LoadScale("")
	require.NoError(t, err)
	assert.Equal(t, DefaultScale().Bands(), s.Bands())

	_, err = ParseScale([]byte("bands:\n  - {min: 0, grade: X}\n"))
	assert.True(t, shared.IsValidation(err))
}
