package grading

import (
	"fmt"
	"strings"

	"github.com/mind-engage/mindengage-academics/internal/shared"
)

// LetterGrade is a closed enumeration of final course grades.
type LetterGrade string

const (
	GradeAPlus  LetterGrade = "A_PLUS"
	GradeA      LetterGrade = "A"
	GradeAMinus LetterGrade = "A_MINUS"
	GradeBPlus  LetterGrade = "B_PLUS"
	GradeB      LetterGrade = "B"
	GradeBMinus LetterGrade = "B_MINUS"
	GradeCPlus  LetterGrade = "C_PLUS"
	GradeC      LetterGrade = "C"
	GradeD      LetterGrade = "D"
	GradeF      LetterGrade = "F"

	// No GPA impact.
	GradeP  LetterGrade = "P"
	GradeI  LetterGrade = "I"
	GradeW  LetterGrade = "W"
	GradeDO LetterGrade = "DO"
	GradeNG LetterGrade = "NG"
)

type gradeInfo struct {
	label     string
	points    float64
	hasPoints bool
}

var gradeTable = map[LetterGrade]gradeInfo{
	GradeAPlus:  {"A+", 4.0, true},
	GradeA:      {"A", 4.0, true},
	GradeAMinus: {"A-", 3.7, true},
	GradeBPlus:  {"B+", 3.3, true},
	GradeB:      {"B", 3.0, true},
	GradeBMinus: {"B-", 2.7, true},
	GradeCPlus:  {"C+", 2.3, true},
	GradeC:      {"C", 2.0, true},
	GradeD:      {"D", 1.0, true},
	GradeF:      {"F", 0.0, true},
	GradeP:      {label: "Pass"},
	GradeI:      {label: "Incomplete"},
	GradeW:      {label: "Withdrawn"},
	GradeDO:     {label: "Dropped Out"},
	GradeNG:     {label: "No Grade"},
}

// AllGrades lists the enumeration in descending order of standing.
func AllGrades() []LetterGrade {
	return []LetterGrade{
		GradeAPlus, GradeA, GradeAMinus, GradeBPlus, GradeB, GradeBMinus, GradeCPlus, GradeC, GradeD, GradeF,
		GradeP, GradeI, GradeW, GradeDO, GradeNG,
	}
}

// InvalidGradeError reports a value outside the LetterGrade enumeration.
type InvalidGradeError struct {
	Value string
}

func (e *InvalidGradeError) Error() string {
	return fmt.Sprintf("invalid letter grade %q", e.Value)
}

// Is lets callers treat an invalid grade as a validation failure.
func (e *InvalidGradeError) Is(target error) bool { return target == shared.ErrValidation }

func (g LetterGrade) Valid() bool {
	_, ok := gradeTable[g]
	return ok
}

func lookup(g LetterGrade) (gradeInfo, error) {
	info, ok := gradeTable[g]
	if !ok {
		return gradeInfo{}, &InvalidGradeError{Value: string(g)}
	}
	return info, nil
}

// GradeToPoints returns the grade-point value of g. The bool is false for
// grades that carry no GPA impact (P, I, W, DO, NG); callers leave those out
// of both the numerator and the denominator.
func GradeToPoints(g LetterGrade) (float64, bool, error) {
	info, err := lookup(g)
	if err != nil {
		return 0, false, err
	}
	return info.points, info.hasPoints, nil
}

// GradeToLabel returns the display label, e.g. A_PLUS -> "A+".
func GradeToLabel(g LetterGrade) (string, error) {
	info, err := lookup(g)
	if err != nil {
		return "", err
	}
	return info.label, nil
}

// IsPassing reports whether g counts as a passing completion for
// prerequisite purposes: it must carry grade points and they must be > 0.
func IsPassing(g LetterGrade) bool {
	info, ok := gradeTable[g]
	return ok && info.hasPoints && info.points > 0
}

// ParseLetterGrade accepts either the enumeration name ("A_PLUS") or the
// display label ("A+"), case-insensitively.
func ParseLetterGrade(s string) (LetterGrade, error) {
	v := strings.TrimSpace(s)
	if g := LetterGrade(strings.ToUpper(v)); g.Valid() {
		return g, nil
	}
	for g, info := range gradeTable {
		if strings.EqualFold(info.label, v) {
			return g, nil
		}
	}
	return "", &InvalidGradeError{Value: s}
}

func (g LetterGrade) String() string { return string(g) }

func (g LetterGrade) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, &InvalidGradeError{Value: string(g)}
	}
	return []byte(g), nil
}

func (g *LetterGrade) UnmarshalText(b []byte) error {
	v, err := ParseLetterGrade(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}
