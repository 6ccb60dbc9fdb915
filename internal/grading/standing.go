package grading

import (
	"math"

	"github.com/mind-engage/mindengage-academics/internal/shared"
)

type AcademicStanding string

const (
	NotYetRated  AcademicStanding = "not_yet_rated"
	DeansList    AcademicStanding = "deans_list"
	GoodStanding AcademicStanding = "good_standing"
	Probation    AcademicStanding = "probation"
)

const (
	deansListMin    = 3.5
	goodStandingMin = 2.0
)

// EvaluateStanding classifies a GPA. Each band includes its lower bound.
// NaN (no graded courses yet) is NotYetRated rather than an error.
func EvaluateStanding(gpa float64) AcademicStanding {
	switch {
	case math.IsNaN(gpa):
		return NotYetRated
	case gpa >= deansListMin:
		return DeansList
	case gpa >= goodStandingMin:
		return GoodStanding
	default:
		return Probation
	}
}

// CompletedCourse is one finished course on a student's record.
type CompletedCourse struct {
	CourseCode string      `json:"course_code"`
	Grade      LetterGrade `json:"grade"`
	Credits    float64     `json:"credits"`
}

// ComputeGPA returns the credit-weighted mean grade points over courses whose
// grade affects GPA. Zero-credit courses count only when no course carries
// credits, in which case every course weighs 1. With no such course the
// result is NaN.
func ComputeGPA(courses []CompletedCourse) (float64, error) {
	var points, credits, plain float64
	var n int
	for _, c := range courses {
		p, ok, err := GradeToPoints(c.Grade)
		if err != nil {
			return math.NaN(), err
		}
		if !ok {
			continue
		}
		if c.Credits < 0 {
			return math.NaN(), shared.Validation("grading", "ComputeGPA", "course %s has negative credits", c.CourseCode)
		}
		points += p * c.Credits
		credits += c.Credits
		plain += p
		n++
	}
	switch {
	case credits > 0:
		return points / credits, nil
	case n > 0:
		return plain / float64(n), nil
	}
	return math.NaN(), nil
}
