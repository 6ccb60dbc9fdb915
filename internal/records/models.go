// Package records holds courses, enrollments and scores, and runs them
// through the grading pipeline.
package records

import (
	"context"
	"time"

	"github.com/mind-engage/mindengage-academics/internal/grading"
)

type Course struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Credits   float64   `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
}

type EnrollmentStatus string

const (
	StatusActive    EnrollmentStatus = "active"
	StatusCompleted EnrollmentStatus = "completed"
	StatusWithdrawn EnrollmentStatus = "withdrawn"
)

type Enrollment struct {
	ID         string              `json:"id"`
	StudentID  string              `json:"student_id"`
	CourseID   string              `json:"course_id"`
	Status     EnrollmentStatus    `json:"status"`
	FinalGrade grading.LetterGrade `json:"final_grade,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// CourseCatalog serves the weighted assessment set of a course.
type CourseCatalog interface {
	AssessmentDefinitions(ctx context.Context, courseID string) ([]grading.AssessmentDefinition, error)
	PutAssessmentDefinitions(ctx context.Context, courseID string, defs []grading.AssessmentDefinition) error
}

// ScoreStore keeps raw scores keyed by enrollment and assessment id.
type ScoreStore interface {
	Scores(ctx context.Context, enrollmentID string) (map[string]grading.ScoreEntry, error)
	SaveScores(ctx context.Context, enrollmentID string, entries []grading.ScoreEntry) error
}

// EnrollmentHistory lists every enrollment of a student that carries a
// final grade, oldest first.
type EnrollmentHistory interface {
	CompletedCourses(ctx context.Context, studentID string) ([]grading.CompletedCourse, error)
}

// Registry owns courses and enrollments. SetFinalGrade and the ScoreStore's
// SaveScores only touch active enrollments and report any other status as
// shared.ErrConflict, checked atomically with the write.
type Registry interface {
	PutCourse(ctx context.Context, c Course) (Course, error)
	GetCourse(ctx context.Context, id string) (Course, error)
	InsertEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)
	GetEnrollment(ctx context.Context, id string) (Enrollment, error)
	SetFinalGrade(ctx context.Context, enrollmentID string, g grading.LetterGrade, status EnrollmentStatus) (Enrollment, error)
}

// Store is everything a records backend provides.
type Store interface {
	CourseCatalog
	ScoreStore
	EnrollmentHistory
	Registry
}
