package prereq

import (
	"context"
	"strings"
	"time"
)

// Edge states that CourseCode may not be taken before PrerequisiteCode has
// been passed.
type Edge struct {
	ID               string    `json:"id"`
	CourseCode       string    `json:"course_code"`
	PrerequisiteCode string    `json:"prerequisite_code"`
	CreatedAt        time.Time `json:"created_at"`
}

// CheckResult lists unmet prerequisites in declaration order.
type CheckResult struct {
	Met     bool     `json:"met"`
	Missing []string `json:"missing"`
}

// Store persists prerequisite edges. InsertEdge must report a duplicate
// (course, prerequisite) pair as shared.ErrConflict and DeleteEdge an
// unknown id as shared.ErrNotFound. EdgesFor returns edges in the order
// they were declared.
type Store interface {
	EdgesFor(ctx context.Context, courseCode string) ([]Edge, error)
	ListEdges(ctx context.Context) ([]Edge, error)
	InsertEdge(ctx context.Context, e Edge) (Edge, error)
	DeleteEdge(ctx context.Context, id string) (Edge, error)
}

// NormalizeCode trims and upper-cases a course code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
