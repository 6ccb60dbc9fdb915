package records

import (
	"context"
	"sort"
	"sync"

	"github.com/mind-engage/mindengage-academics/internal/grading"
	"github.com/mind-engage/mindengage-academics/internal/shared"
)

type memoryStore struct {
	mu          sync.RWMutex
	courses     map[string]Course
	assessments map[string][]grading.AssessmentDefinition
	enrollments map[string]Enrollment
	scores      map[string]map[string]grading.ScoreEntry
	seq         map[string]int // enrollment id -> insertion order
}

func NewInMemoryStore() Store {
	return &memoryStore{
		courses:     map[string]Course{},
		assessments: map[string][]grading.AssessmentDefinition{},
		enrollments: map[string]Enrollment{},
		scores:      map[string]map[string]grading.ScoreEntry{},
		seq:         map[string]int{},
	}
}

func (m *memoryStore) PutCourse(_ context.Context, c Course) (Course, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, other := range m.courses {
		if id != c.ID && other.Code == c.Code {
			return Course{}, shared.NewDomainError("records", "PutCourse", shared.ErrConflict, "course code already in use")
		}
	}
	if prev, ok := m.courses[c.ID]; ok {
		c.CreatedAt = prev.CreatedAt
	}
	m.courses[c.ID] = c
	return c, nil
}

func (m *memoryStore) GetCourse(_ context.Context, id string) (Course, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.courses[id]
	if !ok {
		return Course{}, errCourseNotFound("GetCourse")
	}
	return c, nil
}

func (m *memoryStore) AssessmentDefinitions(_ context.Context, courseID string) ([]grading.AssessmentDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	defs := m.assessments[courseID]
	out := make([]grading.AssessmentDefinition, len(defs))
	copy(out, defs)
	return out, nil
}

func (m *memoryStore) PutAssessmentDefinitions(_ context.Context, courseID string, defs []grading.AssessmentDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[courseID]; !ok {
		return errCourseNotFound("PutAssessmentDefinitions")
	}
	cp := make([]grading.AssessmentDefinition, len(defs))
	copy(cp, defs)
	m.assessments[courseID] = cp
	return nil
}

func (m *memoryStore) InsertEnrollment(_ context.Context, e Enrollment) (Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.courses[e.CourseID]; !ok {
		return Enrollment{}, errCourseNotFound("InsertEnrollment")
	}
	if _, ok := m.enrollments[e.ID]; ok {
		return Enrollment{}, shared.NewDomainError("records", "InsertEnrollment", shared.ErrConflict, "enrollment exists")
	}
	m.enrollments[e.ID] = e
	m.seq[e.ID] = len(m.seq)
	return e, nil
}

func (m *memoryStore) GetEnrollment(_ context.Context, id string) (Enrollment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.enrollments[id]
	if !ok {
		return Enrollment{}, errEnrollmentNotFound("GetEnrollment")
	}
	return e, nil
}

func (m *memoryStore) SetFinalGrade(_ context.Context, id string, g grading.LetterGrade, status EnrollmentStatus) (Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[id]
	if !ok {
		return Enrollment{}, errEnrollmentNotFound("SetFinalGrade")
	}
	if e.Status != StatusActive {
		return Enrollment{}, errNotActive("SetFinalGrade", e.Status)
	}
	e.FinalGrade = g
	e.Status = status
	m.enrollments[id] = e
	return e, nil
}

func (m *memoryStore) Scores(_ context.Context, enrollmentID string) (map[string]grading.ScoreEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]grading.ScoreEntry, len(m.scores[enrollmentID]))
	for k, v := range m.scores[enrollmentID] {
		out[k] = v
	}
	return out, nil
}

func (m *memoryStore) SaveScores(_ context.Context, enrollmentID string, entries []grading.ScoreEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	enr, ok := m.enrollments[enrollmentID]
	if !ok {
		return errEnrollmentNotFound("SaveScores")
	}
	if enr.Status != StatusActive {
		return errNotActive("SaveScores", enr.Status)
	}
	row := m.scores[enrollmentID]
	if row == nil {
		row = map[string]grading.ScoreEntry{}
		m.scores[enrollmentID] = row
	}
	for _, e := range entries {
		row[e.AssessmentID] = e
	}
	return nil
}

func (m *memoryStore) CompletedCourses(_ context.Context, studentID string) ([]grading.CompletedCourse, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var list []Enrollment
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.FinalGrade != "" {
			list = append(list, e)
		}
	}
	sort.Slice(list, func(i, j int) bool { return m.seq[list[i].ID] < m.seq[list[j].ID] })
	out := make([]grading.CompletedCourse, 0, len(list))
	for _, e := range list {
		c := m.courses[e.CourseID]
		out = append(out, grading.CompletedCourse{CourseCode: c.Code, Grade: e.FinalGrade, Credits: c.Credits})
	}
	return out, nil
}

func errCourseNotFound(op string) error {
	return shared.NewDomainError("records", op, shared.ErrNotFound, "course not found")
}

func errEnrollmentNotFound(op string) error {
	return shared.NewDomainError("records", op, shared.ErrNotFound, "enrollment not found")
}

func errNotActive(op string, status EnrollmentStatus) error {
	return shared.NewDomainError("records", op, shared.ErrConflict, "enrollment is "+string(status))
}
