package records

import (
	"context"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-academics/internal/grading"
	"github.com/mind-engage/mindengage-academics/internal/prereq"
	"github.com/mind-engage/mindengage-academics/internal/shared"
)

type Option func(*config)

type config struct {
	Scale    *grading.Scale
	Logger   *slog.Logger
	Recorder prereq.Recorder
	Now      func() time.Time
}

func WithScale(s *grading.Scale) Option     { return func(c *config) { c.Scale = s } }
func WithLogger(l *slog.Logger) Option      { return func(c *config) { c.Logger = l } }
func WithRecorder(r prereq.Recorder) Option { return func(c *config) { c.Recorder = r } }
func WithClock(now func() time.Time) Option { return func(c *config) { c.Now = now } }

func newConfig(opts []Option) config {
	cfg := config{Logger: slog.Default(), Now: time.Now}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.Scale == nil {
		cfg.Scale = grading.DefaultScale()
	}
	return cfg
}

func (c config) record(ctx context.Context, typ, key string, payload any) {
	if c.Recorder == nil {
		return
	}
	if err := c.Recorder.Record(ctx, typ, key, payload); err != nil {
		c.Logger.WarnContext(ctx, "event log append failed", "type", typ, "error", err)
	}
}

// GradeReport is the computed grade of one enrollment. Percentage, Grade and
// Points are nil while any score is missing.
type GradeReport struct {
	EnrollmentID string               `json:"enrollment_id"`
	StudentID    string               `json:"student_id"`
	CourseID     string               `json:"course_id"`
	Complete     bool                 `json:"complete"`
	Percentage   *int                 `json:"percentage"`
	Grade        *grading.LetterGrade `json:"grade"`
	Label        string               `json:"label,omitempty"`
	Points       *float64             `json:"points"`
}

// GradeService defines assessment sets, takes scores and computes grades.
type GradeService struct {
	store Store
	cfg   config
}

func NewGradeService(store Store, opts ...Option) *GradeService {
	return &GradeService{store: store, cfg: newConfig(opts)}
}

func (s *GradeService) CreateCourse(ctx context.Context, c Course) (Course, error) {
	c.Code = prereq.NormalizeCode(c.Code)
	c.Name = strings.TrimSpace(c.Name)
	if c.Code == "" {
		return Course{}, shared.Validation("records", "CreateCourse", "course code is empty")
	}
	if c.Name == "" {
		return Course{}, shared.Validation("records", "CreateCourse", "course name is empty")
	}
	if math.IsNaN(c.Credits) || c.Credits < 0 {
		return Course{}, shared.Validation("records", "CreateCourse", "credits must be non-negative")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.cfg.Now().UTC().Truncate(time.Second)
	}
	out, err := s.store.PutCourse(ctx, c)
	if err != nil {
		return Course{}, err
	}
	s.cfg.record(ctx, "CourseSaved", out.ID, out)
	return out, nil
}

func (s *GradeService) Enroll(ctx context.Context, studentID, courseID string) (Enrollment, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return Enrollment{}, shared.Validation("records", "Enroll", "student id is empty")
	}
	e := Enrollment{
		ID:        uuid.NewString(),
		StudentID: studentID,
		CourseID:  courseID,
		Status:    StatusActive,
		CreatedAt: s.cfg.Now().UTC().Truncate(time.Second),
	}
	out, err := s.store.InsertEnrollment(ctx, e)
	if err != nil {
		return Enrollment{}, err
	}
	s.cfg.record(ctx, "StudentEnrolled", out.ID, out)
	return out, nil
}

// DefineAssessments replaces a course's assessment set after checking that
// the weights sum to 100.
func (s *GradeService) DefineAssessments(ctx context.Context, courseID string, defs []grading.AssessmentDefinition) error {
	for i := range defs {
		defs[i].ID = strings.TrimSpace(defs[i].ID)
	}
	if err := grading.ValidateWeights(defs); err != nil {
		return err
	}
	if err := s.store.PutAssessmentDefinitions(ctx, courseID, defs); err != nil {
		return err
	}
	s.cfg.record(ctx, "AssessmentsDefined", courseID, defs)
	return nil
}

func (s *GradeService) Assessments(ctx context.Context, courseID string) ([]grading.AssessmentDefinition, error) {
	if _, err := s.store.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.store.AssessmentDefinitions(ctx, courseID)
}

// EnterScores upserts scores for assessments of the enrollment's course.
// A nil Score clears a previously entered value.
func (s *GradeService) EnterScores(ctx context.Context, enrollmentID string, entries []grading.ScoreEntry) error {
	enr, err := s.store.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return err
	}
	if enr.Status != StatusActive {
		return errNotActive("EnterScores", enr.Status)
	}
	defs, err := s.store.AssessmentDefinitions(ctx, enr.CourseID)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(defs))
	for _, d := range defs {
		known[d.ID] = struct{}{}
	}
	for _, e := range entries {
		if _, ok := known[e.AssessmentID]; !ok {
			return shared.Validation("records", "EnterScores", "unknown assessment %q", e.AssessmentID)
		}
		if e.Score != nil && (math.IsNaN(*e.Score) || *e.Score < 0) {
			return shared.Validation("records", "EnterScores", "score for %q must be non-negative", e.AssessmentID)
		}
		if e.MaxScore != nil && !(*e.MaxScore > 0) {
			return shared.Validation("records", "EnterScores", "max score for %q must be positive", e.AssessmentID)
		}
	}
	if err := s.store.SaveScores(ctx, enrollmentID, entries); err != nil {
		return err
	}
	s.cfg.record(ctx, "ScoresEntered", enrollmentID, entries)
	return nil
}

func (s *GradeService) Grade(ctx context.Context, enrollmentID string) (GradeReport, error) {
	enr, err := s.store.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return GradeReport{}, err
	}
	defs, err := s.store.AssessmentDefinitions(ctx, enr.CourseID)
	if err != nil {
		return GradeReport{}, err
	}
	scores, err := s.store.Scores(ctx, enrollmentID)
	if err != nil {
		return GradeReport{}, err
	}
	rep := GradeReport{EnrollmentID: enr.ID, StudentID: enr.StudentID, CourseID: enr.CourseID}
	pct, ok := grading.ComputeWeightedPercentage(defs, scores).Value()
	if !ok {
		return rep, nil
	}
	g := s.cfg.Scale.PercentageToGrade(float64(pct))
	label, err := grading.GradeToLabel(g)
	if err != nil {
		return GradeReport{}, err
	}
	rep.Complete = true
	rep.Percentage = &pct
	rep.Grade = &g
	rep.Label = label
	if pts, has, _ := grading.GradeToPoints(g); has {
		rep.Points = &pts
	}
	return rep, nil
}

// Finalize closes an active enrollment with its computed grade, or I when
// scores are still missing.
func (s *GradeService) Finalize(ctx context.Context, enrollmentID string) (Enrollment, error) {
	enr, err := s.store.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return Enrollment{}, err
	}
	if enr.Status != StatusActive {
		return Enrollment{}, errNotActive("Finalize", enr.Status)
	}
	rep, err := s.Grade(ctx, enrollmentID)
	if err != nil {
		return Enrollment{}, err
	}
	g := grading.GradeI
	if rep.Grade != nil {
		g = *rep.Grade
	}
	out, err := s.store.SetFinalGrade(ctx, enrollmentID, g, StatusCompleted)
	if err != nil {
		return Enrollment{}, err
	}
	s.cfg.record(ctx, "EnrollmentFinalized", enrollmentID, out)
	return out, nil
}

// Withdraw records W on an active enrollment.
func (s *GradeService) Withdraw(ctx context.Context, enrollmentID string) (Enrollment, error) {
	enr, err := s.store.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return Enrollment{}, err
	}
	if enr.Status != StatusActive {
		return Enrollment{}, errNotActive("Withdraw", enr.Status)
	}
	out, err := s.store.SetFinalGrade(ctx, enrollmentID, grading.GradeW, StatusWithdrawn)
	if err != nil {
		return Enrollment{}, err
	}
	s.cfg.record(ctx, "EnrollmentWithdrawn", enrollmentID, out)
	return out, nil
}

// Transcript is a student's graded history with GPA and standing. GPA is nil
// until a course with grade points exists.
type Transcript struct {
	StudentID string                    `json:"student_id"`
	Courses   []grading.CompletedCourse `json:"courses"`
	GPA       *float64                  `json:"gpa"`
	Standing  grading.AcademicStanding  `json:"standing"`
}

type TranscriptService struct {
	history EnrollmentHistory
}

func NewTranscriptService(history EnrollmentHistory) *TranscriptService {
	return &TranscriptService{history: history}
}

func (s *TranscriptService) Standing(ctx context.Context, studentID string) (Transcript, error) {
	courses, err := s.history.CompletedCourses(ctx, studentID)
	if err != nil {
		return Transcript{}, err
	}
	gpa, err := grading.ComputeGPA(courses)
	if err != nil {
		return Transcript{}, err
	}
	t := Transcript{StudentID: studentID, Courses: courses, Standing: grading.EvaluateStanding(gpa)}
	if t.Courses == nil {
		t.Courses = []grading.CompletedCourse{}
	}
	if !math.IsNaN(gpa) {
		rounded := math.Round(gpa*100) / 100
		t.GPA = &rounded
	}
	return t, nil
}

// Eligibility answers whether a student may enroll in a course.
type Eligibility struct {
	history EnrollmentHistory
	checker *prereq.Checker
}

func NewEligibility(history EnrollmentHistory, checker *prereq.Checker) *Eligibility {
	return &Eligibility{history: history, checker: checker}
}

// Check counts only passing completions: F, P and the non-GPA outcomes do
// not satisfy a prerequisite.
func (e *Eligibility) Check(ctx context.Context, studentID, courseCode string) (prereq.CheckResult, error) {
	courses, err := e.history.CompletedCourses(ctx, studentID)
	if err != nil {
		return prereq.CheckResult{}, err
	}
	passed := make([]string, 0, len(courses))
	for _, c := range courses {
		if grading.IsPassing(c.Grade) {
			passed = append(passed, c.CourseCode)
		}
	}
	return e.checker.CheckPrerequisitesMet(ctx, passed, courseCode)
}
