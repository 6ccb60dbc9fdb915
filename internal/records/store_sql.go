package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/mindengage-academics/internal/db"
	"github.com/mind-engage/mindengage-academics/internal/grading"
	"github.com/mind-engage/mindengage-academics/internal/shared"
)

type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLStore(dbh *sql.DB) *SQLStore {
	return &SQLStore{db: dbh, now: time.Now}
}

func (s *SQLStore) PutCourse(ctx context.Context, c Course) (Course, error) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO courses (id, code, name, credits, created_at) VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (id) DO UPDATE SET code=EXCLUDED.code, name=EXCLUDED.name, credits=EXCLUDED.credits`,
		c.ID, c.Code, c.Name, c.Credits, c.CreatedAt.Unix())
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Course{}, shared.WrapError("records", "PutCourse", shared.ErrConflict, "course code already in use", err)
		}
		return Course{}, fmt.Errorf("upsert course: %w", err)
	}
	return s.GetCourse(ctx, c.ID)
}

func (s *SQLStore) GetCourse(ctx context.Context, id string) (Course, error) {
	var c Course
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code, name, credits, created_at FROM courses WHERE id=$1`, id).
		Scan(&c.ID, &c.Code, &c.Name, &c.Credits, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Course{}, errCourseNotFound("GetCourse")
		}
		return Course{}, fmt.Errorf("get course: %w", err)
	}
	c.CreatedAt = time.Unix(created, 0).UTC()
	return c, nil
}

func (s *SQLStore) AssessmentDefinitions(ctx context.Context, courseID string) ([]grading.AssessmentDefinition, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, weight, max_score FROM assessments WHERE course_id=$1 ORDER BY position`, courseID)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()
	out := []grading.AssessmentDefinition{}
	for rows.Next() {
		var d grading.AssessmentDefinition
		if err := rows.Scan(&d.ID, &d.Name, &d.Weight, &d.MaxScore); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// PutAssessmentDefinitions replaces the course's whole set in one transaction.
func (s *SQLStore) PutAssessmentDefinitions(ctx context.Context, courseID string, defs []grading.AssessmentDefinition) error {
	if _, err := s.GetCourse(ctx, courseID); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assessments WHERE course_id=$1`, courseID); err != nil {
		return fmt.Errorf("clear assessments: %w", err)
	}
	for i, d := range defs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO assessments (course_id, id, name, weight, max_score, position) VALUES ($1,$2,$3,$4,$5,$6)`,
			courseID, d.ID, d.Name, d.Weight, d.MaxScore, i); err != nil {
			return fmt.Errorf("insert assessment %s: %w", d.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) InsertEnrollment(ctx context.Context, e Enrollment) (Enrollment, error) {
	if _, err := s.GetCourse(ctx, e.CourseID); err != nil {
		return Enrollment{}, err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO enrollments (id, student_id, course_id, status, final_grade, created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.StudentID, e.CourseID, string(e.Status), nullGrade(e.FinalGrade), e.CreatedAt.Unix())
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Enrollment{}, shared.WrapError("records", "InsertEnrollment", shared.ErrConflict, "enrollment exists", err)
		}
		return Enrollment{}, fmt.Errorf("insert enrollment: %w", err)
	}
	e.CreatedAt = time.Unix(e.CreatedAt.Unix(), 0).UTC()
	return e, nil
}

func (s *SQLStore) GetEnrollment(ctx context.Context, id string) (Enrollment, error) {
	var e Enrollment
	var status string
	var grade sql.NullString
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, student_id, course_id, status, final_grade, created_at FROM enrollments WHERE id=$1`, id).
		Scan(&e.ID, &e.StudentID, &e.CourseID, &status, &grade, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Enrollment{}, errEnrollmentNotFound("GetEnrollment")
		}
		return Enrollment{}, fmt.Errorf("get enrollment: %w", err)
	}
	e.Status = EnrollmentStatus(status)
	e.FinalGrade = grading.LetterGrade(grade.String)
	e.CreatedAt = time.Unix(created, 0).UTC()
	return e, nil
}

// SetFinalGrade closes an active enrollment. The status guard is part of the
// UPDATE, so of two concurrent closes only one lands.
func (s *SQLStore) SetFinalGrade(ctx context.Context, id string, g grading.LetterGrade, status EnrollmentStatus) (Enrollment, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE enrollments SET final_grade=$1, status=$2 WHERE id=$3 AND status=$4`,
		nullGrade(g), string(status), id, string(StatusActive))
	if err != nil {
		return Enrollment{}, fmt.Errorf("update enrollment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Enrollment{}, s.notActive(ctx, s.db, "SetFinalGrade", id)
	}
	return s.GetEnrollment(ctx, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// notActive explains why a status-guarded write touched no row.
func (s *SQLStore) notActive(ctx context.Context, q queryer, op, id string) error {
	var status string
	err := q.QueryRowContext(ctx, `SELECT status FROM enrollments WHERE id=$1`, id).Scan(&status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return errEnrollmentNotFound(op)
	case err != nil:
		return fmt.Errorf("get enrollment: %w", err)
	}
	return errNotActive(op, EnrollmentStatus(status))
}

func (s *SQLStore) Scores(ctx context.Context, enrollmentID string) (map[string]grading.ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT assessment_id, score, max_score FROM scores WHERE enrollment_id=$1`, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer rows.Close()
	out := map[string]grading.ScoreEntry{}
	for rows.Next() {
		var e grading.ScoreEntry
		var score, max sql.NullFloat64
		if err := rows.Scan(&e.AssessmentID, &score, &max); err != nil {
			return nil, err
		}
		if score.Valid {
			v := score.Float64
			e.Score = &v
		}
		if max.Valid {
			v := max.Float64
			e.MaxScore = &v
		}
		out[e.AssessmentID] = e
	}
	return out, rows.Err()
}

// SaveScores upserts entries for an active enrollment. The no-op status
// UPDATE locks the enrollment row for the transaction, so scores cannot land
// after a concurrent close.
func (s *SQLStore) SaveScores(ctx context.Context, enrollmentID string, entries []grading.ScoreEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE enrollments SET status=status WHERE id=$1 AND status=$2`, enrollmentID, string(StatusActive))
	if err != nil {
		return fmt.Errorf("lock enrollment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return s.notActive(ctx, tx, "SaveScores", enrollmentID)
	}

	now := s.now().Unix()
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scores (enrollment_id, assessment_id, score, max_score, updated_at) VALUES ($1,$2,$3,$4,$5)
			 ON CONFLICT (enrollment_id, assessment_id) DO UPDATE
			 SET score=EXCLUDED.score, max_score=EXCLUDED.max_score, updated_at=EXCLUDED.updated_at`,
			enrollmentID, e.AssessmentID, nullFloat(e.Score), nullFloat(e.MaxScore), now); err != nil {
			return fmt.Errorf("upsert score %s: %w", e.AssessmentID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLStore) CompletedCourses(ctx context.Context, studentID string) ([]grading.CompletedCourse, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.code, e.final_grade, c.credits
		   FROM enrollments e JOIN courses c ON c.id = e.course_id
		  WHERE e.student_id=$1 AND e.final_grade IS NOT NULL
		  ORDER BY e.created_at, e.id`, studentID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	out := []grading.CompletedCourse{}
	for rows.Next() {
		var cc grading.CompletedCourse
		var g string
		if err := rows.Scan(&cc.CourseCode, &g, &cc.Credits); err != nil {
			return nil, err
		}
		cc.Grade = grading.LetterGrade(g)
		out = append(out, cc)
	}
	return out, rows.Err()
}

func nullGrade(g grading.LetterGrade) sql.NullString {
	return sql.NullString{String: string(g), Valid: g != ""}
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}
