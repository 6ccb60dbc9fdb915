package prereq

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mind-engage/mindengage-academics/internal/db"
	"github.com/mind-engage/mindengage-academics/internal/shared"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(dbh *sql.DB) *SQLStore {
	return &SQLStore{db: dbh}
}

const edgeColumns = `id, course_code, prerequisite_code, created_at`

func (s *SQLStore) EdgesFor(ctx context.Context, courseCode string) ([]Edge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+edgeColumns+` FROM prerequisites WHERE course_code=$1 ORDER BY seq`, courseCode)
	if err != nil {
		return nil, fmt.Errorf("query prerequisites: %w", err)
	}
	return scanEdges(rows)
}

func (s *SQLStore) ListEdges(ctx context.Context) ([]Edge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+edgeColumns+` FROM prerequisites ORDER BY course_code, seq`)
	if err != nil {
		return nil, fmt.Errorf("query prerequisites: %w", err)
	}
	return scanEdges(rows)
}

func (s *SQLStore) InsertEdge(ctx context.Context, e Edge) (Edge, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prerequisites (id, course_code, prerequisite_code, created_at) VALUES ($1,$2,$3,$4)`,
		e.ID, e.CourseCode, e.PrerequisiteCode, e.CreatedAt.Unix())
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Edge{}, shared.WrapError("prereq", "InsertEdge", shared.ErrConflict, "duplicate edge", err)
		}
		return Edge{}, fmt.Errorf("insert prerequisite: %w", err)
	}
	e.CreatedAt = time.Unix(e.CreatedAt.Unix(), 0).UTC()
	return e, nil
}

func (s *SQLStore) DeleteEdge(ctx context.Context, id string) (Edge, error) {
	var e Edge
	var created int64
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM prerequisites WHERE id=$1 RETURNING `+edgeColumns, id).
		Scan(&e.ID, &e.CourseCode, &e.PrerequisiteCode, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Edge{}, shared.NewDomainError("prereq", "DeleteEdge", shared.ErrNotFound, "edge not found")
		}
		return Edge{}, fmt.Errorf("delete prerequisite: %w", err)
	}
	e.CreatedAt = time.Unix(created, 0).UTC()
	return e, nil
}

func scanEdges(rows *sql.Rows) ([]Edge, error) {
	defer rows.Close()
	out := []Edge{}
	for rows.Next() {
		var e Edge
		var created int64
		if err := rows.Scan(&e.ID, &e.CourseCode, &e.PrerequisiteCode, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = time.Unix(created, 0).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
