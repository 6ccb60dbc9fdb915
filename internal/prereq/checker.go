// Package prereq validates and evaluates course prerequisite edges.
package prereq

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/mindengage-academics/internal/shared"
)

var (
	ErrSelfReference = shared.NewDomainError("prereq", "Add", shared.ErrValidation, "course cannot require itself")
	ErrEmptyCode     = shared.NewDomainError("prereq", "Add", shared.ErrValidation, "course code is empty")
	ErrDuplicate     = shared.NewDomainError("prereq", "Add", shared.ErrConflict, "prerequisite already exists")
	ErrCycle         = shared.NewDomainError("prereq", "Add", shared.ErrConflict, "prerequisite would create a cycle")
	ErrEdgeNotFound  = shared.NewDomainError("prereq", "Remove", shared.ErrNotFound, "prerequisite not found")
)

// Recorder receives audit events for edge mutations.
type Recorder interface {
	Record(ctx context.Context, typ, key string, payload any) error
}

type Option func(*config)

type config struct {
	CycleCheck bool
	Logger     *slog.Logger
	Recorder   Recorder
	Now        func() time.Time
}

// WithCycleDetection rejects edges that would let a course transitively
// require itself. Without it only direct self-reference is rejected.
// Adds through one Checker are serialized, so the guarantee holds for a
// single process; separate processes sharing a database are not coordinated.
func WithCycleDetection(b bool) Option { return func(c *config) { c.CycleCheck = b } }
func WithLogger(l *slog.Logger) Option  { return func(c *config) { c.Logger = l } }
func WithRecorder(r Recorder) Option    { return func(c *config) { c.Recorder = r } }
func WithClock(now func() time.Time) Option {
	return func(c *config) { c.Now = now }
}

type Checker struct {
	store Store
	cfg   config

	// addMu serializes the reachability check with the insert it guards.
	addMu sync.Mutex
}

func NewChecker(store Store, opts ...Option) *Checker {
	cfg := config{
		Logger: slog.Default(),
		Now:    time.Now,
	}
	for _, o := range opts {
		o(&cfg)
	}
	return &Checker{store: store, cfg: cfg}
}

// CheckPrerequisitesMet compares courseCode's prerequisites against the set
// of courses the student has passed. Callers pass only passing completions.
func (c *Checker) CheckPrerequisitesMet(ctx context.Context, completed []string, courseCode string) (CheckResult, error) {
	edges, err := c.store.EdgesFor(ctx, NormalizeCode(courseCode))
	if err != nil {
		return CheckResult{}, err
	}
	have := make(map[string]struct{}, len(completed))
	for _, code := range completed {
		have[NormalizeCode(code)] = struct{}{}
	}
	res := CheckResult{Missing: []string{}}
	for _, e := range edges {
		if _, ok := have[e.PrerequisiteCode]; !ok {
			res.Missing = append(res.Missing, e.PrerequisiteCode)
		}
	}
	res.Met = len(res.Missing) == 0
	return res, nil
}

// AddPrerequisite records that courseCode requires prerequisiteCode.
func (c *Checker) AddPrerequisite(ctx context.Context, courseCode, prerequisiteCode string) (Edge, error) {
	course, pre := NormalizeCode(courseCode), NormalizeCode(prerequisiteCode)
	if course == "" || pre == "" {
		return Edge{}, ErrEmptyCode
	}
	if course == pre {
		return Edge{}, ErrSelfReference
	}
	c.addMu.Lock()
	defer c.addMu.Unlock()
	if c.cfg.CycleCheck {
		cyclic, err := c.reaches(ctx, pre, course)
		if err != nil {
			return Edge{}, err
		}
		if cyclic {
			return Edge{}, ErrCycle
		}
	}

	e, err := c.store.InsertEdge(ctx, Edge{
		ID:               uuid.NewString(),
		CourseCode:       course,
		PrerequisiteCode: pre,
		CreatedAt:        c.cfg.Now().UTC(),
	})
	if err != nil {
		if shared.IsConflict(err) {
			return Edge{}, ErrDuplicate
		}
		return Edge{}, err
	}
	c.cfg.Logger.InfoContext(ctx, "prerequisite added", "course", course, "prerequisite", pre, "edge_id", e.ID)
	c.record(ctx, "PrerequisiteAdded", e)
	return e, nil
}

// RemovePrerequisite deletes an edge by id.
func (c *Checker) RemovePrerequisite(ctx context.Context, edgeID string) error {
	e, err := c.store.DeleteEdge(ctx, edgeID)
	if err != nil {
		if shared.IsNotFound(err) {
			return ErrEdgeNotFound
		}
		return err
	}
	c.cfg.Logger.InfoContext(ctx, "prerequisite removed", "course", e.CourseCode, "prerequisite", e.PrerequisiteCode, "edge_id", e.ID)
	c.record(ctx, "PrerequisiteRemoved", e)
	return nil
}

func (c *Checker) ListPrerequisites(ctx context.Context, courseCode string) ([]Edge, error) {
	return c.store.EdgesFor(ctx, NormalizeCode(courseCode))
}

func (c *Checker) ListAllPrerequisites(ctx context.Context) ([]Edge, error) {
	return c.store.ListEdges(ctx)
}

// reaches reports whether target is reachable from start by following
// "requires" edges.
func (c *Checker) reaches(ctx context.Context, start, target string) (bool, error) {
	all, err := c.store.ListEdges(ctx)
	if err != nil {
		return false, err
	}
	requires := make(map[string][]string)
	for _, e := range all {
		requires[e.CourseCode] = append(requires[e.CourseCode], e.PrerequisiteCode)
	}
	seen := map[string]bool{start: true}
	stack := []string{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == target {
			return true, nil
		}
		for _, next := range requires[n] {
			if !seen[next] {
				seen[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false, nil
}

func (c *Checker) record(ctx context.Context, typ string, e Edge) {
	if c.cfg.Recorder == nil {
		return
	}
	if err := c.cfg.Recorder.Record(ctx, typ, e.CourseCode, e); err != nil {
		c.cfg.Logger.WarnContext(ctx, "event log append failed", "type", typ, "error", err)
	}
}
