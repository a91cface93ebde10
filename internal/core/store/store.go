// Package store persists automation definitions and their evaluation log.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/solatis/automata/internal/core/db"
	"github.com/solatis/automata/internal/types"
)

// DefaultListLimit caps list queries when the caller passes no limit.
const DefaultListLimit = 100

// Store is the automation repository over named queries.
type Store struct {
	q   *db.Queries
	now func() time.Time
}

// New creates a store over q.
func New(q *db.Queries) *Store {
	return &Store{q: q, now: func() time.Time { return time.Now().UTC() }}
}

// SaveAutomation inserts a when a.ID is empty, assigning a new ID, and
// otherwise updates the existing row. Timestamps are set by the store.
func (s *Store) SaveAutomation(ctx context.Context, a *types.Automation) error {
	now := s.now()

	if a.ID == "" {
		a.ID = types.NewAutomationID()
		a.CreatedAt = now
		a.UpdatedAt = now
		if _, err := s.q.Exec(ctx, "insert-automation",
			a.ID, a.Name, a.Description, a.Definition, a.CreatedAt, a.UpdatedAt); err != nil {
			return fmt.Errorf("insert automation: %w", err)
		}
		return nil
	}

	res, err := s.q.Exec(ctx, "update-automation", a.Name, a.Description, a.Definition, now, a.ID)
	if err != nil {
		return fmt.Errorf("update automation %s: %w", a.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update automation %s: %w", a.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("update automation %s: %w", a.ID, types.ErrAutomationNotFound)
	}

	stored, err := s.GetAutomation(ctx, a.ID)
	if err != nil {
		return err
	}
	*a = *stored
	return nil
}

// GetAutomation returns the automation with id, or types.ErrAutomationNotFound.
func (s *Store) GetAutomation(ctx context.Context, id types.AutomationID) (*types.Automation, error) {
	var a types.Automation
	if err := s.q.Get(ctx, "get-automation", &a, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get automation %s: %w", id, types.ErrAutomationNotFound)
		}
		return nil, fmt.Errorf("get automation %s: %w", id, err)
	}
	return &a, nil
}

// ListAutomations returns up to limit automations ordered by ID.
func (s *Store) ListAutomations(ctx context.Context, limit int) ([]types.Automation, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var out []types.Automation
	if err := s.q.Select(ctx, "list-automations", &out, limit); err != nil {
		return nil, fmt.Errorf("list automations: %w", err)
	}
	return out, nil
}

// DeleteAutomation removes an automation and, by cascade, its evaluations.
func (s *Store) DeleteAutomation(ctx context.Context, id types.AutomationID) error {
	res, err := s.q.Exec(ctx, "delete-automation", id)
	if err != nil {
		return fmt.Errorf("delete automation %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("delete automation %s: %w", id, types.ErrAutomationNotFound)
	}
	return nil
}

// RecordEvaluation appends e to the evaluation log, assigning its ID and
// timestamp when unset.
func (s *Store) RecordEvaluation(ctx context.Context, e *types.Evaluation) error {
	if e.ID == "" {
		e.ID = types.NewEvaluationID()
	}
	if e.EvaluatedAt.IsZero() {
		e.EvaluatedAt = s.now()
	}
	if _, err := s.q.Exec(ctx, "insert-evaluation",
		e.ID, e.AutomationID, e.Result, e.ErrorTitle, e.ErrorPath, e.ElapsedUs, e.EvaluatedAt); err != nil {
		return fmt.Errorf("record evaluation for %s: %w", e.AutomationID, err)
	}
	return nil
}

// ListEvaluations returns up to limit evaluations of an automation, newest
// first.
func (s *Store) ListEvaluations(ctx context.Context, id types.AutomationID, limit int) ([]types.Evaluation, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	var out []types.Evaluation
	if err := s.q.Select(ctx, "list-evaluations", &out, id, limit); err != nil {
		return nil, fmt.Errorf("list evaluations for %s: %w", id, err)
	}
	return out, nil
}
