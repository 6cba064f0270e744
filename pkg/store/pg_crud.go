package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redgraph/chainmap/pkg/chain"
	"github.com/redgraph/chainmap/pkg/topology"
)

// Create stores a new chain, assigning its identity
func (s *PGStore) Create(ctx context.Context, draft *chain.Draft) (*chain.Draft, error) {
	if len(draft.Steps) == 0 {
		return nil, ErrEmptyChain
	}

	stored := draft.Clone()
	stored.Normalize()
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO chains (id, project_id, name, description, color, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, stored.ID, stored.ProjectID, stored.Name, stored.Description, stored.Color, time.Now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to create chain: %w", err)
	}

	if err := insertSteps(ctx, tx, stored); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit chain: %w", err)
	}
	return stored, nil
}

// Get returns the chain with steps sorted by sequence order
func (s *PGStore) Get(ctx context.Context, chainID string) (*chain.Draft, error) {
	stored := &chain.Draft{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, project_id, name, description, color
		FROM chains
		WHERE id = $1
	`, chainID).Scan(&stored.ID, &stored.ProjectID, &stored.Name, &stored.Description, &stored.Color)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrChainNotFound, chainID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chain: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, entity_id, entity_kind, sequence_order, method_notes, is_branch_point, branch_description
		FROM chain_steps
		WHERE chain_id = $1
		ORDER BY sequence_order
	`, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		step := &chain.Step{}
		var kind string
		if err := rows.Scan(&step.ID, &step.EntityRef.ID, &kind, &step.SequenceOrder,
			&step.MethodNotes, &step.IsBranchPoint, &step.BranchDescription); err != nil {
			return nil, fmt.Errorf("failed to scan chain step: %w", err)
		}
		step.EntityRef.Kind = topology.EntityKind(kind)
		stored.Steps = append(stored.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chain steps: %w", err)
	}

	stored.Normalize()
	return stored, nil
}

// ListByProject returns chain summaries in creation order
func (s *PGStore) ListByProject(ctx context.Context, projectID string) ([]chain.Summary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.project_id, c.name, c.color, COUNT(st.id)
		FROM chains c
		LEFT JOIN chain_steps st ON st.chain_id = c.id
		WHERE c.project_id = $1
		GROUP BY c.id, c.project_id, c.name, c.color, c.created_at
		ORDER BY c.created_at
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chains: %w", err)
	}
	defer rows.Close()

	summaries := make([]chain.Summary, 0)
	for rows.Next() {
		var s chain.Summary
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.Name, &s.Color, &s.StepCount); err != nil {
			return nil, fmt.Errorf("failed to scan chain summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read chain summaries: %w", err)
	}
	return summaries, nil
}

// Update replaces the chain's metadata and steps. Identity and project
// scoping are immutable; steps are rewritten wholesale.
func (s *PGStore) Update(ctx context.Context, chainID string, draft *chain.Draft) (*chain.Draft, error) {
	if len(draft.Steps) == 0 {
		return nil, ErrEmptyChain
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stored := draft.Clone()
	stored.ID = chainID
	stored.Normalize()

	tag, err := tx.Exec(ctx, `
		UPDATE chains
		SET name = $2, description = $3, color = $4
		WHERE id = $1
	`, chainID, stored.Name, stored.Description, stored.Color)
	if err != nil {
		return nil, fmt.Errorf("failed to update chain: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrChainNotFound, chainID)
	}

	err = tx.QueryRow(ctx, `SELECT project_id FROM chains WHERE id = $1`, chainID).Scan(&stored.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain project: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM chain_steps WHERE chain_id = $1`, chainID); err != nil {
		return nil, fmt.Errorf("failed to clear chain steps: %w", err)
	}
	if err := insertSteps(ctx, tx, stored); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit chain update: %w", err)
	}
	return stored, nil
}

// Delete removes the chain and, via the FK cascade, its steps
func (s *PGStore) Delete(ctx context.Context, chainID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chains WHERE id = $1`, chainID)
	if err != nil {
		return fmt.Errorf("failed to delete chain: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrChainNotFound, chainID)
	}
	return nil
}

func insertSteps(ctx context.Context, tx pgx.Tx, stored *chain.Draft) error {
	for _, step := range stored.Steps {
		if step.ID == "" {
			step.ID = uuid.New().String()
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO chain_steps (id, chain_id, entity_id, entity_kind, sequence_order, method_notes, is_branch_point, branch_description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, step.ID, stored.ID, step.EntityRef.ID, string(step.EntityRef.Kind),
			step.SequenceOrder, step.MethodNotes, step.IsBranchPoint, step.BranchDescription)
		if err != nil {
			return fmt.Errorf("failed to insert chain step: %w", err)
		}
	}
	return nil
}
