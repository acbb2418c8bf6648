package data

import (
	"context"
	"fmt"
	"time"

	"portalbackend/internal/academics"
)

// =============================================================================
// SYLLABUS REPOSITORY
// =============================================================================

// SyllabusRepository persists per-unit covered flags. It satisfies
// academics.SyllabusRepository.
type SyllabusRepository struct{}

func NewSyllabusRepository() *SyllabusRepository {
	return &SyllabusRepository{}
}

func (r *SyllabusRepository) SaveUnitState(ctx context.Context, state academics.UnitState) error {
	dbConn, err := GetDB()
	if err != nil {
		return err
	}

	const stmt = `
		INSERT INTO syllabus_progress (subject_id, unit_id, covered, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(subject_id, unit_id) DO UPDATE SET
			covered = excluded.covered,
			updated_at = excluded.updated_at`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err = dbConn.ExecContext(ctx, stmt,
		state.SubjectID, state.UnitID, state.Covered, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save syllabus flag: %w", err)
	}
	return nil
}

func (r *SyllabusRepository) LoadUnitStates(ctx context.Context) ([]academics.UnitState, error) {
	dbConn, err := GetDB()
	if err != nil {
		return nil, err
	}

	const stmt = `SELECT subject_id, unit_id, covered FROM syllabus_progress`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := dbConn.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to query syllabus progress: %w", err)
	}
	defer rows.Close()

	var result []academics.UnitState
	for rows.Next() {
		var state academics.UnitState
		if err := rows.Scan(&state.SubjectID, &state.UnitID, &state.Covered); err != nil {
			return nil, fmt.Errorf("failed to scan syllabus row: %w", err)
		}
		result = append(result, state)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating syllabus rows: %w", err)
	}

	return result, nil
}
