package data

import (
	"context"
	"fmt"

	"portalbackend/internal/activity"
)

// =============================================================================
// ACTIVITY REPOSITORY
// =============================================================================

// ActivityRepository persists activity-point entries. It satisfies
// activity.Repository.
type ActivityRepository struct{}

func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{}
}

func (r *ActivityRepository) SaveEntry(ctx context.Context, e *activity.Entry) error {
	dbConn, err := GetDB()
	if err != nil {
		return err
	}

	const stmt = `
		INSERT INTO activity_entries (
			entry_id, student_id, title, category, points, held_on
		) VALUES (?, ?, ?, ?, ?, ?)`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err = dbConn.ExecContext(ctx, stmt,
		e.EntryID, e.StudentID, e.Title, e.Category, e.Points, formatTime(e.HeldOn),
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity entry: %w", err)
	}
	return nil
}

func (r *ActivityRepository) LoadEntries(ctx context.Context) ([]activity.Entry, error) {
	dbConn, err := GetDB()
	if err != nil {
		return nil, err
	}

	const stmt = `
		SELECT entry_id, student_id, title, category, points, held_on
		FROM activity_entries
		ORDER BY held_on, entry_id`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := dbConn.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to query activity entries: %w", err)
	}
	defer rows.Close()

	var result []activity.Entry
	for rows.Next() {
		var e activity.Entry
		var heldOn string

		if err := rows.Scan(&e.EntryID, &e.StudentID, &e.Title, &e.Category, &e.Points, &heldOn); err != nil {
			return nil, fmt.Errorf("failed to scan activity row: %w", err)
		}
		if e.HeldOn, err = parseTime(heldOn); err != nil {
			return nil, fmt.Errorf("failed to parse activity timestamp: %w", err)
		}
		result = append(result, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}

	return result, nil
}
