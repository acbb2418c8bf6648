package data

import (
	"context"
	"database/sql"
	"fmt"

	"portalbackend/internal/library"
)

// =============================================================================
// RESERVATION REPOSITORY
// =============================================================================

// ReservationRepository persists library reservations. It satisfies
// library.Repository.
type ReservationRepository struct{}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{}
}

func (r *ReservationRepository) SaveReservation(ctx context.Context, res *library.Reservation) error {
	booksJSON, err := marshalJSON(res.BookIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal reserved books: %w", err)
	}

	dbConn, err := GetDB()
	if err != nil {
		return err
	}

	const stmt = `
		INSERT INTO reservations (
			reservation_id, erp_id, student_name, course_year, books_json,
			reserved_at, due_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err = dbConn.ExecContext(ctx, stmt,
		res.ID, res.ERPID, res.StudentName, res.CourseYear, booksJSON,
		formatTime(res.ReservedAt), formatTime(res.DueAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	return nil
}

func (r *ReservationRepository) LoadReservations(ctx context.Context) ([]library.Reservation, error) {
	dbConn, err := GetDB()
	if err != nil {
		return nil, err
	}

	const stmt = `
		SELECT reservation_id, erp_id, student_name, course_year, books_json,
			reserved_at, due_at
		FROM reservations
		ORDER BY reserved_at, reservation_id`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := dbConn.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to query reservations: %w", err)
	}
	defer rows.Close()

	var result []library.Reservation
	for rows.Next() {
		var res library.Reservation
		var booksJSON sql.NullString
		var reservedAt, dueAt string

		err := rows.Scan(
			&res.ID, &res.ERPID, &res.StudentName, &res.CourseYear,
			&booksJSON, &reservedAt, &dueAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reservation row: %w", err)
		}

		if err := unmarshalNullableJSON(booksJSON, &res.BookIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reserved books: %w", err)
		}
		if res.ReservedAt, err = parseTime(reservedAt); err != nil {
			return nil, fmt.Errorf("failed to parse reservation timestamp: %w", err)
		}
		if res.DueAt, err = parseTime(dueAt); err != nil {
			return nil, fmt.Errorf("failed to parse due timestamp: %w", err)
		}

		result = append(result, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reservation rows: %w", err)
	}

	return result, nil
}
