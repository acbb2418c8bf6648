package data

import (
	"context"
	"database/sql"
	"fmt"

	"portalbackend/internal/receipt"
)

// =============================================================================
// RECEIPT REPOSITORY
// =============================================================================

// ReceiptRepository persists the append-only receipt log. It satisfies
// receipt.Repository so the in-memory store writes through here.
type ReceiptRepository struct{}

func NewReceiptRepository() *ReceiptRepository {
	return &ReceiptRepository{}
}

func (r *ReceiptRepository) SaveReceipt(ctx context.Context, rec *receipt.Receipt) error {
	linesJSON, err := marshalJSON(rec.Lines)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt lines: %w", err)
	}

	chargesJSON, err := marshalJSON(rec.Charges)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt charges: %w", err)
	}

	detailsJSON, err := marshalJSON(rec.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt details: %w", err)
	}

	dbConn, err := GetDB()
	if err != nil {
		return err
	}

	const stmt = `
		INSERT INTO receipts (
			token, context, stage, student_id, method, lines_json, charges_json,
			subtotal, total, details_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err = dbConn.ExecContext(ctx, stmt,
		rec.Token, rec.Context, rec.Stage, rec.StudentID, rec.Method,
		linesJSON, chargesJSON, rec.Subtotal, rec.Total, detailsJSON,
		formatTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert receipt: %w", err)
	}

	return nil
}

func (r *ReceiptRepository) LoadReceipts(ctx context.Context) ([]receipt.Receipt, error) {
	dbConn, err := GetDB()
	if err != nil {
		return nil, err
	}

	const stmt = `
		SELECT token, context, stage, student_id, method, lines_json, charges_json,
			subtotal, total, details_json, created_at
		FROM receipts
		ORDER BY created_at, token`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := dbConn.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to query receipts: %w", err)
	}
	defer rows.Close()

	var result []receipt.Receipt
	for rows.Next() {
		rec, err := scanReceiptRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receipt row: %w", err)
		}
		result = append(result, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating receipt rows: %w", err)
	}

	return result, nil
}

func scanReceiptRow(rows *sql.Rows) (*receipt.Receipt, error) {
	var rec receipt.Receipt
	var studentID, method, linesJSON, chargesJSON, detailsJSON sql.NullString
	var createdAt string

	err := rows.Scan(
		&rec.Token, &rec.Context, &rec.Stage, &studentID, &method,
		&linesJSON, &chargesJSON, &rec.Subtotal, &rec.Total, &detailsJSON,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	rec.StudentID = studentID.String
	rec.Method = method.String

	if err := unmarshalNullableJSON(linesJSON, &rec.Lines); err != nil {
		return nil, fmt.Errorf("failed to unmarshal receipt lines: %w", err)
	}
	if err := unmarshalNullableJSON(chargesJSON, &rec.Charges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal receipt charges: %w", err)
	}
	if err := unmarshalNullableJSON(detailsJSON, &rec.Details); err != nil {
		return nil, fmt.Errorf("failed to unmarshal receipt details: %w", err)
	}

	rec.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse receipt timestamp: %w", err)
	}

	return &rec, nil
}
