package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"portalbackend/internal/ledger"
)

// =============================================================================
// SAVED CART REPOSITORY
// =============================================================================

// CartRepository stores the working cart per session key so a student's
// selections survive a restart. The cart is overwritten on every save;
// only receipts are append-only.
type CartRepository struct{}

func NewCartRepository() *CartRepository {
	return &CartRepository{}
}

func (r *CartRepository) SaveCart(ctx context.Context, key string, lines []ledger.CartLine) error {
	linesJSON, err := marshalJSON(lines)
	if err != nil {
		return fmt.Errorf("failed to marshal cart lines: %w", err)
	}

	dbConn, err := GetDB()
	if err != nil {
		return err
	}

	const stmt = `
		INSERT INTO saved_carts (cart_key, lines_json, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cart_key) DO UPDATE SET
			lines_json = excluded.lines_json,
			updated_at = excluded.updated_at`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err = dbConn.ExecContext(ctx, stmt, key, linesJSON, formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// LoadCart returns the saved lines for a key, or nil when nothing was
// saved. A malformed saved cart is treated as absent.
func (r *CartRepository) LoadCart(ctx context.Context, key string) ([]ledger.CartLine, error) {
	dbConn, err := GetDB()
	if err != nil {
		return nil, err
	}

	const stmt = `SELECT lines_json FROM saved_carts WHERE cart_key = ?`

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var linesJSON sql.NullString
	err = dbConn.QueryRowContext(ctx, stmt, key).Scan(&linesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var lines []ledger.CartLine
	if err := unmarshalNullableJSON(linesJSON, &lines); err != nil {
		return nil, nil
	}
	return lines, nil
}
