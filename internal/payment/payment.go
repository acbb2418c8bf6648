// internal/payment/payment.go
package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"portalbackend/internal/receipt"
)

var (
	// ErrNotEligible means the requested stage is not the first unpaid
	// stage in sequence order.
	ErrNotEligible = errors.New("stage is not eligible for payment")
	// ErrAlreadyPaid means the stage was paid earlier; the original
	// receipt stays fetchable from the store.
	ErrAlreadyPaid = errors.New("stage is already paid")
	// ErrUnknownStage means no stage with that number exists.
	ErrUnknownStage = errors.New("unknown stage")
	// ErrEmptyCart means a checkout was confirmed with nothing selected.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrMissingMethod means no payment method was supplied.
	ErrMissingMethod = errors.New("payment method is required")
)

// Token collisions are astronomically unlikely with UUIDs, but the store
// contract says regenerate rather than overwrite, so we retry a few times
// before giving up.
const maxTokenAttempts = 5

func freshToken() string {
	return uuid.NewString()
}

// appendWithFreshToken mints a token, stamps it on the receipt and appends
// it, regenerating on collision.
func appendWithFreshToken(ctx context.Context, store *receipt.Store, r *receipt.Receipt) error {
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		r.Token = freshToken()
		err := store.Append(ctx, *r)
		if err == nil {
			return nil
		}
		if !errors.Is(err, receipt.ErrTokenExists) {
			return err
		}
	}
	return fmt.Errorf("could not mint a unique receipt token after %d attempts", maxTokenAttempts)
}
