package wallet

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for wallet data access
type Repository interface {
	// Create creates a new wallet
	Create(ctx context.Context, wallet *Wallet) error

	// GetByID retrieves a wallet by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Wallet, error)

	// GetByUserID retrieves all wallets for a user
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*Wallet, error)

	// Delete deletes a wallet by ID
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByUserAndName checks if a wallet with the given name exists for the user
	ExistsByUserAndName(ctx context.Context, userID uuid.UUID, name string) (bool, error)
}

// SelectionStore keeps track of each user's current wallet
type SelectionStore interface {
	// Get returns the current wallet ID; ok is false when none is selected
	Get(ctx context.Context, userID uuid.UUID) (walletID uuid.UUID, ok bool, err error)

	// Set makes walletID the user's current wallet
	Set(ctx context.Context, userID, walletID uuid.UUID) error

	// Clear forgets the user's current wallet
	Clear(ctx context.Context, userID uuid.UUID) error
}

// AttemptLimiter throttles password verification attempts per wallet
type AttemptLimiter interface {
	Allow(walletID uuid.UUID) bool
	Reset(walletID uuid.UUID)
}
