package wallet

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kislikjeka/walletkeeper/pkg/logger"
)

// Service provides business logic for wallet operations
type Service struct {
	repo       Repository
	selection  SelectionStore
	attempts   AttemptLimiter
	bcryptCost int
	logger     *logger.Logger
}

// NewService creates a new wallet service
func NewService(repo Repository, selection SelectionStore, attempts AttemptLimiter, bcryptCost int, log *logger.Logger) *Service {
	return &Service{
		repo:       repo,
		selection:  selection,
		attempts:   attempts,
		bcryptCost: bcryptCost,
		logger:     log.WithField("component", "wallet"),
	}
}

// ValidateForm runs the create-wallet form validators
func (s *Service) ValidateForm(name, password, confirmation string) FormResult {
	return FormResult{
		Name:     ValidateWalletName(name),
		Password: ValidatePassword(password, confirmation),
	}
}

// Create creates a new wallet for a user and makes it the current one
func (s *Service) Create(ctx context.Context, userID uuid.UUID, name, password, confirmation string) (*Wallet, error) {
	if res := ValidatePassword(password, confirmation); !res.Valid() {
		return nil, &FormError{Password: res}
	}

	wallet := &Wallet{UserID: userID, Name: name}
	if err := wallet.ValidateCreate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	exists, err := s.repo.ExistsByUserAndName(ctx, wallet.UserID, wallet.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check wallet existence: %w", err)
	}
	if exists {
		return nil, ErrDuplicateWalletName
	}

	if err := wallet.SetPassword(password, s.bcryptCost); err != nil {
		return nil, err
	}

	wallet.ID = uuid.New()
	if err := s.repo.Create(ctx, wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	// A new wallet becomes current; the wallet itself already exists, so a
	// selection failure is not fatal.
	if err := s.selection.Set(ctx, userID, wallet.ID); err != nil {
		s.logger.WithContext(ctx).Warn("failed to select new wallet", "wallet_id", wallet.ID, "error", err)
	}

	s.logger.WithContext(ctx).Info("wallet created", "wallet_id", wallet.ID)
	return wallet, nil
}

// GetByID retrieves a wallet by ID and validates user ownership
func (s *Service) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*Wallet, error) {
	wallet, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if wallet.UserID != userID {
		return nil, ErrUnauthorizedAccess
	}

	return wallet, nil
}

// List retrieves all wallets for a user
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Wallet, error) {
	wallets, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	return wallets, nil
}

// SelectCurrent makes an owned wallet the user's current wallet
func (s *Service) SelectCurrent(ctx context.Context, userID, walletID uuid.UUID) error {
	if _, err := s.GetByID(ctx, walletID, userID); err != nil {
		return err
	}

	if err := s.selection.Set(ctx, userID, walletID); err != nil {
		return fmt.Errorf("failed to select wallet: %w", err)
	}

	return nil
}

// Current returns the user's current wallet
func (s *Service) Current(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	walletID, ok, err := s.selection.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current wallet: %w", err)
	}
	if !ok {
		return nil, ErrNoCurrentWallet
	}

	wallet, err := s.GetByID(ctx, walletID, userID)
	if err != nil {
		if errors.Is(err, ErrWalletNotFound) || errors.Is(err, ErrUnauthorizedAccess) {
			// Stale selection
			if clearErr := s.selection.Clear(ctx, userID); clearErr != nil {
				s.logger.WithContext(ctx).Warn("failed to clear stale selection", "error", clearErr)
			}
			return nil, ErrNoCurrentWallet
		}
		return nil, err
	}

	return wallet, nil
}

// CurrentName returns the display name of the user's current wallet
func (s *Service) CurrentName(ctx context.Context, userID uuid.UUID) (string, error) {
	wallet, err := s.Current(ctx, userID)
	if err != nil {
		return "", err
	}
	return wallet.Name, nil
}

// VerifyPassword checks a wallet's spending password.
// Attempts are throttled per wallet; a correct password resets the budget.
func (s *Service) VerifyPassword(ctx context.Context, walletID, userID uuid.UUID, password string) error {
	if password == "" {
		return ErrPasswordRequired
	}

	wallet, err := s.GetByID(ctx, walletID, userID)
	if err != nil {
		return err
	}

	return s.checkPassword(ctx, wallet, password)
}

func (s *Service) checkPassword(ctx context.Context, wallet *Wallet, password string) error {
	if !s.attempts.Allow(wallet.ID) {
		s.logger.WithContext(ctx).Warn("password attempts exhausted", "wallet_id", wallet.ID)
		return ErrTooManyAttempts
	}

	if err := wallet.CheckPassword(password); err != nil {
		return err
	}

	s.attempts.Reset(wallet.ID)
	return nil
}

// RemoveCurrent deletes the user's current wallet after verifying its password
func (s *Service) RemoveCurrent(ctx context.Context, userID uuid.UUID, password string) error {
	if password == "" {
		return ErrPasswordRequired
	}

	wallet, err := s.Current(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.checkPassword(ctx, wallet, password); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, wallet.ID); err != nil {
		return fmt.Errorf("%w: %w", ErrWalletRemoval, err)
	}

	if err := s.selection.Clear(ctx, userID); err != nil {
		s.logger.WithContext(ctx).Warn("failed to clear selection after removal", "wallet_id", wallet.ID, "error", err)
	}
	s.attempts.Reset(wallet.ID)

	s.logger.WithContext(ctx).Info("wallet removed", "wallet_id", wallet.ID)
	return nil
}
