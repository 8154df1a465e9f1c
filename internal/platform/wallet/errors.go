package wallet

import "errors"

var (
	// Validation errors
	ErrInvalidUserID       = errors.New("invalid user ID")
	ErrMissingWalletName   = errors.New("wallet name is required")
	ErrWalletNameTooLong   = errors.New("wallet name exceeds 40 characters")
	ErrDuplicateWalletName = errors.New("wallet name already exists for this user")

	// Password errors
	ErrPasswordRequired = errors.New("password is required")
	ErrInvalidPassword  = errors.New("invalid wallet password")
	ErrTooManyAttempts  = errors.New("too many password attempts, please try again later")

	// Repository errors
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrUnauthorizedAccess = errors.New("unauthorized wallet access")

	// Current wallet errors
	ErrNoCurrentWallet = errors.New("no current wallet selected")
	ErrWalletRemoval   = errors.New("failed to remove wallet")
)
