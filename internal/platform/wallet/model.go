package wallet

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MaxNameLength is the longest wallet name that can be stored, in characters
const MaxNameLength = 40

// Wallet is a user-owned wallet protected by a spending password
type Wallet struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Name         string    `json:"name" db:"name"` // Display label, not key material
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ValidateCreate validates wallet fields for creation.
// The name is trimmed in place.
func (w *Wallet) ValidateCreate() error {
	if w.UserID == uuid.Nil {
		return ErrInvalidUserID
	}

	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return ErrMissingWalletName
	}

	if utf8.RuneCountInString(w.Name) > MaxNameLength {
		return ErrWalletNameTooLong
	}

	return nil
}

// SetPassword hashes and sets the wallet's spending password
func (w *Wallet) SetPassword(password string, cost int) error {
	if password == "" {
		return ErrPasswordRequired
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	w.PasswordHash = string(hash)
	return nil
}

// CheckPassword checks the provided password against the stored hash
func (w *Wallet) CheckPassword(password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(w.PasswordHash), []byte(password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidPassword
		}
		return fmt.Errorf("failed to check password: %w", err)
	}
	return nil
}

// FormResult is the combined outcome of the create-wallet form validators
type FormResult struct {
	Name     WalletNameResult `json:"name"`
	Password PasswordResult   `json:"password"`
}

// Valid reports whether neither field has violations
func (r FormResult) Valid() bool {
	return r.Name.Valid() && r.Password.Valid()
}

// FormError reports password form violations across the service boundary
type FormError struct {
	Password PasswordResult
}

func (e *FormError) Error() string {
	tags := make([]string, 0, 3)
	for _, v := range e.Password.Violations() {
		tags = append(tags, string(v))
	}
	return "invalid wallet form: " + strings.Join(tags, ", ")
}
