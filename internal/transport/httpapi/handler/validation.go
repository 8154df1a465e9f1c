package handler

import (
	"net/http"

	"github.com/kislikjeka/walletkeeper/internal/platform/wallet"
)

// FormValidator runs the create-wallet form validators
type FormValidator interface {
	ValidateForm(name, password, confirmation string) wallet.FormResult
}

// ValidationHandler serves the stateless form validation endpoints.
// Responses carry violation tags only; clients own the display text.
type ValidationHandler struct {
	validator FormValidator
}

// NewValidationHandler creates a new validation handler
func NewValidationHandler(validator FormValidator) *ValidationHandler {
	return &ValidationHandler{validator: validator}
}

// ValidatePasswordRequest holds the password fields of a wallet form
type ValidatePasswordRequest struct {
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// ValidateWalletNameRequest holds the name field of a wallet form
type ValidateWalletNameRequest struct {
	Name string `json:"name"`
}

// ValidationResponse reports the outcome of one validator
type ValidationResponse[T ~string] struct {
	Valid      bool             `json:"valid"`
	Violations wallet.Result[T] `json:"violations"`
}

// FormValidationResponse reports the outcome of the whole create-wallet form
type FormValidationResponse struct {
	Valid      bool              `json:"valid"`
	Violations wallet.FormResult `json:"violations"`
}

// ValidatePassword handles POST /validate/password
func (h *ValidationHandler) ValidatePassword(w http.ResponseWriter, r *http.Request) {
	var req ValidatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := wallet.ValidatePassword(req.Password, req.PasswordConfirmation)
	respondWithJSON(w, http.StatusOK, ValidationResponse[wallet.PasswordViolation]{
		Valid:      res.Valid(),
		Violations: res,
	})
}

// ValidateWalletName handles POST /validate/wallet-name
func (h *ValidationHandler) ValidateWalletName(w http.ResponseWriter, r *http.Request) {
	var req ValidateWalletNameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := wallet.ValidateWalletName(req.Name)
	respondWithJSON(w, http.StatusOK, ValidationResponse[wallet.WalletNameViolation]{
		Valid:      res.Valid(),
		Violations: res,
	})
}

// ValidateWalletForm handles POST /validate/wallet-form
func (h *ValidationHandler) ValidateWalletForm(w http.ResponseWriter, r *http.Request) {
	var req CreateWalletRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := h.validator.ValidateForm(req.Name, req.Password, req.PasswordConfirmation)
	respondWithJSON(w, http.StatusOK, FormValidationResponse{
		Valid:      res.Valid(),
		Violations: res,
	})
}
