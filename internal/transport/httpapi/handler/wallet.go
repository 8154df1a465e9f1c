package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kislikjeka/walletkeeper/internal/platform/wallet"
	"github.com/kislikjeka/walletkeeper/internal/transport/httpapi/middleware"
)

// WalletServiceInterface defines the interface for wallet operations
type WalletServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, name, password, confirmation string) (*wallet.Wallet, error)
	List(ctx context.Context, userID uuid.UUID) ([]*wallet.Wallet, error)
	GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*wallet.Wallet, error)
	SelectCurrent(ctx context.Context, userID, walletID uuid.UUID) error
	CurrentName(ctx context.Context, userID uuid.UUID) (string, error)
	VerifyPassword(ctx context.Context, walletID, userID uuid.UUID, password string) error
	RemoveCurrent(ctx context.Context, userID uuid.UUID, password string) error
}

// WalletHandler handles wallet-related HTTP requests
type WalletHandler struct {
	walletService WalletServiceInterface
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletService WalletServiceInterface) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// CreateWalletRequest represents the wallet creation request
type CreateWalletRequest struct {
	Name                 string `json:"name"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// SelectWalletRequest represents the current wallet selection request
type SelectWalletRequest struct {
	WalletID string `json:"wallet_id"`
}

// PasswordRequest carries a wallet spending password
type PasswordRequest struct {
	Password string `json:"password"`
}

// WalletResponse represents a wallet response
type WalletResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// WalletsListResponse represents the response for listing wallets
type WalletsListResponse struct {
	Wallets []WalletResponse `json:"wallets"`
}

// WalletNameResponse represents the current wallet name
type WalletNameResponse struct {
	Name string `json:"name"`
}

// FormViolationResponse is returned when a submitted form fails validation
type FormViolationResponse struct {
	Error      string                `json:"error"`
	Violations wallet.PasswordResult `json:"violations"`
}

// CreateWallet handles POST /wallets
func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateWalletRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.walletService.Create(r.Context(), userID, req.Name, req.Password, req.PasswordConfirmation)
	if err != nil {
		h.respondWalletError(w, err, "failed to create wallet")
		return
	}

	respondWithJSON(w, http.StatusCreated, toWalletResponse(created))
}

// GetWallets handles GET /wallets
func (h *WalletHandler) GetWallets(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	wallets, err := h.walletService.List(r.Context(), userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to fetch wallets")
		return
	}

	responses := make([]WalletResponse, 0, len(wallets))
	for _, wlt := range wallets {
		responses = append(responses, toWalletResponse(wlt))
	}

	respondWithJSON(w, http.StatusOK, WalletsListResponse{Wallets: responses})
}

// GetWallet handles GET /wallets/{id}
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	walletID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid wallet ID")
		return
	}

	wlt, err := h.walletService.GetByID(r.Context(), walletID, userID)
	if err != nil {
		h.respondWalletError(w, err, "failed to fetch wallet")
		return
	}

	respondWithJSON(w, http.StatusOK, toWalletResponse(wlt))
}

// SelectCurrentWallet handles PUT /wallets/current
func (h *WalletHandler) SelectCurrentWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SelectWalletRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	walletID, err := uuid.Parse(req.WalletID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid wallet ID")
		return
	}

	if err := h.walletService.SelectCurrent(r.Context(), userID, walletID); err != nil {
		h.respondWalletError(w, err, "failed to select wallet")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetCurrentWalletName handles GET /wallets/current/name
func (h *WalletHandler) GetCurrentWalletName(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	name, err := h.walletService.CurrentName(r.Context(), userID)
	if err != nil {
		h.respondWalletError(w, err, "failed to fetch current wallet")
		return
	}

	respondWithJSON(w, http.StatusOK, WalletNameResponse{Name: name})
}

// VerifyPassword handles POST /wallets/{id}/verify-password
func (h *WalletHandler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	walletID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid wallet ID")
		return
	}

	var req PasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.walletService.VerifyPassword(r.Context(), walletID, userID, req.Password); err != nil {
		h.respondWalletError(w, err, "failed to verify password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveCurrentWallet handles DELETE /wallets/current
func (h *WalletHandler) RemoveCurrentWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req PasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.walletService.RemoveCurrent(r.Context(), userID, req.Password); err != nil {
		h.respondWalletError(w, err, "failed to remove wallet")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// respondWalletError maps wallet domain errors to HTTP responses
func (h *WalletHandler) respondWalletError(w http.ResponseWriter, err error, fallback string) {
	var formErr *wallet.FormError
	if errors.As(err, &formErr) {
		respondWithJSON(w, http.StatusUnprocessableEntity, FormViolationResponse{
			Error:      "validation failed",
			Violations: formErr.Password,
		})
		return
	}

	switch {
	case errors.Is(err, wallet.ErrMissingWalletName),
		errors.Is(err, wallet.ErrWalletNameTooLong),
		errors.Is(err, wallet.ErrInvalidUserID),
		errors.Is(err, wallet.ErrPasswordRequired):
		respondWithError(w, http.StatusBadRequest, errorText(err))
	case errors.Is(err, wallet.ErrInvalidPassword):
		respondWithError(w, http.StatusUnauthorized, "password verification failed")
	case errors.Is(err, wallet.ErrUnauthorizedAccess):
		respondWithError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, wallet.ErrWalletNotFound):
		respondWithError(w, http.StatusNotFound, "wallet not found")
	case errors.Is(err, wallet.ErrNoCurrentWallet):
		respondWithError(w, http.StatusNotFound, "no current wallet selected")
	case errors.Is(err, wallet.ErrDuplicateWalletName):
		respondWithError(w, http.StatusConflict, "wallet name already exists")
	case errors.Is(err, wallet.ErrTooManyAttempts):
		w.Header().Set("Retry-After", "60")
		respondWithError(w, http.StatusTooManyRequests, "too many password attempts")
	case errors.Is(err, wallet.ErrWalletRemoval):
		respondWithError(w, http.StatusInternalServerError, "wallet removal failed")
	default:
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// errorText strips the service's wrapping so clients see only the domain message
func errorText(err error) string {
	for _, target := range []error{
		wallet.ErrMissingWalletName,
		wallet.ErrWalletNameTooLong,
		wallet.ErrInvalidUserID,
		wallet.ErrPasswordRequired,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

func toWalletResponse(wlt *wallet.Wallet) WalletResponse {
	return WalletResponse{
		ID:        wlt.ID.String(),
		Name:      wlt.Name,
		CreatedAt: wlt.CreatedAt.Format(time.RFC3339),
		UpdatedAt: wlt.UpdatedAt.Format(time.RFC3339),
	}
}
