package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kislikjeka/walletkeeper/internal/platform/wallet"
	"github.com/kislikjeka/walletkeeper/internal/transport/httpapi/handler"
	"github.com/kislikjeka/walletkeeper/internal/transport/httpapi/middleware"
)

// MockWalletService is a mock implementation of handler.WalletServiceInterface
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) Create(ctx context.Context, userID uuid.UUID, name, password, confirmation string) (*wallet.Wallet, error) {
	args := m.Called(ctx, userID, name, password, confirmation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletService) List(ctx context.Context, userID uuid.UUID) ([]*wallet.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*wallet.Wallet), args.Error(1)
}

func (m *MockWalletService) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*wallet.Wallet, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*wallet.Wallet), args.Error(1)
}

func (m *MockWalletService) SelectCurrent(ctx context.Context, userID, walletID uuid.UUID) error {
	return m.Called(ctx, userID, walletID).Error(0)
}

func (m *MockWalletService) CurrentName(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockWalletService) VerifyPassword(ctx context.Context, walletID, userID uuid.UUID, password string) error {
	return m.Called(ctx, walletID, userID, password).Error(0)
}

func (m *MockWalletService) RemoveCurrent(ctx context.Context, userID uuid.UUID, password string) error {
	return m.Called(ctx, userID, password).Error(0)
}

// newRequest builds an authenticated request; chi URL params are optional key/value pairs
func newRequest(t *testing.T, method, target string, userID uuid.UUID, body any, params ...string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)

	ctx := req.Context()
	if userID != uuid.Nil {
		ctx = middleware.WithUserID(ctx, userID)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for i := 0; i+1 < len(params); i += 2 {
			rctx.URLParams.Add(params[i], params[i+1])
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestWalletHandler_CreateWallet(t *testing.T) {
	userID := uuid.New()
	created := &wallet.Wallet{ID: uuid.New(), UserID: userID, Name: "Daily", CreatedAt: time.Now(), UpdatedAt: time.Now()}

	tests := []struct {
		name       string
		body       any
		setupMock  func(m *MockWalletService)
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name: "created",
			body: handler.CreateWalletRequest{Name: "Daily", Password: "pw", PasswordConfirmation: "pw"},
			setupMock: func(m *MockWalletService) {
				m.On("Create", mock.Anything, userID, "Daily", "pw", "pw").Return(created, nil)
			},
			wantStatus: http.StatusCreated,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, created.ID.String(), body["id"])
				assert.Equal(t, "Daily", body["name"])
				assert.NotContains(t, body, "password_hash")
			},
		},
		{
			name: "form violations",
			body: handler.CreateWalletRequest{Name: "Daily", Password: "", PasswordConfirmation: ""},
			setupMock: func(m *MockWalletService) {
				m.On("Create", mock.Anything, userID, "Daily", "", "").
					Return(nil, &wallet.FormError{Password: wallet.ValidatePassword("", "")})
			},
			wantStatus: http.StatusUnprocessableEntity,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, map[string]any{"passwordReq": true, "passwordConfirmationReq": true}, body["violations"])
			},
		},
		{
			name: "duplicate name",
			body: handler.CreateWalletRequest{Name: "Daily", Password: "pw", PasswordConfirmation: "pw"},
			setupMock: func(m *MockWalletService) {
				m.On("Create", mock.Anything, userID, "Daily", "pw", "pw").Return(nil, wallet.ErrDuplicateWalletName)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "name too long",
			body: handler.CreateWalletRequest{Name: "x", Password: "pw", PasswordConfirmation: "pw"},
			setupMock: func(m *MockWalletService) {
				m.On("Create", mock.Anything, userID, "x", "pw", "pw").
					Return(nil, fmt.Errorf("validation failed: %w", wallet.ErrWalletNameTooLong))
			},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, wallet.ErrWalletNameTooLong.Error(), body["error"])
			},
		},
		{
			name:       "unknown field",
			body:       map[string]string{"name": "Daily", "passphrase": "pw"},
			setupMock:  func(*MockWalletService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "storage failure",
			body: handler.CreateWalletRequest{Name: "Daily", Password: "pw", PasswordConfirmation: "pw"},
			setupMock: func(m *MockWalletService) {
				m.On("Create", mock.Anything, userID, "Daily", "pw", "pw").Return(nil, errors.New("db down"))
			},
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "failed to create wallet", body["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockWalletService)
			tt.setupMock(svc)
			h := handler.NewWalletHandler(svc)

			rec := httptest.NewRecorder()
			h.CreateWallet(rec, newRequest(t, http.MethodPost, "/wallets", userID, tt.body))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.check != nil {
				tt.check(t, decodeBody(t, rec))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestWalletHandler_Unauthenticated(t *testing.T) {
	h := handler.NewWalletHandler(new(MockWalletService))

	rec := httptest.NewRecorder()
	h.GetWallets(rec, newRequest(t, http.MethodGet, "/wallets", uuid.Nil, nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWalletHandler_GetWallets(t *testing.T) {
	userID := uuid.New()
	svc := new(MockWalletService)
	svc.On("List", mock.Anything, userID).Return([]*wallet.Wallet{
		{ID: uuid.New(), UserID: userID, Name: "A"},
		{ID: uuid.New(), UserID: userID, Name: "B"},
	}, nil)

	rec := httptest.NewRecorder()
	handler.NewWalletHandler(svc).GetWallets(rec, newRequest(t, http.MethodGet, "/wallets", userID, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp handler.WalletsListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Wallets, 2)
	assert.Equal(t, "A", resp.Wallets[0].Name)
}

func TestWalletHandler_GetWallet(t *testing.T) {
	userID := uuid.New()
	walletID := uuid.New()

	t.Run("invalid id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.NewWalletHandler(new(MockWalletService)).
			GetWallet(rec, newRequest(t, http.MethodGet, "/wallets/x", userID, nil, "id", "x"))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("foreign wallet", func(t *testing.T) {
		svc := new(MockWalletService)
		svc.On("GetByID", mock.Anything, walletID, userID).Return(nil, wallet.ErrUnauthorizedAccess)

		rec := httptest.NewRecorder()
		handler.NewWalletHandler(svc).
			GetWallet(rec, newRequest(t, http.MethodGet, "/wallets/"+walletID.String(), userID, nil, "id", walletID.String()))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockWalletService)
		svc.On("GetByID", mock.Anything, walletID, userID).Return(nil, wallet.ErrWalletNotFound)

		rec := httptest.NewRecorder()
		handler.NewWalletHandler(svc).
			GetWallet(rec, newRequest(t, http.MethodGet, "/wallets/"+walletID.String(), userID, nil, "id", walletID.String()))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestWalletHandler_CurrentWallet(t *testing.T) {
	userID := uuid.New()
	walletID := uuid.New()

	t.Run("select", func(t *testing.T) {
		svc := new(MockWalletService)
		svc.On("SelectCurrent", mock.Anything, userID, walletID).Return(nil)

		rec := httptest.NewRecorder()
		handler.NewWalletHandler(svc).SelectCurrentWallet(rec, newRequest(t, http.MethodPut, "/wallets/current", userID,
			handler.SelectWalletRequest{WalletID: walletID.String()}))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("select invalid id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.NewWalletHandler(new(MockWalletService)).SelectCurrentWallet(rec, newRequest(t, http.MethodPut, "/wallets/current", userID,
			handler.SelectWalletRequest{WalletID: "nope"}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("name", func(t *testing.T) {
		svc := new(MockWalletService)
		svc.On("CurrentName", mock.Anything, userID).Return("Daily", nil)

		rec := httptest.NewRecorder()
		handler.NewWalletHandler(svc).GetCurrentWalletName(rec, newRequest(t, http.MethodGet, "/wallets/current/name", userID, nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Daily", decodeBody(t, rec)["name"])
	})

	t.Run("name without selection", func(t *testing.T) {
		svc := new(MockWalletService)
		svc.On("CurrentName", mock.Anything, userID).Return("", wallet.ErrNoCurrentWallet)

		rec := httptest.NewRecorder()
		handler.NewWalletHandler(svc).GetCurrentWalletName(rec, newRequest(t, http.MethodGet, "/wallets/current/name", userID, nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestWalletHandler_VerifyPassword(t *testing.T) {
	userID := uuid.New()
	walletID := uuid.New()

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "verified", serviceErr: nil, wantStatus: http.StatusNoContent},
		{name: "empty", serviceErr: wallet.ErrPasswordRequired, wantStatus: http.StatusBadRequest},
		{name: "wrong", serviceErr: wallet.ErrInvalidPassword, wantStatus: http.StatusUnauthorized},
		{name: "throttled", serviceErr: wallet.ErrTooManyAttempts, wantStatus: http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockWalletService)
			svc.On("VerifyPassword", mock.Anything, walletID, userID, "pw").Return(tt.serviceErr)

			rec := httptest.NewRecorder()
			handler.NewWalletHandler(svc).VerifyPassword(rec, newRequest(t, http.MethodPost, "/wallets/"+walletID.String()+"/verify-password",
				userID, handler.PasswordRequest{Password: "pw"}, "id", walletID.String()))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.serviceErr == wallet.ErrTooManyAttempts {
				assert.Equal(t, "60", rec.Header().Get("Retry-After"))
			}
		})
	}
}

func TestWalletHandler_RemoveCurrentWallet(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "removed", serviceErr: nil, wantStatus: http.StatusNoContent},
		{name: "empty password", serviceErr: wallet.ErrPasswordRequired, wantStatus: http.StatusBadRequest},
		{name: "verification error", serviceErr: wallet.ErrInvalidPassword, wantStatus: http.StatusUnauthorized},
		{name: "no current wallet", serviceErr: wallet.ErrNoCurrentWallet, wantStatus: http.StatusNotFound},
		{name: "removal error", serviceErr: fmt.Errorf("%w: %w", wallet.ErrWalletRemoval, errors.New("db down")), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockWalletService)
			svc.On("RemoveCurrent", mock.Anything, userID, "pw").Return(tt.serviceErr)

			rec := httptest.NewRecorder()
			handler.NewWalletHandler(svc).RemoveCurrentWallet(rec, newRequest(t, http.MethodDelete, "/wallets/current",
				userID, handler.PasswordRequest{Password: "pw"}))

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertExpectations(t)
		})
	}
}
