package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kislikjeka/walletkeeper/internal/transport/httpapi/handler"
	"github.com/kislikjeka/walletkeeper/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/walletkeeper/pkg/logger"
)

// Config holds router configuration
type Config struct {
	Logger            *logger.Logger
	AllowedOrigins    []string
	RateLimiter       *middleware.RateLimiter
	TrustProxy        bool // take the client address from X-Real-IP / X-Forwarded-For
	WalletHandler     *handler.WalletHandler
	ValidationHandler *handler.ValidationHandler
	HealthHandler     *handler.HealthHandler
	JWTMiddleware     func(http.Handler) http.Handler
}

// NewRouter creates a new HTTP router
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware. Compress sits outside Logger so the logger sees
	// uncompressed error bodies.
	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Compress(5))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Middleware)
	}

	// Health check endpoints (no authentication required)
	r.Get("/health", handler.GetHealth)
	r.Get("/health/live", handler.GetLiveness)
	if cfg.HealthHandler != nil {
		r.Get("/health/ready", cfg.HealthHandler.GetReadiness)
		r.Get("/health/detailed", cfg.HealthHandler.GetHealthDetailed)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Form validation is stateless and public
		if cfg.ValidationHandler != nil {
			r.Post("/validate/password", cfg.ValidationHandler.ValidatePassword)
			r.Post("/validate/wallet-name", cfg.ValidationHandler.ValidateWalletName)
			r.Post("/validate/wallet-form", cfg.ValidationHandler.ValidateWalletForm)
		}

		if cfg.JWTMiddleware != nil && cfg.WalletHandler != nil {
			r.Group(func(r chi.Router) {
				r.Use(cfg.JWTMiddleware)

				r.Post("/wallets", cfg.WalletHandler.CreateWallet)
				r.Get("/wallets", cfg.WalletHandler.GetWallets)
				r.Put("/wallets/current", cfg.WalletHandler.SelectCurrentWallet)
				r.Get("/wallets/current/name", cfg.WalletHandler.GetCurrentWalletName)
				r.Delete("/wallets/current", cfg.WalletHandler.RemoveCurrentWallet)
				r.Get("/wallets/{id}", cfg.WalletHandler.GetWallet)
				r.Post("/wallets/{id}/verify-password", cfg.WalletHandler.VerifyPassword)
			})
		}
	})

	return r
}
