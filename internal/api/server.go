// Package api is the HTTP surface: the WhatsApp webhook, the
// token-guarded admin API and the health probes.
package api

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/satkam/partsbot/internal/log"
	"github.com/satkam/partsbot/internal/settings"
)

// ServerConfig contains configuration for creating the HTTP server.
type ServerConfig struct {
	Logger      log.Logger
	Engine      MessageHandler  // Required
	Sender      ReplySender     // Required
	Store       AdminStore      // Required
	Settings    *settings.Cache // Required
	Pool        *pgxpool.Pool   // Optional: nil disables the DB ping in /ready
	VerifyToken string          // Required: webhook subscription handshake
	AdminToken  string          // Required: bearer token for /api/v1
	RateBurst   int             // Rate limiter burst size per IP (0 = default 60)
}

// Server is the HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates a server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Engine == nil || cfg.Sender == nil {
		return nil, errors.New("engine and sender are required")
	}
	if cfg.Store == nil || cfg.Settings == nil {
		return nil, errors.New("store and settings cache are required")
	}
	if cfg.VerifyToken == "" || cfg.AdminToken == "" {
		return nil, errors.New("verify and admin tokens are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	wh := &webhookHandler{
		verifyToken: cfg.VerifyToken,
		engine:      cfg.Engine,
		sender:      cfg.Sender,
		settings:    cfg.Settings,
		logger:      logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /whatsapp-webhook", wh.verify)
	mux.HandleFunc("POST /whatsapp-webhook", wh.receive)

	ah := &adminHandler{store: cfg.Store, settings: cfg.Settings, logger: logger}

	admin := http.NewServeMux()
	admin.HandleFunc("GET /api/v1/customers", ah.listCustomers)
	admin.HandleFunc("POST /api/v1/customers", ah.createCustomer)
	admin.HandleFunc("GET /api/v1/customers/{id}", ah.getCustomer)
	admin.HandleFunc("PUT /api/v1/customers/{id}", ah.updateCustomer)
	admin.HandleFunc("DELETE /api/v1/customers/{id}", ah.deleteCustomer)

	admin.HandleFunc("GET /api/v1/products", ah.listProducts)
	admin.HandleFunc("POST /api/v1/products", ah.createProduct)
	admin.HandleFunc("GET /api/v1/products/low-stock", ah.lowStock)
	admin.HandleFunc("GET /api/v1/products/stats", ah.productStats)
	admin.HandleFunc("GET /api/v1/products/{id}", ah.getProduct)
	admin.HandleFunc("PUT /api/v1/products/{id}", ah.updateProduct)
	admin.HandleFunc("DELETE /api/v1/products/{id}", ah.deleteProduct)

	admin.HandleFunc("GET /api/v1/workshops", ah.listWorkshops)
	admin.HandleFunc("POST /api/v1/workshops", ah.createWorkshop)
	admin.HandleFunc("GET /api/v1/workshops/{id}", ah.getWorkshop)
	admin.HandleFunc("PUT /api/v1/workshops/{id}", ah.updateWorkshop)
	admin.HandleFunc("DELETE /api/v1/workshops/{id}", ah.deleteWorkshop)

	admin.HandleFunc("GET /api/v1/orders", ah.listOrders)
	admin.HandleFunc("GET /api/v1/orders/{number}", ah.getOrder)
	admin.HandleFunc("PATCH /api/v1/orders/{number}", ah.updateOrder)

	admin.HandleFunc("GET /api/v1/settings", ah.listSettings)
	admin.HandleFunc("PUT /api/v1/settings", ah.upsertSetting)
	admin.HandleFunc("POST /api/v1/settings/reload", ah.reloadSettings)

	mux.Handle("/api/v1/", bearerAuthMiddleware(cfg.AdminToken, logger)(admin))

	// Rate limiter: per-IP token bucket (1 token/sec refill)
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 60
	}
	rl := newRateLimiter(1.0, burst)

	// Middleware stack (outermost first):
	//   Recovery → RequestID → Logging → RateLimit → Routes
	// RequestID must be before Logging so request_id is available in log
	// attributes.
	var handler http.Handler = mux
	handler = rateLimitMiddleware(rl, logger)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes bypass the middleware stack.
	hh := &healthHandler{pool: cfg.Pool, logger: logger}
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", hh.liveness)
	topMux.HandleFunc("GET /ready", hh.readiness)
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
