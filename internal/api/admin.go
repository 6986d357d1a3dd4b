package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/satkam/partsbot/internal/log"
	"github.com/satkam/partsbot/internal/settings"
	"github.com/satkam/partsbot/internal/store"
)

// AdminStore is the data-store surface behind the admin API.
type AdminStore interface {
	ListCustomers(ctx context.Context, limit int) ([]store.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*store.Customer, error)
	CreateCustomer(ctx context.Context, c *store.Customer) (*store.Customer, error)
	UpdateCustomer(ctx context.Context, c *store.Customer) (*store.Customer, error)
	DeactivateCustomer(ctx context.Context, id uuid.UUID) error

	SearchProducts(ctx context.Context, f store.ProductFilter) ([]store.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*store.Product, error)
	CreateProduct(ctx context.Context, p *store.Product) (*store.Product, error)
	UpdateProduct(ctx context.Context, p *store.Product) (*store.Product, error)
	DeactivateProduct(ctx context.Context, id uuid.UUID) error
	ListLowStockProducts(ctx context.Context) ([]store.Product, error)
	GetProductStats(ctx context.Context) (*store.ProductStats, error)

	SearchWorkshops(ctx context.Context, f store.WorkshopFilter) ([]store.Workshop, error)
	GetWorkshop(ctx context.Context, id uuid.UUID) (*store.Workshop, error)
	CreateWorkshop(ctx context.Context, w *store.Workshop) (*store.Workshop, error)
	UpdateWorkshop(ctx context.Context, w *store.Workshop) (*store.Workshop, error)
	DeactivateWorkshop(ctx context.Context, id uuid.UUID) error

	ListOrders(ctx context.Context, limit int) ([]store.Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*store.Order, error)
	UpdateOrderStatus(ctx context.Context, number, status, paymentStatus string) error

	ListSettings(ctx context.Context) ([]store.Setting, error)
	UpsertSetting(ctx context.Context, st store.Setting) error
}

type adminHandler struct {
	store    AdminStore
	settings *settings.Cache
	logger   log.Logger
}

func (h *adminHandler) notFoundOr500(w http.ResponseWriter, err error, what string) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", what+" not found", h.logger)
		return
	}
	h.logger.Error("admin request failed", "what", what, "error", err)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", h.logger)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any, logger log.Logger) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxWebhookBody)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body", logger)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, logger log.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid id", logger)
		return uuid.Nil, false
	}
	return id, true
}

func queryLimit(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return n
}

// Customers

func (h *adminHandler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.store.ListCustomers(r.Context(), queryLimit(r))
	if err != nil {
		h.notFoundOr500(w, err, "customers")
		return
	}
	writeJSON(w, http.StatusOK, customers, h.logger)
}

func (h *adminHandler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	c, err := h.store.GetCustomer(r.Context(), id)
	if err != nil {
		h.notFoundOr500(w, err, "customer")
		return
	}
	writeJSON(w, http.StatusOK, c, h.logger)
}

func (h *adminHandler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var c store.Customer
	if !decodeBody(w, r, &c, h.logger) {
		return
	}
	created, err := h.store.CreateCustomer(r.Context(), &c)
	if err != nil {
		h.notFoundOr500(w, err, "customer")
		return
	}
	writeJSON(w, http.StatusCreated, created, h.logger)
}

func (h *adminHandler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	var c store.Customer
	if !decodeBody(w, r, &c, h.logger) {
		return
	}
	c.ID = id
	updated, err := h.store.UpdateCustomer(r.Context(), &c)
	if err != nil {
		h.notFoundOr500(w, err, "customer")
		return
	}
	writeJSON(w, http.StatusOK, updated, h.logger)
}

func (h *adminHandler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.store.DeactivateCustomer(r.Context(), id); err != nil {
		h.notFoundOr500(w, err, "customer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Products

func (h *adminHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.store.SearchProducts(r.Context(), store.ProductFilter{
		Keyword:  q.Get("keyword"),
		Code:     q.Get("code"),
		Brand:    q.Get("brand"),
		Category: q.Get("category"),
		Limit:    queryLimit(r),
	})
	if err != nil {
		h.notFoundOr500(w, err, "products")
		return
	}
	writeJSON(w, http.StatusOK, products, h.logger)
}

func (h *adminHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	p, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		h.notFoundOr500(w, err, "product")
		return
	}
	writeJSON(w, http.StatusOK, p, h.logger)
}

func (h *adminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p store.Product
	if !decodeBody(w, r, &p, h.logger) {
		return
	}
	created, err := h.store.CreateProduct(r.Context(), &p)
	if err != nil {
		h.notFoundOr500(w, err, "product")
		return
	}
	writeJSON(w, http.StatusCreated, created, h.logger)
}

func (h *adminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	var p store.Product
	if !decodeBody(w, r, &p, h.logger) {
		return
	}
	p.ID = id
	updated, err := h.store.UpdateProduct(r.Context(), &p)
	if err != nil {
		h.notFoundOr500(w, err, "product")
		return
	}
	writeJSON(w, http.StatusOK, updated, h.logger)
}

func (h *adminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.store.DeactivateProduct(r.Context(), id); err != nil {
		h.notFoundOr500(w, err, "product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *adminHandler) lowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListLowStockProducts(r.Context())
	if err != nil {
		h.notFoundOr500(w, err, "products")
		return
	}
	writeJSON(w, http.StatusOK, products, h.logger)
}

func (h *adminHandler) productStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetProductStats(r.Context())
	if err != nil {
		h.notFoundOr500(w, err, "product stats")
		return
	}
	writeJSON(w, http.StatusOK, stats, h.logger)
}

// Workshops

func (h *adminHandler) listWorkshops(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	workshops, err := h.store.SearchWorkshops(r.Context(), store.WorkshopFilter{
		City:     q.Get("city"),
		District: q.Get("district"),
		Zone:     q.Get("zone"),
		Keyword:  q.Get("keyword"),
		Limit:    queryLimit(r),
	})
	if err != nil {
		h.notFoundOr500(w, err, "workshops")
		return
	}
	writeJSON(w, http.StatusOK, workshops, h.logger)
}

func (h *adminHandler) getWorkshop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	ws, err := h.store.GetWorkshop(r.Context(), id)
	if err != nil {
		h.notFoundOr500(w, err, "workshop")
		return
	}
	writeJSON(w, http.StatusOK, ws, h.logger)
}

func (h *adminHandler) createWorkshop(w http.ResponseWriter, r *http.Request) {
	var ws store.Workshop
	if !decodeBody(w, r, &ws, h.logger) {
		return
	}
	created, err := h.store.CreateWorkshop(r.Context(), &ws)
	if err != nil {
		h.notFoundOr500(w, err, "workshop")
		return
	}
	writeJSON(w, http.StatusCreated, created, h.logger)
}

func (h *adminHandler) updateWorkshop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	var ws store.Workshop
	if !decodeBody(w, r, &ws, h.logger) {
		return
	}
	ws.ID = id
	updated, err := h.store.UpdateWorkshop(r.Context(), &ws)
	if err != nil {
		h.notFoundOr500(w, err, "workshop")
		return
	}
	writeJSON(w, http.StatusOK, updated, h.logger)
}

func (h *adminHandler) deleteWorkshop(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.store.DeactivateWorkshop(r.Context(), id); err != nil {
		h.notFoundOr500(w, err, "workshop")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Orders

func (h *adminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOrders(r.Context(), queryLimit(r))
	if err != nil {
		h.notFoundOr500(w, err, "orders")
		return
	}
	writeJSON(w, http.StatusOK, orders, h.logger)
}

func (h *adminHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.store.GetOrderByNumber(r.Context(), r.PathValue("number"))
	if err != nil {
		h.notFoundOr500(w, err, "order")
		return
	}
	writeJSON(w, http.StatusOK, order, h.logger)
}

func (h *adminHandler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status        string `json:"status"`
		PaymentStatus string `json:"payment_status"`
	}
	if !decodeBody(w, r, &body, h.logger) {
		return
	}
	number := r.PathValue("number")
	if err := h.store.UpdateOrderStatus(r.Context(), number, body.Status, body.PaymentStatus); err != nil {
		h.notFoundOr500(w, err, "order")
		return
	}
	order, err := h.store.GetOrderByNumber(r.Context(), number)
	if err != nil {
		h.notFoundOr500(w, err, "order")
		return
	}
	writeJSON(w, http.StatusOK, order, h.logger)
}

// Settings

func (h *adminHandler) listSettings(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListSettings(r.Context())
	if err != nil {
		h.notFoundOr500(w, err, "settings")
		return
	}
	writeJSON(w, http.StatusOK, rows, h.logger)
}

func (h *adminHandler) upsertSetting(w http.ResponseWriter, r *http.Request) {
	var st store.Setting
	if !decodeBody(w, r, &st, h.logger) {
		return
	}
	if st.Key == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "key is required", h.logger)
		return
	}
	if st.Type == "" {
		st.Type = settings.TypeString
	}
	if err := h.store.UpsertSetting(r.Context(), st); err != nil {
		h.notFoundOr500(w, err, "setting")
		return
	}
	// The cache refreshes immediately so the edit reaches the next turn.
	if _, err := h.settings.ForceReload(r.Context()); err != nil {
		h.logger.Warn("settings reload after upsert failed", "error", err)
	}
	writeJSON(w, http.StatusOK, st, h.logger)
}

func (h *adminHandler) reloadSettings(w http.ResponseWriter, r *http.Request) {
	values, err := h.settings.ForceReload(r.Context())
	if err != nil {
		h.logger.Error("settings reload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "reload_failed", "settings reload failed", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reloaded": true, "keys": len(values)}, h.logger)
}
