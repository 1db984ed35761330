package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	cartdomain "github.com/dejobratic/storefront/internal/cart/domain"
	"github.com/dejobratic/storefront/internal/orders/app"
	"github.com/dejobratic/storefront/internal/orders/domain"
	"github.com/dejobratic/storefront/internal/orders/ports"
)

// UserResolver reports the authenticated user for a request context, if any.
type UserResolver func(ctx context.Context) (string, bool)

// Handler exposes HTTP endpoints for checkout and order operations.
type Handler struct {
	service *app.Service
	userFor UserResolver
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service, userFor UserResolver) *Handler {
	return &Handler{service: service, userFor: userFor}
}

// Register binds the checkout and order handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/checkout", h.submitCheckout)
	mux.HandleFunc("/v1/orders", h.listOrders)
	mux.HandleFunc("/v1/orders/", h.handleOrderByNumber)
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.userFor != nil {
		if userID, ok := h.userFor(r.Context()); ok {
			return userID, true
		}
	}
	writeError(w, http.StatusUnauthorized, "authentication required")
	return "", false
}

type checkoutInput struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
	Notes        string `json:"notes"`
}

func (h *Handler) submitCheckout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	idemKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idemKey == "" {
		writeError(w, http.StatusBadRequest, "Idempotency-Key header required")
		return
	}

	if stored, err := h.service.GetIdempotentResponse(ctx, idemKey); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	} else if stored != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(stored.StatusCode)
		_, _ = w.Write(stored.Body)
		return
	}

	var payload checkoutInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	order, err := h.service.SubmitCheckout(ctx, app.CheckoutInput{
		Owner:  cartdomain.UserOwner(userID),
		UserID: userID,
		Shipping: domain.ShippingInfo{
			FirstName:    payload.FirstName,
			LastName:     payload.LastName,
			Email:        payload.Email,
			Phone:        payload.Phone,
			AddressLine1: payload.AddressLine1,
			AddressLine2: payload.AddressLine2,
			City:         payload.City,
			State:        payload.State,
			PostalCode:   payload.PostalCode,
			Country:      payload.Country,
			Notes:        payload.Notes,
		},
	})
	if err != nil {
		status, message := checkoutErrorStatus(err)
		writeError(w, status, message)
		return
	}

	body, err := json.Marshal(map[string]any{"order": order})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	stored := ports.StoredResponse{
		StatusCode: http.StatusCreated,
		Body:       body,
		OrderID:    order.ID,
	}
	if err := h.service.SaveIdempotentResponse(ctx, idemKey, stored); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(body)
}

// checkoutErrorStatus maps checkout failures onto HTTP statuses: client
// mistakes are 4xx, stock conflicts are 409, storage faults are 500.
func checkoutErrorStatus(err error) (int, string) {
	var validationErr *domain.ValidationError
	var stockErr *domain.InsufficientStockError
	var unavailableErr *domain.ProductUnavailableError
	var commitErr *domain.CommitError

	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.Error()
	case errors.As(err, &stockErr):
		return http.StatusConflict, stockErr.Error()
	case errors.As(err, &unavailableErr):
		return http.StatusConflict, unavailableErr.Error()
	case errors.As(err, &commitErr):
		return http.StatusInternalServerError, commitErr.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	filter := ports.ListFilter{}
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := domain.OrderStatus(statusParam)
		filter.Status = &status
	}

	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		if page, err := strconv.Atoi(pageParam); err == nil {
			filter.Page = page
		}
	}

	if pageSizeParam := r.URL.Query().Get("page_size"); pageSizeParam != "" {
		if pageSize, err := strconv.Atoi(pageSizeParam); err == nil {
			filter.PageSize = pageSize
		}
	}

	orders, err := h.service.ListOrders(r.Context(), userID, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if orders == nil {
		orders = []domain.Order{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) handleOrderByNumber(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/v1/orders/")
	if trimmed == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if strings.HasSuffix(trimmed, "/cancel") {
		number := strings.TrimSuffix(trimmed, "/cancel")
		number = strings.TrimSuffix(number, "/")
		if number == "" {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.cancelOrder(w, r, number)
		return
	}

	number := strings.TrimSuffix(trimmed, "/")
	if number == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.getOrder(w, r, number)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, number string) {
	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	order, err := h.service.GetOrder(r.Context(), number, userID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request, number string) {
	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	order, err := h.service.CancelOrder(r.Context(), number, userID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
