package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	catalogports "github.com/dejobratic/storefront/internal/catalog/ports"
	"github.com/dejobratic/storefront/internal/cart/domain"
	"github.com/dejobratic/storefront/internal/cart/ports"
	"github.com/google/uuid"
)

// SessionHeader carries the anonymous cart session token. The server issues
// one on first contact and the client echoes it on subsequent requests.
const SessionHeader = "X-Cart-Session"

// UserResolver reports the authenticated user for a request context, if any.
type UserResolver func(ctx context.Context) (string, bool)

// Handler exposes HTTP endpoints for cart operations.
type Handler struct {
	carts   ports.CartRepository
	catalog catalogports.ProductRepository
	userFor UserResolver
}

// NewHandler constructs a Handler.
func NewHandler(carts ports.CartRepository, catalog catalogports.ProductRepository, userFor UserResolver) *Handler {
	return &Handler{carts: carts, catalog: catalog, userFor: userFor}
}

// Register binds the cart handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/cart", h.viewCart)
	mux.HandleFunc("/v1/cart/items", h.addItem)
	mux.HandleFunc("/v1/cart/items/", h.itemByProduct)
}

// resolveOwner picks the cart owner for a request: the authenticated user
// when present, otherwise the anonymous session token, minting one if needed.
func (h *Handler) resolveOwner(w http.ResponseWriter, r *http.Request) domain.Owner {
	if h.userFor != nil {
		if userID, ok := h.userFor(r.Context()); ok {
			return domain.UserOwner(userID)
		}
	}

	token := strings.TrimSpace(r.Header.Get(SessionHeader))
	if token == "" {
		token = uuid.NewString()
	}
	w.Header().Set(SessionHeader, token)

	return domain.SessionOwner(token)
}

func (h *Handler) viewCart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	owner := h.resolveOwner(w, r)
	lines, err := h.carts.Lines(r.Context(), owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if lines == nil {
		lines = []domain.Line{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"lines": lines})
}

type addItemInput struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload addItemInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	if payload.Quantity <= 0 {
		payload.Quantity = 1
	}

	line := domain.Line{ProductID: payload.ProductID, Quantity: payload.Quantity}
	if err := line.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.catalog.GetByID(r.Context(), payload.ProductID)
	if err != nil {
		if errors.Is(err, catalogports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !product.Active {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	owner := h.resolveOwner(w, r)
	if err := h.carts.Add(r.Context(), owner, payload.ProductID, payload.Quantity); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	count, err := h.carts.Count(r.Context(), owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"cart_items": count})
}

type updateItemInput struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) itemByProduct(w http.ResponseWriter, r *http.Request) {
	productID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v1/cart/items/"), "/")
	if productID == "" {
		writeError(w, http.StatusNotFound, "cart line not found")
		return
	}

	owner := h.resolveOwner(w, r)

	switch r.Method {
	case http.MethodPatch:
		var payload updateItemInput
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}
		if err := h.carts.SetQuantity(r.Context(), owner, productID, payload.Quantity); err != nil {
			if errors.Is(err, ports.ErrLineNotFound) {
				writeError(w, http.StatusNotFound, "cart line not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	case http.MethodDelete:
		if err := h.carts.Remove(r.Context(), owner, productID); err != nil {
			if errors.Is(err, ports.ErrLineNotFound) {
				writeError(w, http.StatusNotFound, "cart line not found")
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	count, err := h.carts.Count(r.Context(), owner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"cart_items": count})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
