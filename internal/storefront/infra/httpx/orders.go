package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/tradehub/internal/pkg/apperr"
	"github.com/jcmexdev/tradehub/internal/storefront/core/checkout"
	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/invoice"
	"github.com/jcmexdev/tradehub/internal/storefront/infra/httpx/respond"
)

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := decode(r, orderCreateLoader, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	order, err := h.orders.Create(r.Context(), req.toDraft())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if req.Total != nil && *req.Total != order.Total {
		slog.WarnContext(r.Context(), "client total differs from server price",
			"order_id", order.ID,
			"client_total", *req.Total,
			"server_total", order.Total,
		)
	}

	respond.OK(w, http.StatusCreated, "Order created successfully", mapOrderCreated(order))
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.List(w, mapOrders(orders), len(orders))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "", mapOrderToResponse(order))
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusUpdateRequest
	if err := decode(r, statusUpdateLoader, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), entity.OrderStatus(req.Status), req.Message)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "Order status updated", mapOrderToResponse(order))
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if err := decode(r, cancelLoader, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	order, err := h.orders.Cancel(r.Context(), chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "Order cancelled successfully", mapOrderToResponse(order))
}

// Invoice renders the order's invoice as HTML (default) or plain text.
func (h *Handler) Invoice(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	paymentStatus := ""
	if p, err := h.payments.Status(r.Context(), order.ReferenceID); err == nil {
		paymentStatus = string(p.Status)
	} else if !apperr.Is(err, apperr.KindNotFound) {
		respond.Error(w, r, err)
		return
	}

	var (
		body        string
		contentType string
	)
	switch format := r.URL.Query().Get("format"); format {
	case "", "html":
		body, err = invoice.HTML(order, paymentStatus)
		contentType = "text/html; charset=utf-8"
	case "text":
		body, err = invoice.Text(order, paymentStatus)
		contentType = "text/plain; charset=utf-8"
	default:
		respond.Error(w, r, apperr.Validation("Invalid invoice format", map[string]any{"format": format}))
		return
	}
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

// Checkout places an order and starts its payment in one request.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := decode(r, checkoutLoader, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.checkout.Checkout(r.Context(), checkout.Request{
		Draft:       req.toDraft(),
		CallbackURL: req.CallbackURL,
		ReturnURL:   req.ReturnURL,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	if res.Order == nil || res.Checkout == nil {
		respond.Error(w, r, errors.New("checkout finished without order or payment"))
		return
	}

	respond.OK(w, http.StatusCreated, "Checkout started", CheckoutResponse{
		CheckoutID: res.CheckoutID,
		Order:      mapOrderCreated(res.Order),
		Payment:    mapCheckoutURL(res.Checkout),
	})
}
