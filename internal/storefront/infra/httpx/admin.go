package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/tradehub/internal/pkg/apperr"
	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/service"
	"github.com/jcmexdev/tradehub/internal/storefront/infra/httpx/middlewares"
	"github.com/jcmexdev/tradehub/internal/storefront/infra/httpx/respond"
)

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, loginLoader, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	session, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "Login successful", LoginResponse{
		User:  mapAdminUser(session.User),
		Token: session.Token,
	})
}

func (h *Handler) CurrentAdmin(w http.ResponseWriter, r *http.Request) {
	claims, ok := middlewares.ClaimsFrom(r.Context())
	if !ok {
		respond.Error(w, r, apperr.Authentication("No authorization token provided"))
		return
	}
	user, err := h.auth.CurrentUser(r.Context(), claims)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "", mapAdminUser(user))
}

func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "", DashboardStatsResponse(*stats))
}

func (h *Handler) PaymentWebhooks(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := paging(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	logs, total, err := h.payments.Webhooks(r.Context(), entity.WebhookFilter{
		Status: entity.PaymentStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.List(w, mapWebhooks(logs), total)
}

func (h *Handler) PaymentTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := paging(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	payments, total, err := h.payments.Transactions(r.Context(), entity.PaymentFilter{
		Status: entity.PaymentStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.List(w, mapTransactions(payments), total)
}

func (h *Handler) RefundPayment(w http.ResponseWriter, r *http.Request) {
	var req RefundRequest
	if err := decode(r, refundLoader, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	reference := req.Reference
	if reference == "" {
		reference = req.PaymentID
	}

	refund, err := h.payments.Refund(r.Context(), service.RefundRequest{
		Reference: reference,
		OrderID:   req.OrderID,
		Amount:    req.Amount,
		Reason:    req.Reason,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "Refund processed successfully", mapRefund(refund))
}

func (h *Handler) RetryPayment(w http.ResponseWriter, r *http.Request) {
	var req RetryRequest
	if err := decode(r, retryLoader, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	reference := req.Reference
	if reference == "" && req.TransactionID != "" {
		var err error
		if reference, err = h.payments.ReferenceForTransaction(r.Context(), req.TransactionID); err != nil {
			respond.Error(w, r, err)
			return
		}
	}

	checkout, err := h.payments.Retry(r.Context(), reference)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "Payment retry initiated", mapCheckoutURL(checkout))
}

func (h *Handler) AdminOrders(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", service.DefaultAdminOrderLimit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	offset, err := intQuery(r, "offset", 0)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	orders, total, err := h.orders.ListFiltered(r.Context(), entity.OrderFilter{
		Status: entity.OrderStatus(r.URL.Query().Get("status")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.List(w, mapOrders(orders), total)
}

// AdminUpdateOrderStatus accepts "note" as the history message when
// "message" is absent.
func (h *Handler) AdminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusUpdateRequest
	if err := decode(r, statusUpdateLoader, &req); err != nil {
		respond.Error(w, r, err)
		return
	}
	msg := req.Message
	if msg == "" {
		msg = req.Note
	}

	order, err := h.orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), entity.OrderStatus(req.Status), msg)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "Order updated successfully", mapOrderToResponse(order))
}

func (h *Handler) CheckoutHistory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.checkout.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.List(w, mapCheckoutLogs(rows), len(rows))
}

func (h *Handler) AdminProducts(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", defaultPageSize)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	inStock, err := boolQuery(r, "inStock")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	products, total, err := h.admin.Products(r.Context(), entity.ProductFilter{
		Category: r.URL.Query().Get("category"),
		InStock:  inStock,
		Limit:    limit,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.List(w, mapProducts(products), total)
}

func (h *Handler) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, apperr.Validation("Invalid product id", map[string]any{"id": chi.URLParam(r, "id")}))
		return
	}
	var req ProductUpdateRequest
	if err := decode(r, productUpdateLoader, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	product, err := h.admin.UpdateProduct(r.Context(), id, entity.ProductUpdate{
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		InStock:  req.InStock,
		Featured: req.Featured,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "Product updated successfully", ProductResponse(*product))
}

func (h *Handler) Carousel(w http.ResponseWriter, r *http.Request) {
	items, err := h.admin.Carousel(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "", mapCarousel(items))
}

func (h *Handler) ReplaceCarousel(w http.ResponseWriter, r *http.Request) {
	var req CarouselRequest
	if err := decode(r, carouselLoader, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	items, err := h.admin.ReplaceCarousel(r.Context(), req.toItems())
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "Carousel updated successfully", mapCarousel(items))
}

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	points, err := h.admin.Analytics(r.Context(), q.Get("metric"), entity.Period(q.Get("period")))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "", mapAnalytics(points))
}

func (h *Handler) AdminUsers(w http.ResponseWriter, r *http.Request) {
	limit, err := intQuery(r, "limit", defaultPageSize)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	q := r.URL.Query()
	users, total, err := h.admin.Users(r.Context(), entity.UserFilter{
		Role:   entity.Role(q.Get("role")),
		Status: entity.UserStatus(q.Get("status")),
		Limit:  limit,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.List(w, mapAdminUsers(users), total)
}

func (h *Handler) AdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UserUpdateRequest
	if err := decode(r, userUpdateLoader, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	var upd entity.UserUpdate
	if req.Role != nil {
		role := entity.Role(*req.Role)
		upd.Role = &role
	}
	if req.Status != nil {
		status := entity.UserStatus(*req.Status)
		upd.Status = &status
	}

	user, err := h.admin.UpdateUser(r.Context(), chi.URLParam(r, "id"), upd)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "User updated successfully", mapAdminUser(user))
}
