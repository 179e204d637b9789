package httpx

import (
	"net/http"
	"strconv"

	"github.com/jcmexdev/tradehub/internal/pkg/apperr"
	"github.com/jcmexdev/tradehub/internal/storefront/core/auth"
	"github.com/jcmexdev/tradehub/internal/storefront/core/checkout"
	"github.com/jcmexdev/tradehub/internal/storefront/core/service"
	"github.com/jcmexdev/tradehub/internal/storefront/infra/httpx/respond"
)

const defaultPageSize = 50

// Services are the use cases the REST surface exposes.
type Services struct {
	Orders   *service.OrderService
	Payments *service.PaymentService
	Admin    *service.AdminService
	Checkout *checkout.Service
	Auth     *auth.Authenticator
	Policy   auth.Policy
}

// Handler translates HTTP requests into service calls and their results
// into the response envelope.
type Handler struct {
	orders   *service.OrderService
	payments *service.PaymentService
	admin    *service.AdminService
	checkout *checkout.Service
	auth     *auth.Authenticator
	policy   auth.Policy

	pingMessage     string
	signatureHeader string
}

func NewHandler(svc Services, pingMessage, signatureHeader string) *Handler {
	if pingMessage == "" {
		pingMessage = "ping"
	}
	return &Handler{
		orders:          svc.Orders,
		payments:        svc.Payments,
		admin:           svc.Admin,
		checkout:        svc.Checkout,
		auth:            svc.Auth,
		policy:          svc.Policy,
		pingMessage:     pingMessage,
		signatureHeader: signatureHeader,
	}
}

func (h *Handler) Ping(w http.ResponseWriter, _ *http.Request) {
	respond.JSON(w, http.StatusOK, map[string]string{"message": h.pingMessage})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	respond.Error(w, r, apperr.NotFound("Route not found"))
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusMethodNotAllowed, respond.Envelope{
		Status:  respond.StatusError,
		Message: "Method not allowed",
		Code:    "METHOD_NOT_ALLOWED",
	})
}

// intQuery reads a non-negative integer query parameter.
func intQuery(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation("Invalid query parameter", map[string]any{name: raw})
	}
	return n, nil
}

func boolQuery(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Validation("Invalid query parameter", map[string]any{name: raw})
	}
	return &b, nil
}

// paging reads limit and offset with the admin defaults.
func paging(r *http.Request) (limit, offset int, err error) {
	if limit, err = intQuery(r, "limit", defaultPageSize); err != nil {
		return 0, 0, err
	}
	if offset, err = intQuery(r, "offset", 0); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}
