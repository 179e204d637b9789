package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/jcmexdev/tradehub/internal/storefront/core/auth"
	"github.com/jcmexdev/tradehub/internal/storefront/infra/httpx/middlewares"
)

// DefaultBodyLimit caps JSON request bodies.
const DefaultBodyLimit = 1 << 20

type RouterOptions struct {
	// RateLimiter may be nil to disable throttling.
	RateLimiter *middlewares.RateLimiter
	BodyLimit   int64
	// TrustProxy rewrites RemoteAddr from the forwarding headers.
	TrustProxy bool
}

func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = DefaultBodyLimit
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachRequestID)
	if opts.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(slog.Default().Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middlewares.Recover)
	r.Use(opts.RateLimiter.Handler)
	r.Use(middlewares.LimitBody(opts.BodyLimit))

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get("/api/ping", h.Ping)

	r.Route("/api/payment", func(r chi.Router) {
		r.Post("/initialize", h.InitiatePayment)
		r.Post("/callback", h.PaymentCallback)
		r.Get("/status/{reference}", h.PaymentStatus)
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/{id}", h.GetOrder)
		r.Patch("/{id}/status", h.UpdateOrderStatus)
		r.Delete("/{id}", h.CancelOrder)
		r.Get("/{id}/invoice", h.Invoice)
	})

	r.Post("/api/checkout", h.Checkout)

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/login", h.AdminLogin)

		r.Group(func(r chi.Router) {
			r.Use(middlewares.RequireAdmin(h.auth))
			can := func(permission string) func(http.Handler) http.Handler {
				return middlewares.RequirePermission(h.policy, permission)
			}

			r.Get("/me", h.CurrentAdmin)
			r.Get("/dashboard/stats", h.DashboardStats)

			r.With(can(auth.PermPaymentsView)).Get("/payments/webhooks", h.PaymentWebhooks)
			r.With(can(auth.PermPaymentsView)).Get("/payments/transactions", h.PaymentTransactions)
			r.With(can(auth.PermOrdersRefund)).Post("/payments/refund", h.RefundPayment)
			r.With(can(auth.PermOrdersRefund)).Post("/payments/retry", h.RetryPayment)

			r.With(can(auth.PermOrdersView)).Get("/orders", h.AdminOrders)
			r.With(can(auth.PermOrdersEdit)).Patch("/orders/{id}/status", h.AdminUpdateOrderStatus)
			r.With(can(auth.PermOrdersView)).Get("/checkouts/{id}", h.CheckoutHistory)

			r.With(can(auth.PermProductsView)).Get("/products", h.AdminProducts)
			r.With(can(auth.PermProductsEdit)).Patch("/products/{id}", h.AdminUpdateProduct)

			r.With(can(auth.PermCarouselView)).Get("/carousel", h.Carousel)
			r.With(can(auth.PermCarouselEdit)).Put("/carousel", h.ReplaceCarousel)

			r.With(can(auth.PermAnalyticsView)).Get("/analytics", h.Analytics)

			r.With(can(auth.PermUsersView)).Get("/users", h.AdminUsers)
			r.With(can(auth.PermUsersEdit)).Patch("/users/{id}", h.AdminUpdateUser)
		})
	})

	return otelhttp.NewHandler(r, "storefront",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
