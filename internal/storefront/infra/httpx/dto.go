package httpx

import (
	"time"

	"github.com/jcmexdev/tradehub/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/tradehub/internal/storefront/core/service"
)

type LineItemDTO struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Category string  `json:"category"`
}

type AddressDTO struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zipCode"`
}

type DiscountDTO struct {
	Code           string  `json:"code"`
	DiscountType   string  `json:"discountType"`
	DiscountAmount float64 `json:"discountAmount"`
}

// CreateOrderRequest is the checkout form. Client-side totals are accepted
// for compatibility and ignored; the server prices the basket itself.
type CreateOrderRequest struct {
	Items           []LineItemDTO `json:"items"`
	ShippingAddress *AddressDTO   `json:"shippingAddress"`
	ShippingMethod  string        `json:"shippingMethod"`
	Discount        *DiscountDTO  `json:"discount,omitempty"`
	Subtotal        *float64      `json:"subtotal,omitempty"`
	Shipping        *float64      `json:"shipping,omitempty"`
	Tax             *float64      `json:"tax,omitempty"`
	Total           *float64      `json:"total,omitempty"`
}

type CheckoutRequest struct {
	CreateOrderRequest
	CallbackURL string `json:"callbackUrl"`
	ReturnURL   string `json:"returnUrl"`
}

type StatusUpdateRequest struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Note    string `json:"note"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type UserInfoDTO struct {
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
}

type PaymentInitRequest struct {
	Reference   string       `json:"reference"`
	Amount      float64      `json:"amount"`
	Currency    string       `json:"currency"`
	Country     string       `json:"country"`
	CallbackURL string       `json:"callbackUrl"`
	ReturnURL   string       `json:"returnUrl"`
	UserInfo    *UserInfoDTO `json:"userInfo"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefundRequest accepts paymentId as an alias of reference.
type RefundRequest struct {
	Reference string  `json:"reference"`
	PaymentID string  `json:"paymentId"`
	OrderID   string  `json:"orderId"`
	Amount    float64 `json:"amount"`
	Reason    string  `json:"reason"`
}

// RetryRequest names the payment by reference or by the gateway's
// transaction id.
type RetryRequest struct {
	Reference     string `json:"reference"`
	TransactionID string `json:"transactionId"`
}

type ProductUpdateRequest struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Category *string  `json:"category"`
	InStock  *bool    `json:"inStock"`
	Featured *bool    `json:"featured"`
}

type CarouselRequest struct {
	Items []CarouselItemDTO `json:"items"`
}

type UserUpdateRequest struct {
	Role   *string `json:"role"`
	Status *string `json:"status"`
}

type StatusEventDTO struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

type OrderResponse struct {
	ID                string           `json:"id"`
	OrderNumber       string           `json:"orderNumber"`
	ReferenceID       string           `json:"referenceId"`
	TrackingNumber    string           `json:"trackingNumber"`
	Items             []LineItemDTO    `json:"items"`
	Subtotal          float64          `json:"subtotal"`
	Shipping          float64          `json:"shipping"`
	Tax               float64          `json:"tax"`
	Total             float64          `json:"total"`
	Status            string           `json:"status"`
	CreatedAt         string           `json:"createdAt"`
	EstimatedDelivery string           `json:"estimatedDelivery"`
	ShippingAddress   AddressDTO       `json:"shippingAddress"`
	ShippingMethod    string           `json:"shippingMethod"`
	Discount          *DiscountDTO     `json:"discount,omitempty"`
	StatusHistory     []StatusEventDTO `json:"statusHistory"`
}

type OrderCreatedResponse struct {
	ID             string  `json:"id"`
	OrderNumber    string  `json:"orderNumber"`
	ReferenceID    string  `json:"referenceId"`
	TrackingNumber string  `json:"trackingNumber"`
	Subtotal       float64 `json:"subtotal"`
	Shipping       float64 `json:"shipping"`
	Tax            float64 `json:"tax"`
	Total          float64 `json:"total"`
}

type CheckoutURLResponse struct {
	CashierURL  string `json:"cashierUrl"`
	CheckoutURL string `json:"checkoutUrl"`
	Reference   string `json:"reference"`
}

type CheckoutResponse struct {
	CheckoutID string               `json:"checkoutId"`
	Order      OrderCreatedResponse `json:"order"`
	Payment    CheckoutURLResponse  `json:"payment"`
}

type PaymentStatusResponse struct {
	Reference     string  `json:"reference"`
	PaymentStatus string  `json:"paymentStatus"`
	Amount        float64 `json:"amount"`
	Timestamp     string  `json:"timestamp"`
}

type CallbackResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Reference string `json:"reference"`
}

type TransactionResponse struct {
	Reference     string  `json:"reference"`
	TransactionID string  `json:"transactionId,omitempty"`
	Amount        float64 `json:"amount"`
	Refunded      float64 `json:"refunded"`
	Status        string  `json:"status"`
	PaymentMethod string  `json:"paymentMethod"`
	CustomerEmail string  `json:"customerEmail"`
	CustomerName  string  `json:"customerName"`
	CheckoutURL   string  `json:"checkoutUrl,omitempty"`
	RetryCount    int     `json:"retryCount"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

type WebhookResponse struct {
	ID             string  `json:"id"`
	Reference      string  `json:"reference"`
	PaymentStatus  string  `json:"paymentStatus"`
	Amount         float64 `json:"amount"`
	SignatureValid bool    `json:"signatureValid"`
	Processed      bool    `json:"processed"`
	ProcessedAt    string  `json:"processedAt,omitempty"`
	ErrorMessage   string  `json:"errorMessage,omitempty"`
	CreatedAt      string  `json:"createdAt"`
}

type RefundResponse struct {
	ID        string  `json:"id"`
	Reference string  `json:"reference"`
	OrderID   string  `json:"orderId,omitempty"`
	Amount    float64 `json:"amount"`
	Reason    string  `json:"reason,omitempty"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"createdAt"`
}

type AdminUserResponse struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	FullName    string   `json:"fullName"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	Status      string   `json:"status"`
	LastLogin   string   `json:"lastLogin,omitempty"`
	CreatedAt   string   `json:"createdAt"`
}

type LoginResponse struct {
	User  AdminUserResponse `json:"user"`
	Token string            `json:"token"`
}

type DashboardStatsResponse struct {
	TotalOrders     int     `json:"totalOrders"`
	TotalRevenue    float64 `json:"totalRevenue"`
	TotalUsers      int     `json:"totalUsers"`
	PendingOrders   int     `json:"pendingOrders"`
	FailedPayments  int     `json:"failedPayments"`
	InventoryAlerts int     `json:"inventoryAlerts"`
}

type ProductResponse struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	InStock  bool    `json:"inStock"`
	Featured bool    `json:"featured"`
	Sold     int     `json:"sold"`
}

type CarouselItemDTO struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	Title           string `json:"title"`
	ImageURL        string `json:"imageUrl"`
	LinkURL         string `json:"linkUrl,omitempty"`
	LinkedProductID *int   `json:"linkedProductId,omitempty"`
	Position        int    `json:"position"`
	IsActive        bool   `json:"isActive"`
	CreatedAt       string `json:"createdAt,omitempty"`
}

type AnalyticsPointResponse struct {
	Metric   string  `json:"metric"`
	Value    float64 `json:"value"`
	Category string  `json:"category,omitempty"`
	Period   string  `json:"period"`
	Date     string  `json:"date"`
}

type CheckoutLogResponse struct {
	CheckoutID    string `json:"checkoutId"`
	Status        string `json:"status"`
	CurrentStep   string `json:"currentStep,omitempty"`
	Payload       string `json:"payload,omitempty"`
	ErrorMessages string `json:"errorMessages,omitempty"`
	TraceID       string `json:"traceId,omitempty"`
	SpanID        string `json:"spanId,omitempty"`
	UpdatedAt     string `json:"updatedAt"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func (r CreateOrderRequest) toDraft() entity.OrderDraft {
	draft := entity.OrderDraft{ShippingMethod: entity.ShippingMethod(r.ShippingMethod)}
	for _, it := range r.Items {
		draft.Items = append(draft.Items, entity.LineItem{
			ProductID: it.ID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Category:  it.Category,
		})
	}
	if a := r.ShippingAddress; a != nil {
		draft.ShippingAddress = &entity.Address{
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Email:     a.Email,
			Phone:     a.Phone,
			Address:   a.Address,
			City:      a.City,
			State:     a.State,
			ZipCode:   a.ZipCode,
		}
	}
	if d := r.Discount; d != nil {
		draft.Discount = &entity.Discount{
			Code:   d.Code,
			Type:   entity.DiscountType(d.DiscountType),
			Amount: d.DiscountAmount,
		}
	}
	return draft
}

func mapOrderToResponse(o *entity.Order) OrderResponse {
	resp := OrderResponse{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		ReferenceID:       o.ReferenceID,
		TrackingNumber:    o.TrackingNumber,
		Items:             make([]LineItemDTO, len(o.Items)),
		Subtotal:          o.Subtotal,
		Shipping:          o.Shipping,
		Tax:               o.Tax,
		Total:             o.Total,
		Status:            string(o.Status),
		CreatedAt:         formatTime(o.CreatedAt),
		EstimatedDelivery: formatTime(o.EstimatedDelivery),
		ShippingAddress:   AddressDTO(o.ShippingAddress),
		ShippingMethod:    string(o.ShippingMethod),
		StatusHistory:     make([]StatusEventDTO, len(o.StatusHistory)),
	}
	for i, it := range o.Items {
		resp.Items[i] = LineItemDTO{
			ID:       it.ProductID,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
			Category: it.Category,
		}
	}
	for i, ev := range o.StatusHistory {
		resp.StatusHistory[i] = StatusEventDTO{
			Status:    string(ev.Status),
			Timestamp: formatTime(ev.Timestamp),
			Message:   ev.Message,
		}
	}
	if d := o.Discount; d != nil {
		resp.Discount = &DiscountDTO{Code: d.Code, DiscountType: string(d.Type), DiscountAmount: d.Amount}
	}
	return resp
}

func mapOrders(orders []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = mapOrderToResponse(o)
	}
	return out
}

func mapOrderCreated(o *entity.Order) OrderCreatedResponse {
	return OrderCreatedResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		ReferenceID:    o.ReferenceID,
		TrackingNumber: o.TrackingNumber,
		Subtotal:       o.Subtotal,
		Shipping:       o.Shipping,
		Tax:            o.Tax,
		Total:          o.Total,
	}
}

func mapCheckoutURL(c *entity.Checkout) CheckoutURLResponse {
	return CheckoutURLResponse{CashierURL: c.CashierURL, CheckoutURL: c.CheckoutURL, Reference: c.Reference}
}

func mapTransactions(payments []*entity.Payment) []TransactionResponse {
	out := make([]TransactionResponse, len(payments))
	for i, p := range payments {
		out[i] = TransactionResponse{
			Reference:     p.Reference,
			TransactionID: p.TransactionID,
			Amount:        p.Amount,
			Refunded:      p.Refunded,
			Status:        string(p.Status),
			PaymentMethod: "opay",
			CustomerEmail: p.Payer.Email,
			CustomerName:  p.Payer.Name,
			CheckoutURL:   p.CheckoutURL,
			RetryCount:    p.RetryCount,
			CreatedAt:     formatTime(p.Timestamp),
			UpdatedAt:     formatTime(p.UpdatedAt),
		}
	}
	return out
}

func mapWebhooks(logs []entity.WebhookLog) []WebhookResponse {
	out := make([]WebhookResponse, len(logs))
	for i, l := range logs {
		out[i] = WebhookResponse{
			ID:             l.ID,
			Reference:      l.Reference,
			PaymentStatus:  string(l.PaymentStatus),
			Amount:         l.Amount,
			SignatureValid: l.SignatureValid,
			Processed:      l.Processed,
			ProcessedAt:    formatTimePtr(l.ProcessedAt),
			ErrorMessage:   l.ErrorMessage,
			CreatedAt:      formatTime(l.CreatedAt),
		}
	}
	return out
}

func mapRefund(r *entity.Refund) RefundResponse {
	return RefundResponse{
		ID:        r.ID,
		Reference: r.Reference,
		OrderID:   r.OrderID,
		Amount:    r.Amount,
		Reason:    r.Reason,
		Status:    r.Status,
		CreatedAt: formatTime(r.CreatedAt),
	}
}

func mapAdminUser(u *entity.AdminUser) AdminUserResponse {
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	return AdminUserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		Role:        string(u.Role),
		Permissions: perms,
		Status:      string(u.Status),
		LastLogin:   formatTimePtr(u.LastLogin),
		CreatedAt:   formatTime(u.CreatedAt),
	}
}

func mapAdminUsers(users []*entity.AdminUser) []AdminUserResponse {
	out := make([]AdminUserResponse, len(users))
	for i, u := range users {
		out[i] = mapAdminUser(u)
	}
	return out
}

func mapProducts(products []entity.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i, p := range products {
		out[i] = ProductResponse(p)
	}
	return out
}

func mapCarousel(items []entity.CarouselItem) []CarouselItemDTO {
	out := make([]CarouselItemDTO, len(items))
	for i, it := range items {
		out[i] = CarouselItemDTO{
			ID:              it.ID,
			Type:            string(it.Type),
			Title:           it.Title,
			ImageURL:        it.ImageURL,
			LinkURL:         it.LinkURL,
			LinkedProductID: it.LinkedProductID,
			Position:        it.Position,
			IsActive:        it.IsActive,
			CreatedAt:       formatTime(it.CreatedAt),
		}
	}
	return out
}

func (r CarouselRequest) toItems() []entity.CarouselItem {
	out := make([]entity.CarouselItem, len(r.Items))
	for i, it := range r.Items {
		out[i] = entity.CarouselItem{
			ID:              it.ID,
			Type:            entity.CarouselType(it.Type),
			Title:           it.Title,
			ImageURL:        it.ImageURL,
			LinkURL:         it.LinkURL,
			LinkedProductID: it.LinkedProductID,
			Position:        it.Position,
			IsActive:        it.IsActive,
		}
		if ts, err := time.Parse(time.RFC3339Nano, it.CreatedAt); err == nil {
			out[i].CreatedAt = ts
		}
	}
	return out
}

func mapAnalytics(points []entity.AnalyticsPoint) []AnalyticsPointResponse {
	out := make([]AnalyticsPointResponse, len(points))
	for i, p := range points {
		out[i] = AnalyticsPointResponse{
			Metric:   p.Metric,
			Value:    p.Value,
			Category: p.Category,
			Period:   string(p.Period),
			Date:     p.Date,
		}
	}
	return out
}

func mapCheckoutLogs(rows []entity.CheckoutLog) []CheckoutLogResponse {
	out := make([]CheckoutLogResponse, len(rows))
	for i, r := range rows {
		out[i] = CheckoutLogResponse{
			CheckoutID:    r.CheckoutID,
			Status:        string(r.Status),
			CurrentStep:   r.CurrentStep,
			Payload:       r.Payload,
			ErrorMessages: r.ErrorMessages,
			TraceID:       r.TraceID,
			SpanID:        r.SpanID,
			UpdatedAt:     formatTime(r.UpdatedAt),
		}
	}
	return out
}

func (r PaymentInitRequest) toInitiate() service.InitiateRequest {
	req := service.InitiateRequest{
		Reference:   r.Reference,
		Amount:      r.Amount,
		CallbackURL: r.CallbackURL,
		ReturnURL:   r.ReturnURL,
	}
	if r.UserInfo != nil {
		req.Payer = &entity.PayerInfo{Email: r.UserInfo.UserEmail, Name: r.UserInfo.UserName}
	}
	return req
}
