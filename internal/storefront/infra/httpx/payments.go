package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/tradehub/internal/storefront/infra/httpx/respond"
)

const msgPaymentInitialized = "Payment initialization successful"

func (h *Handler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentInitRequest
	if err := decode(r, paymentInitLoader, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	checkout, err := h.payments.Initiate(r.Context(), req.toInitiate())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	msg := checkout.Message
	if msg == "" {
		msg = msgPaymentInitialized
	}
	respond.OK(w, http.StatusOK, msg, mapCheckoutURL(checkout))
}

// PaymentCallback receives the gateway webhook. The body is passed through
// unparsed so the signature is checked against the exact bytes sent.
func (h *Handler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	res, err := h.payments.HandleCallback(r.Context(), body, r.Header.Get(h.signatureHeader))
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, CallbackResponse{
		Status:    respond.StatusSuccess,
		Message:   res.Message,
		Reference: res.Reference,
	})
}

func (h *Handler) PaymentStatus(w http.ResponseWriter, r *http.Request) {
	p, err := h.payments.Status(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.OK(w, http.StatusOK, "", PaymentStatusResponse{
		Reference:     p.Reference,
		PaymentStatus: string(p.Status),
		Amount:        p.Amount,
		Timestamp:     formatTime(p.Timestamp),
	})
}
