package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/edufin/financing-engine/internal/domain"
	"github.com/edufin/financing-engine/internal/service"
	"github.com/edufin/financing-engine/pkg/response"
)

type PaymentHandler struct {
	service   *service.PaymentService
	validator *validator.Validate
}

func NewPaymentHandler(service *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service:   service,
		validator: validator.New(),
	}
}

// Record handles POST /api/v1/plans/{id}/payments. Callers retrying a failed
// submission should resend the same Idempotency-Key; a fresh key means a
// fresh logical payment.
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	planID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid plan ID", err)
		return
	}

	var request domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Invalid request", err)
		return
	}

	idempotencyKey := r.Header.Get("Idempotency-Key")

	payment, plan, err := h.service.RecordPayment(r.Context(), planID, request.Kind, idempotencyKey)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.Created(w, domain.RecordPaymentResponse{Payment: payment, Plan: plan})
}
