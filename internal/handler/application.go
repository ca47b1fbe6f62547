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

type ApplicationHandler struct {
	service   *service.ApplicationService
	validator *validator.Validate
}

func NewApplicationHandler(service *service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		service:   service,
		validator: validator.New(),
	}
}

// Submit handles POST /api/v1/applications
func (h *ApplicationHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var request domain.SubmitApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Invalid request", err)
		return
	}

	app, err := h.service.Submit(r.Context(), &request)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.Created(w, app)
}

// Decide handles PUT /api/v1/applications/{id}/decision
func (h *ApplicationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid application ID", err)
		return
	}

	var request domain.DecideApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.BadRequest(w, "Invalid request body", err)
		return
	}

	if err := h.validator.Struct(&request); err != nil {
		response.BadRequest(w, "Invalid request", err)
		return
	}

	app, plan, err := h.service.Decide(r.Context(), id, &request)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.Success(w, domain.DecideApplicationResponse{Application: app, Plan: plan})
}

// Get handles GET /api/v1/applications/{id}
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid application ID", err)
		return
	}

	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.Success(w, detail)
}

// List handles GET /api/v1/applications
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.ApplicationFilter{
		Status: r.URL.Query().Get("status"),
	}
	if raw := r.URL.Query().Get("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid userId filter", err)
			return
		}
		filter.UserID = &id
	}
	if raw := r.URL.Query().Get("schoolId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid schoolId filter", err)
			return
		}
		filter.SchoolID = &id
	}

	apps, err := h.service.List(r.Context(), filter)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.Success(w, apps)
}
