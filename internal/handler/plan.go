package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/edufin/financing-engine/internal/domain"
	"github.com/edufin/financing-engine/internal/service"
	"github.com/edufin/financing-engine/pkg/response"
)

type PlanHandler struct {
	service *service.PlanService
}

func NewPlanHandler(service *service.PlanService) *PlanHandler {
	return &PlanHandler{service: service}
}

// Get handles GET /api/v1/plans/{id}
func (h *PlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid plan ID", err)
		return
	}

	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.Success(w, detail)
}

// Progress handles GET /api/v1/plans/{id}/progress
func (h *PlanHandler) Progress(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid plan ID", err)
		return
	}

	progress, err := h.service.Progress(r.Context(), id)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.Success(w, progress)
}

// List handles GET /api/v1/plans
func (h *PlanHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.PlanFilter{
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

	plans, err := h.service.List(r.Context(), filter)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.Success(w, plans)
}
