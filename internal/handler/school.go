package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/edufin/financing-engine/internal/domain"
	"github.com/edufin/financing-engine/internal/service"
	"github.com/edufin/financing-engine/pkg/response"
)

type SchoolHandler struct {
	service *service.CatalogService
}

func NewSchoolHandler(service *service.CatalogService) *SchoolHandler {
	return &SchoolHandler{service: service}
}

// List handles GET /api/v1/schools
func (h *SchoolHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.SchoolFilter{
		Search: r.URL.Query().Get("search"),
		Gender: r.URL.Query().Get("gender"),
		Area:   r.URL.Query().Get("area"),
	}

	schools, err := h.service.ListSchools(r.Context(), filter)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.Success(w, schools)
}

// Get handles GET /api/v1/schools/{id}
func (h *SchoolHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid school ID", err)
		return
	}

	school, err := h.service.GetSchool(r.Context(), id)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.Success(w, school)
}
