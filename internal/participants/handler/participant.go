package handler

import (
	"encoding/json"
	"net/http"

	"eventrooms/internal/participants/service"
	apperrors "eventrooms/pkg/errors"
	httputil "eventrooms/pkg/http"
	"eventrooms/pkg/logger"
	"eventrooms/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ParticipantHandler struct {
	service service.ParticipantService
	log     *logger.Logger
}

func NewParticipantHandler(service service.ParticipantService, log *logger.Logger) *ParticipantHandler {
	return &ParticipantHandler{
		service: service,
		log:     log,
	}
}

func (h *ParticipantHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	participant, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, participant); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ParticipantHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.ParticipantUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Code:  apperrors.CodeInvalidInput,
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.Update(r.Context(), id, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ParticipantHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ParticipantHandler) ListEvents(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	events, err := h.service.ListEvents(r.Context(), id)
	if err != nil {
		h.writeError(w, "ListEvents", err)
		return
	}

	if err := httputil.WriteSuccess(w, events); err != nil {
		h.log.Error("failed to write success response", "handler", "ListEvents", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ParticipantHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ParticipantHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/participants/id/:id", h.GetByID)
	router.PATCH("/api/v1/participants/id/:id", h.Update)
	router.DELETE("/api/v1/participants/id/:id", h.Delete)
	router.GET("/api/v1/participants/id/:id/events", h.ListEvents)
}
