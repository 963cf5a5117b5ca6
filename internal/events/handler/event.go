package handler

import (
	"encoding/json"
	"net/http"

	"eventrooms/internal/events/service"
	apperrors "eventrooms/pkg/errors"
	httputil "eventrooms/pkg/http"
	"eventrooms/pkg/logger"
	"eventrooms/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type EventHandler struct {
	service service.EventService
	log     *logger.Logger
}

func NewEventHandler(service service.EventService, log *logger.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		log:     log,
	}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var event model.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.writeBadBody(w, "Create")
		return
	}

	if err := h.service.Create(r.Context(), &event); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, event); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *EventHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	event, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, event); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EventHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	events, total, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, events, total, limit, int(offset)); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *EventHandler) GetBetween(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	start, end, err := httputil.ExtractTimeRange(r)
	if err != nil {
		h.writeError(w, "GetBetween", err)
		return
	}

	events, err := h.service.GetBetween(r.Context(), start, end)
	if err != nil {
		h.writeError(w, "GetBetween", err)
		return
	}

	h.writeList(w, "GetBetween", events)
}

func (h *EventHandler) GetUpcoming(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	start, end, err := httputil.ExtractOptionalTimeRange(r)
	if err != nil {
		h.writeError(w, "GetUpcoming", err)
		return
	}

	events, err := h.service.GetUpcoming(r.Context(), start, end)
	if err != nil {
		h.writeError(w, "GetUpcoming", err)
		return
	}

	h.writeList(w, "GetUpcoming", events)
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var updates model.EventUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeBadBody(w, "Update")
		return
	}

	if err := h.service.Update(r.Context(), id, &updates); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.SoftDelete(r.Context(), id); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var req model.RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadBody(w, "Register")
		return
	}

	result, err := h.service.RegisterParticipant(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteCreated(w, result); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *EventHandler) ListParticipants(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	participants, err := h.service.ListParticipants(r.Context(), id)
	if err != nil {
		h.writeError(w, "ListParticipants", err)
		return
	}

	if err := httputil.WriteSuccess(w, participants); err != nil {
		h.log.Error("failed to write success response", "handler", "ListParticipants", "operation", "WriteSuccess", "error", err)
	}
}

func (h *EventHandler) writeList(w http.ResponseWriter, handler string, events []*model.Event) {
	if events == nil {
		events = []*model.Event{}
	}
	if err := httputil.WriteSuccess(w, events); err != nil {
		h.log.Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *EventHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *EventHandler) writeBadBody(w http.ResponseWriter, handler string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Code:  apperrors.CodeInvalidInput,
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", handler, "operation", "WriteJSON", "error", writeErr)
	}
}

func (h *EventHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/events", h.Create)
	router.GET("/api/v1/events", h.GetAll)
	router.GET("/api/v1/events/between", h.GetBetween)
	router.GET("/api/v1/events/upcoming", h.GetUpcoming)
	router.GET("/api/v1/events/id/:id", h.GetByID)
	router.PATCH("/api/v1/events/id/:id", h.Update)
	router.DELETE("/api/v1/events/id/:id", h.Delete)
	router.POST("/api/v1/events/id/:id/register", h.Register)
	router.GET("/api/v1/events/id/:id/participants", h.ListParticipants)
}
