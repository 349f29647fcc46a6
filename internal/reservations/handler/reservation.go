package handler

import (
	"encoding/json"
	"net/http"

	"tourbook/internal/reservations/service"
	"tourbook/internal/rooms/ledger"
	apperrors "tourbook/pkg/errors"
	httputil "tourbook/pkg/http"
	"tourbook/pkg/logger"
	"tourbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.ReservationService
	ledger  *ledger.Ledger
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, ledger *ledger.Ledger, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		ledger:  ledger,
		log:     log,
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "error", writeErr)
		}
		return
	}

	reservation, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	reservation, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *ReservationHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	tourID := r.URL.Query().Get("tour_id")

	var reservations []*model.Reservation
	var total int64
	if tourID != "" {
		reservations, total, err = h.service.GetByTour(r.Context(), tourID, limit, offset)
	} else {
		reservations, total, err = h.service.GetAll(r.Context(), limit, offset)
	}
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAll", "error", writeErr)
		}
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "error", err)
	}
}

func (h *ReservationHandler) AddParticipants(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.ParticipantsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "AddParticipants", "error", writeErr)
		}
		return
	}

	reservation, err := h.service.AddParticipants(r.Context(), ps.ByName("id"), req.Participants)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "AddParticipants", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "AddParticipants", "error", err)
	}
}

func (h *ReservationHandler) Transition(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Transition", "error", writeErr)
		}
		return
	}

	reservation, err := h.service.Transition(r.Context(), ps.ByName("id"), req.Status)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Transition", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "Transition", "error", err)
	}
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.CancelRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
				Error: "Invalid request body",
			}); writeErr != nil {
				h.log.Error("failed to write JSON response", "handler", "Cancel", "error", writeErr)
			}
			return
		}
	}

	reservation, err := h.service.Cancel(r.Context(), ps.ByName("id"), req.Reason)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Cancel", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "Cancel", "error", err)
	}
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *ReservationHandler) CheckAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	checkIn, err := httputil.ExtractTimeParam(r, "check_in")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckAvailability", "error", writeErr)
		}
		return
	}
	checkOut, err := httputil.ExtractTimeParam(r, "check_out")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckAvailability", "error", writeErr)
		}
		return
	}
	if checkIn == nil || checkOut == nil {
		if writeErr := httputil.WriteError(w, apperrors.InvalidInput("check_in and check_out query parameters are required")); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckAvailability", "error", writeErr)
		}
		return
	}

	available, err := h.ledger.CheckAvailability(r.Context(), ps.ByName("id"), *checkIn, *checkOut)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckAvailability", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{
		"room_id":   ps.ByName("id"),
		"check_in":  checkIn,
		"check_out": checkOut,
		"available": available,
	}); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckAvailability", "error", err)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations", h.GetAll)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.POST("/api/v1/reservations/id/:id/participants", h.AddParticipants)
	router.POST("/api/v1/reservations/id/:id/transition", h.Transition)
	router.POST("/api/v1/reservations/id/:id/cancel", h.Cancel)
	router.DELETE("/api/v1/reservations/id/:id", h.Delete)
	router.GET("/api/v1/rooms/id/:id/availability", h.CheckAvailability)
}
