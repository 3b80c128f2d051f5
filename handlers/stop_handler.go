package handlers

import (
	"net/http"

	"github.com/courtside-dev/bracket-engine/services"
)

type StopHandler struct {
	stopService services.StopService
}

func NewStopHandler(stopService services.StopService) *StopHandler {
	return &StopHandler{stopService: stopService}
}

type stopRequest struct {
	Name string `json:"name"`
}

// Create - POST /stops.
func (h *StopHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input stopRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	stop, err := h.stopService.Create(r.Context(), input.Name)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"stop": stop}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List - GET /stops.
func (h *StopHandler) List(w http.ResponseWriter, r *http.Request) {
	stops, err := h.stopService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stops": stops}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get - GET /stops/{stopID}.
func (h *StopHandler) Get(w http.ResponseWriter, r *http.Request) {
	stopID, err := urlParamInt(r, "stopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	stop, err := h.stopService.GetByID(r.Context(), stopID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"stop": stop}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
