package handlers

import (
	"net/http"

	"github.com/courtside-dev/bracket-engine/services"
)

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(teamService services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

type teamRequest struct {
	Name string  `json:"name"`
	Seed *int    `json:"seed"`
	Club *string `json:"club"`
}

// Create - POST /stops/{stopID}/teams.
func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	stopID, err := urlParamInt(r, "stopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input teamRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.Create(r.Context(), stopID, input.Name, input.Seed, input.Club)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// List - GET /stops/{stopID}/teams.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	stopID, err := urlParamInt(r, "stopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teams, err := h.teamService.ListByStop(r.Context(), stopID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update - PUT /teams/{teamID}.
func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input teamRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.Update(r.Context(), teamID, input.Name, input.Seed, input.Club)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete - DELETE /teams/{teamID}.
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	teamID, err := urlParamInt(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.teamService.Delete(r.Context(), teamID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
