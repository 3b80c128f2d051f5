package handlers

import (
	"net/http"

	"github.com/courtside-dev/bracket-engine/services"
)

type BracketHandler struct {
	bracketService services.BracketService
	matchService   services.MatchService
}

func NewBracketHandler(bracketService services.BracketService, matchService services.MatchService) *BracketHandler {
	return &BracketHandler{
		bracketService: bracketService,
		matchService:   matchService,
	}
}

// Generate - POST /stops/{stopID}/bracket. Строит сетку с нуля; прежняя
// сетка этапа архивируется и удаляется.
func (h *BracketHandler) Generate(w http.ResponseWriter, r *http.Request) {
	stopID, err := urlParamInt(r, "stopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.bracketService.Generate(r.Context(), stopID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"bracket": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Get - GET /stops/{stopID}/bracket.
func (h *BracketHandler) Get(w http.ResponseWriter, r *http.Request) {
	stopID, err := urlParamInt(r, "stopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.bracketService.GetStopBracket(r.Context(), stopID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListLive - GET /stops/{stopID}/matches/live.
func (h *BracketHandler) ListLive(w http.ResponseWriter, r *http.Request) {
	stopID, err := urlParamInt(r, "stopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListLive(r.Context(), stopID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetMatch - GET /matches/{matchID}.
func (h *BracketHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetWithGames(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
