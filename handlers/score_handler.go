package handlers

import (
	"fmt"
	"net/http"

	"github.com/courtside-dev/bracket-engine/models"
	"github.com/courtside-dev/bracket-engine/services"
	"github.com/go-chi/chi/v5"
)

func parseGameSlot(r *http.Request) (models.GameSlot, error) {
	slot := models.GameSlot(chi.URLParam(r, "slot"))
	switch slot {
	case models.SlotMensDoubles, models.SlotWomensDoubles, models.SlotMixed1, models.SlotMixed2, models.SlotTiebreak:
		return slot, nil
	default:
		return "", fmt.Errorf("unknown game slot %q", slot)
	}
}

type ScoreHandler struct {
	scoreService services.ScoreService
}

func NewScoreHandler(scoreService services.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService}
}

type submitScoreRequest struct {
	TeamAScore int `json:"team_a_score"`
	TeamBScore int `json:"team_b_score"`
}

// SubmitScore - PUT /matches/{matchID}/games/{slot}/score. Коррекция уже
// внесённого счёта идёт тем же маршрутом и переинтерпретирует матч.
func (h *ScoreHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	slot, err := parseGameSlot(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input submitScoreRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	update, err := h.scoreService.SubmitScore(r.Context(), matchID, slot, input.TeamAScore, input.TeamBScore)
	if err != nil {
		// Конфликт продвижения: счёт сохранён, каскад остановлен. Клиент
		// получает 409 вместе с сохранённым состоянием.
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"update": update}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type forfeitRequest struct {
	Side *models.Side `json:"side"`
}

// SetForfeit - POST /matches/{matchID}/forfeit. side=null снимает неявку.
func (h *ScoreHandler) SetForfeit(w http.ResponseWriter, r *http.Request) {
	matchID, err := urlParamInt(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input forfeitRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	update, err := h.scoreService.SetForfeit(r.Context(), matchID, input.Side)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"update": update}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
