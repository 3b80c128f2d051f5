package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/courtside-dev/bracket-engine/services"
)

type AuditHandler struct {
	auditService services.AuditService
}

func NewAuditHandler(auditService services.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// Run - POST /stops/{stopID}/audit?apply=true|false. Без apply только
// отчёт; с apply выводимые расхождения чинятся сразу.
func (h *AuditHandler) Run(w http.ResponseWriter, r *http.Request) {
	stopID, err := urlParamInt(r, "stopID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	apply := false
	if raw := r.URL.Query().Get("apply"); raw != "" {
		apply, err = strconv.ParseBool(raw)
		if err != nil {
			badRequestResponse(w, r, errors.New("apply must be true or false"))
			return
		}
	}

	report, err := h.auditService.Run(r.Context(), stopID, apply)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"report": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
