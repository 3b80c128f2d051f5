package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/courtside-dev/bracket-engine/brackets"
	"github.com/courtside-dev/bracket-engine/models"
	"github.com/courtside-dev/bracket-engine/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRequest(body string) (*httptest.ResponseRecorder, *http.Request) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return httptest.NewRecorder(), req
}

func TestReadJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
		Seed *int   `json:"seed"`
	}

	testCases := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "valid body",
			body: `{"name": "Smashers", "seed": 3}`,
		},
		{
			name:    "empty body",
			body:    ``,
			wantErr: "body must not be empty",
		},
		{
			name:    "malformed JSON",
			body:    `{"name": `,
			wantErr: "badly-formed JSON",
		},
		{
			name:    "wrong field type",
			body:    `{"name": 7}`,
			wantErr: `incorrect JSON type for field "name"`,
		},
		{
			name:    "unknown field",
			body:    `{"name": "Smashers", "color": "red"}`,
			wantErr: "unknown key",
		},
		{
			name:    "trailing second value",
			body:    `{"name": "a"} {"name": "b"}`,
			wantErr: "single JSON value",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec, req := jsonRequest(tc.body)
			var dst payload
			err := readJSON(rec, req, &dst)
			if tc.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "Smashers", dst.Name)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	err := writeJSON(rec, http.StatusCreated, jsonResponse{"status": "ok"}, http.Header{
		"X-Request-Id": []string{"abc"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "abc", rec.Header().Get("X-Request-Id"))
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestURLParamInt(t *testing.T) {
	makeReq := func(value string) *http.Request {
		ctx := chi.NewRouteContext()
		ctx.URLParams.Add("stopID", value)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, ctx))
	}

	v, err := urlParamInt(makeReq("12"), "stopID")
	require.NoError(t, err)
	assert.Equal(t, 12, v)

	_, err = urlParamInt(makeReq("abc"), "stopID")
	assert.Error(t, err)

	_, err = urlParamInt(makeReq("0"), "stopID")
	assert.Error(t, err)
}

func TestMapServiceErrorToHTTP(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "not found", err: services.ErrBracketNotFound, wantStatus: http.StatusNotFound},
		{name: "wrapped not found", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
		{name: "validation", err: services.ErrScoreDataInvalid, wantStatus: http.StatusBadRequest},
		{name: "not live", err: services.ErrMatchNotLive, wantStatus: http.StatusBadRequest},
		{name: "dormant reset final", err: services.ErrResetFinalDormant, wantStatus: http.StatusBadRequest},
		{name: "team name conflict", err: services.ErrTeamNameConflict, wantStatus: http.StatusConflict},
		{name: "forbidden", err: services.ErrForbiddenOperation, wantStatus: http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			mapServiceErrorToHTTP(rec, req, tc.err)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestMapStructuralInconsistency(t *testing.T) {
	err := &services.StructuralInconsistencyError{
		MatchID: 5,
		Conflicts: []brackets.SlotConflict{{
			MatchID:      9,
			Slot:         models.SideA,
			ExistingTeam: 101,
			IncomingTeam: 104,
			SourceMatch:  5,
		}},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/", nil)
	mapServiceErrorToHTTP(rec, req, err)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "conflicts")
	assert.Contains(t, rec.Body.String(), `"match_id"`)
}
