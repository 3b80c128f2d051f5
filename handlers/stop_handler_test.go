package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/courtside-dev/bracket-engine/models"
	"github.com/courtside-dev/bracket-engine/services"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStopService struct {
	createFn func(ctx context.Context, name string) (*models.Stop, error)
	getFn    func(ctx context.Context, stopID int) (*models.Stop, error)
	listFn   func(ctx context.Context) ([]*models.Stop, error)
}

func (s *stubStopService) Create(ctx context.Context, name string) (*models.Stop, error) {
	return s.createFn(ctx, name)
}

func (s *stubStopService) GetByID(ctx context.Context, stopID int) (*models.Stop, error) {
	return s.getFn(ctx, stopID)
}

func (s *stubStopService) List(ctx context.Context) ([]*models.Stop, error) {
	return s.listFn(ctx)
}

func TestStopHandlerCreate(t *testing.T) {
	created := time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)

	testCases := []struct {
		name       string
		body       string
		createFn   func(ctx context.Context, name string) (*models.Stop, error)
		wantStatus int
		wantBody   string
	}{
		{
			name: "creates a stop",
			body: `{"name": "Portland Stop"}`,
			createFn: func(ctx context.Context, name string) (*models.Stop, error) {
				require.Equal(t, "Portland Stop", name)
				return &models.Stop{ID: 7, Name: name, CreatedAt: created}, nil
			},
			wantStatus: http.StatusCreated,
			wantBody:   `"Portland Stop"`,
		},
		{
			name: "blank name is rejected",
			body: `{"name": "   "}`,
			createFn: func(ctx context.Context, name string) (*models.Stop, error) {
				return nil, services.ErrStopNameRequired
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "stop name is required",
		},
		{
			name:       "malformed body never reaches the service",
			body:       `{"name": `,
			wantStatus: http.StatusBadRequest,
			wantBody:   "badly-formed JSON",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewStopHandler(&stubStopService{createFn: tc.createFn})
			rec, req := jsonRequest(tc.body)

			handler.Create(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tc.wantBody)
		})
	}
}

func TestStopHandlerGet(t *testing.T) {
	handler := NewStopHandler(&stubStopService{
		getFn: func(ctx context.Context, stopID int) (*models.Stop, error) {
			if stopID != 7 {
				return nil, services.ErrStopNotFound
			}
			return &models.Stop{ID: 7, Name: "Portland Stop"}, nil
		},
	})

	get := func(param string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/stops/"+param, nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("stopID", param)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rec := httptest.NewRecorder()
		handler.Get(rec, req)
		return rec
	}

	rec := get("7")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Portland Stop"`)

	rec = get("8")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get("zero")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStopHandlerList(t *testing.T) {
	handler := NewStopHandler(&stubStopService{
		listFn: func(ctx context.Context) ([]*models.Stop, error) {
			return []*models.Stop{
				{ID: 2, Name: "Spring Stop"},
				{ID: 1, Name: "Winter Stop"},
			}, nil
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/stops", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Spring Stop"`)
	assert.Contains(t, rec.Body.String(), `"Winter Stop"`)
}
