package api

import (
	"context"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/platform/metrics"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct{}

func (stubService) Propose(ctx context.Context, date time.Time) (domain.DispatchResult, error) {
	return domain.DispatchResult{}, nil
}

func (stubService) Apply(ctx context.Context, date time.Time, assignments []domain.Assignment) error {
	return nil
}

func (stubService) ReoptimizeRoute(ctx context.Context, date time.Time, vehicleID string) (domain.ReoptimizeResult, error) {
	return domain.ReoptimizeResult{}, nil
}

func TestRouterAssignsRequestID(t *testing.T) {
	router := NewRouter(stubService{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestRouterRoutes(t *testing.T) {
	router := NewRouter(stubService{}, nil)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodPost, "/dispatch/propose", `{"date":"2026-10-16"}`, http.StatusOK},
		{http.MethodPut, "/dispatch/apply", `{"date":"2026-10-16","assignments":[]}`, http.StatusOK},
		{http.MethodPost, "/dispatch/reoptimize-route", `{"date":"2026-10-16","vehicle_id":"v1"}`, http.StatusOK},
		{http.MethodGet, "/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRouterExposesMetrics(t *testing.T) {
	metrics.Register()
	router := NewRouter(stubService{}, nil)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/dispatch/propose", routeLabel("/dispatch/propose"))
	assert.Equal(t, "other", routeLabel("/dispatch/propose/../../etc"))
}
