package directions

import (
	"bytes"
	"context"
	"dispatch-route-service/internal/domain"
	"dispatch-route-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.openrouteservice.org"
	defaultProfile = "driving-car"
	// ORS rejects directions requests with more waypoints than this.
	maxWaypoints = 50
)

// ORSDirectionsProvider implements DirectionsProvider using OpenRouteService.
//
// It coordinates:
//   - Client-side rate limiting of outbound calls
//   - A circuit breaker that stops calling a failing upstream
//   - Retry with backoff for transient failures
//
// The provider is safe for concurrent use.
type ORSDirectionsProvider struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

// ORSConfig configures an ORSDirectionsProvider. Zero values select defaults.
type ORSConfig struct {
	APIKey        string
	BaseURL       string
	Profile       string
	RatePerSecond float64
	Timeout       time.Duration
}

func NewORSDirectionsProvider(cfg ORSConfig, log *zap.Logger) (*ORSDirectionsProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if log == nil {
		log = zap.NewNop()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	profile := strings.TrimSpace(cfg.Profile)
	if profile == "" {
		profile = defaultProfile
	}
	perSec := cfg.RatePerSecond
	if perSec <= 0 {
		perSec = 2
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	provider := &ORSDirectionsProvider{
		session: &http.Client{Timeout: timeout},
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		profile: profile,
		limiter: rate.NewLimiter(rate.Limit(perSec), 1),
		log:     log,
	}

	provider.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ors-directions",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return provider, nil
}

type directionsRequest struct {
	Coordinates [][]float64 `json:"coordinates"`
}

type directionsResponse struct {
	Routes []struct {
		Summary struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"summary"`
	} `json:"routes"`
}

// EstimateRoute returns road distance and duration for visiting waypoints in order.
func (o *ORSDirectionsProvider) EstimateRoute(
	ctx context.Context,
	waypoints []domain.Coordinates,
) (_ domain.RouteEstimate, err error) {
	defer obs.Time(ctx, o.log, "ors.EstimateRoute")(&err)

	if len(waypoints) < 2 {
		return domain.RouteEstimate{}, nil
	}
	if len(waypoints) > maxWaypoints {
		return domain.RouteEstimate{}, fmt.Errorf("estimate route: %d waypoints exceeds limit of %d", len(waypoints), maxWaypoints)
	}

	coords := make([][]float64, 0, len(waypoints))
	for _, w := range waypoints {
		coords = append(coords, w.CoordsToList())
	}

	payload, err := json.Marshal(directionsRequest{Coordinates: coords})
	if err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("marshal directions request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/directions/%s", o.baseURL, o.profile)

	out, err := o.breaker.Execute(func() (interface{}, error) {
		resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
			return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		})
		if err != nil {
			return nil, fmt.Errorf("directions request failed: %w", err)
		}
		defer resp.Body.Close()

		var dr directionsResponse
		if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
			return nil, fmt.Errorf("decode directions response: %w", err)
		}
		if len(dr.Routes) == 0 {
			return nil, errors.New("directions response contained no routes")
		}

		// ORS returns float metrics; round to nearest integer for domain consistency.
		summary := dr.Routes[0].Summary
		return domain.RouteEstimate{
			DistanceMeters:  int(math.Round(summary.Distance)),
			DurationSeconds: int(math.Round(summary.Duration)),
		}, nil
	})
	if err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("estimate route: %w", err)
	}

	return out.(domain.RouteEstimate), nil
}
