package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"bikeride/internal/domain"
	"bikeride/internal/movement"
	"bikeride/internal/repository"
	"bikeride/internal/service"
	"bikeride/internal/tests"
)

func newTestRouter(env *tests.Env) *gin.Engine {
	gin.SetMode(gin.TestMode)

	movementService := service.NewMovementService(env.Journeys, env.Tracking, env.Store, nil, movement.NewClassifier(movement.DefaultConfig()))
	journeys := NewJourneyHandler(env.Journey, env.Reconciler, movementService)
	locations := NewLocationHandler(env.Ingestion)
	live := NewLiveHandler(movementService, 10*time.Millisecond)

	router := gin.New()
	router.POST("/v1/bookings/:id/journeys", journeys.CreateJourney)
	router.POST("/v1/bookings/:id/journeys/:journeyId/complete", journeys.CompleteRide)
	router.GET("/v1/journeys", journeys.GetAll)
	router.GET("/v1/journeys/:id", journeys.GetJourney)
	router.POST("/v1/journeys/:id/start", journeys.StartRide)
	router.POST("/v1/journeys/:id/pause", journeys.PauseRide)
	router.POST("/v1/journeys/:id/resume", journeys.ResumeRide)
	router.POST("/v1/journeys/:id/locations", locations.IngestSample)
	router.GET("/v1/journeys/:id/movement", journeys.GetMovementPattern)
	router.GET("/v1/journeys/:id/path", journeys.GetPath)
	router.GET("/v1/journeys/:id/live", live.Watch)
	return router
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCompleteRide_Endpoint(t *testing.T) {
	env := tests.NewEnv(domain.JourneyStatusActive)
	env.Push(tests.Samples(3)...)
	router := newTestRouter(env)

	path := fmt.Sprintf("/v1/bookings/%s/journeys/%s/complete", tests.BookingID, tests.JourneyID)

	first := do(router, http.MethodPost, path, "")
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", first.Code, first.Body.String())
	}
	var resp CompleteResponse
	if err := json.Unmarshal(first.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.EndTime == "" || resp.RideJourneyID != tests.JourneyID {
		t.Errorf("unexpected response: %+v", resp)
	}

	second := do(router, http.MethodPost, path, "")
	if second.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat, got %d", second.Code)
	}
	var again CompleteResponse
	_ = json.Unmarshal(second.Body.Bytes(), &again)
	if again.EndTime != resp.EndTime {
		t.Errorf("expected end time %s on repeat, got %s", resp.EndTime, again.EndTime)
	}

	pathResp := do(router, http.MethodGet, "/v1/journeys/"+tests.JourneyID+"/path", "")
	if pathResp.Code != http.StatusOK {
		t.Fatalf("expected 200 for path, got %d", pathResp.Code)
	}
	var replay PathResponse
	_ = json.Unmarshal(pathResp.Body.Bytes(), &replay)
	if replay.PointCount != 3 {
		t.Errorf("expected 3 points, got %d", replay.PointCount)
	}
}

func TestJourneyEndpoints_StatusCodes(t *testing.T) {
	testCases := []struct {
		name   string
		status domain.JourneyStatus
		method string
		path   string
		body   string
		want   int
	}{
		{"create with open journey", domain.JourneyStatusActive, http.MethodPost, "/v1/bookings/42/journeys", "", http.StatusConflict},
		{"create after completion", domain.JourneyStatusCompleted, http.MethodPost, "/v1/bookings/42/journeys", "", http.StatusCreated},
		{"create for unknown booking", domain.JourneyStatusCompleted, http.MethodPost, "/v1/bookings/nope/journeys", "", http.StatusNotFound},
		{"start pending", domain.JourneyStatusPending, http.MethodPost, "/v1/journeys/7/start", "", http.StatusOK},
		{"pause pending", domain.JourneyStatusPending, http.MethodPost, "/v1/journeys/7/pause", "", http.StatusConflict},
		{"resume paused", domain.JourneyStatusPaused, http.MethodPost, "/v1/journeys/7/resume", "", http.StatusOK},
		{"complete pending", domain.JourneyStatusPending, http.MethodPost, "/v1/bookings/42/journeys/7/complete", "", http.StatusConflict},
		{"complete wrong booking", domain.JourneyStatusActive, http.MethodPost, "/v1/bookings/99/journeys/7/complete", "", http.StatusBadRequest},
		{"get unknown", domain.JourneyStatusActive, http.MethodGet, "/v1/journeys/nope", "", http.StatusNotFound},
		{"list bad status", domain.JourneyStatusActive, http.MethodGet, "/v1/journeys?status=riding", "", http.StatusBadRequest},
		{"list active", domain.JourneyStatusActive, http.MethodGet, "/v1/journeys?status=active", "", http.StatusOK},
		{"path before completion", domain.JourneyStatusActive, http.MethodGet, "/v1/journeys/7/path", "", http.StatusConflict},
		{"movement", domain.JourneyStatusActive, http.MethodGet, "/v1/journeys/7/movement", "", http.StatusOK},
		{"ingest", domain.JourneyStatusActive, http.MethodPost, "/v1/journeys/7/locations", `{"lat":48.85,"lng":2.35,"timestamp":1760000000000}`, http.StatusAccepted},
		{"ingest malformed body", domain.JourneyStatusActive, http.MethodPost, "/v1/journeys/7/locations", `{"lat":"north"}`, http.StatusBadRequest},
		{"ingest out of range", domain.JourneyStatusActive, http.MethodPost, "/v1/journeys/7/locations", `{"lat":91,"lng":2.35,"timestamp":1}`, http.StatusBadRequest},
		{"ingest paused", domain.JourneyStatusPaused, http.MethodPost, "/v1/journeys/7/locations", `{"lat":48.85,"lng":2.35,"timestamp":1}`, http.StatusConflict},
		{"ingest other customer", domain.JourneyStatusActive, http.MethodPost, "/v1/journeys/7/locations", `{"lat":48.85,"lng":2.35,"timestamp":1,"customer_id":"x"}`, http.StatusForbidden},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(tests.NewEnv(tc.status))

			w := do(router, tc.method, tc.path, tc.body)
			if w.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestCompleteRide_EndpointStoreOutage(t *testing.T) {
	env := tests.NewEnv(domain.JourneyStatusActive)
	env.Store.FailNextReads(tests.TestRetryPolicy.Retries+1, errors.New("redis down"))
	router := newTestRouter(env)

	w := do(router, http.MethodPost, "/v1/bookings/42/journeys/7/complete", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{repository.ErrNotFound, http.StatusNotFound},
		{service.ErrInvalidLocation, http.StatusBadRequest},
		{service.ErrInvalidTransition, http.StatusConflict},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{service.ErrCustomerMismatch, http.StatusForbidden},
		{fmt.Errorf("%w: timeout", service.ErrDurablePersistenceFailure), http.StatusServiceUnavailable},
		{fmt.Errorf("%w: timeout", service.ErrEphemeralStoreUnavailable), http.StatusServiceUnavailable},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		if got := mapErrorToHTTPStatus(tc.err); got != tc.want {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.want, got)
		}
	}
}

func TestLiveFeed_StreamsUntilCompletion(t *testing.T) {
	env := tests.NewEnv(domain.JourneyStatusActive)
	env.Push(tests.Samples(3)...)
	server := httptest.NewServer(newTestRouter(env))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/journeys/" + tests.JourneyID + "/live"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var frame LiveFrameResponse
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("reading first frame: %v", err)
	}
	if frame.Journey.RideJourneyID != tests.JourneyID {
		t.Errorf("expected journey %s, got %s", tests.JourneyID, frame.Journey.RideJourneyID)
	}
	if frame.Latest == nil {
		t.Error("expected the latest sample in the frame")
	}
	if frame.Pattern.Type != domain.PatternStationary && frame.Pattern.Type != domain.PatternLinear {
		t.Errorf("unexpected pattern %s", frame.Pattern.Type)
	}

	env.Journeys.SetStatus(tests.JourneyID, domain.JourneyStatusCompleted)

	for {
		var next LiveFrameResponse
		err := conn.ReadJSON(&next)
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.Fatalf("expected a normal close, got %v", err)
			}
			return
		}
	}
}

func TestLiveFeed_UnknownJourney(t *testing.T) {
	router := newTestRouter(tests.NewEnv(domain.JourneyStatusActive))

	w := do(router, http.MethodGet, "/v1/journeys/nope/live", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
