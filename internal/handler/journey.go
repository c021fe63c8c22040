package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bikeride/internal/domain"
	"bikeride/internal/service"
)

// JourneyHandler handles HTTP requests for ride journeys.
type JourneyHandler struct {
	journeyService  *service.JourneyService
	reconciler      *service.Reconciler
	movementService *service.MovementService
}

// NewJourneyHandler creates a new JourneyHandler.
func NewJourneyHandler(
	journeyService *service.JourneyService,
	reconciler *service.Reconciler,
	movementService *service.MovementService,
) *JourneyHandler {
	return &JourneyHandler{
		journeyService:  journeyService,
		reconciler:      reconciler,
		movementService: movementService,
	}
}

// JourneyResponse is the HTTP response for journey operations.
type JourneyResponse struct {
	RideJourneyID         string `json:"ride_journey_id"`
	BookingID             string `json:"booking_id"`
	BikeID                string `json:"bike_id"`
	CustomerID            string `json:"customer_id"`
	Status                string `json:"status"`
	StartTime             string `json:"start_time,omitempty"`
	EndTime               string `json:"end_time,omitempty"`
	PausedAt              string `json:"paused_at,omitempty"`
	TotalPausedSeconds    int64  `json:"total_paused_seconds,omitempty"`
	ActiveDurationSeconds int64  `json:"active_duration_seconds"`
	CreatedAt             string `json:"created_at"`
}

// CompleteResponse is the HTTP response of a ride completion.
type CompleteResponse struct {
	RideJourneyID string `json:"ride_journey_id"`
	BookingID     string `json:"booking_id"`
	EndTime       string `json:"end_time"`
}

// PathResponse is the HTTP response of a path replay.
type PathResponse struct {
	RideJourneyID  string                  `json:"ride_journey_id"`
	Points         []domain.LocationSample `json:"points"`
	PointCount     int                     `json:"point_count"`
	DistanceMeters float64                 `json:"distance_meters"`
	CreatedAt      string                  `json:"created_at,omitempty"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeFormat)
}

func toJourneyResponse(j *domain.RideJourney) JourneyResponse {
	return JourneyResponse{
		RideJourneyID:         j.ID,
		BookingID:             j.BookingID,
		BikeID:                j.BikeID,
		CustomerID:            j.CustomerID,
		Status:                string(j.Status),
		StartTime:             formatTime(j.StartTime),
		EndTime:               formatTime(j.EndTime),
		PausedAt:              formatTime(j.PausedAt),
		TotalPausedSeconds:    int64(j.TotalPaused.Seconds()),
		ActiveDurationSeconds: int64(j.ActiveDuration(time.Now()).Seconds()),
		CreatedAt:             formatTime(j.CreatedAt),
	}
}

// CreateJourney handles POST /v1/bookings/:id/journeys
func (h *JourneyHandler) CreateJourney(c *gin.Context) {
	journey, err := h.journeyService.CreateJourney(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toJourneyResponse(journey))
}

// CompleteRide handles POST /v1/bookings/:id/journeys/:journeyId/complete
func (h *JourneyHandler) CompleteRide(c *gin.Context) {
	bookingID := c.Param("id")
	journeyID := c.Param("journeyId")

	endTime, err := h.reconciler.CompleteRide(c.Request.Context(), bookingID, journeyID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, CompleteResponse{
		RideJourneyID: journeyID,
		BookingID:     bookingID,
		EndTime:       endTime.Format(timeFormat),
	})
}

// StartRide handles POST /v1/journeys/:id/start
func (h *JourneyHandler) StartRide(c *gin.Context) {
	journey, err := h.journeyService.StartRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toJourneyResponse(journey))
}

// PauseRide handles POST /v1/journeys/:id/pause
func (h *JourneyHandler) PauseRide(c *gin.Context) {
	journey, err := h.journeyService.PauseRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toJourneyResponse(journey))
}

// ResumeRide handles POST /v1/journeys/:id/resume
func (h *JourneyHandler) ResumeRide(c *gin.Context) {
	journey, err := h.journeyService.ResumeRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toJourneyResponse(journey))
}

// GetJourney handles GET /v1/journeys/:id
func (h *JourneyHandler) GetJourney(c *gin.Context) {
	journey, err := h.journeyService.GetJourney(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toJourneyResponse(journey))
}

// GetAll handles GET /v1/journeys
func (h *JourneyHandler) GetAll(c *gin.Context) {
	status := domain.JourneyStatus(c.Query("status"))

	journeys, err := h.journeyService.ListJourneys(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]JourneyResponse, 0, len(journeys))
	for _, j := range journeys {
		response = append(response, toJourneyResponse(j))
	}

	respondJSON(c, http.StatusOK, response)
}

// GetPath handles GET /v1/journeys/:id/path
func (h *JourneyHandler) GetPath(c *gin.Context) {
	path, err := h.journeyService.GetPath(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, PathResponse{
		RideJourneyID:  path.RideJourneyID,
		Points:         path.Points,
		PointCount:     len(path.Points),
		DistanceMeters: service.PathDistance(path.Points),
		CreatedAt:      formatTime(path.CreatedAt),
	})
}

// GetMovementPattern handles GET /v1/journeys/:id/movement
func (h *JourneyHandler) GetMovementPattern(c *gin.Context) {
	pattern, err := h.movementService.GetMovementPattern(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, pattern)
}
