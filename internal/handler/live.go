package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"bikeride/internal/domain"
	"bikeride/internal/metrics"
	"bikeride/internal/service"
)

const liveWriteTimeout = 10 * time.Second

// LiveHandler streams live map frames over a websocket.
type LiveHandler struct {
	movementService *service.MovementService
	interval        time.Duration
	upgrader        websocket.Upgrader
}

// NewLiveHandler creates a new LiveHandler that pushes one frame per interval.
func NewLiveHandler(movementService *service.MovementService, interval time.Duration) *LiveHandler {
	return &LiveHandler{
		movementService: movementService,
		interval:        interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Watch handles GET /v1/journeys/:id/live
func (h *LiveHandler) Watch(c *gin.Context) {
	journeyID := c.Param("id")

	// Fail fast with a plain HTTP error before upgrading.
	if _, err := h.movementService.Snapshot(c.Request.Context(), journeyID); err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[LIVE] upgrade failed for journey %s: %v", journeyID, err)
		return
	}
	defer conn.Close()

	metrics.LiveObservers.Inc()
	defer metrics.LiveObservers.Dec()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// The client never sends anything useful; reading detects the disconnect.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	err = h.movementService.Watch(ctx, journeyID, h.interval, func(frame *service.LiveFrame) error {
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
		return conn.WriteJSON(liveFrameResponse(frame))
	})
	if err != nil {
		log.Printf("[LIVE] journey %s: %v", journeyID, err)
		return
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "journey finished"))
}

// LiveFrameResponse is one websocket frame.
type LiveFrameResponse struct {
	Journey JourneyResponse        `json:"journey"`
	Latest  *domain.LocationSample `json:"latest,omitempty"`
	Pattern domain.MovementPattern `json:"pattern"`
	At      string                 `json:"at"`
}

func liveFrameResponse(frame *service.LiveFrame) LiveFrameResponse {
	return LiveFrameResponse{
		Journey: toJourneyResponse(frame.Journey),
		Latest:  frame.Latest,
		Pattern: frame.Pattern,
		At:      frame.At.Format(timeFormat),
	}
}
