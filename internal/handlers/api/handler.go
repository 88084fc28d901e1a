// Package api serves the exchange to browser clients: the public board,
// reveals and a server-sent event stream of board changes.
package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KirkDiggler/secretsanta/internal/models"
	"github.com/KirkDiggler/secretsanta/internal/services/draw"
	"github.com/KirkDiggler/secretsanta/internal/services/messaging"
)

// EventBoard is the server-sent event name carrying a board
const EventBoard = "board"

// Config holds the dependencies of the HTTP handler
type Config struct {
	DrawService      draw.Service
	MessagingService messaging.Service
}

// Handler holds the dependencies for the HTTP handlers
type Handler struct {
	draw      draw.Service
	messaging messaging.Service
}

// New creates a new Handler
func New(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.DrawService == nil {
		return nil, errors.New("draw service cannot be nil")
	}

	if cfg.MessagingService == nil {
		return nil, errors.New("messaging service cannot be nil")
	}

	return &Handler{
		draw:      cfg.DrawService,
		messaging: cfg.MessagingService,
	}, nil
}

// RegisterRoutes registers all the application routes
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	router.GET("/healthz", h.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.GET("/board", h.GetBoard)
	api.GET("/participants", h.FindParticipant)
	api.POST("/draws/:participantId", h.Reveal)
	api.GET("/events", h.StreamEvents)
}

// RevealResponse is returned to the participant who drew
type RevealResponse struct {
	Giver     models.Participant `json:"giver"`
	Recipient models.Participant `json:"recipient"`
	Message   string             `json:"message"`
	Fallback  bool               `json:"fallback"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Healthz reports whether the coordinator holds a usable document
func (h *Handler) Healthz(c *gin.Context) {
	if _, err := h.draw.Board(); err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetBoard returns who is in the exchange and who has drawn
func (h *Handler) GetBoard(c *gin.Context) {
	board, err := h.draw.Board()
	if err != nil {
		h.abort(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

// FindParticipant resolves ?name= to a participant
func (h *Handler) FindParticipant(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name is required", Code: "bad_request"})
		return
	}

	out, err := h.draw.FindParticipant(c.Request.Context(), &draw.FindParticipantInput{Name: name})
	if err != nil {
		h.abort(c, err)
		return
	}

	c.JSON(http.StatusOK, models.BoardEntry{
		ID:       out.Participant.ID,
		Name:     out.Participant.Name,
		HasDrawn: out.HasDrawn,
	})
}

// Reveal performs the draw for the participant in the path
func (h *Handler) Reveal(c *gin.Context) {
	ctx := c.Request.Context()

	out, err := h.draw.Reveal(ctx, &draw.RevealInput{ParticipantID: c.Param("participantId")})
	if err != nil {
		h.abort(c, err)
		return
	}

	// never fails; a fallback wish is used instead
	msg, err := h.messaging.GetRevealMessage(ctx, &messaging.GetRevealMessageInput{
		RecipientName: out.Recipient.Name,
	})
	if err != nil || msg == nil {
		msg = &messaging.GetRevealMessageOutput{
			Message:  messaging.FallbackMessage(out.Recipient.Name),
			Fallback: true,
		}
	}

	c.JSON(http.StatusOK, RevealResponse{
		Giver:     out.Giver,
		Recipient: out.Recipient,
		Message:   msg.Message,
		Fallback:  msg.Fallback,
	})
}

// StreamEvents pushes the board to the client every time it changes
func (h *Handler) StreamEvents(c *gin.Context) {
	boards, cancel := h.draw.Watch()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	done := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case board, ok := <-boards:
			if !ok {
				return false
			}
			c.SSEvent(EventBoard, board)
			return true
		case <-done:
			return false
		}
	})
}

func (h *Handler) abort(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: err.Error(), Code: code})
}

// statusFor maps coordinator errors onto HTTP statuses
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, draw.ErrAlreadyDrawn):
		return http.StatusConflict, "already_drawn"
	case errors.Is(err, draw.ErrParticipantNotFound):
		return http.StatusNotFound, "participant_not_found"
	case errors.Is(err, draw.ErrCorruptState):
		return http.StatusInternalServerError, "corrupt_state"
	case errors.Is(err, draw.ErrNotReady):
		return http.StatusServiceUnavailable, "not_ready"
	case errors.Is(err, draw.ErrStoreUnavailable), errors.Is(err, draw.ErrClosed):
		return http.StatusServiceUnavailable, "store_unavailable"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
