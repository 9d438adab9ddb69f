package eventstore

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/event-calendar-backend/internal/event"
	"github.com/sharath018/event-calendar-backend/internal/reports"
)

type Handler struct {
	store    *Store
	exporter reports.EventExporter
}

func NewHandler(store *Store, exporter reports.EventExporter) *Handler {
	return &Handler{store: store, exporter: exporter}
}

// ListResponse is the current snapshot as served over HTTP.
type ListResponse struct {
	Events  []event.Event `json:"events"`
	Loading bool          `json:"loading"`
}

// isValidationError reports whether err is the caller's fault.
func isValidationError(err error) bool {
	return errors.Is(err, event.ErrTitleRequired) ||
		errors.Is(err, event.ErrStartRequired) ||
		errors.Is(err, event.ErrInvalidTime) ||
		errors.Is(err, event.ErrEndBeforeStart) ||
		errors.Is(err, event.ErrEmptyPatch) ||
		errors.Is(err, event.ErrIDRequired)
}

func writeError(c *gin.Context, err error) {
	switch {
	case isValidationError(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrStopped):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event store is shutting down"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// ListEvents returns the latest snapshot
// @Summary List events
// @Description Returns the events of the latest snapshot. loading stays true until the first snapshot arrives.
// @Tags Events
// @Produce json
// @Success 200 {object} ListResponse
// @Router /api/v1/events [get]
func (h *Handler) ListEvents(c *gin.Context) {
	c.JSON(http.StatusOK, ListResponse{
		Events:  h.store.Events(),
		Loading: h.store.Loading(),
	})
}

// GetEvent returns one event from the latest snapshot
// @Summary Get event by ID
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} event.Event
// @Failure 404 {object} gin.H
// @Router /api/v1/events/{id} [get]
func (h *Handler) GetEvent(c *gin.Context) {
	ev, ok := h.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
		return
	}
	c.JSON(http.StatusOK, ev)
}

// CreateEvent issues a create
// @Summary Create event
// @Description Issues a create against the remote collection. The event shows up in the next snapshot.
// @Tags Events
// @Accept json
// @Produce json
// @Param event body event.Fields true "Event fields"
// @Success 202 {object} Ack
// @Failure 400 {object} gin.H
// @Router /api/v1/events [post]
func (h *Handler) CreateEvent(c *gin.Context) {
	var fields event.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ack, err := h.store.AddEvent(c.Request.Context(), fields)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, ack)
}

// UpdateEvent issues a partial update
// @Summary Update event
// @Description Only the supplied fields change.
// @Tags Events
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param patch body event.Patch true "Fields to change"
// @Success 202 {object} Ack
// @Failure 400 {object} gin.H
// @Router /api/v1/events/{id} [patch]
func (h *Handler) UpdateEvent(c *gin.Context) {
	var patch event.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	ack, err := h.store.UpdateEvent(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, ack)
}

// DeleteEvent issues a delete
// @Summary Delete event
// @Tags Events
// @Produce json
// @Param id path string true "Event ID"
// @Success 202 {object} Ack
// @Router /api/v1/events/{id} [delete]
func (h *Handler) DeleteEvent(c *gin.Context) {
	ack, err := h.store.DeleteEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, ack)
}

// ===========================
// 📡 Server-Sent Events

type snapshotPayload struct {
	Events []event.Event `json:"events"`
}

type outcomePayload struct {
	RequestID string `json:"request_id"`
	Op        Op     `json:"op"`
	EventID   string `json:"event_id,omitempty"`
	Title     string `json:"title,omitempty"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error,omitempty"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func ssePayload(n Notification) interface{} {
	switch n.Kind {
	case KindSnapshot:
		return snapshotPayload{Events: n.Events}
	case KindWriteApplied, KindWriteFailed:
		p := outcomePayload{
			RequestID: n.Outcome.RequestID,
			Op:        n.Outcome.Op,
			EventID:   n.Outcome.EventID,
			Title:     n.Outcome.Title,
			Attempts:  n.Outcome.Attempts,
		}
		if n.Outcome.Err != nil {
			p.Error = fmt.Sprintf("Error %s event: %v", n.Outcome.Op.gerund(), n.Outcome.Err)
		}
		return p
	default:
		msg := "subscription error"
		if n.Err != nil {
			msg = n.Err.Error()
		}
		return errorPayload{Error: msg}
	}
}

// Stream pushes store notifications as Server-Sent Events
// @Summary Stream events
// @Description Server-Sent Events: snapshot, write_applied, write_failed and stream_error.
// @Tags Events
// @Produce text/event-stream
// @Success 200 {string} string "event stream"
// @Router /api/v1/events/stream [get]
func (h *Handler) Stream(c *gin.Context) {
	ch, cancel := h.store.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case n, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(n.Kind), ssePayload(n))
			return true
		}
	})
}

// ===========================
// 📄 Export

// Export downloads the current snapshot
// @Summary Export events
// @Tags Events
// @Produce octet-stream
// @Param format query string false "csv, xlsx, pdf or ics (default csv)"
// @Param range query string false "daily, weekly, monthly, yearly, custom or all"
// @Param start_date query string false "YYYY-MM-DD, custom range only"
// @Param end_date query string false "YYYY-MM-DD, custom range only"
// @Success 200 {file} file
// @Failure 400 {object} gin.H
// @Router /api/v1/events/export [get]
func (h *Handler) Export(c *gin.Context) {
	var req reports.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query"})
		return
	}

	events, err := reports.FilterEvents(h.store.Events(), req, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, filename, contentType, err := h.exporter.Export(req.Format, events)
	if err != nil {
		log.Printf("❌ Export failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Data(http.StatusOK, contentType, data)
}
