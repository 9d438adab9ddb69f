package calendar

import (
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharath018/event-calendar-backend/internal/event"
	"github.com/sharath018/event-calendar-backend/internal/eventstore"
	"github.com/sharath018/event-calendar-backend/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

type Handler struct {
	sessions *Sessions
}

func NewHandler(sessions *Sessions) *Handler {
	return &Handler{sessions: sessions}
}

func (h *Handler) page(c *gin.Context) *Page {
	return h.sessions.Page(c.Request.Context(), middleware.GetSessionID(c))
}

// ===========================
// 📥 Request structs

type DropRequest struct {
	Start string `json:"start" binding:"required"`
	End   string `json:"end"`
}

type DeleteRequest struct {
	Confirm bool `json:"confirm"`
}

// ActionResponse carries the refreshed view and, when a write was issued,
// its acknowledgement.
type ActionResponse struct {
	View View            `json:"view"`
	Ack  *eventstore.Ack `json:"ack,omitempty"`
}

// DeleteResponse also echoes the confirmation prompt that was answered.
type DeleteResponse struct {
	View    View            `json:"view"`
	Prompt  string          `json:"prompt"`
	Deleted bool            `json:"deleted"`
	Ack     *eventstore.Ack `json:"ack,omitempty"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrEventNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDialogClosed):
		return http.StatusConflict
	case errors.Is(err, eventstore.ErrStopped):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrNoSelection),
		errors.Is(err, ErrUnknownField),
		errors.Is(err, ErrInvalidView),
		errors.Is(err, event.ErrTitleRequired),
		errors.Is(err, event.ErrStartRequired),
		errors.Is(err, event.ErrInvalidTime),
		errors.Is(err, event.ErrEndBeforeStart),
		errors.Is(err, event.ErrEmptyPatch),
		errors.Is(err, event.ErrIDRequired):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail answers with the error and the current view so the browser can keep
// the dialog in sync.
func fail(c *gin.Context, p *Page, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error(), "view": p.View()})
}

// ===========================
// 🖥️ HTML

// Index renders the calendar page
// @Summary Calendar page
// @Tags Page
// @Produce html
// @Success 200 {string} string "HTML page"
// @Router / [get]
func (h *Handler) Index(c *gin.Context) {
	view := h.page(c).View()
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(c.Writer, view); err != nil {
		log.Printf("❌ Failed to render calendar page: %v", err)
	}
}

// GetView returns the page state
// @Summary Get page state
// @Tags Page
// @Produce json
// @Success 200 {object} View
// @Router /api/v1/page [get]
func (h *Handler) GetView(c *gin.Context) {
	c.JSON(http.StatusOK, h.page(c).View())
}

// ===========================
// 📝 Dialog

// SelectRange opens the create dialog
// @Summary Select a date range
// @Tags Page
// @Accept json
// @Produce json
// @Param selection body Selection true "Selected range"
// @Success 200 {object} View
// @Failure 400 {object} gin.H
// @Router /api/v1/page/selection [post]
func (h *Handler) SelectRange(c *gin.Context) {
	p := h.page(c)
	var sel Selection
	if err := c.ShouldBindJSON(&sel); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := p.SelectRange(sel); err != nil {
		fail(c, p, err)
		return
	}
	c.JSON(http.StatusOK, p.View())
}

// OpenEvent opens the edit dialog
// @Summary Open an event for editing
// @Tags Page
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} View
// @Failure 404 {object} gin.H
// @Router /api/v1/page/events/{id}/open [post]
func (h *Handler) OpenEvent(c *gin.Context) {
	p := h.page(c)
	if err := p.OpenEvent(c.Param("id")); err != nil {
		fail(c, p, err)
		return
	}
	c.JSON(http.StatusOK, p.View())
}

// SetForm replaces the dialog form values
// @Summary Update form values
// @Tags Page
// @Accept json
// @Produce json
// @Param form body Form true "Form values"
// @Success 200 {object} View
// @Failure 409 {object} gin.H
// @Router /api/v1/page/form [put]
func (h *Handler) SetForm(c *gin.Context) {
	p := h.page(c)
	var form Form
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := p.SetForm(form); err != nil {
		fail(c, p, err)
		return
	}
	c.JSON(http.StatusOK, p.View())
}

// Save submits the dialog
// @Summary Save the dialog
// @Description Creates or updates the event. A blank title keeps the dialog open.
// @Tags Page
// @Produce json
// @Success 202 {object} ActionResponse
// @Failure 400 {object} gin.H
// @Failure 409 {object} gin.H
// @Router /api/v1/page/save [post]
func (h *Handler) Save(c *gin.Context) {
	p := h.page(c)
	ack, err := p.Save(c.Request.Context())
	if err != nil {
		fail(c, p, err)
		return
	}
	c.JSON(http.StatusAccepted, ActionResponse{View: p.View(), Ack: &ack})
}

// Close discards the dialog
// @Summary Close the dialog
// @Tags Page
// @Produce json
// @Success 200 {object} View
// @Router /api/v1/page/close [post]
func (h *Handler) Close(c *gin.Context) {
	p := h.page(c)
	p.Close()
	c.JSON(http.StatusOK, p.View())
}

// ===========================
// 🎯 Grid and sidebar actions

// DropEvent moves or resizes an event
// @Summary Drop an event
// @Tags Page
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param range body DropRequest true "New start and end"
// @Success 202 {object} ActionResponse
// @Failure 400 {object} gin.H
// @Router /api/v1/page/events/{id}/drop [post]
func (h *Handler) DropEvent(c *gin.Context) {
	p := h.page(c)
	var req DropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	ack, err := p.DropEvent(c.Request.Context(), c.Param("id"), req.Start, req.End)
	if err != nil {
		fail(c, p, err)
		return
	}
	c.JSON(http.StatusAccepted, ActionResponse{View: p.View(), Ack: &ack})
}

// ToggleExpanded shows or hides an event's details
// @Summary Toggle sidebar details
// @Tags Page
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} View
// @Router /api/v1/page/events/{id}/expand [post]
func (h *Handler) ToggleExpanded(c *gin.Context) {
	p := h.page(c)
	p.ToggleExpanded(c.Param("id"))
	c.JSON(http.StatusOK, p.View())
}

// ToggleMenu opens or closes an event's overflow menu
// @Summary Toggle overflow menu
// @Tags Page
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} View
// @Router /api/v1/page/events/{id}/menu [post]
func (h *Handler) ToggleMenu(c *gin.Context) {
	p := h.page(c)
	p.ToggleMenu(c.Param("id"))
	c.JSON(http.StatusOK, p.View())
}

// Delete answers the confirmation prompt for deleting an event
// @Summary Delete an event
// @Description The body answers the confirmation prompt; nothing is deleted unless confirm is true.
// @Tags Page
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param answer body DeleteRequest true "Confirmation"
// @Success 200 {object} DeleteResponse
// @Failure 404 {object} gin.H
// @Router /api/v1/page/events/{id}/delete [post]
func (h *Handler) Delete(c *gin.Context) {
	p := h.page(c)
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	var prompt string
	answer := ConfirmFunc(func(text string) bool {
		prompt = text
		return req.Confirm
	})

	ack, deleted, err := p.Delete(c.Request.Context(), c.Param("id"), answer)
	if err != nil {
		fail(c, p, err)
		return
	}

	resp := DeleteResponse{View: p.View(), Prompt: prompt, Deleted: deleted}
	if deleted {
		resp.Ack = &ack
	}
	c.JSON(http.StatusOK, resp)
}

// DismissNotice clears the failure notice
// @Summary Dismiss notice
// @Tags Page
// @Produce json
// @Success 200 {object} View
// @Router /api/v1/page/notice [delete]
func (h *Handler) DismissNotice(c *gin.Context) {
	p := h.page(c)
	p.DismissNotice()
	c.JSON(http.StatusOK, p.View())
}

// SetPreferences stores the grid preferences of this session
// @Summary Update grid preferences
// @Tags Page
// @Accept json
// @Produce json
// @Param preferences body Preferences true "Preferences"
// @Success 200 {object} View
// @Failure 400 {object} gin.H
// @Router /api/v1/page/preferences [put]
func (h *Handler) SetPreferences(c *gin.Context) {
	p := h.page(c)
	var prefs Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := p.SetPreferences(c.Request.Context(), prefs); err != nil {
		fail(c, p, err)
		return
	}
	c.JSON(http.StatusOK, p.View())
}
