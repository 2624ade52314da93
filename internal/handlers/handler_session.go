package handlers

import (
	"net/http"

	portssvc "github.com/cdisim/cdi_sim_app/internal/core/ports/services"
	"github.com/cdisim/cdi_sim_app/internal/dto"
	"github.com/gin-gonic/gin"
)

// sessionHandler exposes the accrual session lifecycle.
type sessionHandler struct {
	sessionService portssvc.SessionSvc
}

func newSessionHandler(ss portssvc.SessionSvc) *sessionHandler {
	return &sessionHandler{sessionService: ss}
}

// registerSessionRoutes registers the accrual session routes.
func registerSessionRoutes(rg *gin.RouterGroup, sessionService portssvc.SessionSvc) {
	h := newSessionHandler(sessionService)

	session := rg.Group("/session")
	{
		session.POST("/open", h.openSession)
		session.POST("/close", h.closeSession)
		session.GET("/status", h.status)
		session.GET("/notices", h.drainNotices)
	}
}

// openSession godoc
// @Summary Open an accrual session
// @Description Catches up offline yield and starts the recurring accrual tick for the user.
// @Tags session
// @Produce json
// @Success 200 {object} dto.SessionOpenResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /session/open [post]
func (h *sessionHandler) openSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	resp, err := h.sessionService.Open(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// closeSession godoc
// @Summary Close the accrual session
// @Description Stops the recurring accrual tick. Closing an inactive session is a no-op.
// @Tags session
// @Success 204
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /session/close [post]
func (h *sessionHandler) closeSession(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.sessionService.Close(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// status godoc
// @Summary Session status
// @Tags session
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /session/status [get]
func (h *sessionHandler) status(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": h.sessionService.Active(userID)})
}

// drainNotices godoc
// @Summary Drain pending notices
// @Description Returns and clears the transient notices the engine emitted since the last drain.
// @Tags session
// @Produce json
// @Success 200 {array} dto.Notice
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /session/notices [get]
func (h *sessionHandler) drainNotices(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	notices := h.sessionService.DrainNotices(userID)
	if notices == nil {
		notices = make([]dto.Notice, 0)
	}
	c.JSON(http.StatusOK, notices)
}
