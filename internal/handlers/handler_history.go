package handlers

import (
	"net/http"

	portssvc "github.com/cdisim/cdi_sim_app/internal/core/ports/services"
	"github.com/cdisim/cdi_sim_app/internal/dto"
	"github.com/gin-gonic/gin"
)

// historyHandler serves the rolling daily profit history.
type historyHandler struct {
	sessionService portssvc.SessionSvc
}

func newHistoryHandler(ss portssvc.SessionSvc) *historyHandler {
	return &historyHandler{sessionService: ss}
}

// registerHistoryRoutes registers the history routes.
func registerHistoryRoutes(rg *gin.RouterGroup, sessionService portssvc.SessionSvc) {
	h := newHistoryHandler(sessionService)
	rg.GET("/history", h.listHistory)
}

// listHistory godoc
// @Summary List recent daily profit history
// @Description Returns one aggregated row per calendar day inside the retention window, newest first.
// @Tags history
// @Produce json
// @Success 200 {array} dto.HistoryEntryResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /history [get]
func (h *historyHandler) listHistory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	rows, err := h.sessionService.RecentHistory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToHistoryResponse(rows))
}
