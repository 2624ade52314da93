package handlers

import (
	"net/http"
	"time"

	portssvc "github.com/cdisim/cdi_sim_app/internal/core/ports/services"
	"github.com/cdisim/cdi_sim_app/internal/dto"
	"github.com/cdisim/cdi_sim_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// investmentHandler handles HTTP requests related to investments.
type investmentHandler struct {
	investmentService portssvc.InvestmentSvcFacade
}

func newInvestmentHandler(is portssvc.InvestmentSvcFacade) *investmentHandler {
	return &investmentHandler{investmentService: is}
}

// registerInvestmentRoutes registers all investment-related routes.
func registerInvestmentRoutes(rg *gin.RouterGroup, investmentService portssvc.InvestmentSvcFacade) {
	h := newInvestmentHandler(investmentService)

	investments := rg.Group("/investments")
	{
		investments.GET("", h.listInvestments)
		investments.POST("", h.createInvestment)
		investments.GET("/:id", h.getInvestment)
		investments.PUT("/:id", h.updateInvestment)
		investments.POST("/:id/contribute", h.contribute)
		investments.POST("/:id/withdraw", h.withdraw)
		investments.POST("/:id/projection", h.projectYield)
	}
}

// requireUserID pulls the authenticated user out of the request or aborts.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
	}
	return userID, ok
}

// listInvestments godoc
// @Summary List investments
// @Description Lists every investment of the authenticated user with its current tax standing.
// @Tags investments
// @Produce json
// @Success 200 {array} dto.InvestmentResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /investments [get]
func (h *investmentHandler) listInvestments(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	investments, err := h.investmentService.ListInvestments(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToListInvestmentResponse(investments, time.Now()))
}

// createInvestment godoc
// @Summary Create an investment
// @Description Allocates capital from the free balance into a new position.
// @Tags investments
// @Accept json
// @Produce json
// @Param investment body dto.CreateInvestmentRequest true "Investment details"
// @Success 201 {object} dto.InvestmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Security BearerAuth
// @Router /investments [post]
func (h *investmentHandler) createInvestment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	inv, err := h.investmentService.CreateInvestment(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToInvestmentResponse(inv, time.Now()))
}

// getInvestment godoc
// @Summary Get an investment
// @Tags investments
// @Produce json
// @Param id path string true "Investment ID"
// @Success 200 {object} dto.InvestmentResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /investments/{id} [get]
func (h *investmentHandler) getInvestment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	inv, err := h.investmentService.GetInvestmentByID(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToInvestmentResponse(inv, time.Now()))
}

// updateInvestment godoc
// @Summary Update an investment
// @Description Changes mutable fields. The creation timestamp anchoring the tax clock cannot be changed.
// @Tags investments
// @Accept json
// @Produce json
// @Param id path string true "Investment ID"
// @Param investment body dto.UpdateInvestmentRequest true "Fields to update"
// @Success 200 {object} dto.InvestmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /investments/{id} [put]
func (h *investmentHandler) updateInvestment(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	inv, err := h.investmentService.UpdateInvestment(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToInvestmentResponse(inv, time.Now()))
}

// contribute godoc
// @Summary Contribute to an investment
// @Description Moves capital from the free balance into the position.
// @Tags investments
// @Accept json
// @Produce json
// @Param id path string true "Investment ID"
// @Param contribution body dto.ContributeRequest true "Contribution amount"
// @Success 200 {object} dto.InvestmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Security BearerAuth
// @Router /investments/{id}/contribute [post]
func (h *investmentHandler) contribute(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.ContributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	inv, err := h.investmentService.Contribute(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToInvestmentResponse(inv, time.Now()))
}

// withdraw godoc
// @Summary Withdraw from an investment
// @Description Redeems part or all of the position back to the free balance. Full withdrawals destroy the record.
// @Tags investments
// @Accept json
// @Produce json
// @Param id path string true "Investment ID"
// @Param withdrawal body dto.WithdrawRequest true "Withdrawal details"
// @Success 200 {object} dto.WithdrawResult
// @Failure 400 {object} ErrorResponse
// @Failure 423 {object} ErrorResponse
// @Security BearerAuth
// @Router /investments/{id}/withdraw [post]
func (h *investmentHandler) withdraw(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.WithdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.investmentService.Withdraw(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// projectYield godoc
// @Summary Project yield
// @Description Computes the net day/week/month yield for the position after an optional signed delta.
// @Tags investments
// @Accept json
// @Produce json
// @Param id path string true "Investment ID"
// @Param projection body dto.ProjectionRequest true "Signed contribution or withdrawal delta"
// @Success 200 {object} fincalc.Projection
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /investments/{id}/projection [post]
func (h *investmentHandler) projectYield(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.ProjectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	proj, err := h.investmentService.ProjectYield(c.Request.Context(), userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, proj)
}
