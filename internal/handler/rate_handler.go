package handler

import (
	"net/http"

	"carebill/internal/middleware"
	"carebill/internal/model"
	"carebill/internal/service"
	"carebill/pkg/pagination"
	"carebill/pkg/response"

	"github.com/gin-gonic/gin"
)

type RateHandler struct {
	rateService service.RateService
}

func NewRateHandler(rateService service.RateService) *RateHandler {
	return &RateHandler{rateService: rateService}
}

func (h *RateHandler) RegisterRoutes(router *gin.RouterGroup) {
	rates := router.Group("/api/rate-cards")
	{
		rates.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleBiller), h.CreateRateCard)
		rates.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleBiller, model.RoleViewer), h.ListRateCards)
		rates.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteRateCard)
	}
}

// CreateRateCard adds a rate card entry
// @Summary      Create rate card
// @Description  Adds a rate for a payer/service-type pair effective from a date; a null payer sets the private-pay default
// @Tags         rates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRateCardRequest  true  "Rate Card Payload"
// @Success      201      {object}  response.Response{data=service.RateCardResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/rate-cards [post]
func (h *RateHandler) CreateRateCard(c *gin.Context) {
	var req service.CreateRateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	card, err := h.rateService.CreateRateCard(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, card))
}

// ListRateCards returns a paginated rate card list
// @Summary      List rate cards
// @Description  Retrieves rate cards, newest effective date first, optionally filtered by payer and service type
// @Tags         rates
// @Security     BearerAuth
// @Produce      json
// @Param        payer_id      query     string  false  "Filter by payer ID"
// @Param        service_type  query     string  false  "Filter by service type"
// @Param        page          query     int     false  "Page number (default 1)"
// @Param        limit         query     int     false  "Items per page (default 20)"
// @Success      200           {object}  response.Response{data=object}
// @Failure      500           {object}  response.Response
// @Router       /api/rate-cards [get]
func (h *RateHandler) ListRateCards(c *gin.Context) {
	params := pagination.Parse(c)

	cards, total, err := h.rateService.ListRateCards(c.Request.Context(), c.Query("payer_id"), c.Query("service_type"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "rate_cards", cards, total, params.Page, params.Limit))
}

// DeleteRateCard removes a rate card entry
// @Summary      Delete rate card
// @Description  Deletes a rate card entry; already-generated invoices keep the rates they were billed at
// @Tags         rates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Rate Card ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/rate-cards/{id} [delete]
func (h *RateHandler) DeleteRateCard(c *gin.Context) {
	if err := h.rateService.DeleteRateCard(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]string{"message": "Rate card deleted"}))
}
