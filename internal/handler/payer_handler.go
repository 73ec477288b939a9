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

type PayerHandler struct {
	payerService service.PayerService
}

func NewPayerHandler(payerService service.PayerService) *PayerHandler {
	return &PayerHandler{payerService: payerService}
}

func (h *PayerHandler) RegisterRoutes(router *gin.RouterGroup) {
	payers := router.Group("/api/payers")
	{
		payers.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleBiller), h.CreatePayer)
		payers.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleBiller, model.RoleViewer), h.ListPayers)
		payers.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleBiller, model.RoleViewer), h.GetPayerByID)
		payers.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleBiller), h.UpdatePayer)
		payers.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeletePayer)
	}
}

// CreatePayer registers a referral source
// @Summary      Create payer
// @Description  Registers an insurer, agency, or VA program that funds client services
// @Tags         payers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreatePayerRequest  true  "Create Payer Payload"
// @Success      201      {object}  response.Response{data=service.PayerResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/payers [post]
func (h *PayerHandler) CreatePayer(c *gin.Context) {
	var req service.CreatePayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payer, err := h.payerService.CreatePayer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, payer))
}

// ListPayers returns a paginated payer list
// @Summary      List payers
// @Description  Retrieves payers optionally filtered by type or a name search
// @Tags         payers
// @Security     BearerAuth
// @Produce      json
// @Param        type    query     string  false  "Filter by payer type (INSURANCE, AGENCY, VA, OTHER)"
// @Param        search  query     string  false  "Name search (partial match)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /api/payers [get]
func (h *PayerHandler) ListPayers(c *gin.Context) {
	params := pagination.Parse(c)

	payers, total, err := h.payerService.ListPayers(c.Request.Context(), c.Query("type"), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "payers", payers, total, params.Page, params.Limit))
}

// GetPayerByID returns one payer
// @Summary      Get payer
// @Description  Retrieves a payer by ID
// @Tags         payers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payer ID"
// @Success      200  {object}  response.Response{data=service.PayerResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/payers/{id} [get]
func (h *PayerHandler) GetPayerByID(c *gin.Context) {
	payer, err := h.payerService.GetPayerByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, payer))
}

// UpdatePayer modifies a payer
// @Summary      Update payer
// @Description  Updates payer contact and billing fields
// @Tags         payers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Payer ID"
// @Param        payload  body      service.UpdatePayerRequest  true  "Update Payer Payload"
// @Success      200      {object}  response.Response{data=service.PayerResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/payers/{id} [put]
func (h *PayerHandler) UpdatePayer(c *gin.Context) {
	var req service.UpdatePayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	payer, err := h.payerService.UpdatePayer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payer))
}

// DeletePayer soft-deletes a payer
// @Summary      Delete payer
// @Description  Soft-deletes a payer; clients referencing it keep billing at its rates until reassigned
// @Tags         payers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Payer ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/payers/{id} [delete]
func (h *PayerHandler) DeletePayer(c *gin.Context) {
	if err := h.payerService.DeletePayer(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]string{"message": "Payer deleted"}))
}
