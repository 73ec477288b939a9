package handler

import (
	"net/http"

	"carebill/internal/middleware"
	"carebill/internal/model"
	"carebill/internal/service"
	"carebill/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthorizationHandler struct {
	authService service.AuthorizationService
}

func NewAuthorizationHandler(authService service.AuthorizationService) *AuthorizationHandler {
	return &AuthorizationHandler{authService: authService}
}

func (h *AuthorizationHandler) RegisterRoutes(router *gin.RouterGroup) {
	auths := router.Group("/api/authorizations")
	{
		auths.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleBiller), h.CreateAuthorization)
		auths.GET("/:id/utilization", middleware.RequireRole(model.RoleAdmin, model.RoleBiller, model.RoleViewer), h.GetUtilization)
	}

	router.GET("/api/clients/:id/authorizations", middleware.RequireRole(model.RoleAdmin, model.RoleBiller, model.RoleViewer), h.ListByClient)
}

// CreateAuthorization registers a payer authorization for a client
// @Summary      Create authorization
// @Description  Registers a payer-issued cap on units of service for a client over a validity window
// @Tags         authorizations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateAuthorizationRequest  true  "Authorization Payload"
// @Success      201      {object}  response.Response{data=service.UtilizationResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/authorizations [post]
func (h *AuthorizationHandler) CreateAuthorization(c *gin.Context) {
	var req service.CreateAuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	auth, err := h.authService.CreateAuthorization(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, auth))
}

// GetUtilization reports used vs authorized units
// @Summary      Authorization utilization
// @Description  Returns used, authorized, and remaining units with a consumption percentage and ACTIVE/LOW/EXPIRED status
// @Tags         authorizations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Authorization ID"
// @Success      200  {object}  response.Response{data=service.UtilizationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/authorizations/{id}/utilization [get]
func (h *AuthorizationHandler) GetUtilization(c *gin.Context) {
	util, err := h.authService.GetUtilization(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, util))
}

// ListByClient returns a client's authorizations with utilization inline
// @Summary      List client authorizations
// @Description  Lists a client's authorizations, newest validity window first, each with utilization computed
// @Tags         authorizations
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  response.Response{data=[]service.UtilizationResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/clients/{id}/authorizations [get]
func (h *AuthorizationHandler) ListByClient(c *gin.Context) {
	utils, err := h.authService.ListByClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, utils))
}
