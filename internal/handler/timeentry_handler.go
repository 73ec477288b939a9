package handler

import (
	"net/http"
	"time"

	"carebill/internal/middleware"
	"carebill/internal/model"
	"carebill/internal/repository"
	"carebill/internal/service"
	"carebill/pkg/pagination"
	"carebill/pkg/response"

	"github.com/gin-gonic/gin"
)

type TimeEntryHandler struct {
	entryService service.TimeEntryService
}

func NewTimeEntryHandler(entryService service.TimeEntryService) *TimeEntryHandler {
	return &TimeEntryHandler{entryService: entryService}
}

func (h *TimeEntryHandler) RegisterRoutes(router *gin.RouterGroup) {
	entries := router.Group("/api/time-entries")
	{
		entries.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleBiller), h.CreateTimeEntry)
		entries.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleBiller, model.RoleViewer), h.ListTimeEntries)
		entries.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleBiller, model.RoleViewer), h.GetTimeEntryByID)
		entries.PUT("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleBiller), h.UpdateTimeEntry)
		entries.PUT("/:id/commit", middleware.RequireRole(model.RoleAdmin, model.RoleBiller), h.CommitTimeEntry)
	}
}

// CreateTimeEntry records a delivered shift as a draft
// @Summary      Create time entry
// @Description  Records a shift with wall-clock start and end times; entries stay DRAFT until committed
// @Tags         time-entries
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTimeEntryRequest  true  "Time Entry Payload"
// @Success      201      {object}  response.Response{data=service.TimeEntryResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/time-entries [post]
func (h *TimeEntryHandler) CreateTimeEntry(c *gin.Context) {
	var req service.CreateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.entryService.CreateTimeEntry(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, entry))
}

// ListTimeEntries returns a paginated time entry list
// @Summary      List time entries
// @Description  Retrieves time entries filtered by client, status, billed flag, and service date range
// @Tags         time-entries
// @Security     BearerAuth
// @Produce      json
// @Param        client_id  query     string  false  "Filter by client ID"
// @Param        status     query     string  false  "Filter by status (DRAFT, COMMITTED)"
// @Param        billed     query     bool    false  "Filter by billed flag"
// @Param        from       query     string  false  "Service date from YYYY-MM-DD"
// @Param        to         query     string  false  "Service date to YYYY-MM-DD"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (default 20)"
// @Success      200        {object}  response.Response{data=object}
// @Failure      500        {object}  response.Response
// @Router       /api/time-entries [get]
func (h *TimeEntryHandler) ListTimeEntries(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.TimeEntryListFilter{
		ClientID: c.Query("client_id"),
		Status:   c.Query("status"),
		Page:     params.Page,
		Limit:    params.Limit,
	}
	if billed := c.Query("billed"); billed != "" {
		b := billed == "true"
		filter.Billed = &b
	}
	if from := c.Query("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			filter.From = &t
		}
	}
	if to := c.Query("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			filter.To = &t
		}
	}

	entries, total, err := h.entryService.ListTimeEntries(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "time_entries", entries, total, params.Page, params.Limit))
}

// GetTimeEntryByID returns one time entry
// @Summary      Get time entry
// @Description  Retrieves a time entry by ID
// @Tags         time-entries
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Time Entry ID"
// @Success      200  {object}  response.Response{data=service.TimeEntryResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/time-entries/{id} [get]
func (h *TimeEntryHandler) GetTimeEntryByID(c *gin.Context) {
	entry, err := h.entryService.GetTimeEntryByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}

// UpdateTimeEntry modifies a draft time entry
// @Summary      Update time entry
// @Description  Updates a DRAFT time entry; committed entries are immutable
// @Tags         time-entries
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "Time Entry ID"
// @Param        payload  body      service.UpdateTimeEntryRequest  true  "Update Payload"
// @Success      200      {object}  response.Response{data=service.TimeEntryResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/time-entries/{id} [put]
func (h *TimeEntryHandler) UpdateTimeEntry(c *gin.Context) {
	var req service.UpdateTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.entryService.UpdateTimeEntry(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}

// CommitTimeEntry moves a draft entry into the billable pool
// @Summary      Commit time entry
// @Description  Commits a DRAFT entry so invoice generation can consume it; optionally freezes the currently effective rate
// @Tags         time-entries
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "Time Entry ID"
// @Param        payload  body      service.CommitTimeEntryRequest  true  "Commit Payload"
// @Success      200      {object}  response.Response{data=service.TimeEntryResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/time-entries/{id}/commit [put]
func (h *TimeEntryHandler) CommitTimeEntry(c *gin.Context) {
	var req service.CommitTimeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	entry, err := h.entryService.CommitTimeEntry(c.Request.Context(), c.Param("id"), req, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, entry))
}
