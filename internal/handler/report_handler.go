package handler

import (
	"net/http"

	"carebill/internal/middleware"
	"carebill/internal/model"
	"carebill/internal/service"
	"carebill/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	agingService  service.AgingService
	reportService service.ReportService
}

func NewReportHandler(agingService service.AgingService, reportService service.ReportService) *ReportHandler {
	return &ReportHandler{agingService: agingService, reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports")
	{
		reports.GET("/aging", middleware.RequireRole(model.RoleAdmin, model.RoleBiller, model.RoleViewer), h.GetAgingSummary)
		reports.GET("/revenue", middleware.RequireRole(model.RoleAdmin, model.RoleBiller, model.RoleViewer), h.GetRevenueReport)
	}
}

// GetAgingSummary returns the accounts-receivable aging report
// @Summary      A/R aging summary
// @Description  Classifies every unpaid invoice into aging buckets (current, 1-30, 31-60, 61-90, 90+) by days past due
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        as_of  query     string  false  "Report date YYYY-MM-DD (default today)"
// @Success      200    {object}  response.Response{data=service.AgingSummary}
// @Failure      400    {object}  response.Response
// @Router       /api/reports/aging [get]
func (h *ReportHandler) GetAgingSummary(c *gin.Context) {
	summary, err := h.agingService.GetAgingSummary(c.Request.Context(), c.Query("as_of"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// GetRevenueReport returns monthly billed and collected revenue
// @Summary      Revenue report
// @Description  Monthly invoiced vs collected totals for the window, with mark-paid settlements reconciled separately
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        from  query     string  false  "Window start YYYY-MM-DD (default one year back)"
// @Param        to    query     string  false  "Window end YYYY-MM-DD (default today)"
// @Success      200   {object}  response.Response{data=service.RevenueReport}
// @Failure      400   {object}  response.Response
// @Router       /api/reports/revenue [get]
func (h *ReportHandler) GetRevenueReport(c *gin.Context) {
	report, err := h.reportService.GetRevenueReport(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, report))
}
