package handler

import (
	"net/http"

	"carebill/internal/middleware"
	"carebill/internal/model"
	"carebill/internal/repository"
	"carebill/internal/service"
	"carebill/pkg/pagination"
	"carebill/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	ledgerService  service.LedgerService
}

func NewInvoiceHandler(invoiceService service.InvoiceService, ledgerService service.LedgerService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		ledgerService:  ledgerService,
	}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices")
	{
		invoices.POST("/generate", middleware.RequireRole(model.RoleAdmin, model.RoleBiller), h.GenerateInvoice)
		invoices.POST("/generate-batch", middleware.RequireRole(model.RoleAdmin, model.RoleBiller), h.GenerateInvoiceBatch)
		invoices.POST("", middleware.RequireRole(model.RoleAdmin, model.RoleBiller), h.CreateManualInvoice)
		invoices.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleBiller, model.RoleViewer), h.ListInvoices)
		invoices.GET("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleBiller, model.RoleViewer), h.GetInvoice)
		invoices.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteInvoice)

		invoices.POST("/:id/payments", middleware.RequireRole(model.RoleAdmin, model.RoleBiller), h.RecordPayment)
		invoices.POST("/:id/adjustments", middleware.RequireRole(model.RoleAdmin, model.RoleBiller), h.RecordAdjustment)
		invoices.PUT("/:id/mark-paid", middleware.RequireRole(model.RoleAdmin, model.RoleBiller), h.MarkPaid)
	}
}

// GenerateInvoice builds an invoice from committed time entries
// @Summary      Generate invoice
// @Description  Generates an invoice for a client from committed, unbilled time entries in the period
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.GenerateInvoiceRequest  true  "Generate Invoice Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/invoices/generate [post]
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	var req service.GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.GenerateInvoice(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// GenerateInvoiceBatch runs invoice generation for all billable clients
// @Summary      Batch generate invoices
// @Description  Generates invoices for every active client with billable activity in the period; per-client failures are reported, not fatal
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.BatchGenerateRequest  true  "Batch Generate Payload"
// @Success      200      {object}  response.Response{data=service.BatchGenerateResult}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/generate-batch [post]
func (h *InvoiceHandler) GenerateInvoiceBatch(c *gin.Context) {
	var req service.BatchGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.invoiceService.GenerateInvoiceBatch(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CreateManualInvoice creates an invoice from operator-entered line items
// @Summary      Create manual invoice
// @Description  Creates an invoice from explicit line items instead of tracked time entries
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateManualInvoiceRequest  true  "Manual Invoice Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateManualInvoice(c *gin.Context) {
	var req service.CreateManualInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.CreateManualInvoice(c.Request.Context(), req, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// ListInvoices returns a paginated invoice list
// @Summary      List invoices
// @Description  Retrieves a paginated list of invoices with optional client, status, and invoice-number filters
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        client_id   query     string  false  "Filter by client ID"
// @Param        status      query     string  false  "Filter by status (PENDING, PARTIAL, PAID)"
// @Param        invoice_no  query     string  false  "Filter by invoice number (partial match)"
// @Param        page        query     int     false  "Page number (default 1)"
// @Param        limit       query     int     false  "Items per page (default 20)"
// @Success      200         {object}  response.Response{data=object}
// @Failure      500         {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	params := pagination.Parse(c)

	filter := repository.InvoiceListFilter{
		ClientID:  c.Query("client_id"),
		Status:    c.Query("status"),
		InvoiceNo: c.Query("invoice_no"),
		Page:      params.Page,
		Limit:     params.Limit,
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, "invoices", invoices, total, params.Page, params.Limit))
}

// GetInvoice returns one invoice with line items, payments, and adjustments
// @Summary      Get invoice
// @Description  Retrieves an invoice by ID with full line item, payment, and adjustment detail
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// DeleteInvoice hard-deletes an invoice
// @Summary      Delete invoice
// @Description  Deletes an invoice with its line items, payments, and adjustments; consumed time entries become billable again
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.ledgerService.DeleteInvoice(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]string{"message": "Invoice deleted"}))
}

// RecordPayment appends a payment to an invoice
// @Summary      Record payment
// @Description  Records a payment against an invoice and re-derives its status
// @Tags         ledger
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Payment Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.ledgerService.RecordPayment(c.Request.Context(), c.Param("id"), req, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// RecordAdjustment appends an adjustment to an invoice
// @Summary      Record adjustment
// @Description  Records a write-off, discount, refund, or generic adjustment against an invoice balance
// @Tags         ledger
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                           true  "Invoice ID"
// @Param        payload  body      service.RecordAdjustmentRequest  true  "Adjustment Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/invoices/{id}/adjustments [post]
func (h *InvoiceHandler) RecordAdjustment(c *gin.Context) {
	var req service.RecordAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.ledgerService.RecordAdjustment(c.Request.Context(), c.Param("id"), req, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// MarkPaid settles an invoice without a payment record
// @Summary      Mark invoice paid
// @Description  Overrides the invoice status to PAID for off-ledger settlements; the override is flagged and audited
// @Tags         ledger
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id}/mark-paid [put]
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	invoice, err := h.ledgerService.MarkPaid(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}
