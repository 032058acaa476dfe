package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	billingapp "github.com/cuentia/backend/internal/application/billing"
	"github.com/cuentia/backend/internal/interfaces/http/dto"
	"github.com/cuentia/backend/internal/interfaces/http/middleware"
)

// AdminHandler handles operator-only billing endpoints. All routes require
// the admin role on top of normal authentication.
type AdminHandler struct {
	BaseHandler
	manualPayments *billingapp.ManualPaymentService
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(manualPayments *billingapp.ManualPaymentService) *AdminHandler {
	return &AdminHandler{
		manualPayments: manualPayments,
	}
}

// RegisterRoutes registers admin routes on the given group
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin", middleware.RequireAdmin())
	{
		admin.GET("/manual-payments", h.ListManualPayments)
		admin.POST("/manual-payments/:id/approve", h.ApproveManualPayment)
		admin.POST("/manual-payments/:id/reject", h.RejectManualPayment)
	}
}

// ListManualPayments returns all manual payment requests, newest first
func (h *AdminHandler) ListManualPayments(c *gin.Context) {
	requests, err := h.manualPayments.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]dto.ManualPaymentResponse, 0, len(requests))
	for i := range requests {
		out = append(out, toManualPaymentResponse(&requests[i]))
	}

	h.Success(c, out)
}

// ApproveManualPayment approves a pending request and applies the purchase
func (h *AdminHandler) ApproveManualPayment(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	if err := h.manualPayments.Approve(c.Request.Context(), requestID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RejectManualPayment rejects a pending request without touching the ledger
func (h *AdminHandler) RejectManualPayment(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	if err := h.manualPayments.Reject(c.Request.Context(), requestID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
