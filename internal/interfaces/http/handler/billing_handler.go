package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	billingapp "github.com/cuentia/backend/internal/application/billing"
	"github.com/cuentia/backend/internal/domain/billing"
	"github.com/cuentia/backend/internal/domain/shared"
	"github.com/cuentia/backend/internal/interfaces/http/dto"
)

// BillingHandler handles account-facing billing endpoints
type BillingHandler struct {
	BaseHandler
	entitlements   *billingapp.EntitlementService
	subscriptions  *billingapp.SubscriptionService
	usage          *billingapp.UsageService
	checkout       *billingapp.CheckoutService
	manualPayments *billingapp.ManualPaymentService
	subRepo        billing.SubscriptionRepository
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(
	entitlements *billingapp.EntitlementService,
	subscriptions *billingapp.SubscriptionService,
	usage *billingapp.UsageService,
	checkout *billingapp.CheckoutService,
	manualPayments *billingapp.ManualPaymentService,
	subRepo billing.SubscriptionRepository,
) *BillingHandler {
	return &BillingHandler{
		entitlements:   entitlements,
		subscriptions:  subscriptions,
		usage:          usage,
		checkout:       checkout,
		manualPayments: manualPayments,
		subRepo:        subRepo,
	}
}

// RegisterRoutes registers billing routes on the given group
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/billing")
	{
		group.GET("/plan", h.GetActivePlan)
		group.GET("/subscription", h.GetSubscription)
		group.POST("/subscription/trial", h.StartTrial)
		group.POST("/subscription/cancel", h.CancelSubscription)
		group.POST("/subscription/change-plan", h.ChangePlan)
		group.POST("/subscription/retention-discount", h.ApplyRetentionDiscount)
		group.GET("/bots/:code", h.GetBotStatus)
		group.GET("/rfc-limit", h.GetRfcLimit)
		group.GET("/payments", h.ListPayments)
		group.POST("/checkout-session", h.CreateCheckoutSession)
		group.POST("/portal-session", h.CreatePortalSession)
		group.GET("/usage/:feature", h.GetUsage)
		group.POST("/usage", h.RecordUsage)
		group.POST("/manual-payments", h.RegisterManualPayment)
	}
}

// GetActivePlan returns the account's current plan read model
func (h *BillingHandler) GetActivePlan(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Account ID not found in token")
		return
	}

	plan, err := h.entitlements.GetActivePlan(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, plan)
}

// GetSubscription returns the raw current subscription row
func (h *BillingHandler) GetSubscription(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Account ID not found in token")
		return
	}

	sub, err := h.subRepo.FindCurrentByAccount(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.NotFound(c, "No subscription for this account")
			return
		}
		h.HandleError(c, err)
		return
	}

	h.Success(c, toSubscriptionResponse(sub))
}

// StartTrial creates the signup trial subscription for the account
func (h *BillingHandler) StartTrial(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Account ID not found in token")
		return
	}

	sub, err := h.subscriptions.StartTrial(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toSubscriptionResponse(sub))
}

// CancelSubscription cancels the account's current subscription
func (h *BillingHandler) CancelSubscription(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Account ID not found in token")
		return
	}

	if err := h.subscriptions.CancelSubscription(c.Request.Context(), accountID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ChangePlan moves the current subscription to another plan
func (h *BillingHandler) ChangePlan(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Account ID not found in token")
		return
	}

	var req dto.ChangePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.subscriptions.ChangePlan(c.Request.Context(), accountID, req.PriceID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ApplyRetentionDiscount applies the one-time retention discount
func (h *BillingHandler) ApplyRetentionDiscount(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Account ID not found in token")
		return
	}

	var req dto.RetentionDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.subscriptions.ApplyRetentionDiscount(c.Request.Context(), accountID, req.Reason, req.Detail); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GetBotStatus reports whether the account holds an active bot
func (h *BillingHandler) GetBotStatus(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Account ID not found in token")
		return
	}

	code := c.Param("code")
	active, err := h.entitlements.UserHasBot(c.Request.Context(), accountID, code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.BotStatusResponse{Code: code, Active: active})
}

// GetRfcLimit returns the account's RFC capacity including extra-slot addons
func (h *BillingHandler) GetRfcLimit(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Account ID not found in token")
		return
	}

	limit, err := h.entitlements.GetRfcLimit(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.RfcLimitResponse{Limit: limit})
}

// ListPayments returns the account's invoice ledger, newest first
func (h *BillingHandler) ListPayments(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Account ID not found in token")
		return
	}

	records, err := h.entitlements.ListPayments(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]dto.PaymentRecordResponse, 0, len(records))
	for i := range records {
		out = append(out, toPaymentRecordResponse(&records[i]))
	}

	h.Success(c, out)
}

// CreateCheckoutSession starts a hosted checkout for a catalog code
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Account ID not found in token")
		return
	}

	var req dto.CheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	url, err := h.checkout.CreateCheckoutSession(c.Request.Context(), accountID, req.Code)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dto.CheckoutSessionResponse{URL: url})
}

// CreatePortalSession opens the processor's self-service billing portal
func (h *BillingHandler) CreatePortalSession(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Account ID not found in token")
		return
	}

	url, err := h.checkout.CreatePortalSession(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, dto.CheckoutSessionResponse{URL: url})
}

// GetUsage returns the current-period counter for a feature
func (h *BillingHandler) GetUsage(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Account ID not found in token")
		return
	}

	feature := billing.Feature(c.Param("feature"))
	if feature != billing.FeatureCfdiAI && feature != billing.FeatureBotMessage {
		h.BadRequest(c, "Unknown feature")
		return
	}

	usage, err := h.usage.GetUsage(c.Request.Context(), accountID, feature)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, usage)
}

// RecordUsage checks the plan quota and increments the feature counter
func (h *BillingHandler) RecordUsage(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Account ID not found in token")
		return
	}

	var req dto.RecordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if req.Amount == 0 {
		req.Amount = 1
	}

	feature := billing.Feature(req.Feature)
	ctx := c.Request.Context()

	if err := h.usage.CheckQuota(ctx, accountID, feature); err != nil {
		h.HandleError(c, err)
		return
	}

	if err := h.usage.RecordUsage(ctx, accountID, feature, req.Amount); err != nil {
		h.HandleError(c, err)
		return
	}

	usage, err := h.usage.GetUsage(ctx, accountID, feature)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, usage)
}

// RegisterManualPayment registers a bank transfer purchase for operator review
func (h *BillingHandler) RegisterManualPayment(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Account ID not found in token")
		return
	}

	var req dto.ManualPaymentRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	request, err := h.manualPayments.Register(
		c.Request.Context(),
		accountID,
		req.Code,
		billing.ManualPaymentKind(req.Kind),
		req.Reference,
	)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toManualPaymentResponse(request))
}

// ============================================================================
// Response converters
// ============================================================================

func toSubscriptionResponse(sub *billing.Subscription) dto.SubscriptionResponse {
	mode := billingapp.BillingModeProcessor
	if sub.IsManual() {
		mode = billingapp.BillingModeManual
	}
	return dto.SubscriptionResponse{
		ID:               sub.ID.String(),
		AccountID:        sub.AccountID.String(),
		Status:           string(sub.Status),
		PlanCode:         sub.PlanCode,
		BillingMode:      mode,
		CurrentPeriodEnd: sub.CurrentPeriodEnd,
		TrialEndsAt:      sub.TrialEndsAt,
		CanceledAt:       sub.CanceledAt,
		CreatedAt:        sub.CreatedAt,
	}
}

func toPaymentRecordResponse(record *billing.PaymentRecord) dto.PaymentRecordResponse {
	return dto.PaymentRecordResponse{
		ID:        record.ID.String(),
		InvoiceID: record.InvoiceID,
		Amount:    record.Amount.String(),
		Currency:  record.Currency,
		PeriodEnd: record.PeriodEnd,
		Status:    string(record.Status),
		CreatedAt: record.CreatedAt,
	}
}

func toManualPaymentResponse(request *billing.ManualPaymentRequest) dto.ManualPaymentResponse {
	return dto.ManualPaymentResponse{
		ID:         request.ID.String(),
		AccountID:  request.AccountID.String(),
		Code:       request.Code,
		Kind:       string(request.Kind),
		Role:       string(request.Role),
		Status:     string(request.Status),
		Reference:  request.Reference,
		ApprovedAt: request.ApprovedAt,
		CreatedAt:  request.CreatedAt,
	}
}
