package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v81"
	portalsession "github.com/stripe/stripe-go/v81/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v81/checkout/session"
	"github.com/stripe/stripe-go/v81/customer"
	"github.com/stripe/stripe-go/v81/subscription"
	"go.uber.org/zap"
)

// StripeGateway implements the outbound payment processor port on the Stripe
// API.
type StripeGateway struct {
	config *StripeConfig
	logger *zap.Logger
}

// NewStripeGateway creates a new Stripe gateway
func NewStripeGateway(config *StripeConfig, logger *zap.Logger) (*StripeGateway, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.InitStripeClient()

	return &StripeGateway{
		config: config,
		logger: logger,
	}, nil
}

// CreateCustomer creates a Stripe customer tagged with the account ID.
func (g *StripeGateway) CreateCustomer(ctx context.Context, accountID uuid.UUID, email string) (string, error) {
	g.logger.Debug("Creating Stripe customer",
		zap.String("account_id", accountID.String()),
		zap.String("email", email))

	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Metadata: map[string]string{
			"account_id": accountID.String(),
		},
	}
	params.Context = ctx

	cust, err := customer.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe customer",
			zap.String("account_id", accountID.String()),
			zap.Error(err))
		return "", fmt.Errorf("stripe: failed to create customer: %w", err)
	}

	g.logger.Info("Created Stripe customer",
		zap.String("account_id", accountID.String()),
		zap.String("customer_id", cust.ID))

	return cust.ID, nil
}

// CancelSubscription cancels a subscription immediately, without a closing
// invoice or proration.
func (g *StripeGateway) CancelSubscription(ctx context.Context, processorSubID string) error {
	g.logger.Debug("Canceling Stripe subscription",
		zap.String("subscription_id", processorSubID))

	params := &stripe.SubscriptionCancelParams{
		InvoiceNow: stripe.Bool(false),
		Prorate:    stripe.Bool(false),
	}
	params.Context = ctx

	if _, err := subscription.Cancel(processorSubID, params); err != nil {
		g.logger.Error("Failed to cancel Stripe subscription",
			zap.String("subscription_id", processorSubID),
			zap.Error(err))
		return fmt.Errorf("stripe: failed to cancel subscription: %w", err)
	}

	g.logger.Info("Canceled Stripe subscription",
		zap.String("subscription_id", processorSubID))
	return nil
}

// UpdateSubscriptionPrice moves the subscription's plan item to a new price,
// prorating the difference onto the next invoice.
func (g *StripeGateway) UpdateSubscriptionPrice(ctx context.Context, processorSubID, newPriceID string) error {
	getParams := &stripe.SubscriptionParams{}
	getParams.Context = ctx

	current, err := subscription.Get(processorSubID, getParams)
	if err != nil {
		return fmt.Errorf("stripe: failed to retrieve subscription: %w", err)
	}
	if current.Items == nil || len(current.Items.Data) == 0 {
		return fmt.Errorf("stripe: subscription %s has no items", processorSubID)
	}

	params := &stripe.SubscriptionParams{
		Items: []*stripe.SubscriptionItemsParams{
			{
				ID:    stripe.String(current.Items.Data[0].ID),
				Price: stripe.String(newPriceID),
			},
		},
		ProrationBehavior: stripe.String("create_prorations"),
	}
	params.Context = ctx

	if _, err := subscription.Update(processorSubID, params); err != nil {
		g.logger.Error("Failed to update Stripe subscription price",
			zap.String("subscription_id", processorSubID),
			zap.String("price_id", newPriceID),
			zap.Error(err))
		return fmt.Errorf("stripe: failed to update subscription price: %w", err)
	}

	g.logger.Info("Updated Stripe subscription price",
		zap.String("subscription_id", processorSubID),
		zap.String("price_id", newPriceID))
	return nil
}

// ApplyCoupon attaches a coupon to a subscription.
func (g *StripeGateway) ApplyCoupon(ctx context.Context, processorSubID, couponID string) error {
	params := &stripe.SubscriptionParams{
		Coupon: stripe.String(couponID),
	}
	params.Context = ctx

	if _, err := subscription.Update(processorSubID, params); err != nil {
		g.logger.Error("Failed to apply Stripe coupon",
			zap.String("subscription_id", processorSubID),
			zap.String("coupon_id", couponID),
			zap.Error(err))
		return fmt.Errorf("stripe: failed to apply coupon: %w", err)
	}

	g.logger.Info("Applied Stripe coupon",
		zap.String("subscription_id", processorSubID),
		zap.String("coupon_id", couponID))
	return nil
}

// CreateCheckoutSession starts a hosted subscription checkout and returns the
// redirect URL.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, customerID, priceID, successURL, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	params.Context = ctx

	sess, err := checkoutsession.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe checkout session",
			zap.String("customer_id", customerID),
			zap.String("price_id", priceID),
			zap.Error(err))
		return "", fmt.Errorf("stripe: failed to create checkout session: %w", err)
	}

	return sess.URL, nil
}

// CreatePortalSession opens the hosted billing portal for a customer.
func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx

	sess, err := portalsession.New(params)
	if err != nil {
		g.logger.Error("Failed to create Stripe portal session",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return "", fmt.Errorf("stripe: failed to create portal session: %w", err)
	}

	return sess.URL, nil
}
