package billing

import (
	"fmt"

	"github.com/stripe/stripe-go/v81"
)

// StripeConfig holds configuration for Stripe integration
type StripeConfig struct {
	// SecretKey is the Stripe secret API key (sk_test_xxx or sk_live_xxx)
	SecretKey string `json:"secret_key" mapstructure:"secret_key"`

	// PublishableKey is the Stripe publishable key for the frontend
	PublishableKey string `json:"publishable_key" mapstructure:"publishable_key"`

	// WebhookSecret is the secret for verifying webhook signatures
	WebhookSecret string `json:"webhook_secret" mapstructure:"webhook_secret"`

	// IsTestMode indicates if using Stripe test mode
	IsTestMode bool `json:"is_test_mode" mapstructure:"is_test_mode"`

	// DefaultCurrency is the currency subscriptions are billed in
	DefaultCurrency string `json:"default_currency" mapstructure:"default_currency"`

	// RetentionCouponID is the coupon attached by the retention flow
	RetentionCouponID string `json:"retention_coupon_id" mapstructure:"retention_coupon_id"`

	// PriceCodes maps Stripe Price IDs to domain codes (plans, bots, addons)
	PriceCodes map[string]string `json:"price_codes" mapstructure:"price_codes"`

	// CheckoutSuccessURL is where hosted checkout redirects on success
	CheckoutSuccessURL string `json:"checkout_success_url" mapstructure:"checkout_success_url"`

	// CheckoutCancelURL is where hosted checkout redirects on cancel
	CheckoutCancelURL string `json:"checkout_cancel_url" mapstructure:"checkout_cancel_url"`

	// PortalReturnURL is the return URL from the Stripe billing portal
	PortalReturnURL string `json:"portal_return_url" mapstructure:"portal_return_url"`
}

// DefaultStripeConfig returns a default configuration for development/testing
func DefaultStripeConfig() *StripeConfig {
	return &StripeConfig{
		IsTestMode:      true,
		DefaultCurrency: "mxn",
		PriceCodes:      map[string]string{},
	}
}

// Validate validates the Stripe configuration
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("stripe: secret key is required")
	}

	// Validate key format
	if c.IsTestMode {
		if len(c.SecretKey) > 7 && c.SecretKey[:7] != "sk_test" {
			return fmt.Errorf("stripe: test mode enabled but secret key is not a test key")
		}
	} else {
		if len(c.SecretKey) > 7 && c.SecretKey[:7] != "sk_live" {
			return fmt.Errorf("stripe: live mode enabled but secret key is not a live key")
		}
	}

	if c.DefaultCurrency == "" {
		return fmt.Errorf("stripe: default currency is required")
	}

	return nil
}

// InitStripeClient initializes the Stripe client with the configured API key
func (c *StripeConfig) InitStripeClient() {
	stripe.Key = c.SecretKey
}
