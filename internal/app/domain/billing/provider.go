package billing

import (
	"go.uber.org/zap"
)

// PaymentProvider is the external payment capability. The gate asks it once
// per gated request and later polls the intent status during confirmation.
type PaymentProvider interface {
	// CreatePaymentIntent returns the provider's intent id and a client
	// secret the frontend uses to collect payment.
	CreatePaymentIntent(amountCents int64, currency string, metadata map[string]string) (string, string, error)

	// GetPaymentStatus reports the current status of an intent. The gate
	// only releases a pending request when the status is "succeeded".
	GetPaymentStatus(paymentIntentID string) (string, error)
}

// OfflineProvider simulates the payment capability when no Stripe key is
// configured. Every intent succeeds immediately, matching local development
// where charging real cards is not an option.
type OfflineProvider struct {
	logger *zap.Logger
}

func NewOfflineProvider(logger *zap.Logger) *OfflineProvider {
	logger.Warn("Stripe API key not configured; payments run in offline mode and always succeed")
	return &OfflineProvider{logger: logger}
}

func (p *OfflineProvider) CreatePaymentIntent(amountCents int64, currency string, metadata map[string]string) (string, string, error) {
	id := "pi_offline_" + currency
	p.logger.Info("Offline payment intent created",
		zap.Int64("amount_cents", amountCents),
		zap.String("currency", currency),
	)
	return id, id + "_secret", nil
}

func (p *OfflineProvider) GetPaymentStatus(paymentIntentID string) (string, error) {
	return "succeeded", nil
}
