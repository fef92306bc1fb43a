package payment_webhook

// WebhookEvent событие платежного провайдера
type WebhookEvent struct {
	Type       string `json:"type"` // payment.succeeded | payment.failed | refund.issued
	PaymentRef string `json:"paymentRef"`
}
