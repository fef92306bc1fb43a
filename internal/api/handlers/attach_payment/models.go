package attach_payment

// AttachPaymentRequest HTTP request model
type AttachPaymentRequest struct {
	PaymentRef    string  `json:"paymentRef"`
	PaymentMethod *string `json:"paymentMethod,omitempty"`
}
