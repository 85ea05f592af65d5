package dto

// NewsletterRequest subscribes an email.
type NewsletterRequest struct {
	Email string `json:"email"`
}

// NewsletterResponse returns the welcome discount.
type NewsletterResponse struct {
	Message   string `json:"message"`
	PromoCode string `json:"promo_code"`
}

// ContactRequest is the contact form payload.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	Database  string `json:"database"`
}
