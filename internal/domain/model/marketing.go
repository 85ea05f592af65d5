package model

import "time"

// Visit is an anonymised page view.
type Visit struct {
	Path      string
	IPAddress string
	UserAgent string
	Referrer  string
	CreatedAt time.Time
}

// NewsletterSubscriber is an email registered for the newsletter with its welcome code.
type NewsletterSubscriber struct {
	Email     string
	PromoCode string
	CreatedAt time.Time
}

// ContactMessage is a message sent through the contact form.
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}
