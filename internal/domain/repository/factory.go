package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Products() ProductRepository
	Orders() OrderRepository
	Invoices() InvoiceRepository
	PromoCodes() PromoCodeRepository
	Reviews() ReviewRepository
	Cancellations() CancellationRepository
	Returns() ReturnRepository
	Visits() VisitRepository
	Newsletter() NewsletterRepository
}
