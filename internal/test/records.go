package test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// InvoiceRepositoryStub keeps invoices in insertion order.
type InvoiceRepositoryStub struct {
	mu        sync.Mutex
	Items     []model.Invoice
	CreateErr error
	// Reserved numbers make NumberExists report a collision without an invoice row.
	Reserved map[string]bool
}

// LastNumber returns the highest sequential number with prefix.
func (s *InvoiceRepositoryStub) LastNumber(ctx context.Context, prefix string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	last := ""
	for _, inv := range s.Items {
		if !strings.HasPrefix(inv.Number, prefix) || strings.HasPrefix(inv.Number, prefix+"T") {
			continue
		}
		if len(inv.Number) > len(last) || (len(inv.Number) == len(last) && inv.Number > last) {
			last = inv.Number
		}
	}
	return last, nil
}

// NumberExists reports stored or reserved numbers.
func (s *InvoiceRepositoryStub) NumberExists(ctx context.Context, number string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Reserved[number] {
		return true, nil
	}
	for _, inv := range s.Items {
		if inv.Number == number {
			return true, nil
		}
	}
	return false, nil
}

// Create stores an invoice unless the number is taken.
func (s *InvoiceRepositoryStub) Create(ctx context.Context, inv model.Invoice) (*model.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	for _, existing := range s.Items {
		if existing.Number == inv.Number {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	inv.ID = uuid.New()
	inv.CreatedAt = time.Now()
	s.Items = append(s.Items, inv)
	return &inv, nil
}

// GetByOrder returns the latest document of kind for the order.
func (s *InvoiceRepositoryStub) GetByOrder(ctx context.Context, orderID uuid.UUID, kind model.InvoiceType) (*model.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.Items) - 1; i >= 0; i-- {
		if s.Items[i].OrderID == orderID && s.Items[i].Type == kind {
			inv := s.Items[i]
			return &inv, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// All returns a snapshot of stored invoices.
func (s *InvoiceRepositoryStub) All() []model.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Invoice(nil), s.Items...)
}

// PromoCodeRepositoryStub stores promo codes by upper-case code.
type PromoCodeRepositoryStub struct {
	mu           sync.Mutex
	Codes        map[string]*model.PromoCode
	IncrementErr error
	Increments   []string
}

// NewPromoCodeRepositoryStub seeds the stub.
func NewPromoCodeRepositoryStub(codes ...model.PromoCode) *PromoCodeRepositoryStub {
	s := &PromoCodeRepositoryStub{Codes: make(map[string]*model.PromoCode)}
	for _, c := range codes {
		if c.ID == uuid.Nil {
			c.ID = uuid.New()
		}
		cp := c
		s.Codes[strings.ToUpper(c.Code)] = &cp
	}
	return s
}

// GetByCode fetches by code, case-insensitively.
func (s *PromoCodeRepositoryStub) GetByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.Codes[strings.ToUpper(code)]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

// List returns all codes ordered by code.
func (s *PromoCodeRepositoryStub) List(ctx context.Context) ([]model.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PromoCode, 0, len(s.Codes))
	for _, p := range s.Codes {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// Create stores a new code.
func (s *PromoCodeRepositoryStub) Create(ctx context.Context, p model.PromoCode) (*model.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Codes == nil {
		s.Codes = make(map[string]*model.PromoCode)
	}
	p.Code = strings.ToUpper(p.Code)
	if _, ok := s.Codes[p.Code]; ok {
		return nil, domainErrors.ErrAlreadyExists
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	cp := p
	s.Codes[p.Code] = &cp
	return &p, nil
}

// Delete removes a code by id.
func (s *PromoCodeRepositoryStub) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for code, p := range s.Codes {
		if p.ID == id {
			delete(s.Codes, code)
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// IncrementUses records the call and bumps the counter.
func (s *PromoCodeRepositoryStub) IncrementUses(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Increments = append(s.Increments, code)
	if s.IncrementErr != nil {
		return s.IncrementErr
	}
	p, ok := s.Codes[strings.ToUpper(code)]
	if !ok {
		return domainErrors.ErrNotFound
	}
	p.CurrentUses++
	return nil
}

// ReviewRepositoryStub stores reviews keyed by id.
type ReviewRepositoryStub struct {
	mu    sync.Mutex
	Items map[uuid.UUID]*model.Review
}

// NewReviewRepositoryStub constructs an empty stub.
func NewReviewRepositoryStub() *ReviewRepositoryStub {
	return &ReviewRepositoryStub{Items: make(map[uuid.UUID]*model.Review)}
}

// ListByProduct filters by product and optional rating; ordering follows sort.
func (s *ReviewRepositoryStub) ListByProduct(ctx context.Context, productID uuid.UUID, order model.ReviewSort, rating int) ([]model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Review
	for _, rv := range s.Items {
		if rv.ProductID == productID && (rating == 0 || rv.Rating == rating) {
			out = append(out, *rv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		switch order {
		case model.ReviewSortHighest:
			return out[i].Rating > out[j].Rating
		case model.ReviewSortLowest:
			return out[i].Rating < out[j].Rating
		case model.ReviewSortHelpful:
			return out[i].HelpfulCount > out[j].HelpfulCount
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Upsert keeps one review per user and product.
func (s *ReviewRepositoryStub) Upsert(ctx context.Context, rv model.Review) (*model.Review, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Items {
		if existing.ProductID == rv.ProductID && existing.UserID == rv.UserID {
			existing.Rating, existing.Comment, existing.VerifiedPurchase = rv.Rating, rv.Comment, rv.VerifiedPurchase
			existing.UpdatedAt = time.Now()
			cp := *existing
			return &cp, false, nil
		}
	}
	rv.ID = uuid.New()
	rv.CreatedAt, rv.UpdatedAt = time.Now(), time.Now()
	cp := rv
	s.Items[rv.ID] = &cp
	return &rv, true, nil
}

// GetByID fetches a review.
func (s *ReviewRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rv, ok := s.Items[id]; ok {
		cp := *rv
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

// Delete removes a review.
func (s *ReviewRepositoryStub) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Items[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.Items, id)
	return nil
}

// CancellationRepositoryStub enforces one pending request per order.
type CancellationRepositoryStub struct {
	mu    sync.Mutex
	Items map[uuid.UUID]*model.CancellationRequest
}

// NewCancellationRepositoryStub constructs an empty stub.
func NewCancellationRepositoryStub() *CancellationRepositoryStub {
	return &CancellationRepositoryStub{Items: make(map[uuid.UUID]*model.CancellationRequest)}
}

// Create stores a pending request.
func (s *CancellationRepositoryStub) Create(ctx context.Context, req model.CancellationRequest) (*model.CancellationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Items {
		if existing.OrderID == req.OrderID && existing.Status == model.CancellationPending {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	req.ID = uuid.New()
	req.Status = model.CancellationPending
	req.CreatedAt, req.UpdatedAt = time.Now(), time.Now()
	cp := req
	s.Items[req.ID] = &cp
	return &req, nil
}

// GetByID fetches a request.
func (s *CancellationRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.CancellationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req, ok := s.Items[id]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

// List returns requests with status (all when empty).
func (s *CancellationRepositoryStub) List(ctx context.Context, status model.CancellationStatus) ([]model.CancellationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.CancellationRequest
	for _, req := range s.Items {
		if status == "" || req.Status == status {
			out = append(out, *req)
		}
	}
	return out, nil
}

// Resolve updates a pending request.
func (s *CancellationRepositoryStub) Resolve(ctx context.Context, id uuid.UUID, status model.CancellationStatus, notes, refundID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.Items[id]
	if !ok || req.Status != model.CancellationPending {
		return domainErrors.ErrInvalidTransition
	}
	req.Status, req.AdminNotes, req.StripeRefundID = status, notes, refundID
	return nil
}

// ReturnRepositoryStub stores return requests.
type ReturnRepositoryStub struct {
	mu    sync.Mutex
	Items map[uuid.UUID]*model.ReturnRequest
}

// NewReturnRepositoryStub constructs an empty stub.
func NewReturnRepositoryStub() *ReturnRepositoryStub {
	return &ReturnRepositoryStub{Items: make(map[uuid.UUID]*model.ReturnRequest)}
}

// Create stores a requested return.
func (s *ReturnRepositoryStub) Create(ctx context.Context, req model.ReturnRequest) (*model.ReturnRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req.ID = uuid.New()
	req.Status = model.ReturnRequested
	req.CreatedAt, req.UpdatedAt = time.Now(), time.Now()
	cp := req
	s.Items[req.ID] = &cp
	return &req, nil
}

// GetByID fetches a return.
func (s *ReturnRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.ReturnRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req, ok := s.Items[id]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

// List returns returns with status (all when empty).
func (s *ReturnRepositoryStub) List(ctx context.Context, status model.ReturnStatus) ([]model.ReturnRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.ReturnRequest
	for _, req := range s.Items {
		if status == "" || req.Status == status {
			out = append(out, *req)
		}
	}
	return out, nil
}

// Update overwrites status, amount and notes.
func (s *ReturnRepositoryStub) Update(ctx context.Context, id uuid.UUID, status model.ReturnStatus, amount *float64, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.Items[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	req.Status, req.RefundAmount, req.AdminNotes = status, amount, notes
	return nil
}

// VisitRepositoryStub records visits.
type VisitRepositoryStub struct {
	mu     sync.Mutex
	Visits []model.Visit
	Err    error
}

// Record stores the visit or returns the configured error.
func (s *VisitRepositoryStub) Record(ctx context.Context, v model.Visit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	s.Visits = append(s.Visits, v)
	return nil
}

// All returns a snapshot of recorded visits.
func (s *VisitRepositoryStub) All() []model.Visit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Visit(nil), s.Visits...)
}

// NewsletterRepositoryStub stores subscribers by email.
type NewsletterRepositoryStub struct {
	mu          sync.Mutex
	Subscribers map[string]model.NewsletterSubscriber
}

// NewNewsletterRepositoryStub constructs an empty stub.
func NewNewsletterRepositoryStub() *NewsletterRepositoryStub {
	return &NewsletterRepositoryStub{Subscribers: make(map[string]model.NewsletterSubscriber)}
}

// Subscribe stores the subscriber unless the email is present.
func (s *NewsletterRepositoryStub) Subscribe(ctx context.Context, sub model.NewsletterSubscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Subscribers[sub.Email]; ok {
		return domainErrors.ErrAlreadyExists
	}
	sub.CreatedAt = time.Now()
	s.Subscribers[sub.Email] = sub
	return nil
}

// Exists reports whether email is subscribed.
func (s *NewsletterRepositoryStub) Exists(ctx context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.Subscribers[email]
	return ok, nil
}
