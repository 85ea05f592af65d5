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

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	mu     sync.Mutex
	ByID   map[int64]*model.User
	Next   int64
	Err    error
	Guests int
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{ByID: make(map[int64]*model.User), Next: 1}
}

// Add stores a user as-is and returns it with an assigned id.
func (s *UserRepositoryStub) Add(user model.User) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(user)
}

func (s *UserRepositoryStub) insertLocked(user model.User) *model.User {
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if s.Next == 0 {
		s.Next = 1
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	user.ID = s.Next
	user.CreatedAt = time.Now()
	s.Next++
	stored := user
	s.ByID[user.ID] = &stored
	cp := stored
	return &cp
}

func (s *UserRepositoryStub) findByEmailLocked(email string) *model.User {
	for _, u := range s.ByID {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// Create registers user unless the email is taken.
func (s *UserRepositoryStub) Create(ctx context.Context, user model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.findByEmailLocked(user.Email) != nil {
		return nil, domainErrors.ErrAlreadyExists
	}
	return s.insertLocked(user), nil
}

// CreateGuest returns the existing account for email or inserts a passwordless one.
func (s *UserRepositoryStub) CreateGuest(ctx context.Context, email, fullName string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if u := s.findByEmailLocked(email); u != nil {
		cp := *u
		return &cp, nil
	}
	s.Guests++
	return s.insertLocked(model.User{Email: email, FullName: fullName}), nil
}

// GetByEmail fetches user by email or returns not found.
func (s *UserRepositoryStub) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if u := s.findByEmailLocked(email); u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if u, ok := s.ByID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ClaimGuest sets a password on a guest account.
func (s *UserRepositoryStub) ClaimGuest(ctx context.Context, id int64, passwordHash, fullName string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.ByID[id]
	if !ok || u.PasswordHash != "" {
		return nil, domainErrors.ErrAlreadyExists
	}
	u.PasswordHash = passwordHash
	if fullName != "" {
		u.FullName = fullName
	}
	cp := *u
	return &cp, nil
}

// SetStripeCustomerID links or clears the processor customer.
func (s *UserRepositoryStub) SetStripeCustomerID(ctx context.Context, id int64, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	u.StripeCustomerID = customerID
	return nil
}

// UpdateProfile overwrites contact fields.
func (s *UserRepositoryStub) UpdateProfile(ctx context.Context, id int64, fullName, phone string, address model.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.ByID[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	u.FullName, u.Phone, u.Address = fullName, phone, address
	return nil
}

// UpdateProfileByStripeCustomer overwrites contact fields of the linked user.
func (s *UserRepositoryStub) UpdateProfileByStripeCustomer(ctx context.Context, customerID, fullName, phone string, address model.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.ByID {
		if customerID != "" && u.StripeCustomerID == customerID {
			u.FullName, u.Phone, u.Address = fullName, phone, address
			return nil
		}
	}
	return domainErrors.ErrNotFound
}

// Count returns the number of stored users.
func (s *UserRepositoryStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ByID)
}

// ProductRepositoryStub keeps the catalog in memory.
type ProductRepositoryStub struct {
	mu    sync.Mutex
	Items map[uuid.UUID]*model.Product
	Err   error
}

// NewProductRepositoryStub seeds the stub with products.
func NewProductRepositoryStub(products ...model.Product) *ProductRepositoryStub {
	s := &ProductRepositoryStub{Items: make(map[uuid.UUID]*model.Product)}
	for _, p := range products {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		cp := p
		s.Items[p.ID] = &cp
	}
	return s
}

func (s *ProductRepositoryStub) sortedLocked(keep func(model.Product) bool) []model.Product {
	var out []model.Product
	for _, p := range s.Items {
		if keep(*p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// List applies the filter to the in-memory catalog.
func (s *ProductRepositoryStub) List(ctx context.Context, f model.ProductFilter) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := s.sortedLocked(func(p model.Product) bool {
		return (f.AnimalType == "" || p.AnimalType == f.AnimalType) &&
			(f.Category == "" || p.Category == f.Category) &&
			(!f.OnSale || p.OnSale)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// ListInStock returns products with stock.
func (s *ProductRepositoryStub) ListInStock(ctx context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.sortedLocked(func(p model.Product) bool { return p.Stock > 0 }), nil
}

// Search matches the term case-insensitively against name, brand and category.
func (s *ProductRepositoryStub) Search(ctx context.Context, term string, limit int) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	term = strings.ToLower(term)
	out := s.sortedLocked(func(p model.Product) bool {
		for _, field := range []string{p.Name, p.Brand, p.Category} {
			if strings.Contains(strings.ToLower(field), term) {
				return true
			}
		}
		return false
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetByID fetches product by id.
func (s *ProductRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.Items[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByIDs returns the known products among ids.
func (s *ProductRepositoryStub) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make(map[uuid.UUID]model.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.Items[id]; ok {
			out[id] = *p
		}
	}
	return out, nil
}

// GetBySlug fetches product by slug.
func (s *ProductRepositoryStub) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return s.find(func(p *model.Product) bool { return p.Slug == slug })
}

// GetByName fetches product by exact name.
func (s *ProductRepositoryStub) GetByName(ctx context.Context, name string) (*model.Product, error) {
	return s.find(func(p *model.Product) bool { return p.Name == name })
}

func (s *ProductRepositoryStub) find(match func(*model.Product) bool) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.Items {
		if match(p) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// Create inserts a product unless the slug is taken.
func (s *ProductRepositoryStub) Create(ctx context.Context, p model.Product) (*model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.Items {
		if existing.Slug == p.Slug {
			return nil, domainErrors.ErrAlreadyExists
		}
	}
	p.ID = uuid.New()
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	cp := p
	s.Items[p.ID] = &cp
	return &p, nil
}

// Update replaces a product.
func (s *ProductRepositoryStub) Update(ctx context.Context, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Items[p.ID]; !ok {
		return domainErrors.ErrNotFound
	}
	for id, existing := range s.Items {
		if id != p.ID && existing.Slug == p.Slug {
			return domainErrors.ErrAlreadyExists
		}
	}
	p.UpdatedAt = time.Now()
	cp := p
	s.Items[p.ID] = &cp
	return nil
}

// SetSale toggles the sale flag.
func (s *ProductRepositoryStub) SetSale(ctx context.Context, id uuid.UUID, onSale bool, salePrice *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.Items[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	p.OnSale, p.SalePrice = onSale, salePrice
	return nil
}

// Delete removes a product.
func (s *ProductRepositoryStub) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Items[id]; !ok {
		return domainErrors.ErrNotFound
	}
	delete(s.Items, id)
	return nil
}

// Stock returns the current stock of a product.
func (s *ProductRepositoryStub) Stock(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.Items[id]; ok {
		return p.Stock
	}
	return -1
}

// SetStock overwrites the stock of a known product.
func (s *ProductRepositoryStub) SetStock(id uuid.UUID, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.Items[id]; ok {
		p.Stock = stock
	}
}

func (s *ProductRepositoryStub) adjustStock(items []model.OrderItem, sign int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sign < 0 {
		for _, item := range items {
			p, ok := s.Items[item.ProductID]
			if !ok || p.Stock < item.Quantity {
				return domainErrors.ErrInsufficientStock
			}
		}
	}
	for _, item := range items {
		if p, ok := s.Items[item.ProductID]; ok {
			p.Stock += sign * item.Quantity
		}
	}
	return nil
}

// OrderRepositoryStub is an in-memory order store that keeps the session id
// unique the same way the database constraint does.
type OrderRepositoryStub struct {
	mu        sync.Mutex
	Products  *ProductRepositoryStub
	Orders    map[uuid.UUID]*model.Order
	CreateErr error
	LinkErr   error
	// CreateHook runs before the order is stored, outside the lock.
	CreateHook  func(model.NewOrder)
	CreateCalls int
	FindErr     error

	Compensations   map[string]model.Compensation
	CompensationErr error
}

// NewOrderRepositoryStub links the order store to a catalog for stock bookkeeping.
func NewOrderRepositoryStub(products *ProductRepositoryStub) *OrderRepositoryStub {
	return &OrderRepositoryStub{
		Products:      products,
		Orders:        make(map[uuid.UUID]*model.Order),
		Compensations: make(map[string]model.Compensation),
	}
}

// Add stores an order directly.
func (s *OrderRepositoryStub) Add(o model.Order) model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	cp := o
	s.Orders[o.ID] = &cp
	return o
}

// FindBySessionID looks an order up by its checkout session.
func (s *OrderRepositoryStub) FindBySessionID(ctx context.Context, sessionID string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FindErr != nil {
		return nil, s.FindErr
	}
	for _, o := range s.Orders {
		if o.StripeSessionID == sessionID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

// CreateWithItems stores the order and reserves stock atomically.
func (s *OrderRepositoryStub) CreateWithItems(ctx context.Context, order model.NewOrder) (uuid.UUID, error) {
	if s.CreateHook != nil {
		s.CreateHook(order)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CreateCalls++
	if s.CreateErr != nil {
		return uuid.Nil, s.CreateErr
	}
	for _, o := range s.Orders {
		if order.StripeSessionID != "" && o.StripeSessionID == order.StripeSessionID {
			return o.ID, domainErrors.ErrAlreadyExists
		}
	}
	if s.Products != nil {
		if err := s.Products.adjustStock(order.Items, -1); err != nil {
			return uuid.Nil, err
		}
	}
	o := model.Order{
		ID:              uuid.New(),
		UserID:          order.UserID,
		Total:           order.Total,
		Status:          model.OrderStatusPaid,
		PromoCode:       order.PromoCode,
		DiscountAmount:  order.DiscountAmount,
		ShippingAddress: order.ShippingAddress,
		StripeSessionID: order.StripeSessionID,
		Items:           append([]model.OrderItem(nil), order.Items...),
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	s.Orders[o.ID] = &o
	return o.ID, nil
}

// AttachPaymentLinkage stores processor ids.
func (s *OrderRepositoryStub) AttachPaymentLinkage(ctx context.Context, id uuid.UUID, sessionID, paymentIntentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LinkErr != nil {
		return s.LinkErr
	}
	o, ok := s.Orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	o.StripeSessionID, o.PaymentIntentID = sessionID, paymentIntentID
	return nil
}

// RecordCompensation keeps the first record per session.
func (s *OrderRepositoryStub) RecordCompensation(ctx context.Context, c model.Compensation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CompensationErr != nil {
		return s.CompensationErr
	}
	if _, ok := s.Compensations[c.SessionID]; !ok {
		c.CreatedAt = time.Now()
		s.Compensations[c.SessionID] = c
	}
	return nil
}

// FindCompensation returns the stored record for sessionID.
func (s *OrderRepositoryStub) FindCompensation(ctx context.Context, sessionID string) (*model.Compensation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Compensations[sessionID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &c, nil
}

// GetByID fetches order by id.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.Orders[id]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, domainErrors.ErrNotFound
}

// ListByUser returns the user's orders, newest first.
func (s *OrderRepositoryStub) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return s.filter(func(o *model.Order) bool { return o.UserID == userID }, 0), nil
}

// List returns orders with the given status (all when empty).
func (s *OrderRepositoryStub) List(ctx context.Context, status model.OrderStatus, limit int) ([]model.Order, error) {
	return s.filter(func(o *model.Order) bool { return status == "" || o.Status == status }, limit), nil
}

func (s *OrderRepositoryStub) filter(keep func(*model.Order) bool, limit int) []model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Order
	for _, o := range s.Orders {
		if keep(o) {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// UpdateStatus changes the status and, when given, the tracking number.
func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, tracking string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.Orders[id]
	if !ok {
		return domainErrors.ErrNotFound
	}
	o.Status = status
	if tracking != "" {
		o.TrackingNumber = tracking
	}
	return nil
}

// CancelAndRestoreStock cancels the order and puts its items back.
func (s *OrderRepositoryStub) CancelAndRestoreStock(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	o, ok := s.Orders[id]
	if !ok {
		s.mu.Unlock()
		return domainErrors.ErrNotFound
	}
	if o.Status == model.OrderStatusCancelled {
		s.mu.Unlock()
		return domainErrors.ErrInvalidTransition
	}
	o.Status = model.OrderStatusCancelled
	items := append([]model.OrderItem(nil), o.Items...)
	s.mu.Unlock()
	if s.Products != nil {
		return s.Products.adjustStock(items, 1)
	}
	return nil
}

// HasPurchased reports whether a non-cancelled order of the user contains the product.
func (s *OrderRepositoryStub) HasPurchased(ctx context.Context, userID int64, productID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.Orders {
		if o.UserID != userID || o.Status == model.OrderStatusCancelled {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

// Count returns the number of stored orders.
func (s *OrderRepositoryStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Orders)
}
