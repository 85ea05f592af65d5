package payments

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Metadata keys written on sessions, products and customers.
const (
	metaUserID          = "user_id"
	metaPromoCode       = "promo_code"
	metaDiscountPercent = "discount_percent"
	metaProductID       = "product_id"
)

func mapSession(s *stripe.CheckoutSession) *model.CheckoutSession {
	out := &model.CheckoutSession{
		ID:            s.ID,
		PaymentStatus: model.PaymentStatus(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Metadata:      mapMetadata(s.Metadata),
	}
	if s.Created > 0 {
		out.CreatedAt = time.Unix(s.Created, 0).UTC()
	}
	if pi := s.PaymentIntent; pi != nil {
		out.PaymentIntentID = pi.ID
		out.Refunded = pi.LatestCharge != nil && pi.LatestCharge.Refunded
	}
	if s.Customer != nil {
		out.CustomerID = s.Customer.ID
	}
	if d := s.CustomerDetails; d != nil {
		out.Customer = model.CustomerDetails{
			Email: strings.TrimSpace(d.Email),
			Name:  strings.TrimSpace(d.Name),
			Phone: strings.TrimSpace(d.Phone),
		}
	}
	if ci := s.CollectedInformation; ci != nil && ci.ShippingDetails != nil {
		out.Shipping = &model.ShippingDetails{
			Name:    ci.ShippingDetails.Name,
			Address: mapAddress(ci.ShippingDetails.Address),
		}
	}
	return out
}

// mapMetadata tolerates missing or malformed values: a bad discount reads as 0.
func mapMetadata(md map[string]string) model.SessionMetadata {
	out := model.SessionMetadata{
		UserID:    strings.TrimSpace(md[metaUserID]),
		PromoCode: strings.TrimSpace(md[metaPromoCode]),
	}
	if raw := strings.TrimSpace(md[metaDiscountPercent]); raw != "" {
		if p, err := strconv.Atoi(raw); err == nil && p > 0 {
			out.DiscountPercent = p
		}
	}
	return out
}

func encodeMetadata(md model.SessionMetadata) map[string]string {
	out := map[string]string{
		metaUserID:          md.UserID,
		metaPromoCode:       md.PromoCode,
		metaDiscountPercent: strconv.Itoa(md.DiscountPercent),
	}
	return out
}

func mapLineItem(li *stripe.LineItem) model.LineItem {
	out := model.LineItem{
		Description: li.Description,
		Quantity:    li.Quantity,
		AmountTotal: li.AmountTotal,
	}
	if li.Price != nil && li.Price.Product != nil {
		out.ProductID = strings.TrimSpace(li.Price.Product.Metadata[metaProductID])
		if out.Description == "" {
			out.Description = li.Price.Product.Name
		}
	}
	return out
}

func mapAddress(a *stripe.Address) model.Address {
	if a == nil {
		return model.Address{}
	}
	return model.Address{
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func mapCustomer(c *stripe.Customer) *model.CustomerProfile {
	out := &model.CustomerProfile{
		Email:   c.Email,
		Name:    c.Name,
		Phone:   c.Phone,
		Address: mapAddress(c.Address),
	}
	if raw := c.Metadata[metaUserID]; raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			out.UserID = id
		}
	}
	return out
}

func customerParams(p model.CustomerProfile) *stripe.CustomerParams {
	params := &stripe.CustomerParams{}
	if p.Email != "" {
		params.Email = stripe.String(p.Email)
	}
	if p.Name != "" {
		params.Name = stripe.String(p.Name)
	}
	if p.Phone != "" {
		params.Phone = stripe.String(p.Phone)
	}
	if !p.Address.IsZero() {
		params.Address = &stripe.AddressParams{
			Line1:      stripe.String(p.Address.Line1),
			Line2:      stripe.String(p.Address.Line2),
			City:       stripe.String(p.Address.City),
			PostalCode: stripe.String(p.Address.PostalCode),
			Country:    stripe.String(p.Address.Country),
		}
	}
	if p.UserID > 0 {
		params.AddMetadata(metaUserID, strconv.FormatInt(p.UserID, 10))
	}
	return params
}

// sessionParams builds a hosted checkout. A linked customer takes precedence
// over the plain email.
func sessionParams(req model.CheckoutRequest) *stripe.CheckoutSessionParams {
	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
		Metadata:           encodeMetadata(req.Metadata),
		ShippingAddressCollection: &stripe.CheckoutSessionShippingAddressCollectionParams{
			AllowedCountries: stripe.StringSlice([]string{"ES"}),
		},
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
	}

	for _, line := range req.Lines {
		product := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(line.Name),
		}
		if line.ProductID != uuid.Nil {
			product.Metadata = map[string]string{metaProductID: line.ProductID.String()}
		}
		if line.ImageURL != "" {
			product.Images = stripe.StringSlice([]string{line.ImageURL})
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:    stripe.String(model.Currency),
				UnitAmount:  stripe.Int64(line.UnitAmount),
				ProductData: product,
			},
			Quantity: stripe.Int64(line.Quantity),
		})
	}

	switch {
	case req.CustomerID != "":
		params.Customer = stripe.String(req.CustomerID)
		params.CustomerUpdate = &stripe.CheckoutSessionCustomerUpdateParams{
			Address:  stripe.String("auto"),
			Name:     stripe.String("auto"),
			Shipping: stripe.String("auto"),
		}
	case req.CustomerEmail != "":
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}

	return params
}
