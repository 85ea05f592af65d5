package handlers

import (
	"strconv"

	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, Email: u.Email, FullName: u.FullName, Role: string(u.Role)}
}

func toProductResponse(p model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		SalePrice:   p.SalePrice,
		OnSale:      p.OnSale,
		Stock:       p.Stock,
		ImageURL:    p.ImageURL,
		Brand:       p.Brand,
		AnimalType:  p.AnimalType,
		Category:    p.Category,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductResponses(products []model.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:             order.ID.String(),
		UserID:         order.UserID,
		Status:         string(order.Status),
		Total:          order.Total,
		PromoCode:      order.PromoCode,
		DiscountAmount: order.DiscountAmount,
		TrackingNumber: order.TrackingNumber,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	if s := order.ShippingAddress; s != nil {
		resp.ShippingAddress = &dto.ShippingResponse{
			Name:       s.Name,
			Line1:      s.Address.Line1,
			Line2:      s.Address.Line2,
			City:       s.Address.City,
			PostalCode: s.Address.PostalCode,
			Country:    s.Address.Country,
		}
	}
	for _, it := range order.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ProductID:   it.ProductID.String(),
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}
	return resp
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	out := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	return out
}

func toCancellationResponse(r model.CancellationRequest) dto.CancellationResponse {
	return dto.CancellationResponse{
		ID:             r.ID.String(),
		OrderID:        r.OrderID.String(),
		UserID:         r.UserID,
		Reason:         r.Reason,
		Status:         string(r.Status),
		AdminNotes:     r.AdminNotes,
		StripeRefundID: r.StripeRefundID,
		CreatedAt:      r.CreatedAt,
	}
}

func toReturnResponse(r model.ReturnRequest) dto.ReturnResponse {
	return dto.ReturnResponse{
		ID:           r.ID.String(),
		OrderID:      r.OrderID.String(),
		UserID:       r.UserID,
		Reason:       r.Reason,
		Status:       string(r.Status),
		RefundAmount: r.RefundAmount,
		AdminNotes:   r.AdminNotes,
		CreatedAt:    r.CreatedAt,
	}
}

func toPromoResponse(p model.PromoCode) dto.PromoCodeResponse {
	return dto.PromoCodeResponse{
		ID:                 p.ID.String(),
		Code:               p.Code,
		DiscountPercentage: p.DiscountPercentage,
		Active:             p.Active,
		MaxUses:            p.MaxUses,
		CurrentUses:        p.CurrentUses,
		ExpiresAt:          p.ExpiresAt,
		CreatedAt:          p.CreatedAt,
	}
}

func toReviewResponse(r model.Review) dto.ReviewResponse {
	return dto.ReviewResponse{
		ID:               r.ID.String(),
		ProductID:        r.ProductID.String(),
		UserName:         r.UserName,
		Rating:           r.Rating,
		Comment:          r.Comment,
		VerifiedPurchase: r.VerifiedPurchase,
		HelpfulCount:     r.HelpfulCount,
		CreatedAt:        r.CreatedAt,
	}
}

func toReviewStats(s model.ReviewStats) dto.ReviewStatsResponse {
	dist := make(map[string]int, len(s.Distribution))
	for k, v := range s.Distribution {
		dist[strconv.Itoa(k)] = v
	}
	return dto.ReviewStatsResponse{Average: s.Average, Total: s.Total, Distribution: dist}
}

func toAddress(a dto.AddressPayload) model.Address {
	return model.Address{Line1: a.Line1, Line2: a.Line2, City: a.City, PostalCode: a.PostalCode, Country: a.Country}
}

func fromAddress(a model.Address) dto.AddressPayload {
	return dto.AddressPayload{Line1: a.Line1, Line2: a.Line2, City: a.City, PostalCode: a.PostalCode, Country: a.Country}
}
