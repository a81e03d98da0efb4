package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/store"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidVariant  = errors.New("invalid variant selection")
)

type CartService struct {
	Sessions *SessionService
}

func NewCartService(sessions *SessionService) *CartService {
	return &CartService{Sessions: sessions}
}

// Add puts productID with the selected variants in the session's cart. The
// product must be in the visitor's catalog and every selection must be one of
// its variant options.
func (s *CartService) Add(ctx context.Context, sc Scope, productID string, selected map[string]string) (store.CartItem, error) {
	ctx = sc.tag(ctx)
	v := s.Sessions.Visitor(ctx, sc)
	p, ok := v.Catalog.Product(productID)
	if !ok {
		return store.CartItem{}, ErrProductNotFound
	}
	for name, option := range selected {
		if !p.HasVariant(name, option) {
			return store.CartItem{}, fmt.Errorf("%w: %s=%s", ErrInvalidVariant, name, option)
		}
	}
	return v.Cart.AddToCart(ctx, p, selected), nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, sc Scope, productID string, qty int) {
	ctx = sc.tag(ctx)
	s.Sessions.Visitor(ctx, sc).Cart.UpdateQuantity(ctx, productID, qty)
}

func (s *CartService) Remove(ctx context.Context, sc Scope, productID string) {
	ctx = sc.tag(ctx)
	s.Sessions.Visitor(ctx, sc).Cart.RemoveFromCart(ctx, productID)
}

func (s *CartService) SetOpen(ctx context.Context, sc Scope, open bool) {
	ctx = sc.tag(ctx)
	s.Sessions.Visitor(ctx, sc).Cart.SetOpen(ctx, open)
}

type CartView struct {
	Items  []store.CartItem `json:"items"`
	Total  float64          `json:"total"`
	Count  int              `json:"count"`
	IsOpen bool             `json:"isOpen"`
}

func (s *CartService) View(ctx context.Context, sc Scope) CartView {
	c := s.Sessions.Visitor(ctx, sc).Cart
	items := c.Items()
	if items == nil {
		items = []store.CartItem{}
	}
	return CartView{Items: items, Total: c.Total(), Count: c.Count(), IsOpen: c.IsOpen()}
}
