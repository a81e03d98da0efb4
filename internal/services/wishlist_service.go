package services

import (
	"context"

	"storefront/internal/domain"
)

type WishlistService struct {
	Sessions *SessionService
}

func NewWishlistService(sessions *SessionService) *WishlistService {
	return &WishlistService{Sessions: sessions}
}

// Toggle saves or unsaves productID and reports whether it is now saved.
func (s *WishlistService) Toggle(ctx context.Context, sc Scope, productID string) (bool, error) {
	ctx = sc.tag(ctx)
	v := s.Sessions.Visitor(ctx, sc)
	if v.Wishlist.Contains(productID) {
		v.Wishlist.Remove(ctx, productID)
		return false, nil
	}
	p, ok := v.Catalog.Product(productID)
	if !ok {
		return false, ErrProductNotFound
	}
	v.Wishlist.Add(ctx, p)
	return true, nil
}

func (s *WishlistService) Remove(ctx context.Context, sc Scope, productID string) {
	ctx = sc.tag(ctx)
	s.Sessions.Visitor(ctx, sc).Wishlist.Remove(ctx, productID)
}

func (s *WishlistService) SetOpen(ctx context.Context, sc Scope, open bool) {
	ctx = sc.tag(ctx)
	s.Sessions.Visitor(ctx, sc).Wishlist.SetOpen(ctx, open)
}

type WishlistView struct {
	Items  []domain.Product `json:"items"`
	IsOpen bool             `json:"isOpen"`
}

func (s *WishlistService) View(ctx context.Context, sc Scope) WishlistView {
	w := s.Sessions.Visitor(ctx, sc).Wishlist
	items := w.Items()
	if items == nil {
		items = []domain.Product{}
	}
	return WishlistView{Items: items, IsOpen: w.IsOpen()}
}
