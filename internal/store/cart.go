package store

import (
	"context"
	"encoding/hex"
	"slices"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/persist"
)

// CartNamespace is the persisted key namespace of the cart state.
const CartNamespace = "cart-storage"

// CartItem is a product snapshot plus the chosen quantity and variants.
type CartItem struct {
	domain.Product
	Quantity         int               `json:"quantity"`
	SelectedVariants map[string]string `json:"selectedVariants"`
}

// Key is the line identity: product id plus serialized variant selection.
func (it CartItem) Key() string { return LineKey(it.ID, it.SelectedVariants) }

func (it CartItem) Subtotal() float64 { return it.Price * float64(it.Quantity) }

// SerializeVariants renders a selection canonically (keys sorted), so two
// selections with the same pairs always serialize identically.
func SerializeVariants(sel map[string]string) string {
	keys := make([]string, 0, len(sel))
	for k := range sel {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(sel[k])
	}
	return b.String()
}

// LineKey hashes (productID, SerializeVariants(sel)) into a stable line id.
func LineKey(productID string, sel map[string]string) string {
	h, _ := blake2b.New(16, nil)
	h.Write([]byte(productID))
	h.Write([]byte{0})
	h.Write([]byte(SerializeVariants(sel)))
	return hex.EncodeToString(h.Sum(nil))
}

// CartState is persisted as one blob.
type CartState struct {
	Cart    []CartItem             `json:"cart"`
	IsOpen  bool                   `json:"isOpen"`
	Company *domain.CompanyDetails `json:"company,omitempty"`
}

// CartStore holds a browser session's cart.
type CartStore struct {
	mu        sync.Mutex
	state     CartState
	persisted *persist.Store[CartState]
	notify    Notifier
}

// NewCartStore hydrates from p unless p skips hydration. A nil notifier
// discards notices.
func NewCartStore(ctx context.Context, p *persist.Store[CartState], n Notifier) *CartStore {
	if n == nil {
		n = discard{}
	}
	s := &CartStore{persisted: p, notify: n}
	if !p.SkipHydration() {
		s.Rehydrate(ctx)
	}
	return s
}

func (s *CartStore) Rehydrate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok, err := s.persisted.Load(ctx)
	if err != nil {
		applog.WarnCtx(ctx, "cart.rehydrate.fail", err, map[string]any{"key": s.persisted.Key()})
	}
	if err != nil || !ok {
		st = CartState{}
	}
	s.state = st
}

func (s *CartStore) save(ctx context.Context) {
	if err := s.persisted.Save(ctx, s.state); err != nil {
		applog.ErrorCtx(ctx, "cart.persist.fail", err, map[string]any{"key": s.persisted.Key()})
	}
}

// AddToCart bumps the quantity of the matching line or appends a new one.
func (s *CartStore) AddToCart(ctx context.Context, p domain.Product, selected map[string]string) CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := LineKey(p.ID, selected)
	cart := slices.Clone(s.state.Cart)
	var line CartItem
	if i := slices.IndexFunc(cart, func(it CartItem) bool { return it.Key() == key }); i >= 0 {
		cart[i].Quantity++
		line = cart[i]
	} else {
		sel := make(map[string]string, len(selected))
		for k, v := range selected {
			sel[k] = v
		}
		line = CartItem{Product: p, Quantity: 1, SelectedVariants: sel}
		cart = append(cart, line)
	}
	s.state.Cart = cart
	s.save(ctx)

	s.notify.Notify(Notice{Kind: "cart.added", Message: p.Name + " added to cart", ProductID: p.ID})
	return line
}

// RemoveFromCart removes every line of productID, whatever its variants.
func (s *CartStore) RemoveFromCart(ctx context.Context, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Cart = slices.DeleteFunc(slices.Clone(s.state.Cart), func(it CartItem) bool { return it.ID == productID })
	s.save(ctx)
}

// UpdateQuantity sets the quantity of productID's lines; quantity < 1 is ignored.
func (s *CartStore) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity < 1 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := slices.Clone(s.state.Cart)
	for i := range cart {
		if cart[i].ID == productID {
			cart[i].Quantity = quantity
		}
	}
	s.state.Cart = cart
	s.save(ctx)
}

// Total is the sum of price × quantity over all lines.
func (s *CartStore) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, it := range s.state.Cart {
		total += it.Subtotal()
	}
	return total
}

// Count is the number of units in the cart.
func (s *CartStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.state.Cart {
		n += it.Quantity
	}
	return n
}

func (s *CartStore) Items() []CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Cart)
}

func (s *CartStore) SetOpen(ctx context.Context, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsOpen = open
	s.save(ctx)
}

func (s *CartStore) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsOpen
}

// SetCompany records the tenant the cart is being built for.
func (s *CartStore) SetCompany(ctx context.Context, c *domain.CompanyDetails) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c == nil {
		s.state.Company = nil
	} else {
		cp := *c
		s.state.Company = &cp
	}
	s.save(ctx)
}

func (s *CartStore) Company() *domain.CompanyDetails {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Company == nil {
		return nil
	}
	cp := *s.state.Company
	return &cp
}

func (s *CartStore) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Cart = nil
	s.save(ctx)
}
