// Package cart keeps quote carts for the public site behind a pluggable store.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidCartID   = errors.New("invalid cart id")
	ErrInvalidItem     = errors.New("item requires a product id and a positive quantity")
	ErrInvalidQuantity = errors.New("quantity cannot be negative")
	ErrItemNotFound    = errors.New("item not in cart")
)

type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Slug      string `json:"slug,omitempty"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
}

type Cart struct {
	ID        string    `json:"id"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalQuantity sums quantities across items.
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) index(productID string) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

// Store persists carts. Load returns an empty cart, not an error, when id is unknown.
type Store interface {
	Load(ctx context.Context, id string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func validID(id string) bool {
	id = strings.TrimSpace(id)
	return id != "" && len(id) <= 64 && !strings.ContainsAny(id, " /:")
}

func (s *Service) Get(ctx context.Context, id string) (*Cart, error) {
	if !validID(id) {
		return nil, ErrInvalidCartID
	}
	c, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return c, nil
}

func (s *Service) save(ctx context.Context, c *Cart) (*Cart, error) {
	c.UpdatedAt = s.now()
	if err := s.store.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to save cart: %w", err)
	}
	return c, nil
}

// Add puts item in the cart, adding to the quantity if the product is already there.
func (s *Service) Add(ctx context.Context, id string, item Item) (*Cart, error) {
	if item.ProductID == "" || item.Quantity <= 0 {
		return nil, ErrInvalidItem
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if i := c.index(item.ProductID); i >= 0 {
		c.Items[i].Quantity += item.Quantity
	} else {
		c.Items = append(c.Items, item)
	}
	return s.save(ctx, c)
}

// SetQuantity overwrites an item's quantity; zero removes it.
func (s *Service) SetQuantity(ctx context.Context, id, productID string, qty int) (*Cart, error) {
	if qty < 0 {
		return nil, ErrInvalidQuantity
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	i := c.index(productID)
	if i < 0 {
		return nil, ErrItemNotFound
	}
	if qty == 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	} else {
		c.Items[i].Quantity = qty
	}
	return s.save(ctx, c)
}

func (s *Service) Remove(ctx context.Context, id, productID string) (*Cart, error) {
	return s.SetQuantity(ctx, id, productID, 0)
}

func (s *Service) Clear(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrInvalidCartID
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
