package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/mahavirtraders/flowtrack/internal/domain/entity"
	"github.com/mahavirtraders/flowtrack/internal/domain/repository"
	"github.com/mahavirtraders/flowtrack/pkg/apperror"
)

// CartService edits the in-progress sale of a session. Nothing here touches
// the catalog or persists a sale.
type CartService struct {
	carts       repository.CartStore
	productRepo repository.ProductRepository
}

// NewCartService creates a new cart service
func NewCartService(carts repository.CartStore, productRepo repository.ProductRepository) *CartService {
	return &CartService{carts: carts, productRepo: productRepo}
}

var errLineNotFound = apperror.NewNotFoundError("Cart line")

// GetCart returns the session's cart.
func (s *CartService) GetCart(ctx context.Context, session string) (*entity.Cart, error) {
	cart, err := s.carts.Get(ctx, session)
	if err != nil {
		return nil, asAppError(err)
	}
	return cart, nil
}

// AddProduct adds one unit of a catalog product, snapshotting its name and
// prices on first add.
func (s *CartService) AddProduct(ctx context.Context, session string, productID uuid.UUID) (*entity.Cart, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, asAppError(err)
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	return s.update(ctx, session, func(c *entity.Cart) error {
		c.AddLine(product)
		return nil
	})
}

// SetQuantity sets a line's quantity. Anything below 1 becomes 1.
func (s *CartService) SetQuantity(ctx context.Context, session string, productID uuid.UUID, qty int) (*entity.Cart, error) {
	return s.update(ctx, session, func(c *entity.Cart) error {
		if !c.SetQuantity(productID, qty) {
			return errLineNotFound
		}
		return nil
	})
}

// AdjustQuantity moves a line's quantity by delta, never below 1.
func (s *CartService) AdjustQuantity(ctx context.Context, session string, productID uuid.UUID, delta int) (*entity.Cart, error) {
	return s.update(ctx, session, func(c *entity.Cart) error {
		if !c.AdjustQuantity(productID, delta) {
			return errLineNotFound
		}
		return nil
	})
}

// RemoveLine drops a product from the cart.
func (s *CartService) RemoveLine(ctx context.Context, session string, productID uuid.UUID) (*entity.Cart, error) {
	return s.update(ctx, session, func(c *entity.Cart) error {
		if !c.RemoveLine(productID) {
			return errLineNotFound
		}
		return nil
	})
}

// SetCharges replaces the cart's discount, labour and freight.
func (s *CartService) SetCharges(ctx context.Context, session string, charges entity.Charges) (*entity.Cart, error) {
	charges = entity.NewCharges(charges.Discount, charges.Labour, charges.Freight)
	return s.update(ctx, session, func(c *entity.Cart) error {
		c.Charges = charges
		return nil
	})
}

// Clear empties the cart and its charges.
func (s *CartService) Clear(ctx context.Context, session string) error {
	if err := s.carts.Delete(ctx, session); err != nil {
		return asAppError(err)
	}
	return nil
}

func (s *CartService) update(ctx context.Context, session string, fn func(c *entity.Cart) error) (*entity.Cart, error) {
	cart, err := s.carts.Update(ctx, session, fn)
	if err != nil {
		return nil, asAppError(err)
	}
	return cart, nil
}
