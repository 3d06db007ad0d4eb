package usecase

import (
	"context"
	"net/http"
	"time"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/pkg/errors"
	"slem/pkg/logger"
)

type CartUseCase struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartUseCase(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartUseCase {
	return &CartUseCase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// CartLine pairs a stored line with the live product, when it still exists.
type CartLine struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"addedAt"`
	Product   *entity.Product `json:"product,omitempty"`
	Available bool            `json:"available"`
	LineTotal float64         `json:"lineTotal"`
}

type CartView struct {
	BuyerID   string     `json:"buyerId"`
	Items     []CartLine `json:"items"`
	Subtotal  float64    `json:"subtotal"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (uc *CartUseCase) GetCart(ctx context.Context, buyerID string) (*CartView, error) {
	cart, err := uc.cartRepo.Get(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, cart), nil
}

func (uc *CartUseCase) AddItem(ctx context.Context, buyerID, productID string, quantity int) (*CartView, error) {
	product, err := uc.purchasable(ctx, buyerID, productID, quantity)
	if err != nil {
		return nil, err
	}

	cart, err := uc.cartRepo.Mutate(ctx, buyerID, func(cart *entity.Cart) error {
		if cart.IndexOf(productID) >= 0 {
			return errors.Conflict("Product already in cart")
		}
		cart.Items = append(cart.Items, entity.CartItem{
			ProductID: product.ID,
			Quantity:  quantity,
			AddedAt:   time.Now(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, cart), nil
}

func (uc *CartUseCase) UpdateItem(ctx context.Context, buyerID, productID string, quantity int) (*CartView, error) {
	if _, err := uc.purchasable(ctx, buyerID, productID, quantity); err != nil {
		return nil, err
	}

	cart, err := uc.cartRepo.Mutate(ctx, buyerID, func(cart *entity.Cart) error {
		idx := cart.IndexOf(productID)
		if idx < 0 {
			return errors.New(errors.CodeNotFound, "Item not found in cart", http.StatusNotFound, nil)
		}
		cart.Items[idx].Quantity = quantity
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, cart), nil
}

func (uc *CartUseCase) RemoveItem(ctx context.Context, buyerID, productID string) (*CartView, error) {
	cart, err := uc.cartRepo.Mutate(ctx, buyerID, func(cart *entity.Cart) error {
		idx := cart.IndexOf(productID)
		if idx < 0 {
			return errors.New(errors.CodeNotFound, "Product not in cart", http.StatusNotFound, nil)
		}
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, cart), nil
}

func (uc *CartUseCase) Clear(ctx context.Context, buyerID string) (*CartView, error) {
	cart, err := uc.cartRepo.Mutate(ctx, buyerID, func(cart *entity.Cart) error {
		cart.Items = []entity.CartItem{}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, cart), nil
}

// purchasable checks the product against the requested quantity. Stock is
// re-checked at placement, so this is advisory.
func (uc *CartUseCase) purchasable(ctx context.Context, buyerID, productID string, quantity int) (*entity.Product, error) {
	if quantity < 1 {
		return nil, errors.Validation("Quantity must be at least 1")
	}

	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsListed() {
		return nil, errors.NotFound("Product", nil)
	}
	if product.SellerID == buyerID {
		return nil, errors.BadRequest("You cannot add your own product to the cart", nil)
	}
	if product.Stock < quantity {
		return nil, errors.InsufficientStock(productID, product.Stock)
	}
	return product, nil
}

func (uc *CartUseCase) view(ctx context.Context, cart *entity.Cart) *CartView {
	v := &CartView{
		BuyerID:   cart.BuyerID,
		Items:     make([]CartLine, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt,
	}

	for _, item := range cart.Items {
		line := CartLine{ProductID: item.ProductID, Quantity: item.Quantity, AddedAt: item.AddedAt}

		product, err := uc.productRepo.GetByID(ctx, item.ProductID)
		switch {
		case err == nil:
			line.Product = product
			line.Available = product.IsListed() && product.Stock >= item.Quantity
			line.LineTotal = product.Price * float64(item.Quantity)
			if line.Available {
				v.Subtotal += line.LineTotal
			}
		case !errors.Is(err, errors.CodeNotFound):
			logger.Warn("Failed to load product %s for cart %s: %v", item.ProductID, cart.BuyerID, err)
		}

		v.Items = append(v.Items, line)
	}
	return v
}
