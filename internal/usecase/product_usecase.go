package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/pkg/errors"
	"slem/pkg/logger"
)

const maxSuggestions = 10

type ProductUseCase struct {
	productRepo repository.ProductRepository
	ledger      repository.StockLedger
	userRepo    repository.UserRepository
	cache       ProductCache
	images      ImageStore
}

func NewProductUseCase(
	productRepo repository.ProductRepository,
	ledger repository.StockLedger,
	userRepo repository.UserRepository,
	cache ProductCache,
	images ImageStore,
) *ProductUseCase {
	return &ProductUseCase{
		productRepo: productRepo,
		ledger:      ledger,
		userRepo:    userRepo,
		cache:       cache,
		images:      images,
	}
}

type CreateProductInput struct {
	Title         string
	Description   string
	Price         float64
	DiscountPrice float64
	Stock         int
	SKU           string
	Category      string
	Subcategory   string
	Condition     string
	Tags          []string
	Location      entity.Location
}

// UpdateProductInput leaves nil fields untouched.
type UpdateProductInput struct {
	Title         *string
	Description   *string
	Price         *float64
	DiscountPrice *float64
	Stock         *int
	SKU           *string
	Category      *string
	Subcategory   *string
	Condition     *string
	Tags          []string
	Location      *entity.Location
	Status        *string
}

type ProductPage struct {
	Items []*entity.Product `json:"items"`
	Total int64             `json:"total"`
}

func (uc *ProductUseCase) CreateProduct(ctx context.Context, actorID string, input CreateProductInput) (*entity.Product, error) {
	actor, err := uc.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != entity.RoleAdmin && !(actor.Role == entity.RoleSeller && actor.IsVerifiedSeller) {
		return nil, errors.Forbidden("Only verified sellers can list products", nil)
	}

	product := &entity.Product{
		SellerID:      actorID,
		Title:         strings.TrimSpace(input.Title),
		Description:   input.Description,
		Price:         input.Price,
		DiscountPrice: input.DiscountPrice,
		Stock:         input.Stock,
		SKU:           input.SKU,
		Category:      input.Category,
		Subcategory:   input.Subcategory,
		Condition:     input.Condition,
		Images:        []string{},
		Tags:          input.Tags,
		Location:      input.Location,
		Status:        entity.ProductStatusActive,
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}

	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	uc.invalidate(ctx)
	return product, nil
}

// GetProduct hides unlisted products from everyone but the owner and admins.
func (uc *ProductUseCase) GetProduct(ctx context.Context, id, viewerID, viewerRole string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !product.IsListed() {
		if product.DeletedAt != nil || (viewerID != product.SellerID && viewerRole != entity.RoleAdmin) {
			return nil, errors.NotFound("Product", nil)
		}
		return product, nil
	}

	if viewerID != product.SellerID {
		if err := uc.productRepo.IncrementViews(ctx, id); err != nil {
			logger.Warn("Failed to increment views for product %s: %v", id, err)
		} else {
			product.Views++
		}
	}
	return product, nil
}

func (uc *ProductUseCase) BrowseProducts(ctx context.Context, filter entity.ProductFilter, page, limit int) (*ProductPage, error) {
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	key := browseCacheKey(filter, limit, offset)
	if data, ok, err := uc.cache.Get(ctx, key); err != nil {
		logger.Warn("Product cache read failed: %v", err)
	} else if ok {
		var cached ProductPage
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	products, total, err := uc.productRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*entity.Product{}
	}
	result := &ProductPage{Items: products, Total: total}

	if data, err := json.Marshal(result); err == nil {
		if err := uc.cache.Set(ctx, key, data); err != nil {
			logger.Warn("Product cache write failed: %v", err)
		}
	}
	return result, nil
}

func (uc *ProductUseCase) SuggestTitles(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.Validation("Search query is required")
	}
	return uc.productRepo.SuggestTitles(ctx, query, maxSuggestions)
}

func (uc *ProductUseCase) ListMyProducts(ctx context.Context, sellerID string, page, limit int) ([]*entity.Product, int64, error) {
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return uc.productRepo.ListBySeller(ctx, sellerID, limit, offset)
}

func (uc *ProductUseCase) UpdateProduct(ctx context.Context, actorID, actorRole, id string, input UpdateProductInput) (*entity.Product, error) {
	product, err := uc.ownedProduct(ctx, actorID, actorRole, id)
	if err != nil {
		return nil, err
	}

	if input.Status != nil && actorRole != entity.RoleAdmin {
		return nil, errors.Forbidden("Only admins can change product status", nil)
	}

	if input.Title != nil {
		product.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		product.Description = *input.Description
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.DiscountPrice != nil {
		product.DiscountPrice = *input.DiscountPrice
	}
	if input.SKU != nil {
		product.SKU = *input.SKU
	}
	if input.Category != nil {
		product.Category = *input.Category
	}
	if input.Subcategory != nil {
		product.Subcategory = *input.Subcategory
	}
	if input.Condition != nil {
		product.Condition = *input.Condition
	}
	if input.Tags != nil {
		product.Tags = input.Tags
	}
	if input.Location != nil {
		product.Location = *input.Location
	}
	if input.Status != nil {
		product.Status = *input.Status
	}

	// The stock override goes first so a refused stock edit leaves the listing untouched.
	if input.Stock != nil {
		if err := uc.ledger.SetStock(ctx, id, *input.Stock); err != nil {
			return nil, err
		}
		uc.invalidate(ctx)
	}

	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}

	uc.invalidate(ctx)
	return product, nil
}

func (uc *ProductUseCase) DeleteProduct(ctx context.Context, actorID, actorRole, id string) error {
	product, err := uc.ownedProduct(ctx, actorID, actorRole, id)
	if err != nil {
		return err
	}

	if err := uc.productRepo.SoftDelete(ctx, id); err != nil {
		return err
	}

	if uc.images != nil {
		for _, url := range product.Images {
			if err := uc.images.DeleteFile(ctx, url); err != nil {
				logger.Warn("Failed to delete image %s of product %s: %v", url, id, err)
			}
		}
	}

	uc.invalidate(ctx)
	return nil
}

func (uc *ProductUseCase) UploadImage(ctx context.Context, actorID, actorRole, id string, file io.Reader, contentType string) (*entity.Product, error) {
	if uc.images == nil {
		return nil, errors.BadRequest("Image upload is not configured", nil)
	}

	product, err := uc.ownedProduct(ctx, actorID, actorRole, id)
	if err != nil {
		return nil, err
	}
	if len(product.Images) >= entity.MaxProductImages {
		return nil, errors.Validation(fmt.Sprintf("A product can have at most %d images", entity.MaxProductImages))
	}

	url, err := uc.images.UploadImage(ctx, file, contentType, "products/"+id)
	if err != nil {
		return nil, errors.Internal("Failed to upload image", err)
	}

	product.Images = append(product.Images, url)
	if err := uc.productRepo.Update(ctx, product); err != nil {
		if delErr := uc.images.DeleteFile(ctx, url); delErr != nil {
			logger.Warn("Failed to clean up orphaned image %s: %v", url, delErr)
		}
		return nil, err
	}

	uc.invalidate(ctx)
	return product, nil
}

func (uc *ProductUseCase) ownedProduct(ctx context.Context, actorID, actorRole, id string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.DeletedAt != nil {
		return nil, errors.NotFound("Product", nil)
	}
	if product.SellerID != actorID && actorRole != entity.RoleAdmin {
		return nil, errors.Forbidden("You are not allowed to modify this product", nil)
	}
	return product, nil
}

func (uc *ProductUseCase) invalidate(ctx context.Context) {
	if err := uc.cache.Invalidate(ctx); err != nil {
		logger.Warn("Product cache invalidation failed: %v", err)
	}
}

func browseCacheKey(filter entity.ProductFilter, limit, offset int) string {
	return fmt.Sprintf("browse:%s|%s|%s|%s|%s|%g|%g|%s|%s|%d|%d",
		strings.ToLower(filter.Search), filter.Category, filter.Condition, filter.City, filter.Region,
		filter.PriceMin, filter.PriceMax, filter.SellerID, filter.Sort, limit, offset)
}
