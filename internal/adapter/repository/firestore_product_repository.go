package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/pkg/errors"
)

type firestoreProductRepository struct {
	client *firestore.Client
}

func NewFirestoreProductRepository(client *firestore.Client) repository.ProductRepository {
	return &firestoreProductRepository{
		client: client,
	}
}

func (r *firestoreProductRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == "" {
		doc := r.client.Collection("products").NewDoc()
		product.ID = doc.ID
	}

	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.client.Collection("products").Doc(product.ID).Set(ctx, product)
	if err != nil {
		return errors.Internal("Failed to create product", err)
	}

	return nil
}

func (r *firestoreProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	doc, err := r.client.Collection("products").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Product", err)
		}
		return nil, errors.Internal("Failed to get product", err)
	}

	var product entity.Product
	if err := doc.DataTo(&product); err != nil {
		return nil, errors.Internal("Failed to parse product data", err)
	}

	return &product, nil
}

// Update writes the editable fields only. Stock, views and sales have their own writers.
func (r *firestoreProductRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now()

	_, err := r.client.Collection("products").Doc(product.ID).Update(ctx, []firestore.Update{
		{Path: "title", Value: product.Title},
		{Path: "description", Value: product.Description},
		{Path: "price", Value: product.Price},
		{Path: "discountPrice", Value: product.DiscountPrice},
		{Path: "sku", Value: product.SKU},
		{Path: "category", Value: product.Category},
		{Path: "subcategory", Value: product.Subcategory},
		{Path: "condition", Value: product.Condition},
		{Path: "images", Value: product.Images},
		{Path: "tags", Value: product.Tags},
		{Path: "location", Value: product.Location},
		{Path: "status", Value: product.Status},
		{Path: "updatedAt", Value: product.UpdatedAt},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Product", err)
		}
		return errors.Internal("Failed to update product", err)
	}

	return nil
}

func (r *firestoreProductRepository) SoftDelete(ctx context.Context, id string) error {
	now := time.Now()
	_, err := r.client.Collection("products").Doc(id).Update(ctx, []firestore.Update{
		{Path: "deletedAt", Value: now},
		{Path: "status", Value: entity.ProductStatusInactive},
		{Path: "updatedAt", Value: now},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Product", err)
		}
		return errors.Internal("Failed to soft delete product", err)
	}

	return nil
}

func (r *firestoreProductRepository) IncrementViews(ctx context.Context, id string) error {
	_, err := r.client.Collection("products").Doc(id).Update(ctx, []firestore.Update{
		{Path: "views", Value: firestore.Increment(1)},
	})
	if err != nil {
		return errors.Internal("Failed to increment product views", err)
	}

	return nil
}

func (r *firestoreProductRepository) IncrementSales(ctx context.Context, id string, quantity int) error {
	_, err := r.client.Collection("products").Doc(id).Update(ctx, []firestore.Update{
		{Path: "sales", Value: firestore.Increment(quantity)},
	})
	if err != nil {
		return errors.Internal("Failed to increment product sales", err)
	}

	return nil
}

// List narrows on the equality filters Firestore can serve and finishes
// substring, range and sort handling in memory.
func (r *firestoreProductRepository) List(ctx context.Context, filter entity.ProductFilter, limit, offset int) ([]*entity.Product, int64, error) {
	query := r.client.Collection("products").Where("status", "==", entity.ProductStatusActive)
	if filter.SellerID != "" {
		query = query.Where("sellerId", "==", filter.SellerID)
	}

	docs, err := r.collect(query.Documents(ctx))
	if err != nil {
		return nil, 0, err
	}

	var matched []*entity.Product
	for _, p := range docs {
		if matchesProductFilter(p, filter) {
			matched = append(matched, p)
		}
	}
	sortProducts(matched, filter.Sort)

	return paginate(matched, limit, offset), int64(len(matched)), nil
}

func (r *firestoreProductRepository) ListBySeller(ctx context.Context, sellerID string, limit, offset int) ([]*entity.Product, int64, error) {
	docs, err := r.collect(r.client.Collection("products").Where("sellerId", "==", sellerID).Documents(ctx))
	if err != nil {
		return nil, 0, err
	}

	var products []*entity.Product
	for _, p := range docs {
		if p.DeletedAt == nil {
			products = append(products, p)
		}
	}
	sortProducts(products, "newest")

	return paginate(products, limit, offset), int64(len(products)), nil
}

func (r *firestoreProductRepository) SuggestTitles(ctx context.Context, query string, limit int) ([]string, error) {
	docs, err := r.collect(r.client.Collection("products").Where("status", "==", entity.ProductStatusActive).Documents(ctx))
	if err != nil {
		return nil, err
	}
	sortProducts(docs, "popular")
	return suggestTitles(docs, query, limit), nil
}

func (r *firestoreProductRepository) collect(iter *firestore.DocumentIterator) ([]*entity.Product, error) {
	defer iter.Stop()

	var products []*entity.Product
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate products", err)
		}
		var product entity.Product
		if err := doc.DataTo(&product); err != nil {
			return nil, errors.Internal("Failed to parse product data", err)
		}
		products = append(products, &product)
	}
	return products, nil
}
