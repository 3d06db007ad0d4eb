package handler

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"slem/internal/domain/entity"
	"slem/internal/infrastructure/storage"
	"slem/internal/usecase"
	"slem/pkg/errors"
	"slem/pkg/response"
	"slem/pkg/utils"
)

const maxImageSize = 5 * 1024 * 1024

type ProductHandler struct {
	productUseCase *usecase.ProductUseCase
}

func NewProductHandler(productUseCase *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{
		productUseCase: productUseCase,
	}
}

type createProductRequest struct {
	Title         string          `json:"title" validate:"required,max=150"`
	Description   string          `json:"description" validate:"required,max=3000"`
	Price         float64         `json:"price" validate:"gte=0"`
	DiscountPrice float64         `json:"discountPrice" validate:"gte=0"`
	Stock         int             `json:"stock" validate:"gte=0"`
	SKU           string          `json:"sku" validate:"max=64"`
	Category      string          `json:"category" validate:"required"`
	Subcategory   string          `json:"subcategory"`
	Condition     string          `json:"condition" validate:"required,oneof=new used refurbished"`
	Tags          []string        `json:"tags"`
	Location      entity.Location `json:"location"`
}

type updateProductRequest struct {
	Title         *string          `json:"title" validate:"omitempty,min=1,max=150"`
	Description   *string          `json:"description" validate:"omitempty,max=3000"`
	Price         *float64         `json:"price" validate:"omitempty,gte=0"`
	DiscountPrice *float64         `json:"discountPrice" validate:"omitempty,gte=0"`
	Stock         *int             `json:"stock" validate:"omitempty,gte=0"`
	SKU           *string          `json:"sku" validate:"omitempty,max=64"`
	Category      *string          `json:"category"`
	Subcategory   *string          `json:"subcategory"`
	Condition     *string          `json:"condition" validate:"omitempty,oneof=new used refurbished"`
	Tags          []string         `json:"tags"`
	Location      *entity.Location `json:"location"`
	Status        *string          `json:"status" validate:"omitempty,oneof=pending active inactive"`
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid, _ := caller(c)
	product, err := h.productUseCase.CreateProduct(c.Request().Context(), uid, usecase.CreateProductInput{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Stock:         req.Stock,
		SKU:           req.SKU,
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		Condition:     req.Condition,
		Tags:          req.Tags,
		Location:      req.Location,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, product)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	uid, role := caller(c)

	product, err := h.productUseCase.GetProduct(c.Request().Context(), c.Param("id"), uid, role)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	filter := entity.ProductFilter{
		Search:    c.QueryParam("search"),
		Category:  c.QueryParam("category"),
		Condition: c.QueryParam("condition"),
		City:      c.QueryParam("city"),
		Region:    c.QueryParam("region"),
		SellerID:  c.QueryParam("sellerId"),
		Sort:      c.QueryParam("sort"),
	}

	switch filter.Sort {
	case "", "newest", "priceLow", "priceHigh", "popular":
	default:
		return response.Error(c, errors.Validation("sort must be one of newest, priceLow, priceHigh, popular"))
	}

	var err error
	if filter.PriceMin, err = parsePrice(c.QueryParam("priceMin")); err != nil {
		return response.Error(c, err)
	}
	if filter.PriceMax, err = parsePrice(c.QueryParam("priceMax")); err != nil {
		return response.Error(c, err)
	}
	if filter.PriceMax > 0 && filter.PriceMin > filter.PriceMax {
		return response.Error(c, errors.Validation("priceMin cannot exceed priceMax"))
	}

	params := utils.GetPaginationParams(c)
	page, err := h.productUseCase.BrowseProducts(c.Request().Context(), filter, params.Page, params.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, page.Items, page.Total, params.Page, params.PageSize)
}

func parsePrice(raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, errors.Validation(fmt.Sprintf("Invalid price %q", raw))
	}
	return v, nil
}

func (h *ProductHandler) SuggestTitles(c echo.Context) error {
	titles, err := h.productUseCase.SuggestTitles(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, titles)
}

func (h *ProductHandler) ListMyProducts(c echo.Context) error {
	uid, _ := caller(c)
	params := utils.GetPaginationParams(c)

	products, total, err := h.productUseCase.ListMyProducts(c.Request().Context(), uid, params.Page, params.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, products, total, params.Page, params.PageSize)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid, role := caller(c)
	product, err := h.productUseCase.UpdateProduct(c.Request().Context(), uid, role, c.Param("id"), usecase.UpdateProductInput{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Stock:         req.Stock,
		SKU:           req.SKU,
		Category:      req.Category,
		Subcategory:   req.Subcategory,
		Condition:     req.Condition,
		Tags:          req.Tags,
		Location:      req.Location,
		Status:        req.Status,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	uid, role := caller(c)
	if err := h.productUseCase.DeleteProduct(c.Request().Context(), uid, role, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "Product deleted"})
}

func (h *ProductHandler) UploadImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return response.Error(c, errors.BadRequest("Missing or invalid image", err))
	}

	if file.Size > maxImageSize {
		return response.Error(c, errors.BadRequest(fmt.Sprintf("Image size exceeds maximum allowed (%dMB)", maxImageSize/(1024*1024)), nil))
	}

	contentType := file.Header.Get("Content-Type")
	if !storage.IsSupportedImage(contentType) {
		return response.Error(c, errors.BadRequest("Image type not supported", nil))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read image", err))
	}
	defer src.Close()

	uid, role := caller(c)
	product, err := h.productUseCase.UploadImage(c.Request().Context(), uid, role, c.Param("id"), src, contentType)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, product)
}
