package repository

import (
	"sort"
	"strings"

	"slem/internal/domain/entity"
)

// Firestore has no substring or case-insensitive matching, so both adapters
// narrow on equality in the store and finish filtering here.

func matchesProductFilter(p *entity.Product, f entity.ProductFilter) bool {
	if !p.IsListed() {
		return false
	}
	if f.SellerID != "" && p.SellerID != f.SellerID {
		return false
	}
	if f.Search != "" && !containsFold(p.Title, f.Search) {
		return false
	}
	if f.Category != "" && !containsFold(p.Category, f.Category) {
		return false
	}
	if f.Condition != "" && !strings.EqualFold(p.Condition, f.Condition) {
		return false
	}
	if f.City != "" && !containsFold(p.Location.City, f.City) {
		return false
	}
	if f.Region != "" && !containsFold(p.Location.Region, f.Region) {
		return false
	}
	if f.PriceMin > 0 && p.Price < f.PriceMin {
		return false
	}
	if f.PriceMax > 0 && p.Price > f.PriceMax {
		return false
	}
	return true
}

func sortProducts(products []*entity.Product, order string) {
	var less func(a, b *entity.Product) bool
	switch order {
	case "priceLow":
		less = func(a, b *entity.Product) bool { return a.Price < b.Price }
	case "priceHigh":
		less = func(a, b *entity.Product) bool { return a.Price > b.Price }
	case "popular":
		less = func(a, b *entity.Product) bool {
			if a.Views != b.Views {
				return a.Views > b.Views
			}
			return a.Sales > b.Sales
		}
	default:
		less = func(a, b *entity.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

func suggestTitles(products []*entity.Product, query string, limit int) []string {
	titles := make([]string, 0, limit)
	for _, p := range products {
		if len(titles) >= limit {
			break
		}
		if p.IsListed() && containsFold(p.Title, query) {
			titles = append(titles, p.Title)
		}
	}
	return titles
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
