package catalog

import "github.com/shopspring/decimal"

// Fallback returns the built-in catalog snapshot used when the backend
// cannot be reached. The storefront renders this instead of an empty
// page; it is display-only and never submitted back to the server.
func Fallback() []Product {
	return []Product{
		{
			ID:            "1",
			Name:          "BMX Freestyle Pro",
			Description:   "Professional BMX bike for freestyle and tricks.",
			Price:         decimal.NewFromFloat(699.99),
			StockQuantity: 15,
			Category:      "Complete bikes",
			ImageURL:      "https://images.unsplash.com/photo-1507035895480-2b3156c31fc8?w=500",
			Featured:      true,
		},
		{
			ID:            "2",
			Name:          "BMX Race Elite",
			Description:   "Lightweight, aerodynamic race BMX.",
			Price:         decimal.NewFromFloat(899.99),
			StockQuantity: 8,
			Category:      "Complete bikes",
			ImageURL:      "https://images.unsplash.com/photo-1532298229144-0ec0c57515c7?w=500",
			Featured:      true,
		},
		{
			ID:            "3",
			Name:          "BMX Pro Helmet",
			Description:   "Professional BMX helmet with advanced protection.",
			Price:         decimal.NewFromFloat(89.99),
			StockQuantity: 25,
			Category:      "Accessories",
			ImageURL:      "https://images.unsplash.com/photo-1573496773905-f5b17e717f05?w=500",
		},
		{
			ID:            "4",
			Name:          "Chrome BMX Handlebar",
			Description:   "Chromed steel handlebar for freestyle BMX.",
			Price:         decimal.NewFromFloat(49.99),
			StockQuantity: 30,
			Category:      "Components",
			ImageURL:      "https://images.unsplash.com/photo-1605965462688-7b62a4c41298?w=500",
		},
		{
			ID:            "5",
			Name:          "BMX Team Tee",
			Description:   "Official team tee, breathable and comfortable.",
			Price:         decimal.NewFromFloat(29.99),
			StockQuantity: 50,
			Category:      "Apparel",
			ImageURL:      "https://images.unsplash.com/photo-1512327536842-5aa37d1ba3e3?w=500",
			Featured:      true,
		},
		{
			ID:            "6",
			Name:          "BMX Platform Pedals",
			Description:   "Aluminium platform pedals with grip pins.",
			Price:         decimal.NewFromFloat(39.99),
			StockQuantity: 40,
			Category:      "Components",
			ImageURL:      "https://images.unsplash.com/photo-1583227122027-d2d360c66d3c?w=500",
		},
	}
}

// FallbackFeatured filters the built-in snapshot to featured products.
func FallbackFeatured() []Product {
	var out []Product
	for _, p := range Fallback() {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// FallbackByCategory filters the built-in snapshot by category name.
func FallbackByCategory(category string) []Product {
	var out []Product
	for _, p := range Fallback() {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// FallbackCategories lists the distinct categories of the built-in
// snapshot, in first-seen order.
func FallbackCategories() []string {
	var out []string
	seen := map[string]bool{}
	for _, p := range Fallback() {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out
}
