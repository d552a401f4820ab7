package reconciler

import (
	"github.com/shopspring/decimal"

	"rafiqe/internal/models"
)

// Palette colors plan buckets by position, wrapping around.
var Palette = []string{
	"#10b981", "#3b82f6", "#8b5cf6", "#ec4899",
	"#f59e0b", "#ef4444", "#06b6d4", "#f97316",
}

// PaletteColor returns the palette entry for the i-th bucket of a plan.
func PaletteColor(i int) string {
	return Palette[i%len(Palette)]
}

type fallbackBucket struct {
	id      string
	nameAR  string
	nameEN  string
	icon    string
	color   string
	percent int64
}

var fallbackBuckets = []fallbackBucket{
	{id: "health", nameAR: "الصحة", nameEN: "Health", icon: "🏥", color: "#10b981", percent: 15},
	{id: "household", nameAR: "المنزل", nameEN: "Household", icon: "🏠", color: "#ec4899", percent: 25},
	{id: "groceries", nameAR: "البقالة", nameEN: "Groceries", icon: "🛒", color: "#f59e0b", percent: 20},
	{id: "savings", nameAR: "الادخار", nameEN: "Savings", icon: "💰", color: "#8b5cf6", percent: 20},
	{id: "investment", nameAR: "الاستثمار", nameEN: "Investment", icon: "📈", color: "#3b82f6", percent: 10},
	{id: "entertainment", nameAR: "الترفيه", nameEN: "Entertainment", icon: "🎭", color: "#ef4444", percent: 10},
}

// FallbackBuckets is the fixed bucket set installed when the user skips plan
// generation. Allocations start at zero; the recommended percents are hints.
func FallbackBuckets(locale models.Locale) []models.Bucket {
	out := make([]models.Bucket, len(fallbackBuckets))
	for i, fb := range fallbackBuckets {
		name := fb.nameEN
		if locale == models.LocaleArabic {
			name = fb.nameAR
		}
		out[i] = models.Bucket{
			ID:                 fb.id,
			Name:               name,
			Icon:               fb.icon,
			Allocated:          decimal.Zero,
			RecommendedPercent: decimal.NewFromInt(fb.percent),
			Color:              fb.color,
		}
	}
	return out
}
