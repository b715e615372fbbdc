package pricing

import (
	"math"

	"github.com/precifica/precifica_api/internal/models"
)

const (
	// GramsPerTroyOunce converts spot prices quoted per troy ounce to
	// price per gram.
	GramsPerTroyOunce = 31.1035

	// DefaultPlatingFactor is the business default for the plating cost
	// multiplier (roughly 2% of the gold value per mil).
	DefaultPlatingFactor = 0.02

	// DefaultMarkupPercent is the markup applied to newly created products
	// (300 means sale price = cost x 4).
	DefaultMarkupPercent = 300
)

// Context carries the process-wide pricing inputs shared by every
// recomputation. It is passed explicitly into each call so that pricing
// stays deterministic and testable without a live price feed.
type Context struct {
	GoldPricePerGram float64
	PlatingFactor    float64
}

// PerGram converts a spot price quoted per troy ounce to price per gram.
func PerGram(bidPerOunce float64) float64 {
	return bidPerOunce / GramsPerTroyOunce
}

// Recompute derives PlatingCost (unless manually fixed), TotalCost and
// SalePrice from the product's input fields and the pricing context.
// Non-finite inputs coerce to zero so the grid never shows NaN; the call
// always succeeds and is idempotent in its inputs.
func Recompute(p *models.Product, ctx Context) {
	if !p.ManualPlating {
		p.PlatingCost = finite(p.Weight) * finite(p.Thickness) * finite(ctx.GoldPricePerGram) * finite(ctx.PlatingFactor)
	}

	p.TotalCost = finite(p.RawCost) + finite(p.PlatingCost)
	p.SalePrice = p.TotalCost * (1 + finite(p.MarkupPercent)/100)
}

// RecomputeAll applies Recompute to every product in list order. Products
// are independent, so order does not affect the result. Call it whenever
// the context changes (price feed tick, factor edit).
func RecomputeAll(products []*models.Product, ctx Context) {
	for _, p := range products {
		Recompute(p, ctx)
	}
}

// finite coerces NaN and infinities to zero.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
