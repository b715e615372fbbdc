package models

// Product represents one priced item in the grid.
//
// RawCost, Weight, Thickness and MarkupPercent are inputs; PlatingCost is
// either derived or frozen by a manual override (see ManualPlating);
// TotalCost and SalePrice are always derived and never edited directly.
// JSON tags match the remote file format so pulled and pushed documents
// stay compatible with existing data files.
type Product struct {
	ID              string `json:"id"`
	SKU             string `json:"sku"`
	Name            string `json:"name"`
	Provider        string `json:"provider,omitempty"`
	PlatingProvider string `json:"platingProvider,omitempty"`

	RawCost       float64 `json:"rawCost"`
	Weight        float64 `json:"weight"`    // grams
	Thickness     float64 `json:"thickness"` // mils
	MarkupPercent float64 `json:"markupPercent"`

	// ManualPlating freezes PlatingCost at a user-supplied value until the
	// user clears the field, which resumes automatic derivation.
	ManualPlating bool    `json:"manualPlating,omitempty"`
	PlatingCost   float64 `json:"platingCost"`

	TotalCost float64 `json:"totalCost"`
	SalePrice float64 `json:"salePrice"`
}

// Clone returns a copy of the product.
func (p *Product) Clone() *Product {
	cp := *p
	return &cp
}
