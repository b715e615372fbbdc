package models

import "time"

// GoldQuote is the last known gold spot price, converted to price per gram.
type GoldQuote struct {
	PricePerGram float64   `json:"pricePerGram"`
	BidPerOunce  float64   `json:"bidPerOunce"`
	QuotedAt     string    `json:"quotedAt"` // timestamp string as reported by the feed
	FetchedAt    time.Time `json:"fetchedAt"`
}
