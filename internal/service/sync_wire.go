package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/precifica/precifica_api/internal/models"
)

// wireProduct is the lenient decode shape for product entries in a remote
// file. Files written by older versions of the app carry numeric ids and
// may mix strings and numbers in numeric columns, so every field tolerates
// both; anything unparseable coerces to its zero value.
type wireProduct struct {
	ID              flexString `json:"id"`
	SKU             flexString `json:"sku"`
	Name            flexString `json:"name"`
	Provider        flexString `json:"provider"`
	PlatingProvider flexString `json:"platingProvider"`
	RawCost         flexFloat  `json:"rawCost"`
	Weight          flexFloat  `json:"weight"`
	Thickness       flexFloat  `json:"thickness"`
	MarkupPercent   flexFloat  `json:"markupPercent"`
	ManualPlating   bool       `json:"manualPlating"`
	PlatingCost     flexFloat  `json:"platingCost"`
}

func (w wireProduct) toProduct() *models.Product {
	id := string(w.ID)
	if id == "" {
		id = uuid.NewString()
	}
	return &models.Product{
		ID:              id,
		SKU:             string(w.SKU),
		Name:            string(w.Name),
		Provider:        string(w.Provider),
		PlatingProvider: string(w.PlatingProvider),
		RawCost:         float64(w.RawCost),
		Weight:          float64(w.Weight),
		Thickness:       float64(w.Thickness),
		MarkupPercent:   float64(w.MarkupPercent),
		ManualPlating:   w.ManualPlating,
		PlatingCost:     float64(w.PlatingCost),
	}
}

// flexString decodes a JSON string, number or null as a string.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		*s = flexString(num.String())
		return nil
	}
	*s = ""
	return nil
}

// flexFloat decodes a JSON number, numeric string or null as a float,
// coercing anything unparseable or non-finite to 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	raw = strings.Trim(raw, `"`)
	if raw == "" || raw == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}
