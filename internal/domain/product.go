package domain

import (
	"strings"
	"time"
	"unicode"
)

// OptionType tags a variant option as either a color swatch or a plain
// string value. The tag is decided once when catalog data is ingested and
// never re-inferred on reads.
type OptionType string

const (
	OptionColor  OptionType = "color"
	OptionString OptionType = "string"
)

// VariantOption is one dimension of product customization, e.g.
// Color = "Sage" with swatch #9CAF88.
type VariantOption struct {
	Key        string     `json:"key"`
	Label      string     `json:"label"`
	Value      string     `json:"value"`
	Type       OptionType `json:"type"`
	ColorValue string     `json:"colorValue,omitempty"`
}

// NormalizeOption settles an option's tag: color options default their
// swatch to the value, everything else is a string option with no swatch.
func NormalizeOption(o VariantOption) VariantOption {
	switch o.Type {
	case OptionColor:
		if o.ColorValue == "" {
			o.ColorValue = o.Value
		}
	default:
		o.Type = OptionString
		o.ColorValue = ""
	}
	return o
}

// ProductVariant is a purchasable configuration of a product. ID is the
// external price identifier, stable and globally unique; the currency of
// an existing variant never changes.
type ProductVariant struct {
	ID      string          `json:"id"`
	Price   Money           `json:"price"`
	Images  []string        `json:"images"`
	Options []VariantOption `json:"options"`
}

type Product struct {
	ID          string           `json:"id"`
	Slug        string           `json:"slug"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Images      []string         `json:"images"`
	Variants    []ProductVariant `json:"variants,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// ProductSummary carries the product fields a cart line needs for display
// without a second lookup.
type ProductSummary struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Slug   string   `json:"slug"`
	Images []string `json:"images"`
}

func (p Product) Summary() ProductSummary {
	return ProductSummary{ID: p.ID, Name: p.Name, Slug: p.Slug, Images: p.Images}
}

// VariantWithProduct is the catalog resolution result for one variant id.
type VariantWithProduct struct {
	Product ProductSummary `json:"product"`
	Variant ProductVariant `json:"variant"`
}

// Collection is a named product grouping.
type Collection struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	Products    []Product `json:"products,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Slugify derives the URL slug for a name: lowercase, strip everything but
// letters, digits, spaces and hyphens, collapse whitespace runs to single
// hyphens.
func Slugify(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	slug := strings.Join(strings.Fields(b.String()), "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return slug
}
