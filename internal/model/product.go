package model

import "time"

// Product mirrors the `products` table.  Prices are stored in cents to
// avoid floating point rounding in totals.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – product display name.
//  Description – free-form description text.
//  PriceCents  – unit price in cents.
//  ImageURL    – location of the product image.
//  Category    – flat category label used for browse and filter queries.
//  IsFeatured  – whether the product appears in the featured carousel.
//  CreatedAt   – timestamp of creation.
type Product struct {
	ID          uint64    `json:"id"`           // products.id
	Name        string    `json:"name"`         // products.name
	Description string    `json:"description"`  // products.description
	PriceCents  uint64    `json:"price_cents"`  // products.price_cents
	ImageURL    string    `json:"image_url"`    // products.image_url
	Category    string    `json:"category"`     // products.category
	IsFeatured  bool      `json:"is_featured"`  // products.is_featured
	CreatedAt   time.Time `json:"created_at"`   // products.created_at
}
