package domain

import "errors"

var (
	// ErrProductNotFound is returned when a product lookup matches no row
	ErrProductNotFound = errors.New("product not found")

	// ErrListingNotFound is returned when a listing lookup matches no row
	ErrListingNotFound = errors.New("listing not found")

	// ErrRetailerNotFound is returned when a retailer lookup matches no row
	ErrRetailerNotFound = errors.New("retailer not found")

	// ErrCategoryNotFound is returned when a category lookup matches no row
	ErrCategoryNotFound = errors.New("category not found")

	// ErrProductInUse is returned when deleting a product that still has listings
	ErrProductInUse = errors.New("product still has listings")

	// ErrInvalidEAN is returned when a barcode fails structural validation
	ErrInvalidEAN = errors.New("invalid EAN")

	// ErrDuplicateEAN is returned when creating a product whose EAN already exists
	ErrDuplicateEAN = errors.New("EAN already registered")

	// ErrEmptyTitle is returned when an observation carries no usable title
	ErrEmptyTitle = errors.New("observation title is empty")
)
