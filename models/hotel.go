package models

import "strings"

// Hotel represents a hotel returned by the hotel-search service
type Hotel struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Environment string  `json:"environment"` // e.g. "urban", "beach", "resort"
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"` // Currency symbol/code ($, €, ₦, etc.)
	Stars       float64 `json:"stars"`
	ReviewCount int     `json:"reviewCount"`
	ImageURL    string  `json:"imageUrl"`
}

// HotelQuery identifies what the user asked for. Two queries with the same
// normalized fields are the same query.
type HotelQuery struct {
	City        string
	Country     string
	Environment string
}

// Normalize trims whitespace and uppercases the country code. No further
// validation is done; malformed codes are forwarded to the server as-is.
func (q HotelQuery) Normalize() HotelQuery {
	return HotelQuery{
		City:        strings.TrimSpace(q.City),
		Country:     strings.ToUpper(strings.TrimSpace(q.Country)),
		Environment: strings.TrimSpace(q.Environment),
	}
}

// IsZero reports whether the query has no location at all.
func (q HotelQuery) IsZero() bool {
	return strings.TrimSpace(q.City) == "" && strings.TrimSpace(q.Country) == ""
}

// SearchInfo is the pagination metadata the services attach to each page
type SearchInfo struct {
	HasMore bool `json:"hasMore"`
	Total   int  `json:"total,omitempty"`
}
