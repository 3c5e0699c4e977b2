package filter

import (
	"travel-helper/config"
	"travel-helper/models"
)

// Criteria applies numeric filter criteria to hotels
type Criteria struct {
	cfg *config.Config
}

// NewCriteria creates a new Criteria instance
func NewCriteria(cfg *config.Config) *Criteria {
	return &Criteria{
		cfg: cfg,
	}
}

// Apply filters hotels based on the configuration
func (c *Criteria) Apply(hotels []models.Hotel) []models.Hotel {
	var filtered []models.Hotel

	for _, hotel := range hotels {
		if c.matches(hotel) {
			filtered = append(filtered, hotel)
		}
	}

	return filtered
}

// matches checks if a hotel matches all filter criteria
func (c *Criteria) matches(hotel models.Hotel) bool {
	if hotel.ReviewCount < c.cfg.Filters.MinReviews {
		return false
	}

	// Only filter by price when the service supplied one (price > 0).
	// A zero price means the field was absent, not a free hotel.
	if hotel.Price > 0 {
		if hotel.Price < c.cfg.Filters.MinPrice || hotel.Price > c.cfg.Filters.MaxPrice {
			return false
		}
	}

	if hotel.Stars > 0 && hotel.Stars < c.cfg.Filters.MinStars {
		return false
	}

	return true
}
