package filter

import (
	"testing"

	"travel-helper/config"
	"travel-helper/models"
)

func TestMatcher(t *testing.T) {
	tests := []struct {
		name   string
		term   string
		fields []string
		want   bool
	}{
		{"empty term matches anything", "", []string{"Eko Suites"}, true},
		{"whitespace term matches anything", "   ", []string{"Eko Suites"}, true},
		{"exact substring", "beach", []string{"Bar Beach Lodge"}, true},
		{"case insensitive term", "BEACH", []string{"Bar Beach Lodge"}, true},
		{"case insensitive field", "lodge", []string{"BAR BEACH LODGE"}, true},
		{"term trimmed before matching", "  beach  ", []string{"Bar Beach Lodge"}, true},
		{"matches later field", "lagos", []string{"Eko Suites", "Victoria Island, Lagos"}, true},
		{"missing fields skipped", "beach", []string{"", "", "near the beach"}, true},
		{"no match", "zanzibar", []string{"Eko Suites", "Lagos"}, false},
		{"no fields at all", "beach", nil, false},
		{"empty term with no fields", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatcher(tt.term)
			if got := m.Match(tt.fields); got != tt.want {
				t.Errorf("Match(%v) = %v, want %v", tt.fields, got, tt.want)
			}
		})
	}
}

func TestMatcherActive(t *testing.T) {
	if NewMatcher("").Active() {
		t.Error("Active() = true for empty term")
	}
	if NewMatcher("  \t ").Active() {
		t.Error("Active() = true for whitespace term")
	}
	if !NewMatcher("beach").Active() {
		t.Error("Active() = false for non-empty term")
	}
}

func TestCriteria(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Filters.MinReviews = 10
	cfg.Filters.MinPrice = 50
	cfg.Filters.MaxPrice = 500
	cfg.Filters.MinStars = 4.0

	tests := []struct {
		name  string
		hotel models.Hotel
		want  bool
	}{
		{"passes all criteria", models.Hotel{Price: 100, Stars: 4.5, ReviewCount: 25}, true},
		{"too few reviews", models.Hotel{Price: 100, Stars: 4.5, ReviewCount: 5}, false},
		{"below min price", models.Hotel{Price: 20, Stars: 4.5, ReviewCount: 25}, false},
		{"above max price", models.Hotel{Price: 800, Stars: 4.5, ReviewCount: 25}, false},
		{"zero price is not filtered", models.Hotel{Price: 0, Stars: 4.5, ReviewCount: 25}, true},
		{"below min stars", models.Hotel{Price: 100, Stars: 3.2, ReviewCount: 25}, false},
		{"zero stars is not filtered", models.Hotel{Price: 100, Stars: 0, ReviewCount: 25}, true},
	}

	criteria := NewCriteria(cfg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := criteria.Apply([]models.Hotel{tt.hotel})
			if (len(got) == 1) != tt.want {
				t.Errorf("Apply() kept=%v, want %v", len(got) == 1, tt.want)
			}
		})
	}
}

func TestCriteriaPreservesOrder(t *testing.T) {
	cfg := config.GetDefaultConfig()
	criteria := NewCriteria(cfg)

	hotels := []models.Hotel{
		{ID: "h1", Name: "First"},
		{ID: "h2", Name: "Second"},
		{ID: "h3", Name: "Third"},
	}
	got := criteria.Apply(hotels)
	if len(got) != 3 {
		t.Fatalf("Apply() len = %d, want 3", len(got))
	}
	for i, h := range hotels {
		if got[i].ID != h.ID {
			t.Errorf("Apply()[%d] = %s, want %s", i, got[i].ID, h.ID)
		}
	}
}
