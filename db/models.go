package db

import (
	"database/sql"
	"time"

	"travel-helper/models"

	"github.com/google/uuid"
)

// UserConfig represents user-specific search configuration
type UserConfig struct {
	UserID     int64
	MaxPages   int
	MinReviews int
	MinPrice   float64
	MaxPrice   float64
	MinStars   float64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Request represents a queued hotel search request
type Request struct {
	ID                int
	UserID            int64
	TelegramMessageID int
	CorrelationID     uuid.UUID
	City              string
	Country           string
	Environment       sql.NullString
	Status            string // "created", "in_progress", "done", "failed"
	HotelsCount       int
	PagesCount        int
	SheetName         sql.NullString
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Query converts the stored request fields back into a search query
func (r *Request) Query() models.HotelQuery {
	return models.HotelQuery{
		City:        r.City,
		Country:     r.Country,
		Environment: r.Environment.String,
	}
}

// GetUserConfig retrieves user configuration, creating default if not exists
func (db *DB) GetUserConfig(userID int64) (*UserConfig, error) {
	var cfg UserConfig
	err := db.conn.QueryRow(`
		SELECT user_id, max_pages, min_reviews, min_price, max_price, min_stars, created_at, updated_at
		FROM user_configs
		WHERE user_id = $1
	`, userID).Scan(
		&cfg.UserID, &cfg.MaxPages, &cfg.MinReviews, &cfg.MinPrice,
		&cfg.MaxPrice, &cfg.MinStars, &cfg.CreatedAt, &cfg.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		// Create default config
		cfg = UserConfig{
			UserID:     userID,
			MaxPages:   5,
			MinReviews: 0,
			MinPrice:   0,
			MaxPrice:   2000,
			MinStars:   0,
		}
		_, err = db.conn.Exec(`
			INSERT INTO user_configs (user_id, max_pages, min_reviews, min_price, max_price, min_stars)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, cfg.UserID, cfg.MaxPages, cfg.MinReviews, cfg.MinPrice, cfg.MaxPrice, cfg.MinStars)
		if err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// UpdateUserConfig updates the provided fields of a user's configuration.
// Nil pointers leave the corresponding column unchanged.
func (db *DB) UpdateUserConfig(userID int64, maxPages, minReviews *int, minPrice, maxPrice, minStars *float64) error {
	// Make sure the row exists first
	if _, err := db.GetUserConfig(userID); err != nil {
		return err
	}

	_, err := db.conn.Exec(`
		UPDATE user_configs
		SET max_pages = COALESCE($1, max_pages),
		    min_reviews = COALESCE($2, min_reviews),
		    min_price = COALESCE($3, min_price),
		    max_price = COALESCE($4, max_price),
		    min_stars = COALESCE($5, min_stars),
		    updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $6
	`, maxPages, minReviews, minPrice, maxPrice, minStars, userID)
	return err
}

// CreateRequest creates a new queued search request
func (db *DB) CreateRequest(userID int64, telegramMessageID int, query models.HotelQuery) (*Request, error) {
	query = query.Normalize()

	var req Request
	var environment, sheetName sql.NullString
	err := db.conn.QueryRow(`
		INSERT INTO requests (user_id, telegram_message_id, correlation_id, city, country, environment, status)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), 'created')
		RETURNING id, user_id, telegram_message_id, correlation_id, city, country, environment, status, hotels_count, pages_count, sheet_name, created_at, updated_at
	`, userID, telegramMessageID, uuid.New(), query.City, query.Country, query.Environment).Scan(
		&req.ID, &req.UserID, &req.TelegramMessageID, &req.CorrelationID, &req.City, &req.Country,
		&environment, &req.Status, &req.HotelsCount, &req.PagesCount, &sheetName, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	req.Environment = environment
	req.SheetName = sheetName
	return &req, nil
}

// GetNextCreatedRequest gets the next request with status 'created'
func (db *DB) GetNextCreatedRequest() (*Request, error) {
	var req Request
	var environment, sheetName sql.NullString
	err := db.conn.QueryRow(`
		SELECT id, user_id, telegram_message_id, correlation_id, city, country, environment, status, hotels_count, pages_count, sheet_name, created_at, updated_at
		FROM requests
		WHERE status = 'created'
		ORDER BY created_at ASC
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`).Scan(
		&req.ID, &req.UserID, &req.TelegramMessageID, &req.CorrelationID, &req.City, &req.Country,
		&environment, &req.Status, &req.HotelsCount, &req.PagesCount, &sheetName, &req.CreatedAt, &req.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	req.Environment = environment
	req.SheetName = sheetName
	return &req, nil
}

// UpdateRequestStatus updates the status of a request
func (db *DB) UpdateRequestStatus(requestID int, status string) error {
	_, err := db.conn.Exec(`
		UPDATE requests
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, status, requestID)
	return err
}

// UpdateRequestCounts updates hotel and page counts for a request
func (db *DB) UpdateRequestCounts(requestID int, hotelsCount, pagesCount int) error {
	_, err := db.conn.Exec(`
		UPDATE requests
		SET hotels_count = $1, pages_count = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $3
	`, hotelsCount, pagesCount, requestID)
	return err
}

// UpdateRequestSheetName updates the sheet name for a request
func (db *DB) UpdateRequestSheetName(requestID int, sheetName string) error {
	_, err := db.conn.Exec(`
		UPDATE requests
		SET sheet_name = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
	`, sheetName, requestID)
	return err
}

// SaveHotel saves a hotel result for a request. Re-saving the same hotel
// for the same request is a no-op.
func (db *DB) SaveHotel(requestID int, hotel models.Hotel) error {
	var price sql.NullFloat64
	var currency sql.NullString
	var stars sql.NullFloat64
	var reviewCount sql.NullInt64

	if hotel.Price > 0 {
		price = sql.NullFloat64{Float64: hotel.Price, Valid: true}
	}
	if hotel.Currency != "" {
		currency = sql.NullString{String: hotel.Currency, Valid: true}
	}
	if hotel.Stars > 0 {
		stars = sql.NullFloat64{Float64: hotel.Stars, Valid: true}
	}
	if hotel.ReviewCount > 0 {
		reviewCount = sql.NullInt64{Int64: int64(hotel.ReviewCount), Valid: true}
	}

	_, err := db.conn.Exec(`
		INSERT INTO hotels (request_id, hotel_id, name, address, city, country, environment, description, price, currency, stars, review_count)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11, $12)
		ON CONFLICT (request_id, hotel_id) DO NOTHING
	`, requestID, hotel.ID, hotel.Name, hotel.Address, hotel.City, hotel.Country,
		hotel.Environment, hotel.Description, price, currency, stars, reviewCount)
	return err
}
