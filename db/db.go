package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection
func NewDB() (*DB, error) {
	// Get connection string from environment variable
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		// Try to build from individual components
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "travel_helper")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "travel_helper")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=travel_helper",
			host, port, user, password, dbname, sslmode)
	}

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}

	// Initialize schema
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables if they don't exist
func (db *DB) initSchema() error {
	// Try to create schema if it doesn't exist (but don't fail if we don't have permission)
	_, err := db.conn.Exec(`CREATE SCHEMA IF NOT EXISTS travel_helper`)
	if err != nil {
		log.Printf("Note: Could not create schema (may already exist): %v\n", err)
	}

	_, err = db.conn.Exec(`SET search_path TO travel_helper`)
	if err != nil {
		return fmt.Errorf("failed to set search path: %w", err)
	}

	// Create user_configs table
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS user_configs (
			user_id BIGINT PRIMARY KEY,
			max_pages INTEGER NOT NULL DEFAULT 5,
			min_reviews INTEGER NOT NULL DEFAULT 0,
			min_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			max_price DOUBLE PRECISION NOT NULL DEFAULT 2000,
			min_stars DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create user_configs table: %w", err)
	}

	// Create requests table
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS requests (
			id SERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			telegram_message_id INTEGER NOT NULL,
			correlation_id UUID NOT NULL,
			city TEXT NOT NULL,
			country VARCHAR(10) NOT NULL,
			environment VARCHAR(50),
			status VARCHAR(20) NOT NULL DEFAULT 'created',
			hotels_count INTEGER DEFAULT 0,
			pages_count INTEGER DEFAULT 0,
			sheet_name VARCHAR(255),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT valid_status CHECK (status IN ('created', 'in_progress', 'done', 'failed'))
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create requests table: %w", err)
	}

	// Create hotels table
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS hotels (
			id SERIAL PRIMARY KEY,
			request_id INTEGER NOT NULL REFERENCES requests(id) ON DELETE CASCADE,
			hotel_id TEXT NOT NULL,
			name TEXT NOT NULL,
			address TEXT,
			city TEXT,
			country VARCHAR(10),
			environment VARCHAR(50),
			description TEXT,
			price DOUBLE PRECISION,
			currency VARCHAR(10),
			stars DOUBLE PRECISION,
			review_count INTEGER,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create hotels table: %w", err)
	}

	// Create indexes
	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_requests_status ON requests(status)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on requests.status: %v\n", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_requests_user_id ON requests(user_id)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on requests.user_id: %v\n", err)
	}

	_, err = db.conn.Exec(`CREATE INDEX IF NOT EXISTS idx_hotels_request_id ON hotels(request_id)`)
	if err != nil {
		log.Printf("Warning: Failed to create index on hotels.request_id: %v\n", err)
	}

	_, err = db.conn.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_hotels_request_hotel ON hotels(request_id, hotel_id)`)
	if err != nil {
		log.Printf("Warning: Failed to create unique index on hotels(request_id, hotel_id): %v\n", err)
	}

	log.Println("Database schema initialized successfully")
	return nil
}

// GetConn returns the underlying database connection
func (db *DB) GetConn() *sql.DB {
	return db.conn
}
