package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"travel-helper/api"
	"travel-helper/config"

	"github.com/joho/godotenv"
)

func main() {
	// Parse command line arguments
	city := flag.String("city", "", "City to search hotels in (CLI mode; omit to run as Telegram bot)")
	country := flag.String("country", "", "Country code, e.g. NG (CLI mode)")
	environment := flag.String("env", "", "Environment filter: urban, beach, resort (CLI mode, optional)")
	resources := flag.String("resources", "", "List shared resources instead of hotels: 'current' or 'archive' (CLI mode)")
	term := flag.String("filter", "", "Client-side text filter applied to loaded results (CLI mode)")
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	maxPages := flag.Int("pages", 0, "Maximum number of pages to load (0 = config default)")
	spreadsheetURL := flag.String("spreadsheet", "", "Google Sheets URL to export hotel results to (optional)")
	credentialsPath := flag.String("credentials", "", "Path to Google service account credentials JSON file (or use GOOGLE_SHEETS_CREDENTIALS env var)")
	flag.Parse()

	// Load .env if present; real environment variables win
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	cfg := loadConfig(*configPath)
	if *maxPages > 0 {
		cfg.Search.MaxPages = *maxPages
	}

	// If a location or resource scope is provided, run in CLI mode
	if *city != "" || *country != "" || *resources != "" {
		runCLIMode(cfg, cliOptions{
			city:            *city,
			country:         *country,
			environment:     *environment,
			resources:       *resources,
			filterTerm:      *term,
			spreadsheetURL:  *spreadsheetURL,
			credentialsPath: *credentialsPath,
		})
		return
	}

	// Otherwise, run as Telegram bot
	runTelegramBot(cfg, *spreadsheetURL, *credentialsPath)
}

// loadConfig loads configuration from file or returns defaults
func loadConfig(configPath string) *config.Config {
	var cfg *config.Config
	if _, err := os.Stat(configPath); err == nil {
		var err error
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			log.Printf("Warning: Failed to load config file: %v. Using defaults.\n", err)
			cfg = config.GetDefaultConfig()
		}
	} else {
		log.Println("Config file not found. Using default configuration.")
		cfg = config.GetDefaultConfig()
	}
	return cfg
}

// userMessage converts a fetch error into user-facing text following the
// error taxonomy: application errors carry the server's own message,
// transport errors get a retry wording, 401 gets the refresh wording.
func userMessage(err error) string {
	if errors.Is(err, api.ErrUnauthorized) {
		return "Your session has expired. Please refresh and try again."
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	var transportErr *api.TransportError
	if errors.As(err, &transportErr) {
		return "The search service could not be reached. Please try again."
	}
	return err.Error()
}
