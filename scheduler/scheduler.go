package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"travel-helper/api"
	"travel-helper/config"
	"travel-helper/db"
	"travel-helper/filter"
	"travel-helper/listview"
	"travel-helper/models"
	"travel-helper/sheets"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Scheduler processes queued hotel search requests from the database
type Scheduler struct {
	db             *db.DB
	bot            *tgbotapi.BotAPI
	writer         *sheets.Writer
	hotels         *api.HotelClient
	cfg            *config.Config
	spreadsheetURL string
	ctx            context.Context
	cancel         context.CancelFunc
}

// NewScheduler creates a new scheduler
func NewScheduler(database *db.DB, bot *tgbotapi.BotAPI, writer *sheets.Writer, hotels *api.HotelClient, cfg *config.Config, spreadsheetURL string) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		db:             database,
		bot:            bot,
		writer:         writer,
		hotels:         hotels,
		cfg:            cfg,
		spreadsheetURL: spreadsheetURL,
		ctx:            ctx,
		cancel:         cancel,
	}
}

// Start starts the scheduler in a goroutine
func (s *Scheduler) Start() {
	go s.run()
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cancel()
	log.Println("Scheduler stopped")
}

// run is the main scheduler loop
func (s *Scheduler) run() {
	ticker := time.NewTicker(5 * time.Second) // Check every 5 seconds
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			s.processNextRequest()
		}
	}
}

// processNextRequest processes the next request with status 'created'
func (s *Scheduler) processNextRequest() {
	req, err := s.db.GetNextCreatedRequest()
	if err != nil {
		log.Printf("Error getting next request: %v\n", err)
		return
	}

	if req == nil {
		// No requests to process
		return
	}

	log.Printf("Processing request ID %d for user %d\n", req.ID, req.UserID)

	if err := s.db.UpdateRequestStatus(req.ID, "in_progress"); err != nil {
		log.Printf("Error updating request status to in_progress: %v\n", err)
		return
	}

	s.sendStatusUpdate(req.TelegramMessageID, req.UserID, "🔄 Processing request... Searching hotels...")

	// Get user config
	userConfig, err := s.db.GetUserConfig(req.UserID)
	if err != nil {
		log.Printf("Error getting user config: %v\n", err)
		s.handleRequestError(req, err)
		return
	}

	allHotels, pagesFetched, err := s.searchHotels(req.Query(), userConfig.MaxPages, req.TelegramMessageID, req.UserID)
	if err != nil {
		log.Printf("Error searching: %v\n", err)
		s.handleRequestError(req, err)
		return
	}

	if len(allHotels) == 0 {
		s.finishEmptyRequest(req, pagesFetched)
		return
	}

	// Apply the user's criteria filter
	cfg := &config.Config{}
	cfg.Filters.MinReviews = userConfig.MinReviews
	cfg.Filters.MinPrice = userConfig.MinPrice
	cfg.Filters.MaxPrice = userConfig.MaxPrice
	cfg.Filters.MinStars = userConfig.MinStars

	criteria := filter.NewCriteria(cfg)
	filteredHotels := criteria.Apply(allHotels)

	// Save results to database
	for _, hotel := range filteredHotels {
		if err := s.db.SaveHotel(req.ID, hotel); err != nil {
			log.Printf("Warning: Failed to save hotel to database: %v\n", err)
		}
	}

	if err := s.db.UpdateRequestCounts(req.ID, len(filteredHotels), pagesFetched); err != nil {
		log.Printf("Error updating request counts: %v\n", err)
	}

	// Create sheet name from request ID and timestamp
	sheetName := fmt.Sprintf("Request_%d_%s", req.ID, time.Now().Format("20060102_150405"))

	queryInfo := fmt.Sprintf("%s, %s", req.City, req.Country)
	if req.Environment.Valid {
		queryInfo += ", " + req.Environment.String
	}
	filterInfo := fmt.Sprintf("Min Reviews: %d, Min Price: %.2f, Max Price: %.2f, Min Stars: %.2f",
		cfg.Filters.MinReviews, cfg.Filters.MinPrice, cfg.Filters.MaxPrice, cfg.Filters.MinStars)

	createdSheetName, sheetID, err := s.writer.CreateSheetAndWriteHotels(sheetName, filteredHotels, queryInfo, filterInfo)
	if err != nil {
		log.Printf("Error writing to Google Sheets: %v\n", err)
		s.handleRequestError(req, err)
		return
	}

	if err := s.db.UpdateRequestSheetName(req.ID, createdSheetName); err != nil {
		log.Printf("Warning: Failed to update sheet name: %v\n", err)
	}

	if err := s.db.UpdateRequestStatus(req.ID, "done"); err != nil {
		log.Printf("Error updating request status to done: %v\n", err)
		return
	}

	sheetURL := s.createSheetURL(sheetID)

	successMsg := fmt.Sprintf(
		"✅ Successfully found %d hotels matching your criteria!\n\n"+
			"Found %d hotels before filtering.\n"+
			"Pages fetched: %d\n\n"+
			"View spreadsheet: %s",
		len(filteredHotels), len(allHotels), pagesFetched, sheetURL)
	s.sendStatusUpdate(req.TelegramMessageID, req.UserID, successMsg)
}

// searchHotels runs the paginated search through a list view, loading up
// to maxPages pages, and returns the accumulated hotels and the number of
// pages fetched
func (s *Scheduler) searchHotels(query models.HotelQuery, maxPages int, messageID int, userID int64) ([]models.Hotel, int, error) {
	view, err := listview.New(listview.Config[models.HotelQuery, models.Hotel]{
		Fetch: func(ctx context.Context, q models.HotelQuery, page int) (listview.Page[models.Hotel], error) {
			hotels, info, err := s.hotels.Search(ctx, q, page)
			if err != nil {
				return listview.Page[models.Hotel]{}, err
			}
			return listview.Page[models.Hotel]{Items: hotels, HasMore: info.HasMore}, nil
		},
		Fields: func(h models.Hotel) []string {
			return []string{h.Name, h.Address, h.Description}
		},
		Key: func(h models.Hotel) string {
			return h.ID
		},
		Debounce: s.cfg.Debounce(),
	})
	if err != nil {
		return nil, 0, err
	}

	if err := view.Submit(s.ctx, query); err != nil {
		return nil, 0, err
	}

	pages := 1
	s.sendStatusUpdate(messageID, userID, fmt.Sprintf("📄 Page %d/%d fetched", pages, maxPages))

	for pages < maxPages && view.LoadMoreArmed() {
		issued, err := view.LoadMore(s.ctx)
		if !issued {
			break
		}
		if err != nil {
			// Keep what was already loaded; the failed page never
			// advanced the cursor.
			log.Printf("Warning: Failed to load page %d: %v\n", pages+1, err)
			break
		}
		pages++
		s.sendStatusUpdate(messageID, userID, fmt.Sprintf("📄 Page %d/%d fetched", pages, maxPages))
	}

	return view.Items(), pages, nil
}

// finishEmptyRequest completes a request whose query returned no hotels
func (s *Scheduler) finishEmptyRequest(req *db.Request, pagesFetched int) {
	if err := s.db.UpdateRequestCounts(req.ID, 0, pagesFetched); err != nil {
		log.Printf("Error updating request counts: %v\n", err)
	}
	if err := s.db.UpdateRequestStatus(req.ID, "done"); err != nil {
		log.Printf("Error updating request status to done: %v\n", err)
	}
	s.sendStatusUpdate(req.TelegramMessageID, req.UserID,
		fmt.Sprintf("No hotels found for %s, %s. Try a different city or environment.", req.City, req.Country))
}

// handleRequestError handles errors during request processing
func (s *Scheduler) handleRequestError(req *db.Request, err error) {
	if updateErr := s.db.UpdateRequestStatus(req.ID, "failed"); updateErr != nil {
		log.Printf("Error updating request status to failed: %v\n", updateErr)
	}

	errorMsg := fmt.Sprintf("❌ Error processing request: %v", err)
	s.sendStatusUpdate(req.TelegramMessageID, req.UserID, errorMsg)
}

// createSheetURL creates a URL that opens a specific sheet in the spreadsheet
func (s *Scheduler) createSheetURL(sheetID int64) string {
	spreadsheetID := sheets.ExtractSpreadsheetID(s.spreadsheetURL)
	if spreadsheetID == "" {
		return s.spreadsheetURL
	}

	// Format: https://docs.google.com/spreadsheets/d/SPREADSHEET_ID/edit#gid=SHEET_ID
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%d", spreadsheetID, sheetID)
}

// sendStatusUpdate sends a status update message to Telegram
func (s *Scheduler) sendStatusUpdate(messageID int, userID int64, text string) {
	msg := tgbotapi.NewMessage(userID, text)
	msg.ReplyToMessageID = messageID
	_, err := s.bot.Send(msg)
	if err != nil {
		log.Printf("Error sending status update: %v\n", err)
	}
}
