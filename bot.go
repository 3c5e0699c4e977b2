package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"travel-helper/api"
	"travel-helper/config"
	"travel-helper/db"
	"travel-helper/listview"
	"travel-helper/models"
	"travel-helper/preview"
	"travel-helper/scheduler"
	"travel-helper/sheets"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// allowedUserIDs holds the Telegram user IDs permitted to use the bot,
// parsed from TRAVEL_ALLOWED_USERS. Empty means the bot is open to anyone.
var allowedUserIDs = map[int64]bool{}

func loadAllowedUsers() {
	raw := os.Getenv("TRAVEL_ALLOWED_USERS")
	if raw == "" {
		log.Println("Warning: TRAVEL_ALLOWED_USERS is not set; the bot will answer anyone")
		return
	}
	for _, part := range strings.Split(raw, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			log.Printf("Warning: Ignoring invalid user ID %q in TRAVEL_ALLOWED_USERS\n", part)
			continue
		}
		allowedUserIDs[id] = true
	}
}

func userAllowed(userID int64) bool {
	if len(allowedUserIDs) == 0 {
		return true
	}
	return allowedUserIDs[userID]
}

// runTelegramBot runs the search service as a Telegram bot
func runTelegramBot(cfg *config.Config, spreadsheetURL, credentialsPath string) {
	loadAllowedUsers()

	botToken := os.Getenv("TRAVEL_BOT_TOKEN")
	if botToken == "" {
		log.Fatalf("Error: TRAVEL_BOT_TOKEN environment variable is not set")
	}

	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		log.Fatalf("Failed to initialize bot: %v\n", err)
	}

	log.Printf("Authorized on account %s\n", bot.Self.UserName)

	// Initialize database
	database, err := db.NewDB()
	if err != nil {
		log.Fatalf("Error: Failed to initialize database: %v\n", err)
	}
	defer database.Close()
	log.Println("Database initialized successfully")

	// Initialize Google Sheets writer
	spreadsheetID := sheets.ExtractSpreadsheetID(spreadsheetURL)
	if spreadsheetID == "" {
		log.Fatalf("Error: Could not extract spreadsheet ID from URL: %s\n", spreadsheetURL)
	}

	writer, err := sheets.NewWriter(spreadsheetID, credentialsPath)
	if err != nil {
		log.Fatalf("Error: Failed to initialize Google Sheets writer: %v\n", err)
	}

	log.Printf("Google Sheets writer initialized for spreadsheet: %s\n", spreadsheetID)

	hotelClient := api.NewHotelClient(cfg.Services.HotelSearchURL, cfg.Timeout())
	resourceClient := api.NewResourceClient(cfg.Services.ResourceURL, cfg.Search.PageSize, cfg.Timeout())
	previewFetcher := preview.NewFetcher()

	// Initialize and start scheduler
	sched := scheduler.NewScheduler(database, bot, writer, hotelClient, cfg, spreadsheetURL)
	sched.Start()
	log.Println("Scheduler started")
	defer sched.Stop()

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateConfig.Offset = -1 // Skip updates that queued up while offline

	updates := bot.GetUpdatesChan(updateConfig)

	for update := range updates {
		// Handle callback queries (button presses)
		if update.CallbackQuery != nil {
			userID := update.CallbackQuery.From.ID
			if !userAllowed(userID) {
				log.Printf("Unauthorized user attempted to use callback: %d\n", userID)
				bot.Send(tgbotapi.NewCallback(update.CallbackQuery.ID, "Sorry, you are not authorized."))
				continue
			}

			if update.CallbackQuery.Message != nil {
				handleCallbackQuery(bot, database, update.CallbackQuery)
			}
			continue
		}

		if update.Message == nil {
			continue
		}

		userID := update.Message.From.ID
		chatID := update.Message.Chat.ID

		if update.Message.IsCommand() {
			command := update.Message.Command()
			if command != "start" && !userAllowed(userID) {
				log.Printf("Unauthorized user attempted to use command: %d\n", userID)
				bot.Send(tgbotapi.NewMessage(chatID, "Sorry, you are not authorized to use this bot."))
				continue
			}

			switch command {
			case "start":
				if !userAllowed(userID) {
					log.Printf("Unauthorized user attempted to use bot: %d\n", userID)
					bot.Send(tgbotapi.NewMessage(chatID, "Sorry, you are not authorized to use this bot."))
					continue
				}

				if _, err := database.GetUserConfig(userID); err != nil {
					log.Printf("Warning: Failed to initialize user config for user %d: %v\n", userID, err)
				}

				welcome := "Welcome! Send me a hotel search like \"Lagos, NG\" or \"Lagos, NG, beach\". Results will be added to Google Sheets."
				bot.Send(tgbotapi.NewMessage(chatID, welcome))

				spreadsheetMsg := tgbotapi.NewMessage(chatID, fmt.Sprintf("📊 Spreadsheet: %s", spreadsheetURL))
				sentSpreadsheetMsg, err := bot.Send(spreadsheetMsg)
				if err == nil {
					bot.Send(tgbotapi.PinChatMessageConfig{
						ChatID:    chatID,
						MessageID: sentSpreadsheetMsg.MessageID,
					})
				}
			case "help":
				helpText := "Commands:\n" +
					"/start - Start the bot\n" +
					"/help - Show this help\n" +
					"/config - Configure filter settings\n" +
					"/resources [term] - List shared resources, optionally filtered\n" +
					"/share <url> - Preview a resource link before sharing\n\n" +
					"Send \"City, CC\" (e.g. \"Lagos, NG\") to search hotels. Results are added to Google Sheets."
				bot.Send(tgbotapi.NewMessage(chatID, helpText))
			case "config":
				sendConfigMenu(bot, database, chatID, userID, 0)
			case "resources":
				handleResourcesCommand(bot, resourceClient, cfg, chatID, update.Message.CommandArguments())
			case "share":
				handleShareCommand(bot, previewFetcher, chatID, update.Message.CommandArguments())
			default:
				bot.Send(tgbotapi.NewMessage(chatID, "Unknown command. Use /help for available commands."))
			}
			continue
		}

		if !userAllowed(userID) {
			log.Printf("Unauthorized user attempted to use bot: %d\n", userID)
			bot.Send(tgbotapi.NewMessage(chatID, "Sorry, you are not authorized to use this bot."))
			continue
		}

		// Free-text messages are hotel search queries
		query, err := parseQueryMessage(update.Message.Text)
		if err != nil {
			// Input error: surfaced inline, no network call is made
			bot.Send(tgbotapi.NewMessage(chatID, err.Error()))
			continue
		}

		processingMsg := tgbotapi.NewMessage(chatID, "📝 Request received! Your search has been queued and will be processed shortly.")
		sentMsg, err := bot.Send(processingMsg)
		if err != nil {
			log.Printf("Error sending processing message: %v\n", err)
			continue
		}

		req, err := database.CreateRequest(userID, sentMsg.MessageID, query)
		if err != nil {
			log.Printf("Error creating request: %v\n", err)
			errorMsg := tgbotapi.NewEditMessageText(chatID, sentMsg.MessageID, fmt.Sprintf("❌ Error: Failed to create request: %v", err))
			bot.Send(errorMsg)
			continue
		}

		log.Printf("Created request ID %d for user %d\n", req.ID, userID)
	}
}

// parseQueryMessage parses "City, CC[, environment]" into a query.
// A missing city is an input error caught before any network call.
func parseQueryMessage(text string) (models.HotelQuery, error) {
	parts := strings.Split(text, ",")
	query := models.HotelQuery{}

	if len(parts) > 0 {
		query.City = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		query.Country = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		query.Environment = strings.TrimSpace(parts[2])
	}

	if query.City == "" {
		return models.HotelQuery{}, fmt.Errorf("Please send a search like \"Lagos, NG\" (city first).")
	}

	return query.Normalize(), nil
}

// handleResourcesCommand lists the first pages of shared resources,
// optionally filtered by a term
func handleResourcesCommand(bot *tgbotapi.BotAPI, client *api.ResourceClient, cfg *config.Config, chatID int64, term string) {
	view, err := listview.New(listview.Config[models.ResourceScope, models.Resource]{
		Fetch: func(ctx context.Context, scope models.ResourceScope, page int) (listview.Page[models.Resource], error) {
			items, info, err := client.List(ctx, scope, page)
			if err != nil {
				return listview.Page[models.Resource]{}, err
			}
			return listview.Page[models.Resource]{Items: items, HasMore: info.HasMore}, nil
		},
		Fields: func(r models.Resource) []string {
			return []string{r.Title, r.Category, preview.FlattenHTML(r.Description)}
		},
		Key: func(r models.Resource) string {
			return r.ID
		},
		Debounce: cfg.Debounce(),
	})
	if err != nil {
		log.Printf("Error creating resource view: %v\n", err)
		return
	}

	ctx := context.Background()
	if err := view.Submit(ctx, models.ScopeCurrent); err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, userMessage(err)))
		return
	}

	if view.State() == listview.StateEmpty {
		bot.Send(tgbotapi.NewMessage(chatID, "No resources have been shared yet."))
		return
	}

	loadAllPages(ctx, view, cfg.Search.MaxPages)

	if strings.TrimSpace(term) != "" {
		view.SetFilter(term)
	}

	visible := view.Visible()
	if len(visible) == 0 {
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("No resources match %q.", strings.TrimSpace(term))))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📚 %d resources:\n\n", len(visible)))
	for i, res := range visible {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, res.Title))
		if res.URL != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", res.URL))
		}
	}

	for _, part := range splitMessage(sb.String(), 4000) {
		bot.Send(tgbotapi.NewMessage(chatID, part))
	}
}

// handleShareCommand fetches a preview for a resource link the user wants
// to share
func handleShareCommand(bot *tgbotapi.BotAPI, fetcher *preview.Fetcher, chatID int64, args string) {
	url := strings.TrimSpace(args)
	if url == "" {
		bot.Send(tgbotapi.NewMessage(chatID, "Usage: /share <url>"))
		return
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		bot.Send(tgbotapi.NewMessage(chatID, "Please send a valid URL starting with http:// or https://"))
		return
	}

	p, err := fetcher.Fetch(url)
	if err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Could not fetch a preview: %v", err)))
		return
	}

	var sb strings.Builder
	sb.WriteString("🔗 Link preview:\n\n")
	if p.Title != "" {
		sb.WriteString(p.Title + "\n")
	}
	if p.Description != "" {
		sb.WriteString(p.Description + "\n")
	}
	if p.Title == "" && p.Description == "" {
		sb.WriteString("(no title or description found)\n")
	}
	sb.WriteString("\n" + url)
	bot.Send(tgbotapi.NewMessage(chatID, sb.String()))
}

// splitMessage splits a message into chunks of specified size
func splitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	lines := strings.Split(text, "\n")
	var current strings.Builder

	for _, line := range lines {
		if current.Len()+len(line)+1 > maxLen {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			for len(line) > maxLen {
				parts = append(parts, line[:maxLen])
				line = line[maxLen:]
			}
		}
		if len(line) > 0 {
			current.WriteString(line)
			current.WriteString("\n")
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
