package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"travel-helper/api"
	"travel-helper/config"
	"travel-helper/filter"
	"travel-helper/listview"
	"travel-helper/models"
	"travel-helper/preview"
	"travel-helper/sheets"
)

type cliOptions struct {
	city            string
	country         string
	environment     string
	resources       string
	filterTerm      string
	spreadsheetURL  string
	credentialsPath string
}

// runCLIMode runs one search (hotels or resources) and prints the results
func runCLIMode(cfg *config.Config, opts cliOptions) {
	if opts.resources != "" {
		runResourceList(cfg, opts)
		return
	}

	query := models.HotelQuery{
		City:        opts.city,
		Country:     opts.country,
		Environment: opts.environment,
	}
	if query.IsZero() {
		log.Fatalln("Error: a city or country is required (use -city and -country)")
	}

	client := api.NewHotelClient(cfg.Services.HotelSearchURL, cfg.Timeout())

	view, err := listview.New(listview.Config[models.HotelQuery, models.Hotel]{
		Fetch: func(ctx context.Context, q models.HotelQuery, page int) (listview.Page[models.Hotel], error) {
			hotels, info, err := client.Search(ctx, q, page)
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
		Debounce: cfg.Debounce(),
	})
	if err != nil {
		log.Fatalf("Failed to create list view: %v\n", err)
	}

	ctx := context.Background()
	if err := view.Submit(ctx, query); err != nil {
		log.Fatalf("Search failed: %s\n", userMessage(err))
	}

	if view.State() == listview.StateEmpty {
		fmt.Println("No hotels found.")
		return
	}

	loadAllPages(ctx, view, cfg.Search.MaxPages)

	// Client-side text filter only searches what has already been loaded
	if opts.filterTerm != "" {
		view.SetFilter(opts.filterTerm)
	}

	allHotels := view.Items()
	criteria := filter.NewCriteria(cfg)
	visibleHotels := criteria.Apply(view.Visible())

	fmt.Printf("Found %d hotels before filtering\n", len(allHotels))
	fmt.Printf("Found %d hotels after filtering\n", len(visibleHotels))
	fmt.Println("---")

	if len(visibleHotels) == 0 {
		fmt.Println("No hotels match the filter criteria.")
		return
	}

	fmt.Println("Hotels:")
	fmt.Println("=======")
	formatHotelsConsole(visibleHotels)

	if opts.spreadsheetURL != "" {
		exportToSheets(cfg, opts, query, visibleHotels)
	}
}

// loadAllPages keeps loading pages through the trigger until the list is
// exhausted or maxPages is reached
func loadAllPages[Q, T any](ctx context.Context, view *listview.View[Q, T], maxPages int) {
	pages := 1
	for pages < maxPages && view.LoadMoreArmed() {
		issued, err := view.TryLoadMore(ctx)
		if err != nil {
			log.Printf("Warning: Failed to load page %d: %s\n", pages+1, userMessage(err))
			break
		}
		if !issued {
			// Dropped by the debounce; wait it out instead of spinning
			time.Sleep(10 * time.Millisecond)
			continue
		}
		pages++
	}
}

// runResourceList lists shared community resources for a scope
func runResourceList(cfg *config.Config, opts cliOptions) {
	scope := models.ResourceScope(opts.resources)
	if scope != models.ScopeCurrent && scope != models.ScopeArchive {
		log.Fatalf("Error: unknown resource scope %q (use 'current' or 'archive')\n", opts.resources)
	}

	client := api.NewResourceClient(cfg.Services.ResourceURL, cfg.Search.PageSize, cfg.Timeout())

	view, err := listview.New(listview.Config[models.ResourceScope, models.Resource]{
		Fetch: func(ctx context.Context, s models.ResourceScope, page int) (listview.Page[models.Resource], error) {
			items, info, err := client.List(ctx, s, page)
			if err != nil {
				return listview.Page[models.Resource]{}, err
			}
			return listview.Page[models.Resource]{Items: items, HasMore: info.HasMore}, nil
		},
		Fields: func(r models.Resource) []string {
			// Descriptions may carry HTML from the share form
			return []string{r.Title, r.Category, preview.FlattenHTML(r.Description)}
		},
		Key: func(r models.Resource) string {
			return r.ID
		},
		Debounce: cfg.Debounce(),
	})
	if err != nil {
		log.Fatalf("Failed to create list view: %v\n", err)
	}

	ctx := context.Background()
	if err := view.Submit(ctx, scope); err != nil {
		log.Fatalf("Listing failed: %s\n", userMessage(err))
	}

	if view.State() == listview.StateEmpty {
		fmt.Println("No resources found.")
		return
	}

	loadAllPages(ctx, view, cfg.Search.MaxPages)

	if opts.filterTerm != "" {
		view.SetFilter(opts.filterTerm)
	}

	visible := view.Visible()
	fmt.Printf("Found %d resources (%d loaded)\n", len(visible), len(view.Items()))
	fmt.Println("---")

	for i, res := range visible {
		fmt.Printf("\n%d. %s\n", i+1, res.Title)
		if res.URL != "" {
			fmt.Printf("   Link: %s\n", res.URL)
		}
		if res.Category != "" {
			fmt.Printf("   Category: %s\n", res.Category)
		}
		if desc := preview.FlattenHTML(res.Description); desc != "" {
			fmt.Printf("   %s\n", desc)
		}
	}
}

// exportToSheets writes the filtered hotels to a new sheet
func exportToSheets(cfg *config.Config, opts cliOptions, query models.HotelQuery, hotels []models.Hotel) {
	spreadsheetID := sheets.ExtractSpreadsheetID(opts.spreadsheetURL)
	if spreadsheetID == "" {
		log.Printf("Warning: Could not extract spreadsheet ID from URL: %s\n", opts.spreadsheetURL)
		return
	}

	writer, err := sheets.NewWriter(spreadsheetID, opts.credentialsPath)
	if err != nil {
		log.Printf("Warning: Failed to initialize Google Sheets writer: %v\n", err)
		return
	}

	query = query.Normalize()
	queryInfo := fmt.Sprintf("%s, %s", query.City, query.Country)
	filterInfo := fmt.Sprintf("Min Reviews: %d, Min Price: %.2f, Max Price: %.2f, Min Stars: %.2f",
		cfg.Filters.MinReviews, cfg.Filters.MinPrice, cfg.Filters.MaxPrice, cfg.Filters.MinStars)

	sheetName := fmt.Sprintf("CLI_%s", time.Now().Format("20060102_150405"))

	_, _, err = writer.CreateSheetAndWriteHotels(sheetName, hotels, queryInfo, filterInfo)
	if err != nil {
		log.Printf("Warning: Failed to write to Google Sheets: %v\n", err)
	} else {
		fmt.Printf("\nSuccessfully wrote %d hotels to Google Sheets\n", len(hotels))
	}
}

// formatHotelsConsole formats hotels for console output
func formatHotelsConsole(hotels []models.Hotel) {
	for i, hotel := range hotels {
		fmt.Printf("\n%d. %s\n", i+1, hotel.Name)

		if hotel.Address != "" {
			fmt.Printf("   Address: %s\n", hotel.Address)
		}

		if hotel.Price > 0 {
			currency := hotel.Currency
			if currency == "" {
				currency = "USD"
			}
			switch currency {
			case "USD", "$":
				fmt.Printf("   Price: $%.2f\n", hotel.Price)
			case "EUR", "€":
				fmt.Printf("   Price: €%.2f\n", hotel.Price)
			case "NGN", "₦":
				fmt.Printf("   Price: ₦%.0f\n", hotel.Price)
			case "GBP", "£":
				fmt.Printf("   Price: £%.2f\n", hotel.Price)
			default:
				fmt.Printf("   Price: %s %.2f\n", currency, hotel.Price)
			}
		} else {
			fmt.Printf("   Price: Not available\n")
		}

		if hotel.Stars > 0 {
			fmt.Printf("   Rating: %g\n", hotel.Stars)
		}

		if hotel.ReviewCount > 0 {
			fmt.Printf("   Review count: %d\n", hotel.ReviewCount)
		}
	}
}
