package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"travel-helper/models"

	"github.com/google/uuid"
)

// HotelClient talks to the hotel-search service
type HotelClient struct {
	baseURL string
	http    *http.Client
}

// NewHotelClient creates a client for the hotel-search service
func NewHotelClient(baseURL string, timeout time.Duration) *HotelClient {
	return &HotelClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// hotelSearchResponse is the wire shape of the hotel-search endpoint
type hotelSearchResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Hotels     []models.Hotel    `json:"hotels"`
	SearchInfo models.SearchInfo `json:"searchInfo"`
}

// Search fetches one page of hotel results for the given query.
// The query is normalized (trimmed, country uppercased) before being sent.
func (c *HotelClient) Search(ctx context.Context, query models.HotelQuery, page int) ([]models.Hotel, models.SearchInfo, error) {
	query = query.Normalize()

	params := url.Values{}
	params.Set("city", query.City)
	params.Set("country", query.Country)
	if query.Environment != "" {
		params.Set("environment", query.Environment)
	}
	params.Set("page", strconv.Itoa(page))

	var resp hotelSearchResponse
	if err := getJSON(ctx, c.http, c.baseURL+"/search?"+params.Encode(), &resp); err != nil {
		return nil, models.SearchInfo{}, err
	}

	if !resp.Success {
		return nil, models.SearchInfo{}, &Error{Message: resp.Message}
	}

	return resp.Hotels, resp.SearchInfo, nil
}

// ResourceClient talks to the shared-resource service, which paginates with
// offset/limit instead of page numbers
type ResourceClient struct {
	baseURL  string
	pageSize int
	http     *http.Client
}

// NewResourceClient creates a client for the resource service
func NewResourceClient(baseURL string, pageSize int, timeout time.Duration) *ResourceClient {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &ResourceClient{
		baseURL:  baseURL,
		pageSize: pageSize,
		http:     &http.Client{Timeout: timeout},
	}
}

// resourceListResponse is the wire shape of the resource listing endpoint
type resourceListResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Items      []models.Resource `json:"items"`
	SearchInfo models.SearchInfo `json:"searchInfo"`
}

// List fetches one page of shared resources for the given scope. The page
// number is translated to offset/limit on the wire.
func (c *ResourceClient) List(ctx context.Context, scope models.ResourceScope, page int) ([]models.Resource, models.SearchInfo, error) {
	params := url.Values{}
	params.Set("scope", string(scope))
	params.Set("offset", strconv.Itoa(page*c.pageSize))
	params.Set("limit", strconv.Itoa(c.pageSize))

	var resp resourceListResponse
	if err := getJSON(ctx, c.http, c.baseURL+"/resources?"+params.Encode(), &resp); err != nil {
		return nil, models.SearchInfo{}, err
	}

	if !resp.Success {
		return nil, models.SearchInfo{}, &Error{Message: resp.Message}
	}

	return resp.Items, resp.SearchInfo, nil
}

// getJSON performs a GET and decodes the JSON body into out. Non-2xx
// statuses become TransportError (401 becomes ErrUnauthorized); decode
// failures are transport errors too, since a malformed body must not
// mutate caller state.
func getJSON(ctx context.Context, client *http.Client, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := client.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}
