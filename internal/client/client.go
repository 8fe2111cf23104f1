// Package client is a typed HTTP client of the geoweather API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexivanou/geoweather-api/internal/model"
)

// APIError is a non-2xx answer of the API
type APIError struct {
	Status  int
	Code    model.ErrorCode
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// Client calls the API at a base URL
type Client struct {
	baseURL  string
	clientID string
	http     *http.Client
}

// New creates a client. clientID namespaces the recent places kept by the server.
func New(baseURL, clientID string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		http:     &http.Client{Timeout: timeout},
	}
}

// Suggest returns place suggestions for a partial query
func (c *Client) Suggest(ctx context.Context, query, lang string) ([]model.PlaceSuggestion, error) {
	var resp model.SuggestResponse
	err := c.get(ctx, "/api/v1/suggest", url.Values{"q": {query}, "lang": {lang}}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// ForecastByName returns the forecast of a named city
func (c *Client) ForecastByName(ctx context.Context, city, lang string) (*model.ForecastResponse, error) {
	var resp model.ForecastResponse
	if err := c.get(ctx, "/api/v1/weather", url.Values{"city": {city}, "lang": {lang}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ForecastByCoords returns the forecast of a coordinate
func (c *Client) ForecastByCoords(ctx context.Context, lat, lon float64, lang string) (*model.ForecastResponse, error) {
	params := url.Values{
		"lat":  {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon":  {strconv.FormatFloat(lon, 'f', -1, 64)},
		"lang": {lang},
	}
	var resp model.ForecastResponse
	if err := c.get(ctx, "/api/v1/geolocation", params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Recent returns the server-side recent places of lang
func (c *Client) Recent(ctx context.Context, lang string) ([]model.RecentPlace, error) {
	var resp model.RecentResponse
	if err := c.get(ctx, "/api/v1/recent", url.Values{"lang": {lang}}, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// AddRecent records a selected place on the server
func (c *Client) AddRecent(ctx context.Context, lang string, place model.RecentPlace) ([]model.RecentPlace, error) {
	body, err := json.Marshal(place)
	if err != nil {
		return nil, err
	}
	var resp model.RecentResponse
	err = c.do(ctx, http.MethodPost, "/api/v1/recent", url.Values{"lang": {lang}}, bytes.NewReader(body), &resp)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Languages returns the languages the server supports
func (c *Client) Languages(ctx context.Context) ([]model.Language, error) {
	var resp struct {
		Languages []model.Language `json:"languages"`
	}
	if err := c.get(ctx, "/api/v1/languages", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Languages, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body io.Reader, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.clientID != "" {
		req.Header.Set("X-Client-ID", c.clientID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var payload model.ErrorResponse
		if json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload) == nil {
			apiErr.Code = payload.ErrorCode
			apiErr.Message = payload.Message
		}
		return apiErr
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
