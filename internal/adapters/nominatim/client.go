// Package nominatim implements geocoding against a Nominatim-compatible service.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mappy/internal/adapters/upstream"
	"mappy/internal/domain"
	"mappy/internal/platform/obs"
)

// Client implements ports.Geocoder and ports.ReverseGeocoder.
// It is safe for concurrent use.
type Client struct {
	http    *upstream.Client
	baseURL string
}

func New(baseURL, userAgent string, timeout time.Duration, hc *http.Client) *Client {
	return &Client{
		http:    upstream.New("nominatim", userAgent, timeout, hc),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type reverseResult struct {
	Error   string `json:"error"`
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		County  string `json:"county"`
	} `json:"address"`
}

// normalize collapses whitespace so equal queries produce equal requests.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Search resolves query to its best match with a single request.
func (c *Client) Search(ctx context.Context, query string) (_ domain.Destination, err error) {
	defer obs.Time(ctx, "nominatim.Search")(&err)

	q := normalize(query)
	if q == "" {
		return domain.Destination{}, domain.ErrEmptyQuery
	}

	req, err := c.http.NewRequest(ctx, http.MethodGet, c.baseURL+"/search", nil)
	if err != nil {
		return domain.Destination{}, fmt.Errorf("nominatim search: %w", err)
	}
	params := url.Values{
		"q":      {q},
		"format": {"json"},
		"limit":  {"1"},
	}
	req.URL.RawQuery = params.Encode()

	resp, err := c.http.Do(req, "nominatim search")
	if err != nil {
		return domain.Destination{}, err
	}
	defer resp.Body.Close()

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.Destination{}, c.http.DecodeError("nominatim search", err)
	}

	if len(results) == 0 {
		c.http.Record("not_found")
		return domain.Destination{}, fmt.Errorf("nominatim search %q: %w", q, domain.ErrNotFound)
	}

	best := results[0]
	lat, err := strconv.ParseFloat(best.Lat, 64)
	if err != nil {
		return domain.Destination{}, c.http.DecodeError("nominatim search", fmt.Errorf("latitude %q: %w", best.Lat, err))
	}
	lon, err := strconv.ParseFloat(best.Lon, 64)
	if err != nil {
		return domain.Destination{}, c.http.DecodeError("nominatim search", fmt.Errorf("longitude %q: %w", best.Lon, err))
	}

	dest := domain.Destination{
		Coordinate:  domain.Coordinate{Lat: lat, Lon: lon},
		DisplayName: best.DisplayName,
	}
	if err := dest.Validate(); err != nil {
		return domain.Destination{}, c.http.DecodeError("nominatim search", err)
	}

	c.http.Record("ok")
	return dest, nil
}

// Reverse returns the settlement name (city, town, village or county) for at.
func (c *Client) Reverse(ctx context.Context, at domain.Coordinate) (_ string, err error) {
	defer obs.Time(ctx, "nominatim.Reverse")(&err)

	if err := at.Validate(); err != nil {
		return "", err
	}

	req, err := c.http.NewRequest(ctx, http.MethodGet, c.baseURL+"/reverse", nil)
	if err != nil {
		return "", fmt.Errorf("nominatim reverse: %w", err)
	}
	params := url.Values{
		"format": {"json"},
		"lat":    {strconv.FormatFloat(at.Lat, 'f', 6, 64)},
		"lon":    {strconv.FormatFloat(at.Lon, 'f', 6, 64)},
	}
	req.URL.RawQuery = params.Encode()

	resp, err := c.http.Do(req, "nominatim reverse")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var decoded reverseResult
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", c.http.DecodeError("nominatim reverse", err)
	}

	if decoded.Error != "" {
		c.http.Record("not_found")
		return "", fmt.Errorf("nominatim reverse %s: %s: %w", at, decoded.Error, domain.ErrNotFound)
	}

	c.http.Record("ok")
	a := decoded.Address
	for _, name := range []string{a.City, a.Town, a.Village, a.County} {
		if name != "" {
			return name, nil
		}
	}
	return "Unknown", nil
}
