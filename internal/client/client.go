// Package client talks to a running mappy server over its JSON API. It
// satisfies the same ports as the Nominatim and OSRM adapters, so a
// controller can run against a remote proxy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"mappy/internal/adapters/upstream"
	"mappy/internal/api/dto"
	"mappy/internal/domain"
	"mappy/internal/platform/obs"
)

type Client struct {
	baseURL string
	http    *upstream.Client
}

func New(baseURL string, timeout time.Duration, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    upstream.New("mappy", "mappy-cli/1.0", timeout, hc),
	}
}

// post sends body as JSON and decodes the answer into out. A 404 becomes
// domain.ErrNotFound.
func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}

	req, err := c.http.NewRequest(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	resp, err := c.http.Do(req, op)
	if err != nil {
		if upstream.IsStatus(err, http.StatusNotFound) {
			c.http.Record("not_found")
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.http.DecodeError(op, err)
	}
	c.http.Record("ok")
	return nil
}

func (c *Client) Search(ctx context.Context, query string) (_ domain.Destination, err error) {
	defer obs.Time(ctx, "client.Search")(&err)

	if strings.TrimSpace(query) == "" {
		return domain.Destination{}, domain.ErrEmptyQuery
	}

	var res dto.SearchResponse
	if err := c.post(ctx, "mappy search", "/api/search", dto.SearchRequest{Query: query}, &res); err != nil {
		return domain.Destination{}, err
	}
	if !res.Success || res.Location == nil {
		return domain.Destination{}, fmt.Errorf("mappy search %q: %w", query, domain.ErrNotFound)
	}
	return res.Location.ToDomain(), nil
}

func (c *Client) Reverse(ctx context.Context, at domain.Coordinate) (_ string, err error) {
	defer obs.Time(ctx, "client.Reverse")(&err)

	if err := at.Validate(); err != nil {
		return "", err
	}

	req, err := c.http.NewRequest(ctx, http.MethodGet, c.baseURL+"/api/reverse", nil)
	if err != nil {
		return "", fmt.Errorf("mappy reverse: %w", err)
	}
	req.URL.RawQuery = url.Values{
		"lat": {strconv.FormatFloat(at.Lat, 'f', 6, 64)},
		"lon": {strconv.FormatFloat(at.Lon, 'f', 6, 64)},
	}.Encode()

	var res dto.ReverseResponse
	if err := c.do(req, "mappy reverse", &res); err != nil {
		return "", err
	}
	return res.Name, nil
}

// Route asks the server for one mode; flying is estimated server-side too.
func (c *Client) Route(
	ctx context.Context,
	mode domain.TravelMode,
	from, to domain.Coordinate,
) (_ domain.RouteEstimate, err error) {
	defer obs.Time(ctx, "client.Route")(&err)

	if !mode.IsValid() {
		return domain.RouteEstimate{}, fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
	}

	body := dto.RouteRequest{
		Start:   dto.Point{Lat: from.Lat, Lon: from.Lon},
		End:     dto.Point{Lat: to.Lat, Lon: to.Lon},
		Profile: string(mode),
	}

	var res dto.RouteResponse
	if err := c.post(ctx, "mappy route", "/api/route", body, &res); err != nil {
		return domain.RouteEstimate{}, err
	}
	if !res.Success || res.Route == nil {
		return domain.RouteEstimate{}, fmt.Errorf("mappy route %s: %w", mode, domain.ErrNotFound)
	}

	est := res.Route.ToDomain()
	est.Mode = mode
	return est, nil
}
