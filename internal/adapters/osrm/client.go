// Package osrm implements ports.RouteProvider against an OSRM-compatible
// routing service.
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"mappy/internal/adapters/upstream"
	"mappy/internal/domain"
	"mappy/internal/platform/obs"
)

// DefaultProfiles maps travel modes to the public OSRM profile names.
func DefaultProfiles() map[domain.TravelMode]string {
	return map[domain.TravelMode]string{
		domain.ModeDriving: "driving",
		domain.ModeWalking: "foot",
		domain.ModeCycling: "bike",
	}
}

type Client struct {
	http     *upstream.Client
	baseURL  string
	profiles map[domain.TravelMode]string
}

// New returns a client for baseURL. A nil profiles map uses DefaultProfiles.
func New(baseURL, userAgent string, timeout time.Duration, profiles map[domain.TravelMode]string, hc *http.Client) *Client {
	if profiles == nil {
		profiles = DefaultProfiles()
	}
	return &Client{
		http:     upstream.New("osrm", userAgent, timeout, hc),
		baseURL:  strings.TrimRight(baseURL, "/"),
		profiles: profiles,
	}
}

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Distance float64           `json:"distance"`
		Duration float64           `json:"duration"`
		Geometry *geojson.Geometry `json:"geometry"`
	} `json:"routes"`
}

func (c *Client) profile(mode domain.TravelMode) (string, error) {
	p, ok := c.profiles[mode]
	if !ok || !mode.IsRoad() {
		return "", fmt.Errorf("%w: no routing profile for %q", domain.ErrInvalidMode, mode)
	}
	return p, nil
}

// Route fetches the fastest road route for mode with a single request.
func (c *Client) Route(
	ctx context.Context,
	mode domain.TravelMode,
	from, to domain.Coordinate,
) (_ domain.RouteEstimate, err error) {
	defer obs.Time(ctx, "osrm.Route")(&err)

	profile, err := c.profile(mode)
	if err != nil {
		return domain.RouteEstimate{}, err
	}
	if err := from.Validate(); err != nil {
		return domain.RouteEstimate{}, err
	}
	if err := to.Validate(); err != nil {
		return domain.RouteEstimate{}, err
	}

	endpoint := fmt.Sprintf("%s/route/v1/%s/%.6f,%.6f;%.6f,%.6f",
		c.baseURL, url.PathEscape(profile), from.Lon, from.Lat, to.Lon, to.Lat)

	req, err := c.http.NewRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.RouteEstimate{}, fmt.Errorf("osrm route: %w", err)
	}
	req.URL.RawQuery = url.Values{
		"overview":   {"full"},
		"geometries": {"geojson"},
	}.Encode()

	op := "osrm route " + string(mode)
	resp, err := c.http.Do(req, op)
	if err != nil {
		return domain.RouteEstimate{}, err
	}
	defer resp.Body.Close()

	var decoded routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.RouteEstimate{}, c.http.DecodeError(op, err)
	}

	switch {
	case decoded.Code == "NoRoute":
		c.http.Record("not_found")
		return domain.RouteEstimate{}, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case decoded.Code != "Ok":
		return domain.RouteEstimate{}, c.http.DecodeError(op, fmt.Errorf("code %q: %s", decoded.Code, decoded.Message))
	case len(decoded.Routes) == 0:
		c.http.Record("not_found")
		return domain.RouteEstimate{}, fmt.Errorf("%s: no routes: %w", op, domain.ErrNotFound)
	}

	best := decoded.Routes[0]
	path, err := pathFromGeometry(best.Geometry)
	if err != nil {
		return domain.RouteEstimate{}, c.http.DecodeError(op, err)
	}

	c.http.Record("ok")
	return domain.RouteEstimate{
		Mode:            mode,
		DistanceMeters:  best.Distance,
		DurationSeconds: best.Duration,
		Path:            path,
	}, nil
}

func pathFromGeometry(g *geojson.Geometry) ([]domain.Coordinate, error) {
	if g == nil {
		return nil, fmt.Errorf("route has no geometry")
	}
	ls, ok := g.Geometry().(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("unexpected geometry type %q", g.Type)
	}
	if len(ls) < 2 {
		return nil, fmt.Errorf("route geometry has %d points", len(ls))
	}

	path := make([]domain.Coordinate, len(ls))
	for i, p := range ls {
		path[i] = domain.Coordinate{Lat: p.Lat(), Lon: p.Lon()}
	}
	return path, nil
}
