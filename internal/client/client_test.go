package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mappy/internal/domain"
)

func serve(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", time.Second, nil)
}

func TestSearch(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/search", r.URL.Path)
		w.Write([]byte(`{"success":true,"location":{"lat":33.4255,"lon":-111.94,"display_name":"Tempe"}}`))
	})

	dest, err := c.Search(context.Background(), "tempe")
	require.NoError(t, err)
	assert.Equal(t, "Tempe", dest.DisplayName)
	assert.InDelta(t, -111.94, dest.Lon, 1e-9)
}

func TestSearchEmptyQuerySendsNothing(t *testing.T) {
	hits := 0
	c := serve(t, func(w http.ResponseWriter, r *http.Request) { hits++ })

	_, err := c.Search(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrEmptyQuery)
	assert.Zero(t, hits)
}

func TestSearchNotFoundAndTransport(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"success":false,"error":"not found"}`, http.StatusNotFound)
	})
	_, err := c.Search(context.Background(), "atlantis")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, domain.IsTransport(err))

	c = serve(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})
	_, err = c.Search(context.Background(), "tempe")
	assert.True(t, domain.IsTransport(err))
}

func TestReverse(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "33.448400", r.URL.Query().Get("lat"))
		w.Write([]byte(`{"success":true,"name":"Phoenix"}`))
	})

	name, err := c.Reverse(context.Background(), domain.Coordinate{Lat: 33.4484, Lon: -112.074})
	require.NoError(t, err)
	assert.Equal(t, "Phoenix", name)
}

func TestRoute(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"route":{"mode":"walking","distance":1200,"duration":900,
			"geometry":[[-112.0,33.0],[-112.1,33.1],[-112.2,33.2]],"is_straight_line":false}}`))
	})

	est, err := c.Route(context.Background(), domain.ModeWalking,
		domain.Coordinate{Lat: 33, Lon: -112}, domain.Coordinate{Lat: 33.2, Lon: -112.2})
	require.NoError(t, err)
	assert.Equal(t, domain.ModeWalking, est.Mode)
	assert.Equal(t, 1200.0, est.DistanceMeters)
	require.Len(t, est.Path, 3)
	assert.Equal(t, domain.Coordinate{Lat: 33.1, Lon: -112.1}, est.Path[1])
}

func TestRouteFlyingIsStraightLine(t *testing.T) {
	c := serve(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"route":{"mode":"flying","distance":111195,"duration":500,"is_straight_line":true}}`))
	})

	est, err := c.Route(context.Background(), domain.ModeFlying,
		domain.Coordinate{Lat: 0, Lon: 0}, domain.Coordinate{Lat: 0, Lon: 1})
	require.NoError(t, err)
	assert.True(t, est.IsStraightLine())
}

func TestRouteInvalidModeSendsNothing(t *testing.T) {
	hits := 0
	c := serve(t, func(w http.ResponseWriter, r *http.Request) { hits++ })

	_, err := c.Route(context.Background(), "teleport", domain.Coordinate{}, domain.Coordinate{})
	assert.ErrorIs(t, err, domain.ErrInvalidMode)
	assert.Zero(t, hits)
}
