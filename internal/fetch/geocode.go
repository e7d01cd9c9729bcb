package fetch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/coreyshath-a11y/aeo-app/internal/logger"
)

// nominatimEndpoint is the OpenStreetMap Nominatim search API.
const nominatimEndpoint = "https://nominatim.openstreetmap.org/search"

// minGeocodeQueryLen rejects fragments too short to be an address.
const minGeocodeQueryLen = 5

// GeocodeResult is the outcome of resolving an address.
type GeocodeResult struct {
	Found       bool
	Lat         float64
	Lon         float64
	DisplayName string
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocoder resolves postal addresses via Nominatim. Requests are
// serialized through a rate limiter because the public Nominatim instance
// requires at most one request per second per client. It never returns an
// error; failures yield Found=false.
type Geocoder struct {
	client    *http.Client
	limiter   *rate.Limiter
	endpoint  string
	userAgent string
	log       logger.Interface
}

// NewGeocoder creates a geocoder that waits at least interval between
// requests.
func NewGeocoder(timeout, interval time.Duration, userAgent string, log logger.Interface) *Geocoder {
	return &Geocoder{
		client:    &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		endpoint:  nominatimEndpoint,
		userAgent: userAgent,
		log:       log,
	}
}

// Lookup resolves address to coordinates. Blank or near-blank addresses
// are rejected without a network call.
func (g *Geocoder) Lookup(ctx context.Context, address string) GeocodeResult {
	if len(address) < minGeocodeQueryLen {
		return GeocodeResult{}
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return GeocodeResult{}
	}

	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		g.endpoint+"?"+params.Encode(), http.NoBody)
	if err != nil {
		return GeocodeResult{}
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Debug("geocode failed", "address", address, "error", err)
		return GeocodeResult{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GeocodeResult{}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 256*1024))
	if err != nil {
		return GeocodeResult{}
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil || len(places) == 0 {
		return GeocodeResult{}
	}

	lat, latErr := strconv.ParseFloat(places[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(places[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		return GeocodeResult{}
	}

	return GeocodeResult{
		Found:       true,
		Lat:         lat,
		Lon:         lon,
		DisplayName: places[0].DisplayName,
	}
}
