// Package location resolves a caller's country from their IP address via a
// hosted geolocation API. Lookup failures fall back to a configured default
// country instead of failing the payment flow.
package location

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const lookupTimeout = 5 * time.Second

type Detector struct {
	baseURL         string
	token           string
	fallbackCountry string
	client          *http.Client
}

func NewDetector(baseURL, token, fallbackCountry string) *Detector {
	return &Detector{
		baseURL:         baseURL,
		token:           token,
		fallbackCountry: fallbackCountry,
		client:          &http.Client{Timeout: lookupTimeout},
	}
}

type lookupResponse struct {
	CountryCode string `json:"country_code"`
}

// Country resolves ip to an ISO 3166 country code. Any failure (network,
// non-200, unparseable body) returns the fallback country.
func (d *Detector) Country(ctx context.Context, ip string) string {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/%s?token=%s", d.baseURL, url.PathEscape(ip), url.QueryEscape(d.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return d.fallbackCountry
	}

	resp, err := d.client.Do(req)
	if err != nil {
		slog.Warn("geo lookup failed, using fallback", "ip", ip, "fallback", d.fallbackCountry, "error", err)
		return d.fallbackCountry
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("geo lookup non-200, using fallback", "ip", ip, "status", resp.StatusCode)
		return d.fallbackCountry
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.CountryCode == "" {
		slog.Warn("geo lookup unparseable, using fallback", "ip", ip)
		return d.fallbackCountry
	}

	return body.CountryCode
}
