package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// API Docs: https://nominatim.org/release-docs/develop/api/Reverse/
// Sample request: https://nominatim.openstreetmap.org/reverse?lat=51.50&lon=-0.12&format=json
const nominatimBaseURL = "https://nominatim.openstreetmap.org/reverse"

// nominatimResponse is the subset of the reverse lookup payload we read.
type nominatimResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Address     struct {
		City        string `json:"city"`
		Town        string `json:"town"`
		Village     string `json:"village"`
		Suburb      string `json:"suburb"`
		County      string `json:"county"`
		Country     string `json:"country"`
		CountryCode string `json:"country_code"`
	} `json:"address"`
	Error string `json:"error"`
}

// NominatimGeocoder reverse geocodes through OpenStreetMap Nominatim.
type NominatimGeocoder struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

func NewNominatimGeocoder(client *http.Client, baseURL, userAgent string) *NominatimGeocoder {
	if client == nil {
		client = &http.Client{}
	}
	if baseURL == "" {
		baseURL = nominatimBaseURL
	}
	return &NominatimGeocoder{httpClient: client, baseURL: baseURL, userAgent: userAgent}
}

func (g *NominatimGeocoder) Lookup(ctx context.Context, latitude, longitude float64) (*Place, error) {
	u, err := url.Parse(g.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("lat", fmt.Sprintf("%f", latitude))
	q.Set("lon", fmt.Sprintf("%f", longitude))
	q.Set("format", "json")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	// Nominatim's usage policy requires an identifying agent.
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("fetch returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp nominatimResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if apiResp.Error != "" {
		return nil, fmt.Errorf("reverse lookup failed: %s", apiResp.Error)
	}

	return translatePlace(&apiResp), nil
}

// translatePlace prefers the most specific settlement name available.
func translatePlace(resp *nominatimResponse) *Place {
	city := firstNonEmpty(resp.Address.City, resp.Address.Town, resp.Address.Village, resp.Address.Suburb, resp.Address.County)
	return &Place{City: city, Country: resp.Address.Country}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
