/*
 * Copyright (c) 2025, IntelliWeather.
 *
 * IntelliWeather licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package weather proxies the upstream forecast provider with cache-first
// reads, request deduplication and outbound throttling.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/intelliweather/intelliweather/internal/system/config"
	syshttp "github.com/intelliweather/intelliweather/internal/system/http"
	"github.com/intelliweather/intelliweather/internal/system/log"
)

// Payload is a decoded upstream JSON document. Callers must treat it as
// read-only once it has been cached.
type Payload = map[string]interface{}

// Forecast data types.
const (
	DataTypeCurrent    = "current"
	DataTypeHourly     = "hourly"
	DataTypeDaily      = "daily"
	DataTypeAirQuality = "aqi"
)

// ClientInterface defines the upstream provider operations.
type ClientInterface interface {
	// FetchForecast retrieves forecast data of the given type for a coordinate.
	FetchForecast(ctx context.Context, lat, lon float64, dataType string) (Payload, error)
	// SearchLocations resolves a place name to candidate coordinates.
	SearchLocations(ctx context.Context, query string) (Payload, error)
}

// Client implements ClientInterface against the Open-Meteo APIs. Outbound
// requests share a token bucket so a burst of cache misses cannot flood the
// upstream provider.
type Client struct {
	httpClient    syshttp.HTTPClientInterface
	forecastURL   string
	airQualityURL string
	geocodingURL  string
	throttle      *rate.Limiter
}

// NewClient creates an upstream client from the given configuration.
func NewClient(cfg config.UpstreamConfig) *Client {
	burst := int(cfg.RequestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient:    syshttp.NewHTTPClientWithTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second),
		forecastURL:   cfg.ForecastURL,
		airQualityURL: cfg.AirQualityURL,
		geocodingURL:  cfg.GeocodingURL,
		throttle:      rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst),
	}
}

// FetchForecast retrieves forecast data of the given type for a coordinate.
func (c *Client) FetchForecast(ctx context.Context, lat, lon float64, dataType string) (Payload, error) {
	params := url.Values{}
	params.Set("latitude", formatCoordinate(lat))
	params.Set("longitude", formatCoordinate(lon))

	baseURL := c.forecastURL
	switch dataType {
	case DataTypeCurrent:
		params.Set("current_weather", "true")
	case DataTypeHourly:
		params.Set("hourly", "temperature_2m,relative_humidity_2m,precipitation,weather_code")
		params.Set("forecast_days", "7")
	case DataTypeDaily:
		params.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,weather_code")
		params.Set("forecast_days", "7")
		params.Set("timezone", "auto")
	case DataTypeAirQuality:
		baseURL = c.airQualityURL
		params.Set("hourly", "pm10,pm2_5,ozone,european_aqi")
	default:
		return nil, fmt.Errorf("unknown forecast data type: %s", dataType)
	}

	return c.fetch(ctx, baseURL, params)
}

// SearchLocations resolves a place name to candidate coordinates.
func (c *Client) SearchLocations(ctx context.Context, query string) (Payload, error) {
	params := url.Values{}
	params.Set("name", query)
	params.Set("count", "10")

	return c.fetch(ctx, c.geocodingURL, params)
}

// fetch performs a throttled GET against the upstream and decodes the JSON body.
func (c *Client) fetch(ctx context.Context, baseURL string, params url.Values) (Payload, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "WeatherClient"))

	if err := c.throttle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("upstream throttle wait aborted: %w", err)
	}

	requestURL := baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Error("Error closing upstream response body", log.Error(closeErr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return payload, nil
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
