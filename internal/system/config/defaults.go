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

package config

// Subscription tier names.
const (
	TierFree       = "free"
	TierPro        = "pro"
	TierBusiness   = "business"
	TierEnterprise = "enterprise"
)

const (
	// DefaultCacheTTL is the default TTL for cache entries in seconds.
	DefaultCacheTTL = 3600
	// DefaultCacheMaxSize is the default maximum number of cache entries.
	DefaultCacheMaxSize = 1000
	// DefaultCacheCleanupInterval is the default interval between cache sweeps in seconds.
	DefaultCacheCleanupInterval = 300

	// DefaultRequestsPerWindow is the default per-IP request quota per window.
	DefaultRequestsPerWindow = 60
	// DefaultWindowSeconds is the default per-IP rate limit window in seconds.
	DefaultWindowSeconds = 60
	// DefaultLimiterCleanupInterval is the default interval between limiter sweeps in seconds.
	DefaultLimiterCleanupInterval = 300

	// DefaultUpstreamTimeoutSeconds is the default timeout for upstream requests in seconds.
	DefaultUpstreamTimeoutSeconds = 30
	// DefaultUpstreamRequestsPerSecond is the default outbound request rate to the upstream provider.
	DefaultUpstreamRequestsPerSecond = 10
)

// Default upstream endpoints (Open-Meteo).
const (
	DefaultForecastURL   = "https://api.open-meteo.com/v1/forecast"
	DefaultAirQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"
	DefaultGeocodingURL  = "https://geocoding-api.open-meteo.com/v1/search"
)

// DefaultTierQuotas returns the built-in hour/day/month quotas per subscription tier.
func DefaultTierQuotas() map[string]TierQuota {
	return map[string]TierQuota{
		TierFree:       {RequestsPerHour: 60, RequestsPerDay: 1000, RequestsPerMonth: 10000},
		TierPro:        {RequestsPerHour: 600, RequestsPerDay: 10000, RequestsPerMonth: 250000},
		TierBusiness:   {RequestsPerHour: 3000, RequestsPerDay: 50000, RequestsPerMonth: 1000000},
		TierEnterprise: {RequestsPerHour: 10000, RequestsPerDay: 200000, RequestsPerMonth: 5000000},
	}
}

// applyDefaults clamps missing or non-positive configuration values to their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Cache.DefaultTTL <= 0 {
		cfg.Cache.DefaultTTL = DefaultCacheTTL
	}
	if cfg.Cache.MaxSize <= 0 {
		cfg.Cache.MaxSize = DefaultCacheMaxSize
	}
	if cfg.Cache.CleanupInterval <= 0 {
		cfg.Cache.CleanupInterval = DefaultCacheCleanupInterval
	}

	if cfg.RateLimiter.RequestsPerWindow <= 0 {
		cfg.RateLimiter.RequestsPerWindow = DefaultRequestsPerWindow
	}
	if cfg.RateLimiter.WindowSeconds <= 0 {
		cfg.RateLimiter.WindowSeconds = DefaultWindowSeconds
	}
	if cfg.RateLimiter.CleanupInterval <= 0 {
		cfg.RateLimiter.CleanupInterval = DefaultLimiterCleanupInterval
	}

	if cfg.Upstream.ForecastURL == "" {
		cfg.Upstream.ForecastURL = DefaultForecastURL
	}
	if cfg.Upstream.AirQualityURL == "" {
		cfg.Upstream.AirQualityURL = DefaultAirQualityURL
	}
	if cfg.Upstream.GeocodingURL == "" {
		cfg.Upstream.GeocodingURL = DefaultGeocodingURL
	}
	if cfg.Upstream.TimeoutSeconds <= 0 {
		cfg.Upstream.TimeoutSeconds = DefaultUpstreamTimeoutSeconds
	}
	if cfg.Upstream.RequestsPerSecond <= 0 {
		cfg.Upstream.RequestsPerSecond = DefaultUpstreamRequestsPerSecond
	}

	// Built-in tiers fill the gaps; configured tiers override.
	defaults := DefaultTierQuotas()
	if cfg.Tiers == nil {
		cfg.Tiers = defaults
		return
	}
	for name, quota := range defaults {
		if _, ok := cfg.Tiers[name]; !ok {
			cfg.Tiers[name] = quota
		}
	}
}
