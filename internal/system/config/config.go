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

// Package config provides structures and functions for loading and managing server configurations.
package config

import (
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"

	"github.com/intelliweather/intelliweather/internal/system/log"
)

// ServerConfig holds the server configuration details.
type ServerConfig struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
}

// CacheConfig holds the weather cache configuration details. All durations are in seconds.
type CacheConfig struct {
	Disabled        bool   `yaml:"disabled"`
	DefaultTTL      int    `yaml:"default_ttl"`
	MaxSize         int    `yaml:"max_size"`
	CleanupInterval int    `yaml:"cleanup_interval"`
	EvictionPolicy  string `yaml:"eviction_policy"`
}

// RateLimiterConfig holds the per-IP rate limiter configuration details.
type RateLimiterConfig struct {
	Disabled          bool     `yaml:"disabled"`
	RequestsPerWindow int      `yaml:"requests_per_window"`
	WindowSeconds     int      `yaml:"window_seconds"`
	CleanupInterval   int      `yaml:"cleanup_interval"`
	ExcludedPaths     []string `yaml:"excluded_paths"`
}

// TierQuota holds the hour/day/month request quotas for a subscription tier.
type TierQuota struct {
	RequestsPerHour  int `yaml:"requests_per_hour"`
	RequestsPerDay   int `yaml:"requests_per_day"`
	RequestsPerMonth int `yaml:"requests_per_month"`
}

// UpstreamConfig holds the upstream forecast provider configuration details.
type UpstreamConfig struct {
	ForecastURL       string  `yaml:"forecast_url"`
	AirQualityURL     string  `yaml:"air_quality_url"`
	GeocodingURL      string  `yaml:"geocoding_url"`
	TimeoutSeconds    int     `yaml:"timeout_seconds"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// DataSource holds the database connection details.
type DataSource struct {
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// DatabaseConfig holds the database configuration details.
type DatabaseConfig struct {
	Disabled bool       `yaml:"disabled"`
	Runtime  DataSource `yaml:"runtime"`
}

// CORSConfig holds the CORS configuration details.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Config holds the complete configuration details of the server.
type Config struct {
	Server      ServerConfig         `yaml:"server"`
	Cache       CacheConfig          `yaml:"cache"`
	RateLimiter RateLimiterConfig    `yaml:"rate_limiter"`
	Tiers       map[string]TierQuota `yaml:"tiers"`
	Upstream    UpstreamConfig       `yaml:"upstream"`
	Database    DatabaseConfig       `yaml:"database"`
	CORS        CORSConfig           `yaml:"cors"`
}

// LoadConfig loads the configurations from the specified YAML file.
// Missing or non-positive numeric values are clamped to the documented defaults
// rather than rejected, so a partial configuration file always yields a usable server.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	path = filepath.Clean(path)

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if ferr := file.Close(); ferr != nil {
			log.GetLogger().Error("Failed to close config file", log.Error(ferr))
		}
	}()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// QuotasForTier returns the quotas for the given tier name, falling back to
// the free tier when the name is unknown.
func (c *Config) QuotasForTier(tier string) TierQuota {
	if quota, ok := c.Tiers[tier]; ok {
		return quota
	}
	return c.Tiers[TierFree]
}
