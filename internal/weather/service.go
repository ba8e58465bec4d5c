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

package weather

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/intelliweather/intelliweather/internal/system/cache"
	"github.com/intelliweather/intelliweather/internal/system/log"
)

// ServiceInterface defines the weather data retrieval operations.
type ServiceInterface interface {
	// GetForecast returns forecast data for a coordinate, serving from the
	// cache when possible. The returned bool reports whether it was a cache hit.
	GetForecast(ctx context.Context, lat, lon float64, dataType string) (Payload, bool, error)
	// Geocode resolves a place name, serving from the cache when possible.
	Geocode(ctx context.Context, query string) (Payload, bool, error)
}

// Service is the default implementation of ServiceInterface. Concurrent
// requests for the same uncached coordinate are collapsed into a single
// upstream fetch.
type Service struct {
	cache  *cache.Cache[Payload]
	client ClientInterface
	group  singleflight.Group
}

// NewService creates a weather service backed by the given cache and
// upstream client. A nil cache disables caching and every request goes
// upstream.
func NewService(c *cache.Cache[Payload], client ClientInterface) *Service {
	return &Service{
		cache:  c,
		client: client,
	}
}

// GetForecast returns forecast data for a coordinate.
func (s *Service) GetForecast(ctx context.Context, lat, lon float64, dataType string) (Payload, bool, error) {
	key := cache.WeatherKey(lat, lon, dataType)
	if s.cache != nil {
		if payload, ok := s.cache.Get(key); ok {
			return payload, true, nil
		}
	}

	payload, err := s.fetchAndStore(key, func() (Payload, error) {
		return s.client.FetchForecast(ctx, lat, lon, dataType)
	})
	if err != nil {
		return nil, false, err
	}
	return payload, false, nil
}

// Geocode resolves a place name to candidate coordinates.
func (s *Service) Geocode(ctx context.Context, query string) (Payload, bool, error) {
	key := cache.GeocodeKey(query)
	if s.cache != nil {
		if payload, ok := s.cache.Get(key); ok {
			return payload, true, nil
		}
	}

	payload, err := s.fetchAndStore(key, func() (Payload, error) {
		return s.client.SearchLocations(ctx, query)
	})
	if err != nil {
		return nil, false, err
	}
	return payload, false, nil
}

// fetchAndStore collapses concurrent fetches for the same key and caches
// the result of the winning fetch. Failed fetches are not cached.
func (s *Service) fetchAndStore(key string, fetch func() (Payload, error)) (Payload, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "WeatherService"))

	result, err, shared := s.group.Do(key, func() (interface{}, error) {
		payload, fetchErr := fetch()
		if fetchErr != nil {
			return nil, fetchErr
		}
		if s.cache != nil {
			s.cache.Set(key, payload)
		}
		return payload, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Debug("Upstream fetch shared between concurrent requests", log.String("key", key))
	}
	return result.(Payload), nil
}
