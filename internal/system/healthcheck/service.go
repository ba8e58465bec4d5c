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

package healthcheck

import (
	"time"

	"github.com/intelliweather/intelliweather/internal/ratelimit"
	"github.com/intelliweather/intelliweather/internal/system/cache"
	dbmodel "github.com/intelliweather/intelliweather/internal/system/database/model"
	"github.com/intelliweather/intelliweather/internal/system/database/provider"
	"github.com/intelliweather/intelliweather/internal/system/log"
)

const healthProbeTTL = time.Minute

var queryWeatherDBPing = dbmodel.DBQuery{
	ID:    "HCQ-01",
	Query: "SELECT 1",
}

// CacheInterface covers the cache operations the readiness probe exercises.
type CacheInterface interface {
	SetWithTTL(key string, value map[string]interface{}, ttl time.Duration)
	Get(key string) (map[string]interface{}, bool)
	Delete(key string) bool
	Stats() cache.Stats
}

// ServiceInterface defines the health check operations.
type ServiceInterface interface {
	CheckReadiness() ServerStatus
	CollectStats() RuntimeStats
}

// Service is the default implementation of ServiceInterface. Any dependency
// may be nil when the server runs without it.
type Service struct {
	cache       CacheInterface
	dbProvider  provider.DBProviderInterface
	limiter     *ratelimit.SlidingWindow
	tierLimiter *ratelimit.Tiered
}

// NewService creates a health check service over the given dependencies.
func NewService(
	c CacheInterface,
	dbProvider provider.DBProviderInterface,
	limiter *ratelimit.SlidingWindow,
	tierLimiter *ratelimit.Tiered,
) *Service {
	return &Service{
		cache:       c,
		dbProvider:  dbProvider,
		limiter:     limiter,
		tierLimiter: tierLimiter,
	}
}

// CheckReadiness checks the readiness of the server and its dependencies.
func (s *Service) CheckReadiness() ServerStatus {
	services := []ServiceStatus{}
	status := StatusUp

	if s.cache != nil {
		cacheStatus := ServiceStatus{
			ServiceName: "WeatherCache",
			Status:      s.checkCacheStatus(),
		}
		services = append(services, cacheStatus)
		if cacheStatus.Status == StatusDown {
			status = StatusDown
		}
	}

	if s.dbProvider != nil {
		dbStatus := ServiceStatus{
			ServiceName: "WeatherDB",
			Status:      s.checkDatabaseStatus(),
		}
		services = append(services, dbStatus)
		if dbStatus.Status == StatusDown {
			status = StatusDown
		}
	}

	return ServerStatus{
		Status:        status,
		ServiceStatus: services,
	}
}

// CollectStats returns the current cache and rate limiter statistics.
func (s *Service) CollectStats() RuntimeStats {
	var stats RuntimeStats
	if s.cache != nil {
		stats.Cache = s.cache.Stats()
	}
	if s.limiter != nil {
		stats.RateLimiter = s.limiter.Stats()
	}
	if s.tierLimiter != nil {
		stats.TierLimiter = s.tierLimiter.Stats()
	}
	return stats
}

// checkCacheStatus verifies the cache with a set, get and delete round trip
// on a reserved probe key.
func (s *Service) checkCacheStatus() Status {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HealthCheckService"))

	probe := map[string]interface{}{"ping": "pong"}
	s.cache.SetWithTTL(cache.HealthKey, probe, healthProbeTTL)
	defer s.cache.Delete(cache.HealthKey)

	stored, ok := s.cache.Get(cache.HealthKey)
	if !ok {
		logger.Error("Cache readiness probe lost its entry")
		return StatusDown
	}
	if stored["ping"] != "pong" {
		logger.Error("Cache readiness probe returned an unexpected value")
		return StatusDown
	}
	return StatusUp
}

// checkDatabaseStatus verifies database connectivity with a trivial query.
func (s *Service) checkDatabaseStatus() Status {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HealthCheckService"))

	dbClient, err := s.dbProvider.GetDBClient()
	if err != nil {
		logger.Error("Failed to get database client", log.Error(err))
		return StatusDown
	}
	defer func() {
		if closeErr := dbClient.Close(); closeErr != nil {
			logger.Error("Error closing database client", log.Error(closeErr))
		}
	}()

	if _, err = dbClient.Query(queryWeatherDBPing); err != nil {
		logger.Error("Failed to execute readiness query", log.Error(err))
		return StatusDown
	}
	return StatusUp
}
