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

package main

import (
	"net/http"
	"time"

	"github.com/intelliweather/intelliweather/internal/apikey"
	"github.com/intelliweather/intelliweather/internal/ratelimit"
	"github.com/intelliweather/intelliweather/internal/system/cache"
	"github.com/intelliweather/intelliweather/internal/system/config"
	"github.com/intelliweather/intelliweather/internal/system/database/provider"
	"github.com/intelliweather/intelliweather/internal/system/healthcheck"
	"github.com/intelliweather/intelliweather/internal/system/log"
	"github.com/intelliweather/intelliweather/internal/system/periodic"
	"github.com/intelliweather/intelliweather/internal/weather"
)

// serviceManager owns the server's long-lived components. Everything is
// constructed here once and injected into the services that need it.
type serviceManager struct {
	cfg           *config.Config
	weatherCache  *cache.Cache[weather.Payload]
	ipLimiter     *ratelimit.SlidingWindow
	tierLimiter   *ratelimit.Tiered
	dbProvider    provider.DBProviderInterface
	apiKeyService apikey.ServiceInterface
	cleanupRunner *periodic.Runner
}

// newServiceManager constructs the shared components from the configuration.
func newServiceManager(cfg *config.Config) *serviceManager {
	sm := &serviceManager{cfg: cfg}

	if !cfg.Database.Disabled {
		sm.dbProvider = provider.NewDBProvider(cfg.Database.Runtime)
		sm.apiKeyService = apikey.NewService(sm.dbProvider)
		sm.tierLimiter = ratelimit.NewTiered()
	}

	if !cfg.Cache.Disabled {
		sm.weatherCache = cache.New[weather.Payload]("weather", cache.Options{
			DefaultTTL:      time.Duration(cfg.Cache.DefaultTTL) * time.Second,
			MaxSize:         cfg.Cache.MaxSize,
			CleanupInterval: time.Duration(cfg.Cache.CleanupInterval) * time.Second,
		}, cache.PolicyFromName[weather.Payload](cfg.Cache.EvictionPolicy))

		if sm.dbProvider != nil {
			sm.weatherCache.SetPersistCallback(weather.PopularEntryPersister(sm.dbProvider))
		}
	}

	if !cfg.RateLimiter.Disabled {
		sm.ipLimiter = ratelimit.NewSlidingWindow(
			cfg.RateLimiter.RequestsPerWindow,
			time.Duration(cfg.RateLimiter.WindowSeconds)*time.Second,
		)
	}

	sm.startCleanupRunner()
	return sm
}

// registerServices registers every service's routes on the multiplexer.
func (sm *serviceManager) registerServices(mux *http.ServeMux) {
	allowedOrigins := sm.cfg.CORS.AllowedOrigins

	weather.Initialize(mux, sm.weatherCache, sm.cfg.Upstream, allowedOrigins)

	var probeCache healthcheck.CacheInterface
	if sm.weatherCache != nil {
		probeCache = sm.weatherCache
	}
	healthcheck.Initialize(mux, probeCache, sm.dbProvider, sm.ipLimiter,
		sm.tierLimiter, allowedOrigins)
}

// buildHandler wraps the multiplexer with the middleware chain. Requests pass
// through access logging, then the per-IP limiter, then API key enforcement.
func (sm *serviceManager) buildHandler(mux *http.ServeMux) http.Handler {
	var handler http.Handler = mux

	if sm.apiKeyService != nil {
		keyMiddleware := apikey.NewMiddleware(sm.apiKeyService, sm.tierLimiter, sm.cfg.QuotasForTier)
		handler = keyMiddleware.Wrap(handler)
	}

	if sm.ipLimiter != nil {
		limitMiddleware := ratelimit.NewMiddleware(sm.ipLimiter, sm.cfg.RateLimiter.ExcludedPaths)
		handler = limitMiddleware.Wrap(handler)
	}

	return log.AccessLogHandler(log.GetLogger(), handler)
}

// startCleanupRunner starts the periodic sweep of stale rate limiter state.
// The cache runs its own sweeper internally.
func (sm *serviceManager) startCleanupRunner() {
	if sm.ipLimiter == nil && sm.tierLimiter == nil {
		return
	}

	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ServiceManager"))
	interval := time.Duration(sm.cfg.RateLimiter.CleanupInterval) * time.Second

	sm.cleanupRunner = periodic.NewRunner("ratelimit-cleanup", interval, func() {
		removed := 0
		if sm.ipLimiter != nil {
			removed += sm.ipLimiter.Cleanup()
		}
		if sm.tierLimiter != nil {
			removed += sm.tierLimiter.Cleanup()
		}
		if removed > 0 {
			logger.Debug("Removed stale rate limiter identifiers", log.Int("count", removed))
		}
	})
	sm.cleanupRunner.Start()
}

// shutdown stops the background workers, waiting briefly for each.
func (sm *serviceManager) shutdown() {
	if sm.cleanupRunner != nil {
		sm.cleanupRunner.Stop(5 * time.Second)
	}
	if sm.weatherCache != nil {
		sm.weatherCache.Shutdown()
	}
}
