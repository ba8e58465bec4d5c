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
	"net/http"

	"github.com/intelliweather/intelliweather/internal/ratelimit"
	"github.com/intelliweather/intelliweather/internal/system/database/provider"
	"github.com/intelliweather/intelliweather/internal/system/middleware"
)

// Initialize creates the health check service and registers its routes.
func Initialize(
	mux *http.ServeMux,
	c CacheInterface,
	dbProvider provider.DBProviderInterface,
	limiter *ratelimit.SlidingWindow,
	tierLimiter *ratelimit.Tiered,
	allowedOrigins []string,
) ServiceInterface {
	service := NewService(c, dbProvider, limiter, tierLimiter)
	handler := NewHandler(service)
	registerRoutes(mux, handler, allowedOrigins)
	return service
}

// registerRoutes registers the routes for health check operations.
func registerRoutes(mux *http.ServeMux, handler *Handler, allowedOrigins []string) {
	opts := middleware.CORSOptions{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: "GET",
		AllowedHeaders: "Content-Type",
	}
	mux.HandleFunc(middleware.WithCORS("GET /health/liveness", handler.HandleLivenessRequest, opts))
	mux.HandleFunc(middleware.WithCORS("GET /health/readiness", handler.HandleReadinessRequest, opts))
	mux.HandleFunc(middleware.WithCORS("GET /health/stats", handler.HandleStatsRequest, opts))
}
