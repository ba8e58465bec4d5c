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
	"net/http"

	"github.com/intelliweather/intelliweather/internal/system/cache"
	"github.com/intelliweather/intelliweather/internal/system/config"
	"github.com/intelliweather/intelliweather/internal/system/middleware"
)

// Initialize creates the weather service and registers its routes.
func Initialize(
	mux *http.ServeMux,
	weatherCache *cache.Cache[Payload],
	upstreamCfg config.UpstreamConfig,
	allowedOrigins []string,
) ServiceInterface {
	service := NewService(weatherCache, NewClient(upstreamCfg))
	handler := NewHandler(service)
	registerRoutes(mux, handler, allowedOrigins)
	return service
}

// registerRoutes registers the routes for weather data retrieval.
func registerRoutes(mux *http.ServeMux, handler *Handler, allowedOrigins []string) {
	opts := middleware.CORSOptions{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: "GET",
		AllowedHeaders: "Content-Type, Authorization, X-API-Key",
	}
	mux.HandleFunc(middleware.WithCORS("GET /weather/current", handler.HandleCurrentRequest, opts))
	mux.HandleFunc(middleware.WithCORS("GET /weather/hourly", handler.HandleHourlyRequest, opts))
	mux.HandleFunc(middleware.WithCORS("GET /weather/daily", handler.HandleDailyRequest, opts))
	mux.HandleFunc(middleware.WithCORS("GET /weather/air-quality", handler.HandleAirQualityRequest, opts))
	mux.HandleFunc(middleware.WithCORS("GET /geocode", handler.HandleGeocodeRequest, opts))
	mux.HandleFunc(middleware.WithCORS("OPTIONS /weather/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, opts))
	mux.HandleFunc(middleware.WithCORS("OPTIONS /geocode", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, opts))
}
