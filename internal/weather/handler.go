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
	"strconv"
	"strings"

	"github.com/intelliweather/intelliweather/internal/system/error/serviceerror"
	"github.com/intelliweather/intelliweather/internal/system/log"
	"github.com/intelliweather/intelliweather/internal/system/utils"
)

const cacheStateHeaderName = "X-Cache"

// Handler handles HTTP requests for weather data.
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a weather handler backed by the given service.
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// HandleCurrentRequest serves the current weather for a coordinate.
func (h *Handler) HandleCurrentRequest(w http.ResponseWriter, r *http.Request) {
	h.handleForecast(w, r, DataTypeCurrent)
}

// HandleHourlyRequest serves the hourly forecast for a coordinate.
func (h *Handler) HandleHourlyRequest(w http.ResponseWriter, r *http.Request) {
	h.handleForecast(w, r, DataTypeHourly)
}

// HandleDailyRequest serves the daily forecast for a coordinate.
func (h *Handler) HandleDailyRequest(w http.ResponseWriter, r *http.Request) {
	h.handleForecast(w, r, DataTypeDaily)
}

// HandleAirQualityRequest serves air quality data for a coordinate.
func (h *Handler) HandleAirQualityRequest(w http.ResponseWriter, r *http.Request) {
	h.handleForecast(w, r, DataTypeAirQuality)
}

// HandleGeocodeRequest resolves a place name to candidate coordinates.
func (h *Handler) HandleGeocodeRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "WeatherHandler"))

	query := strings.TrimSpace(r.URL.Query().Get("name"))
	if query == "" {
		handleError(w, logger, &ErrorMissingLocationName)
		return
	}

	payload, cached, err := h.service.Geocode(r.Context(), query)
	if err != nil {
		logger.Error("Geocoding lookup failed", log.String("query", query), log.Error(err))
		handleError(w, logger, &ErrorUpstreamFailure)
		return
	}

	writeCacheState(w, cached)
	utils.WriteJSONResponse(w, http.StatusOK, payload)
}

func (h *Handler) handleForecast(w http.ResponseWriter, r *http.Request, dataType string) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "WeatherHandler"))

	lat, lon, svcErr := parseCoordinates(r)
	if svcErr != nil {
		handleError(w, logger, svcErr)
		return
	}

	payload, cached, err := h.service.GetForecast(r.Context(), lat, lon, dataType)
	if err != nil {
		logger.Error("Forecast retrieval failed", log.String("dataType", dataType), log.Error(err))
		handleError(w, logger, &ErrorUpstreamFailure)
		return
	}

	writeCacheState(w, cached)
	utils.WriteJSONResponse(w, http.StatusOK, payload)
}

// handleError handles service errors and writes appropriate HTTP responses.
func handleError(w http.ResponseWriter, logger *log.Logger, svcErr *serviceerror.ServiceError) {
	var statusCode int
	if svcErr.Type == serviceerror.ClientErrorType {
		statusCode = http.StatusBadRequest
	} else {
		switch svcErr.Code {
		case ErrorUpstreamFailure.Code:
			statusCode = http.StatusBadGateway
		default:
			statusCode = http.StatusInternalServerError
		}
	}

	logger.Debug("Returning error response", log.String("code", svcErr.Code),
		log.Int("statusCode", statusCode))
	utils.WriteJSONError(w, svcErr.Code, svcErr.ErrorDescription, statusCode, nil)
}

func writeCacheState(w http.ResponseWriter, cached bool) {
	if cached {
		w.Header().Set(cacheStateHeaderName, "HIT")
	} else {
		w.Header().Set(cacheStateHeaderName, "MISS")
	}
}

// parseCoordinates extracts and validates the lat/lon query parameters.
func parseCoordinates(r *http.Request) (float64, float64, *serviceerror.ServiceError) {
	lat, svcErr := parseCoordinate(r.URL.Query().Get("lat"), -90, 90)
	if svcErr != nil {
		return 0, 0, svcErr
	}
	lon, svcErr := parseCoordinate(r.URL.Query().Get("lon"), -180, 180)
	if svcErr != nil {
		return 0, 0, svcErr
	}
	return lat, lon, nil
}

func parseCoordinate(raw string, minVal, maxVal float64) (float64, *serviceerror.ServiceError) {
	if strings.TrimSpace(raw) == "" {
		return 0, &ErrorMissingCoordinate
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &ErrorInvalidCoordinate
	}
	if value < minVal || value > maxVal {
		return 0, &ErrorInvalidCoordinate
	}
	return value, nil
}
