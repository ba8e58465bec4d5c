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

	"github.com/intelliweather/intelliweather/internal/system/log"
	"github.com/intelliweather/intelliweather/internal/system/utils"
)

// Handler handles health check API requests.
type Handler struct {
	service ServiceInterface
}

// NewHandler creates a health check handler backed by the given service.
func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

// HandleLivenessRequest handles the health check liveness request.
func (h *Handler) HandleLivenessRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HealthCheckHandler"))
	w.WriteHeader(http.StatusOK)
	logger.Debug("Health check liveness response sent")
}

// HandleReadinessRequest handles the health check readiness request.
func (h *Handler) HandleReadinessRequest(w http.ResponseWriter, r *http.Request) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "HealthCheckHandler"))

	serverStatus := h.service.CheckReadiness()

	statusCode := http.StatusOK
	if serverStatus.Status != StatusUp {
		logger.Error("Readiness check failed", log.String("serverStatus", string(serverStatus.Status)))
		statusCode = http.StatusServiceUnavailable
	} else {
		logger.Debug("Readiness check passed", log.String("serverStatus", string(serverStatus.Status)))
	}

	utils.WriteJSONResponse(w, statusCode, serverStatus)
}

// HandleStatsRequest reports cache and rate limiter statistics.
func (h *Handler) HandleStatsRequest(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSONResponse(w, http.StatusOK, h.service.CollectStats())
}
