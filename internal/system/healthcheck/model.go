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

// Package healthcheck provides liveness, readiness and runtime statistics
// endpoints for the server.
package healthcheck

import (
	"github.com/intelliweather/intelliweather/internal/ratelimit"
	"github.com/intelliweather/intelliweather/internal/system/cache"
)

// Status represents the health status of the server or one of its dependencies.
type Status string

const (
	// StatusUp indicates that the service is healthy.
	StatusUp Status = "UP"
	// StatusDown indicates that the service is unhealthy.
	StatusDown Status = "DOWN"
)

// ServiceStatus represents the health status of an individual dependency.
type ServiceStatus struct {
	ServiceName string `json:"service_name"`
	Status      Status `json:"status"`
}

// ServerStatus represents the overall health status of the server.
type ServerStatus struct {
	Status        Status          `json:"status"`
	ServiceStatus []ServiceStatus `json:"service_status"`
}

// RuntimeStats aggregates cache and rate limiter statistics.
type RuntimeStats struct {
	Cache       cache.Stats           `json:"cache"`
	RateLimiter ratelimit.Stats       `json:"rate_limiter"`
	TierLimiter ratelimit.TieredStats `json:"tier_limiter"`
}
