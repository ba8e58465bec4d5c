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

package ratelimit

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/intelliweather/intelliweather/internal/system/constants"
	"github.com/intelliweather/intelliweather/internal/system/log"
	"github.com/intelliweather/intelliweather/internal/system/utils"
)

// defaultExcludedPaths are never rate limited.
var defaultExcludedPaths = []string{"/health/liveness", "/health/readiness"}

// Middleware enforces the per-IP sliding-window limit on inbound requests and
// decorates responses with quota headers.
type Middleware struct {
	limiter       *SlidingWindow
	excludedPaths map[string]struct{}
}

// NewMiddleware creates the rate limiting middleware around an injected
// limiter. When excludedPaths is nil the health check endpoints are excluded.
func NewMiddleware(limiter *SlidingWindow, excludedPaths []string) *Middleware {
	if excludedPaths == nil {
		excludedPaths = defaultExcludedPaths
	}
	excluded := make(map[string]struct{}, len(excludedPaths))
	for _, path := range excludedPaths {
		excluded[path] = struct{}{}
	}

	return &Middleware{
		limiter:       limiter,
		excludedPaths: excluded,
	}
}

// Wrap returns a handler enforcing the limit before delegating to next.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "RateLimitMiddleware"))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, excluded := m.excludedPaths[r.URL.Path]; excluded {
			next.ServeHTTP(w, r)
			return
		}

		clientIP := utils.ClientIP(r)
		allowed, retryAfter := m.limiter.IsAllowed(clientIP)

		if !allowed {
			logger.Warn("Rate limit exceeded", log.String(log.LoggerKeyClientIP, clientIP),
				log.Int("retryAfter", retryAfter))
			writeRateLimitExceeded(w, m.limiter.Limit(), retryAfter)
			return
		}

		w.Header().Set(constants.RateLimitLimitHeaderName, strconv.Itoa(m.limiter.Limit()))
		w.Header().Set(constants.RateLimitRemainingHeaderName, strconv.Itoa(m.limiter.GetRemaining(clientIP)))
		next.ServeHTTP(w, r)
	})
}

// writeRateLimitExceeded writes the 429 response with retry and quota headers.
func writeRateLimitExceeded(w http.ResponseWriter, limit, retryAfter int) {
	resetAt := time.Now().Unix() + int64(retryAfter)

	w.Header().Set(constants.RetryAfterHeaderName, strconv.Itoa(retryAfter))
	w.Header().Set(constants.RateLimitLimitHeaderName, strconv.Itoa(limit))
	w.Header().Set(constants.RateLimitRemainingHeaderName, "0")
	w.Header().Set(constants.RateLimitResetHeaderName, strconv.FormatInt(resetAt, 10))

	utils.WriteJSONResponse(w, http.StatusTooManyRequests, map[string]string{
		"detail": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds.", retryAfter),
	})
}
