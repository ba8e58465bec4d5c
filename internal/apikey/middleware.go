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

package apikey

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/intelliweather/intelliweather/internal/ratelimit"
	"github.com/intelliweather/intelliweather/internal/system/config"
	"github.com/intelliweather/intelliweather/internal/system/constants"
	"github.com/intelliweather/intelliweather/internal/system/log"
	"github.com/intelliweather/intelliweather/internal/system/utils"
)

// QuotaResolver resolves a tier name to its hour/day/month quotas.
type QuotaResolver func(tier string) config.TierQuota

// Middleware authenticates requests by API key and enforces the tiered
// hour/day/month quotas of the key's subscription tier. Requests without a key
// pass through; downstream handlers decide whether anonymous access suffices.
type Middleware struct {
	service ServiceInterface
	limiter *ratelimit.Tiered
	quotas  QuotaResolver
}

// NewMiddleware creates the API key middleware around injected collaborators.
func NewMiddleware(service ServiceInterface, limiter *ratelimit.Tiered, quotas QuotaResolver) *Middleware {
	return &Middleware{
		service: service,
		limiter: limiter,
		quotas:  quotas,
	}
}

// Wrap returns a handler performing API key authentication before delegating
// to next.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "APIKeyMiddleware"))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawKey := extractRawKey(r)
		if rawKey == "" {
			// No key presented; leave authorization to downstream handlers.
			next.ServeHTTP(w, r)
			return
		}

		key, err := m.service.ValidateKey(rawKey)
		if err != nil {
			logger.Debug("API key validation failed", log.String("keyPrefix", log.MaskString(rawKey)),
				log.Error(err))
			utils.WriteJSONError(w, "invalid_api_key", "Invalid or expired API key",
				http.StatusUnauthorized, nil)
			return
		}

		quota := m.quotas(key.Tier)
		decision := m.limiter.Check(key.KeyID, ratelimit.Quotas{
			PerHour:  quota.RequestsPerHour,
			PerDay:   quota.RequestsPerDay,
			PerMonth: quota.RequestsPerMonth,
		})

		if !decision.Allowed {
			logger.Warn("Tiered rate limit exceeded", log.String(log.LoggerKeyKeyID, key.KeyID),
				log.String("tier", key.Tier), log.String("window", decision.Window))

			w.Header().Set(constants.RetryAfterHeaderName, strconv.Itoa(decision.RetryAfter))
			utils.WriteJSONResponse(w, http.StatusTooManyRequests, map[string]interface{}{
				"detail":      fmt.Sprintf("Rate limit exceeded: %s", decision.Window),
				"tier":        key.Tier,
				"retry_after": decision.RetryAfter,
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

// extractRawKey pulls the API key from the X-API-Key header, falling back to a
// bearer token.
func extractRawKey(r *http.Request) string {
	if key := strings.TrimSpace(r.Header.Get(constants.APIKeyHeaderName)); key != "" {
		return key
	}

	authHeader := r.Header.Get(constants.AuthorizationHeaderName)
	if strings.HasPrefix(authHeader, constants.TokenTypeBearer+" ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, constants.TokenTypeBearer+" "))
	}
	return ""
}
