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

// Package apikey provides API key validation and tier-aware request admission.
package apikey

import (
	"time"
)

// rawKeyPrefix identifies keys issued by this service.
const rawKeyPrefix = "iw_live_"

// keyPrefixLength is the number of leading raw key characters stored for
// identification. The raw key itself is never stored.
const keyPrefixLength = 12

// APIKey represents a stored API key. Only the SHA-256 hash of the raw key is
// persisted.
type APIKey struct {
	KeyID      string     `json:"key_id"`
	UserID     string     `json:"user_id"`
	Name       string     `json:"name"`
	KeyHash    string     `json:"-"`
	KeyPrefix  string     `json:"key_prefix"`
	Tier       string     `json:"tier"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	IsActive   bool       `json:"is_active"`
}

// isExpired reports whether the key has an expiry in the past.
func (k *APIKey) isExpired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}
