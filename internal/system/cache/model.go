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

package cache

import (
	"time"
)

// Entry represents a cache entry with its lifecycle metadata.
// Entries are owned by the cache; callers never receive a mutable handle.
type Entry[T any] struct {
	Value     T
	CreatedAt time.Time
	ExpiresAt time.Time
	HitCount  int64
}

// isExpired reports whether the entry has expired at the given time.
func (e *Entry[T]) isExpired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Stats represents a consistent snapshot of cache statistics.
type Stats struct {
	Size           int           `json:"size"`
	MaxSize        int           `json:"max_size"`
	Hits           int64         `json:"hits"`
	Misses         int64         `json:"misses"`
	HitRatePercent float64       `json:"hit_rate_percent"`
	Evictions      int64         `json:"evictions"`
	DefaultTTL     time.Duration `json:"default_ttl"`
}

// PersistFunc persists an evicted entry. It is invoked without the cache lock
// held, so it may perform I/O.
type PersistFunc[T any] func(key string, value T) error
