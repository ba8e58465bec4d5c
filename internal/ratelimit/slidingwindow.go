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

// Package ratelimit provides sliding-window request admission per caller
// identity: a single-window limiter keyed by client IP and a tiered limiter
// enforcing hour, day and month quotas per API key.
package ratelimit

import (
	"sync"
	"time"

	"github.com/intelliweather/intelliweather/internal/system/log"
)

const loggerComponentName = "RateLimiter"

// Stats represents a snapshot of the single-window limiter counters.
type Stats struct {
	TotalRequests     int64 `json:"total_requests"`
	BlockedRequests   int64 `json:"blocked_requests"`
	UniqueIdentifiers int   `json:"unique_ips"`
	RequestsPerWindow int   `json:"requests_per_window"`
	WindowSeconds     int   `json:"window_seconds"`
}

// SlidingWindow admits at most limit requests per identifier within a sliding
// window. All state lives behind one lock; check and append happen in the same
// critical section so concurrent callers cannot race past the limit.
//
// Identifier state persists until Reset or Cleanup; there is no background
// sweeper, so the owner must schedule Cleanup or memory grows with the number
// of distinct identifiers ever seen.
type SlidingWindow struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration

	totalRequests   int64
	blockedRequests int64

	now func() time.Time
}

// NewSlidingWindow creates a limiter. Non-positive limit or window values are
// clamped to one request per sixty seconds.
func NewSlidingWindow(requestsPerWindow int, window time.Duration) *SlidingWindow {
	if requestsPerWindow <= 0 {
		requestsPerWindow = 1
	}
	if window <= 0 {
		window = time.Minute
	}

	log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).Info(
		"Rate limiter initialized",
		log.Int("requestsPerWindow", requestsPerWindow),
		log.Duration("window", window))

	return &SlidingWindow{
		requests: make(map[string][]time.Time),
		limit:    requestsPerWindow,
		window:   window,
		now:      time.Now,
	}
}

// IsAllowed reports whether a request from the identifier is admitted. On
// rejection it returns the number of seconds after which a retry can succeed,
// always at least one.
func (l *SlidingWindow) IsAllowed(identifier string) (bool, int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.totalRequests++

	kept := l.pruneLocked(identifier, now)

	if len(kept) >= l.limit {
		l.blockedRequests++
		l.requests[identifier] = kept

		// Timestamps are appended in order, so the head is the oldest.
		return false, retryAfterSeconds(kept[0], l.window, now)
	}

	l.requests[identifier] = append(kept, now)
	return true, 0
}

// GetRemaining returns the number of requests the identifier may still make in
// the current window. It never records a request, so repeated calls are
// idempotent.
func (l *SlidingWindow) GetRemaining(identifier string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.pruneLocked(identifier, l.now())
	if len(kept) > 0 {
		l.requests[identifier] = kept
	}

	remaining := l.limit - len(kept)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Reset clears all recorded requests for the identifier.
func (l *SlidingWindow) Reset(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.requests, identifier)
}

// Cleanup prunes stale timestamps for every identifier and drops identifiers
// left empty. It returns the number of timestamps removed.
func (l *SlidingWindow) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for identifier, timestamps := range l.requests {
		kept := pruneTimestamps(timestamps, now.Add(-l.window))
		removed += len(timestamps) - len(kept)
		if len(kept) == 0 {
			delete(l.requests, identifier)
			continue
		}
		l.requests[identifier] = kept
	}
	return removed
}

// Stats returns a snapshot of the limiter counters.
func (l *SlidingWindow) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Stats{
		TotalRequests:     l.totalRequests,
		BlockedRequests:   l.blockedRequests,
		UniqueIdentifiers: len(l.requests),
		RequestsPerWindow: l.limit,
		WindowSeconds:     int(l.window.Seconds()),
	}
}

// Limit returns the configured request quota per window.
func (l *SlidingWindow) Limit() int {
	return l.limit
}

// pruneLocked returns the identifier's timestamps still inside the window
// ending at now. Callers must hold the lock.
func (l *SlidingWindow) pruneLocked(identifier string, now time.Time) []time.Time {
	return pruneTimestamps(l.requests[identifier], now.Add(-l.window))
}

// pruneTimestamps keeps timestamps strictly after the cutoff. The input is
// non-decreasing, so a single scan for the first kept index suffices.
func pruneTimestamps(timestamps []time.Time, cutoff time.Time) []time.Time {
	idx := 0
	for idx < len(timestamps) && !timestamps[idx].After(cutoff) {
		idx++
	}
	return timestamps[idx:]
}
