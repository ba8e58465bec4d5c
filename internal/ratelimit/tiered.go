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
	"math"
	"sync"
	"time"

	"github.com/intelliweather/intelliweather/internal/system/log"
)

// Window durations for the tiered limiter. A month is a fixed thirty days.
const (
	HourWindow  = time.Hour
	DayWindow   = 24 * time.Hour
	MonthWindow = 30 * 24 * time.Hour
)

// Window names reported on tiered rejections.
const (
	WindowHourly  = "hourly"
	WindowDaily   = "daily"
	WindowMonthly = "monthly"
)

// Quotas holds the hour/day/month request quotas applied to a key identity.
type Quotas struct {
	PerHour  int
	PerDay   int
	PerMonth int
}

// Decision is the outcome of a tiered admission check. On rejection, Window
// names the exhausted window and RetryAfter the seconds until it frees up.
type Decision struct {
	Allowed    bool
	Window     string
	RetryAfter int
}

// TieredStats represents a snapshot of the tiered limiter counters.
type TieredStats struct {
	TotalRequests   int64 `json:"total_requests"`
	BlockedRequests int64 `json:"blocked_requests"`
	UniqueKeys      int   `json:"unique_keys"`
}

// keyWindows holds one timestamp sequence per window for a key identity.
type keyWindows struct {
	hour  []time.Time
	day   []time.Time
	month []time.Time
}

// Tiered admits a request only when the hour, day and month windows of a key
// identity all have spare capacity. The three checks and the appends happen
// under one lock scope, so admission is atomic across windows. Windows are
// checked smallest first, surfacing the limit that will free up soonest.
type Tiered struct {
	mu       sync.Mutex
	requests map[string]*keyWindows

	totalRequests   int64
	blockedRequests int64

	now func() time.Time
}

// NewTiered creates a tiered limiter.
func NewTiered() *Tiered {
	return &Tiered{
		requests: make(map[string]*keyWindows),
		now:      time.Now,
	}
}

// Check runs the tiered admission check for the key identity under the given
// quotas, recording the request timestamp in all three windows on admission.
func (t *Tiered) Check(keyID string, quotas Quotas) Decision {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "TieredRateLimiter"))

	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.totalRequests++

	windows, exists := t.requests[keyID]
	if !exists {
		windows = &keyWindows{}
		t.requests[keyID] = windows
	}

	windows.hour = pruneTimestamps(windows.hour, now.Add(-HourWindow))
	windows.day = pruneTimestamps(windows.day, now.Add(-DayWindow))
	windows.month = pruneTimestamps(windows.month, now.Add(-MonthWindow))

	checks := []struct {
		name       string
		timestamps []time.Time
		limit      int
		window     time.Duration
	}{
		{WindowHourly, windows.hour, quotas.PerHour, HourWindow},
		{WindowDaily, windows.day, quotas.PerDay, DayWindow},
		{WindowMonthly, windows.month, quotas.PerMonth, MonthWindow},
	}

	for _, check := range checks {
		if len(check.timestamps) < check.limit {
			continue
		}
		t.blockedRequests++
		retryAfter := 1
		if len(check.timestamps) > 0 {
			retryAfter = retryAfterSeconds(check.timestamps[0], check.window, now)
		}
		logger.Debug("Tiered rate limit exceeded", log.String(log.LoggerKeyKeyID, keyID),
			log.String("window", check.name), log.Int("retryAfter", retryAfter))
		return Decision{Allowed: false, Window: check.name, RetryAfter: retryAfter}
	}

	windows.hour = append(windows.hour, now)
	windows.day = append(windows.day, now)
	windows.month = append(windows.month, now)

	return Decision{Allowed: true}
}

// Remaining returns how many requests the key identity may still make in each
// window under the given quotas. It never records a request.
func (t *Tiered) Remaining(keyID string, quotas Quotas) map[string]int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	remaining := map[string]int{
		WindowHourly:  quotas.PerHour,
		WindowDaily:   quotas.PerDay,
		WindowMonthly: quotas.PerMonth,
	}

	windows, exists := t.requests[keyID]
	if !exists {
		return remaining
	}

	windows.hour = pruneTimestamps(windows.hour, now.Add(-HourWindow))
	windows.day = pruneTimestamps(windows.day, now.Add(-DayWindow))
	windows.month = pruneTimestamps(windows.month, now.Add(-MonthWindow))

	remaining[WindowHourly] = clampNonNegative(quotas.PerHour - len(windows.hour))
	remaining[WindowDaily] = clampNonNegative(quotas.PerDay - len(windows.day))
	remaining[WindowMonthly] = clampNonNegative(quotas.PerMonth - len(windows.month))
	return remaining
}

// Reset clears all recorded requests for the key identity.
func (t *Tiered) Reset(keyID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.requests, keyID)
}

// Cleanup prunes stale timestamps for every key identity and drops identities
// with no remaining activity. It returns the number of timestamps removed.
func (t *Tiered) Cleanup() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	removed := 0
	for keyID, windows := range t.requests {
		before := len(windows.hour) + len(windows.day) + len(windows.month)
		windows.hour = pruneTimestamps(windows.hour, now.Add(-HourWindow))
		windows.day = pruneTimestamps(windows.day, now.Add(-DayWindow))
		windows.month = pruneTimestamps(windows.month, now.Add(-MonthWindow))
		removed += before - len(windows.hour) - len(windows.day) - len(windows.month)

		if len(windows.month) == 0 {
			delete(t.requests, keyID)
		}
	}
	return removed
}

// Stats returns a snapshot of the tiered limiter counters.
func (t *Tiered) Stats() TieredStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	return TieredStats{
		TotalRequests:   t.totalRequests,
		BlockedRequests: t.blockedRequests,
		UniqueKeys:      len(t.requests),
	}
}

// retryAfterSeconds computes the whole seconds until the oldest timestamp
// leaves the window, clamped to at least one.
func retryAfterSeconds(oldest time.Time, window time.Duration, now time.Time) int {
	retryAfter := int(math.Ceil(oldest.Add(window).Sub(now).Seconds()))
	if retryAfter < 1 {
		retryAfter = 1
	}
	return retryAfter
}

func clampNonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
