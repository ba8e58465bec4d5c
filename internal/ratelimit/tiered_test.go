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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type TieredTestSuite struct {
	suite.Suite
}

func TestTieredSuite(t *testing.T) {
	suite.Run(t, new(TieredTestSuite))
}

func newTestTiered(clock *fakeClock) *Tiered {
	t := NewTiered()
	t.now = clock.Now
	return t
}

func (suite *TieredTestSuite) TestHourlyLimitRejectsFirst() {
	clock := newFakeClock()
	limiter := newTestTiered(clock)
	quotas := Quotas{PerHour: 2, PerDay: 100, PerMonth: 1000}

	for i := 0; i < 2; i++ {
		decision := limiter.Check("key-1", quotas)
		assert.True(suite.T(), decision.Allowed)
		clock.Advance(time.Second)
	}

	decision := limiter.Check("key-1", quotas)
	assert.False(suite.T(), decision.Allowed)
	assert.Equal(suite.T(), WindowHourly, decision.Window)
	// The oldest request is 2s into a 3600s window.
	assert.Equal(suite.T(), 3598, decision.RetryAfter)
}

func (suite *TieredTestSuite) TestDailyLimitNamedWhenHourHasRoom() {
	clock := newFakeClock()
	limiter := newTestTiered(clock)
	quotas := Quotas{PerHour: 10, PerDay: 12, PerMonth: 1000}

	// Spread 12 requests over 12 hours so no hour window ever fills.
	for i := 0; i < 12; i++ {
		decision := limiter.Check("key-1", quotas)
		assert.True(suite.T(), decision.Allowed)
		clock.Advance(time.Hour)
	}

	decision := limiter.Check("key-1", quotas)
	assert.False(suite.T(), decision.Allowed)
	assert.Equal(suite.T(), WindowDaily, decision.Window)
}

func (suite *TieredTestSuite) TestMonthlyLimitNamedLast() {
	clock := newFakeClock()
	limiter := newTestTiered(clock)
	quotas := Quotas{PerHour: 1000, PerDay: 1000, PerMonth: 3}

	for i := 0; i < 3; i++ {
		decision := limiter.Check("key-1", quotas)
		assert.True(suite.T(), decision.Allowed)
		clock.Advance(2 * DayWindow)
	}

	decision := limiter.Check("key-1", quotas)
	assert.False(suite.T(), decision.Allowed)
	assert.Equal(suite.T(), WindowMonthly, decision.Window)
}

func (suite *TieredTestSuite) TestRejectionRecordsNothing() {
	clock := newFakeClock()
	limiter := newTestTiered(clock)
	quotas := Quotas{PerHour: 1, PerDay: 10, PerMonth: 100}

	limiter.Check("key-1", quotas)
	limiter.Check("key-1", quotas)

	remaining := limiter.Remaining("key-1", quotas)
	assert.Equal(suite.T(), 0, remaining[WindowHourly])
	assert.Equal(suite.T(), 9, remaining[WindowDaily])
	assert.Equal(suite.T(), 99, remaining[WindowMonthly])
}

func (suite *TieredTestSuite) TestAdmissionRecordsInAllWindows() {
	clock := newFakeClock()
	limiter := newTestTiered(clock)
	quotas := Quotas{PerHour: 5, PerDay: 10, PerMonth: 20}

	limiter.Check("key-1", quotas)

	remaining := limiter.Remaining("key-1", quotas)
	assert.Equal(suite.T(), 4, remaining[WindowHourly])
	assert.Equal(suite.T(), 9, remaining[WindowDaily])
	assert.Equal(suite.T(), 19, remaining[WindowMonthly])
}

func (suite *TieredTestSuite) TestRemainingForUnknownKey() {
	limiter := NewTiered()
	quotas := Quotas{PerHour: 5, PerDay: 10, PerMonth: 20}

	remaining := limiter.Remaining("never-seen", quotas)
	assert.Equal(suite.T(), 5, remaining[WindowHourly])
	assert.Equal(suite.T(), 10, remaining[WindowDaily])
	assert.Equal(suite.T(), 20, remaining[WindowMonthly])
}

func (suite *TieredTestSuite) TestKeysAreIsolated() {
	clock := newFakeClock()
	limiter := newTestTiered(clock)
	quotas := Quotas{PerHour: 1, PerDay: 10, PerMonth: 100}

	decision := limiter.Check("key-1", quotas)
	assert.True(suite.T(), decision.Allowed)

	decision = limiter.Check("key-1", quotas)
	assert.False(suite.T(), decision.Allowed)

	decision = limiter.Check("key-2", quotas)
	assert.True(suite.T(), decision.Allowed)
}

func (suite *TieredTestSuite) TestReset() {
	clock := newFakeClock()
	limiter := newTestTiered(clock)
	quotas := Quotas{PerHour: 1, PerDay: 10, PerMonth: 100}

	limiter.Check("key-1", quotas)
	limiter.Reset("key-1")

	decision := limiter.Check("key-1", quotas)
	assert.True(suite.T(), decision.Allowed)
}

func (suite *TieredTestSuite) TestCleanupDropsIdleKeys() {
	clock := newFakeClock()
	limiter := newTestTiered(clock)
	quotas := Quotas{PerHour: 10, PerDay: 100, PerMonth: 1000}

	limiter.Check("key-1", quotas)
	clock.Advance(MonthWindow + time.Hour)

	// One timestamp per window goes stale.
	assert.Equal(suite.T(), 3, limiter.Cleanup())
	assert.Equal(suite.T(), 0, limiter.Stats().UniqueKeys)
}

func (suite *TieredTestSuite) TestStats() {
	clock := newFakeClock()
	limiter := newTestTiered(clock)
	quotas := Quotas{PerHour: 1, PerDay: 10, PerMonth: 100}

	limiter.Check("key-1", quotas)
	limiter.Check("key-1", quotas)
	limiter.Check("key-2", quotas)

	stats := limiter.Stats()
	assert.Equal(suite.T(), int64(3), stats.TotalRequests)
	assert.Equal(suite.T(), int64(1), stats.BlockedRequests)
	assert.Equal(suite.T(), 2, stats.UniqueKeys)
}
