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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/intelliweather/intelliweather/internal/ratelimit"
	"github.com/intelliweather/intelliweather/internal/system/cache"
)

type HealthCheckTestSuite struct {
	suite.Suite
}

func TestHealthCheckSuite(t *testing.T) {
	suite.Run(t, new(HealthCheckTestSuite))
}

// mockCache implements CacheInterface over a plain map. Lost entries can be
// simulated by dropping writes.
type mockCache struct {
	entries    map[string]map[string]interface{}
	dropWrites bool
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]map[string]interface{})}
}

func (m *mockCache) SetWithTTL(key string, value map[string]interface{}, ttl time.Duration) {
	if m.dropWrites {
		return
	}
	m.entries[key] = value
}

func (m *mockCache) Get(key string) (map[string]interface{}, bool) {
	value, ok := m.entries[key]
	return value, ok
}

func (m *mockCache) Delete(key string) bool {
	if _, ok := m.entries[key]; ok {
		delete(m.entries, key)
		return true
	}
	return false
}

func (m *mockCache) Stats() cache.Stats {
	return cache.Stats{Size: len(m.entries), MaxSize: 100}
}

func (suite *HealthCheckTestSuite) TestReadinessUpWithHealthyCache() {
	probe := newMockCache()
	svc := NewService(probe, nil, nil, nil)

	status := svc.CheckReadiness()

	assert.Equal(suite.T(), StatusUp, status.Status)
	assert.Len(suite.T(), status.ServiceStatus, 1)
	assert.Equal(suite.T(), "WeatherCache", status.ServiceStatus[0].ServiceName)
	assert.Equal(suite.T(), StatusUp, status.ServiceStatus[0].Status)

	// The probe entry must not linger.
	_, ok := probe.Get(cache.HealthKey)
	assert.False(suite.T(), ok)
}

func (suite *HealthCheckTestSuite) TestReadinessDownWhenCacheLosesEntries() {
	probe := newMockCache()
	probe.dropWrites = true
	svc := NewService(probe, nil, nil, nil)

	status := svc.CheckReadiness()

	assert.Equal(suite.T(), StatusDown, status.Status)
}

func (suite *HealthCheckTestSuite) TestReadinessWithoutDependencies() {
	svc := NewService(nil, nil, nil, nil)

	status := svc.CheckReadiness()

	assert.Equal(suite.T(), StatusUp, status.Status)
	assert.Empty(suite.T(), status.ServiceStatus)
}

func (suite *HealthCheckTestSuite) TestCollectStats() {
	probe := newMockCache()
	limiter := ratelimit.NewSlidingWindow(5, time.Minute)
	tiered := ratelimit.NewTiered()

	limiter.IsAllowed("10.0.0.1")
	tiered.Check("key-1", ratelimit.Quotas{PerHour: 10, PerDay: 100, PerMonth: 1000})

	svc := NewService(probe, nil, limiter, tiered)
	stats := svc.CollectStats()

	assert.Equal(suite.T(), 100, stats.Cache.MaxSize)
	assert.Equal(suite.T(), int64(1), stats.RateLimiter.TotalRequests)
	assert.Equal(suite.T(), int64(1), stats.TierLimiter.TotalRequests)
}

func (suite *HealthCheckTestSuite) TestLivenessHandler() {
	handler := NewHandler(NewService(newMockCache(), nil, nil, nil))

	rec := httptest.NewRecorder()
	handler.HandleLivenessRequest(rec, httptest.NewRequest(http.MethodGet, "/health/liveness", nil))

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *HealthCheckTestSuite) TestReadinessHandlerReportsStatus() {
	probe := newMockCache()
	handler := NewHandler(NewService(probe, nil, nil, nil))

	rec := httptest.NewRecorder()
	handler.HandleReadinessRequest(rec, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))
	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	var status ServerStatus
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(suite.T(), StatusUp, status.Status)

	probe.dropWrites = true
	rec = httptest.NewRecorder()
	handler.HandleReadinessRequest(rec, httptest.NewRequest(http.MethodGet, "/health/readiness", nil))
	assert.Equal(suite.T(), http.StatusServiceUnavailable, rec.Code)
}

func (suite *HealthCheckTestSuite) TestStatsHandler() {
	limiter := ratelimit.NewSlidingWindow(5, time.Minute)
	handler := NewHandler(NewService(newMockCache(), nil, limiter, nil))

	rec := httptest.NewRecorder()
	handler.HandleStatsRequest(rec, httptest.NewRequest(http.MethodGet, "/health/stats", nil))

	assert.Equal(suite.T(), http.StatusOK, rec.Code)

	var stats RuntimeStats
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(suite.T(), 5, stats.RateLimiter.RequestsPerWindow)
}
