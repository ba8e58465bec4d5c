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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/intelliweather/intelliweather/internal/ratelimit"
	"github.com/intelliweather/intelliweather/internal/system/config"
)

type KeyMiddlewareTestSuite struct {
	suite.Suite
}

func TestKeyMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(KeyMiddlewareTestSuite))
}

// mockService implements ServiceInterface with overridable functions.
type mockService struct {
	validateKeyFunc func(rawKey string) (*APIKey, error)
}

func (m *mockService) ValidateKey(rawKey string) (*APIKey, error) {
	if m.validateKeyFunc != nil {
		return m.validateKeyFunc(rawKey)
	}
	return nil, ErrInvalidKey
}

func (m *mockService) CreateKey(userID, name, tier string, expiresIn time.Duration) (*APIKey, string, error) {
	return nil, "", nil
}

func freeTierQuotas(tier string) config.TierQuota {
	return config.TierQuota{RequestsPerHour: 2, RequestsPerDay: 100, RequestsPerMonth: 1000}
}

func passThroughHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func (suite *KeyMiddlewareTestSuite) TestRequestWithoutKeyPassesThrough() {
	called := false
	handler := NewMiddleware(&mockService{}, ratelimit.NewTiered(), freeTierQuotas).
		Wrap(passThroughHandler(&called))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/weather/current", nil))

	assert.True(suite.T(), called)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *KeyMiddlewareTestSuite) TestInvalidKeyReturnsUnauthorized() {
	called := false
	handler := NewMiddleware(&mockService{}, ratelimit.NewTiered(), freeTierQuotas).
		Wrap(passThroughHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/weather/current", nil)
	req.Header.Set("X-API-Key", "iw_live_bogus")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(suite.T(), called)
	assert.Equal(suite.T(), http.StatusUnauthorized, rec.Code)
}

func (suite *KeyMiddlewareTestSuite) TestValidKeyAdmittedWithinQuota() {
	key := &APIKey{KeyID: "key-1", Tier: "free", IsActive: true}
	service := &mockService{
		validateKeyFunc: func(rawKey string) (*APIKey, error) { return key, nil },
	}

	called := false
	handler := NewMiddleware(service, ratelimit.NewTiered(), freeTierQuotas).
		Wrap(passThroughHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/weather/current", nil)
	req.Header.Set("X-API-Key", "iw_live_0123456789abcdef")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(suite.T(), called)
	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *KeyMiddlewareTestSuite) TestQuotaExhaustionNamesWindow() {
	key := &APIKey{KeyID: "key-1", Tier: "free", IsActive: true}
	service := &mockService{
		validateKeyFunc: func(rawKey string) (*APIKey, error) { return key, nil },
	}

	handler := NewMiddleware(service, ratelimit.NewTiered(), freeTierQuotas).
		Wrap(passThroughHandler(new(bool)))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/weather/current", nil)
		req.Header.Set("X-API-Key", "iw_live_0123456789abcdef")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	send()
	send()
	rec := send()

	assert.Equal(suite.T(), http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(suite.T(), rec.Header().Get("Retry-After"))

	var body map[string]interface{}
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(suite.T(), "Rate limit exceeded: hourly", body["detail"])
	assert.Equal(suite.T(), "free", body["tier"])
}

func (suite *KeyMiddlewareTestSuite) TestBearerTokenFallback() {
	var presented string
	service := &mockService{
		validateKeyFunc: func(rawKey string) (*APIKey, error) {
			presented = rawKey
			return &APIKey{KeyID: "key-1", Tier: "free", IsActive: true}, nil
		},
	}

	handler := NewMiddleware(service, ratelimit.NewTiered(), freeTierQuotas).
		Wrap(passThroughHandler(new(bool)))

	req := httptest.NewRequest(http.MethodGet, "/weather/current", nil)
	req.Header.Set("Authorization", "Bearer iw_live_fromheader")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(suite.T(), "iw_live_fromheader", presented)
}

func (suite *KeyMiddlewareTestSuite) TestHeaderKeyTakesPrecedenceOverBearer() {
	var presented string
	service := &mockService{
		validateKeyFunc: func(rawKey string) (*APIKey, error) {
			presented = rawKey
			return &APIKey{KeyID: "key-1", Tier: "free", IsActive: true}, nil
		},
	}

	handler := NewMiddleware(service, ratelimit.NewTiered(), freeTierQuotas).
		Wrap(passThroughHandler(new(bool)))

	req := httptest.NewRequest(http.MethodGet, "/weather/current", nil)
	req.Header.Set("X-API-Key", "iw_live_primary")
	req.Header.Set("Authorization", "Bearer iw_live_secondary")

	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(suite.T(), "iw_live_primary", presented)
}
