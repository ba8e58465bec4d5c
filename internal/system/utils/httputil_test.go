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

package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type HTTPUtilTestSuite struct {
	suite.Suite
}

func TestHTTPUtilSuite(t *testing.T) {
	suite.Run(t, new(HTTPUtilTestSuite))
}

func (suite *HTTPUtilTestSuite) TestClientIP() {
	testCases := []struct {
		name          string
		remoteAddr    string
		forwardedFor  string
		realIP        string
		expectedValue string
	}{
		{
			name:          "ForwardedForSingle",
			remoteAddr:    "10.0.0.1:1234",
			forwardedFor:  "203.0.113.7",
			expectedValue: "203.0.113.7",
		},
		{
			name:          "ForwardedForChainTakesFirst",
			remoteAddr:    "10.0.0.1:1234",
			forwardedFor:  "203.0.113.7, 70.41.3.18, 150.172.238.178",
			expectedValue: "203.0.113.7",
		},
		{
			name:          "RealIPFallback",
			remoteAddr:    "10.0.0.1:1234",
			realIP:        "203.0.113.9",
			expectedValue: "203.0.113.9",
		},
		{
			name:          "ForwardedForBeatsRealIP",
			remoteAddr:    "10.0.0.1:1234",
			forwardedFor:  "203.0.113.7",
			realIP:        "203.0.113.9",
			expectedValue: "203.0.113.7",
		},
		{
			name:          "RemoteAddrFallback",
			remoteAddr:    "192.0.2.4:51234",
			expectedValue: "192.0.2.4",
		},
		{
			name:          "RemoteAddrWithoutPort",
			remoteAddr:    "192.0.2.4",
			expectedValue: "192.0.2.4",
		},
		{
			name:          "NothingAvailable",
			remoteAddr:    "",
			expectedValue: "unknown",
		},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.forwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tc.forwardedFor)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}

			assert.Equal(t, tc.expectedValue, ClientIP(req))
		})
	}
}

func (suite *HTTPUtilTestSuite) TestGetAllowedOrigin() {
	testCases := []struct {
		name           string
		allowedOrigins []string
		requestOrigin  string
		expectedValue  string
	}{
		{
			name:           "ExactMatch",
			allowedOrigins: []string{"https://app.example.com"},
			requestOrigin:  "https://app.example.com",
			expectedValue:  "https://app.example.com",
		},
		{
			name:           "Wildcard",
			allowedOrigins: []string{"*"},
			requestOrigin:  "https://anything.example.com",
			expectedValue:  "https://anything.example.com",
		},
		{
			name:           "NoMatch",
			allowedOrigins: []string{"https://app.example.com"},
			requestOrigin:  "https://evil.example.com",
			expectedValue:  "",
		},
		{
			name:           "EmptyList",
			allowedOrigins: nil,
			requestOrigin:  "https://app.example.com",
			expectedValue:  "",
		},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedValue, GetAllowedOrigin(tc.allowedOrigins, tc.requestOrigin))
		})
	}
}

func (suite *HTTPUtilTestSuite) TestWriteJSONResponse() {
	rec := httptest.NewRecorder()
	WriteJSONResponse(rec, http.StatusCreated, map[string]string{"status": "ok"})

	assert.Equal(suite.T(), http.StatusCreated, rec.Code)
	assert.Equal(suite.T(), "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(suite.T(), "ok", body["status"])
}

func (suite *HTTPUtilTestSuite) TestWriteJSONError() {
	rec := httptest.NewRecorder()
	WriteJSONError(rec, "invalid_request", "missing parameter", http.StatusBadRequest,
		[]map[string]string{{"Retry-After": "5"}})

	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(suite.T(), "5", rec.Header().Get("Retry-After"))

	var body map[string]string
	assert.NoError(suite.T(), json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(suite.T(), "invalid_request", body["error"])
	assert.Equal(suite.T(), "missing parameter", body["error_description"])
}
