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

// Package constants defines global constants used across the system module.
package constants

const (
	// LogLevelEnvironmentVariable is the environment variable name for the log level.
	LogLevelEnvironmentVariable = "LOG_LEVEL"
	// DefaultLogLevel is the default log level used if not specified.
	DefaultLogLevel = "info"
)

// AuthorizationHeaderName is the name of the authorization header used in HTTP requests.
const AuthorizationHeaderName = "Authorization"

// APIKeyHeaderName is the name of the header carrying an API key.
const APIKeyHeaderName = "X-API-Key"

// ContentTypeHeaderName is the name of the content type header used in HTTP requests.
const ContentTypeHeaderName = "Content-Type"

// TokenTypeBearer is the token type used in bearer authentication.
const TokenTypeBearer = "Bearer"

// ContentTypeJSON is the content type for JSON data.
const ContentTypeJSON = "application/json"

// RetryAfterHeaderName is the name of the header advising clients when to retry.
const RetryAfterHeaderName = "Retry-After"

// RateLimitLimitHeaderName reports the request quota for the current window.
const RateLimitLimitHeaderName = "X-RateLimit-Limit"

// RateLimitRemainingHeaderName reports the remaining quota for the current window.
const RateLimitRemainingHeaderName = "X-RateLimit-Remaining"

// RateLimitResetHeaderName reports the Unix time at which the current window resets.
const RateLimitResetHeaderName = "X-RateLimit-Reset"
