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

package weather

import (
	"github.com/intelliweather/intelliweather/internal/system/error/serviceerror"
)

// Client errors for weather data retrieval.
var (
	// ErrorMissingCoordinate is the error returned when lat or lon is absent.
	ErrorMissingCoordinate = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WTH-1001",
		Error:            "Invalid request format",
		ErrorDescription: "Query parameters 'lat' and 'lon' are required",
	}
	// ErrorInvalidCoordinate is the error returned when lat or lon is malformed or out of range.
	ErrorInvalidCoordinate = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WTH-1002",
		Error:            "Invalid coordinate",
		ErrorDescription: "Latitude must be within [-90, 90] and longitude within [-180, 180]",
	}
	// ErrorMissingLocationName is the error returned when the geocoding query is absent.
	ErrorMissingLocationName = serviceerror.ServiceError{
		Type:             serviceerror.ClientErrorType,
		Code:             "WTH-1003",
		Error:            "Invalid request format",
		ErrorDescription: "Query parameter 'name' is required",
	}
)

// Server errors for weather data retrieval.
var (
	// ErrorUpstreamFailure is the error returned when the upstream provider cannot be reached.
	ErrorUpstreamFailure = serviceerror.ServiceError{
		Type:             serviceerror.ServerErrorType,
		Code:             "WTH-5001",
		Error:            "Upstream provider failure",
		ErrorDescription: "Failed to retrieve data from the weather provider",
	}
)
