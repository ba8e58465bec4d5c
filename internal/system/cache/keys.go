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
	"fmt"
	"math"
	"strconv"
	"strings"
)

// WeatherKeyPrefix is the shared prefix of all weather data cache keys.
const WeatherKeyPrefix = "weather:"

// GeocodeKeyPrefix is the shared prefix of all geocoding cache keys.
const GeocodeKeyPrefix = "geocode:"

// HealthKey is the reserved key used by the health check round-trip.
const HealthKey = "health:ping"

// WeatherKey builds a deterministic cache key for weather data. Coordinates are
// rounded to two decimal places (roughly 1 km) so nearby queries share entries.
func WeatherKey(lat, lon float64, dataType string) string {
	return fmt.Sprintf("%s%s:%s:%s", WeatherKeyPrefix, dataType, roundCoordinate(lat), roundCoordinate(lon))
}

// GeocodeKey builds a deterministic cache key for a geocoding query.
func GeocodeKey(query string) string {
	return GeocodeKeyPrefix + strings.ToLower(strings.TrimSpace(query))
}

// roundCoordinate formats a coordinate rounded to two decimal places without a
// trailing zero fraction, so -74.00 and -74 produce the same key.
func roundCoordinate(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
