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
	dbmodel "github.com/intelliweather/intelliweather/internal/system/database/model"
)

var (
	// queryGetAPIKeyByHash retrieves an API key by its hash.
	queryGetAPIKeyByHash = dbmodel.DBQuery{
		ID: "AKQ-01",
		Query: "SELECT key_id, user_id, name, key_hash, key_prefix, tier, created_at, expires_at, " +
			"last_used_at, is_active FROM api_keys WHERE key_hash = $1",
	}

	// queryCreateAPIKey inserts a new API key.
	queryCreateAPIKey = dbmodel.DBQuery{
		ID: "AKQ-02",
		Query: "INSERT INTO api_keys (key_id, user_id, name, key_hash, key_prefix, tier, created_at, " +
			"expires_at, is_active) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
	}

	// queryUpdateAPIKeyLastUsed records the last use of an API key.
	queryUpdateAPIKeyLastUsed = dbmodel.DBQuery{
		ID:    "AKQ-03",
		Query: "UPDATE api_keys SET last_used_at = $1 WHERE key_id = $2",
	}
)
