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
	"encoding/json"
	"fmt"

	"github.com/intelliweather/intelliweather/internal/system/cache"
	dbmodel "github.com/intelliweather/intelliweather/internal/system/database/model"
	"github.com/intelliweather/intelliweather/internal/system/database/provider"
	"github.com/intelliweather/intelliweather/internal/system/log"
)

var queryUpsertPopularEntry = dbmodel.DBQuery{
	ID: "WSQ-01",
	Query: "INSERT INTO popular_cache_entries (cache_key, payload, persisted_at) " +
		"VALUES ($1, $2, now()) " +
		"ON CONFLICT (cache_key) DO UPDATE SET payload = EXCLUDED.payload, persisted_at = now()",
}

// PopularEntryPersister returns a cache persist callback that writes evicted
// popular entries to the database so they survive restarts.
func PopularEntryPersister(dbProvider provider.DBProviderInterface) cache.PersistFunc[Payload] {
	return func(key string, value Payload) error {
		logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, "PopularEntryStore"))

		payload, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to serialize cache entry: %w", err)
		}

		dbClient, err := dbProvider.GetDBClient()
		if err != nil {
			return fmt.Errorf("failed to get database client: %w", err)
		}
		defer func() {
			if closeErr := dbClient.Close(); closeErr != nil {
				logger.Error("Failed to close database client", log.Error(closeErr))
			}
		}()

		if _, err := dbClient.Execute(queryUpsertPopularEntry, key, string(payload)); err != nil {
			return fmt.Errorf("failed to persist cache entry: %w", err)
		}
		return nil
	}
}
