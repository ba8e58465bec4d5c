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
	"errors"
	"time"

	"github.com/intelliweather/intelliweather/internal/system/database/provider"
	"github.com/intelliweather/intelliweather/internal/system/log"
)

// ErrKeyNotFound is returned when no API key matches the lookup.
var ErrKeyNotFound = errors.New("api key not found")

// storeInterface defines the persistence operations for API keys.
type storeInterface interface {
	getByHash(keyHash string) (*APIKey, error)
	create(key *APIKey) error
	updateLastUsed(keyID string, usedAt time.Time) error
}

// store is the postgres-backed implementation of storeInterface.
type store struct {
	dbProvider provider.DBProviderInterface
}

func newStore(dbProvider provider.DBProviderInterface) storeInterface {
	return &store{
		dbProvider: dbProvider,
	}
}

// getByHash returns the API key stored under the given hash.
func (s *store) getByHash(keyHash string) (*APIKey, error) {
	dbClient, err := s.dbProvider.GetDBClient()
	if err != nil {
		return nil, err
	}
	defer closeClient(dbClient.Close)

	results, err := dbClient.Query(queryGetAPIKeyByHash, keyHash)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrKeyNotFound
	}

	return buildAPIKeyFromRow(results[0])
}

// create persists a new API key.
func (s *store) create(key *APIKey) error {
	dbClient, err := s.dbProvider.GetDBClient()
	if err != nil {
		return err
	}
	defer closeClient(dbClient.Close)

	_, err = dbClient.Execute(queryCreateAPIKey, key.KeyID, key.UserID, key.Name, key.KeyHash,
		key.KeyPrefix, key.Tier, key.CreatedAt, key.ExpiresAt, key.IsActive)
	return err
}

// updateLastUsed records when the key was last presented.
func (s *store) updateLastUsed(keyID string, usedAt time.Time) error {
	dbClient, err := s.dbProvider.GetDBClient()
	if err != nil {
		return err
	}
	defer closeClient(dbClient.Close)

	_, err = dbClient.Execute(queryUpdateAPIKeyLastUsed, usedAt, keyID)
	return err
}

// buildAPIKeyFromRow converts a query result row into an APIKey.
func buildAPIKeyFromRow(row map[string]interface{}) (*APIKey, error) {
	key := &APIKey{}

	var ok bool
	if key.KeyID, ok = row["key_id"].(string); !ok {
		return nil, errors.New("failed to parse key_id as string")
	}
	if key.UserID, ok = row["user_id"].(string); !ok {
		return nil, errors.New("failed to parse user_id as string")
	}
	if key.Name, ok = row["name"].(string); !ok {
		return nil, errors.New("failed to parse name as string")
	}
	if key.KeyHash, ok = row["key_hash"].(string); !ok {
		return nil, errors.New("failed to parse key_hash as string")
	}
	if key.KeyPrefix, ok = row["key_prefix"].(string); !ok {
		return nil, errors.New("failed to parse key_prefix as string")
	}
	if key.Tier, ok = row["tier"].(string); !ok {
		return nil, errors.New("failed to parse tier as string")
	}
	if key.IsActive, ok = row["is_active"].(bool); !ok {
		return nil, errors.New("failed to parse is_active as bool")
	}

	if createdAt, ok := row["created_at"].(time.Time); ok {
		key.CreatedAt = createdAt
	}
	if expiresAt, ok := row["expires_at"].(time.Time); ok {
		key.ExpiresAt = &expiresAt
	}
	if lastUsedAt, ok := row["last_used_at"].(time.Time); ok {
		key.LastUsedAt = &lastUsedAt
	}

	return key, nil
}

func closeClient(closeFn func() error) {
	if err := closeFn(); err != nil {
		log.GetLogger().Error("Error closing database client", log.Error(err))
	}
}
