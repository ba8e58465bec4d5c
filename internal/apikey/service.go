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
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/intelliweather/intelliweather/internal/system/database/provider"
	"github.com/intelliweather/intelliweather/internal/system/log"
)

const loggerComponentName = "APIKeyService"

// Validation errors returned by ValidateKey.
var (
	ErrInvalidKey  = errors.New("invalid api key")
	ErrKeyInactive = errors.New("api key is inactive")
	ErrKeyExpired  = errors.New("api key has expired")
)

// ServiceInterface defines the API key operations.
type ServiceInterface interface {
	// ValidateKey resolves a presented raw key to its stored identity.
	ValidateKey(rawKey string) (*APIKey, error)
	// CreateKey issues a new key for the user and returns it with the raw
	// secret, which is shown exactly once.
	CreateKey(userID, name, tier string, expiresIn time.Duration) (*APIKey, string, error)
}

// Service is the default implementation of ServiceInterface.
type Service struct {
	store storeInterface
}

// NewService creates an API key service over the given database provider.
func NewService(dbProvider provider.DBProviderInterface) ServiceInterface {
	return &Service{
		store: newStore(dbProvider),
	}
}

// ValidateKey checks the raw key shape, looks up its hash and verifies the
// stored key is active and unexpired. The last-used timestamp is updated on a
// best effort basis.
func (s *Service) ValidateKey(rawKey string) (*APIKey, error) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	rawKey = strings.TrimSpace(rawKey)
	if !strings.HasPrefix(rawKey, rawKeyPrefix) {
		return nil, ErrInvalidKey
	}

	key, err := s.store.getByHash(hashKey(rawKey))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrInvalidKey
		}
		return nil, err
	}

	if !key.IsActive {
		return nil, ErrKeyInactive
	}
	if key.isExpired(time.Now()) {
		return nil, ErrKeyExpired
	}

	if err := s.store.updateLastUsed(key.KeyID, time.Now()); err != nil {
		logger.Warn("Failed to update api key last used time",
			log.String(log.LoggerKeyKeyID, key.KeyID), log.Error(err))
	}

	return key, nil
}

// CreateKey generates a new random key, stores its hash and returns the raw
// secret alongside the stored record.
func (s *Service) CreateKey(userID, name, tier string, expiresIn time.Duration) (*APIKey, string, error) {
	if userID == "" {
		return nil, "", errors.New("user id is empty")
	}

	secret := make([]byte, 24)
	if _, err := rand.Read(secret); err != nil {
		return nil, "", fmt.Errorf("failed to generate api key: %w", err)
	}
	rawKey := rawKeyPrefix + hex.EncodeToString(secret)

	now := time.Now()
	var expiresAt *time.Time
	if expiresIn > 0 {
		expiry := now.Add(expiresIn)
		expiresAt = &expiry
	}

	key := &APIKey{
		KeyID:     generateKeyID(),
		UserID:    userID,
		Name:      name,
		KeyHash:   hashKey(rawKey),
		KeyPrefix: rawKey[:keyPrefixLength],
		Tier:      tier,
		CreatedAt: now,
		ExpiresAt: expiresAt,
		IsActive:  true,
	}

	if err := s.store.create(key); err != nil {
		return nil, "", err
	}

	log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).Info(
		"API key created", log.String(log.LoggerKeyKeyID, key.KeyID),
		log.String("keyPrefix", key.KeyPrefix), log.String("tier", tier))

	return key, rawKey, nil
}

// hashKey returns the hex-encoded SHA-256 digest of the raw key.
func hashKey(rawKey string) string {
	digest := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(digest[:])
}

// generateKeyID produces a random identifier for a new key.
func generateKeyID() string {
	id := make([]byte, 16)
	_, _ = rand.Read(id)
	return hex.EncodeToString(id)
}
