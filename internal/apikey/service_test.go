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
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ServiceTestSuite struct {
	suite.Suite
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

// mockStore implements storeInterface with overridable functions.
type mockStore struct {
	getByHashFunc      func(hash string) (*APIKey, error)
	createFunc         func(key *APIKey) error
	updateLastUsedFunc func(keyID string, usedAt time.Time) error

	lastUsedCalls int
}

func (m *mockStore) getByHash(hash string) (*APIKey, error) {
	if m.getByHashFunc != nil {
		return m.getByHashFunc(hash)
	}
	return nil, ErrKeyNotFound
}

func (m *mockStore) create(key *APIKey) error {
	if m.createFunc != nil {
		return m.createFunc(key)
	}
	return nil
}

func (m *mockStore) updateLastUsed(keyID string, usedAt time.Time) error {
	m.lastUsedCalls++
	if m.updateLastUsedFunc != nil {
		return m.updateLastUsedFunc(keyID, usedAt)
	}
	return nil
}

func activeKey(rawKey string) *APIKey {
	return &APIKey{
		KeyID:     "key-1",
		UserID:    "user-1",
		Name:      "production",
		KeyHash:   hashKey(rawKey),
		KeyPrefix: rawKey[:keyPrefixLength],
		Tier:      "pro",
		CreatedAt: time.Now(),
		IsActive:  true,
	}
}

func (suite *ServiceTestSuite) TestValidateKeyRejectsBadShape() {
	svc := &Service{store: &mockStore{}}

	testCases := []struct {
		name   string
		rawKey string
	}{
		{name: "Empty", rawKey: ""},
		{name: "WrongPrefix", rawKey: "sk_live_abcdef"},
		{name: "PrefixOnlySuffixMissingFromStore", rawKey: "iw_live_unknown"},
	}

	for _, tc := range testCases {
		suite.T().Run(tc.name, func(t *testing.T) {
			key, err := svc.ValidateKey(tc.rawKey)
			assert.Nil(t, key)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func (suite *ServiceTestSuite) TestValidateKeyLooksUpByHash() {
	rawKey := "iw_live_0123456789abcdef"
	stored := activeKey(rawKey)

	store := &mockStore{
		getByHashFunc: func(hash string) (*APIKey, error) {
			if hash == stored.KeyHash {
				return stored, nil
			}
			return nil, ErrKeyNotFound
		},
	}
	svc := &Service{store: store}

	key, err := svc.ValidateKey(rawKey)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "key-1", key.KeyID)
	assert.Equal(suite.T(), 1, store.lastUsedCalls)
}

func (suite *ServiceTestSuite) TestValidateKeyInactive() {
	rawKey := "iw_live_0123456789abcdef"
	stored := activeKey(rawKey)
	stored.IsActive = false

	svc := &Service{store: &mockStore{
		getByHashFunc: func(hash string) (*APIKey, error) { return stored, nil },
	}}

	key, err := svc.ValidateKey(rawKey)
	assert.Nil(suite.T(), key)
	assert.ErrorIs(suite.T(), err, ErrKeyInactive)
}

func (suite *ServiceTestSuite) TestValidateKeyExpired() {
	rawKey := "iw_live_0123456789abcdef"
	stored := activeKey(rawKey)
	expiredAt := time.Now().Add(-time.Hour)
	stored.ExpiresAt = &expiredAt

	svc := &Service{store: &mockStore{
		getByHashFunc: func(hash string) (*APIKey, error) { return stored, nil },
	}}

	key, err := svc.ValidateKey(rawKey)
	assert.Nil(suite.T(), key)
	assert.ErrorIs(suite.T(), err, ErrKeyExpired)
}

func (suite *ServiceTestSuite) TestValidateKeySurvivesLastUsedFailure() {
	rawKey := "iw_live_0123456789abcdef"
	stored := activeKey(rawKey)

	svc := &Service{store: &mockStore{
		getByHashFunc:      func(hash string) (*APIKey, error) { return stored, nil },
		updateLastUsedFunc: func(keyID string, usedAt time.Time) error { return errors.New("db down") },
	}}

	key, err := svc.ValidateKey(rawKey)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), key)
}

func (suite *ServiceTestSuite) TestCreateKeyStoresHashNotSecret() {
	var created *APIKey
	svc := &Service{store: &mockStore{
		createFunc: func(key *APIKey) error {
			created = key
			return nil
		},
	}}

	key, rawKey, err := svc.CreateKey("user-1", "production", "pro", 0)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), created)

	assert.True(suite.T(), strings.HasPrefix(rawKey, "iw_live_"))
	assert.Equal(suite.T(), hashKey(rawKey), created.KeyHash)
	assert.Equal(suite.T(), rawKey[:keyPrefixLength], created.KeyPrefix)
	assert.NotContains(suite.T(), created.KeyHash, rawKey)
	assert.True(suite.T(), key.IsActive)
	assert.Nil(suite.T(), key.ExpiresAt)

	// The freshly issued key must validate against its own hash.
	validateSvc := &Service{store: &mockStore{
		getByHashFunc: func(hash string) (*APIKey, error) {
			if hash == created.KeyHash {
				return created, nil
			}
			return nil, ErrKeyNotFound
		},
	}}
	resolved, err := validateSvc.ValidateKey(rawKey)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), created.KeyID, resolved.KeyID)
}

func (suite *ServiceTestSuite) TestCreateKeyWithExpiry() {
	svc := &Service{store: &mockStore{}}

	key, _, err := svc.CreateKey("user-1", "trial", "free", time.Hour)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), key.ExpiresAt)
	assert.WithinDuration(suite.T(), time.Now().Add(time.Hour), *key.ExpiresAt, time.Minute)
}

func (suite *ServiceTestSuite) TestCreateKeyRequiresUserID() {
	svc := &Service{store: &mockStore{}}

	key, rawKey, err := svc.CreateKey("", "production", "pro", 0)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), key)
	assert.Empty(suite.T(), rawKey)
}

func (suite *ServiceTestSuite) TestCreateKeyPropagatesStoreError() {
	svc := &Service{store: &mockStore{
		createFunc: func(key *APIKey) error { return errors.New("insert failed") },
	}}

	key, rawKey, err := svc.CreateKey("user-1", "production", "pro", 0)
	assert.Error(suite.T(), err)
	assert.Nil(suite.T(), key)
	assert.Empty(suite.T(), rawKey)
}
