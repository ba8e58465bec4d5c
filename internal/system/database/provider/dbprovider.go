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

// Package provider provides access to database clients built from configuration.
package provider

import (
	"database/sql"
	"fmt"

	"github.com/intelliweather/intelliweather/internal/system/config"
	"github.com/intelliweather/intelliweather/internal/system/database/client"
)

// DBProviderInterface defines the interface for obtaining database clients.
type DBProviderInterface interface {
	GetDBClient() (client.DBClientInterface, error)
}

// DBProvider is the default implementation of the DBProviderInterface.
type DBProvider struct {
	dataSource config.DataSource
}

// NewDBProvider creates a provider for the given data source.
func NewDBProvider(dataSource config.DataSource) DBProviderInterface {
	return &DBProvider{
		dataSource: dataSource,
	}
}

// GetDBClient opens a postgres connection for the configured data source and
// returns a client over it. The caller owns closing the client.
func (p *DBProvider) GetDBClient() (client.DBClientInterface, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.dataSource.Hostname, p.dataSource.Port, p.dataSource.Username,
		p.dataSource.Password, p.dataSource.Name, sslMode(p.dataSource))

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	return client.NewDBClient(db), nil
}

func sslMode(ds config.DataSource) string {
	if ds.SSLMode == "" {
		return "disable"
	}
	return ds.SSLMode
}
