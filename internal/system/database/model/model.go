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

// Package model defines the structures used by the database layer.
package model

// DBQuery represents an identified SQL query.
type DBQuery struct {
	// ID uniquely identifies the query for tracing.
	ID string
	// Query is the SQL statement.
	Query string
}

// GetID returns the query identifier.
func (q DBQuery) GetID() string {
	return q.ID
}

// GetQuery returns the SQL statement.
func (q DBQuery) GetQuery() string {
	return q.Query
}
