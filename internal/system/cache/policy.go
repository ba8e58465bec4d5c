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

// Eviction policy names accepted in configuration.
const (
	PolicyNameLeastHits   = "least_hits"
	PolicyNameOldestFirst = "oldest_first"
)

// EvictionPolicy selects the entry to remove when the cache is full.
// SelectVictim is called with the cache lock held and must return a key
// present in the entries map, or the empty string when the map is empty.
type EvictionPolicy[T any] interface {
	Name() string
	SelectVictim(entries map[string]*Entry[T]) string
}

// PolicyFromName returns the eviction policy registered under the given name,
// defaulting to least-hits for unknown names.
func PolicyFromName[T any](name string) EvictionPolicy[T] {
	switch name {
	case PolicyNameOldestFirst:
		return NewOldestFirstPolicy[T]()
	default:
		return NewLeastHitsPolicy[T]()
	}
}

// leastHitsPolicy evicts the entry with the lowest hit count. Hit frequency is
// a cheap proxy for recency; the scan is O(n) over a bounded store. Ties are
// broken by oldest CreatedAt, then by the lexicographically smallest key, so
// victim selection never depends on map iteration order.
type leastHitsPolicy[T any] struct{}

// NewLeastHitsPolicy creates the default least-hits eviction policy.
func NewLeastHitsPolicy[T any]() EvictionPolicy[T] {
	return leastHitsPolicy[T]{}
}

// Name returns the policy name.
func (leastHitsPolicy[T]) Name() string {
	return PolicyNameLeastHits
}

// SelectVictim returns the key with the minimum hit count.
func (leastHitsPolicy[T]) SelectVictim(entries map[string]*Entry[T]) string {
	var victimKey string
	var victim *Entry[T]

	for key, entry := range entries {
		if victim == nil || lessByHits(entry, key, victim, victimKey) {
			victim, victimKey = entry, key
		}
	}
	return victimKey
}

func lessByHits[T any](a *Entry[T], aKey string, b *Entry[T], bKey string) bool {
	if a.HitCount != b.HitCount {
		return a.HitCount < b.HitCount
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return aKey < bKey
}

// oldestFirstPolicy evicts the entry created first, ignoring access patterns.
type oldestFirstPolicy[T any] struct{}

// NewOldestFirstPolicy creates a FIFO eviction policy.
func NewOldestFirstPolicy[T any]() EvictionPolicy[T] {
	return oldestFirstPolicy[T]{}
}

// Name returns the policy name.
func (oldestFirstPolicy[T]) Name() string {
	return PolicyNameOldestFirst
}

// SelectVictim returns the key of the oldest entry.
func (oldestFirstPolicy[T]) SelectVictim(entries map[string]*Entry[T]) string {
	var victimKey string
	var victim *Entry[T]

	for key, entry := range entries {
		if victim == nil || entry.CreatedAt.Before(victim.CreatedAt) ||
			(entry.CreatedAt.Equal(victim.CreatedAt) && key < victimKey) {
			victim, victimKey = entry, key
		}
	}
	return victimKey
}
