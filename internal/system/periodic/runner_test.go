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

package periodic

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type RunnerTestSuite struct {
	suite.Suite
}

func TestRunnerSuite(t *testing.T) {
	suite.Run(t, new(RunnerTestSuite))
}

func (suite *RunnerTestSuite) TestRunsTaskPeriodically() {
	var count atomic.Int64
	runner := NewRunner("ticker", 10*time.Millisecond, func() {
		count.Add(1)
	})
	runner.Start()

	assert.Eventually(suite.T(), func() bool {
		return count.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	assert.True(suite.T(), runner.Stop(time.Second))
}

func (suite *RunnerTestSuite) TestStopHaltsTask() {
	var count atomic.Int64
	runner := NewRunner("stopper", 10*time.Millisecond, func() {
		count.Add(1)
	})
	runner.Start()

	assert.Eventually(suite.T(), func() bool {
		return count.Load() >= 1
	}, time.Second, 5*time.Millisecond)

	assert.True(suite.T(), runner.Stop(time.Second))

	stopped := count.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(suite.T(), stopped, count.Load())
}

func (suite *RunnerTestSuite) TestStartIsIdempotent() {
	var count atomic.Int64
	runner := NewRunner("idempotent", 10*time.Millisecond, func() {
		count.Add(1)
	})
	runner.Start()
	runner.Start()
	runner.Start()

	time.Sleep(35 * time.Millisecond)
	assert.True(suite.T(), runner.Stop(time.Second))

	// A duplicated loop would roughly double the tick count.
	assert.LessOrEqual(suite.T(), count.Load(), int64(5))
}

func (suite *RunnerTestSuite) TestPanickingTaskKeepsTicking() {
	var count atomic.Int64
	runner := NewRunner("panicky", 10*time.Millisecond, func() {
		count.Add(1)
		panic("task failure")
	})
	runner.Start()

	assert.Eventually(suite.T(), func() bool {
		return count.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	assert.True(suite.T(), runner.Stop(time.Second))
}

func (suite *RunnerTestSuite) TestStopBeforeStartTimesOut() {
	runner := NewRunner("never-started", time.Hour, func() {})
	assert.False(suite.T(), runner.Stop(20*time.Millisecond))
}
