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

// Package periodic provides a cancellable runner for recurring background tasks.
package periodic

import (
	"sync"
	"time"

	"github.com/intelliweather/intelliweather/internal/system/log"
)

const loggerComponentName = "PeriodicRunner"

// Runner invokes a task at a fixed interval on a dedicated goroutine.
// A panicking task iteration is recovered and logged so it never stops the loop.
type Runner struct {
	name     string
	interval time.Duration
	task     func()

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewRunner creates a runner for the given task. Start must be called to begin ticking.
func NewRunner(name string, interval time.Duration, task func()) *Runner {
	return &Runner{
		name:     name,
		interval: interval,
		task:     task,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background loop. Subsequent calls are no-ops.
func (r *Runner) Start() {
	r.startOnce.Do(func() {
		go r.loop()
	})
}

// Stop signals the loop to exit and waits for it to finish, up to the given timeout.
// It returns false if the loop did not stop in time.
func (r *Runner) Stop(timeout time.Duration) bool {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String("name", r.name))

	r.stopOnce.Do(func() {
		close(r.stop)
	})

	select {
	case <-r.done:
		logger.Debug("Periodic runner stopped")
		return true
	case <-time.After(timeout):
		logger.Warn("Periodic runner did not stop within timeout", log.Duration("timeout", timeout))
		return false
	}
}

func (r *Runner) loop() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.runTask()
		}
	}
}

// runTask executes one iteration, isolating the loop from task panics.
func (r *Runner) runTask() {
	defer func() {
		if rec := recover(); rec != nil {
			log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
				Error("Periodic task panicked", log.String("name", r.name), log.Any("panic", rec))
		}
	}()
	r.task()
}
