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

// Package main is the entry point for starting the IntelliWeather server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/intelliweather/intelliweather/internal/system/config"
	"github.com/intelliweather/intelliweather/internal/system/log"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.GetLogger()

	serverHome := getServerHome(logger)

	cfg := initConfigurations(logger, serverHome)
	if cfg == nil {
		logger.Fatal("Failed to initialize configurations")
	}

	serviceMgr := newServiceManager(cfg)

	mux := http.NewServeMux()
	serviceMgr.registerServices(mux)

	server := createHTTPServer(cfg, serviceMgr.buildHandler(mux))
	runServer(logger, server, serviceMgr)
}

// getServerHome retrieves and returns the server home directory.
func getServerHome(logger *log.Logger) string {
	serverHome := ""
	serverHomeFlag := flag.String("serverHome", "", "Path to the server home directory")
	flag.Parse()

	if *serverHomeFlag != "" {
		logger.Info("Using serverHome from command line argument",
			log.String("serverHome", *serverHomeFlag))
		serverHome = *serverHomeFlag
	} else {
		dir, dirErr := os.Getwd()
		if dirErr != nil {
			logger.Fatal("Failed to get current working directory", log.Error(dirErr))
		}
		serverHome = dir
	}

	return serverHome
}

// initConfigurations loads the server configurations.
func initConfigurations(logger *log.Logger, serverHome string) *config.Config {
	configFilePath := path.Join(serverHome, "repository/conf/deployment.yaml")
	cfg, err := config.LoadConfig(configFilePath)
	if err != nil {
		logger.Fatal("Failed to load configurations", log.Error(err))
	}
	return cfg
}

// createHTTPServer creates and configures an HTTP server with common settings.
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Hostname, cfg.Server.Port)

	return &http.Server{
		Addr:              serverAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Mitigate Slowloris attacks
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// runServer serves requests until an interrupt arrives, then drains in-flight
// requests and stops the background workers.
func runServer(logger *log.Logger, server *http.Server, serviceMgr *serviceManager) {
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("IntelliWeather server started (HTTP)...", log.String("address", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to serve HTTP requests", log.Error(err))
		}
	case sig := <-interrupt:
		logger.Info("Shutdown signal received", log.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Failed to shut down the server gracefully", log.Error(err))
		}
	}

	serviceMgr.shutdown()
	logger.Info("IntelliWeather server stopped")
}
