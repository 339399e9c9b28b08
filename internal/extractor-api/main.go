// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package main

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/olahol/melody"
	"github.com/pixlise/survival-extractor/api/config"
	"github.com/pixlise/survival-extractor/api/endpoints"
	apiRouter "github.com/pixlise/survival-extractor/api/router"
	"github.com/pixlise/survival-extractor/api/services"
	"github.com/pixlise/survival-extractor/api/ws"
	"github.com/pixlise/survival-extractor/core/logger"
	"github.com/pixlise/survival-extractor/core/utils"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()

	// Logs all go to stdout
	iLog := &logger.StdOutLogger{}
	iLog.SetLogLevel(cfg.LogLevel)

	// This is for prometheus
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.MetricsAddress, nil); err != nil {
			iLog.Errorf("Metrics listener stopped: %v", err)
		}
	}()

	////////////////////////////////////////////////////
	// Set up WebSocket server
	m := melody.New()
	wsHandler := ws.MakeWSHandler(m, iLog)

	m.HandleConnect(wsHandler.HandleConnect)
	m.HandleDisconnect(wsHandler.HandleDisconnect)
	m.HandleMessage(wsHandler.HandleMessage)

	svcs := services.InitAPIServices(cfg, iLog, wsHandler)

	////////////////////////////////////////////////////
	// Set up HTTP server

	router := apiRouter.NewAPIRouter(svcs, mux.NewRouter())

	// Root request which shows status HTML page
	router.AddPublicHandler("/", "GET", endpoints.RootRequest)

	// User requesting version as JSON
	router.AddPublicHandler("/version-json", "GET", endpoints.GetVersionJSON)

	// Session events, expects the HTTP upgrade header
	router.AddPublicHandler("/ws", "GET", wsHandler.HandleSocketCreation)

	endpoints.RegisterExtractorHandlers(&router)

	printRoutes(router.GetRoutes())

	logware := endpoints.LoggerMiddleware{APIServices: svcs}
	router.Router.Use(logware.Middleware, endpoints.PrometheusMiddleware)

	if len(cfg.DatasetRoot) > 0 {
		if _, err := svcs.Session.OpenDataset(cfg.DatasetRoot); err != nil {
			iLog.Errorf("Failed to open dataset %v: %v", cfg.DatasetRoot, err)
		}
	}

	// Now also log this to the world...
	svcs.Log.Infof("API version \"%v\" started on %v...", services.ApiVersion, cfg.ListenAddress)

	log.Fatal(
		http.ListenAndServe(cfg.ListenAddress,
			handlers.CORS(
				handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type"}),
				handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS"}),
				handlers.AllowedOrigins(cfg.AllowedOrigins))(router.Router)))
}

func loadConfig() config.APIConfig {
	cfg, err := config.Init()
	if err != nil {
		log.Fatalf("Something went wrong with API config. Error: %v\n", err)
	}

	// Show the config
	cfgJSON, err := json.MarshalIndent(cfg, "", utils.PrettyPrintIndentForJSON)
	if err != nil {
		log.Fatalf("Error trying to display config\n")
	}

	log.Println(string(cfgJSON))
	return cfg
}
