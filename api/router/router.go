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

package apiRouter

import (
	"net/http"
	"sort"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/gorilla/mux"
	"github.com/pixlise/survival-extractor/api/handlers"
	"github.com/pixlise/survival-extractor/api/services"
)

// Route - a method and path we have a handler for
type Route struct {
	Method string
	Path   string
}

type ApiObjectRouter struct {
	Routes map[Route]bool
	Svcs   *services.APIServices
	Router *mux.Router
}

// NewAPIRouter - routes match on the escaped path, so a group name containing / can still be a
// single path segment. Handlers see the unescaped values
func NewAPIRouter(svcs *services.APIServices, router *mux.Router) ApiObjectRouter {
	router.UseEncodedPath()
	return ApiObjectRouter{map[Route]bool{}, svcs, router}
}

func (r *ApiObjectRouter) AddJSONHandler(path string, method string, handleFunc handlers.ApiHandlerFunc) {
	r.addHandler(path, method, &handlers.ApiHandlerJSON{APIServices: r.Svcs, Handler: handleFunc})
}

func (r *ApiObjectRouter) AddFileHandler(path string, method string, handleFunc handlers.ApiFileHandlerFunc) {
	r.addHandler(path, method, &handlers.ApiFileHandler{APIServices: r.Svcs, File: handleFunc})
}

func (r *ApiObjectRouter) AddPublicHandler(path string, method string, handleFunc handlers.ApiHandlerGenericPublicFunc) {
	r.addHandler(path, method, &handlers.ApiHandlerGenericPublic{APIServices: r.Svcs, Handler: handleFunc})
}

func (r *ApiObjectRouter) addHandler(path string, method string, handler http.Handler) {
	handlerToSave := handler

	// If needed, wrap in a sentry handler
	if r.Svcs.Config.EnvironmentName != "unit-test" && r.Svcs.Config.EnvironmentName != "local" {
		sentryHandler := sentryhttp.New(sentryhttp.Options{
			Repanic:         true,
			WaitForDelivery: true,
		})

		handlerToSave = sentryHandler.Handle(handler)
	}

	route := Route{method, path}
	if r.Routes[route] {
		r.Svcs.Log.Errorf("Path handler already defined for: %v, method: %v", path, method)
		return
	}
	r.Routes[route] = true

	// Add to router
	r.Router.Handle(path, handlerToSave).Methods(method)
}

// GetRoutes - everything registered, sorted by path then method
func (r *ApiObjectRouter) GetRoutes() []Route {
	result := make([]Route, 0, len(r.Routes))
	for route := range r.Routes {
		result = append(result, route)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Path != result[j].Path {
			return result[i].Path < result[j].Path
		}
		return result[i].Method < result[j].Method
	})
	return result
}
