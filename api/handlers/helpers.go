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

// Base handler types endpoints are built from. JSON, file download and raw public variants
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pixlise/survival-extractor/api/services"
	"github.com/pixlise/survival-extractor/core/calibration"
	"github.com/pixlise/survival-extractor/core/dataset"
	"github.com/pixlise/survival-extractor/core/errorwithstatus"
	"github.com/pixlise/survival-extractor/core/logger"
	"github.com/pixlise/survival-extractor/core/points"
	"github.com/pixlise/survival-extractor/core/session"
	"github.com/pkg/errors"
)

const HostParamName = "hostname"

// Largest request body we'll read. Everything we accept is a few small fields
const maxBodyBytes = 64 * 1024

// MakeEndpointPath - joins prefix with a {param} segment per name, for registering with the router
func MakeEndpointPath(pathPrefix string, pathParamNames ...string) string {
	vals := []string{"/" + pathPrefix}

	for _, param := range pathParamNames {
		vals = append(vals, "{"+strings.Trim(param, "/")+"}")
	}

	return path.Join(vals...)
}

func makePathParams(svcs *services.APIServices, r *http.Request) map[string]string {
	// Get path params
	pathParams := map[string]string{}
	for name, value := range mux.Vars(r) {
		// Router matches the escaped path, so vars arrive still escaped
		if unescaped, err := url.PathUnescape(value); err == nil {
			value = unescaped
		}
		pathParams[name] = value
	}

	queries := r.URL.Query()
	for q, v := range queries {
		if len(v) > 0 {
			pathParams[q] = v[0] // we ignore subsequent ones
		}
	}

	// Set the host name in case anything needs it
	if svcs.Config.EnvironmentName == "local" {
		pathParams[HostParamName] = "http://" + r.Host
	} else {
		pathParams[HostParamName] = "https://" + r.Host
	}

	return pathParams
}

// ReadJSONBody - decodes the request body into v. Failures come back as bad request errors
func ReadJSONBody(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errorwithstatus.MakeBadRequestError(fmt.Errorf("failed to read request body: %v", err))
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errorwithstatus.MakeBadRequestError(fmt.Errorf("request body not valid JSON: %v", err))
	}
	return nil
}

// withStatus - gives errors from the extraction code the HTTP status they should be reported with
func withStatus(err error) error {
	if _, ok := err.(errorwithstatus.Error); ok {
		return err
	}

	switch errors.Cause(err) {
	case calibration.ErrInvalidBounds,
		calibration.ErrDegenerateCalibration,
		points.ErrInvalidThreshold,
		points.ErrInvalidGroupName,
		points.ErrInvalidValue,
		session.ErrOutOfBounds:
		return errorwithstatus.MakeBadRequestError(err)
	case points.ErrUnknownGroup,
		session.ErrNoImage,
		dataset.ErrEmptyDataset,
		dataset.ErrUnknownImage:
		return errorwithstatus.MakeStatusError(http.StatusNotFound, err)
	case points.ErrDuplicateGroup,
		calibration.ErrNotCalibrated:
		return errorwithstatus.MakeConflictError(err)
	}
	return err
}

func logHandlerErrors(err error, log logger.ILogger, w http.ResponseWriter, r *http.Request) {
	switch e := withStatus(err).(type) {
	case errorwithstatus.Error:
		// We can retrieve the status here and write out a specific
		// HTTP status code.
		log.Errorf("Request: %v (%v), Result: status=%v, error=%v", r.URL, r.Method, e.Status(), e)
		http.Error(w, e.Error(), e.Status())
	default:
		log.Errorf("Request: %v (%v), Result: status=%v, error=%v", r.URL, r.Method, http.StatusInternalServerError, e)

		// Any error types we don't specifically look out for default
		// to serving a HTTP 500
		http.Error(w, fmt.Sprintf("%v", e), http.StatusInternalServerError)
	}
}
