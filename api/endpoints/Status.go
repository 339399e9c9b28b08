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

package endpoints

import (
	"github.com/pixlise/survival-extractor/api/handlers"
	apiRouter "github.com/pixlise/survival-extractor/api/router"
	"github.com/pixlise/survival-extractor/core/errorwithstatus"
	"github.com/pixlise/survival-extractor/core/record"
	"github.com/pixlise/survival-extractor/core/session"
)

type axesBody struct {
	// Optional, blank leaves the layout as is
	Layout string `json:"layout"`

	// Optional, blank fields leave those units as they are
	Units *record.Units `json:"units"`
}

type statusBody struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type exportResponse struct {
	Path string `json:"path"`
}

func registerStatusHandler(router *apiRouter.ApiObjectRouter) {
	router.AddJSONHandler(handlers.MakeEndpointPath("axes"), "PUT", axesPut)

	router.AddJSONHandler(handlers.MakeEndpointPath("status"), "PUT", statusPut)
	router.AddJSONHandler(handlers.MakeEndpointPath("status/toggle-done"), "POST", statusToggleDone)

	router.AddJSONHandler(handlers.MakeEndpointPath("export"), "POST", exportPost)
}

func axesPut(params handlers.ApiHandlerParams) (interface{}, error) {
	var req axesBody
	if err := handlers.ReadJSONBody(params.Request, &req); err != nil {
		return nil, err
	}

	// Validate everything before changing anything
	var layout record.AxisLayout
	if len(req.Layout) > 0 {
		var err error
		if layout, err = record.ParseAxisLayout(req.Layout); err != nil {
			return nil, errorwithstatus.MakeBadRequestError(err)
		}
	}

	var view session.View
	var err error
	if req.Units != nil {
		if view, err = params.Svcs.Session.SetUnits(*req.Units); err != nil {
			return nil, err
		}
	}
	if len(layout) > 0 {
		if view, err = params.Svcs.Session.SetAxisLayout(layout); err != nil {
			return nil, err
		}
	}

	if req.Units == nil && len(layout) <= 0 {
		return params.Svcs.Session.View()
	}
	return view, nil
}

func statusPut(params handlers.ApiHandlerParams) (interface{}, error) {
	var req statusBody
	if err := handlers.ReadJSONBody(params.Request, &req); err != nil {
		return nil, err
	}

	status, err := record.ParseStatus(req.Status)
	if err != nil {
		return nil, errorwithstatus.MakeBadRequestError(err)
	}

	return params.Svcs.Session.SetStatus(status, req.Error)
}

func statusToggleDone(params handlers.ApiHandlerParams) (interface{}, error) {
	return params.Svcs.Session.ToggleDone()
}

func exportPost(params handlers.ApiHandlerParams) (interface{}, error) {
	path, err := params.Svcs.Session.Export()
	if err != nil {
		return nil, err
	}
	return exportResponse{path}, nil
}
