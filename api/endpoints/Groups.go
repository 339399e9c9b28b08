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
	"github.com/pixlise/survival-extractor/core/points"
	"github.com/pkg/errors"
)

////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Experimental groups and their extracted times

type valueBody struct {
	Value *float64 `json:"value"`
}

func registerGroupHandler(router *apiRouter.ApiObjectRouter) {
	const groupPrefix = "groups"

	router.AddJSONHandler(handlers.MakeEndpointPath(groupPrefix, pathParamName), "POST", groupAdd)
	router.AddJSONHandler(handlers.MakeEndpointPath(groupPrefix, pathParamName), "DELETE", groupRemove)
	router.AddJSONHandler(handlers.MakeEndpointPath(groupPrefix, pathParamName, "rename", pathParamNewName), "PUT", groupRename)

	const pointPrefix = "points"

	router.AddJSONHandler(handlers.MakeEndpointPath(pointPrefix, pathParamGroup, pathParamThreshold, "click"), "PUT", pointClick)
	router.AddJSONHandler(handlers.MakeEndpointPath(pointPrefix, pathParamGroup, pathParamThreshold, "value"), "PUT", pointEdit)
	router.AddJSONHandler(handlers.MakeEndpointPath(pointPrefix, pathParamGroup, pathParamThreshold), "DELETE", pointClear)
}

func groupAdd(params handlers.ApiHandlerParams) (interface{}, error) {
	return params.Svcs.Session.AddGroup(params.PathParams[pathParamName])
}

func groupRemove(params handlers.ApiHandlerParams) (interface{}, error) {
	return params.Svcs.Session.RemoveGroup(params.PathParams[pathParamName])
}

func groupRename(params handlers.ApiHandlerParams) (interface{}, error) {
	return params.Svcs.Session.RenameGroup(params.PathParams[pathParamName], params.PathParams[pathParamNewName])
}

// Thresholds in paths can be written 50 or 50%
func readThreshold(params handlers.ApiHandlerParams) (int, error) {
	threshold, err := points.ParseThresholdKey(params.PathParams[pathParamThreshold])
	if err != nil {
		return 0, errorwithstatus.MakeBadRequestError(err)
	}
	return threshold, nil
}

func pointClick(params handlers.ApiHandlerParams) (interface{}, error) {
	threshold, err := readThreshold(params)
	if err != nil {
		return nil, err
	}

	p, err := readPointBody(params)
	if err != nil {
		return nil, err
	}

	return params.Svcs.Session.ClickPoint(params.PathParams[pathParamGroup], threshold, p)
}

func pointEdit(params handlers.ApiHandlerParams) (interface{}, error) {
	threshold, err := readThreshold(params)
	if err != nil {
		return nil, err
	}

	var req valueBody
	if err := handlers.ReadJSONBody(params.Request, &req); err != nil {
		return nil, err
	}
	if req.Value == nil {
		return nil, errorwithstatus.MakeBadRequestError(errors.New("value not specified"))
	}

	return params.Svcs.Session.EditPoint(params.PathParams[pathParamGroup], threshold, *req.Value)
}

func pointClear(params handlers.ApiHandlerParams) (interface{}, error) {
	threshold, err := readThreshold(params)
	if err != nil {
		return nil, err
	}
	return params.Svcs.Session.ClearPoint(params.PathParams[pathParamGroup], threshold)
}
