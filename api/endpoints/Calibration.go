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
	"github.com/pixlise/survival-extractor/core/calibration"
	"github.com/pixlise/survival-extractor/core/errorwithstatus"
	"github.com/pkg/errors"
)

type boundsBody struct {
	calibration.Bounds

	// If true, the reference points already clicked are kept and only the domain values change
	KeepPoints bool `json:"keep_points"`
}

// Pixel position on the unscaled image
type pointBody struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

func readPointBody(params handlers.ApiHandlerParams) (calibration.Point, error) {
	var req pointBody
	if err := handlers.ReadJSONBody(params.Request, &req); err != nil {
		return calibration.Point{}, err
	}
	if req.X == nil || req.Y == nil {
		return calibration.Point{}, errorwithstatus.MakeBadRequestError(errors.New("point must have x and y"))
	}
	return calibration.Point{X: *req.X, Y: *req.Y}, nil
}

func registerCalibrationHandler(router *apiRouter.ApiObjectRouter) {
	const pathPrefix = "calibration"

	router.AddJSONHandler(handlers.MakeEndpointPath(pathPrefix+"/bounds"), "PUT", calibrationSetBounds)
	router.AddJSONHandler(handlers.MakeEndpointPath(pathPrefix+"/point"), "POST", calibrationSupplyPoint)
	router.AddJSONHandler(handlers.MakeEndpointPath(pathPrefix+"/point", pathParamRef), "PUT", calibrationMovePoint)
	router.AddJSONHandler(handlers.MakeEndpointPath(pathPrefix), "DELETE", calibrationReset)
}

func calibrationSetBounds(params handlers.ApiHandlerParams) (interface{}, error) {
	var req boundsBody
	if err := handlers.ReadJSONBody(params.Request, &req); err != nil {
		return nil, err
	}

	if req.KeepPoints {
		return params.Svcs.Session.UpdateBounds(req.Bounds)
	}
	return params.Svcs.Session.BeginCalibration(req.Bounds)
}

func calibrationSupplyPoint(params handlers.ApiHandlerParams) (interface{}, error) {
	p, err := readPointBody(params)
	if err != nil {
		return nil, err
	}
	return params.Svcs.Session.SupplyCalibrationPoint(p)
}

func calibrationMovePoint(params handlers.ApiHandlerParams) (interface{}, error) {
	ref, err := calibration.ParseReference(params.PathParams[pathParamRef])
	if err != nil {
		return nil, errorwithstatus.MakeBadRequestError(err)
	}

	p, err := readPointBody(params)
	if err != nil {
		return nil, err
	}
	return params.Svcs.Session.MoveCalibrationPoint(ref, p)
}

func calibrationReset(params handlers.ApiHandlerParams) (interface{}, error) {
	return params.Svcs.Session.ResetCalibration()
}
