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
	"strconv"

	"github.com/pixlise/survival-extractor/api/handlers"
	apiRouter "github.com/pixlise/survival-extractor/api/router"
	"github.com/pixlise/survival-extractor/core/errorwithstatus"
	"github.com/pkg/errors"
)

////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Opening datasets and moving between their images

type openDatasetBody struct {
	Root string `json:"root"`
}

func registerDatasetHandler(router *apiRouter.ApiObjectRouter) {
	const pathPrefix = "dataset"

	router.AddJSONHandler(handlers.MakeEndpointPath(pathPrefix), "POST", datasetOpen)
	router.AddJSONHandler(handlers.MakeEndpointPath(pathPrefix+"/progress"), "GET", datasetProgress)
	router.AddJSONHandler(handlers.MakeEndpointPath(pathPrefix+"/filter", pathParamIncomplete), "PUT", datasetSetFilter)

	const imagePrefix = "image"

	router.AddJSONHandler(handlers.MakeEndpointPath(imagePrefix), "GET", imageView)
	router.AddFileHandler(handlers.MakeEndpointPath(imagePrefix+"/file"), "GET", imageFile)
	router.AddJSONHandler(handlers.MakeEndpointPath(imagePrefix+"/next"), "POST", imageNext)
	router.AddJSONHandler(handlers.MakeEndpointPath(imagePrefix+"/previous"), "POST", imagePrevious)
	router.AddJSONHandler(handlers.MakeEndpointPath(imagePrefix+"/goto", pathParamImageID), "POST", imageGoto)
}

func datasetOpen(params handlers.ApiHandlerParams) (interface{}, error) {
	var req openDatasetBody
	if err := handlers.ReadJSONBody(params.Request, &req); err != nil {
		return nil, err
	}
	if len(req.Root) <= 0 {
		return nil, errorwithstatus.MakeBadRequestError(errors.New("dataset root not specified"))
	}

	return params.Svcs.Session.OpenDataset(req.Root)
}

func datasetProgress(params handlers.ApiHandlerParams) (interface{}, error) {
	return params.Svcs.Session.Progress()
}

func datasetSetFilter(params handlers.ApiHandlerParams) (interface{}, error) {
	incomplete, err := strconv.ParseBool(params.PathParams[pathParamIncomplete])
	if err != nil {
		return nil, errorwithstatus.MakeBadRequestError(errors.New("filter must be true or false"))
	}
	return params.Svcs.Session.SetFilter(incomplete)
}

func imageView(params handlers.ApiHandlerParams) (interface{}, error) {
	return params.Svcs.Session.View()
}

func imageFile(params handlers.ApiHandlerParams) (string, []byte, error) {
	return params.Svcs.Session.ReadImage()
}

func imageNext(params handlers.ApiHandlerParams) (interface{}, error) {
	return params.Svcs.Session.Next()
}

func imagePrevious(params handlers.ApiHandlerParams) (interface{}, error) {
	return params.Svcs.Session.Previous()
}

func imageGoto(params handlers.ApiHandlerParams) (interface{}, error) {
	return params.Svcs.Session.Goto(params.PathParams[pathParamImageID])
}
