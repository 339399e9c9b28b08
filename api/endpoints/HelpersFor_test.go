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
	"bytes"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pixlise/survival-extractor/api/config"
	apiRouter "github.com/pixlise/survival-extractor/api/router"
	"github.com/pixlise/survival-extractor/api/services"
	"github.com/pixlise/survival-extractor/core/fileaccess"
	"github.com/pixlise/survival-extractor/core/logger"
	"github.com/pixlise/survival-extractor/core/record"
	"github.com/pixlise/survival-extractor/core/session"
	"github.com/pixlise/survival-extractor/core/timestamper"
)

const DatasetRootForUnitTest = "study-bucket"

// makeMockDataset - 800x500 blank PNGs with the given IDs
func makeMockDataset(imageIDs ...string) *fileaccess.MemAccess {
	var buf bytes.Buffer
	png.Encode(&buf, image.NewGray(image.Rect(0, 0, 800, 500)))

	fs := fileaccess.MakeMemAccess()
	for _, id := range imageIDs {
		fs.WriteObject(DatasetRootForUnitTest, "png/"+id+".png", buf.Bytes())
	}
	return fs
}

// MakeMockSvcs - services whose session opens every dataset root as a bucket in fs
func MakeMockSvcs(fs fileaccess.FileAccess, log logger.ILogger) *services.APIServices {
	if log == nil {
		log = &logger.NullLogger{}
	}

	cfg := config.APIConfig{
		EnvironmentName:   "unit-test",
		LogLevel:          logger.LogDebug,
		DefaultXAxisUnits: record.DefaultUnits.Time,
		DefaultYAxisUnits: record.DefaultUnits.Survival,
	}

	resolve := func(root string) (fileaccess.FileAccess, string, string, error) {
		return fs, root, "", nil
	}

	ts := &timestamper.MockTimeNowStamper{QueuedTimeStamps: []int64{1700000000}}

	return &services.APIServices{
		Config:      cfg,
		Log:         log,
		TimeStamper: ts,
		Session:     session.NewSession(resolve, log, ts, services.DefaultUnits(cfg), nil),
	}
}

func makeMockRouter(svcs *services.APIServices) apiRouter.ApiObjectRouter {
	router := apiRouter.NewAPIRouter(svcs, mux.NewRouter())
	router.AddPublicHandler("/", "GET", RootRequest)
	router.AddPublicHandler("/version-json", "GET", GetVersionJSON)
	RegisterExtractorHandlers(&router)
	return router
}

func executeRequest(req *http.Request, router *mux.Router) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	return rr
}

func makeRequest(method string, path string, body string) *http.Request {
	var req *http.Request
	if len(body) > 0 {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	return req
}
