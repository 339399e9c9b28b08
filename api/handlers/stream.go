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

package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"path"

	"github.com/pixlise/survival-extractor/api/services"
)

// If it's a handler that sends back a file, use this. Returns the file name and its contents
type ApiFileHandlerFunc func(ApiHandlerParams) (string, []byte, error)

type ApiFileHandler struct {
	*services.APIServices
	File ApiFileHandlerFunc
}

func (h ApiFileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pathParams := makePathParams(h.APIServices, r)

	name, data, err := h.File(ApiHandlerParams{h.APIServices, pathParams, r})
	if err != nil {
		logHandlerErrors(err, h.APIServices.Log, w, r)
		return
	}

	contType := mime.TypeByExtension(path.Ext(name))
	if len(contType) <= 0 {
		contType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=\"%s\"", name))
	// Same URL serves whichever image is current, so never cache
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Length", fmt.Sprintf("%v", len(data)))

	bytesWritten, err := w.Write(data)
	if err != nil {
		h.APIServices.Log.Errorf("Error writing %v to the http response: %v", name, err)
		return
	}
	h.APIServices.Log.Debugf("Download of \"%s\" complete. Wrote %v bytes", name, bytesWritten)
}
