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
	"net/http"
	"testing"

	"github.com/pixlise/survival-extractor/core/calibration"
	"github.com/pixlise/survival-extractor/core/dataset"
	"github.com/pixlise/survival-extractor/core/errorwithstatus"
	"github.com/pixlise/survival-extractor/core/points"
	"github.com/pixlise/survival-extractor/core/session"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Example_makeEndpointPath() {
	fmt.Println(MakeEndpointPath("image"))
	fmt.Println(MakeEndpointPath("groups", "name", "/newName/"))
	fmt.Println(MakeEndpointPath("dataset/filter", "incomplete"))

	// Output:
	// /image
	// /groups/{name}/{newName}
	// /dataset/filter/{incomplete}
}

func Test_withStatus(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{errors.Wrap(calibration.ErrInvalidBounds, "x min and max are both 3"), http.StatusBadRequest},
		{calibration.ErrDegenerateCalibration, http.StatusBadRequest},
		{points.ErrInvalidThreshold, http.StatusBadRequest},
		{points.ErrInvalidGroupName, http.StatusBadRequest},
		{session.ErrOutOfBounds, http.StatusBadRequest},
		{errors.Wrapf(points.ErrUnknownGroup, "%q", "KO"), http.StatusNotFound},
		{session.ErrNoImage, http.StatusNotFound},
		{dataset.ErrEmptyDataset, http.StatusNotFound},
		{dataset.ErrUnknownImage, http.StatusNotFound},
		{points.ErrDuplicateGroup, http.StatusConflict},
		{calibration.ErrNotCalibrated, http.StatusConflict},
		{errorwithstatus.MakeStatusError(http.StatusTeapot, errors.New("short and stout")), http.StatusTeapot},
	}

	for _, tc := range tests {
		result, ok := withStatus(tc.err).(errorwithstatus.Error)
		if assert.True(t, ok, tc.err.Error()) {
			assert.Equal(t, tc.code, result.Status(), tc.err.Error())
		}
	}

	// Anything else is left for the 500 path
	_, ok := withStatus(errors.New("disk on fire")).(errorwithstatus.Error)
	assert.False(t, ok)
}
