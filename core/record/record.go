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

// Loading and saving of per-image extraction results. One ImageRecord is in memory at a time,
// every change to it is written straight back to the dataset's results directory
package record

import (
	"fmt"

	"github.com/pixlise/survival-extractor/core/calibration"
	"github.com/pixlise/survival-extractor/core/merge"
	"github.com/pixlise/survival-extractor/core/points"
	"github.com/pkg/errors"
)

var ErrCorruptRecord = errors.New("corrupt saved record")

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusDone       Status = "done"
	StatusError      Status = "error"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusNotStarted, StatusDone, StatusError:
		return Status(s), nil
	case "":
		return StatusNotStarted, nil
	}
	return StatusNotStarted, fmt.Errorf("unknown status: %v", s)
}

// AxisLayout - which image axis time runs along. Survival is on the other one
type AxisLayout string

const (
	LayoutTimeX AxisLayout = "time_x"
	LayoutTimeY AxisLayout = "time_y"
)

const (
	axisTypeTime     = "time"
	axisTypeSurvival = "survival"
)

func ParseAxisLayout(s string) (AxisLayout, error) {
	switch AxisLayout(s) {
	case LayoutTimeX, LayoutTimeY:
		return AxisLayout(s), nil
	}
	return LayoutTimeX, fmt.Errorf("unknown axis layout: %v", s)
}

// AxisTypes - what we write as x_axis_type, y_axis_type
func (l AxisLayout) AxisTypes() (string, string) {
	if l == LayoutTimeY {
		return axisTypeSurvival, axisTypeTime
	}
	return axisTypeTime, axisTypeSurvival
}

func layoutFromAxisTypes(xType string, yType string) (AxisLayout, bool) {
	switch {
	case xType == axisTypeTime || yType == axisTypeSurvival:
		return LayoutTimeX, true
	case xType == axisTypeSurvival || yType == axisTypeTime:
		return LayoutTimeY, true
	}
	return LayoutTimeX, false
}

type Units struct {
	Time     string `json:"time"`
	Survival string `json:"survival"`
}

var DefaultUnits = Units{Time: "months", Survival: "% cumulative survival"}

// ImageRecord - everything we know about one image while it's being worked on
type ImageRecord struct {
	ImageID   string
	ImageFile string

	Calibration *calibration.Engine
	Points      *points.Store

	Status    Status
	ErrorText string

	Layout      AxisLayout
	Units       Units
	Description string

	// Unix seconds of the last successful save, 0 if never saved
	LastModified int64

	// Which tier each cell's starting value came from
	Provenance merge.Result
}

func NewImageRecord(imageID string, imageFile string, units Units) *ImageRecord {
	return &ImageRecord{
		ImageID:     imageID,
		ImageFile:   imageFile,
		Calibration: calibration.NewEngine(),
		Points:      points.NewStore(),
		Status:      StatusNotStarted,
		Layout:      LayoutTimeX,
		Units:       units,
	}
}

// AxisUnits - units as they appear on the image x and y axes
func (r *ImageRecord) AxisUnits() (string, string) {
	if r.Layout == LayoutTimeY {
		return r.Units.Survival, r.Units.Time
	}
	return r.Units.Time, r.Units.Survival
}
