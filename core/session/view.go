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

package session

import (
	"github.com/pixlise/survival-extractor/core/calibration"
	"github.com/pixlise/survival-extractor/core/dataset"
	"github.com/pixlise/survival-extractor/core/merge"
	"github.com/pixlise/survival-extractor/core/points"
	"github.com/pixlise/survival-extractor/core/record"
)

type CalibrationView struct {
	Step calibration.Step `json:"step"`

	// What to click next, blank if nothing is awaited
	Prompt string `json:"prompt,omitempty"`

	Bounds *calibration.Bounds `json:"bounds,omitempty"`

	// Reference points collected so far, by reference name (x_min etc)
	Points map[string]calibration.Point `json:"points"`
}

type CellView struct {
	points.Cell

	// Where the value was loaded from when the image was opened
	LoadedFrom merge.Tier `json:"loaded_from"`
}

// View - snapshot of everything a client needs to draw the current image's state
type View struct {
	DatasetRoot      string             `json:"dataset_root"`
	Image            dataset.ImageEntry `json:"image"`
	Position         int                `json:"position"`
	Visible          int                `json:"visible"`
	FilterIncomplete bool               `json:"filter_incomplete"`
	Stats            dataset.Stats      `json:"stats"`

	Width  int `json:"width"`
	Height int `json:"height"`

	Calibration CalibrationView   `json:"calibration"`
	Layout      record.AxisLayout `json:"layout"`
	Units       record.Units      `json:"units"`
	Description string            `json:"description,omitempty"`

	Groups []string   `json:"groups"`
	Cells  []CellView `json:"cells"`

	ErrorText    string `json:"error_text,omitempty"`
	LastModified int64  `json:"last_modified"`
	Unsaved      bool   `json:"unsaved"`

	// Problems hit loading the image's saved data, it was opened anyway
	LoadWarnings []string `json:"load_warnings,omitempty"`
}

// view - must be called with the mutex held
func (s *Session) view() View {
	if s.nav == nil || s.rec == nil {
		return View{}
	}
	rec := s.rec

	result := View{
		DatasetRoot:      s.root,
		Image:            s.nav.Current(),
		FilterIncomplete: s.nav.FilterOn(),
		Stats:            s.nav.Stats(),
		Calibration:      makeCalibrationView(rec.Calibration),
		Layout:           rec.Layout,
		Units:            rec.Units,
		Description:      rec.Description,
		Groups:           rec.Points.Groups(),
		Cells:            []CellView{},
		ErrorText:        rec.ErrorText,
		LastModified:     rec.LastModified,
		Unsaved:          s.unsaved,
	}
	result.Position, result.Visible = s.nav.Position()

	if w, h, err := s.nav.ImageSize(rec.ImageID); err == nil {
		result.Width, result.Height = w, h
	}

	for _, c := range rec.Points.Snapshot() {
		result.Cells = append(result.Cells, CellView{Cell: c, LoadedFrom: rec.Provenance.Tier(c.Group, c.Threshold)})
	}

	for _, err := range []error{s.report.ResultError, s.report.MetadataError, s.report.CalibrationError} {
		if err != nil {
			result.LoadWarnings = append(result.LoadWarnings, err.Error())
		}
	}

	return result
}

func makeCalibrationView(engine *calibration.Engine) CalibrationView {
	result := CalibrationView{Step: engine.Step(), Points: map[string]calibration.Point{}}

	if ref, ok := engine.NextReference(); ok {
		result.Prompt = ref.Prompt()
	}

	if bounds, ok := engine.Bounds(); ok {
		result.Bounds = &bounds
	}

	cal := engine.Calibration()
	for ref, pt := range []*calibration.Point{cal.XMinPoint, cal.XMaxPoint, cal.YMinPoint, cal.YMaxPoint} {
		if pt != nil {
			result.Points[calibration.Reference(ref).String()] = *pt
		}
	}
	return result
}
