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

package record

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pixlise/survival-extractor/core/calibration"
	"github.com/pixlise/survival-extractor/core/logger"
	"github.com/pixlise/survival-extractor/core/merge"
	"github.com/pixlise/survival-extractor/core/points"
	"github.com/pkg/errors"
)

type resultMetadata struct {
	ImageFile        string `json:"image_file"`
	ExtractionDate   string `json:"extraction_date"`
	XAxisUnits       string `json:"x_axis_units"`
	YAxisUnits       string `json:"y_axis_units"`
	XAxisType        string `json:"x_axis_type,omitempty"`
	YAxisType        string `json:"y_axis_type,omitempty"`
	ImageDescription string `json:"image_description,omitempty"`

	// Older result files keep these under metadata. We read them but never write them here
	Calibration *olderCalibration `json:"calibration,omitempty"`
	Groups      []string          `json:"groups,omitempty"`
}

// olderCalibration - the calibration block as the older layout writes it. Reference points are
// *_coord, though some files carry *_point. Bounds may be null before they were entered
type olderCalibration struct {
	XMin *float64 `json:"x_min"`
	XMax *float64 `json:"x_max"`
	YMin *float64 `json:"y_min"`
	YMax *float64 `json:"y_max"`

	XMinCoord *calibration.Point `json:"x_min_coord"`
	XMaxCoord *calibration.Point `json:"x_max_coord"`
	YMinCoord *calibration.Point `json:"y_min_coord"`
	YMaxCoord *calibration.Point `json:"y_max_coord"`

	XMinPoint *calibration.Point `json:"x_min_point"`
	XMaxPoint *calibration.Point `json:"x_max_point"`
	YMinPoint *calibration.Point `json:"y_min_point"`
	YMaxPoint *calibration.Point `json:"y_max_point"`
}

func firstPoint(a, b *calibration.Point) *calibration.Point {
	if a != nil {
		return a
	}
	return b
}

func (c olderCalibration) toCalibration() calibration.Calibration {
	result := calibration.Calibration{
		XMinPoint: firstPoint(c.XMinCoord, c.XMinPoint),
		XMaxPoint: firstPoint(c.XMaxCoord, c.XMaxPoint),
		YMinPoint: firstPoint(c.YMinCoord, c.YMinPoint),
		YMaxPoint: firstPoint(c.YMaxCoord, c.YMaxPoint),
	}

	bounds := []*float64{c.XMin, c.XMax, c.YMin, c.YMax}
	values := []*float64{&result.XMin, &result.XMax, &result.YMin, &result.YMax}
	for i, b := range bounds {
		if b != nil {
			*values[i] = *b
		}
	}
	return result
}

// hasBounds - all 4 bounds were entered
func (c olderCalibration) hasBounds() bool {
	return c.XMin != nil && c.XMax != nil && c.YMin != nil && c.YMax != nil
}

type rawCoordinate struct {
	X      *float64            `json:"x"`
	Y      *float64            `json:"y"`
	Source points.AnchorSource `json:"source,omitempty"`
}

// ResultFile - the per-image JSON written to results/<image id>.json
type ResultFile struct {
	Metadata        resultMetadata                 `json:"metadata"`
	Calibration     *calibration.Calibration       `json:"calibration"`
	Groups          []string                       `json:"groups"`
	ExtractedPoints map[string]map[string]*float64 `json:"extracted_points"`

	// threshold key -> group -> marker. Older files use a flat "<group>_<threshold>" key instead
	RawCoordinates map[string]json.RawMessage `json:"raw_coordinates,omitempty"`

	Status       Status `json:"status"`
	Error        string `json:"error,omitempty"`
	LastModified int64  `json:"last_modified,omitempty"`
}

// MetadataFile - optional per-image metadata supplied with a dataset
type MetadataFile struct {
	GroupsSurvivalExperiment []string                       `json:"groups_survival_experiment"`
	Groups                   []string                       `json:"groups"`
	ExtractedPoints          map[string]map[string]*float64 `json:"extracted_points"`
	ImageDescription         string                         `json:"image_description"`
	XAxisUnits               string                         `json:"x_axis_units"`
	YAxisUnits               string                         `json:"y_axis_units"`
}

// calibration - the saved calibration, from whichever layout the file uses. Errors if the older
// layout has reference points but incomplete bounds, as that can't be restored faithfully
func (f *ResultFile) calibration() (*calibration.Calibration, error) {
	if f.Calibration != nil {
		return f.Calibration, nil
	}
	if f.Metadata.Calibration == nil {
		return nil, nil
	}

	older := f.Metadata.Calibration
	cal := older.toCalibration()
	if cal.IsEmpty() {
		return nil, nil
	}
	if !older.hasBounds() {
		return nil, errors.Wrap(calibration.ErrInvalidBounds, "saved calibration is missing axis bounds")
	}
	return &cal, nil
}

func (f *ResultFile) groups() []string {
	if f.Groups != nil {
		return f.Groups
	}
	return f.Metadata.Groups
}

// readValues - extracted_points to group -> threshold -> value. Nulls and unknown thresholds are skipped
func readValues(extracted map[string]map[string]*float64, fileDesc string, log logger.ILogger) map[string]map[int]float64 {
	result := map[string]map[int]float64{}
	for key, groupValues := range extracted {
		threshold, err := points.ParseThresholdKey(key)
		if err != nil {
			log.Errorf("%v: ignoring extracted points for %v", fileDesc, err)
			continue
		}

		for group, val := range groupValues {
			if val == nil {
				continue
			}
			if _, ok := result[group]; !ok {
				result[group] = map[int]float64{}
			}
			result[group][threshold] = *val
		}
	}
	return result
}

func (f *ResultFile) readAnchors(fileDesc string, log logger.ILogger) map[string]map[int]points.Anchor {
	result := map[string]map[int]points.Anchor{}

	add := func(group string, threshold int, coord rawCoordinate) {
		if coord.X == nil || coord.Y == nil {
			return
		}
		source := coord.Source
		if source != points.AnchorDerived {
			source = points.AnchorClicked
		}
		if _, ok := result[group]; !ok {
			result[group] = map[int]points.Anchor{}
		}
		result[group][threshold] = points.Anchor{Pixel: calibration.Point{X: *coord.X, Y: *coord.Y}, Source: source}
	}

	for key, raw := range f.RawCoordinates {
		if threshold, err := points.ParseThresholdKey(key); err == nil {
			byGroup := map[string]*rawCoordinate{}
			if err := json.Unmarshal(raw, &byGroup); err != nil {
				log.Errorf("%v: ignoring raw coordinates at %v: %v", fileDesc, key, err)
				continue
			}
			for group, coord := range byGroup {
				if coord != nil {
					add(group, threshold, *coord)
				}
			}
			continue
		}

		// Flat form, group names may themselves contain _
		sep := strings.LastIndex(key, "_")
		if sep <= 0 {
			log.Errorf("%v: ignoring raw coordinate with unrecognised key %q", fileDesc, key)
			continue
		}
		threshold, err := points.ParseThresholdKey(key[sep+1:])
		if err != nil {
			log.Errorf("%v: ignoring raw coordinate %q: %v", fileDesc, key, err)
			continue
		}

		var coord *rawCoordinate
		if err := json.Unmarshal(raw, &coord); err != nil {
			log.Errorf("%v: ignoring raw coordinate %q: %v", fileDesc, key, err)
			continue
		}
		if coord != nil {
			add(key[:sep], threshold, *coord)
		}
	}
	return result
}

func (f *ResultFile) mergeSource(fileDesc string, log logger.ILogger) *merge.Source {
	return &merge.Source{
		Groups:  f.groups(),
		Values:  readValues(f.ExtractedPoints, fileDesc, log),
		Anchors: f.readAnchors(fileDesc, log),
	}
}

func (f *MetadataFile) mergeSource(fileDesc string, log logger.ILogger) *merge.Source {
	groups := f.GroupsSurvivalExperiment
	if len(groups) == 0 {
		groups = f.Groups
	}
	return &merge.Source{
		Groups: groups,
		Values: readValues(f.ExtractedPoints, fileDesc, log),
	}
}

// makeResultFile - serialisable form of rec
func makeResultFile(rec *ImageRecord, extractionDate string, lastModified int64) ResultFile {
	xType, yType := rec.Layout.AxisTypes()
	xUnits, yUnits := rec.AxisUnits()

	result := ResultFile{
		Metadata: resultMetadata{
			ImageFile:        rec.ImageFile,
			ExtractionDate:   extractionDate,
			XAxisUnits:       xUnits,
			YAxisUnits:       yUnits,
			XAxisType:        xType,
			YAxisType:        yType,
			ImageDescription: rec.Description,
		},
		Groups:          rec.Points.Groups(),
		ExtractedPoints: map[string]map[string]*float64{},
		Status:          rec.Status,
		LastModified:    lastModified,
	}

	if cal := rec.Calibration.Calibration(); !cal.IsEmpty() {
		result.Calibration = &cal
	}

	if rec.Status == StatusError {
		result.Error = rec.ErrorText
	}

	raw := map[string]map[string]rawCoordinate{}
	for _, cell := range rec.Points.Snapshot() {
		key := points.ThresholdKey(cell.Threshold)
		if _, ok := result.ExtractedPoints[key]; !ok {
			result.ExtractedPoints[key] = map[string]*float64{}
		}
		result.ExtractedPoints[key][cell.Group] = cell.Value

		if cell.Anchor != nil {
			if _, ok := raw[key]; !ok {
				raw[key] = map[string]rawCoordinate{}
			}
			x, y := cell.Anchor.Pixel.X, cell.Anchor.Pixel.Y
			raw[key][cell.Group] = rawCoordinate{X: &x, Y: &y, Source: cell.Anchor.Source}
		}
	}

	if len(raw) > 0 {
		result.RawCoordinates = map[string]json.RawMessage{}
		for key, byGroup := range raw {
			// Can't fail, it's all plain data
			data, _ := json.Marshal(byGroup)
			result.RawCoordinates[key] = data
		}
	}

	return result
}

// ExportFile - the standalone export, only set values, keyed threshold then group
type ExportFile struct {
	ImageFile      string                        `json:"image_file"`
	ExtractionDate string                        `json:"extraction_date"`
	TimeUnits      string                        `json:"time_units"`
	SurvivalUnits  string                        `json:"survival_units"`
	Groups         []string                      `json:"groups"`
	Data           map[string]map[string]float64 `json:"data"`
}

func makeExportFile(rec *ImageRecord, extractionDate string) ExportFile {
	result := ExportFile{
		ImageFile:      rec.ImageFile,
		ExtractionDate: extractionDate,
		TimeUnits:      rec.Units.Time,
		SurvivalUnits:  rec.Units.Survival,
		Groups:         rec.Points.Groups(),
		Data:           map[string]map[string]float64{},
	}

	for _, cell := range rec.Points.Snapshot() {
		if cell.Value == nil {
			continue
		}
		key := points.ThresholdKey(cell.Threshold)
		if _, ok := result.Data[key]; !ok {
			result.Data[key] = map[string]float64{}
		}
		result.Data[key][cell.Group] = *cell.Value
	}
	return result
}

func unmarshalStrict(data []byte, f *ResultFile) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return errors.New("file is empty")
	}
	return json.Unmarshal(data, f)
}
