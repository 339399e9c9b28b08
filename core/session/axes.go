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
	"github.com/pixlise/survival-extractor/core/points"
	"github.com/pixlise/survival-extractor/core/record"
)

// domainPoint - the domain space point for a time and survival value, given which axis is which
func domainPoint(layout record.AxisLayout, timeValue float64, survival float64) calibration.Point {
	if layout == record.LayoutTimeY {
		return calibration.Point{X: survival, Y: timeValue}
	}
	return calibration.Point{X: timeValue, Y: survival}
}

func timeOf(layout record.AxisLayout, d calibration.Point) float64 {
	if layout == record.LayoutTimeY {
		return d.Y
	}
	return d.X
}

// snapToLine - keeps the time coordinate of clicked, takes the survival coordinate from onLine
func snapToLine(layout record.AxisLayout, clicked calibration.Point, onLine calibration.Point) calibration.Point {
	if layout == record.LayoutTimeY {
		return calibration.Point{X: onLine.X, Y: clicked.Y}
	}
	return calibration.Point{X: clicked.X, Y: onLine.Y}
}

// Survival value of a threshold's line is the threshold itself, in %
func valueFromPixel(rec *record.ImageRecord) points.ValueFromPixel {
	return func(pixel calibration.Point, threshold int) (float64, error) {
		d, err := rec.Calibration.PixelToDomain(pixel)
		if err != nil {
			return 0, err
		}
		return timeOf(rec.Layout, d), nil
	}
}

func pixelFromValue(rec *record.ImageRecord) points.PixelFromValue {
	return func(value float64, threshold int) (calibration.Point, error) {
		return rec.Calibration.DomainToPixel(domainPoint(rec.Layout, value, float64(threshold)))
	}
}
