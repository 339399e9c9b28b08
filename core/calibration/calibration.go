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

// Maps pixel coordinates on a plot image to the plot's domain units (eg months vs % survival).
// The mapping is defined by 4 user-entered axis bounds and 4 clicked reference points, one per bound.
package calibration

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/pkg/errors"
)

var (
	ErrInvalidBounds         = errors.New("invalid calibration bounds")
	ErrDegenerateCalibration = errors.New("degenerate calibration")
	ErrNotCalibrated         = errors.New("calibration not complete")
)

// Point - a position in pixel space (relative to the unscaled image) or in domain space.
// Stored in JSON as [x, y]
type Point struct {
	X float64
	Y float64
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

func (p *Point) UnmarshalJSON(data []byte) error {
	var xy []float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return err
	}
	if len(xy) != 2 {
		return fmt.Errorf("expected [x, y], got %v values", len(xy))
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

func (p Point) String() string {
	return fmt.Sprintf("(%v, %v)", p.X, p.Y)
}

// Bounds - domain values at the reference points. Inverted axes (eg YMin > YMax) are valid
type Bounds struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

func (b Bounds) Validate() error {
	for _, v := range []float64{b.XMin, b.XMax, b.YMin, b.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrInvalidBounds, "bound value %v is not a finite number", v)
		}
	}
	if b.XMin == b.XMax {
		return errors.Wrapf(ErrInvalidBounds, "x min and max are both %v", b.XMin)
	}
	if b.YMin == b.YMax {
		return errors.Wrapf(ErrInvalidBounds, "y min and max are both %v", b.YMin)
	}
	return nil
}

// Reference - identifies one of the 4 reference points, in the order they're collected
type Reference int

const (
	RefXMin Reference = iota
	RefXMax
	RefYMin
	RefYMax
)

var referenceNames = []string{"x_min", "x_max", "y_min", "y_max"}

var referencePrompts = []string{
	"Click on X-axis minimum point",
	"Click on X-axis maximum point",
	"Click on Y-axis minimum point",
	"Click on Y-axis maximum point",
}

func (r Reference) String() string {
	if r < RefXMin || r > RefYMax {
		return fmt.Sprintf("Reference(%v)", int(r))
	}
	return referenceNames[r]
}

// Prompt - what the user should click next
func (r Reference) Prompt() string {
	if r < RefXMin || r > RefYMax {
		return ""
	}
	return referencePrompts[r]
}

func ParseReference(name string) (Reference, error) {
	for c, n := range referenceNames {
		if n == name {
			return Reference(c), nil
		}
	}
	return RefXMin, fmt.Errorf("unknown calibration reference: %v", name)
}

// Calibration - the persisted form. Points are nil until clicked
type Calibration struct {
	Bounds
	XMinPoint *Point `json:"x_min_point"`
	XMaxPoint *Point `json:"x_max_point"`
	YMinPoint *Point `json:"y_min_point"`
	YMaxPoint *Point `json:"y_max_point"`
}

func (c Calibration) pointPtrs() []*Point {
	return []*Point{c.XMinPoint, c.XMaxPoint, c.YMinPoint, c.YMaxPoint}
}

// IsEmpty - nothing was ever entered
func (c Calibration) IsEmpty() bool {
	if c.Bounds != (Bounds{}) {
		return false
	}
	for _, p := range c.pointPtrs() {
		if p != nil {
			return false
		}
	}
	return true
}

// IsComplete - all 4 reference points are present
func (c Calibration) IsComplete() bool {
	for _, p := range c.pointPtrs() {
		if p == nil {
			return false
		}
	}
	return true
}
