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

package calibration

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"
)

const tolerance = 1e-9

func calibrate(t *testing.T, bounds Bounds, pts ...Point) *Engine {
	t.Helper()

	e := NewEngine()
	require.NoError(t, e.BeginCalibration(bounds))
	for _, p := range pts {
		_, err := e.SupplyPoint(p)
		require.NoError(t, err)
	}
	return e
}

var standardRefs = []Point{{10, 0}, {310, 0}, {0, 400}, {0, 100}}

func Example_engine() {
	e := NewEngine()
	fmt.Println(e.Step())

	fmt.Println(e.BeginCalibration(Bounds{XMin: 0, XMax: 30, YMin: 0, YMax: 100}))
	for _, p := range []Point{{10, 405}, {310, 405}, {5, 400}, {5, 100}} {
		ref, _ := e.NextReference()
		step, err := e.SupplyPoint(p)
		fmt.Printf("%v: %v -> %v, %v\n", ref.Prompt(), p, step, err)
	}

	d, err := e.PixelToDomain(Point{160, 250})
	fmt.Printf("%v, %v\n", d, err)

	// Output:
	// not_started
	// <nil>
	// Click on X-axis minimum point: (10, 405) -> awaiting_x_max, <nil>
	// Click on X-axis maximum point: (310, 405) -> awaiting_y_min, <nil>
	// Click on Y-axis minimum point: (5, 400) -> awaiting_y_max, <nil>
	// Click on Y-axis maximum point: (5, 100) -> ready, <nil>
	// (15, 50), <nil>
}

func Test_BeginCalibration_InvalidBounds(t *testing.T) {
	cases := []Bounds{
		{XMin: 0, XMax: 0, YMin: 0, YMax: 100},
		{XMin: 0, XMax: 30, YMin: 5, YMax: 5},
		{XMin: math.NaN(), XMax: 30, YMin: 0, YMax: 100},
		{XMin: 0, XMax: math.Inf(1), YMin: 0, YMax: 100},
	}

	for _, b := range cases {
		e := calibrate(t, Bounds{XMin: 0, XMax: 30, YMin: 0, YMax: 100}, standardRefs...)
		err := e.BeginCalibration(b)
		assert.Equal(t, ErrInvalidBounds, errors.Cause(err), "bounds %+v", b)

		// Still usable with the previous calibration
		assert.True(t, e.IsReady())
		got, _ := e.Bounds()
		assert.Equal(t, Bounds{XMin: 0, XMax: 30, YMin: 0, YMax: 100}, got)
	}
}

func Test_SupplyPoint_NoBounds(t *testing.T) {
	e := NewEngine()
	step, err := e.SupplyPoint(Point{1, 2})
	assert.Equal(t, ErrInvalidBounds, errors.Cause(err))
	assert.Equal(t, StepNotStarted, step)
}

func Test_NotCalibrated(t *testing.T) {
	e := calibrate(t, Bounds{XMin: 0, XMax: 30, YMin: 0, YMax: 100}, standardRefs[:3]...)
	assert.Equal(t, StepAwaitingYMax, e.Step())

	_, err := e.PixelToDomain(Point{1, 1})
	assert.Equal(t, ErrNotCalibrated, errors.Cause(err))
	_, err = e.DomainToPixel(Point{1, 1})
	assert.Equal(t, ErrNotCalibrated, errors.Cause(err))
}

func Test_DegenerateSpanKeepsPriorState(t *testing.T) {
	e := calibrate(t, Bounds{XMin: 0, XMax: 30, YMin: 0, YMax: 100}, Point{10, 400})

	step, err := e.SupplyPoint(Point{10, 50})
	assert.Equal(t, ErrDegenerateCalibration, errors.Cause(err))
	assert.Equal(t, StepAwaitingXMax, step)

	// Carry on properly
	for _, p := range []Point{{310, 400}, {0, 400}} {
		_, err = e.SupplyPoint(p)
		require.NoError(t, err)
	}

	step, err = e.SupplyPoint(Point{99, 400})
	assert.Equal(t, ErrDegenerateCalibration, errors.Cause(err))
	assert.Equal(t, StepAwaitingYMax, step)

	cal := e.Calibration()
	assert.Nil(t, cal.YMaxPoint)
	assert.Equal(t, Point{0, 400}, *cal.YMinPoint)
}

func Test_RoundTrip(t *testing.T) {
	boundsList := []Bounds{
		{XMin: 0, XMax: 30, YMin: 0, YMax: 100},
		{XMin: 0, XMax: 30, YMin: 100, YMax: 0},
		{XMin: -5, XMax: 120.5, YMin: 1, YMax: 0},
	}

	for _, b := range boundsList {
		e := calibrate(t, b, Point{12.5, 3}, Point{611, 7}, Point{40, 480.25}, Point{41, 22})
		for _, p := range []Point{{0, 0}, {160, 250}, {611, 22}, {-30, 1000}, {333.3, 12.7}} {
			d, err := e.PixelToDomain(p)
			require.NoError(t, err)
			back, err := e.DomainToPixel(d)
			require.NoError(t, err)

			assert.True(t, scalar.EqualWithinAbsOrRel(p.X, back.X, tolerance, tolerance), "x %v != %v", p.X, back.X)
			assert.True(t, scalar.EqualWithinAbsOrRel(p.Y, back.Y, tolerance, tolerance), "y %v != %v", p.Y, back.Y)
		}
	}
}

func Test_ScenarioClick(t *testing.T) {
	e := calibrate(t, Bounds{XMin: 0, XMax: 30, YMin: 0, YMax: 100}, standardRefs...)

	d, err := e.PixelToDomain(Point{160, 250})
	require.NoError(t, err)
	assert.InDelta(t, 15.0, d.X, tolerance)
	assert.InDelta(t, 50.0, d.Y, tolerance)
}

func Test_InvertedAxisMirrors(t *testing.T) {
	normal := calibrate(t, Bounds{XMin: 0, XMax: 30, YMin: 0, YMax: 100}, standardRefs...)
	inverted := calibrate(t, Bounds{XMin: 0, XMax: 30, YMin: 100, YMax: 0}, standardRefs...)

	for _, py := range []float64{100, 175, 250, 333, 400, 450} {
		n, err := normal.PixelToDomain(Point{50, py})
		require.NoError(t, err)
		i, err := inverted.PixelToDomain(Point{50, py})
		require.NoError(t, err)

		assert.InDelta(t, 100-n.Y, i.Y, tolerance, "py=%v", py)
		assert.InDelta(t, n.X, i.X, tolerance)
	}
}

func Test_SupplyPointWhenReadyRestarts(t *testing.T) {
	e := calibrate(t, Bounds{XMin: 0, XMax: 30, YMin: 0, YMax: 100}, standardRefs...)

	step, err := e.SupplyPoint(Point{20, 410})
	require.NoError(t, err)
	assert.Equal(t, StepAwaitingXMax, step)
	assert.False(t, e.IsReady())

	b, ok := e.Bounds()
	assert.True(t, ok)
	assert.Equal(t, Bounds{XMin: 0, XMax: 30, YMin: 0, YMax: 100}, b)

	cal := e.Calibration()
	assert.Equal(t, Point{20, 410}, *cal.XMinPoint)
	assert.Nil(t, cal.XMaxPoint)
}

func Test_MoveReferencePoint(t *testing.T) {
	e := calibrate(t, Bounds{XMin: 0, XMax: 30, YMin: 0, YMax: 100}, standardRefs...)

	require.NoError(t, e.MoveReferencePoint(RefXMax, Point{160, 0}))
	d, err := e.PixelToDomain(Point{160, 250})
	require.NoError(t, err)
	assert.InDelta(t, 30.0, d.X, tolerance)

	err = e.MoveReferencePoint(RefYMax, Point{0, 400})
	assert.Equal(t, ErrDegenerateCalibration, errors.Cause(err))
	assert.Equal(t, Point{0, 100}, *e.Calibration().YMaxPoint)

	partial := calibrate(t, Bounds{XMin: 0, XMax: 30, YMin: 0, YMax: 100}, standardRefs[:2]...)
	err = partial.MoveReferencePoint(RefYMin, Point{0, 1})
	assert.Equal(t, ErrNotCalibrated, errors.Cause(err))

	// Points already collected can't be moved until the sequence is finished either
	err = partial.MoveReferencePoint(RefXMin, Point{11, 0})
	assert.Equal(t, ErrNotCalibrated, errors.Cause(err))
	assert.Equal(t, Point{10, 0}, *partial.Calibration().XMinPoint)
	assert.Equal(t, StepAwaitingYMin, partial.Step())
}

func Test_UpdateBoundsKeepsPoints(t *testing.T) {
	e := calibrate(t, Bounds{XMin: 0, XMax: 30, YMin: 0, YMax: 100}, standardRefs...)
	require.NoError(t, e.UpdateBounds(Bounds{XMin: 0, XMax: 60, YMin: 0, YMax: 100}))
	assert.True(t, e.IsReady())

	d, err := e.PixelToDomain(Point{160, 250})
	require.NoError(t, err)
	assert.InDelta(t, 30.0, d.X, tolerance)

	err = e.UpdateBounds(Bounds{XMin: 1, XMax: 1, YMin: 0, YMax: 100})
	assert.Equal(t, ErrInvalidBounds, errors.Cause(err))
}

func Test_CalibrationJSONAndRestore(t *testing.T) {
	e := calibrate(t, Bounds{XMin: 0, XMax: 30, YMin: 100, YMax: 0}, standardRefs...)

	data, err := json.Marshal(e.Calibration())
	require.NoError(t, err)
	assert.JSONEq(t, `{"x_min":0,"x_max":30,"y_min":100,"y_max":0,
		"x_min_point":[10,0],"x_max_point":[310,0],"y_min_point":[0,400],"y_max_point":[0,100]}`, string(data))

	var cal Calibration
	require.NoError(t, json.Unmarshal(data, &cal))

	restored := NewEngine()
	require.NoError(t, restored.Restore(cal))
	assert.True(t, restored.IsReady())

	a, _ := e.PixelToDomain(Point{77, 123})
	b, _ := restored.PixelToDomain(Point{77, 123})
	assert.Equal(t, a, b)
}

func Test_RestorePartialAndInvalid(t *testing.T) {
	var cal Calibration
	require.NoError(t, json.Unmarshal([]byte(`{"x_min":0,"x_max":30,"y_min":0,"y_max":100,
		"x_min_point":[10,0],"x_max_point":[310,0],"y_min_point":null,"y_max_point":null}`), &cal))

	e := NewEngine()
	require.NoError(t, e.Restore(cal))
	assert.Equal(t, StepAwaitingYMin, e.Step())

	// Degenerate saved data gets dropped entirely
	cal.XMaxPoint = &Point{10, 5}
	err := e.Restore(cal)
	assert.Equal(t, ErrDegenerateCalibration, errors.Cause(err))
	assert.Equal(t, StepNotStarted, e.Step())
	assert.True(t, e.Calibration().IsEmpty())

	require.NoError(t, e.Restore(Calibration{}))
	assert.Equal(t, StepNotStarted, e.Step())

	var bad Point
	assert.Error(t, json.Unmarshal([]byte(`[1,2,3]`), &bad))
}

func Test_ParseReference(t *testing.T) {
	for _, r := range []Reference{RefXMin, RefXMax, RefYMin, RefYMax} {
		got, err := ParseReference(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err := ParseReference("z_min")
	assert.Error(t, err)
}

func Test_StepText(t *testing.T) {
	for s := StepNotStarted; s <= StepReady; s++ {
		text, err := s.MarshalText()
		require.NoError(t, err)

		var got Step
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, s, got)
	}

	var bad Step
	assert.Error(t, bad.UnmarshalText([]byte("awaiting_z_max")))
}
