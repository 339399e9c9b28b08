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

package points

import (
	"fmt"
	"testing"

	"github.com/pixlise/survival-extractor/core/calibration"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func printCells(cells []Cell) {
	for _, c := range cells {
		val := "-"
		if c.Value != nil {
			val = fmt.Sprintf("%v", *c.Value)
		}
		anchor := ""
		if c.Anchor != nil {
			anchor = fmt.Sprintf(" @%v %v", c.Anchor.Pixel, c.Anchor.Source)
		}
		fmt.Printf("%v %v: %v%v\n", c.Group, ThresholdKey(c.Threshold), val, anchor)
	}
}

func Example_store() {
	s := NewStore()
	fmt.Println(s.AddGroup("WT"))
	fmt.Println(s.AddGroup("KO"))
	fmt.Println(s.SetPoint("KO", 50, 12.5, &Anchor{Pixel: calibration.Point{X: 135, Y: 250}, Source: AnchorClicked}))
	fmt.Println(s.SetPoint("WT", 100, 0, nil))
	fmt.Println(s.SetPoint("WT", 100, 0.5, nil))
	fmt.Println(s.SetCount())

	printCells(s.Snapshot())

	// Output:
	// <nil>
	// <nil>
	// <nil>
	// <nil>
	// <nil>
	// 2
	// WT 0%: -
	// WT 25%: -
	// WT 50%: -
	// WT 75%: -
	// WT 100%: 0.5
	// KO 0%: -
	// KO 25%: -
	// KO 50%: 12.5 @(135, 250) click
	// KO 75%: -
	// KO 100%: -
}

func Test_GroupErrors(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddGroup("WT"))

	assert.Equal(t, ErrDuplicateGroup, errors.Cause(s.AddGroup("WT")))
	assert.NoError(t, s.AddGroup("wt"), "names are case-sensitive")
	assert.Equal(t, ErrInvalidGroupName, errors.Cause(s.AddGroup("  ")))
	assert.Equal(t, ErrUnknownGroup, errors.Cause(s.RemoveGroup("KO")))
	assert.Equal(t, ErrUnknownGroup, errors.Cause(s.SetPoint("KO", 50, 1, nil)))
	assert.Equal(t, ErrUnknownGroup, errors.Cause(s.ClearPoint("KO", 50)))
	assert.Equal(t, ErrInvalidThreshold, errors.Cause(s.SetPoint("WT", 40, 1, nil)))
	assert.Equal(t, []string{"WT", "wt"}, s.Groups())
}

func Test_RemoveGroupOnlyRemovesItsCells(t *testing.T) {
	s := NewStore()
	for _, g := range []string{"A", "B", "C"} {
		require.NoError(t, s.AddGroup(g))
		for _, th := range Thresholds {
			require.NoError(t, s.SetPoint(g, th, float64(th)+float64(len(g)), nil))
		}
	}

	before := s.Snapshot()
	require.NoError(t, s.RemoveGroup("B"))
	after := s.Snapshot()

	expected := []Cell{}
	for _, c := range before {
		if c.Group != "B" {
			expected = append(expected, c)
		}
	}
	assert.Equal(t, expected, after)
	assert.False(t, s.HasGroup("B"))

	// Re-adding starts empty
	require.NoError(t, s.AddGroup("B"))
	c, err := s.Cell("B", 50)
	require.NoError(t, err)
	assert.False(t, c.IsSet())
}

func Test_RenameGroup(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddGroup("Group 1"))
	require.NoError(t, s.AddGroup("Group 2"))
	require.NoError(t, s.SetPoint("Group 1", 75, 4.25, &Anchor{Source: AnchorDerived}))

	require.NoError(t, s.RenameGroup("Group 1", "Placebo"))
	assert.Equal(t, []string{"Placebo", "Group 2"}, s.Groups())

	c, err := s.Cell("Placebo", 75)
	require.NoError(t, err)
	assert.Equal(t, 4.25, *c.Value)
	assert.Equal(t, AnchorDerived, c.Anchor.Source)

	assert.Equal(t, ErrDuplicateGroup, errors.Cause(s.RenameGroup("Placebo", "Group 2")))
	assert.Equal(t, ErrUnknownGroup, errors.Cause(s.RenameGroup("Group 1", "X")))
	assert.Equal(t, ErrInvalidGroupName, errors.Cause(s.RenameGroup("Placebo", "")))
	assert.NoError(t, s.RenameGroup("Placebo", "Placebo"))
}

func Test_ClearPointRemovesAnchor(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddGroup("WT"))
	require.NoError(t, s.SetPoint("WT", 0, 1, &Anchor{Source: AnchorClicked}))
	require.NoError(t, s.ClearPoint("WT", 0))

	c, err := s.Cell("WT", 0)
	require.NoError(t, err)
	assert.Nil(t, c.Value)
	assert.Nil(t, c.Anchor)
	assert.Equal(t, 0, s.SetCount())
}

func Test_SnapshotIsACopy(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddGroup("WT"))
	require.NoError(t, s.SetPoint("WT", 25, 3, &Anchor{Pixel: calibration.Point{X: 1, Y: 2}, Source: AnchorClicked}))

	snap := s.Snapshot()
	*snap[1].Value = 99
	snap[1].Anchor.Pixel.X = 99

	c, _ := s.Cell("WT", 25)
	assert.Equal(t, 3.0, *c.Value)
	assert.Equal(t, 1.0, c.Anchor.Pixel.X)
}

func Test_Clone(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddGroup("WT"))
	require.NoError(t, s.SetPoint("WT", 75, 8, &Anchor{Pixel: calibration.Point{X: 5, Y: 6}, Source: AnchorClicked}))

	cpy := s.Clone()
	require.NoError(t, cpy.AddGroup("KO"))
	require.NoError(t, cpy.SetPoint("WT", 75, 9, nil))

	assert.Equal(t, []string{"WT"}, s.Groups())
	c, _ := s.Cell("WT", 75)
	assert.Equal(t, 8.0, *c.Value)
	assert.Equal(t, calibration.Point{X: 5, Y: 6}, c.Anchor.Pixel)

	assert.Equal(t, []string{"WT", "KO"}, cpy.Groups())
}

func Test_Recompute(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddGroup("WT"))
	require.NoError(t, s.SetPoint("WT", 25, 10, &Anchor{Pixel: calibration.Point{X: 110, Y: 300}, Source: AnchorClicked}))
	require.NoError(t, s.SetPoint("WT", 50, 20, &Anchor{Pixel: calibration.Point{X: 0, Y: 0}, Source: AnchorDerived}))
	require.NoError(t, s.SetPoint("WT", 75, 30, nil))

	fromPixel := func(p calibration.Point, threshold int) (float64, error) { return p.X / 2, nil }
	toPixel := func(v float64, threshold int) (calibration.Point, error) {
		return calibration.Point{X: v * 2, Y: float64(threshold)}, nil
	}
	require.NoError(t, s.Recompute(fromPixel, toPixel))

	c, _ := s.Cell("WT", 25)
	assert.Equal(t, 55.0, *c.Value)
	assert.Equal(t, calibration.Point{X: 110, Y: 300}, c.Anchor.Pixel)

	c, _ = s.Cell("WT", 50)
	assert.Equal(t, 20.0, *c.Value)
	assert.Equal(t, calibration.Point{X: 40, Y: 50}, c.Anchor.Pixel)

	c, _ = s.Cell("WT", 75)
	assert.Equal(t, 30.0, *c.Value)
	assert.Nil(t, c.Anchor)
}

func Test_RecomputeIsAllOrNothing(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.AddGroup("WT"))
	require.NoError(t, s.SetPoint("WT", 25, 10, &Anchor{Pixel: calibration.Point{X: 110, Y: 300}, Source: AnchorClicked}))
	require.NoError(t, s.SetPoint("WT", 50, 20, &Anchor{Source: AnchorDerived}))

	before := s.Snapshot()
	fromPixel := func(p calibration.Point, threshold int) (float64, error) { return 1, nil }
	toPixel := func(v float64, threshold int) (calibration.Point, error) {
		return calibration.Point{}, calibration.ErrNotCalibrated
	}

	err := s.Recompute(fromPixel, toPixel)
	assert.Equal(t, calibration.ErrNotCalibrated, errors.Cause(err))
	assert.Equal(t, before, s.Snapshot())
}

func Test_ThresholdKeys(t *testing.T) {
	for _, th := range Thresholds {
		got, err := ParseThresholdKey(ThresholdKey(th))
		require.NoError(t, err)
		assert.Equal(t, th, got)
	}

	got, err := ParseThresholdKey("75")
	require.NoError(t, err)
	assert.Equal(t, 75, got)

	for _, bad := range []string{"30%", "abc", ""} {
		_, err := ParseThresholdKey(bad)
		assert.Equal(t, ErrInvalidThreshold, errors.Cause(err), bad)
	}
}
