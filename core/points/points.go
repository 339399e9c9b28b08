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

// Table of extracted time values, one row per group (curve) and one column per survival threshold.
// Each cell may also carry the pixel position of its marker on the image
package points

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pixlise/survival-extractor/core/calibration"
	"github.com/pkg/errors"
)

var (
	ErrDuplicateGroup   = errors.New("group already exists")
	ErrUnknownGroup     = errors.New("unknown group")
	ErrInvalidGroupName = errors.New("invalid group name")
	ErrInvalidThreshold = errors.New("invalid threshold")
	ErrInvalidValue     = errors.New("invalid value")
)

// Thresholds - survival percentages we extract a time for, in table column order
var Thresholds = []int{0, 25, 50, 75, 100}

func thresholdIndex(threshold int) (int, error) {
	for c, t := range Thresholds {
		if t == threshold {
			return c, nil
		}
	}
	return -1, errors.Wrapf(ErrInvalidThreshold, "%v is not one of %v", threshold, Thresholds)
}

func IsValidThreshold(threshold int) bool {
	_, err := thresholdIndex(threshold)
	return err == nil
}

// ThresholdKey - how thresholds are keyed in result files, eg "25%"
func ThresholdKey(threshold int) string {
	return fmt.Sprintf("%v%%", threshold)
}

// ParseThresholdKey - reads "25%" or "25"
func ParseThresholdKey(key string) (int, error) {
	threshold, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(key), "%"))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidThreshold, "bad threshold key %q", key)
	}
	if _, err := thresholdIndex(threshold); err != nil {
		return 0, err
	}
	return threshold, nil
}

// AnchorSource - which of a cell's value or marker position is authoritative
type AnchorSource string

const (
	// AnchorClicked - user clicked the marker position, value is derived from it
	AnchorClicked AnchorSource = "click"
	// AnchorDerived - user typed the value, marker was placed from it
	AnchorDerived AnchorSource = "derived"
)

type Anchor struct {
	Pixel  calibration.Point `json:"pixel"`
	Source AnchorSource      `json:"source"`
}

// Cell - one (group, threshold) entry. Value nil means unset
type Cell struct {
	Group     string   `json:"group"`
	Threshold int      `json:"threshold"`
	Value     *float64 `json:"value"`
	Anchor    *Anchor  `json:"anchor,omitempty"`
}

func (c Cell) IsSet() bool {
	return c.Value != nil
}

func ValidateGroupName(name string) error {
	if len(strings.TrimSpace(name)) == 0 {
		return errors.Wrap(ErrInvalidGroupName, "group name is empty")
	}
	return nil
}

func validateValue(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return errors.Wrapf(ErrInvalidValue, "%v is not a finite number", value)
	}
	return nil
}
