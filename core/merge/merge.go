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

// Decides the starting contents of an image's point table from what was saved last time and what
// the dataset's metadata suggests. Only used when an image is loaded, edits after that go straight
// to the point store
package merge

import (
	"fmt"

	"github.com/pixlise/survival-extractor/core/points"
	"github.com/pixlise/survival-extractor/core/utils"
)

// Tier - where a cell's value came from. Higher wins
type Tier int

const (
	TierDefault Tier = iota
	TierMetadata
	TierSaved
)

var tierNames = []string{"default", "metadata", "saved"}

func (t Tier) String() string {
	if t < TierDefault || t > TierSaved {
		return "unknown"
	}
	return tierNames[t]
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(text []byte) error {
	for c, name := range tierNames {
		if name == string(text) {
			*t = Tier(c)
			return nil
		}
	}
	return fmt.Errorf("unknown tier: %v", string(text))
}

// Source - the groups and values one tier offers. Values are keyed group, then threshold.
// Unset cells are simply absent
type Source struct {
	Groups  []string
	Values  map[string]map[int]float64
	Anchors map[string]map[int]points.Anchor
}

// AllGroups - listed groups in order, then any group that only appears as a key in Values,
// sorted so the result is deterministic. Blank names are dropped
func (s *Source) AllGroups() []string {
	result := []string{}
	if s == nil {
		return result
	}

	for _, g := range append(append([]string{}, s.Groups...), utils.GetSortedMapKeys(s.Values)...) {
		if points.ValidateGroupName(g) == nil && !utils.ItemInSlice(g, result) {
			result = append(result, g)
		}
	}
	return result
}

func (s *Source) value(group string, threshold int) (float64, bool) {
	if s == nil {
		return 0, false
	}
	v, ok := s.Values[group][threshold]
	return v, ok
}

func (s *Source) anchor(group string, threshold int) *points.Anchor {
	if s == nil {
		return nil
	}
	if a, ok := s.Anchors[group][threshold]; ok {
		return &a
	}
	return nil
}

type ResolvedCell struct {
	points.Cell
	Tier Tier `json:"tier"`
}

type Result struct {
	Groups []string
	Cells  []ResolvedCell
}

// Resolve - per cell, the saved value if there is one, else the metadata value, else unset.
// Values are never blended. Groups are the union of both sources, saved order first.
// Names match exactly (case-sensitive). Either source may be nil
func Resolve(saved *Source, metadata *Source) Result {
	groups := saved.AllGroups()
	for _, g := range metadata.AllGroups() {
		if !utils.ItemInSlice(g, groups) {
			groups = append(groups, g)
		}
	}

	result := Result{Groups: groups, Cells: make([]ResolvedCell, 0, len(groups)*len(points.Thresholds))}
	for _, g := range groups {
		for _, t := range points.Thresholds {
			cell := ResolvedCell{Cell: points.Cell{Group: g, Threshold: t}, Tier: TierDefault}

			if v, ok := saved.value(g, t); ok {
				cell.Value = &v
				cell.Anchor = saved.anchor(g, t)
				cell.Tier = TierSaved
			} else if v, ok := metadata.value(g, t); ok {
				cell.Value = &v
				cell.Tier = TierMetadata
			}

			result.Cells = append(result.Cells, cell)
		}
	}

	return result
}

// Tier - which tier supplied a given cell, TierDefault if the cell isn't in the result
func (r Result) Tier(group string, threshold int) Tier {
	for _, c := range r.Cells {
		if c.Group == group && c.Threshold == threshold {
			return c.Tier
		}
	}
	return TierDefault
}

func (r Result) Counts() map[Tier]int {
	result := map[Tier]int{}
	for _, c := range r.Cells {
		result[c.Tier]++
	}
	return result
}

// Seed - builds the point store an image starts editing with
func (r Result) Seed() (*points.Store, error) {
	store := points.NewStore()
	for _, g := range r.Groups {
		if err := store.AddGroup(g); err != nil {
			return nil, err
		}
	}

	for _, c := range r.Cells {
		if c.Value == nil {
			continue
		}
		if err := store.SetPoint(c.Group, c.Threshold, *c.Value, c.Anchor); err != nil {
			return nil, err
		}
	}
	return store, nil
}
