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
	"github.com/pixlise/survival-extractor/core/calibration"
	"github.com/pkg/errors"
)

type entry struct {
	set    bool
	value  float64
	anchor *Anchor
}

type row [5]entry

// Store - the point table for one image. Groups keep insertion order. Not safe for concurrent use
type Store struct {
	groups []string
	rows   map[string]*row
}

func NewStore() *Store {
	return &Store{rows: map[string]*row{}}
}

func (s *Store) Groups() []string {
	result := make([]string, len(s.groups))
	copy(result, s.groups)
	return result
}

// HasGroup - exact, case-sensitive match
func (s *Store) HasGroup(name string) bool {
	_, ok := s.rows[name]
	return ok
}

func (s *Store) AddGroup(name string) error {
	if err := ValidateGroupName(name); err != nil {
		return err
	}
	if s.HasGroup(name) {
		return errors.Wrapf(ErrDuplicateGroup, "%q", name)
	}

	s.groups = append(s.groups, name)
	s.rows[name] = &row{}
	return nil
}

// RemoveGroup - deletes the group and all of its cells
func (s *Store) RemoveGroup(name string) error {
	if !s.HasGroup(name) {
		return errors.Wrapf(ErrUnknownGroup, "%q", name)
	}

	delete(s.rows, name)
	for c, g := range s.groups {
		if g == name {
			s.groups = append(s.groups[:c], s.groups[c+1:]...)
			break
		}
	}
	return nil
}

// RenameGroup - keeps the group's position and cells
func (s *Store) RenameGroup(oldName string, newName string) error {
	if !s.HasGroup(oldName) {
		return errors.Wrapf(ErrUnknownGroup, "%q", oldName)
	}
	if oldName == newName {
		return nil
	}
	if err := ValidateGroupName(newName); err != nil {
		return err
	}
	if s.HasGroup(newName) {
		return errors.Wrapf(ErrDuplicateGroup, "%q", newName)
	}

	s.rows[newName] = s.rows[oldName]
	delete(s.rows, oldName)
	for c, g := range s.groups {
		if g == oldName {
			s.groups[c] = newName
			break
		}
	}
	return nil
}

func (s *Store) lookup(group string, threshold int) (*entry, error) {
	idx, err := thresholdIndex(threshold)
	if err != nil {
		return nil, err
	}
	r, ok := s.rows[group]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownGroup, "%q", group)
	}
	return &r[idx], nil
}

// SetPoint - overwrites whatever the cell held. anchor may be nil
func (s *Store) SetPoint(group string, threshold int, value float64, anchor *Anchor) error {
	e, err := s.lookup(group, threshold)
	if err != nil {
		return err
	}
	if err := validateValue(value); err != nil {
		return err
	}

	e.set = true
	e.value = value
	e.anchor = copyAnchor(anchor)
	return nil
}

// ClearPoint - back to unset, marker removed
func (s *Store) ClearPoint(group string, threshold int) error {
	e, err := s.lookup(group, threshold)
	if err != nil {
		return err
	}

	*e = entry{}
	return nil
}

func (s *Store) Cell(group string, threshold int) (Cell, error) {
	e, err := s.lookup(group, threshold)
	if err != nil {
		return Cell{}, err
	}
	return e.toCell(group, threshold), nil
}

// Snapshot - every cell, groups in insertion order then thresholds ascending
func (s *Store) Snapshot() []Cell {
	result := make([]Cell, 0, len(s.groups)*len(Thresholds))
	for _, g := range s.groups {
		r := s.rows[g]
		for c, t := range Thresholds {
			result = append(result, r[c].toCell(g, t))
		}
	}
	return result
}

// Clone - deep copy, edits to either don't affect the other
func (s *Store) Clone() *Store {
	result := &Store{groups: s.Groups(), rows: make(map[string]*row, len(s.rows))}
	for g, r := range s.rows {
		cpy := *r
		for c := range cpy {
			cpy[c].anchor = copyAnchor(cpy[c].anchor)
		}
		result.rows[g] = &cpy
	}
	return result
}

func (s *Store) SetCount() int {
	count := 0
	for _, r := range s.rows {
		for _, e := range r {
			if e.set {
				count++
			}
		}
	}
	return count
}

// ValueFromPixel - converts a clicked marker position to a cell value
type ValueFromPixel func(pixel calibration.Point, threshold int) (float64, error)

// PixelFromValue - places a marker for a typed-in value
type PixelFromValue func(value float64, threshold int) (calibration.Point, error)

// Recompute - after calibration changes: clicked cells get new values from their marker positions,
// typed-in cells keep their values and get their markers re-placed. Cells without markers are untouched.
// If any conversion fails, the store is left as it was
func (s *Store) Recompute(fromPixel ValueFromPixel, toPixel PixelFromValue) error {
	type update struct {
		e   *entry
		val entry
	}
	updates := []update{}

	for _, g := range s.groups {
		r := s.rows[g]
		for c, t := range Thresholds {
			e := &r[c]
			if !e.set || e.anchor == nil {
				continue
			}

			next := *e
			switch e.anchor.Source {
			case AnchorClicked:
				v, err := fromPixel(e.anchor.Pixel, t)
				if err != nil {
					return errors.Wrapf(err, "recompute %v at %v", g, ThresholdKey(t))
				}
				if err := validateValue(v); err != nil {
					return errors.Wrapf(err, "recompute %v at %v", g, ThresholdKey(t))
				}
				next.value = v
			default:
				px, err := toPixel(e.value, t)
				if err != nil {
					return errors.Wrapf(err, "recompute %v at %v", g, ThresholdKey(t))
				}
				next.anchor = &Anchor{Pixel: px, Source: e.anchor.Source}
			}
			updates = append(updates, update{e, next})
		}
	}

	for _, u := range updates {
		*u.e = u.val
	}
	return nil
}

func (e entry) toCell(group string, threshold int) Cell {
	result := Cell{Group: group, Threshold: threshold, Anchor: copyAnchor(e.anchor)}
	if e.set {
		v := e.value
		result.Value = &v
	}
	return result
}

func copyAnchor(a *Anchor) *Anchor {
	if a == nil {
		return nil
	}
	cpy := *a
	return &cpy
}
