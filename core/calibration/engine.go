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
	"fmt"

	"github.com/pkg/errors"
)

// Step - where the engine is in collecting reference points
type Step int

const (
	StepNotStarted Step = iota
	StepAwaitingXMin
	StepAwaitingXMax
	StepAwaitingYMin
	StepAwaitingYMax
	StepReady
)

var stepNames = []string{"not_started", "awaiting_x_min", "awaiting_x_max", "awaiting_y_min", "awaiting_y_max", "ready"}

func (s Step) String() string {
	if s < StepNotStarted || s > StepReady {
		return fmt.Sprintf("Step(%v)", int(s))
	}
	return stepNames[s]
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Step) UnmarshalText(text []byte) error {
	for c, name := range stepNames {
		if name == string(text) {
			*s = Step(c)
			return nil
		}
	}
	return fmt.Errorf("unknown calibration step: %v", string(text))
}

// Engine - collects the 4 reference points for a set of bounds, then converts between pixel
// and domain space. Not safe for concurrent use, callers serialise access
type Engine struct {
	step      Step
	bounds    Bounds
	hasBounds bool

	// Reference points, indexed by Reference. Only the first collectedCount() are valid
	refs [4]Point
}

func NewEngine() *Engine {
	return &Engine{}
}

func (e *Engine) Step() Step {
	return e.step
}

func (e *Engine) IsReady() bool {
	return e.step == StepReady
}

func (e *Engine) Bounds() (Bounds, bool) {
	return e.bounds, e.hasBounds
}

// NextReference - the reference point the next SupplyPoint call will set. False if none is awaited
func (e *Engine) NextReference() (Reference, bool) {
	if e.step < StepAwaitingXMin || e.step > StepAwaitingYMax {
		return RefXMin, false
	}
	return Reference(e.step - StepAwaitingXMin), true
}

func (e *Engine) collectedCount() int {
	switch {
	case e.step == StepReady:
		return 4
	case e.step >= StepAwaitingXMin:
		return int(e.step - StepAwaitingXMin)
	}
	return 0
}

// BeginCalibration - validates bounds and starts collecting reference points from scratch.
// Any committed calibration is discarded. On error nothing changes
func (e *Engine) BeginCalibration(bounds Bounds) error {
	if err := bounds.Validate(); err != nil {
		return err
	}

	e.bounds = bounds
	e.hasBounds = true
	e.refs = [4]Point{}
	e.step = StepAwaitingXMin
	return nil
}

// UpdateBounds - replaces bounds but keeps any reference points already clicked
func (e *Engine) UpdateBounds(bounds Bounds) error {
	if !e.hasBounds {
		return e.BeginCalibration(bounds)
	}
	if err := bounds.Validate(); err != nil {
		return err
	}
	e.bounds = bounds
	return nil
}

// SupplyPoint - records p for the awaited reference and advances. Supplying a point when already
// Ready starts a new collection with the same bounds, p becoming the new x min reference.
// Returns the step the engine is now in
func (e *Engine) SupplyPoint(p Point) (Step, error) {
	if !e.hasBounds {
		return e.step, errors.Wrap(ErrInvalidBounds, "no bounds entered")
	}

	if e.step == StepReady {
		e.refs = [4]Point{}
		e.step = StepAwaitingXMin
	}

	ref, _ := e.NextReference()
	if err := e.checkSpan(ref, p); err != nil {
		return e.step, err
	}

	e.refs[ref] = p
	e.step++
	return e.step, nil
}

// MoveReferencePoint - replaces a reference point of a finished calibration, eg when the user drags its marker
func (e *Engine) MoveReferencePoint(ref Reference, p Point) error {
	if ref < RefXMin || ref > RefYMax {
		return fmt.Errorf("unknown calibration reference: %v", int(ref))
	}
	if e.step != StepReady {
		return errors.Wrapf(ErrNotCalibrated, "can't move %v reference point while %v", ref, e.step)
	}
	if err := e.checkSpan(ref, p); err != nil {
		return err
	}

	e.refs[ref] = p
	return nil
}

// checkSpan - setting ref to p must not make its axis span zero pixels
func (e *Engine) checkSpan(ref Reference, p Point) error {
	collected := e.collectedCount()

	switch ref {
	case RefXMin, RefXMax:
		other := RefXMax
		if ref == RefXMax {
			other = RefXMin
		}
		if int(other) < collected && e.refs[other].X == p.X {
			return errors.Wrapf(ErrDegenerateCalibration, "x reference points are both at px=%v", p.X)
		}
	case RefYMin, RefYMax:
		other := RefYMax
		if ref == RefYMax {
			other = RefYMin
		}
		if int(other) < collected && e.refs[other].Y == p.Y {
			return errors.Wrapf(ErrDegenerateCalibration, "y reference points are both at py=%v", p.Y)
		}
	}
	return nil
}

// Reset - back to a freshly constructed engine
func (e *Engine) Reset() {
	*e = Engine{}
}

// Calibration - snapshot for saving
func (e *Engine) Calibration() Calibration {
	result := Calibration{}
	if !e.hasBounds {
		return result
	}

	result.Bounds = e.bounds
	ptrs := []**Point{&result.XMinPoint, &result.XMaxPoint, &result.YMinPoint, &result.YMaxPoint}
	for c := 0; c < e.collectedCount(); c++ {
		pt := e.refs[c]
		*ptrs[c] = &pt
	}
	return result
}

// Restore - rebuilds engine state from a saved calibration. Collection resumes at the first missing
// reference point. If the saved calibration is invalid the engine is left reset and the error returned
func (e *Engine) Restore(cal Calibration) error {
	e.Reset()
	if cal.IsEmpty() {
		return nil
	}

	if err := e.BeginCalibration(cal.Bounds); err != nil {
		return err
	}

	for _, pt := range cal.pointPtrs() {
		if pt == nil {
			break
		}
		if _, err := e.SupplyPoint(*pt); err != nil {
			e.Reset()
			return err
		}
	}
	return nil
}

// PixelToDomain - linear map per axis. Sign of both the bound difference and pixel span carry through,
// so inverted axes need no special handling
func (e *Engine) PixelToDomain(p Point) (Point, error) {
	if e.step != StepReady {
		return Point{}, ErrNotCalibrated
	}

	b := e.bounds
	xMinPt, xMaxPt := e.refs[RefXMin], e.refs[RefXMax]
	yMinPt, yMaxPt := e.refs[RefYMin], e.refs[RefYMax]

	return Point{
		X: b.XMin + (p.X-xMinPt.X)/(xMaxPt.X-xMinPt.X)*(b.XMax-b.XMin),
		Y: b.YMin + (p.Y-yMinPt.Y)/(yMaxPt.Y-yMinPt.Y)*(b.YMax-b.YMin),
	}, nil
}

// DomainToPixel - inverse of PixelToDomain
func (e *Engine) DomainToPixel(d Point) (Point, error) {
	if e.step != StepReady {
		return Point{}, ErrNotCalibrated
	}

	b := e.bounds
	xMinPt, xMaxPt := e.refs[RefXMin], e.refs[RefXMax]
	yMinPt, yMaxPt := e.refs[RefYMin], e.refs[RefYMax]

	return Point{
		X: xMinPt.X + (d.X-b.XMin)/(b.XMax-b.XMin)*(xMaxPt.X-xMinPt.X),
		Y: yMinPt.Y + (d.Y-b.YMin)/(b.YMax-b.YMin)*(yMaxPt.Y-yMinPt.Y),
	}, nil
}
