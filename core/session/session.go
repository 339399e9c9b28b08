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

// Drives the extraction of one dataset: which image is open, its calibration, its points and status.
// Every change is saved as it's made. Callers may be on any goroutine, operations run one at a time
package session

import (
	"sync"

	"github.com/pixlise/survival-extractor/core/calibration"
	"github.com/pixlise/survival-extractor/core/dataset"
	"github.com/pixlise/survival-extractor/core/logger"
	"github.com/pixlise/survival-extractor/core/points"
	"github.com/pixlise/survival-extractor/core/record"
	"github.com/pixlise/survival-extractor/core/timestamper"
	"github.com/pkg/errors"
)

var (
	ErrNoImage     = errors.New("no image open")
	ErrOutOfBounds = errors.New("point is outside the image")
)

type Session struct {
	mutex sync.Mutex

	resolve      StorageResolver
	log          logger.ILogger
	timeStamper  timestamper.ITimeStamper
	defaultUnits record.Units
	notifier     Notifier

	root    string
	nav     *dataset.Navigator
	records *record.Manager
	rec     *record.ImageRecord
	report  record.LoadReport

	// Last save of rec failed. Retried before navigating away
	unsaved bool

	// Sent once the mutex is released
	pending []Event
}

// NewSession - notifier may be nil
func NewSession(resolve StorageResolver, log logger.ILogger, ts timestamper.ITimeStamper, defaultUnits record.Units, notifier Notifier) *Session {
	return &Session{
		resolve:      resolve,
		log:          log,
		timeStamper:  ts,
		defaultUnits: defaultUnits,
		notifier:     notifier,
	}
}

// run - executes op under the mutex, then sends whatever events it raised
func (s *Session) run(op func() error) (View, error) {
	s.mutex.Lock()
	err := op()
	view := s.view()
	events := s.pending
	s.pending = nil
	s.mutex.Unlock()

	if s.notifier != nil {
		for _, e := range events {
			s.notifier.Notify(e)
		}
	}
	return view, err
}

func (s *Session) emit(eventType EventType, message string) {
	e := Event{Type: eventType, Message: message}
	if s.nav != nil {
		e.DatasetRoot = s.root
		e.Done, e.Total = s.nav.Progress()
	}
	if s.rec != nil {
		e.ImageID = s.rec.ImageID
		e.Status = s.rec.Status
	}
	s.pending = append(s.pending, e)
}

// OpenDataset - switches to the dataset at root and opens its first image. If the dataset has no
// images, or can't be listed, any previously open dataset is closed
func (s *Session) OpenDataset(root string) (View, error) {
	return s.run(func() error {
		s.flush()

		fs, bucket, prefix, err := s.resolve(root)
		if err != nil {
			return err
		}

		records := record.NewManager(fs, bucket, prefix, s.log, s.timeStamper, s.defaultUnits)
		nav, err := dataset.LoadDataset(fs, bucket, prefix, records, s.log)
		if err != nil {
			s.close()
			return err
		}

		s.root, s.nav, s.records = root, nav, records
		s.loadCurrent()
		s.emit(EventDatasetOpened, "")
		return nil
	})
}

func (s *Session) close() {
	if s.nav != nil {
		s.log.Infof("Closing dataset %v", s.root)
	}
	s.root, s.nav, s.records, s.rec = "", nil, nil, nil
	s.report = record.LoadReport{}
	s.unsaved = false
}

// flush - retries a failed save before rec is discarded. If that fails too, it's logged and we move on
func (s *Session) flush() {
	if s.rec == nil || !s.unsaved {
		return
	}
	if err := s.records.Save(s.rec); err != nil {
		s.log.Errorf("Discarding unsaved changes to %v: %v", s.rec.ImageID, err)
		s.emit(EventSaveFailed, err.Error())
		return
	}
	s.unsaved = false
}

func (s *Session) loadCurrent() {
	entry := s.nav.Current()
	s.rec, s.report = s.records.Load(entry.ID, entry.FileName)
	s.unsaved = false

	if s.rec.Status != entry.Status {
		s.nav.UpdateStatus(entry.ID, s.rec.Status)
	}
}

// Current - the image being worked on
func (s *Session) Current() (dataset.ImageEntry, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.nav == nil {
		return dataset.ImageEntry{}, ErrNoImage
	}
	return s.nav.Current(), nil
}

func (s *Session) View() (View, error) {
	return s.run(func() error {
		if s.rec == nil {
			return ErrNoImage
		}
		return nil
	})
}

func (s *Session) navigate(move func() error) (View, error) {
	return s.run(func() error {
		if s.nav == nil {
			return ErrNoImage
		}

		prevID := s.nav.Current().ID
		if err := move(); err != nil {
			return err
		}
		if s.nav.Current().ID == prevID {
			return nil
		}

		// Navigator has moved already, so the outgoing record is saved by ID not position
		s.flush()
		s.loadCurrent()
		s.emit(EventImageChanged, "")
		return nil
	})
}

func (s *Session) Next() (View, error) {
	return s.navigate(func() error {
		s.nav.Next()
		return nil
	})
}

func (s *Session) Previous() (View, error) {
	return s.navigate(func() error {
		s.nav.Previous()
		return nil
	})
}

func (s *Session) Goto(imageID string) (View, error) {
	return s.navigate(func() error {
		_, err := s.nav.Goto(imageID)
		return err
	})
}

// SetFilter - when on, Next/Previous skip done images. Doesn't move off the current one
func (s *Session) SetFilter(onlyIncomplete bool) (View, error) {
	return s.run(func() error {
		if s.nav == nil {
			return ErrNoImage
		}
		s.nav.SetFilter(onlyIncomplete)
		return nil
	})
}

// Progress - status counts over the open dataset. Done and Total give the "completed/total" figure
func (s *Session) Progress() (dataset.Stats, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.nav == nil {
		return dataset.Stats{}, ErrNoImage
	}
	return s.nav.Stats(), nil
}

// mutate - applies op to the open record then autosaves. If op fails nothing is saved
func (s *Session) mutate(op func(rec *record.ImageRecord) error) (View, error) {
	return s.run(func() error {
		if s.rec == nil {
			return ErrNoImage
		}
		if err := op(s.rec); err != nil {
			return err
		}
		return s.autosave()
	})
}

func (s *Session) autosave() error {
	saved, err := s.records.Autosave(s.rec)
	if err != nil {
		s.unsaved = true
		s.emit(EventSaveFailed, err.Error())
		return err
	}
	if saved {
		s.unsaved = false
		s.emit(EventRecordSaved, "")
	}
	return nil
}

// checkInImage - p must lie on the image. If the image size can't be read we let it through
func (s *Session) checkInImage(rec *record.ImageRecord, p calibration.Point) error {
	w, h, err := s.nav.ImageSize(rec.ImageID)
	if err != nil {
		s.log.Errorf("Not checking %v is within image %v: %v", p, rec.ImageID, err)
		return nil
	}
	if p.X < 0 || p.Y < 0 || p.X > float64(w) || p.Y > float64(h) {
		return errors.Wrapf(ErrOutOfBounds, "%v not within %vx%v image", p, w, h)
	}
	return nil
}

// changeCalibration - applies change, and if that leaves the engine ready, recomputes the points to
// match. If recomputing fails the calibration is put back as it was
func (s *Session) changeCalibration(rec *record.ImageRecord, change func() error) error {
	prev := rec.Calibration.Calibration()
	if err := change(); err != nil {
		return err
	}
	if !rec.Calibration.IsReady() {
		return nil
	}

	if err := rec.Points.Recompute(valueFromPixel(rec), pixelFromValue(rec)); err != nil {
		if restoreErr := rec.Calibration.Restore(prev); restoreErr != nil {
			s.log.Errorf("Failed to restore calibration of %v: %v", rec.ImageID, restoreErr)
		}
		return err
	}
	return nil
}

// BeginCalibration - enters bounds and starts collecting reference points from scratch
func (s *Session) BeginCalibration(bounds calibration.Bounds) (View, error) {
	return s.mutate(func(rec *record.ImageRecord) error {
		return rec.Calibration.BeginCalibration(bounds)
	})
}

// UpdateBounds - changes bounds, keeping reference points. If calibrated, points are recomputed
func (s *Session) UpdateBounds(bounds calibration.Bounds) (View, error) {
	return s.mutate(func(rec *record.ImageRecord) error {
		return s.changeCalibration(rec, func() error {
			return rec.Calibration.UpdateBounds(bounds)
		})
	})
}

func (s *Session) SupplyCalibrationPoint(p calibration.Point) (View, error) {
	return s.mutate(func(rec *record.ImageRecord) error {
		if err := s.checkInImage(rec, p); err != nil {
			return err
		}
		return s.changeCalibration(rec, func() error {
			step, err := rec.Calibration.SupplyPoint(p)
			if err == nil && step == calibration.StepReady {
				s.log.Infof("Calibrated %v: %+v", rec.ImageID, rec.Calibration.Calibration())
			}
			return err
		})
	})
}

func (s *Session) MoveCalibrationPoint(ref calibration.Reference, p calibration.Point) (View, error) {
	return s.mutate(func(rec *record.ImageRecord) error {
		if err := s.checkInImage(rec, p); err != nil {
			return err
		}
		return s.changeCalibration(rec, func() error {
			return rec.Calibration.MoveReferencePoint(ref, p)
		})
	})
}

// ResetCalibration - clears bounds and reference points. Points keep their values
func (s *Session) ResetCalibration() (View, error) {
	return s.mutate(func(rec *record.ImageRecord) error {
		rec.Calibration.Reset()
		return nil
	})
}

func (s *Session) AddGroup(name string) (View, error) {
	return s.mutate(func(rec *record.ImageRecord) error {
		return rec.Points.AddGroup(name)
	})
}

func (s *Session) RemoveGroup(name string) (View, error) {
	return s.mutate(func(rec *record.ImageRecord) error {
		return rec.Points.RemoveGroup(name)
	})
}

func (s *Session) RenameGroup(name string, newName string) (View, error) {
	return s.mutate(func(rec *record.ImageRecord) error {
		return rec.Points.RenameGroup(name, newName)
	})
}

// ClickPoint - sets a cell from a click on the curve. Only the click's time coordinate is used, the
// marker is placed where that time meets the threshold's survival line
func (s *Session) ClickPoint(group string, threshold int, p calibration.Point) (View, error) {
	return s.mutate(func(rec *record.ImageRecord) error {
		if _, err := rec.Points.Cell(group, threshold); err != nil {
			return err
		}
		if !rec.Calibration.IsReady() {
			return errors.Wrap(calibration.ErrNotCalibrated, "calibrate before clicking points")
		}
		if err := s.checkInImage(rec, p); err != nil {
			return err
		}

		value, err := valueFromPixel(rec)(p, threshold)
		if err != nil {
			return err
		}

		onLine, err := pixelFromValue(rec)(value, threshold)
		if err != nil {
			return err
		}

		anchor := &points.Anchor{Pixel: snapToLine(rec.Layout, p, onLine), Source: points.AnchorClicked}
		return rec.Points.SetPoint(group, threshold, value, anchor)
	})
}

// EditPoint - sets a cell to a typed-in value. If calibrated, a marker is placed for it
func (s *Session) EditPoint(group string, threshold int, value float64) (View, error) {
	return s.mutate(func(rec *record.ImageRecord) error {
		var anchor *points.Anchor
		if rec.Calibration.IsReady() {
			px, err := pixelFromValue(rec)(value, threshold)
			if err != nil {
				return err
			}
			anchor = &points.Anchor{Pixel: px, Source: points.AnchorDerived}
		}
		return rec.Points.SetPoint(group, threshold, value, anchor)
	})
}

func (s *Session) ClearPoint(group string, threshold int) (View, error) {
	return s.mutate(func(rec *record.ImageRecord) error {
		return rec.Points.ClearPoint(group, threshold)
	})
}

// SetUnits - blank fields are left as they were
func (s *Session) SetUnits(units record.Units) (View, error) {
	return s.mutate(func(rec *record.ImageRecord) error {
		if len(units.Time) > 0 {
			rec.Units.Time = units.Time
		}
		if len(units.Survival) > 0 {
			rec.Units.Survival = units.Survival
		}
		return nil
	})
}

// SetAxisLayout - swapping which axis carries time invalidates the calibration, so it's reset
func (s *Session) SetAxisLayout(layout record.AxisLayout) (View, error) {
	return s.mutate(func(rec *record.ImageRecord) error {
		if _, err := record.ParseAxisLayout(string(layout)); err != nil {
			return err
		}
		if layout == rec.Layout {
			return nil
		}
		rec.Layout = layout
		rec.Calibration.Reset()
		return nil
	})
}

func (s *Session) SetStatus(status record.Status, errorText string) (View, error) {
	return s.run(func() error {
		return s.setStatus(status, errorText)
	})
}

func (s *Session) setStatus(status record.Status, errorText string) error {
	if s.rec == nil {
		return ErrNoImage
	}

	err := s.records.SetStatus(s.rec, status, errorText)
	if s.rec.Status == status {
		// Applied, even if the save then failed
		s.nav.UpdateStatus(s.rec.ImageID, status)
		s.emit(EventStatusChanged, s.rec.ErrorText)

		if err != nil {
			s.unsaved = true
			s.emit(EventSaveFailed, err.Error())
		} else {
			s.unsaved = false
		}
	}
	return err
}

// ToggleDone - done goes back to not started, anything else becomes done
func (s *Session) ToggleDone() (View, error) {
	return s.run(func() error {
		if s.rec == nil {
			return ErrNoImage
		}

		next := record.StatusDone
		if s.rec.Status == record.StatusDone {
			next = record.StatusNotStarted
		}
		return s.setStatus(next, "")
	})
}

// ReportError - marks the image as unusable, with a reason
func (s *Session) ReportError(errorText string) (View, error) {
	return s.SetStatus(record.StatusError, errorText)
}

// Export - writes the export file for the open image, returns its path
func (s *Session) Export() (string, error) {
	exportPath := ""
	_, err := s.run(func() error {
		if s.rec == nil {
			return ErrNoImage
		}

		var err error
		exportPath, err = s.records.Export(s.rec)
		return err
	})
	return exportPath, err
}

// ReadImage - the open image's file, for display
func (s *Session) ReadImage() (string, []byte, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.rec == nil {
		return "", nil, ErrNoImage
	}
	data, err := s.nav.ReadImage(s.rec.ImageID)
	return s.rec.ImageFile, data, err
}
