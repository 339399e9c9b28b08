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
	"fmt"
	"time"

	"github.com/pixlise/survival-extractor/api/filepaths"
	"github.com/pixlise/survival-extractor/core/fileaccess"
	"github.com/pixlise/survival-extractor/core/logger"
	"github.com/pixlise/survival-extractor/core/merge"
	"github.com/pixlise/survival-extractor/core/timestamper"
	"github.com/pkg/errors"
)

// Manager - reads and writes ImageRecords for one dataset. Not safe for concurrent use
type Manager struct {
	fs           fileaccess.FileAccess
	bucket       string
	prefix       string
	log          logger.ILogger
	timeStamper  timestamper.ITimeStamper
	defaultUnits Units

	// Set while Load is building a record, so nothing triggered by the load writes it back half-built
	loading bool
}

// LoadReport - what Load found. Problems are reported here rather than failing the load
type LoadReport struct {
	ResultFound   bool
	MetadataFound bool

	// Wraps ErrCorruptRecord if the saved result couldn't be read
	ResultError error

	MetadataError    error
	CalibrationError error
}

func (r LoadReport) Degraded() bool {
	return r.ResultError != nil || r.MetadataError != nil || r.CalibrationError != nil
}

func NewManager(fs fileaccess.FileAccess, bucket string, datasetPrefix string, log logger.ILogger, ts timestamper.ITimeStamper, defaultUnits Units) *Manager {
	return &Manager{
		fs:           fs,
		bucket:       bucket,
		prefix:       datasetPrefix,
		log:          log,
		timeStamper:  ts,
		defaultUnits: defaultUnits,
	}
}

func (m *Manager) IsLoading() bool {
	return m.loading
}

func (m *Manager) resultPath(imageID string) string {
	return filepaths.GetResultPath(m.prefix, imageID)
}

// readResult - nil if there is no result file
func (m *Manager) readResult(imageID string) (*ResultFile, error) {
	resultPath := m.resultPath(imageID)

	data, err := m.fs.ReadObject(m.bucket, resultPath)
	if err != nil {
		if m.fs.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(ErrCorruptRecord, "failed to read %v: %v", resultPath, err)
	}

	result := &ResultFile{}
	if err := unmarshalStrict(data, result); err != nil {
		return nil, errors.Wrapf(ErrCorruptRecord, "failed to parse %v: %v", resultPath, err)
	}
	return result, nil
}

// Load - builds the record for an image from its saved result and metadata. Never fails: a missing or
// unreadable result gives an empty record, with the problem described in the returned report
func (m *Manager) Load(imageID string, imageFile string) (*ImageRecord, LoadReport) {
	m.loading = true
	defer func() { m.loading = false }()

	report := LoadReport{}
	rec := NewImageRecord(imageID, imageFile, m.defaultUnits)

	saved, err := m.readResult(imageID)
	if err != nil {
		m.log.Errorf("%v. Starting %v from scratch", err, imageID)
		report.ResultError = err
		loadCount.WithLabelValues("corrupt").Inc()
	} else if saved != nil {
		report.ResultFound = true
		loadCount.WithLabelValues("found").Inc()
	} else {
		loadCount.WithLabelValues("new").Inc()
	}

	var meta *MetadataFile
	metaPath := filepaths.GetMetadataPath(m.prefix, imageID)
	metaFile := MetadataFile{}
	if err := m.fs.ReadJSON(m.bucket, metaPath, &metaFile, false); err != nil {
		if !m.fs.IsNotFoundError(err) {
			m.log.Errorf("Ignoring metadata %v: %v", metaPath, err)
			report.MetadataError = err
		}
	} else {
		meta = &metaFile
		report.MetadataFound = true
	}

	var savedSource, metaSource *merge.Source
	if saved != nil {
		savedSource = saved.mergeSource(m.resultPath(imageID), m.log)
	}
	if meta != nil {
		metaSource = meta.mergeSource(metaPath, m.log)
		rec.Description = meta.ImageDescription
	}

	rec.Provenance = merge.Resolve(savedSource, metaSource)
	store, err := rec.Provenance.Seed()
	if err != nil {
		// Resolve only hands back valid, unique group names so this shouldn't happen
		m.log.Errorf("Failed to seed points for %v: %v", imageID, err)
	} else {
		rec.Points = store
	}

	if meta != nil {
		m.applyMetadataUnits(rec, meta)
	}

	if saved != nil {
		m.applySaved(rec, saved, &report)
	}

	m.log.Debugf("Loaded %v: status=%v, groups=%v, cells set=%v, tiers=%v", imageID, rec.Status, rec.Points.Groups(), rec.Points.SetCount(), rec.Provenance.Counts())
	return rec, report
}

// Metadata units are written against x/y axes, we assume the default layout until a result says otherwise
func (m *Manager) applyMetadataUnits(rec *ImageRecord, meta *MetadataFile) {
	if len(meta.XAxisUnits) > 0 {
		rec.Units.Time = meta.XAxisUnits
	}
	if len(meta.YAxisUnits) > 0 {
		rec.Units.Survival = meta.YAxisUnits
	}
}

func (m *Manager) applySaved(rec *ImageRecord, saved *ResultFile, report *LoadReport) {
	if layout, ok := layoutFromAxisTypes(saved.Metadata.XAxisType, saved.Metadata.YAxisType); ok {
		rec.Layout = layout
	}

	timeUnits, survivalUnits := saved.Metadata.XAxisUnits, saved.Metadata.YAxisUnits
	if rec.Layout == LayoutTimeY {
		timeUnits, survivalUnits = survivalUnits, timeUnits
	}
	if len(timeUnits) > 0 {
		rec.Units.Time = timeUnits
	}
	if len(survivalUnits) > 0 {
		rec.Units.Survival = survivalUnits
	}

	if len(saved.Metadata.ImageDescription) > 0 && len(rec.Description) == 0 {
		rec.Description = saved.Metadata.ImageDescription
	}

	status, err := ParseStatus(string(saved.Status))
	if err != nil {
		m.log.Errorf("%v: %v, treating as %v", rec.ImageID, err, StatusNotStarted)
	}
	rec.Status = status
	if status == StatusError {
		rec.ErrorText = saved.Error
	}
	rec.LastModified = saved.LastModified

	cal, err := saved.calibration()
	if err == nil && cal != nil {
		err = rec.Calibration.Restore(*cal)
	}
	if err != nil {
		m.log.Errorf("Dropping saved calibration for %v: %v", rec.ImageID, err)
		report.CalibrationError = err
	}
}

// Save - writes rec to its result file. Local writes go via a temp file, so an interrupted save
// leaves the previous file intact
func (m *Manager) Save(rec *ImageRecord) error {
	start := time.Now()

	nowSec := m.timeStamper.GetTimeNowSec()
	file := makeResultFile(rec, timestamper.FormatISO8601(nowSec), nowSec)

	err := m.fs.WriteJSON(m.bucket, m.resultPath(rec.ImageID), file)
	saveDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		saveCount.WithLabelValues("error").Inc()
		return errors.Wrapf(err, "failed to save %v", rec.ImageID)
	}

	saveCount.WithLabelValues("ok").Inc()
	rec.LastModified = nowSec
	return nil
}

// Autosave - what every mutation calls. Does nothing while a load is in progress.
// Returns true if a save happened
func (m *Manager) Autosave(rec *ImageRecord) (bool, error) {
	if m.loading {
		m.log.Debugf("Autosave of %v suppressed during load", rec.ImageID)
		return false, nil
	}

	if err := m.Save(rec); err != nil {
		m.log.Errorf("Autosave failed: %v", err)
		return false, err
	}
	return true, nil
}

// SetStatus - any transition is allowed. Error text is kept only for StatusError
func (m *Manager) SetStatus(rec *ImageRecord, status Status, errorText string) error {
	if _, err := ParseStatus(string(status)); err != nil || len(status) == 0 {
		return fmt.Errorf("unknown status: %q", status)
	}

	rec.Status = status
	rec.ErrorText = ""
	if status == StatusError {
		rec.ErrorText = errorText
	}

	_, err := m.Autosave(rec)
	return err
}

// ReadStatus - status from an image's result file without building a record. Missing files are
// NotStarted, unreadable ones are NotStarted plus an error
func (m *Manager) ReadStatus(imageID string) (Status, error) {
	saved, err := m.readResult(imageID)
	if err != nil || saved == nil {
		return StatusNotStarted, err
	}
	return ParseStatus(string(saved.Status))
}

// Export - writes the standalone export file for rec, returns where it went
func (m *Manager) Export(rec *ImageRecord) (string, error) {
	exportPath := filepaths.GetExportPath(m.prefix, rec.ImageID)
	file := makeExportFile(rec, timestamper.FormatISO8601(m.timeStamper.GetTimeNowSec()))

	if err := m.fs.WriteJSON(m.bucket, exportPath, file); err != nil {
		return "", errors.Wrapf(err, "failed to export %v", rec.ImageID)
	}

	m.log.Infof("Exported %v values for %v to %v", rec.Points.SetCount(), rec.ImageID, exportPath)
	return exportPath, nil
}
