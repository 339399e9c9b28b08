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

// Finds the images in a dataset and tracks which one is being worked on. Each image's status is read
// once when the dataset is loaded, then kept up to date by whoever changes it, so progress queries
// never touch storage
package dataset

import (
	"path"
	"strings"

	"github.com/pixlise/survival-extractor/api/filepaths"
	"github.com/pixlise/survival-extractor/core/fileaccess"
	"github.com/pixlise/survival-extractor/core/logger"
	"github.com/pixlise/survival-extractor/core/record"
	"github.com/pixlise/survival-extractor/core/utils"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

var (
	ErrEmptyDataset = errors.New("no images found in dataset")
	ErrUnknownImage = errors.New("unknown image")
)

// StatusReader - where initial statuses come from, usually a record.Manager
type StatusReader interface {
	ReadStatus(imageID string) (record.Status, error)
}

// ImageEntry - one image in the dataset
type ImageEntry struct {
	ID       string        `json:"id"`
	FileName string        `json:"file_name"`
	Status   record.Status `json:"status"`
}

type imageSize struct {
	width  int
	height int
	err    error
}

// Stats - status counts across the whole dataset, ignoring any filter
type Stats struct {
	Total      int `json:"total"`
	Done       int `json:"done"`
	Error      int `json:"error"`
	NotStarted int `json:"not_started"`
}

// Navigator - linear, clamped traversal over a dataset's images. Not safe for concurrent use
type Navigator struct {
	fs     fileaccess.FileAccess
	bucket string
	prefix string
	log    logger.ILogger

	images  []ImageEntry
	byID    map[string]int
	current int

	onlyIncomplete bool
	sizes          map[string]imageSize
}

// LoadDataset - lists the supported images under the dataset's image dir, sorted by file name. The image
// ID is the file name without extension. If 2 files share an ID (fig1.png, fig1.jpg) the first wins.
// Statuses that can't be read are logged and treated as not started
func LoadDataset(fs fileaccess.FileAccess, bucket string, datasetPrefix string, statuses StatusReader, log logger.ILogger) (*Navigator, error) {
	imagesPath := filepaths.GetImagesPath(datasetPrefix)

	files, err := fs.ListObjects(bucket, imagesPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list images in %v", imagesPath)
	}

	names := []string{}
	for _, f := range files {
		name := strings.TrimPrefix(f, imagesPath)
		// Only direct children of the images dir
		if strings.Contains(name, "/") || !utils.IsSupportedImageFile(name) {
			continue
		}
		names = append(names, name)
	}

	if len(names) == 0 {
		return nil, errors.Wrapf(ErrEmptyDataset, "%v", path.Join(bucket, imagesPath))
	}

	slices.Sort(names)

	nav := &Navigator{
		fs:     fs,
		bucket: bucket,
		prefix: datasetPrefix,
		log:    log,
		byID:   map[string]int{},
		sizes:  map[string]imageSize{},
	}

	for _, name := range names {
		id := utils.FileNameWithoutExt(name)
		if _, exists := nav.byID[id]; exists {
			log.Errorf("Ignoring %v, image ID %v already used by %v", name, id, nav.images[nav.byID[id]].FileName)
			continue
		}

		status, err := statuses.ReadStatus(id)
		if err != nil {
			log.Errorf("Failed to read status of %v, treating as %v: %v", id, status, err)
		}

		nav.byID[id] = len(nav.images)
		nav.images = append(nav.images, ImageEntry{ID: id, FileName: name, Status: status})
	}

	stats := nav.Stats()
	log.Infof("Loaded dataset %v: %v images, %v done, %v error", path.Join(bucket, datasetPrefix), stats.Total, stats.Done, stats.Error)
	return nav, nil
}

// Images - every image in dataset order, regardless of filter
func (n *Navigator) Images() []ImageEntry {
	result := make([]ImageEntry, len(n.images))
	copy(result, n.images)
	return result
}

func (n *Navigator) Current() ImageEntry {
	return n.images[n.current]
}

// ImagePath - path of an image file relative to the dataset bucket
func (n *Navigator) ImagePath(entry ImageEntry) string {
	return filepaths.GetImagePath(n.prefix, entry.FileName)
}

// visible - whether traversal can stop at image idx. The current image always counts as visible so
// turning the filter on doesn't move the user off it
func (n *Navigator) visible(idx int) bool {
	return idx == n.current || !n.onlyIncomplete || n.images[idx].Status != record.StatusDone
}

// Next - moves to the next visible image. At the end it stays put and returns false
func (n *Navigator) Next() (ImageEntry, bool) {
	for c := n.current + 1; c < len(n.images); c++ {
		if n.visible(c) {
			n.current = c
			return n.images[c], true
		}
	}
	return n.Current(), false
}

// Previous - moves to the previous visible image. At the start it stays put and returns false
func (n *Navigator) Previous() (ImageEntry, bool) {
	for c := n.current - 1; c >= 0; c-- {
		if n.visible(c) {
			n.current = c
			return n.images[c], true
		}
	}
	return n.Current(), false
}

// Goto - jumps to an image by ID, filter or not
func (n *Navigator) Goto(imageID string) (ImageEntry, error) {
	idx, ok := n.byID[imageID]
	if !ok {
		return n.Current(), errors.Wrapf(ErrUnknownImage, "%q", imageID)
	}
	n.current = idx
	return n.images[idx], nil
}

// SetFilter - when on, Next/Previous skip images that are done
func (n *Navigator) SetFilter(onlyIncomplete bool) {
	n.onlyIncomplete = onlyIncomplete
}

func (n *Navigator) FilterOn() bool {
	return n.onlyIncomplete
}

// Progress - (done, total) over the whole dataset
func (n *Navigator) Progress() (int, int) {
	s := n.Stats()
	return s.Done, s.Total
}

func (n *Navigator) Stats() Stats {
	result := Stats{Total: len(n.images)}
	for _, img := range n.images {
		switch img.Status {
		case record.StatusDone:
			result.Done++
		case record.StatusError:
			result.Error++
		default:
			result.NotStarted++
		}
	}
	return result
}

// Position - 1-based position of the current image among the visible ones, and how many are visible
func (n *Navigator) Position() (int, int) {
	pos, count := 0, 0
	for c := range n.images {
		if !n.visible(c) {
			continue
		}
		count++
		if c == n.current {
			pos = count
		}
	}
	return pos, count
}

// UpdateStatus - keeps the cached status in line after a record's status changes
func (n *Navigator) UpdateStatus(imageID string, status record.Status) error {
	idx, ok := n.byID[imageID]
	if !ok {
		return errors.Wrapf(ErrUnknownImage, "%q", imageID)
	}
	n.images[idx].Status = status
	return nil
}

// ImageSize - pixel width, height of an image, read from its header on first request then cached.
// An image that can't be decoded stays failed. Read errors aren't cached, they may be transient
func (n *Navigator) ImageSize(imageID string) (int, int, error) {
	if size, ok := n.sizes[imageID]; ok {
		return size.width, size.height, size.err
	}

	idx, ok := n.byID[imageID]
	if !ok {
		return 0, 0, errors.Wrapf(ErrUnknownImage, "%q", imageID)
	}

	imgPath := n.ImagePath(n.images[idx])
	data, err := n.fs.ReadObject(n.bucket, imgPath)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "failed to read image %v", imgPath)
	}

	w, h, _, err := utils.ReadImageSize(data)
	if err != nil {
		err = errors.Wrapf(err, "%v", imgPath)
		n.sizes[imageID] = imageSize{err: err}
		return 0, 0, err
	}

	n.sizes[imageID] = imageSize{width: w, height: h}
	return w, h, nil
}

// ReadImage - the raw image file bytes
func (n *Navigator) ReadImage(imageID string) ([]byte, error) {
	idx, ok := n.byID[imageID]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownImage, "%q", imageID)
	}
	return n.fs.ReadObject(n.bucket, n.ImagePath(n.images[idx]))
}
