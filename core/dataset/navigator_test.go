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

package dataset

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"testing"

	"github.com/pixlise/survival-extractor/core/fileaccess"
	"github.com/pixlise/survival-extractor/core/logger"
	"github.com/pixlise/survival-extractor/core/record"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBucket = "datasets"

type mapStatusReader map[string]record.Status

func (m mapStatusReader) ReadStatus(imageID string) (record.Status, error) {
	if imageID == "broken" {
		return record.StatusNotStarted, errors.New("corrupt saved record")
	}
	s, ok := m[imageID]
	if !ok {
		return record.StatusNotStarted, nil
	}
	return s, nil
}

func makePNG(w int, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h)))
	return buf.Bytes()
}

func makeDataset(files ...string) *fileaccess.MemAccess {
	fs := fileaccess.MakeMemAccess()
	for _, f := range files {
		fs.WriteObject(testBucket, "study/"+f, makePNG(4, 3))
	}
	return fs
}

func Example_navigateWithFilter() {
	fs := makeDataset("png/img1.png", "png/img2.png", "png/img3.png")
	nav, err := LoadDataset(fs, testBucket, "study", mapStatusReader{"img2": record.StatusDone}, &logger.NullLogger{})
	fmt.Println(err)

	fmt.Println(nav.Progress())
	fmt.Println(nav.Current().ID)

	nav.SetFilter(true)
	img, moved := nav.Next()
	fmt.Println(img.ID, moved)
	fmt.Println(nav.Position())

	img, moved = nav.Next()
	fmt.Println(img.ID, moved)

	img, moved = nav.Previous()
	fmt.Println(img.ID, moved)

	nav.SetFilter(false)
	img, moved = nav.Next()
	fmt.Println(img.ID, moved)
	fmt.Println(nav.Position())

	// Output:
	// <nil>
	// 1 3
	// img1
	// img3 true
	// 2 2
	// img3 false
	// img1 true
	// img2 true
	// 2 3
}

func Test_LoadDatasetIndex(t *testing.T) {
	fs := makeDataset(
		"png/b.png",
		"png/a.jpg",
		"png/a.png",
		"png/c.TIFF",
		"png/notes.txt",
		"png/sub/d.png",
		"metadata/a.json",
		"results/a.json",
	)

	log := &logger.MemLogger{}
	nav, err := LoadDataset(fs, testBucket, "study", mapStatusReader{"b": record.StatusError}, log)
	require.NoError(t, err)

	assert.Equal(t, []ImageEntry{
		{ID: "a", FileName: "a.jpg", Status: record.StatusNotStarted},
		{ID: "b", FileName: "b.png", Status: record.StatusError},
		{ID: "c", FileName: "c.TIFF", Status: record.StatusNotStarted},
	}, nav.Images())
	assert.True(t, log.Contains("Ignoring a.png"))
	assert.Equal(t, "study/png/b.png", nav.ImagePath(nav.Images()[1]))
}

func Test_LoadDatasetEmpty(t *testing.T) {
	fs := makeDataset("metadata/a.json", "png/readme.md")
	_, err := LoadDataset(fs, testBucket, "study", mapStatusReader{}, &logger.NullLogger{})
	assert.Equal(t, ErrEmptyDataset, errors.Cause(err))

	_, err = LoadDataset(fs, testBucket, "no-such-study", mapStatusReader{}, &logger.NullLogger{})
	assert.Equal(t, ErrEmptyDataset, errors.Cause(err))
}

func Test_UnreadableStatusIsNotStarted(t *testing.T) {
	fs := makeDataset("png/broken.png", "png/ok.png")
	log := &logger.MemLogger{}
	nav, err := LoadDataset(fs, testBucket, "study", mapStatusReader{"ok": record.StatusDone}, log)
	require.NoError(t, err)

	assert.Equal(t, Stats{Total: 2, Done: 1, NotStarted: 1}, nav.Stats())
	assert.True(t, log.Contains("Failed to read status of broken"))
}

func Test_NavigationIsClamped(t *testing.T) {
	fs := makeDataset("png/1.png", "png/2.png")
	nav, err := LoadDataset(fs, testBucket, "study", mapStatusReader{}, &logger.NullLogger{})
	require.NoError(t, err)

	img, moved := nav.Previous()
	assert.False(t, moved)
	assert.Equal(t, "1", img.ID)

	nav.Next()
	img, moved = nav.Next()
	assert.False(t, moved)
	assert.Equal(t, "2", img.ID)
}

func Test_FilterKeepsCurrentUntilNavigation(t *testing.T) {
	fs := makeDataset("png/1.png", "png/2.png", "png/3.png")
	nav, err := LoadDataset(fs, testBucket, "study", mapStatusReader{}, &logger.NullLogger{})
	require.NoError(t, err)

	require.NoError(t, nav.UpdateStatus("1", record.StatusDone))
	nav.SetFilter(true)
	assert.True(t, nav.FilterOn())

	assert.Equal(t, "1", nav.Current().ID)
	pos, count := nav.Position()
	assert.Equal(t, 1, pos)
	assert.Equal(t, 3, count)

	nav.Next()
	img, moved := nav.Previous()
	assert.False(t, moved)
	assert.Equal(t, "2", img.ID)

	pos, count = nav.Position()
	assert.Equal(t, 1, pos)
	assert.Equal(t, 2, count)
}

func Test_GotoAndUpdateStatus(t *testing.T) {
	fs := makeDataset("png/1.png", "png/2.png", "png/3.png")
	nav, err := LoadDataset(fs, testBucket, "study", mapStatusReader{"3": record.StatusDone}, &logger.NullLogger{})
	require.NoError(t, err)

	nav.SetFilter(true)
	img, err := nav.Goto("3")
	require.NoError(t, err)
	assert.Equal(t, "3", img.ID)

	_, err = nav.Goto("4")
	assert.Equal(t, ErrUnknownImage, errors.Cause(err))
	assert.Equal(t, "3", nav.Current().ID)

	require.NoError(t, nav.UpdateStatus("1", record.StatusDone))
	require.NoError(t, nav.UpdateStatus("2", record.StatusError))
	assert.Equal(t, ErrUnknownImage, errors.Cause(nav.UpdateStatus("x", record.StatusDone)))

	done, total := nav.Progress()
	assert.Equal(t, 2, done)
	assert.Equal(t, 3, total)
	assert.Equal(t, Stats{Total: 3, Done: 2, Error: 1}, nav.Stats())
}

func Test_ImageSize(t *testing.T) {
	fs := makeDataset("png/1.png")
	fs.WriteObject(testBucket, "study/png/2.png", []byte("not an image"))
	nav, err := LoadDataset(fs, testBucket, "study", mapStatusReader{}, &logger.NullLogger{})
	require.NoError(t, err)

	w, h, err := nav.ImageSize("1")
	require.NoError(t, err)
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)

	// Cached, so still answers after the file goes away
	require.NoError(t, fs.DeleteObject(testBucket, "study/png/1.png"))
	w, h, err = nav.ImageSize("1")
	require.NoError(t, err)
	assert.Equal(t, 4, w)
	assert.Equal(t, 3, h)

	_, _, err = nav.ImageSize("2")
	assert.Error(t, err)

	// Undecodable images aren't read again
	require.NoError(t, fs.DeleteObject(testBucket, "study/png/2.png"))
	_, _, err2 := nav.ImageSize("2")
	assert.Equal(t, err, err2)

	_, _, err = nav.ImageSize("3")
	assert.Equal(t, ErrUnknownImage, errors.Cause(err))
}
