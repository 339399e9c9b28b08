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

package fileaccess

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pixlise/survival-extractor/core/utils"
	"github.com/pkg/errors"
)

// Temp files are created next to their target so the final rename stays on one file system
const tempFileMarker = ".tmp-"

// Implementation of file access using local file system
type FSAccess struct {
}

// ListObjects - lists files (not dirs) whose path relative to rootPath starts with prefix
func (fs *FSAccess) ListObjects(rootPath string, prefix string) ([]string, error) {
	result := []string{}

	rootOnly := path.Join(rootPath) // Using path.Join to make it match the fullPath cleans off ./ for example
	walkFrom := fs.filePath(rootPath, prefix)
	if len(prefix) > 0 && !strings.HasSuffix(prefix, "/") {
		// Prefix may end part way through a file name
		walkFrom = filepath.Dir(walkFrom)
	}

	err := filepath.Walk(walkFrom, func(pathFound string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() || isTempFile(info.Name()) {
			return nil
		}

		// pathFound contains the root directory, so we chop it off
		toSave := filepath.ToSlash(pathFound)
		if len(rootOnly) > 0 && rootOnly != "." && strings.HasPrefix(toSave, rootOnly+"/") {
			toSave = toSave[len(rootOnly)+1:]
		}
		if strings.HasPrefix(toSave, prefix) {
			result = append(result, toSave)
		}
		return nil
	})

	return result, err
}

func (fs *FSAccess) ObjectExists(rootPath string, path string) (bool, error) {
	_, err := os.Stat(fs.filePath(rootPath, path))
	if err == nil {
		return true, nil
	}
	if fs.IsNotFoundError(err) {
		return false, nil
	}
	return false, err
}

func (fs *FSAccess) ReadObject(rootPath string, path string) ([]byte, error) {
	return os.ReadFile(fs.filePath(rootPath, path))
}

// WriteObject - writes to a temp file in the target directory, then renames it over the target.
// Readers see either the old file or the new one, never a partial write
func (fs *FSAccess) WriteObject(rootPath string, path string, data []byte) error {
	fullPath := fs.filePath(rootPath, path)

	// Ensure any subdirs in between are created
	dir := filepath.Dir(fullPath)
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+tempFileMarker+"*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmpName, 0666)
	}
	if err == nil {
		err = os.Rename(tmpName, fullPath)
	}

	if err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to write %v", fullPath)
	}
	return nil
}

func (fs *FSAccess) ReadJSON(rootPath string, path string, itemsPtr interface{}, emptyIfNotFound bool) error {
	fileData, err := fs.ReadObject(rootPath, path)

	// If we got an error, and it's a not found, and we're told to ignore these and return empty data, then do so
	if err != nil {
		if emptyIfNotFound && fs.IsNotFoundError(err) {
			return nil
		}
		return err
	}

	return json.Unmarshal(fileData, itemsPtr)
}

func (fs *FSAccess) WriteJSON(rootPath string, path string, itemsPtr interface{}) error {
	fileData, err := json.MarshalIndent(itemsPtr, "", utils.PrettyPrintIndentForJSON)
	if err != nil {
		return err
	}

	return fs.WriteObject(rootPath, path, fileData)
}

func (fs *FSAccess) DeleteObject(rootPath string, path string) error {
	return os.Remove(fs.filePath(rootPath, path))
}

func (fs *FSAccess) IsNotFoundError(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}

func (fs *FSAccess) filePath(rootPath string, filePath string) string {
	return path.Join(rootPath, filePath)
}

func isTempFile(name string) bool {
	return strings.HasPrefix(name, ".") && strings.Contains(name, tempFileMarker)
}
