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
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/pixlise/survival-extractor/core/utils"
)

// MemAccess - in-memory implementation, mainly for unit tests that don't want to touch disk or S3
type MemAccess struct {
	mutex   sync.Mutex
	buckets map[string]map[string][]byte

	// If set, WriteObject fails for these paths. Lets tests check save failures are handled
	FailWritePaths []string
}

type memNotFoundError struct {
	bucket string
	path   string
}

func (e memNotFoundError) Error() string {
	return fmt.Sprintf("%v/%v: not found", e.bucket, e.path)
}

func MakeMemAccess() *MemAccess {
	return &MemAccess{buckets: map[string]map[string][]byte{}}
}

func (m *MemAccess) ListObjects(bucket string, prefix string) ([]string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	result := []string{}
	for p := range m.buckets[bucket] {
		if strings.HasPrefix(p, prefix) {
			result = append(result, p)
		}
	}
	sort.Strings(result)
	return result, nil
}

func (m *MemAccess) ObjectExists(bucket string, path string) (bool, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	_, ok := m.buckets[bucket][path]
	return ok, nil
}

func (m *MemAccess) ReadObject(bucket string, path string) ([]byte, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	data, ok := m.buckets[bucket][path]
	if !ok {
		return nil, memNotFoundError{bucket, path}
	}

	result := make([]byte, len(data))
	copy(result, data)
	return result, nil
}

func (m *MemAccess) WriteObject(bucket string, path string, data []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if utils.ItemInSlice(path, m.FailWritePaths) {
		return fmt.Errorf("write failed: %v/%v", bucket, path)
	}

	if m.buckets == nil {
		m.buckets = map[string]map[string][]byte{}
	}
	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = map[string][]byte{}
	}

	stored := make([]byte, len(data))
	copy(stored, data)
	m.buckets[bucket][path] = stored
	return nil
}

func (m *MemAccess) ReadJSON(bucket string, path string, itemsPtr interface{}, emptyIfNotFound bool) error {
	fileData, err := m.ReadObject(bucket, path)
	if err != nil {
		if emptyIfNotFound && m.IsNotFoundError(err) {
			return nil
		}
		return err
	}

	return json.Unmarshal(fileData, itemsPtr)
}

func (m *MemAccess) WriteJSON(bucket string, path string, itemsPtr interface{}) error {
	fileData, err := json.MarshalIndent(itemsPtr, "", utils.PrettyPrintIndentForJSON)
	if err != nil {
		return err
	}

	return m.WriteObject(bucket, path, fileData)
}

func (m *MemAccess) DeleteObject(bucket string, path string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.buckets[bucket][path]; !ok {
		return memNotFoundError{bucket, path}
	}
	delete(m.buckets[bucket], path)
	return nil
}

func (m *MemAccess) IsNotFoundError(err error) bool {
	_, ok := err.(memNotFoundError)
	return ok
}
