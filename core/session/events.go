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

package session

import "github.com/pixlise/survival-extractor/core/record"

type EventType string

const (
	EventDatasetOpened EventType = "dataset-opened"
	EventImageChanged  EventType = "image-changed"
	EventStatusChanged EventType = "status-changed"
	EventRecordSaved   EventType = "record-saved"
	EventSaveFailed    EventType = "save-failed"
)

// Event - sent to listeners after the operation that raised it has finished
type Event struct {
	Type        EventType     `json:"type"`
	DatasetRoot string        `json:"dataset_root,omitempty"`
	ImageID     string        `json:"image_id,omitempty"`
	Status      record.Status `json:"status,omitempty"`
	Done        int           `json:"done"`
	Total       int           `json:"total"`
	Message     string        `json:"message,omitempty"`
}

// Notifier - gets told about events, eg to pass them on to websocket clients. Called without the
// session locked, so it may call back into the session
type Notifier interface {
	Notify(event Event)
}
