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

// Websocket push of session events (status changes, saves, navigation) to any connected client
package ws

import (
	"encoding/json"
	"sync/atomic"

	"github.com/olahol/melody"
	"github.com/pixlise/survival-extractor/api/handlers"
	"github.com/pixlise/survival-extractor/core/logger"
	"github.com/pixlise/survival-extractor/core/session"
)

type WSHandler struct {
	melody *melody.Melody
	log    logger.ILogger
	lastID uint64
}

func MakeWSHandler(m *melody.Melody, log logger.ILogger) *WSHandler {
	ws := WSHandler{
		melody: m,
		log:    log,
	}
	return &ws
}

func (ws *WSHandler) HandleSocketCreation(params handlers.ApiHandlerGenericPublicParams) error {
	return ws.melody.HandleRequest(params.Writer, params.Request)
}

func (ws *WSHandler) HandleConnect(s *melody.Session) {
	id := atomic.AddUint64(&ws.lastID, 1)
	s.Set("id", id)
	ws.log.Infof("Websocket connect: %v, session: %v", s.Request.RemoteAddr, id)
}

func (ws *WSHandler) HandleDisconnect(s *melody.Session) {
	id, ok := s.Get("id")
	if !ok {
		ws.log.Errorf("Websocket disconnect: MISSING SESSION ID")
		return
	}
	ws.log.Infof("Websocket disconnect: session: %v", id)
}

// HandleMessage - clients only listen, anything they send is dropped
func (ws *WSHandler) HandleMessage(s *melody.Session, msg []byte) {
	id, _ := s.Get("id")
	ws.log.Debugf("Ignoring %v byte message from websocket session %v", len(msg), id)
}

// Notify - sends the event to every connected client as JSON
func (ws *WSHandler) Notify(event session.Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		ws.log.Errorf("Failed to encode %v event: %v", event.Type, err)
		return
	}

	if err := ws.melody.Broadcast(msg); err != nil {
		ws.log.Errorf("Failed to broadcast %v event: %v", event.Type, err)
	}
}
