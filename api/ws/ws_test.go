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

package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/olahol/melody"
	apiRouter "github.com/pixlise/survival-extractor/api/router"
	"github.com/pixlise/survival-extractor/api/services"
	"github.com/pixlise/survival-extractor/core/logger"
	"github.com/pixlise/survival-extractor/core/record"
	"github.com/pixlise/survival-extractor/core/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_BroadcastsEvents(t *testing.T) {
	log := &logger.MemLogger{}
	svcs := &services.APIServices{Log: log}
	svcs.Config.EnvironmentName = "unit-test"

	m := melody.New()
	wsHandler := MakeWSHandler(m, log)

	connected := make(chan bool, 2)
	m.HandleConnect(func(s *melody.Session) {
		wsHandler.HandleConnect(s)
		connected <- true
	})
	m.HandleDisconnect(wsHandler.HandleDisconnect)
	m.HandleMessage(wsHandler.HandleMessage)

	router := apiRouter.NewAPIRouter(svcs, mux.NewRouter())
	router.AddPublicHandler("/ws", "GET", wsHandler.HandleSocketCreation)

	server := httptest.NewServer(router.Router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	clients := []*websocket.Conn{}
	for c := 0; c < 2; c++ {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		defer conn.Close()
		clients = append(clients, conn)

		select {
		case <-connected:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for websocket connection")
		}
	}

	wsHandler.Notify(session.Event{Type: session.EventStatusChanged, ImageID: "fig2", Status: record.StatusDone, Done: 4, Total: 9})

	for _, conn := range clients {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		msgType, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, msgType)

		var got session.Event
		require.NoError(t, json.Unmarshal(msg, &got))
		assert.Equal(t, session.Event{Type: session.EventStatusChanged, ImageID: "fig2", Status: record.StatusDone, Done: 4, Total: 9}, got)
	}

	assert.True(t, log.Contains("Websocket connect"))
}

func Test_SocketCreationNeedsUpgrade(t *testing.T) {
	svcs := &services.APIServices{Log: &logger.NullLogger{}}
	svcs.Config.EnvironmentName = "unit-test"

	wsHandler := MakeWSHandler(melody.New(), svcs.Log)
	router := apiRouter.NewAPIRouter(svcs, mux.NewRouter())
	router.AddPublicHandler("/ws", "GET", wsHandler.HandleSocketCreation)

	req, _ := http.NewRequest("GET", "/ws", nil)
	rr := httptest.NewRecorder()
	router.Router.ServeHTTP(rr, req)

	assert.NotEqual(t, http.StatusOK, rr.Code)
}
