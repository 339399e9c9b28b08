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

package endpoints

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/pixlise/survival-extractor/api/services"
	"github.com/pixlise/survival-extractor/core/logger"
	"github.com/pkg/errors"
)

// How many chars of request body to display in logs
const bodyTextReqLogLength = 200

// How many chars of resp body to display in logs
const bodyTextRespLogHeadLength = 600
const bodyTextRespLogTailLength = 300

// If req/resp body is longer than the limits, we print this to show it was cut off
const logSnipIndicator = "\n    ---- >8 -------- >8 -------- >8 -------- >8 ----\n"

// Passes everything through to the real writer, keeping a copy of the body and status to log
type responseWriterWithCopy struct {
	RealWriter http.ResponseWriter
	Body       *bytes.Buffer
	Status     int
}

func (w *responseWriterWithCopy) StatusText() string {
	if w.Status == 0 {
		return "OK"
	}
	return strconv.Itoa(w.Status)
}

func (w *responseWriterWithCopy) Header() http.Header {
	return w.RealWriter.Header()
}

func (w *responseWriterWithCopy) Write(p []byte) (int, error) {
	w.Body.Write(p)
	return w.RealWriter.Write(p)
}

func (w *responseWriterWithCopy) WriteHeader(statusCode int) {
	w.Status = statusCode
	w.RealWriter.WriteHeader(statusCode)
}

// Hijack - websocket upgrades go through this middleware too
func (w *responseWriterWithCopy) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.RealWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	return h.Hijack()
}

type LoggerMiddleware struct {
	*services.APIServices
}

func snipRequestBody(body string) string {
	if len(body) > bodyTextReqLogLength {
		return body[0:bodyTextReqLogLength] + logSnipIndicator
	}
	return body
}

func snipResponseBody(body string) string {
	if len(body) > bodyTextRespLogHeadLength+bodyTextRespLogTailLength {
		return body[0:bodyTextRespLogHeadLength] + logSnipIndicator + body[len(body)-bodyTextRespLogTailLength:]
	}
	return body
}

func (h *LoggerMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Read the body so we can log it, and give the next in chain a copy
		bodyBytes, err := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		reqBodyText := "REQ BODY ERROR"
		if err == nil {
			reqBodyText = snipRequestBody(string(bodyBytes))
		}

		buf := new(bytes.Buffer)
		w2 := &responseWriterWithCopy{RealWriter: w, Body: buf, Status: 0}

		next.ServeHTTP(w2, r)

		hadError := w2.Status >= http.StatusBadRequest

		// Image downloads are binary, don't dump them in the log
		respBodyTxt := fmt.Sprintf("Body data length: %v bytes", buf.Len())
		if contType := w2.Header().Get("Content-Type"); contType == "" || contType == "application/json" || contType == "text/plain; charset=utf-8" {
			respBodyTxt = snipResponseBody(buf.String())
		}

		level := logger.LogDebug
		if hadError {
			level = logger.LogError

			if h.Config.EnvironmentName != "local" && h.Config.EnvironmentName != "unit-test" {
				sentry.CaptureMessage(fmt.Sprintf("API returned %v for %v \"%v\". Response body: \"%v\"", w2.Status, r.Method, r.URL, respBodyTxt))
			}
		}

		// Don't log requests to /, load balancers poll it
		if r.URL.Path != "/" && (hadError || h.Config.LogLevel == logger.LogDebug) {
			h.Log.Printf(level, "Request: %v (%v), body: %v\nResponse status: %v, body: %v", r.URL, r.Method, reqBodyText, w2.StatusText(), respBodyTxt)
		}
	})
}
