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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	saveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "record_save_seconds",
		Help:    "Time taken to write an image result file.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
	})
	saveCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "record_saves_total",
		Help: "Number of image result saves, by outcome.",
	}, []string{"result"})
	loadCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "record_loads_total",
		Help: "Number of image result loads, by outcome.",
	}, []string{"result"})
)
