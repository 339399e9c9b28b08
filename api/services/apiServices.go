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

package services

import (
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/getsentry/sentry-go"
	"github.com/pixlise/survival-extractor/api/config"
	"github.com/pixlise/survival-extractor/core/awsutil"
	"github.com/pixlise/survival-extractor/core/fileaccess"
	"github.com/pixlise/survival-extractor/core/logger"
	"github.com/pixlise/survival-extractor/core/record"
	"github.com/pixlise/survival-extractor/core/session"
	"github.com/pixlise/survival-extractor/core/timestamper"
)

// NOTE: these 2 vars are set during compilation with -ldflags "-X ..."
var ApiVersion string
var GitHash string

// APIServices contains any services that HTTP handlers would want to use, like logging/config reading.
// Instead of globals we pass this around, which makes it easy to mock things for unit tests
type APIServices struct {
	// Configuration read in on startup
	Config config.APIConfig

	// Default logger
	Log logger.ILogger

	// Anything talking to S3 should use this. Nil if no AWS session could be made, in which case
	// only local datasets can be opened
	S3 s3iface.S3API

	// Timestamp retriever - so can be mocked for unit tests
	TimeStamper timestamper.ITimeStamper

	// The one extraction session this API serves
	Session *session.Session
}

// DefaultUnits - units for images with nothing saved saying otherwise
func DefaultUnits(cfg config.APIConfig) record.Units {
	return record.Units{Time: cfg.DefaultXAxisUnits, Survival: cfg.DefaultYAxisUnits}
}

// InitAPIServices sets up a new APIServices instance. notifier receives session events, may be nil
func InitAPIServices(cfg config.APIConfig, log logger.ILogger, notifier session.Notifier) *APIServices {
	var s3svc s3iface.S3API
	var s3Access fileaccess.FileAccess

	sess, err := awsutil.GetSessionWithRegion(cfg.AWSRegion)
	if err == nil {
		s3svc, err = awsutil.GetS3(sess)
	}
	if err != nil {
		log.Errorf("Failed to create AWS S3 service, S3 datasets unavailable. Error: %v", err)
	} else {
		s3Access = fileaccess.MakeS3Access(s3svc)
	}

	if cfg.EnvironmentName != "local" && cfg.EnvironmentName != "unit-test" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryEndpoint,
			Environment: cfg.EnvironmentName,
			Release:     ApiVersion,
		}); err != nil {
			log.Errorf("Sentry initialization failed: %v", err)
		}
	}

	ts := &timestamper.UnixTimeNowStamper{}

	return &APIServices{
		Config:      cfg,
		Log:         log,
		S3:          s3svc,
		TimeStamper: ts,
		Session:     session.NewSession(session.MakeStorageResolver(s3Access), log, ts, DefaultUnits(cfg), notifier),
	}
}
