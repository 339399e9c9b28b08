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

// Prints how far extraction has got for a dataset, optionally re-exporting every completed image
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pixlise/survival-extractor/core/awsutil"
	"github.com/pixlise/survival-extractor/core/dataset"
	"github.com/pixlise/survival-extractor/core/fileaccess"
	"github.com/pixlise/survival-extractor/core/logger"
	"github.com/pixlise/survival-extractor/core/record"
	"github.com/pixlise/survival-extractor/core/session"
	"github.com/pixlise/survival-extractor/core/timestamper"
)

func main() {
	var argDataset = flag.String("dataset", "", "Dataset root, a local directory or s3://bucket/prefix")
	var argRegion = flag.String("region", "us-east-1", "AWS region, only needed for S3 datasets")
	var argIncomplete = flag.Bool("incomplete", false, "Only list images that aren't done")
	var argExport = flag.Bool("export", false, "Write the export file for every image marked done")
	var argVerbose = flag.Bool("verbose", false, "Show debug logging")
	flag.Parse()

	if len(*argDataset) <= 0 {
		flag.Usage()
		os.Exit(1)
	}

	iLog := &logger.StdOutLogger{}
	iLog.SetLogLevel(logger.LogError)
	if *argVerbose {
		iLog.SetLogLevel(logger.LogDebug)
	}

	var s3Access fileaccess.FileAccess
	if fileaccess.IsS3Url(*argDataset) {
		sess, err := awsutil.GetSessionWithRegion(*argRegion)
		if err != nil {
			log.Fatalf("Failed to create AWS session: %v", err)
		}
		s3svc, err := awsutil.GetS3(sess)
		if err != nil {
			log.Fatalf("Failed to create S3 service: %v", err)
		}
		s3Access = fileaccess.MakeS3Access(s3svc)
	}

	fs, bucket, prefix, err := session.MakeStorageResolver(s3Access)(*argDataset)
	if err != nil {
		log.Fatalln(err)
	}

	records := record.NewManager(fs, bucket, prefix, iLog, &timestamper.UnixTimeNowStamper{}, record.DefaultUnits)
	nav, err := dataset.LoadDataset(fs, bucket, prefix, records, iLog)
	if err != nil {
		log.Fatalf("Failed to read dataset %v: %v", *argDataset, err)
	}

	for _, img := range nav.Images() {
		if *argIncomplete && img.Status == record.StatusDone {
			continue
		}
		fmt.Printf("%-12v %v\n", img.Status, img.ID)
	}

	stats := nav.Stats()
	fmt.Printf("\nTotal: %v, done: %v, error: %v, not started: %v\n", stats.Total, stats.Done, stats.Error, stats.NotStarted)

	if *argExport {
		exported := exportDone(nav, records, iLog)
		fmt.Printf("Exported %v images\n", exported)
	}
}

func exportDone(nav *dataset.Navigator, records *record.Manager, iLog logger.ILogger) int {
	exported := 0
	for _, img := range nav.Images() {
		if img.Status != record.StatusDone {
			continue
		}

		rec, report := records.Load(img.ID, img.FileName)
		if report.Degraded() {
			iLog.Errorf("Skipping export of %v, its saved data could not be fully read", img.ID)
			continue
		}

		if _, err := records.Export(rec); err != nil {
			iLog.Errorf("%v", err)
			continue
		}
		exported++
	}
	return exported
}
