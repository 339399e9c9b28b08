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

// Where things live within a dataset. A dataset is either a local directory or an S3 bucket+prefix,
// these paths are relative to that
package filepaths

import (
	"path"
	"strings"
)

// Images to be digitised
const RootImages = "png"

// Optional per-image metadata supplied with the dataset, read-only to us
const RootMetadata = "metadata"

// Our output, one JSON per image
const RootResults = "results"

// Suffix of the standalone export file written next to a result
const ExportFileSuffix = "_extracted_survival_time_points.json"

func GetImagesPath(datasetPrefix string) string {
	return path.Join(datasetPrefix, RootImages) + "/"
}

func GetImagePath(datasetPrefix string, imageFileName string) string {
	return path.Join(datasetPrefix, RootImages, imageFileName)
}

func GetMetadataPath(datasetPrefix string, imageID string) string {
	return path.Join(datasetPrefix, RootMetadata, imageID+".json")
}

func GetResultsPath(datasetPrefix string) string {
	return path.Join(datasetPrefix, RootResults) + "/"
}

func GetResultPath(datasetPrefix string, imageID string) string {
	return path.Join(datasetPrefix, RootResults, imageID+".json")
}

func GetExportPath(datasetPrefix string, imageID string) string {
	return path.Join(datasetPrefix, RootResults, imageID+ExportFileSuffix)
}

// IsExportFile - export files sit in the results dir but aren't results
func IsExportFile(filePath string) bool {
	return strings.HasSuffix(filePath, ExportFileSuffix)
}
