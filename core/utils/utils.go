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

// Exposes various utility functions for slices, file names, pretty-printed JSON and
// reading image dimensions
package utils

import (
	"path"
	"strings"
)

// Simple Go helper functions
// stuff that you'd expect to be part of the std lib but aren't

// PrettyPrintIndentForJSON - indent used whenever we write JSON for humans to read
const PrettyPrintIndentForJSON = "    "

// MakeSaveableFileName - strips characters that cause trouble in file names or S3 keys
func MakeSaveableFileName(name string) string {
	replacer := strings.NewReplacer(
		"/", " ",
		"\\", " ",
		"?", "",
		"*", "",
		":", " ",
		"\"", "",
		"<", "",
		">", "",
		"|", " ",
	)
	return strings.TrimSpace(replacer.Replace(name))
}

// FileNameWithoutExt - "png/img 1.png" -> "img 1"
func FileNameWithoutExt(filePath string) string {
	name := path.Base(filePath)
	return strings.TrimSuffix(name, path.Ext(name))
}
