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

import (
	"fmt"

	"github.com/pixlise/survival-extractor/core/fileaccess"
)

// StorageResolver - maps a dataset root (local dir or s3://bucket/prefix) to where its files live.
// Returns the file access to use, and the bucket and prefix to pass to it
type StorageResolver func(root string) (fileaccess.FileAccess, string, string, error)

// MakeStorageResolver - local roots use the file system. S3 roots need s3Access, which can be nil
// if S3 isn't configured, in which case they're refused
func MakeStorageResolver(s3Access fileaccess.FileAccess) StorageResolver {
	return func(root string) (fileaccess.FileAccess, string, string, error) {
		if len(root) == 0 {
			return nil, "", "", fmt.Errorf("no dataset root specified")
		}

		if fileaccess.IsS3Url(root) {
			if s3Access == nil {
				return nil, "", "", fmt.Errorf("S3 not configured, can't open %v", root)
			}
			bucket, prefix, err := fileaccess.SplitS3Url(root)
			if err != nil {
				return nil, "", "", err
			}
			return s3Access, bucket, prefix, nil
		}

		return &fileaccess.FSAccess{}, root, "", nil
	}
}
