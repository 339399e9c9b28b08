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

package logger

import (
	"fmt"
	"testing"
)

func Example_memLogger() {
	l := &MemLogger{}
	l.Infof("Loaded %v images", 3)
	l.Errorf("Failed to read: %v", "img1.json")
	l.Debugf("x=%v", 1.5)

	for _, line := range l.Lines() {
		fmt.Println(line)
	}
	fmt.Println(l.Contains("img1.json"))
	fmt.Println(l.Contains("img2.json"))

	// Output:
	// INFO: Loaded 3 images
	// ERROR: Failed to read: img1.json
	// DEBUG: x=1.5
	// true
	// false
}

func Test_GetLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug": LogDebug,
		"INFO":  LogInfo,
		"Error": LogError,
	}

	for name, want := range cases {
		got, err := GetLogLevel(name)
		if err != nil {
			t.Errorf("GetLogLevel(%q) failed: %v", name, err)
		}
		if got != want {
			t.Errorf("GetLogLevel(%q) got %v, want %v", name, got, want)
		}
	}

	if _, err := GetLogLevel("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}
