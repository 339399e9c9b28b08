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
	"strings"
	"sync"
)

// MemLogger - Keeps log lines in memory, so tests can check what got logged
type MemLogger struct {
	mutex sync.Mutex
	lines []string
}

func (l *MemLogger) Printf(level LogLevel, format string, a ...interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.lines = append(l.lines, logLevelPrefix[level]+": "+fmt.Sprintf(format, a...))
}
func (l *MemLogger) Debugf(format string, a ...interface{}) {
	l.Printf(LogDebug, format, a...)
}
func (l *MemLogger) Infof(format string, a ...interface{}) {
	l.Printf(LogInfo, format, a...)
}
func (l *MemLogger) Errorf(format string, a ...interface{}) {
	l.Printf(LogError, format, a...)
}

// Lines - copy of everything logged so far
func (l *MemLogger) Lines() []string {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	result := make([]string, len(l.lines))
	copy(result, l.lines)
	return result
}

// Contains - true if any logged line contains the given text
func (l *MemLogger) Contains(txt string) bool {
	for _, line := range l.Lines() {
		if strings.Contains(line, txt) {
			return true
		}
	}
	return false
}
