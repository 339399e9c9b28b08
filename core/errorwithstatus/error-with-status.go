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

// Errors carrying the HTTP status they should be reported with
package errorwithstatus

import (
	"net/http"
)

type Error interface {
	error
	Status() int
}

type StatusError struct {
	Code int
	Err  error
}

func (se StatusError) Error() string {
	return se.Err.Error()
}

func (se StatusError) Status() int {
	return se.Code
}

// Cause - so errors.Cause sees through to the wrapped error
func (se StatusError) Cause() error {
	return se.Err
}

func (se StatusError) Unwrap() error {
	return se.Err
}

func MakeBadRequestError(err error) StatusError {
	return MakeStatusError(http.StatusBadRequest, err)
}

func MakeConflictError(err error) StatusError {
	return MakeStatusError(http.StatusConflict, err)
}

func MakeStatusError(code int, err error) StatusError {
	return StatusError{Code: code, Err: err}
}
