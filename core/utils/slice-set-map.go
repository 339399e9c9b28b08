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

package utils

import (
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func ItemInSlice[T comparable](a T, list []T) bool {
	return slices.Contains(list, a)
}

// RemoveItemFromSlice - returns a copy of list without any occurrences of a
func RemoveItemFromSlice[T comparable](a T, list []T) []T {
	result := make([]T, 0, len(list))
	for _, item := range list {
		if item != a {
			result = append(result, item)
		}
	}
	return result
}

// GetSortedMapKeys - map keys in ascending order, so output is deterministic
func GetSortedMapKeys[K constraints.Ordered, V any](theMap map[K]V) []K {
	keys := maps.Keys(theMap)
	slices.Sort(keys)
	return keys
}
