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

package filepaths

import "fmt"

func Example_paths() {
	fmt.Println(GetImagesPath(""))
	fmt.Println(GetImagesPath("study-a"))
	fmt.Println(GetImagePath("study-a", "fig 1.png"))
	fmt.Println(GetMetadataPath("", "fig 1"))
	fmt.Println(GetResultsPath("study-a/"))
	fmt.Println(GetResultPath("study-a", "fig 1"))
	fmt.Println(GetExportPath("", "fig 1"))
	fmt.Println(IsExportFile(GetExportPath("", "fig 1")), IsExportFile(GetResultPath("", "fig 1")))

	// Output:
	// png/
	// study-a/png/
	// study-a/png/fig 1.png
	// metadata/fig 1.json
	// study-a/results/
	// study-a/results/fig 1.json
	// results/fig 1_extracted_survival_time_points.json
	// true false
}
