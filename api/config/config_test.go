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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pixlise/survival-extractor/core/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, name string, content string) string {
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func Test_InitializeConfigWithJSONFile(t *testing.T) {
	p := writeConfigFile(t, "config.json", `{"EnvironmentName": "prod", "DatasetRoot": "s3://figures/study-a", "LogLevel": 2}`)

	cfg, err := NewConfigFromFile(p)
	require.NoError(t, err)
	assert.Equal(t, "prod", cfg.EnvironmentName)
	assert.Equal(t, "s3://figures/study-a", cfg.DatasetRoot)
	assert.Equal(t, logger.LogError, cfg.LogLevel)

	// Defaults
	assert.Equal(t, ":8080", cfg.ListenAddress)
	assert.Equal(t, ":2112", cfg.MetricsAddress)
	assert.Equal(t, "months", cfg.DefaultXAxisUnits)
	assert.Equal(t, "% cumulative survival", cfg.DefaultYAxisUnits)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func Test_InitializeConfigWithYAMLFile(t *testing.T) {
	p := writeConfigFile(t, "config.yaml", `
EnvironmentName: dev
ListenAddress: ":9000"
DefaultXAxisUnits: weeks
AllowedOrigins:
  - http://localhost:4200
  - https://extractor.example.com
`)

	cfg, err := NewConfigFromFile(p)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.EnvironmentName)
	assert.Equal(t, ":9000", cfg.ListenAddress)
	assert.Equal(t, "weeks", cfg.DefaultXAxisUnits)
	assert.Equal(t, []string{"http://localhost:4200", "https://extractor.example.com"}, cfg.AllowedOrigins)
}

func Test_BadConfigFile(t *testing.T) {
	_, err := NewConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	p := writeConfigFile(t, "config.json", `{"EnvironmentName": `)
	_, err = NewConfigFromFile(p)
	assert.Error(t, err)
}

// Check that the config can be overridden with Environment Variables
func Test_OverrideConfigWithEnvVars(t *testing.T) {
	t.Setenv("EXTRACTOR_CONFIG_DatasetRoot", "/data/env-set")
	t.Setenv("EXTRACTOR_CONFIG_LogLevel", "error")
	t.Setenv("EXTRACTOR_CONFIG_AllowedOrigins", "http://a.example.com, http://b.example.com,")

	p := writeConfigFile(t, "config.json", `{"DatasetRoot": "/data/file-set", "LogLevel": 0}`)
	cfg, err := NewConfigFromFile(p)
	require.NoError(t, err)

	assert.Equal(t, "/data/env-set", cfg.DatasetRoot)
	assert.Equal(t, logger.LogError, cfg.LogLevel)
	assert.Equal(t, []string{"http://a.example.com", "http://b.example.com"}, cfg.AllowedOrigins)

	t.Setenv("EXTRACTOR_CONFIG_LogLevel", "1")
	cfg, err = buildConfig([]byte("{}"), false)
	require.NoError(t, err)
	assert.Equal(t, logger.LogInfo, cfg.LogLevel)

	t.Setenv("EXTRACTOR_CONFIG_LogLevel", "loud")
	cfg, err = buildConfig([]byte("{}"), false)
	require.NoError(t, err)
	assert.Equal(t, logger.LogDebug, cfg.LogLevel)
}
