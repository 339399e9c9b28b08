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

// API configuration as read from a JSON or YAML file, with env var overrides and defaults
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/pixlise/survival-extractor/core/logger"
	"gopkg.in/yaml.v3"
)

// Any field can be set by an env var named this plus the field name, eg EXTRACTOR_CONFIG_DatasetRoot
const EnvVarPrefix = "EXTRACTOR_CONFIG_"

const (
	defaultListenAddress  = ":8080"
	defaultMetricsAddress = ":2112"
	defaultEnvironment    = "local"
	defaultXAxisUnits     = "months"
	defaultYAxisUnits     = "% cumulative survival"
)

// APIConfig combines env vars and config file values
type APIConfig struct {
	// "local" and "unit-test" disable sentry
	EnvironmentName string `yaml:"EnvironmentName"`

	// Dataset opened on startup, local dir or s3://bucket/prefix. Optional, clients can open one later
	DatasetRoot string `yaml:"DatasetRoot"`

	// Only needed for S3 datasets. If blank, the AWS shared config decides
	AWSRegion string `yaml:"AWSRegion"`

	ListenAddress  string `yaml:"ListenAddress"`
	MetricsAddress string `yaml:"MetricsAddress"`

	LogLevel logger.LogLevel `yaml:"LogLevel"` // Can be changed at runtime, but if API restarts, it goes back to configured value

	SentryEndpoint string `yaml:"SentryEndpoint"`

	// Units for images that have no saved result or metadata saying otherwise
	DefaultXAxisUnits string `yaml:"DefaultXAxisUnits"`
	DefaultYAxisUnits string `yaml:"DefaultYAxisUnits"`

	// CORS origins. Comma separated when set by env var
	AllowedOrigins []string `yaml:"AllowedOrigins"`
}

func NewConfigFromFile(configFilePath string) (APIConfig, error) {
	var cfg APIConfig

	fmt.Printf("Loading custom config from: %s\n", configFilePath)
	customConfig, err := os.ReadFile(configFilePath)
	if err != nil {
		return cfg, fmt.Errorf("could not read config file at %s", configFilePath)
	}

	ext := strings.ToLower(filepath.Ext(configFilePath))
	return buildConfig(customConfig, ext == ".yaml" || ext == ".yml")
}

func buildConfig(configData []byte, isYAML bool) (APIConfig, error) {
	var cfg APIConfig

	var err error
	if isYAML {
		err = yaml.Unmarshal(configData, &cfg)
	} else {
		err = json.Unmarshal(configData, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse custom config: %v", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

// applyEnvOverrides - any field with a matching EXTRACTOR_CONFIG_ env var gets its value.
// NOTE: For []string slices, pass in a comma-separated string
//
//	Ex: export EXTRACTOR_CONFIG_AllowedOrigins="http://localhost:4200,https://extractor.example.com"
func applyEnvOverrides(cfg *APIConfig) {
	reflection := reflect.ValueOf(cfg).Elem()
	for i := 0; i < reflection.NumField(); i++ {
		fieldName := reflection.Type().Field(i).Name
		field := reflection.Field(i)

		val, present := os.LookupEnv(EnvVarPrefix + fieldName)
		if !present {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(val)
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				slicedVal := []string{}
				for _, item := range strings.Split(val, ",") {
					if item = strings.TrimSpace(item); len(item) > 0 {
						slicedVal = append(slicedVal, item)
					}
				}
				field.Set(reflect.ValueOf(slicedVal))
			}
		case reflect.Int:
			// Log level can be given by name
			if field.Type() == reflect.TypeOf(logger.LogLevel(0)) {
				if level, err := logger.GetLogLevel(val); err == nil {
					field.SetInt(int64(level))
					continue
				}
			}

			i, err := strconv.Atoi(val)
			if err != nil {
				fmt.Printf("Could not cast value %v%s=%s to Int\n", EnvVarPrefix, fieldName, val)
				continue
			}
			field.SetInt(int64(i))
		}
	}
}

func applyDefaults(cfg *APIConfig) {
	if len(cfg.EnvironmentName) <= 0 {
		cfg.EnvironmentName = defaultEnvironment
	}
	if len(cfg.ListenAddress) <= 0 {
		cfg.ListenAddress = defaultListenAddress
	}
	if len(cfg.MetricsAddress) <= 0 {
		cfg.MetricsAddress = defaultMetricsAddress
	}
	if len(cfg.DefaultXAxisUnits) <= 0 {
		cfg.DefaultXAxisUnits = defaultXAxisUnits
	}
	if len(cfg.DefaultYAxisUnits) <= 0 {
		cfg.DefaultYAxisUnits = defaultYAxisUnits
	}
	if len(cfg.AllowedOrigins) <= 0 {
		cfg.AllowedOrigins = []string{"*"}
	}
}

// Init config, loads config params. With no config file we run on defaults plus env vars
func Init() (APIConfig, error) {
	configFilePath := flag.String("customConfigPath", "", "Path to a JSON or YAML file holding config for the extractor API")
	datasetRoot := flag.String("dataset", "", "Dataset to open on startup, overrides DatasetRoot in config")
	flag.Parse()

	var cfg APIConfig
	var err error

	if configFilePath != nil && *configFilePath != "" {
		cfg, err = NewConfigFromFile(*configFilePath)
	} else {
		fmt.Println("No config file provided, using defaults")
		cfg, err = buildConfig([]byte("{}"), false)
	}
	if err != nil {
		return cfg, err
	}

	if datasetRoot != nil && *datasetRoot != "" {
		cfg.DatasetRoot = *datasetRoot
	}

	return cfg, nil
}
