/*
 * Copyright (c) SAS Institute Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds operator defaults. Every value can be overridden by a
// command-line flag; the file itself is optional.
type Config struct {
	TimestampURL string `yaml:"timestamp_url"` // RFC 3161 timestamp server
	SdkDir       string `yaml:"sdk_dir"`       // Windows Kits bin directory override
	Inf2CatOS    string `yaml:"inf2cat_os"`    // Inf2Cat /os: specification
	LogLevel     string `yaml:"log_level"`     // zerolog level name
}

// DefaultPath returns the per-user config location, or "" when no suitable
// directory exists.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "authenticode-scripts", "config.yml")
}

func ReadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config := new(Config)
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	return config, nil
}

// Load reads the named file, or the default location when path is empty. A
// missing default file yields an empty config, not an error.
func Load(path string) (*Config, error) {
	usedDefault := false
	if path == "" {
		path = DefaultPath()
		usedDefault = true
	}
	if path == "" {
		return new(Config), nil
	}
	config, err := ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && usedDefault {
			return new(Config), nil
		}
		return nil, err
	}
	return config, nil
}
