// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/blinklabs-io/endaoment/common"
	"github.com/getsops/sops/v3/decrypt"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "endaoment.config"

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "endaoment"

const DefaultDatabasePath = ".endaoment"

var ErrOwnerRequired = errors.New("owner address is required")

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

// RolesConfig names the accounts that receive each assignable role at
// bootstrap. A zero address leaves the role unset
type RolesConfig struct {
	Admin      common.Address `yaml:"admin"`
	Pauser     common.Address `yaml:"pauser"`
	Accountant common.Address `yaml:"accountant"`
	Reviewer   common.Address `yaml:"reviewer"`
}

type Config struct {
	// DatabasePath holds the event journal. An empty path keeps the journal
	// in memory
	DatabasePath string         `yaml:"databasePath" split_words:"true"`
	Owner        common.Address `yaml:"owner"`
	Roles        RolesConfig    `yaml:"roles"`
	Debug        bool           `yaml:"debug"`
	// Tracing exports spans over OTLP/HTTP, or to stdout with TracingStdout
	Tracing       bool `yaml:"tracing"`
	TracingStdout bool `yaml:"tracingStdout" split_words:"true"`
}

// Validate checks the settings needed to bootstrap a deployment
func (c *Config) Validate() error {
	if c.Owner.IsZero() {
		return ErrOwnerRequired
	}
	return nil
}

var globalConfig = defaultConfig()

func defaultConfig() *Config {
	return &Config{
		DatabasePath: DefaultDatabasePath,
	}
}

// configSearchPaths returns the locations checked when no config file is given
func configSearchPaths() []string {
	var ret []string
	if homeDir, err := os.UserHomeDir(); err == nil {
		ret = append(ret, filepath.Join(homeDir, ".endaoment", "endaoment.yaml"))
	}
	return append(ret, "/etc/endaoment/endaoment.yaml")
}

// LoadConfig reads configFile, or the first config found in the default
// search paths, and then applies environment variable overrides
func LoadConfig(configFile string) (*Config, error) {
	if configFile == "" {
		for _, path := range configSearchPaths() {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}
	}
	cfg := defaultConfig()
	if configFile != "" {
		buf, err := readConfigFile(configFile)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	// Process environment variables
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	globalConfig = cfg
	return cfg, nil
}

// readConfigFile returns the contents of configFile, decrypting it first if
// it is a sops encrypted YAML document
func readConfigFile(configFile string) ([]byte, error) {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	encrypted, err := isSopsEncrypted(buf)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	if !encrypted {
		return buf, nil
	}
	plaintext, err := decrypt.Data(buf, "yaml")
	if err != nil {
		return nil, fmt.Errorf("error decrypting config file: %w", err)
	}
	return plaintext, nil
}

// isSopsEncrypted reports whether buf carries a top level sops metadata key
func isSopsEncrypted(buf []byte) (bool, error) {
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(buf, &doc); err != nil {
		return false, err
	}
	_, ok := doc["sops"]
	return ok, nil
}

func GetConfig() *Config {
	return globalConfig
}
