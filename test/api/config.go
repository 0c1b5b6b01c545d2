/*
Copyright 2024-2025 the Unikorn Authors.
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DefaultBaseURL is the public deployment of the users API.
const DefaultBaseURL = "https://reqres.in/api"

type TestConfig struct {
	BaseURL            string        `env:"API_BASE_URL" envDefault:"https://reqres.in/api"`
	APIKey             string        `env:"API_KEY"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	TestTimeout        time.Duration `env:"TEST_TIMEOUT" envDefault:"2m"`
	SkipIntegration    bool          `env:"SKIP_INTEGRATION" envDefault:"false"`
	UseStubAPI         bool          `env:"USE_STUB_API" envDefault:"false"`
	ContractValidation bool          `env:"CONTRACT_VALIDATION" envDefault:"true"`
	DebugLogging       bool          `env:"DEBUG_LOGGING" envDefault:"false"`
	LogRequests        bool          `env:"LOG_REQUESTS" envDefault:"false"`
	LogResponses       bool          `env:"LOG_RESPONSES" envDefault:"false"`
}

// LoadTestConfig loads configuration from environment variables and .env files.
// Returns an error if a value cannot be parsed or the base URL is unusable.
func LoadTestConfig() (*TestConfig, error) {
	loadEnvFile()

	config := &TestConfig{}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("parsing test configuration: %w", err)
	}

	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")

	if err := validateRequiredFields(config); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	envPaths := []string{
		"../../.env",    // From test/api directory
		"../../../.env", // From test/api/suites directory
	}

	var envPath string
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				envPath = absPath
				break
			}
		}
	}

	if envPath == "" {
		// .env file not found - this is OK in CI/CD where env vars are set directly
		return
	}

	// Variables already set in the environment take precedence.
	if err := godotenv.Load(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file from %s: %v\n", envPath, err)
	}
}

// validateRequiredFields checks that configuration values are usable.
func validateRequiredFields(config *TestConfig) error {
	var problems []string

	if config.BaseURL == "" {
		problems = append(problems, "API_BASE_URL must not be empty")
	} else if !strings.HasPrefix(config.BaseURL, "http://") && !strings.HasPrefix(config.BaseURL, "https://") {
		problems = append(problems, fmt.Sprintf("API_BASE_URL %q must be an http or https URL", config.BaseURL))
	}

	if config.RequestTimeout <= 0 {
		problems = append(problems, "REQUEST_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid test configuration: %s", strings.Join(problems, ", "))
	}

	return nil
}
