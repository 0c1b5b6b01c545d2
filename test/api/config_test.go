/*
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

package api_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive
	. "github.com/onsi/gomega"    //nolint:revive

	"github.com/unikorn-cloud/users-acceptance/test/api"
)

var _ = Describe("LoadTestConfig", func() {
	setenv := func(key, value string) {
		previous, ok := os.LookupEnv(key)

		Expect(os.Setenv(key, value)).To(Succeed())

		DeferCleanup(func() {
			if ok {
				_ = os.Setenv(key, previous)
			} else {
				_ = os.Unsetenv(key)
			}
		})
	}

	unsetenv := func(keys ...string) {
		for _, key := range keys {
			previous, ok := os.LookupEnv(key)
			if !ok {
				continue
			}

			Expect(os.Unsetenv(key)).To(Succeed())

			DeferCleanup(os.Setenv, key, previous)
		}
	}

	When("nothing is set", func() {
		It("targets the public deployment with defaults", func() {
			unsetenv("API_BASE_URL", "API_KEY", "REQUEST_TIMEOUT", "TEST_TIMEOUT", "SKIP_INTEGRATION",
				"USE_STUB_API", "CONTRACT_VALIDATION", "DEBUG_LOGGING", "LOG_REQUESTS", "LOG_RESPONSES")

			config, err := api.LoadTestConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(config.BaseURL).To(Equal(api.DefaultBaseURL))
			Expect(config.APIKey).To(BeEmpty())
			Expect(config.RequestTimeout).To(Equal(30 * time.Second))
			Expect(config.TestTimeout).To(Equal(2 * time.Minute))
			Expect(config.SkipIntegration).To(BeFalse())
			Expect(config.UseStubAPI).To(BeFalse())
			Expect(config.ContractValidation).To(BeTrue())
			Expect(config.LogRequests).To(BeFalse())
		})
	})

	When("the environment overrides values", func() {
		It("uses them", func() {
			setenv("API_BASE_URL", "http://localhost:8080/api/")
			setenv("API_KEY", "reqres-free-v1")
			setenv("REQUEST_TIMEOUT", "5s")
			setenv("CONTRACT_VALIDATION", "false")
			setenv("LOG_RESPONSES", "true")

			config, err := api.LoadTestConfig()
			Expect(err).NotTo(HaveOccurred())
			Expect(config.BaseURL).To(Equal("http://localhost:8080/api"))
			Expect(config.APIKey).To(Equal("reqres-free-v1"))
			Expect(config.RequestTimeout).To(Equal(5 * time.Second))
			Expect(config.ContractValidation).To(BeFalse())
			Expect(config.LogResponses).To(BeTrue())
		})
	})

	When("values are invalid", func() {
		It("rejects unparsable durations", func() {
			setenv("REQUEST_TIMEOUT", "soon")

			_, err := api.LoadTestConfig()
			Expect(err).To(MatchError(ContainSubstring("parsing test configuration")))
		})

		It("rejects base URLs that are not http", func() {
			setenv("API_BASE_URL", "reqres.in/api")

			_, err := api.LoadTestConfig()
			Expect(err).To(MatchError(ContainSubstring("must be an http or https URL")))
		})

		It("rejects non positive timeouts", func() {
			setenv("REQUEST_TIMEOUT", "0s")

			_, err := api.LoadTestConfig()
			Expect(err).To(MatchError(ContainSubstring("REQUEST_TIMEOUT must be positive")))
		})
	})
})
