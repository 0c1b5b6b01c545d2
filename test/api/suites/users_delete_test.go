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

package suites

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/unikorn-cloud/users-acceptance/test/api"
)

var _ = Describe("Deleting Users", func() {
	Context("When deleting a user that exists", func() {
		It("should succeed with no content", func() {
			// When: I delete user 2
			resp, err := client.DeleteUser(ctx, 2)
			Expect(err).NotTo(HaveOccurred())

			// Then: The deletion should succeed with 204 No Content
			Expect(resp).To(api.HaveStatus(http.StatusNoContent))
		})
	})

	Context("When deleting a user that does not exist", func() {
		DescribeTable("should succeed exactly as a real deletion does",
			func(userID int) {
				// Given: A user id that was never issued
				// When: I delete it
				resp, err := client.DeleteUser(ctx, userID)
				Expect(err).NotTo(HaveOccurred())

				// Then: The service does not distinguish a no-op delete and returns 204, never 404
				Expect(resp).To(api.HaveStatus(http.StatusNoContent))
			},
			userEntries(api.MissingUserIDs),
		)
	})
})
