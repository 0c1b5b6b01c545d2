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
	"encoding/json"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/unikorn-cloud/users-acceptance/test/api"

	"k8s.io/utils/ptr"
)

var _ = Describe("Listing Users", func() {
	Context("When listing all users", func() {
		It("should return a sequence of complete user records", func() {
			// When: I request the list of users
			resp, err := client.ListUsers(ctx, nil)
			Expect(err).NotTo(HaveOccurred())

			// Then: The request should succeed
			Expect(resp).To(api.HaveStatus(http.StatusOK))

			// And: The body should hold a data sequence of complete records
			users := api.VerifyUserList(resp)

			GinkgoWriter.Printf("Found %d users on the first page\n", len(users))
		})
	})

	Context("When paging through users", func() {
		It("should return the requested page", func() {
			// Given: A page past the first one
			// When: I request that page
			resp, err := client.ListUsers(ctx, &api.ListUsersOptions{Page: ptr.To(2)})
			Expect(err).NotTo(HaveOccurred())

			// Then: The page should be returned and echo its number
			Expect(resp).To(api.HaveStatus(http.StatusOK))
			Expect(resp.Object).To(HaveKeyWithValue("page", json.Number("2")))
			api.VerifyUserList(resp)
		})

		It("should return an empty sequence past the last page", func() {
			// Given: The number of pages from the first listing
			first, err := client.ListUsers(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(first).To(api.HaveStatus(http.StatusOK))
			Expect(first.Object).To(HaveKey("total_pages"))

			number, ok := first.Object["total_pages"].(json.Number)
			Expect(ok).To(BeTrue(), "total_pages %v (%T) is not a number", first.Object["total_pages"], first.Object["total_pages"])

			totalPages, err := number.Int64()
			Expect(err).NotTo(HaveOccurred())

			// When: I request the page after the last one
			resp, err := client.ListUsers(ctx, &api.ListUsersOptions{Page: ptr.To(int(totalPages) + 1)})
			Expect(err).NotTo(HaveOccurred())

			// Then: The request should still succeed with no users
			Expect(resp).To(api.HaveStatus(http.StatusOK))
			Expect(api.VerifyUserList(resp)).To(BeEmpty())
		})
	})
})
