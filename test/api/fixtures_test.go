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
	"context"
	"encoding/json"
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo/v2" //nolint:revive
	. "github.com/onsi/gomega"    //nolint:revive
	"go.uber.org/mock/gomock"

	"github.com/unikorn-cloud/users-acceptance/test/api"
	"github.com/unikorn-cloud/users-acceptance/test/api/mock"
)

var _ = Describe("Fixtures", func() {
	Describe("UserPayloadBuilder", func() {
		It("defaults to a complete user", func() {
			Expect(api.NewUserPayload().Build()).To(Equal(map[string]interface{}{
				"email":      "jane.wattson@reqres.in",
				"first_name": "Jane",
				"last_name":  "Wattson",
				"avatar":     "https://reqres.in/img/faces/13-image.jpg",
			}))
		})

		It("builds partial payloads", func() {
			payload := api.NewUserPayload().Without("email", "avatar").Build()
			Expect(payload).To(HaveLen(2))
			Expect(payload).NotTo(HaveKey("email"))
		})

		It("builds update payloads carrying the id", func() {
			payload := api.NewUpdatePayload(2).Build()
			Expect(payload).To(HaveKeyWithValue("id", 2))
			Expect(payload).To(HaveKeyWithValue("first_name", "Janetta"))
			Expect(payload).To(HaveKeyWithValue("avatar", "https://reqres.in/img/faces/2-image.jpg"))
		})

		It("returns independent copies", func() {
			builder := api.NewUserPayload()
			first := builder.Build()
			first["email"] = "changed"

			Expect(builder.Build()).To(HaveKeyWithValue("email", "jane.wattson@reqres.in"))
		})

		It("generates unique emails", func() {
			first := api.NewUserPayload().WithUniqueEmail().Build()
			second := api.NewUserPayload().WithUniqueEmail().Build()

			Expect(first["email"]).To(MatchRegexp(`^test-[0-9a-f]{8}@reqres\.in$`))
			Expect(first["email"]).NotTo(Equal(second["email"]))
		})
	})

	Describe("verifiers", func() {
		record := func() map[string]interface{} {
			return map[string]interface{}{
				"id":         json.Number("2"),
				"email":      "janet.weaver@reqres.in",
				"first_name": "Janet",
				"last_name":  "Weaver",
				"avatar":     "https://reqres.in/img/faces/2-image.jpg",
			}
		}

		It("accepts complete records", func() {
			api.VerifyUserRecord(record())
			api.VerifyUserID(record(), 2)
		})

		It("rejects records with missing fields", func() {
			r := record()
			delete(r, "avatar")

			failures := InterceptGomegaFailures(func() {
				api.VerifyUserRecord(r)
			})
			Expect(failures).To(ContainElement(ContainSubstring("missing fields")))
		})

		It("rejects fractional ids", func() {
			r := record()
			r["id"] = json.Number("2.5")

			failures := InterceptGomegaFailures(func() {
				api.VerifyUserRecord(r)
			})
			Expect(failures).To(ContainElement(ContainSubstring("not an integer")))
		})

		It("rejects string fields holding other types", func() {
			r := record()
			r["email"] = json.Number("555")

			failures := InterceptGomegaFailures(func() {
				api.VerifyUserRecord(r)
			})
			Expect(failures).To(ContainElement(ContainSubstring("email")))
		})

		It("compares echoed values as JSON", func() {
			payload := api.NewInvalidTypesPayload().Build()

			echoed := map[string]interface{}{
				"email":      json.Number("555"),
				"first_name": []interface{}{"Jane", "Janet"},
				"last_name":  json.Number("12345"),
				"avatar":     []interface{}{json.Number("13")},
			}

			api.VerifyEcho(echoed, payload)

			echoed["last_name"] = "12345"

			failures := InterceptGomegaFailures(func() {
				api.VerifyEcho(echoed, payload)
			})
			Expect(failures).To(ContainElement(ContainSubstring("last_name")))
		})

		It("reports expected and actual status codes", func() {
			resp := &api.Response{
				StatusCode:  http.StatusNotFound,
				Body:        []byte(`{}`),
				TraceParent: "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01",
			}

			Expect(resp).To(api.HaveStatus(http.StatusNotFound))

			failures := InterceptGomegaFailures(func() {
				Expect(resp).To(api.HaveStatus(http.StatusOK))
			})
			Expect(failures).To(HaveLen(1))
			Expect(failures[0]).To(ContainSubstring("Expected status 200, got 404"))
			Expect(failures[0]).To(ContainSubstring("0af7651916cd43dd8448eb211c80319c"))
		})
	})

	Describe("CreateUserWithCleanup", func() {
		var (
			client *mock.MockUsersAPI
			ctx    context.Context
		)

		BeforeEach(func() {
			client = mock.NewMockUsersAPI(gomock.NewController(GinkgoT()))
			ctx = context.Background()
		})

		It("creates the user and deletes it afterwards", func() {
			payload := api.NewUserPayload().Build()

			created := &api.Response{
				StatusCode: http.StatusCreated,
				Object: map[string]interface{}{
					"email":     "jane.wattson@reqres.in",
					"id":        "101",
					"createdAt": "2026-10-19T10:00:00.000Z",
				},
			}

			client.EXPECT().CreateUser(ctx, payload).Return(created, nil)
			client.EXPECT().DeleteUser(ctx, 101).Return(&api.Response{StatusCode: http.StatusNoContent}, nil)

			user, userID := api.CreateUserWithCleanup(client, ctx, payload)
			Expect(userID).To(Equal("101"))
			Expect(user).To(HaveKeyWithValue("email", "jane.wattson@reqres.in"))
		})

		It("logs rather than fails when cleanup fails", func() {
			created := &api.Response{
				StatusCode: http.StatusCreated,
				Object: map[string]interface{}{
					"id":        json.Number("7"),
					"createdAt": "2026-10-19T10:00:00.000Z",
				},
			}

			client.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(created, nil)
			client.EXPECT().DeleteUser(gomock.Any(), 7).Return(nil, errors.New("connection reset"))

			_, userID := api.CreateUserWithCleanup(client, ctx, api.NewUserPayload().Build())
			Expect(userID).To(Equal("7"))
		})
	})
})
