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

//nolint:revive,staticcheck // dot imports are standard for Ginkgo/Gomega test code
package api

import (
	"context"
	"encoding/json"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gcustom"
	"github.com/onsi/gomega/types"

	"k8s.io/apimachinery/pkg/util/sets"
)

var (
	// ExistingUserIDs are users the service always serves.
	//nolint:gochecknoglobals
	ExistingUserIDs = []int{1, 2, 3}

	// MissingUserIDs are never served, but may still be deleted.
	//nolint:gochecknoglobals
	MissingUserIDs = []int{9999, 10999, 336688}

	// MissingUpdateUserIDs are never served, but may still be updated.
	//nolint:gochecknoglobals
	MissingUpdateUserIDs = []int{9999, 10000, 12345}

	// UserRecordKeys must be present on every user record.
	//nolint:gochecknoglobals
	UserRecordKeys = sets.New("id", "email", "first_name", "last_name", "avatar")

	// UserStringKeys are the user record fields typed as strings.
	//nolint:gochecknoglobals
	UserStringKeys = sets.New("email", "first_name", "last_name", "avatar")
)

// UserPayloadBuilder builds user payloads for testing.
type UserPayloadBuilder struct {
	payload map[string]interface{}
}

// NewUserPayload creates a user payload builder with a complete, well typed user.
func NewUserPayload() *UserPayloadBuilder {
	return &UserPayloadBuilder{
		payload: map[string]interface{}{
			"email":      "jane.wattson@reqres.in",
			"first_name": "Jane",
			"last_name":  "Wattson",
			"avatar":     "https://reqres.in/img/faces/13-image.jpg",
		},
	}
}

// NewUpdatePayload creates a full replacement payload for an existing user.
func NewUpdatePayload(userID int) *UserPayloadBuilder {
	return NewUserPayload().
		WithID(userID).
		WithEmail("janetta.weaver@reqres.in").
		WithFirstName("Janetta").
		WithLastName("Weaverton").
		WithAvatar(fmt.Sprintf("https://reqres.in/img/faces/%d-image.jpg", userID))
}

// NewInvalidTypesPayload creates a payload whose string fields hold numbers and
// arrays. The service accepts it regardless.
func NewInvalidTypesPayload() *UserPayloadBuilder {
	return NewUserPayload().
		WithEmail(555).
		WithFirstName([]string{"Jane", "Janet"}).
		WithLastName(12345).
		WithAvatar([]int{13})
}

// WithID sets the id field.
func (b *UserPayloadBuilder) WithID(id interface{}) *UserPayloadBuilder {
	b.payload["id"] = id
	return b
}

// WithEmail sets the email, any type is allowed.
func (b *UserPayloadBuilder) WithEmail(email interface{}) *UserPayloadBuilder {
	b.payload["email"] = email
	return b
}

// WithUniqueEmail sets an email address no other test run will use.
func (b *UserPayloadBuilder) WithUniqueEmail() *UserPayloadBuilder {
	b.payload["email"] = fmt.Sprintf("%s@reqres.in", GenerateTestID())
	return b
}

// WithFirstName sets the first name, any type is allowed.
func (b *UserPayloadBuilder) WithFirstName(name interface{}) *UserPayloadBuilder {
	b.payload["first_name"] = name
	return b
}

// WithLastName sets the last name, any type is allowed.
func (b *UserPayloadBuilder) WithLastName(name interface{}) *UserPayloadBuilder {
	b.payload["last_name"] = name
	return b
}

// WithAvatar sets the avatar URL, any type is allowed.
func (b *UserPayloadBuilder) WithAvatar(avatar interface{}) *UserPayloadBuilder {
	b.payload["avatar"] = avatar
	return b
}

// Without removes fields, for partial payloads.
func (b *UserPayloadBuilder) Without(keys ...string) *UserPayloadBuilder {
	for _, key := range keys {
		delete(b.payload, key)
	}

	return b
}

// Build returns a copy of the completed payload.
func (b *UserPayloadBuilder) Build() map[string]interface{} {
	payload := make(map[string]interface{}, len(b.payload))

	for k, v := range b.payload {
		payload[k] = v
	}

	return payload
}

// HaveStatus succeeds when a *Response has the given status code. Failures
// report the body and trace ID alongside expected and actual codes.
func HaveStatus(expected int) types.GomegaMatcher {
	return gcustom.MakeMatcher(func(resp *Response) (bool, error) {
		if resp == nil {
			return false, fmt.Errorf("expected a response with status %d, got nil", expected)
		}

		return resp.StatusCode == expected, nil
	}).WithTemplate("Expected status {{.Data}}, got {{.Actual.StatusCode}}\nbody: {{printf \"%s\" .Actual.Body}}\ntraceparent: {{.Actual.TraceParent}}", expected)
}

// VerifyUserRecord verifies a user record carries every field with the right
// type. The id must be an integer.
func VerifyUserRecord(record map[string]interface{}) {
	missing := UserRecordKeys.Difference(sets.KeySet(record))
	Expect(sets.List(missing)).To(BeEmpty(), "user record %v is missing fields", record)

	id, ok := record["id"].(json.Number)
	Expect(ok).To(BeTrue(), "user id %v (%T) is not a number", record["id"], record["id"])

	_, err := id.Int64()
	Expect(err).NotTo(HaveOccurred(), "user id %s is not an integer", id)

	for _, key := range sets.List(UserStringKeys) {
		Expect(record[key]).To(BeAssignableToTypeOf(""), "user field %s is %T, not a string", key, record[key])
	}
}

// VerifyUserID verifies a user record has the expected integer id.
func VerifyUserID(record map[string]interface{}, expectedID int) {
	Expect(record).To(HaveKey("id"))

	id, ok := record["id"].(json.Number)
	Expect(ok).To(BeTrue(), "user id %v (%T) is not a number", record["id"], record["id"])

	value, err := id.Int64()
	Expect(err).NotTo(HaveOccurred())
	Expect(value).To(Equal(int64(expectedID)))
}

// VerifyUserList verifies a listing has a data sequence and that every user in
// it is a complete record. It returns the sequence.
func VerifyUserList(resp *Response) []interface{} {
	Expect(resp.Object).To(HaveKey("data"))

	data, err := resp.DataList()
	Expect(err).NotTo(HaveOccurred())

	for _, item := range data {
		record, ok := item.(map[string]interface{})
		Expect(ok).To(BeTrue(), "list item %v (%T) is not an object", item, item)

		VerifyUserRecord(record)
	}

	return data
}

// VerifyEcho verifies every payload field is echoed verbatim. Values are
// compared as JSON so numbers and arrays match whatever was sent.
func VerifyEcho(object, payload map[string]interface{}) {
	for key, sent := range payload {
		Expect(object).To(HaveKey(key), "field %s was not echoed", key)

		expected, err := json.Marshal(sent)
		Expect(err).NotTo(HaveOccurred())

		actual, err := json.Marshal(object[key])
		Expect(err).NotTo(HaveOccurred())

		Expect(actual).To(MatchJSON(expected), "field %s was not echoed verbatim", key)
	}
}

// VerifyGeneratedFields verifies a created user carries a generated id and a
// creation time.
func VerifyGeneratedFields(object map[string]interface{}) {
	Expect(object).To(HaveKey("id"))
	Expect(object["id"]).NotTo(BeZero())
	Expect(object).To(HaveKeyWithValue("createdAt", Not(BeEmpty())))
}

// CreateUserWithCleanup creates a user, expects it to succeed and schedules its
// deletion. The service does not persist users, so cleanup failures are only
// logged.
func CreateUserWithCleanup(client UsersAPI, ctx context.Context, payload map[string]interface{}) (map[string]interface{}, string) {
	resp, err := client.CreateUser(ctx, payload)
	Expect(err).NotTo(HaveOccurred())
	Expect(resp).To(HaveStatus(201))

	VerifyGeneratedFields(resp.Object)

	userID := fmt.Sprint(resp.Object["id"])

	GinkgoWriter.Printf("Created user with ID: %s\n", userID)

	DeferCleanup(func() {
		var id int
		if _, err := fmt.Sscan(userID, &id); err != nil {
			GinkgoWriter.Printf("Warning: not deleting user with non numeric ID %s\n", userID)
			return
		}

		GinkgoWriter.Printf("Cleaning up user: %s\n", userID)

		resp, err := client.DeleteUser(ctx, id)
		if err != nil {
			GinkgoWriter.Printf("Warning: Failed to delete user %s: %v\n", userID, err)
			return
		}

		GinkgoWriter.Printf("Deleted user %s with status %d\n", userID, resp.StatusCode)
	})

	return resp.Object, userID
}
