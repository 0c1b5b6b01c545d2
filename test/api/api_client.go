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

//nolint:err113,revive // dynamic errors and naming conventions acceptable in test code
package api

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/onsi/ginkgo/v2"
)

const (
	// apiKeyHeader carries the optional API key some deployments require.
	apiKeyHeader = "x-api-key"
)

//go:generate mockgen -destination=mock/users.go -package=mock github.com/unikorn-cloud/users-acceptance/test/api UsersAPI

// UsersAPI is the set of operations the users API offers.
type UsersAPI interface {
	ListUsers(ctx context.Context, options *ListUsersOptions) (*Response, error)
	GetUser(ctx context.Context, userID int) (*Response, error)
	CreateUser(ctx context.Context, payload map[string]interface{}) (*Response, error)
	UpdateUser(ctx context.Context, userID int, payload map[string]interface{}) (*Response, error)
	DeleteUser(ctx context.Context, userID int) (*Response, error)
}

// Response is a completed exchange. Status codes are never interpreted here,
// that is left to the caller so that quirky status codes can be asserted on.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	// Object is the decoded JSON body, nil when there is no JSON body.
	// Numbers are kept as json.Number.
	Object map[string]interface{}
	// TraceParent is the W3C trace context sent with the request.
	TraceParent string
}

// Data returns the "data" member as a single object.
func (r *Response) Data() (map[string]interface{}, error) {
	if r.Object == nil {
		return nil, errors.New("response has no JSON body")
	}

	value, ok := r.Object["data"]
	if !ok {
		return nil, errors.New("response has no data member")
	}

	data, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("data member is %T, not an object", value)
	}

	return data, nil
}

// DataList returns the "data" member as a sequence.
func (r *Response) DataList() ([]interface{}, error) {
	if r.Object == nil {
		return nil, errors.New("response has no JSON body")
	}

	value, ok := r.Object["data"]
	if !ok {
		return nil, errors.New("response has no data member")
	}

	data, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("data member is %T, not a sequence", value)
	}

	return data, nil
}

type APIClient struct {
	baseURL   string
	client    *http.Client
	apiKey    string
	config    *TestConfig
	endpoints *Endpoints
	validator *ContractValidator
}

var _ UsersAPI = (*APIClient)(nil)

// NewAPIClientWithConfig creates a client for the configured base URL.
func NewAPIClientWithConfig(config *TestConfig) (*APIClient, error) {
	baseURL := strings.TrimSuffix(config.BaseURL, "/")

	client := &APIClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: config.RequestTimeout,
		},
		apiKey:    config.APIKey,
		config:    config,
		endpoints: NewEndpoints(),
	}

	if config.ContractValidation {
		validator, err := NewContractValidator(context.Background(), baseURL)
		if err != nil {
			return nil, err
		}

		client.validator = validator
	}

	return client, nil
}

func (c *APIClient) SetAPIKey(key string) {
	c.apiKey = key
}

// BaseURL returns the URL all endpoints are relative to.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// logError logs a generic error with trace context.
func (c *APIClient) logError(method, path string, duration time.Duration, traceParent string, err error, context string) {
	ginkgo.GinkgoWriter.Printf("[%s %s] ERROR %s duration=%s traceparent=%s error=%v\n", method, path, context, duration, traceParent, err)
	c.logTraceContext(traceParent)
}

// logErrorWithStatus logs an error with HTTP status code.
func (c *APIClient) logErrorWithStatus(method, path string, duration time.Duration, statusCode int, traceParent string, err error, context string) {
	ginkgo.GinkgoWriter.Printf("[%s %s] ERROR %s duration=%s status=%d traceparent=%s error=%v\n", method, path, context, duration, statusCode, traceParent, err)
	c.logTraceContext(traceParent)
}

// logTraceContext logs the trace context information.
func (c *APIClient) logTraceContext(traceParent string) {
	ginkgo.GinkgoWriter.Printf("TRACE CONTEXT: Use trace ID '%s' to search logs for this request\n", extractTraceID(traceParent))
}

// randomHex returns n random bytes, hex encoded.
func randomHex(n int) string {
	bytes := make([]byte, n)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// createTraceParent creates a W3C traceparent header value with a fresh trace
// and span ID, so every request can be found in the server logs.
func createTraceParent() string {
	return fmt.Sprintf("00-%s-%s-01", randomHex(16), randomHex(8))
}

// extractTraceID extracts the trace ID from a traceparent header value.
func extractTraceID(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) >= 2 {
		return parts[1]
	}

	return traceParent
}

// jsonBody encodes a request payload.
func jsonBody(payload interface{}) (io.Reader, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	return bytes.NewReader(data), nil
}

// decodeObject decodes a JSON object keeping numbers as json.Number, so integer
// fields can be told apart from fractional ones.
func decodeObject(data []byte) (map[string]interface{}, error) {
	var object map[string]interface{}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	if err := decoder.Decode(&object); err != nil {
		return nil, err
	}

	return object, nil
}

func isJSON(header http.Header) bool {
	mediaType, _, err := mime.ParseMediaType(header.Get("Content-Type"))
	if err != nil {
		return false
	}

	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

//nolint:cyclop // test code complexity is acceptable
func (c *APIClient) doRequest(ctx context.Context, method, path string, body io.Reader) (*Response, error) {
	fullURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Add W3C Trace Context headers
	traceParent := createTraceParent()
	req.Header.Set("Traceparent", traceParent)
	req.Header.Set("Tracestate", "test-automation=ginkgo")
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	if c.config.DebugLogging {
		ginkgo.GinkgoWriter.Printf("[%s %s] sending url=%s traceparent=%s\n", method, path, fullURL, traceParent)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logError(method, path, duration, traceParent, err, "http request failed")
		return nil, fmt.Errorf("http request failed: %w", err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logErrorWithStatus(method, path, duration, resp.StatusCode, traceParent, err, "reading response body")
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.config.LogRequests {
		ginkgo.GinkgoWriter.Printf("[%s %s] status=%d duration=%s traceparent=%s\n", method, path, resp.StatusCode, duration, traceParent)
	}

	if c.config.LogResponses && len(respBody) > 0 {
		ginkgo.GinkgoWriter.Printf("[%s %s] response body: %s\n", method, path, string(respBody))
	}

	result := &Response{
		StatusCode:  resp.StatusCode,
		Header:      resp.Header,
		Body:        respBody,
		TraceParent: traceParent,
	}

	if len(bytes.TrimSpace(respBody)) > 0 && isJSON(resp.Header) {
		object, err := decodeObject(respBody)
		if err != nil {
			c.logErrorWithStatus(method, path, duration, resp.StatusCode, traceParent, err, "decoding response body")
			return result, fmt.Errorf("decoding response body: %w", err)
		}

		result.Object = object
	}

	if c.validator != nil {
		if err := c.validator.Validate(ctx, req, result); err != nil {
			c.logErrorWithStatus(method, path, duration, resp.StatusCode, traceParent, err, "contract validation")
			return result, fmt.Errorf("response violates contract: %w (trace ID: %s)", err, extractTraceID(traceParent))
		}
	}

	return result, nil
}

// ListUsers lists a page of users.
func (c *APIClient) ListUsers(ctx context.Context, options *ListUsersOptions) (*Response, error) {
	path, err := c.endpoints.ListUsers(options)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return resp, fmt.Errorf("listing users: %w", err)
	}

	return resp, nil
}

// GetUser reads a single user.
func (c *APIClient) GetUser(ctx context.Context, userID int) (*Response, error) {
	path, err := c.endpoints.User(userID)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return resp, fmt.Errorf("getting user %d: %w", userID, err)
	}

	return resp, nil
}

// CreateUser submits a new user. The payload is sent as is, so ill typed
// values can be submitted deliberately.
func (c *APIClient) CreateUser(ctx context.Context, payload map[string]interface{}) (*Response, error) {
	body, err := jsonBody(payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.endpoints.Users(), body)
	if err != nil {
		return resp, fmt.Errorf("creating user: %w", err)
	}

	return resp, nil
}

// UpdateUser replaces a user.
func (c *APIClient) UpdateUser(ctx context.Context, userID int, payload map[string]interface{}) (*Response, error) {
	path, err := c.endpoints.User(userID)
	if err != nil {
		return nil, err
	}

	body, err := jsonBody(payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPut, path, body)
	if err != nil {
		return resp, fmt.Errorf("updating user %d: %w", userID, err)
	}

	return resp, nil
}

// DeleteUser deletes a user.
func (c *APIClient) DeleteUser(ctx context.Context, userID int) (*Response, error) {
	path, err := c.endpoints.User(userID)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return resp, fmt.Errorf("deleting user %d: %w", userID, err)
	}

	return resp, nil
}
