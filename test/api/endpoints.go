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
	"net/url"

	"github.com/oapi-codegen/runtime"
)

// Endpoints contains all API endpoint patterns, relative to the base URL.
type Endpoints struct{}

// NewEndpoints creates a new Endpoints instance.
func NewEndpoints() *Endpoints {
	return &Endpoints{}
}

// ListUsersOptions are the optional query parameters of a user listing.
type ListUsersOptions struct {
	Page    *int
	PerPage *int
}

// Users is the collection endpoint, used for creation.
func (e *Endpoints) Users() string {
	return "/users"
}

// ListUsers is the collection endpoint with any pagination parameters applied.
func (e *Endpoints) ListUsers(options *ListUsersOptions) (string, error) {
	path := e.Users()

	if options == nil {
		return path, nil
	}

	query := url.Values{}

	if options.Page != nil {
		if err := addQueryParam(query, "page", *options.Page); err != nil {
			return "", err
		}
	}

	if options.PerPage != nil {
		if err := addQueryParam(query, "per_page", *options.PerPage); err != nil {
			return "", err
		}
	}

	if len(query) == 0 {
		return path, nil
	}

	return path + "?" + query.Encode(), nil
}

// User is the single resource endpoint for get, update and delete.
func (e *Endpoints) User(userID int) (string, error) {
	param, err := runtime.StyleParamWithLocation("simple", false, "id", runtime.ParamLocationPath, userID)
	if err != nil {
		return "", fmt.Errorf("styling user id: %w", err)
	}

	return fmt.Sprintf("/users/%s", param), nil
}

func addQueryParam(query url.Values, name string, value interface{}) error {
	fragment, err := runtime.StyleParamWithLocation("form", true, name, runtime.ParamLocationQuery, value)
	if err != nil {
		return fmt.Errorf("styling %s parameter: %w", name, err)
	}

	parsed, err := url.ParseQuery(fragment)
	if err != nil {
		return fmt.Errorf("parsing %s parameter: %w", name, err)
	}

	for k, v := range parsed {
		query[k] = append(query[k], v...)
	}

	return nil
}
