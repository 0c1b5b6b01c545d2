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

// Package openapi holds the machine readable description of the users API as it
// is observed on the wire, lenient behaviour included.
package openapi

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed users.yaml
var spec []byte

// Spec returns the raw OpenAPI document.
func Spec() []byte {
	return spec
}

// Load parses and validates the OpenAPI document. Each call returns a fresh
// copy so callers are free to rewrite servers.
func Load(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("loading users openapi document: %w", err)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validating users openapi document: %w", err)
	}

	return doc, nil
}

// LoadForServer loads the document and points its servers at baseURL, so routes
// resolve against whatever deployment is under test.
func LoadForServer(ctx context.Context, baseURL string) (*openapi3.T, error) {
	doc, err := Load(ctx)
	if err != nil {
		return nil, err
	}

	doc.Servers = openapi3.Servers{
		&openapi3.Server{
			URL: baseURL,
		},
	}

	return doc, nil
}
