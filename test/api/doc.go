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

// Package api provides acceptance test utilities for the users API.
//
// # Separate Client Implementation
//
// The harness talks to the API through its own small client (APIClient) rather
// than a generated one. Every response is handed back with its raw status code
// and body, because the behaviour worth pinning is exactly the part a generated
// client would hide:
//
//   - creates accept string fields holding numbers or arrays, and echo them
//   - updates of users that do not exist succeed and echo the payload
//   - deletes succeed whether or not the user exists
//
// Responses are additionally validated against the OpenAPI document in
// pkg/openapi when CONTRACT_VALIDATION is enabled, which is the default.
//
// # Configuration
//
// Configuration is read from the environment, optionally seeded from a .env file
// at the repository root. See TestConfig for the variables. Setting
// USE_STUB_API=true runs the suites against the in-process stub in pkg/stub
// rather than the public deployment.
package api
