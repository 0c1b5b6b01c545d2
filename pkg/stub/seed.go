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

package stub

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seed []byte

// User is a stored user record.
type User struct {
	ID        int    `json:"id" yaml:"id"`
	Email     string `json:"email" yaml:"email"`
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
	Avatar    string `json:"avatar" yaml:"avatar"`
}

type seedData struct {
	Users []User `yaml:"users"`
}

// SeedUsers returns the fixed set of users the stub serves.
func SeedUsers() ([]User, error) {
	var data seedData

	if err := yaml.Unmarshal(seed, &data); err != nil {
		return nil, fmt.Errorf("parsing seed users: %w", err)
	}

	return data.Users, nil
}
