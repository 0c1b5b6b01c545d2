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

package openapi

import (
	"errors"
	"regexp"
	"strconv"
)

var ErrInvalidUserID = errors.New("invalid user id: must be a positive base 10 integer")

var userIDValidationRegex = regexp.MustCompile("^[1-9][0-9]{0,17}$")

// UserID is the {id} path parameter of the users resource.
type UserID struct {
	Value int
}

func (u *UserID) UnmarshalText(text []byte) error {
	if !userIDValidationRegex.Match(text) {
		return ErrInvalidUserID
	}

	value, err := strconv.Atoi(string(text))
	if err != nil {
		return ErrInvalidUserID
	}

	*u = UserID{
		Value: value,
	}

	return nil
}

func (u UserID) MarshalText() ([]byte, error) {
	return []byte(strconv.Itoa(u.Value)), nil
}
