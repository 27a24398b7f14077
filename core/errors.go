// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "errors"

// Domain validation errors
var (
	// ErrEmptyQuery indicates the query contains no words.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrQueryTooShort indicates the query has fewer words than required.
	ErrQueryTooShort = errors.New("query too short")

	// ErrEmptyName indicates a record has no name.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrInvalidProfile indicates a Profile failed validation.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrEmptyContent indicates the profile text is empty.
	ErrEmptyContent = errors.New("content cannot be empty")
)
