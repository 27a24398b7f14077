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


// Package identity resolves which source records describe the same person.
//
// Sources are ordered lists of (name, text) pairs. The first source seeds an
// Accumulator and owns the canonical spelling of every name it contains; each
// later source either appends to an existing person (matched through a
// KeyStrategy) or introduces a new one under its own spelling.
//
// The default strategy, FirstTwoTokens, compares the first two whitespace
// tokens of a name. It will misjoin or fail to join names with middle names,
// suffixes or reordered tokens; NormalizedFullName and KeyFunc exist so a
// stricter rule can be substituted without touching the merge algorithm.
package identity
