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


// Package search turns a research query into an explained, ranked list of
// researchers.
//
// The Searcher retrieves the passages most similar to the query, keeps the
// best passage per person, and asks the generator to explain each match. The
// Filter then makes a second generation pass over the whole report and keeps
// only the researchers whose expertise meaningfully aligns with the query.
// The Filter never rewrites entries: its output is a subset of its input,
// copied verbatim.
//
// Generation is non-deterministic and is never retried here. Any backend
// failure aborts the request and no partial report is returned.
package search
