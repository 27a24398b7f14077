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


// Package storage provides the storage abstraction for the embedding cache.
//
// Embedding every passage on each start is the slowest part of bringing an
// index up. A VectorCache remembers vectors by a content hash of the embedding
// model and passage text, so unchanged passages are not sent to the backend
// again. The cache is an optimisation only; losing it costs time, not data.
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.VectorCache interface:
//
//	cache, err := badger.OpenVectorCache(dir)  // returns storage.VectorCache
//
// Internal constructors (newVectorCache) may return concrete types since they
// are only used within the implementation package.
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	cache, err := badger.NewMemoryVectorCache()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cache.Close()
//
// # Thread Safety
//
// All implementations must be thread-safe.
package storage
