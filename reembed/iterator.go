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

package reembed

import (
	"context"
	"slices"
)

const (
	// DefaultBatchSize is the default number of items embedded per call
	DefaultBatchSize = 100
)

// forEachBatch calls fn with consecutive batches of at most size items.
// Iteration stops on first error from fn.
// Context cancellation is checked before every batch.
func forEachBatch(ctx context.Context, items []Item, size int, fn func([]Item) error) error {
	if size <= 0 {
		size = DefaultBatchSize
	}

	for batch := range slices.Chunk(items, size) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(batch); err != nil {
			return err
		}
	}
	return nil
}
