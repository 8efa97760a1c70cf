// Copyright 2024 The Prometheus Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package buckethist

import (
	"fmt"
	"math/bits"
)

// LinearBounds creates 'count' bounds, each 'width' apart, where the lowest
// bound is 'start'. The returned slice is meant to be passed to NewHistogram.
//
// The function panics if 'count' is zero or negative, if 'width' is zero, or
// if the progression does not fit in uint64.
func LinearBounds(start, width uint64, count int) []uint64 {
	if count < 1 {
		panic("LinearBounds needs a positive count")
	}
	if width == 0 {
		panic("LinearBounds needs a positive width")
	}
	bounds := make([]uint64, count)
	for i := range bounds {
		bounds[i] = start
		var carry uint64
		start, carry = bits.Add64(start, width, 0)
		if carry != 0 && i < count-1 {
			panic("LinearBounds overflows uint64")
		}
	}
	return bounds
}

// ExponentialBounds creates 'count' bounds, where the lowest bound is 'start'
// and each following bound is 'factor' times the previous one. The returned
// slice is meant to be passed to NewHistogram.
//
// The function panics if 'count' is zero or negative, if 'start' is zero, if
// 'factor' is less than 2, or if the progression does not fit in uint64.
func ExponentialBounds(start, factor uint64, count int) []uint64 {
	if count < 1 {
		panic("ExponentialBounds needs a positive count")
	}
	if start == 0 {
		panic("ExponentialBounds needs a positive start value")
	}
	if factor < 2 {
		panic("ExponentialBounds needs a factor of at least 2")
	}
	bounds := make([]uint64, count)
	for i := range bounds {
		bounds[i] = start
		hi, lo := bits.Mul64(start, factor)
		if hi != 0 && i < count-1 {
			panic("ExponentialBounds overflows uint64")
		}
		start = lo
	}
	return bounds
}

// ValidateBounds returns an error if bounds is empty or not in strictly
// ascending order. NewHistogram accepts any non-empty bounds, but the
// cumulative reading of the bucket counts and the batching in RecordMany
// assume ascending order; callers that take bounds from configuration should
// validate them once up front.
func ValidateBounds(bounds []uint64) error {
	if len(bounds) == 0 {
		return ErrEmptyBounds
	}
	for i := 1; i < len(bounds); i++ {
		if bounds[i] <= bounds[i-1] {
			return fmt.Errorf("bound %d (%d) is not above bound %d (%d)", i, bounds[i], i-1, bounds[i-1])
		}
	}
	return nil
}
