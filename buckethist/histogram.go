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
	"errors"
	"math"
	"math/bits"
)

// ErrEmptyBounds is returned when a histogram is constructed without any
// bucket bounds.
var ErrEmptyBounds = errors.New("histogram needs at least one bucket bound")

// ErrIncompatibleBounds is returned by Merge when the two histograms do not
// share the same bucket bounds.
var ErrIncompatibleBounds = errors.New("histograms have different bucket bounds")

// A Bucket is one bound/count pair of a histogram snapshot. Count is the
// number of recorded samples less than or equal to UpperBound.
type Bucket struct {
	UpperBound uint64
	Count      uint64
}

// A Snapshot is a self-consistent copy of the observable state of a
// histogram: the total sample count, the sample sum, and the per-bucket
// cumulative counts in construction order. It shares no memory with the
// histogram it was taken from.
type Snapshot struct {
	Count   uint64
	Sum     uint64
	Buckets []Bucket
}

// Histogram counts uint64 samples in buckets with fixed upper bounds. A
// bucket with bound ub counts every recorded sample <= ub, so with ascending
// bounds each bucket contains all of its predecessors. Samples above the
// largest bound appear in Count and Sum but in no bucket.
//
// The zero value is not usable; use NewHistogram or MustNewHistogram. A
// Histogram is not safe for concurrent use, see LockedHistogram.
type Histogram struct {
	// bounds is the caller-provided slice, retained as is. It is never
	// sorted, deduplicated or written to.
	bounds  []uint64
	buckets []uint64

	count uint64
	sum   uint64
}

// NewHistogram returns a histogram with one bucket per element of bounds,
// all counters zero. The bounds slice is retained, not copied; the caller
// must not mutate it afterwards. Bounds are used in the given order and are
// expected to be in strictly ascending order, which NewHistogram does not
// enforce (use ValidateBounds for an explicit check). The only error
// condition is an empty bounds slice, reported as ErrEmptyBounds.
func NewHistogram(bounds []uint64) (*Histogram, error) {
	if len(bounds) == 0 {
		return nil, ErrEmptyBounds
	}
	return &Histogram{
		bounds:  bounds,
		buckets: make([]uint64, len(bounds)),
	}, nil
}

// MustNewHistogram is a version of NewHistogram that panics where
// NewHistogram would have returned an error.
func MustNewHistogram(bounds []uint64) *Histogram {
	h, err := NewHistogram(bounds)
	if err != nil {
		panic(err)
	}
	return h
}

// Record adds a single sample: the sum grows by the sample, the total count
// by one, and every bucket whose bound is at least the sample by one. A
// sample above all bounds changes the totals only.
func (h *Histogram) Record(sample uint64) {
	h.sum = satAdd(h.sum, sample)
	h.count = satAdd(h.count, 1)
	for i, ub := range h.bounds {
		if sample <= ub {
			h.buckets[i] = satAdd(h.buckets[i], 1)
		}
	}
}

// RecordMany adds a batch of samples with the same observable effect as
// calling Record for each element, in any order. An empty batch is a no-op.
//
// Instead of walking the bucket tail once per sample, RecordMany counts each
// sample in the first bucket whose bound admits it and cumulates the scratch
// counts in a single pass before merging, so every persistent counter is
// written once per batch. The equivalence with repeated Record holds for
// ascending bounds; see ValidateBounds.
func (h *Histogram) RecordMany(samples []uint64) {
	if len(samples) == 0 {
		return
	}

	var (
		scratch = make([]uint64, len(h.bounds))
		count   uint64
		sum     uint64
	)
	for _, sample := range samples {
		sum = satAdd(sum, sample)
		count = satAdd(count, 1)
		for i, ub := range h.bounds {
			if sample <= ub {
				scratch[i] = satAdd(scratch[i], 1)
				break
			}
		}
	}

	for i := 0; i+1 < len(scratch); i++ {
		scratch[i+1] = satAdd(scratch[i+1], scratch[i])
	}

	for i, n := range scratch {
		h.buckets[i] = satAdd(h.buckets[i], n)
	}
	h.count = satAdd(h.count, count)
	h.sum = satAdd(h.sum, sum)
}

// Count returns the number of recorded samples.
func (h *Histogram) Count() uint64 {
	return h.count
}

// Sum returns the sum of all recorded samples.
func (h *Histogram) Sum() uint64 {
	return h.sum
}

// Buckets returns the bound/count pairs in construction order. The returned
// slice is a fresh copy on every call and may be kept or modified freely.
func (h *Histogram) Buckets() []Bucket {
	buckets := make([]Bucket, len(h.bounds))
	for i, ub := range h.bounds {
		buckets[i] = Bucket{UpperBound: ub, Count: h.buckets[i]}
	}
	return buckets
}

// Snapshot returns the totals and the bucket counts as one value.
func (h *Histogram) Snapshot() Snapshot {
	return Snapshot{
		Count:   h.count,
		Sum:     h.sum,
		Buckets: h.Buckets(),
	}
}

// Clone returns a histogram with the same bounds and a copy of the current
// counters. The bounds slice is shared between the two histograms; the
// counters are independent. Typical use is one clone per worker goroutine,
// merged back with Merge.
func (h *Histogram) Clone() *Histogram {
	c := &Histogram{
		bounds:  h.bounds,
		buckets: make([]uint64, len(h.buckets)),
		count:   h.count,
		sum:     h.sum,
	}
	copy(c.buckets, h.buckets)
	return c
}

// Merge adds the counters of other into h. Both histograms must have been
// created with element-wise identical bounds; Merge never re-buckets.
// Otherwise it returns ErrIncompatibleBounds and leaves h unchanged. The
// other histogram is read only.
func (h *Histogram) Merge(other *Histogram) error {
	if len(other.bounds) != len(h.bounds) {
		return ErrIncompatibleBounds
	}
	for i, ub := range h.bounds {
		if other.bounds[i] != ub {
			return ErrIncompatibleBounds
		}
	}
	for i, n := range other.buckets {
		h.buckets[i] = satAdd(h.buckets[i], n)
	}
	h.count = satAdd(h.count, other.count)
	h.sum = satAdd(h.sum, other.sum)
	return nil
}

// satAdd adds two counters, sticking at math.MaxUint64 on overflow. A
// saturated sum of non-negative terms comes out the same for any grouping of
// the additions, which keeps RecordMany and repeated Record identical even
// once a counter has pinned.
func satAdd(a, b uint64) uint64 {
	s, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return s
}
