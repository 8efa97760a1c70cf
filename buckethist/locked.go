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

import "sync"

// LockedHistogram is a Histogram behind a mutex, safe for concurrent use by
// any number of goroutines. Every operation takes the lock, including the
// read accessors; when a caller needs more than one of Count, Sum and
// Buckets from the same state, Snapshot returns all three consistently in
// one critical section.
//
// For write-heavy multi-goroutine use, per-goroutine Histogram clones merged
// on demand avoid the contention of a shared lock.
type LockedHistogram struct {
	mtx sync.Mutex
	h   *Histogram
}

// NewLockedHistogram is NewHistogram with the returned histogram wrapped in
// a mutex. The bounds contract is the same, including ErrEmptyBounds.
func NewLockedHistogram(bounds []uint64) (*LockedHistogram, error) {
	h, err := NewHistogram(bounds)
	if err != nil {
		return nil, err
	}
	return &LockedHistogram{h: h}, nil
}

// MustNewLockedHistogram is a version of NewLockedHistogram that panics
// where NewLockedHistogram would have returned an error.
func MustNewLockedHistogram(bounds []uint64) *LockedHistogram {
	l, err := NewLockedHistogram(bounds)
	if err != nil {
		panic(err)
	}
	return l
}

// Record adds a single sample. See Histogram.Record.
func (l *LockedHistogram) Record(sample uint64) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.h.Record(sample)
}

// RecordMany adds a batch of samples. See Histogram.RecordMany. The whole
// batch is applied in one critical section, so no reader observes a
// partially recorded batch.
func (l *LockedHistogram) RecordMany(samples []uint64) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	l.h.RecordMany(samples)
}

// Count returns the number of recorded samples.
func (l *LockedHistogram) Count() uint64 {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.h.Count()
}

// Sum returns the sum of all recorded samples.
func (l *LockedHistogram) Sum() uint64 {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.h.Sum()
}

// Buckets returns a copy of the bound/count pairs in construction order.
func (l *LockedHistogram) Buckets() []Bucket {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.h.Buckets()
}

// Snapshot returns the totals and bucket counts from one consistent state.
func (l *LockedHistogram) Snapshot() Snapshot {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.h.Snapshot()
}
