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

// Package buckethist provides a cumulative histogram over unsigned integer
// samples with a fixed set of bucket bounds.
//
// A Histogram is created from a non-empty sequence of upper bounds. Each
// bucket counts the samples that are less than or equal to its bound, so for
// ascending bounds the counts form a cumulative staircase: a sample of 7
// recorded against bounds 10, 25, 100 increments all three buckets. The
// histogram additionally tracks the total number and the sum of all recorded
// samples, including samples above the largest bound, which are visible in
// the totals only. This is the bucket convention of a Prometheus histogram,
// restricted to uint64 samples and without the implicit +Inf bucket.
//
// Samples are recorded one at a time with Record or in batches with
// RecordMany. The two are externally indistinguishable; RecordMany classifies
// each sample into a single bucket first and restores the cumulative counts
// in one pass at the end, touching each persistent counter once per batch.
//
//	h := buckethist.MustNewHistogram(buckethist.LinearBounds(100, 100, 10))
//	h.Record(250)
//	h.RecordMany(latencies)
//	fmt.Println(h.Count(), h.Sum())
//
// A Histogram is not safe for concurrent use. Either confine it to a single
// goroutine and ship Snapshot values across, aggregate per-worker clones with
// Merge, or wrap it in a LockedHistogram. Exporters poll the accumulated
// state through Buckets, Sum and Count or atomically through Snapshot; the
// promexport and otelexport subpackages adapt snapshots to the Prometheus and
// OpenTelemetry data models.
//
// All counters saturate at math.MaxUint64 instead of wrapping around, so an
// overflowing histogram stays monotone and pins at the maximum rather than
// resetting.
package buckethist
