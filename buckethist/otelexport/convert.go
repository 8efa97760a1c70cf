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

// Package otelexport converts buckethist snapshots into OpenTelemetry
// explicit-bucket histogram data. OTel histograms carry non-cumulative
// bucket counts with a trailing overflow bucket, so the conversion
// differences the cumulative counts and derives the overflow bucket from
// the total count.
package otelexport

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/promutil/buckethist"
)

// ErrNotCumulative is returned when a snapshot's bucket counts decrease
// from one bucket to the next, or its total count is below the last bucket.
// Snapshots taken from a histogram with ascending bounds never trigger it.
var ErrNotCumulative = errors.New("bucket counts are not cumulative")

// DataPoint converts one snapshot into an OTel histogram data point.
// startTime is when the histogram began accumulating, now is when the
// snapshot was taken. Bounds become the OTel explicit bounds; the bucket
// counts are differenced into one count per bound plus the overflow bucket
// for samples above all bounds, inverting the cumulative form.
//
// The sample sum is projected into N. An int64 data point pins a sum beyond
// math.MaxInt64 there; a float64 data point keeps the magnitude but loses
// integer precision above 2^53.
//
// The snapshot's bounds must be strictly ascending and its counts
// cumulative; anything else cannot be represented and returns an error.
func DataPoint[N float64 | int64](
	snap buckethist.Snapshot, startTime, now time.Time, attrs ...attribute.KeyValue,
) (metricdata.HistogramDataPoint[N], error) {
	bounds := make([]uint64, len(snap.Buckets))
	for i, b := range snap.Buckets {
		bounds[i] = b.UpperBound
	}
	if err := buckethist.ValidateBounds(bounds); err != nil {
		return metricdata.HistogramDataPoint[N]{}, err
	}

	outBounds := make([]float64, len(snap.Buckets))
	counts := make([]uint64, len(snap.Buckets)+1)
	var prev uint64
	for i, b := range snap.Buckets {
		if b.Count < prev {
			return metricdata.HistogramDataPoint[N]{}, fmt.Errorf(
				"%w: bucket %d count %d below preceding count %d", ErrNotCumulative, i, b.Count, prev)
		}
		outBounds[i] = float64(b.UpperBound)
		counts[i] = b.Count - prev
		prev = b.Count
	}
	if snap.Count < prev {
		return metricdata.HistogramDataPoint[N]{}, fmt.Errorf(
			"%w: total count %d below last bucket count %d", ErrNotCumulative, snap.Count, prev)
	}
	counts[len(counts)-1] = snap.Count - prev

	var sum N
	switch p := any(&sum).(type) {
	case *int64:
		if snap.Sum > math.MaxInt64 {
			*p = math.MaxInt64
		} else {
			*p = int64(snap.Sum)
		}
	case *float64:
		*p = float64(snap.Sum)
	}

	return metricdata.HistogramDataPoint[N]{
		Attributes:   attribute.NewSet(attrs...),
		StartTime:    startTime,
		Time:         now,
		Count:        snap.Count,
		Bounds:       outBounds,
		BucketCounts: counts,
		Sum:          sum,
	}, nil
}

// Histogram converts one snapshot into an OTel histogram with a single data
// point. The temporality is always cumulative: a snapshot carries every
// sample since the histogram was created, not a delta since the last read.
func Histogram[N float64 | int64](
	snap buckethist.Snapshot, startTime, now time.Time, attrs ...attribute.KeyValue,
) (metricdata.Histogram[N], error) {
	dp, err := DataPoint[N](snap, startTime, now, attrs...)
	if err != nil {
		return metricdata.Histogram[N]{}, err
	}
	return metricdata.Histogram[N]{
		DataPoints:  []metricdata.HistogramDataPoint[N]{dp},
		Temporality: metricdata.CumulativeTemporality,
	}, nil
}
