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

// Package promexport exposes buckethist histograms as Prometheus histogram
// metrics. A Collector polls a histogram for a snapshot on every scrape and
// reports it as a single const histogram, so recording stays free of any
// registry coupling.
//
// Bounds and the sample sum are projected to float64 for the exposition.
// Integer values above 2^53 are not exactly representable there; the
// histogram itself is unaffected.
package promexport

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/promutil/buckethist"
)

// Source is the part of a histogram a Collector reads. It is implemented by
// both *buckethist.Histogram and *buckethist.LockedHistogram. With a plain
// Histogram the caller must make sure nothing records while the registry
// gathers; a LockedHistogram needs no such care.
type Source interface {
	Snapshot() buckethist.Snapshot
}

// CollectorOpts bundles the options for creating a Collector. Name is
// mandatory, the rest can be left at their zero value. Namespace, Subsystem
// and Name are joined with underscores to the full metric name.
type CollectorOpts struct {
	Namespace string
	Subsystem string
	Name      string
	Help      string

	// ConstLabels are attached to every exposition of the histogram.
	ConstLabels prometheus.Labels
}

// Collector reads one histogram and implements prometheus.Collector.
type Collector struct {
	src  Source
	desc *prometheus.Desc
}

// NewCollector returns a Collector exposing src under the name assembled
// from opts. It errors if src is nil or opts has no Name.
func NewCollector(opts CollectorOpts, src Source) (*Collector, error) {
	if src == nil {
		return nil, errors.New("missing histogram source")
	}
	if opts.Name == "" {
		return nil, errors.New("missing metric name")
	}
	return &Collector{
		src: src,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(opts.Namespace, opts.Subsystem, opts.Name),
			opts.Help,
			nil,
			opts.ConstLabels,
		),
	}, nil
}

// MustNewCollector is a version of NewCollector that panics where
// NewCollector would have returned an error.
func MustNewCollector(opts CollectorOpts, src Source) *Collector {
	c, err := NewCollector(opts, src)
	if err != nil {
		panic(err)
	}
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector. It takes one snapshot per scrape.
// The snapshot's cumulative bucket counts map directly onto Prometheus 'le'
// buckets; the +Inf bucket of the exposition is the total count, which the
// encoder fills in. A snapshot whose bounds are not strictly ascending
// cannot be a Prometheus histogram and is reported to the registry as an
// invalid metric instead.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.src.Snapshot()

	bounds := make([]uint64, len(snap.Buckets))
	for i, b := range snap.Buckets {
		bounds[i] = b.UpperBound
	}
	if err := buckethist.ValidateBounds(bounds); err != nil {
		ch <- prometheus.NewInvalidMetric(c.desc, err)
		return
	}

	buckets := make(map[float64]uint64, len(snap.Buckets))
	for _, b := range snap.Buckets {
		buckets[float64(b.UpperBound)] = b.Count
	}
	ch <- prometheus.MustNewConstHistogram(c.desc, snap.Count, float64(snap.Sum), buckets)
}
