/*
 * clipshare fetches media shared on Discord into a Plex library.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package metrics

import (
	"strconv"
	"time"

	"github.com/lucasduport/clipshare/pkg/flight"
	"github.com/prometheus/client_golang/prometheus"
)

var durationBuckets = []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800}

// Metrics are the bot's Prometheus collectors. It also implements
// flight.Observer.
type Metrics struct {
	flightRejected *prometheus.CounterVec
	flightActive   *prometheus.GaugeVec
	jobsTotal      *prometheus.CounterVec
	jobDuration    *prometheus.HistogramVec
}

var _ flight.Observer = (*Metrics)(nil)

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		flightRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clipshare_flight_rejected_total",
			Help: "Operations turned away because the same key was already running",
		}, []string{"kind"}),

		flightActive: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "clipshare_flight_active",
			Help: "Operations currently running",
		}, []string{"kind"}),

		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clipshare_jobs_total",
			Help: "Finished jobs",
		}, []string{"kind", "success"}),

		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clipshare_job_duration_seconds",
			Help:    "Job wall time in seconds",
			Buckets: durationBuckets,
		}, []string{"kind"}),
	}

	reg.MustRegister(m.flightRejected, m.flightActive, m.jobsTotal, m.jobDuration)
	return m
}

func (m *Metrics) Rejected(key flight.Key) { m.flightRejected.WithLabelValues(key.Kind).Inc() }
func (m *Metrics) Started(key flight.Key)  { m.flightActive.WithLabelValues(key.Kind).Inc() }
func (m *Metrics) Finished(key flight.Key) { m.flightActive.WithLabelValues(key.Kind).Dec() }

// JobDone records a finished job of the given kind.
func (m *Metrics) JobDone(kind string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.jobsTotal.WithLabelValues(kind, strconv.FormatBool(err == nil)).Inc()
	m.jobDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}
