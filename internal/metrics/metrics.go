// Copyright 2024 The bowline Authors
// This file is part of bowline.
//
// bowline is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// bowline is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with bowline. If not, see <http://www.gnu.org/licenses/>.

// Package metrics exposes the resolved resource envelope as Prometheus
// gauges, so operators can see at a glance which limits a running instance
// was planned against and whether startup had to degrade them.
package metrics

import (
	"net/http"

	"github.com/bowline-proxy/bowline/common/fdlimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	maxconnGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bowline",
		Subsystem: "limits",
		Name:      "maxconn",
		Help:      "Planned ceiling on concurrently relayed connections.",
	})
	maxpipesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bowline",
		Subsystem: "limits",
		Name:      "maxpipes",
		Help:      "Planned ceiling on concurrently open splice pipes.",
	})
	maxsockGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bowline",
		Subsystem: "limits",
		Name:      "maxsock",
		Help:      "Descriptor budget required by the planned envelope.",
	})
	fdSoftGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bowline",
		Subsystem: "limits",
		Name:      "fd_soft",
		Help:      "Effective soft descriptor limit after startup.",
	})
	fdHardGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bowline",
		Subsystem: "limits",
		Name:      "fd_hard",
		Help:      "Hard descriptor limit observed after startup.",
	})
	degradedGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "bowline",
		Subsystem: "limits",
		Name:      "degraded",
		Help:      "1 when startup had to shrink the envelope below the ideal plan.",
	})
)

// RecordPlan publishes the resolved envelope. Unlimited descriptor limits
// are skipped rather than exported as a meaningless huge number.
func RecordPlan(maxconn, maxpipes, maxsock int, effective fdlimit.Limits, degraded bool) {
	maxconnGauge.Set(float64(maxconn))
	maxpipesGauge.Set(float64(maxpipes))
	maxsockGauge.Set(float64(maxsock))
	if effective.Cur != fdlimit.Unlimited {
		fdSoftGauge.Set(float64(effective.Cur))
	}
	if effective.Max != fdlimit.Unlimited {
		fdHardGauge.Set(float64(effective.Max))
	}
	if degraded {
		degradedGauge.Set(1)
	} else {
		degradedGauge.Set(0)
	}
}

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
