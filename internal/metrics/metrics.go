// Package metrics exposes Prometheus instruments for the mimic core and transports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mimic_messages_recorded_total",
			Help: "Messages stored or reinforced in group memory",
		},
	)

	MessagesIgnored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mimic_messages_ignored_total",
			Help: "Inbound messages dropped by the filter",
		},
		[]string{"reason"},
	)

	EntriesEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mimic_entries_evicted_total",
			Help: "Entries evicted because a group hit its capacity",
		},
	)

	EntriesDecayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mimic_entries_decayed_total",
			Help: "Entries removed by decay sweeps",
		},
		[]string{"sweep"},
	)

	Replies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mimic_replies_total",
			Help: "Replies scheduled, by selection kind",
		},
		[]string{"kind"},
	)

	Sends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mimic_sends_total",
			Help: "Outbound sends by status",
		},
		[]string{"status"},
	)

	Groups = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mimic_groups",
			Help: "Groups with a memory",
		},
	)

	PendingSends = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mimic_pending_sends",
			Help: "Delayed replies waiting to be sent",
		},
	)
)
