package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billsync_session_connects_total",
		Help: "Session connection attempts by result (ok, token_error, dial_error, handshake_error, lost_race).",
	}, []string{"result"})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billsync_session_events_total",
		Help: "Inbound session events by outcome (applied, ignored, stale_discard).",
	}, []string{"outcome"})

	commandsQueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "billsync_session_commands_queued_total",
		Help: "Mutation commands deferred until the connection was ready.",
	})

	commandsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "billsync_session_commands_sent_total",
		Help: "Mutation commands written to the session channel, by method.",
	}, []string{"method"})

	connectionState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "billsync_session_connection_state",
		Help: "Current connection state (0 idle, 1 connecting, 2 handshake, 3 ready, 4 closing, 5 closed).",
	})
)
