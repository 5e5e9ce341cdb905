// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommandsTotal counts handled text commands by command name.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groceriesbot_commands_total",
		Help: "Number of handled bot commands.",
	}, []string{"command"})

	// CallbacksTotal counts handled button-press callbacks by action.
	CallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groceriesbot_callbacks_total",
		Help: "Number of handled callback queries.",
	}, []string{"action"})

	// CommandErrorsTotal counts commands that ended in a handler error.
	CommandErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "groceriesbot_command_errors_total",
		Help: "Number of bot commands that failed.",
	}, []string{"command"})

	// StoreErrorsTotal counts persistence layer failures.
	StoreErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "groceriesbot_store_errors_total",
		Help: "Number of store failures surfaced to users.",
	})
)
