// Package metrics holds the Prometheus instruments of the staging module.
// All collectors are registered with the global registry in init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	TasksLogged = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relstage_tasks_logged_total",
			Help: "Staging tasks built by the module, by task type.",
		}, []string{"type"})

	SynchronizationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relstage_synchronizations_created_total",
			Help: "Task-server synchronization records created.",
		})

	SynchronizationErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relstage_synchronization_errors_total",
			Help: "Synchronization records that could not be created during fan-out.",
		})

	TasksSuppressed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relstage_tasks_suppressed_total",
			Help: "Logged tasks discarded as echoes of a local deletion.",
		})

	BindingChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relstage_binding_changes_total",
			Help: "Bindings added or removed while reconciling inbound tasks.",
		}, []string{"op"})

	ReconcileErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relstage_reconcile_errors_total",
			Help: "Inbound binding payloads that could not be reconciled.",
		})

	TasksCleaned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relstage_tasks_cleaned_total",
			Help: "Staging tasks removed by the cleanup job.",
		})
)

func init() {
	prometheus.MustRegister(
		TasksLogged,
		SynchronizationsCreated,
		SynchronizationErrors,
		TasksSuppressed,
		BindingChanges,
		ReconcileErrors,
		TasksCleaned,
	)
}
