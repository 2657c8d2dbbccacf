// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records the service's Prometheus metrics.
type Collector struct {
	registry *prometheus.Registry

	signIns           *prometheus.CounterVec
	tasksCreated      prometheus.Counter
	tasksDeleted      prometheus.Counter
	statusTransitions prometheus.Counter
	partnerRemovals   prometheus.Counter
	forbidden         prometheus.Counter
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "taskdeck_sign_ins_total",
			Help: "Sign-in attempts by outcome.",
		}, []string{"outcome"}),
		tasksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskdeck_tasks_created_total",
			Help: "Tasks created.",
		}),
		tasksDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskdeck_tasks_deleted_total",
			Help: "Tasks deleted.",
		}),
		statusTransitions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskdeck_status_transitions_total",
			Help: "Task status advances along the Pending/In Progress/Completed cycle.",
		}),
		partnerRemovals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskdeck_partner_removals_total",
			Help: "Partner removals, including their task cleanup.",
		}),
		forbidden: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "taskdeck_forbidden_total",
			Help: "Requests rejected by a role check.",
		}),
	}

	c.registry.MustRegister(
		c.signIns,
		c.tasksCreated,
		c.tasksDeleted,
		c.statusTransitions,
		c.partnerRemovals,
		c.forbidden,
	)
	return c
}

// Handler returns the /metrics HTTP handler for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordSignIn records a sign-in attempt outcome ("success" or "failure").
func (c *Collector) RecordSignIn(outcome string) {
	c.signIns.WithLabelValues(outcome).Inc()
}

// RecordTaskCreated records a successful task creation.
func (c *Collector) RecordTaskCreated() { c.tasksCreated.Inc() }

// RecordTaskDeleted records a successful task deletion.
func (c *Collector) RecordTaskDeleted() { c.tasksDeleted.Inc() }

// RecordStatusTransition records a task status advance.
func (c *Collector) RecordStatusTransition() { c.statusTransitions.Inc() }

// RecordPartnerRemoval records a partner removal.
func (c *Collector) RecordPartnerRemoval() { c.partnerRemovals.Inc() }

// RecordForbidden records a request rejected by a role check.
func (c *Collector) RecordForbidden() { c.forbidden.Inc() }
