// Package metrics defines the custom Prometheus metrics for the account
// service. It is the single source of truth for metric names, labels, and
// help strings; echoprometheus adds the generic HTTP metrics on top.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// RegistrationsTotal counts registration attempts.
// Label:
//   - result: "created", "duplicate", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, labelled by result.",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok" or "rejected"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts bearer token verifications performed by
// the auth middleware.
// Label:
//   - result: "ok" or "rejected"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, labelled by result.",
	},
	[]string{"result"},
)

// AdminActionsTotal counts invocations of admin-gated operations.
// Label:
//   - action: "list_users" or "delete_user"
var AdminActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "admin_actions_total",
		Help:      "Total number of admin operations performed.",
	},
	[]string{"action"},
)
