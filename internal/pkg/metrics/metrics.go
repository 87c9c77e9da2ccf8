// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rollcall"

// Login outcomes
const (
	LoginSuccess             = "success"
	LoginUnknownOrganization = "unknown_organization"
	LoginUnknownUser         = "unknown_user"
	LoginBadPassword         = "bad_password"
	LoginError               = "error"
)

// Invite events
const (
	InviteIssued   = "issued"
	InviteConsumed = "consumed"
	InviteRevoked  = "revoked"
	InviteRejected = "rejected"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome",
		},
		[]string{"outcome"},
	)
	inviteEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invite_events_total",
			Help:      "Teacher invite lifecycle events",
		},
		[]string{"event"},
	)
	organizationsRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "organizations_registered_total",
		Help:      "Organizations registered",
	})
	orgCodeCollisions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "org_code_collisions_total",
		Help:      "Generated organization codes that were already taken",
	})
)

// ObserveRequest records one served HTTP request. route should be the
// matched route template, not the raw path.
func ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// RecordLogin counts a login attempt
func RecordLogin(outcome string) {
	loginAttempts.WithLabelValues(outcome).Inc()
}

// RecordInviteEvent counts an invite event
func RecordInviteEvent(event string) {
	inviteEvents.WithLabelValues(event).Inc()
}

// RecordOrganizationRegistered counts a committed registration
func RecordOrganizationRegistered() {
	organizationsRegistered.Inc()
}

// RecordOrgCodeCollision counts a regenerated organization code
func RecordOrgCodeCollision() {
	orgCodeCollisions.Inc()
}

// Handler exposes the default registry
func Handler() http.Handler { return promhttp.Handler() }
