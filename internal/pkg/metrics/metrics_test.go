package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordLogin(t *testing.T) {
	before := testutil.ToFloat64(loginAttempts.WithLabelValues(LoginBadPassword))
	RecordLogin(LoginBadPassword)
	RecordLogin(LoginBadPassword)
	assert.Equal(t, before+2, testutil.ToFloat64(loginAttempts.WithLabelValues(LoginBadPassword)))
}

func TestRecordInviteEvent(t *testing.T) {
	before := testutil.ToFloat64(inviteEvents.WithLabelValues(InviteConsumed))
	RecordInviteEvent(InviteConsumed)
	assert.Equal(t, before+1, testutil.ToFloat64(inviteEvents.WithLabelValues(InviteConsumed)))
}

func TestHandlerExposesCollectors(t *testing.T) {
	ObserveRequest(http.MethodPost, "/api/v1/auth/token", http.StatusUnauthorized, 15*time.Millisecond)
	RecordOrganizationRegistered()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "rollcall_http_request_duration_seconds")
	assert.Contains(t, body, `route="/api/v1/auth/token"`)
	assert.Contains(t, body, "rollcall_organizations_registered_total")
}
