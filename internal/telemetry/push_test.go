package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/fyrsmithlabs/stepwrap/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pushRecorder struct {
	mu     sync.Mutex
	method string
	path   string
	user   string
	pass   string
	body   string
}

func newGateway(t *testing.T, status int) (*httptest.Server, *pushRecorder) {
	t.Helper()
	rec := &pushRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.user, rec.pass, _ = r.BasicAuth()
		rec.body = string(body)
		rec.mu.Unlock()
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func testRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	c := promauto.With(reg).NewCounter(prometheus.CounterOpts{
		Name: "stepwrap_test_total",
		Help: "Test counter.",
	})
	c.Add(3)
	return reg
}

func TestPush_Disabled(t *testing.T) {
	require.NoError(t, Push(context.Background(), testRegistry(), PushConfig{}, "run"))
}

func TestPush_SendsGroupedMetrics(t *testing.T) {
	srv, rec := newGateway(t, http.StatusOK)

	cfg := PushConfig{
		URL:      srv.URL,
		Job:      "stepwrap",
		Username: "ci",
		Password: config.Secret("s3cret"),
	}
	require.NoError(t, Push(context.Background(), testRegistry(), cfg, "abc123"))

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/metrics/job/stepwrap/run_id/abc123", rec.path)
	assert.Equal(t, "ci", rec.user)
	assert.Equal(t, "s3cret", rec.pass)
	assert.NotEmpty(t, rec.body)
}

func TestPush_GatewayError(t *testing.T) {
	srv, _ := newGateway(t, http.StatusInternalServerError)

	err := Push(context.Background(), testRegistry(), PushConfig{URL: srv.URL}, "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pushing metrics")
}

func TestPushFromSettings(t *testing.T) {
	s := config.Default().Telemetry
	s.PushgatewayURL = "http://gw:9091"
	s.PushUsername = "u"
	s.PushPassword = "p"

	cfg := PushFromSettings(s)
	assert.True(t, cfg.Enabled())
	assert.Equal(t, "stepwrap", cfg.Job)
	assert.Equal(t, "p", cfg.Password.Value())
	assert.False(t, PushFromSettings(config.Default().Telemetry).Enabled())
}
