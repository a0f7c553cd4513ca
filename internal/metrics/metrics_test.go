package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRegistry_Counters(t *testing.T) {
	r := NewRegistry()

	r.Builds.WithLabelValues("profiles").Inc()
	r.Builds.WithLabelValues("profiles").Inc()
	r.CacheHits.Inc()
	r.OrdersLoaded.Set(12)

	body := scrape(t, r)
	assert.Contains(t, body, `restock_builds_total{view="profiles"} 2`)
	assert.Contains(t, body, "restock_cache_hits_total 1")
	assert.Contains(t, body, "restock_orders_loaded 12")
}

func TestRegistry_Handler(t *testing.T) {
	r := NewRegistry()
	r.Imported.Add(3)
	r.Requests.WithLabelValues("/v1/profiles", "200").Inc()

	body := scrape(t, r)
	assert.Contains(t, body, "restock_orders_imported_total 3")
	assert.Contains(t, body, `restock_http_requests_total{code="200",route="/v1/profiles"} 1`)
}

func TestRegistry_Gatherer(t *testing.T) {
	r := NewRegistry()
	r.CacheMisses.Inc()
	families, err := r.Gatherer().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
