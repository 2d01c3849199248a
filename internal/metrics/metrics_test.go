package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_storefront/internal/config"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddleware_CountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(config.MetricsConfig{Namespace: "storefront"}, func() int { return 2 })

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/v1/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/v1/products/1", "/v1/products/2", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	body := scrape(t, m)
	assert.Contains(t, body, `storefront_http_requests_total{method="GET",route="/v1/products/:id",status="200"} 2`)
	assert.Contains(t, body, `storefront_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, body, `storefront_sse_clients 2`)
}

func TestCheckoutCounters(t *testing.T) {
	m := New(config.MetricsConfig{Namespace: "storefront"}, nil)
	m.ObserveVoucherCheck("applied")
	m.ObserveVoucherCheck("applied")
	m.ObserveSubmit("success")

	body := scrape(t, m)
	assert.Contains(t, body, `storefront_voucher_checks_total{outcome="applied"} 2`)
	assert.Contains(t, body, `storefront_checkout_submits_total{outcome="success"} 1`)
	assert.NotContains(t, body, "storefront_sse_clients")
}
