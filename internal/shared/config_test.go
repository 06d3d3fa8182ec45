package shared_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"hotel_service/internal/shared"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HTTP_RPS", "")
	t.Setenv("METRICS_BACKEND", "")

	c := shared.Load()
	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 100, c.HTTPRPS)
	assert.Equal(t, "prometheus", c.MetricsBackend)
	assert.Equal(t, 15*time.Second, c.HTTPTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("HTTP_RPS", "5")
	t.Setenv("LOADER_WORKERS", "not-a-number")
	t.Setenv("METRICS_BACKEND", "redis")

	c := shared.Load()
	assert.Equal(t, ":9999", c.HTTPAddr)
	assert.Equal(t, 5, c.HTTPRPS)
	assert.Equal(t, 8, c.LoaderWorkers)
	assert.Equal(t, "redis", c.MetricsBackend)
}
