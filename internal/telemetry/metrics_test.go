package telemetry

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCountPipelineActivity(t *testing.T) {
	m := NewMetrics(MetricsConfig{}, nil)
	m.PipelineRun("object_created")
	m.PipelineRun("object_created")
	m.PipelineRun("entered_cell")
	m.PipelineSkip("disabled")
	m.Replacement("object_created")
	m.Mutation("solid")
	m.Mutation("hostile")
	m.Mutation("hostile")
	m.ConfigRefresh()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues("object_created")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("entered_cell")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.skips.WithLabelValues("disabled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.replacements.WithLabelValues("object_created")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.mutations.WithLabelValues("hostile")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshes))
}

func TestMetricsHandlerExposesRegistry(t *testing.T) {
	m := NewMetrics(MetricsConfig{Namespace: "test"}, nil)
	m.Mutation("solid")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `test_pipeline_mutations_total{kind="solid"} 1`), string(body))
}

func TestMetricsUsePrivateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics(MetricsConfig{}, nil)
		NewMetrics(MetricsConfig{}, nil)
	})
}
