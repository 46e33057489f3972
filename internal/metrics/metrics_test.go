package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afrawles/worklogwatch/internal/jira"
)

func gather(t *testing.T, reg *prometheus.Registry, name string) []*dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()
		}
	}
	t.Fatalf("metric %s not found", name)
	return nil
}

func TestOnRequest_CountsByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.OnRequest(jira.RequestEvent{StatusCode: 200, Latency: 10 * time.Millisecond})
	c.OnRequest(jira.RequestEvent{StatusCode: 200, Latency: 20 * time.Millisecond})
	c.OnRequest(jira.RequestEvent{StatusCode: 401, Latency: 5 * time.Millisecond})

	byCode := map[string]float64{}
	for _, m := range gather(t, reg, "worklogwatch_jira_requests_total") {
		byCode[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"200": 2, "401": 1}, byCode)

	latency := gather(t, reg, "worklogwatch_jira_request_duration_seconds")
	require.Len(t, latency, 1)
	assert.Equal(t, uint64(3), latency[0].GetHistogram().GetSampleCount())
}

func TestOnRequest_TransportErrorsCountedSeparately(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.OnRequest(jira.RequestEvent{Err: errors.New("connection refused")})

	errs := gather(t, reg, "worklogwatch_jira_request_errors_total")
	assert.Equal(t, float64(1), errs[0].GetCounter().GetValue())
}

func TestRecordCheck_SetsGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	at := time.Date(2022, 9, 18, 0, 0, 0, 0, time.UTC)

	c.RecordCheck(3, 1203*time.Second, 5, at)

	assert.Equal(t, float64(3), gather(t, reg, "worklogwatch_worklogs")[0].GetGauge().GetValue())
	assert.Equal(t, float64(1203), gather(t, reg, "worklogwatch_logged_seconds")[0].GetGauge().GetValue())
	assert.Equal(t, float64(5), gather(t, reg, "worklogwatch_deviating_days")[0].GetGauge().GetValue())
	assert.Equal(t, float64(at.Unix()), gather(t, reg, "worklogwatch_last_run_timestamp_seconds")[0].GetGauge().GetValue())
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordCheck(1, time.Hour, 0, time.Now())

	path := filepath.Join(t.TempDir(), "worklogwatch.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "worklogwatch_logged_seconds 3600"))
}
