package metrics

import (
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"github.com/tahongtrung/phenomic/internal/config"
)

func TestNoopRecorderIsSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObservePhaseDuration("cleaning", time.Millisecond)
	r.ObserveBuildDuration(time.Second)
	r.IncPhaseResult("prerendering", ResultSuccess)
	r.IncBuildOutcome("success")
	r.SetPrerenderConcurrency(50)
	r.AddPagesRendered(3)
	r.AddFilesWritten(7)
}

func TestPrometheusRecorderRegisters(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObservePhaseDuration("clientBundling", 10*time.Millisecond)
	pr.IncPhaseResult("clientBundling", ResultSuccess)
	pr.IncBuildOutcome("success")
	pr.SetPrerenderConcurrency(50)
	pr.AddPagesRendered(2)
	pr.AddFilesWritten(2)

	mfs, err := reg.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, mfs)
	for _, mf := range mfs {
		assert.True(t, strings.HasPrefix(mf.GetName(), config.DefaultMetricsNamespace+"_"),
			"metric %s must carry the configured namespace", mf.GetName())
	}
}

func TestPrometheusRecorderNilReceiver(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObservePhaseDuration("x", time.Millisecond)
	pr.IncBuildOutcome("failed")
}
