package telemetry

import (
	"testing"

	"github.com/aprovacrm/backend/internal/infrastructure/config"
	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseProfileTypes(t *testing.T) {
	types, err := ParseProfileTypes([]string{"cpu", " Mutex ", "cpu"})
	require.NoError(t, err)
	assert.Equal(t, []pyroscope.ProfileType{
		pyroscope.ProfileCPU,
		pyroscope.ProfileMutexCount,
		pyroscope.ProfileMutexDuration,
	}, types)

	_, err = ParseProfileTypes([]string{"heap"})
	assert.Error(t, err)
}

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_Validation(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "aprovacrm"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewProfiler(ProfilerConfig{Enabled: true, ServerAddress: "http://pyroscope:4040"}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewProfiler(ProfilerConfig{
		Enabled:         true,
		ServerAddress:   "http://pyroscope:4040",
		ApplicationName: "aprovacrm",
		ProfileTypes:    []string{"unknown"},
	}, zap.NewNop())
	assert.Error(t, err)
}

func TestProfilerConfigFrom(t *testing.T) {
	cfg := ProfilerConfigFrom(config.TelemetryConfig{
		ProfilingEnabled: true,
		ProfilingServer:  "http://pyroscope:4040",
		ServiceName:      "aprovacrm-backend",
		ProfileTypes:     []string{"cpu"},
	})
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "http://pyroscope:4040", cfg.ServerAddress)
	assert.Equal(t, "aprovacrm-backend", cfg.ApplicationName)
	assert.Equal(t, []string{"cpu"}, cfg.ProfileTypes)
}
