package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSampler(t *testing.T) {
	tests := []struct {
		ratio float64
		root  string
	}{
		{1.0, "root:AlwaysOnSampler"},
		{1.5, "root:AlwaysOnSampler"},
		{0, "root:AlwaysOffSampler"},
		{-1, "root:AlwaysOffSampler"},
		{0.5, "root:TraceIDRatioBased{0.5}"},
	}
	for _, tt := range tests {
		desc := newSampler(tt.ratio).Description()
		assert.Contains(t, desc, "ParentBased")
		assert.Contains(t, desc, tt.root)
	}
}
