package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"registry", KindRegistry},
		{"dnc", KindRegistry},
		{"registry-numbers", KindRegistry},
		{"suppression", KindSuppression},
		{"sales", KindSales},
		{"sales-transactions", KindSales},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseKind("bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown record kind")
}

func TestJobStatus_CanTransition(t *testing.T) {
	assert.True(t, JobQueued.CanTransition(JobProcessing))
	assert.True(t, JobQueued.CanTransition(JobFailed))
	assert.False(t, JobQueued.CanTransition(JobCompleted))

	assert.True(t, JobProcessing.CanTransition(JobProcessing))
	assert.True(t, JobProcessing.CanTransition(JobCompleted))
	assert.True(t, JobProcessing.CanTransition(JobFailed))
	assert.False(t, JobProcessing.CanTransition(JobQueued))

	assert.False(t, JobCompleted.CanTransition(JobFailed))
	assert.False(t, JobFailed.CanTransition(JobProcessing))
}

func TestJobStatus_Terminal(t *testing.T) {
	assert.False(t, JobQueued.Terminal())
	assert.False(t, JobProcessing.Terminal())
	assert.True(t, JobCompleted.Terminal())
	assert.True(t, JobFailed.Terminal())
}
