package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetMetrics(t *testing.T) {
	m := GetMetrics()
	require.NotNil(t, m)
	require.Same(t, m, GetMetrics())

	require.NotNil(t, m.BuildsTotal)
	require.NotNil(t, m.BuildDuration)
	require.NotNil(t, m.OutputBytes)

	// the global no-op provider accepts measurements
	m.BuildsTotal.Add(context.Background(), 1)
	m.BuildDuration.Record(context.Background(), 0.5)
}
