package telemetry_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/aretw0/intake/internal/telemetry"
)

func TestInit_WritesSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "intake.log")
	ctx := context.Background()

	shutdown, err := telemetry.Init(ctx, path, "0.0.0-test")
	require.NoError(t, err)

	_, span := otel.Tracer("test").Start(ctx, "submission.submit")
	span.End()
	require.NoError(t, shutdown(ctx))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "submission.submit")
	assert.Contains(t, string(data), "intake")
}

func TestInit_Disabled(t *testing.T) {
	shutdown, err := telemetry.Init(context.Background(), "", "x")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
