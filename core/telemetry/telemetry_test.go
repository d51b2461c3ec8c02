package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

func TestInstallTraceProviderNoop(t *testing.T) {
	shutdown := InstallTraceProvider("", "inspector")
	require.NotNil(t, shutdown)

	_, span := Tracer().Start(context.Background(), "test")
	defer span.End()

	assert.False(t, span.SpanContext().IsValid())
	assert.False(t, span.IsRecording())
	require.NoError(t, shutdown(context.Background()))
	assert.NotNil(t, otel.GetTextMapPropagator())
}

func TestInstallTraceProviderEndpoint(t *testing.T) {
	shutdown := InstallTraceProvider("localhost:4318", "inspector")
	require.NotNil(t, shutdown)

	_, span := Tracer().Start(context.Background(), "test")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)

	InstallTraceProvider("", "inspector")
}

func TestAttributes(t *testing.T) {
	tests := []struct {
		name string
		kv   attribute.KeyValue
		key  attribute.Key
		want string
	}{
		{"pattern", PackagePattern("./...", "fmt"), "package_pattern", "./... fmt"},
		{"count", TypeCount(3), "type_count", "3"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.key, test.kv.Key)
			assert.Equal(t, test.want, test.kv.Value.Emit())
		})
	}
}
