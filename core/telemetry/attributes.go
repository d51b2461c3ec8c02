package telemetry

import (
	"strings"

	"go.opentelemetry.io/otel/attribute"
)

func PackagePattern(patterns ...string) attribute.KeyValue {
	return attribute.String("package_pattern", strings.Join(patterns, " "))
}

func TypeCount(n int) attribute.KeyValue {
	return attribute.Int("type_count", n)
}
