//go:build !gcloud

package metrics

import (
	"context"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// NewProvider creates a MeterProvider without any reader. Instruments can be
// created and recorded against it, nothing is exported.
func NewProvider(_ context.Context, cfg Config) (*Provider, error) {
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(newResource(cfg)),
	)

	return &Provider{mp: mp}, nil
}
