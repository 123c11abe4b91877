//go:build !gcloud

package logging

import (
	"context"
	"log/slog"
)

func platformAttrs(_ context.Context, _ string) []slog.Attr {
	return nil
}
