package cache

import (
	"context"
	"time"
)

// Cache keys used by the service layer. Writes invalidate the keys for the
// resources they touch instead of flushing everything.
const (
	KeyDashboard         = "pos:dashboard"
	KeySalesReportPrefix = "pos:report:sales:"
)

func SalesReportKey(period string) string {
	return KeySalesReportPrefix + period
}

// ReportCache stores serialized report payloads keyed by resource.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
}

type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	return nil
}

func (NoopReportCache) Invalidate(_ context.Context, _ ...string) error {
	return nil
}
