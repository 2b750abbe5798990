package cache

import (
	"context"
	"testing"
	"time"
)

func TestSalesReportKeyUsesPrefix(t *testing.T) {
	key := SalesReportKey("month")
	if key != "pos:report:sales:month" {
		t.Fatalf("unexpected key %q", key)
	}
}

func TestNoopCacheNeverHits(t *testing.T) {
	c := NoopReportCache{}
	ctx := context.Background()

	if err := c.Set(ctx, KeyDashboard, []byte("{}"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	_, ok, err := c.Get(ctx, KeyDashboard)
	if err != nil || ok {
		t.Fatalf("expected miss from noop cache, got ok=%v err=%v", ok, err)
	}
	if err := c.Invalidate(ctx, KeyDashboard, KeySalesReportPrefix); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
}
