package xid

import (
	"strings"
	"testing"
	"time"
)

func TestNewCarriesPrefix(t *testing.T) {
	id := New("sale")
	if !strings.HasPrefix(id, "sale-") {
		t.Fatalf("expected sale- prefix, got %q", id)
	}
	if id == New("sale") {
		t.Fatalf("expected distinct ids")
	}
}

func TestSaleNumberFormat(t *testing.T) {
	at := time.Date(2026, time.March, 7, 14, 30, 0, 0, time.UTC)
	number := SaleNumber(at)

	if !strings.HasPrefix(number, "SL-20260307-") {
		t.Fatalf("unexpected date segment in %q", number)
	}
	suffix := strings.TrimPrefix(number, "SL-20260307-")
	if len(suffix) != 4 {
		t.Fatalf("expected 4-char suffix, got %q", suffix)
	}
	for _, ch := range suffix {
		if !strings.ContainsRune(base36, ch) {
			t.Fatalf("suffix %q contains non-base36 char %q", suffix, ch)
		}
	}
}
