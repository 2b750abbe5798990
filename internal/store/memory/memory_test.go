package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Aeomar999/POS-sub000/internal/domain"
	"github.com/Aeomar999/POS-sub000/internal/store"
)

func createTestProduct(t *testing.T, s *Store, name string, stock int) domain.Product {
	t.Helper()
	created, err := s.CreateProduct(context.Background(), domain.Product{
		Name:          name,
		Category:      domain.CategoryNetworking,
		PriceCents:    1000,
		StockQuantity: stock,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return *created
}

func TestCreateSaleDecrementsStock(t *testing.T) {
	s := New()
	ctx := context.Background()
	product := createTestProduct(t, s, "Router", 10)

	sale, err := s.CreateSale(ctx, domain.Sale{
		SaleNumber: "SL-20260901-aaaa",
		TotalCents: 3000,
		Items: []domain.SaleItem{
			{ProductID: product.ID, Name: product.Name, Quantity: 3, UnitPriceCents: 1000},
		},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}
	if sale.Items[0].TotalCents != 3000 {
		t.Fatalf("expected line total 3000, got %d", sale.Items[0].TotalCents)
	}

	reloaded, err := s.GetProductByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if reloaded.StockQuantity != 7 {
		t.Fatalf("expected stock 7 after sale, got %d", reloaded.StockQuantity)
	}
}

func TestCreateSaleRejectsOversellAtomically(t *testing.T) {
	s := New()
	ctx := context.Background()
	scarce := createTestProduct(t, s, "NVR", 1)
	plenty := createTestProduct(t, s, "Camera", 50)

	_, err := s.CreateSale(ctx, domain.Sale{
		SaleNumber: "SL-20260901-bbbb",
		Items: []domain.SaleItem{
			{ProductID: plenty.ID, Name: plenty.Name, Quantity: 5, UnitPriceCents: 1000},
			{ProductID: scarce.ID, Name: scarce.Name, Quantity: 2, UnitPriceCents: 1000},
		},
	})
	if !errors.Is(err, store.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	// The earlier line in the same sale must not have touched stock.
	reloaded, err := s.GetProductByID(ctx, plenty.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if reloaded.StockQuantity != 50 {
		t.Fatalf("expected stock untouched after rejected sale, got %d", reloaded.StockQuantity)
	}
	sales, err := s.ListSales(ctx, time.Time{}, 0)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 0 {
		t.Fatalf("expected no sale rows after rejection, got %d", len(sales))
	}
}

func TestCreateSaleConcurrentLastUnit(t *testing.T) {
	s := New()
	ctx := context.Background()
	product := createTestProduct(t, s, "Switch", 1)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := s.CreateSale(ctx, domain.Sale{
				SaleNumber: fmt.Sprintf("SL-20260901-ee%02d", n),
				TotalCents: 1000,
				Items: []domain.SaleItem{
					{ProductID: product.ID, Name: product.Name, Quantity: 1, UnitPriceCents: 1000},
				},
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var wins, rejections int
	for err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, store.ErrInsufficientStock):
			rejections++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	// Exactly one sale may claim the last unit; the loser is rejected, never
	// clamped to a zero-stock success.
	if wins != 1 || rejections != 1 {
		t.Fatalf("expected 1 win and 1 rejection for the last unit, got %d and %d", wins, rejections)
	}

	reloaded, err := s.GetProductByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if reloaded.StockQuantity != 0 {
		t.Fatalf("expected stock 0 after the winning sale, got %d", reloaded.StockQuantity)
	}
}

func TestCreateSaleRejectsDuplicateSaleNumber(t *testing.T) {
	s := New()
	ctx := context.Background()

	sale := domain.Sale{
		SaleNumber: "SL-20260901-cccc",
		Items:      []domain.SaleItem{{Name: "Install", Quantity: 1, UnitPriceCents: 5000}},
	}
	if _, err := s.CreateSale(ctx, sale); err != nil {
		t.Fatalf("first sale: %v", err)
	}
	sale.ID = ""
	if _, err := s.CreateSale(ctx, sale); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestCreateSaleRequiresItems(t *testing.T) {
	s := New()
	if _, err := s.CreateSale(context.Background(), domain.Sale{SaleNumber: "SL-20260901-dddd"}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty cart, got %v", err)
	}
}

func TestCreateSaleUnknownProduct(t *testing.T) {
	s := New()
	_, err := s.CreateSale(context.Background(), domain.Sale{
		SaleNumber: "SL-20260901-eeee",
		Items:      []domain.SaleItem{{ProductID: "prd-missing", Name: "Ghost", Quantity: 1, UnitPriceCents: 100}},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListLowStockIncludesThresholdAndZero(t *testing.T) {
	s := New()
	ctx := context.Background()

	atThreshold := createTestProduct(t, s, "At Threshold", 5)
	atThreshold.LowStockThreshold = 5
	if _, err := s.UpdateProduct(ctx, atThreshold); err != nil {
		t.Fatalf("update product: %v", err)
	}

	zero := createTestProduct(t, s, "Out", 0)
	zero.LowStockThreshold = 3
	if _, err := s.UpdateProduct(ctx, zero); err != nil {
		t.Fatalf("update product: %v", err)
	}

	healthy := createTestProduct(t, s, "Healthy", 40)
	healthy.LowStockThreshold = 5
	if _, err := s.UpdateProduct(ctx, healthy); err != nil {
		t.Fatalf("update product: %v", err)
	}

	low, err := s.ListLowStockProducts(ctx)
	if err != nil {
		t.Fatalf("list low stock: %v", err)
	}
	if len(low) != 2 {
		t.Fatalf("expected 2 low stock products, got %d", len(low))
	}
	if low[0].StockQuantity > low[1].StockQuantity {
		t.Fatalf("expected lowest stock first")
	}
}

func TestUpdateSaleStatusAndNotes(t *testing.T) {
	s := New()
	ctx := context.Background()

	created, err := s.CreateSale(ctx, domain.Sale{
		SaleNumber: "SL-20260901-ffff",
		Items:      []domain.SaleItem{{Name: "Install", Quantity: 1, UnitPriceCents: 5000}},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	notes := "customer cancelled"
	updated, err := s.UpdateSale(ctx, created.ID, domain.SaleStatusCancelled, &notes)
	if err != nil {
		t.Fatalf("update sale: %v", err)
	}
	if updated.Status != domain.SaleStatusCancelled || updated.Notes != notes {
		t.Fatalf("unexpected sale after update: %+v", updated)
	}

	if _, err := s.UpdateSale(ctx, created.ID, "shipped", nil); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
}

func TestStaffUsernameUniqueness(t *testing.T) {
	s := New()
	ctx := context.Background()

	staff := domain.StaffUser{
		Name:         "Clerk",
		Username:     "clerk",
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		Role:         domain.RoleSales,
		Active:       true,
	}
	if _, err := s.CreateStaff(ctx, staff); err != nil {
		t.Fatalf("create staff: %v", err)
	}
	staff.ID = ""
	if _, err := s.CreateStaff(ctx, staff); !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused username, got %v", err)
	}

	found, err := s.GetStaffByUsername(ctx, "clerk")
	if err != nil {
		t.Fatalf("get staff by username: %v", err)
	}
	if found.Role != domain.RoleSales {
		t.Fatalf("unexpected role %q", found.Role)
	}
}

func TestNewSeededHasCatalogAndStaff(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	count, err := s.CountProducts(ctx)
	if err != nil || count == 0 {
		t.Fatalf("expected seeded products, got %d (%v)", count, err)
	}
	services, err := s.ListServices(ctx)
	if err != nil || len(services) == 0 {
		t.Fatalf("expected seeded services, got %d (%v)", len(services), err)
	}
	for _, username := range []string{"admin", "manager", "sales"} {
		if _, err := s.GetStaffByUsername(ctx, username); err != nil {
			t.Fatalf("expected seeded %s account: %v", username, err)
		}
	}
}
