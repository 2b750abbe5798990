package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Aeomar999/POS-sub000/internal/domain"
	"github.com/Aeomar999/POS-sub000/internal/store"
	"github.com/Aeomar999/POS-sub000/internal/xid"
)

type Store struct {
	mu             sync.RWMutex
	products       map[string]domain.Product
	services       map[string]domain.Service
	salesByID      map[string]*domain.Sale
	saleIDByNumber map[string]string
	staffByID      map[string]domain.StaffUser
	staffIDByUser  map[string]string
	auditLogs      []domain.AuditLog
}

func New() *Store {
	return &Store{
		products:       make(map[string]domain.Product),
		services:       make(map[string]domain.Service),
		salesByID:      make(map[string]*domain.Sale),
		saleIDByNumber: make(map[string]string),
		staffByID:      make(map[string]domain.StaffUser),
		staffIDByUser:  make(map[string]string),
		auditLogs:      make([]domain.AuditLog, 0, 128),
	}
}

// NewSeeded builds a store with demo catalog data and one staff account per
// role for dev mode. Passwords come from SEED_ADMIN_PASSWORD,
// SEED_MANAGER_PASSWORD and SEED_SALES_PASSWORD; hardcoded dev defaults are
// used otherwise, with a warning. Production deployments use PostgreSQL.
func NewSeeded() *Store {
	s := New()
	now := time.Now().UTC()

	products := []domain.Product{
		{ID: xid.New("prd"), Name: "Gigabit Router AC1200", SKU: "NET-RTR-01", Category: domain.CategoryNetworking, PriceCents: 549900, CostPriceCents: 380000, StockQuantity: 14, LowStockThreshold: 5, Active: true},
		{ID: xid.New("prd"), Name: "24-Port Managed Switch", SKU: "NET-SW-24", Category: domain.CategoryNetworking, PriceCents: 1899900, CostPriceCents: 1420000, StockQuantity: 6, LowStockThreshold: 3, Active: true},
		{ID: xid.New("prd"), Name: "Cat6 Cable 305m Box", SKU: "NET-CAB-C6", Category: domain.CategoryNetworking, PriceCents: 899900, CostPriceCents: 610000, StockQuantity: 11, LowStockThreshold: 4, Active: true},
		{ID: xid.New("prd"), Name: "4MP Dome Camera", SKU: "CCTV-DOME-4", Category: domain.CategoryCCTV, PriceCents: 429900, CostPriceCents: 290000, StockQuantity: 22, LowStockThreshold: 8, Active: true},
		{ID: xid.New("prd"), Name: "8-Channel NVR 2TB", SKU: "CCTV-NVR-8", Category: domain.CategoryCCTV, PriceCents: 2499900, CostPriceCents: 1850000, StockQuantity: 4, LowStockThreshold: 2, Active: true},
		{ID: xid.New("prd"), Name: "Bullet Camera IR 30m", SKU: "CCTV-BLT-IR", Category: domain.CategoryCCTV, PriceCents: 389900, CostPriceCents: 265000, StockQuantity: 17, LowStockThreshold: 6, Active: true},
		{ID: xid.New("prd"), Name: "Video Door Station", SKU: "INT-DOOR-01", Category: domain.CategoryIntercom, PriceCents: 1299900, CostPriceCents: 940000, StockQuantity: 7, LowStockThreshold: 3, Active: true},
		{ID: xid.New("prd"), Name: "Indoor Monitor 7in", SKU: "INT-MON-7", Category: domain.CategoryIntercom, PriceCents: 999900, CostPriceCents: 720000, StockQuantity: 9, LowStockThreshold: 4, Active: true},
	}
	for _, p := range products {
		p.CreatedAt = now
		p.UpdatedAt = now
		s.products[p.ID] = p
	}

	services := []domain.Service{
		{ID: xid.New("svc"), Name: "CCTV Installation (per camera)", Description: "Mount, cable and configure one camera", PriceCents: 350000, Duration: "1h", Active: true},
		{ID: xid.New("svc"), Name: "Network Setup", Description: "Router and switch configuration on site", PriceCents: 750000, Duration: "2h", Active: true},
		{ID: xid.New("svc"), Name: "Intercom Commissioning", PriceCents: 500000, Duration: "90m", Active: true},
	}
	for _, svc := range services {
		svc.CreatedAt = now
		svc.UpdatedAt = now
		s.services[svc.ID] = svc
	}

	for _, seed := range []struct {
		name     string
		username string
		envKey   string
		fallback string
		role     domain.Role
	}{
		{"Administrator", "admin", "SEED_ADMIN_PASSWORD", "admin123", domain.RoleAdmin},
		{"Store Manager", "manager", "SEED_MANAGER_PASSWORD", "manager123", domain.RoleManager},
		{"Sales Clerk", "sales", "SEED_SALES_PASSWORD", "sales123", domain.RoleSales},
	} {
		password := os.Getenv(seed.envKey)
		if password == "" {
			password = seed.fallback
			log.Printf("[memory-store] WARNING: using default dev password for %q. Set %s to override.", seed.username, seed.envKey)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", seed.username, err)
		}
		staff := domain.StaffUser{
			ID:           xid.New("stf"),
			Name:         seed.name,
			Username:     seed.username,
			PasswordHash: string(hash),
			Role:         seed.role,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		s.staffByID[staff.ID] = staff
		s.staffIDByUser[staff.Username] = staff.ID
	}

	return s
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Category == b.Category {
			return strings.Compare(a.Name, b.Name)
		}
		return strings.Compare(string(a.Category), string(b.Category))
	})
	return products, nil
}

// ListLowStockProducts returns active products at or below their threshold.
// A threshold of zero still matches products that are fully out of stock.
func (s *Store) ListLowStockProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	low := make([]domain.Product, 0, 8)
	for _, p := range s.products {
		if p.Active && p.StockQuantity <= p.LowStockThreshold {
			low = append(low, p)
		}
	}
	slices.SortFunc(low, func(a, b domain.Product) int {
		if a.StockQuantity == b.StockQuantity {
			return strings.Compare(a.Name, b.Name)
		}
		return a.StockQuantity - b.StockQuantity
	})
	return low, nil
}

func (s *Store) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyProduct := p
	return &copyProduct, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.PriceCents < 0 || product.StockQuantity < 0 || product.LowStockThreshold < 0 {
		return nil, store.ErrInvalidInput
	}
	if _, ok := domain.ParseCategory(string(product.Category)); !ok {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	product.Active = true

	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.PriceCents < 0 || product.StockQuantity < 0 || product.LowStockThreshold < 0 {
		return nil, store.ErrInvalidInput
	}
	if _, ok := domain.ParseCategory(string(product.Category)); !ok {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.products[product.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now().UTC()
	s.products[product.ID] = product
	updated := product
	return &updated, nil
}

func (s *Store) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *Store) CountProducts(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products), nil
}

func (s *Store) ListServices(_ context.Context) ([]domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	services := make([]domain.Service, 0, len(s.services))
	for _, svc := range s.services {
		services = append(services, svc)
	}
	slices.SortFunc(services, func(a, b domain.Service) int {
		return strings.Compare(a.Name, b.Name)
	})
	return services, nil
}

func (s *Store) GetServiceByID(_ context.Context, id string) (*domain.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	svc, ok := s.services[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copySvc := svc
	return &copySvc, nil
}

func (s *Store) CreateService(_ context.Context, svc domain.Service) (*domain.Service, error) {
	if svc.Name == "" || svc.PriceCents < 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if svc.ID == "" {
		svc.ID = xid.New("svc")
	}
	now := time.Now().UTC()
	if svc.CreatedAt.IsZero() {
		svc.CreatedAt = now
	}
	svc.UpdatedAt = now
	svc.Active = true

	s.services[svc.ID] = svc
	created := svc
	return &created, nil
}

func (s *Store) UpdateService(_ context.Context, svc domain.Service) (*domain.Service, error) {
	if svc.Name == "" || svc.PriceCents < 0 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.services[svc.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	svc.CreatedAt = existing.CreatedAt
	svc.UpdatedAt = time.Now().UTC()
	s.services[svc.ID] = svc
	updated := svc
	return &updated, nil
}

func (s *Store) DeleteService(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.services[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.services, id)
	return nil
}

func (s *Store) CountServices(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.services), nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	if len(sale.Items) == 0 || sale.SaleNumber == "" {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.saleIDByNumber[sale.SaleNumber]; exists {
		return nil, store.ErrDuplicate
	}

	// Validate every line before mutating stock so a failure leaves the
	// store untouched.
	decrements := make(map[string]int, len(sale.Items))
	for _, item := range sale.Items {
		if item.Quantity < 1 || item.Name == "" || item.UnitPriceCents < 0 {
			return nil, store.ErrInvalidInput
		}
		if item.ProductID == "" {
			continue
		}
		product, ok := s.products[item.ProductID]
		if !ok {
			return nil, store.ErrNotFound
		}
		decrements[item.ProductID] += item.Quantity
		if product.StockQuantity < decrements[item.ProductID] {
			return nil, store.ErrInsufficientStock
		}
	}

	now := time.Now().UTC()
	for productID, qty := range decrements {
		product := s.products[productID]
		product.StockQuantity -= qty
		product.UpdatedAt = now
		s.products[productID] = product
	}

	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = now
	}
	if sale.Status == "" {
		sale.Status = domain.SaleStatusCompleted
	}
	items := make([]domain.SaleItem, len(sale.Items))
	for i, item := range sale.Items {
		if item.ID == "" {
			item.ID = xid.New("item")
		}
		item.SaleID = sale.ID
		item.TotalCents = int64(item.Quantity) * item.UnitPriceCents
		items[i] = item
	}
	sale.Items = items

	saved := cloneSale(&sale)
	s.salesByID[sale.ID] = saved
	s.saleIDByNumber[sale.SaleNumber] = sale.ID
	return cloneSale(saved), nil
}

func (s *Store) ListSales(_ context.Context, since time.Time, limit int) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, len(s.salesByID))
	for _, sale := range s.salesByID {
		if !since.IsZero() && sale.CreatedAt.Before(since) {
			continue
		}
		sales = append(sales, *cloneSale(sale))
	}
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

func (s *Store) GetSaleByID(_ context.Context, id string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.salesByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *Store) UpdateSale(_ context.Context, id string, status string, notes *string) (*domain.Sale, error) {
	if status != "" && !domain.IsSaleStatus(status) {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sale, ok := s.salesByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if status != "" {
		sale.Status = status
	}
	if notes != nil {
		sale.Notes = *notes
	}
	return cloneSale(sale), nil
}

func (s *Store) ListStaff(_ context.Context) ([]domain.StaffUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	staff := make([]domain.StaffUser, 0, len(s.staffByID))
	for _, member := range s.staffByID {
		staff = append(staff, member)
	}
	slices.SortFunc(staff, func(a, b domain.StaffUser) int {
		return strings.Compare(a.Username, b.Username)
	})
	return staff, nil
}

func (s *Store) GetStaffByID(_ context.Context, id string) (*domain.StaffUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	member, ok := s.staffByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copyMember := member
	return &copyMember, nil
}

func (s *Store) GetStaffByUsername(_ context.Context, username string) (*domain.StaffUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.staffIDByUser[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	member := s.staffByID[id]
	copyMember := member
	return &copyMember, nil
}

func (s *Store) CreateStaff(_ context.Context, staff domain.StaffUser) (*domain.StaffUser, error) {
	if staff.Username == "" || staff.Name == "" || staff.PasswordHash == "" {
		return nil, store.ErrInvalidInput
	}
	if _, ok := domain.ParseRole(string(staff.Role)); !ok {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.staffIDByUser[staff.Username]; exists {
		return nil, store.ErrDuplicate
	}
	if staff.ID == "" {
		staff.ID = xid.New("stf")
	}
	now := time.Now().UTC()
	if staff.CreatedAt.IsZero() {
		staff.CreatedAt = now
	}
	staff.UpdatedAt = now

	s.staffByID[staff.ID] = staff
	s.staffIDByUser[staff.Username] = staff.ID
	created := staff
	return &created, nil
}

func (s *Store) UpdateStaff(_ context.Context, staff domain.StaffUser) (*domain.StaffUser, error) {
	if _, ok := domain.ParseRole(string(staff.Role)); !ok {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.staffByID[staff.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	staff.Username = existing.Username
	staff.CreatedAt = existing.CreatedAt
	staff.UpdatedAt = time.Now().UTC()
	s.staffByID[staff.ID] = staff
	updated := staff
	return &updated, nil
}

func (s *Store) DeleteStaff(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	member, ok := s.staffByID[id]
	if !ok {
		return store.ErrNotFound
	}
	delete(s.staffByID, id)
	delete(s.staffIDByUser, member.Username)
	return nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.AuditLog, 0, 64)
	for _, entry := range s.auditLogs {
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		result = append(result, entry)
	}
	slices.SortFunc(result, func(a, b domain.AuditLog) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func cloneSale(sale *domain.Sale) *domain.Sale {
	if sale == nil {
		return nil
	}
	copySale := *sale
	copySale.Items = make([]domain.SaleItem, len(sale.Items))
	copy(copySale.Items, sale.Items)
	return &copySale
}
